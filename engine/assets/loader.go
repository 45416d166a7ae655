package assets

import "github.com/spaghettifunk/anima-bootstrap/engine/resources"

type Loader interface {
	Load(path string, params interface{}) (*resources.Resource, error)
	Unload(*resources.Resource) error
}
