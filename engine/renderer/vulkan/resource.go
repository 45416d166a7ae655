package vulkan

// noCopy lets go vet flag wrappers that are copied by value. Wrappers own
// native handles and must only be passed around by pointer.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// resource is embedded by every wrapper. The builder that created the
// wrapper installs the release hook; Destroy runs it at most once.
type resource struct {
	noCopy noCopy

	release func()
}

func (r *resource) onDestroy(fn func()) {
	r.release = fn
}

// Destroy releases the native object. Calling it again is a no-op.
func (r *resource) Destroy() {
	if r == nil || r.release == nil {
		return
	}
	fn := r.release
	r.release = nil
	fn()
}

// Alive reports whether the wrapper still owns a native object.
func (r *resource) Alive() bool {
	return r != nil && r.release != nil
}
