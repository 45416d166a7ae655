//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Compiles the shaders and runs the bootstrap. Set ANIMA_CONFIG to pass a
// configuration file.
func (Run) Bootstrap() error {
	mg.Deps(Build.Shaders)
	fmt.Println("Run bootstrap...")
	args := []string{"run", "."}
	if cfg := os.Getenv("ANIMA_CONFIG"); cfg != "" {
		args = append(args, "-config", cfg)
	}
	return goTool(args...)
}
