//go:build mage

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
)

const shaderDir = "assets/shaders"

// shaderOutputs maps each GLSL stage to the SPIR-V file the context loads.
var shaderOutputs = map[string]string{
	"shader.vert": "vert.spv",
	"shader.frag": "frag.spv",
}

type Build mg.Namespace

// Compiles the GLSL shaders in assets/shaders to SPIR-V with glslc.
func (Build) Shaders() error {
	for src, out := range shaderOutputs {
		if err := compileShader(filepath.Join(shaderDir, src), filepath.Join(shaderDir, out)); err != nil {
			return err
		}
	}
	return nil
}

// Builds the anima-bootstrap binary into bin/.
func (Build) Binary() error {
	mg.Deps(Build.Shaders)
	return goTool("build", "-o", filepath.Join("bin", "anima-bootstrap"), ".")
}

// Runs the unit tests. None of them need a GPU.
func (Build) Test() error {
	args := []string{"./..."}
	if mg.Verbose() {
		args = append(args, "-v")
	}
	out, err := goTest(args...)
	if err != nil {
		return err
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "ok") || strings.HasPrefix(line, "FAIL") {
			fmt.Println(line)
		}
	}
	return nil
}
