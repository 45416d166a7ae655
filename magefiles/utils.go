//go:build mage

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
	"github.com/magefile/mage/target"
)

// goTool runs the go command with its output attached to the terminal.
func goTool(args ...string) error {
	fmt.Printf("Executing: %s %s\n", mg.GoCmd(), strings.Join(args, " "))
	return sh.RunV(mg.GoCmd(), args...)
}

// goTest runs go test and returns everything it printed. Output is streamed
// only when mage runs verbose; otherwise it is dumped on failure.
func goTest(args ...string) (string, error) {
	var b bytes.Buffer
	var w io.Writer = &b
	if mg.Verbose() {
		w = io.MultiWriter(&b, os.Stdout)
	}
	_, err := sh.Exec(nil, w, w, mg.GoCmd(), append([]string{"test"}, args...)...)
	if err != nil && !mg.Verbose() {
		fmt.Println("... failed test output:")
		fmt.Println(b.String())
	}
	return b.String(), err
}

// compileShader turns one GLSL stage into SPIR-V. Nothing runs when out is
// newer than src.
func compileShader(src, out string) error {
	stale, err := target.Path(out, src)
	if err != nil {
		return err
	}
	if !stale {
		return nil
	}
	fmt.Printf("Compiling %s -> %s\n", src, out)
	if err := sh.RunV("glslc", src, "-o", out); err != nil {
		return fmt.Errorf("glslc %s: %w", src, err)
	}
	return nil
}
