/*
anima-bootstrap opens a window and brings up a complete Vulkan rendering
context for it: instance, surface, device, swapchain, depth buffer, render
pass, framebuffers and a graphics pipeline.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"github.com/spaghettifunk/anima-bootstrap/engine"
	"github.com/spaghettifunk/anima-bootstrap/engine/core"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		reportFailure(os.Stderr, err)
	}
}

// reportFailure prints the flattened chain of err. When the chain itself
// cannot be read, the failure to read it is printed instead; err is not
// touched again.
func reportFailure(w io.Writer, err error) {
	msg, terr := core.ToString(err)
	if terr != nil {
		msg, err = core.ToString(terr)
		if err != nil {
			msg = terr.Error()
		}
	}
	fmt.Fprintln(w, msg)
}

func run(configPath string) error {
	config, err := engine.LoadConfig(configPath)
	if err != nil {
		return core.Wrap(err, "load configuration")
	}

	e, err := engine.New(config)
	if err != nil {
		return core.Wrap(err, "create engine")
	}
	defer func() {
		if err := e.Shutdown(); err != nil {
			core.LogError("shutdown: %s", err)
		}
	}()

	// capture sigterm and other system calls; the loop stops on the main thread
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	if err := e.Initialize(); err != nil {
		if errors.Is(err, core.ErrWindowClosed) {
			core.LogInfo("Window closed before the rendering context was ready.")
			return nil
		}
		return core.Wrap(err, "initialize engine")
	}

	return e.Run(ctx)
}
