package core

import (
	"fmt"
	"path"
	"runtime"

	"github.com/pkg/errors"
)

var (
	ErrWindowClosed       = errors.New("window was closed before the context finished initializing")
	ErrAlreadyInitialized = errors.New("context already initialized")
	ErrNoSuitableDevice   = errors.New("no physical device meets the requirements")
	ErrNoDepthFormat      = errors.New("no supported depth format")
	ErrValidation         = errors.New("validation layer reported an error")
)

// InitializationError reports a native call that failed or returned an
// invalid result.
type InitializationError struct {
	// Op is the native call, e.g. "vkCreateInstance".
	Op     string
	Reason string
}

func NewInitializationError(op, reason string, args ...interface{}) *InitializationError {
	return &InitializationError{
		Op:     op,
		Reason: fmt.Sprintf(reason, args...),
	}
}

func (e *InitializationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s failed", e.Op)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, e.Reason)
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Wrap marks err with the location of its caller. Each call adds one frame to
// the chain rendered by ToStackTrace. A nil err stays nil.
func Wrap(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.WithMessage(err, CallInfo(1)+": "+fmt.Sprintf(format, args...))
}

// CallInfo renders "file:line (function)" for the caller skip frames above
// the function calling CallInfo.
func CallInfo(skip int) string {
	st := errors.New("").(stackTracer).StackTrace()
	// st[0] is CallInfo itself.
	idx := skip + 1
	if idx >= len(st) {
		return "unknown"
	}
	f := st[idx]
	name := "unknown"
	if fn := runtime.FuncForPC(uintptr(f) - 1); fn != nil {
		name = path.Base(fn.Name())
	}
	return fmt.Sprintf("%s:%d (%s)", f, f, name)
}
