package core

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// frames collects the message of every link in the cause chain, outermost
// first. A link contributes only the text it adds on top of its cause, and
// links that add nothing (stack-only wrappers) are skipped.
func frames(err error) []string {
	out := []string{}
	for cur := err; cur != nil; {
		next := errors.Unwrap(cur)
		msg := cur.Error()
		if next != nil {
			inner := next.Error()
			if msg == inner {
				cur = next
				continue
			}
			msg = strings.TrimSuffix(msg, ": "+inner)
		}
		out = append(out, msg)
		cur = next
	}
	return out
}

// ToStackTrace flattens the chain of err into its frames, root cause first.
// A chain with a single frame is returned as is.
func ToStackTrace(err error) (trace []string, rerr error) {
	defer func() {
		if r := recover(); r != nil {
			trace = nil
			rerr = Wrap(fmt.Errorf("%v", r), "operation failed")
		}
	}()

	if err == nil {
		return []string{CallInfo(1) + ": Empty stack!"}, nil
	}

	elements := frames(err)
	if len(elements) > 1 {
		slices.Reverse(elements)
	}
	return elements, nil
}

// ToString renders the flattened chain of err one frame per line.
func ToString(err error) (string, error) {
	trace, terr := ToStackTrace(err)
	if terr != nil {
		return "", Wrap(terr, "operation failed")
	}
	return strings.Join(trace, "\n"), nil
}
