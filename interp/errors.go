package interp

import (
	"fmt"

	"github.com/pontaoski/gox/errors"
	"github.com/ztrue/tracerr"
)

// RuntimeError is a fatal error that stopped a run.
type RuntimeError struct {
	Line    int
	Message string
}

func (e *RuntimeError) Error() string {
	return e.Diagnostic().Error()
}

func (e *RuntimeError) Diagnostic() errors.Diagnostic {
	return errors.Diagnostic{Phase: errors.Runtime, Line: e.Line, Message: e.Message}
}

// AsRuntimeError extracts the RuntimeError from an error returned by Run or
// Eval.
func AsRuntimeError(err error) (*RuntimeError, bool) {
	if err == nil {
		return nil, false
	}
	rt, ok := tracerr.Unwrap(err).(*RuntimeError)
	return rt, ok
}

func fail(line int, format string, args ...interface{}) {
	panic(&RuntimeError{Line: line, Message: fmt.Sprintf(format, args...)})
}

// recoverRuntime turns a RuntimeError panic into err. Any other panic is a
// bug and keeps going.
func recoverRuntime(err *error) {
	r := recover()
	if r == nil {
		return
	}
	rt, ok := r.(*RuntimeError)
	if !ok {
		panic(r)
	}
	plog.Debugf("run aborted: %s", rt)
	*err = tracerr.Wrap(rt)
}
