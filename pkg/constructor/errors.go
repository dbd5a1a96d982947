package constructor

import (
	"errors"
	"fmt"
)

// ErrNotImplemented marks degenerate overlay cases that are not handled.
var ErrNotImplemented = errors.New("degenerate case not implemented")

// PreconditionError reports a violated precondition of a constructor
// operation.
type PreconditionError struct {
	Op  string // operation that detected the violation
	Msg string // human-readable description
	Err error  // optional cause, e.g. ErrNotImplemented
}

func (e *PreconditionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("constructor: %s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("constructor: %s: %s", e.Op, e.Msg)
}

func (e *PreconditionError) Unwrap() error { return e.Err }

func precondition(op, format string, args ...any) {
	panic(&PreconditionError{Op: op, Msg: fmt.Sprintf(format, args...)})
}

func notImplemented(op, format string, args ...any) {
	panic(&PreconditionError{Op: op, Msg: fmt.Sprintf(format, args...), Err: ErrNotImplemented})
}

// Recover stores a recovered *PreconditionError in *err. Other panics are
// re-raised. It must be called directly by a deferred statement:
//
//	defer constructor.Recover(&err)
func Recover(err *error) {
	r := recover()
	if r == nil {
		return
	}
	pe, ok := r.(*PreconditionError)
	if !ok {
		panic(r)
	}
	*err = pe
}
