// Package errors holds error helpers shared across packages.
package errors

import (
	"fmt"
	"runtime/debug"
)

// PanicError is a recovered panic with the stack captured at the point
// of recovery.
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// RecoverPanic converts a recover() value into an error. Returns nil
// when r is nil so it can be called unconditionally:
//
//	defer func() { err = errors.RecoverPanic(recover()) }()
func RecoverPanic(r any) error {
	if r == nil {
		return nil
	}
	return &PanicError{Value: r, Stack: string(debug.Stack())}
}
