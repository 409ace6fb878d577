package link

import "github.com/pkg/errors"

// LinkError is one fatal condition raised while merging object modules.
// Unlike the assembler, the linker never accumulates multiple errors: the
// first fatal condition aborts the whole link (spec.md §4.2 "Failure
// semantics" — no partial output is ever produced).
type LinkError struct {
	Module string
	Msg    string
}

func (e *LinkError) Error() string {
	if e.Module == "" {
		return e.Msg
	}
	return e.Module + ": " + e.Msg
}

func errf(module, format string, args ...interface{}) error {
	return &LinkError{Module: module, Msg: errors.Errorf(format, args...).Error()}
}
