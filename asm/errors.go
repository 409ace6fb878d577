package asm

import (
	"fmt"
	"strings"
)

// asmError is one diagnostic, with enough context to reproduce the
// "line N of <file>\n<line text>\n<message>" report required by spec.md §7.
type asmError struct {
	file string
	line int
	text string
	msg  string
}

func (e asmError) Error() string {
	return fmt.Sprintf("line %d of %s\n%s\n%s", e.line, e.file, e.text, e.msg)
}

// ErrList accumulates every error reported during a run. It satisfies the
// error interface so a fatal assembly can be returned as a single error
// value, while still letting callers (and tests) inspect each entry via a
// type assertion, exactly as the teacher's asm.ErrAsm does.
type ErrList []asmError

func (e ErrList) Error() string {
	parts := make([]string, len(e))
	for i, err := range e {
		parts[i] = err.Error()
	}
	return strings.Join(parts, "\n\n")
}

// Sentinel errors raised by the operand parser; the enclosing parser wraps
// them with line/file context before appending to an ErrList.
var (
	errMissingOperand = fmt.Errorf("missing operand")
	errMissingNumber  = fmt.Errorf("missing number")
	errBadCharLiteral = fmt.Errorf("character literal must be a single character")
)

// Warning is a non-fatal diagnostic (spec.md §9: shift-count masking).
// Warnings never abort assembly and are never merged into ErrList.
type Warning struct {
	Line int
	Msg  string
}

func (w Warning) String() string { return fmt.Sprintf("line %d: warning: %s", w.Line, w.Msg) }
