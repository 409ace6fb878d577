// Package listing renders the .lst/.bst artifacts of spec.md §6. The lcc
// driver writes one after it has run an assembled program: the source lines
// come from the assembler's Result, the Output section and statistics footer
// from the interpreter's Machine. No listing is written for object-module
// (.o) output. It is grounded on the teacher's lang/retro/dump.go: small, writer-first helpers
// that push bytes out as they go rather than building the whole artifact in
// memory first.
package listing

import (
	"fmt"
	"io"
	"strings"

	"github.com/lcc-toolchain/lcc/internal/obj"

	"github.com/pkg/errors"
)

// Line is one source line's worth of listing information.
type Line struct {
	LineNo int
	Loc    uint16
	Source string
	Words  []uint16
}

// Stats is the "Program statistics" footer, populated only when a listing
// documents a completed interpreter run.
type Stats struct {
	InputFile    string
	Instructions uint32
	ProgramSize  uint32
	MaxStack     uint32
	LoadPoint    uint32
}

// Artifact is everything needed to render one .lst/.bst file.
type Artifact struct {
	Date     string // pre-formatted; callers own the clock
	UserName string
	Entries  []obj.Entry
	Lines    []Line
	Output   []byte // nil when no program was executed (assembler-only listing)
	Stats    *Stats
}

// errWriter sticks to the first error so callers can chain writes without
// checking each one, adapted from the teacher's internal/ngi.ErrWriter.
type errWriter struct {
	w   io.Writer
	err error
}

func (w *errWriter) printf(format string, a ...interface{}) {
	if w.err != nil {
		return
	}
	_, err := fmt.Fprintf(w.w, format, a...)
	if err != nil {
		w.err = errors.Wrap(err, "listing write failed")
	}
}

// WriteText renders the .lst (hex) variant.
func WriteText(w io.Writer, a Artifact) error {
	return write(w, a, formatWordHex)
}

// WriteBinary renders the .bst (binary-digit) variant.
func WriteBinary(w io.Writer, a Artifact) error {
	return write(w, a, formatWordBin)
}

func write(w io.Writer, a Artifact, wordFmt func(uint16) string) error {
	ew := &errWriter{w: w}

	ew.printf("LCC(.js) Assemble/Link/Interpret/Debug Ver 0.1  %s\n", a.Date)
	ew.printf("%s\n\n", a.UserName)

	ew.printf("Header\no\n")
	for _, e := range a.Entries {
		writeHeaderEntry(ew, e)
	}
	ew.printf("C\n\n")

	ew.printf("Loc   Code           Source Code\n")
	for i, ln := range a.Lines {
		// the original trims a single trailing blank line (spec.md §9).
		if i == len(a.Lines)-1 && strings.TrimSpace(ln.Source) == "" && len(ln.Words) == 0 {
			continue
		}
		writeLine(ew, ln, wordFmt)
	}
	ew.printf("\n")

	if a.Output != nil {
		ew.printf("====================================================== Output\n")
		ew.printf("%s\n\n", a.Output)
	}

	if a.Stats != nil {
		s := a.Stats
		ew.printf("========================================== Program statistics\n")
		ew.printf("Input file name        = %s\n", s.InputFile)
		ew.printf("Instructions executed  = %04x (hex)    %d (dec)\n", s.Instructions, s.Instructions)
		ew.printf("Program size           = %04x (hex)    %d (dec)\n", s.ProgramSize, s.ProgramSize)
		ew.printf("Max stack size         = %04x (hex)    %d (dec)\n", s.MaxStack, s.MaxStack)
		ew.printf("Load point             = %04x (hex)    %d (dec)\n", s.LoadPoint, s.LoadPoint)
	}

	return ew.err
}

func writeHeaderEntry(ew *errWriter, e obj.Entry) {
	if e.Label != "" {
		ew.printf("%c %04x %s\n", byte(e.Type), e.Address, e.Label)
		return
	}
	ew.printf("%c %04x\n", byte(e.Type), e.Address)
}

func writeLine(ew *errWriter, ln Line, wordFmt func(uint16) string) {
	if len(ln.Words) == 0 {
		ew.printf("%04x                 %s\n", ln.Loc, ln.Source)
		return
	}
	loc := ln.Loc
	for i, word := range ln.Words {
		src := ""
		if i == 0 {
			src = ln.Source
		}
		ew.printf("%04x  %s  %s\n", loc, wordFmt(word), src)
		loc++
	}
}

func formatWordHex(w uint16) string {
	return fmt.Sprintf("%04x", w)
}

func formatWordBin(w uint16) string {
	var b strings.Builder
	for i := 15; i >= 0; i-- {
		if (w>>uint(i))&1 == 1 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
		if i%4 == 0 && i != 0 {
			b.WriteByte(' ')
		}
	}
	return b.String()
}
