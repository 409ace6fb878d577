package asm

import (
	"bytes"

	"github.com/lcc-toolchain/lcc/internal/listing"
	"github.com/lcc-toolchain/lcc/internal/obj"
)

// Result is everything Assemble produces for one source file: the wire-ready
// object/executable bytes, the listing data needed by an .lst/.bst writer,
// and any non-fatal warnings.
type Result struct {
	Bytes      []byte
	Entries    []obj.Entry
	Code       []uint16
	Listing    []listing.Line
	Warnings   []Warning
	ObjectMode bool // true if a .global or .extern forced object-module output (spec.md §4.1)
}

// build serializes the parser's pass-2 state into the obj wire format.
// ObjectMode only changes how the caller names and handles the output file
// (a relocatable .o to be linked, versus a directly runnable image) — the
// header entries themselves look identical either way, per spec.md §4.2.
func (p *parser) build() (*Result, error) {
	var buf bytes.Buffer
	if err := obj.Write(&buf, p.entries, p.code); err != nil {
		return nil, err
	}
	return &Result{
		Bytes:      buf.Bytes(),
		Entries:    p.entries,
		Code:       p.code,
		Listing:    p.lines2,
		Warnings:   p.warnings,
		ObjectMode: p.objectMode,
	}, nil
}
