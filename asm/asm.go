// Package asm implements the LCC two-pass assembler: lexing, label
// resolution, PC-relative encoding and object/executable emission.
package asm

import (
	"bufio"
	"bytes"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/lcc-toolchain/lcc/internal/obj"
)

// Assemble reads the source at path from r and produces an object or
// executable Result, dispatching on path's extension per spec.md §4.1.
func Assemble(path string, r io.Reader) (*Result, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".a":
		return assembleSource(path, r)
	case ".bin":
		return assembleRaw(path, r, parseBinLine)
	case ".hex":
		return assembleRaw(path, r, parseHexLine)
	case ".ap":
		return nil, errors.New("this is an extended-assembler source file; use the extended assembler")
	default:
		return nil, errors.Errorf("Unsupported file type: %s", ext)
	}
}

func assembleSource(path string, r io.Reader) (*Result, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	p := newParser(path, lines)
	if err := p.run(); err != nil {
		return nil, err
	}
	return p.build()
}

// assembleRaw implements the .bin/.hex fast paths: every non-empty,
// non-comment line decodes directly to one machine word, with no symbols,
// no relocation, and an implicit start at address 0.
func assembleRaw(path string, r io.Reader, decode func(string) (uint16, error)) (*Result, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	var code []uint16
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, ";") {
			continue
		}
		w, err := decode(trimmed)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d of %s", i+1, path)
		}
		code = append(code, w)
	}
	if len(code) == 0 {
		return nil, errors.Errorf("empty source: no instructions or data emitted")
	}
	entries := []obj.Entry{{Type: obj.Start, Address: 0}}
	var buf bytes.Buffer
	if err := obj.Write(&buf, entries, code); err != nil {
		return nil, err
	}
	return &Result{Bytes: buf.Bytes(), Entries: entries, Code: code}, nil
}

func parseBinLine(s string) (uint16, error) {
	if len(s) != 16 {
		return 0, errors.Errorf("expected 16 binary digits, got %q", s)
	}
	n, err := strconv.ParseUint(s, 2, 16)
	if err != nil {
		return 0, errors.Wrapf(err, "bad binary word %q", s)
	}
	return uint16(n), nil
}

func parseHexLine(s string) (uint16, error) {
	if len(s) != 4 {
		return 0, errors.Errorf("expected 4 hex digits, got %q", s)
	}
	n, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, errors.Wrapf(err, "bad hex word %q", s)
	}
	return uint16(n), nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading source")
	}
	return lines, nil
}
