package asm

import (
	"fmt"

	"github.com/lcc-toolchain/lcc/internal/listing"
	"github.com/lcc-toolchain/lcc/internal/obj"
)

const maxErrors = 1

// symbol tracks a label's bookkeeping across both passes, mirroring the
// teacher's asm/parser.go "label" type (definition site + all use sites),
// simplified because LCC resolves everything in a second full pass instead
// of a final patch-up walk over use sites.
type symbol struct {
	addr              int
	defined           bool
	line              int
	fromGlobalForward bool // set when .global pre-bound this label (spec.md §9)
}

// parser drives the two-pass algorithm of spec.md §4.1. One instance is
// built per input file and discarded after emission (spec.md §3
// "Lifecycles"), matching the teacher's per-invocation asm.parser.
type parser struct {
	file  string
	lines []string

	pass    int
	lineNum int
	locCtr  int

	syms    map[string]*symbol
	externs map[string]bool
	globals map[string]bool

	startLabel string

	objectMode bool

	errs     ErrList
	warnings []Warning

	code    []uint16
	entries []obj.Entry
	lines2  []listing.Line
}

func newParser(file string, src []string) *parser {
	return &parser{
		file:    file,
		lines:   src,
		syms:    make(map[string]*symbol),
		externs: make(map[string]bool),
		globals: make(map[string]bool),
	}
}

func (p *parser) abort() bool { return len(p.errs) >= maxErrors }

func (p *parser) errorAt(line int, text, msg string) {
	p.errs = append(p.errs, asmError{file: p.file, line: line, text: text, msg: msg})
}

func (p *parser) errorf(format string, args ...interface{}) {
	text := ""
	if p.lineNum-1 < len(p.lines) && p.lineNum-1 >= 0 {
		text = p.lines[p.lineNum-1]
	}
	p.errorAt(p.lineNum, text, fmt.Sprintf(format, args...))
}

func (p *parser) warnf(format string, args ...interface{}) {
	p.warnings = append(p.warnings, Warning{Line: p.lineNum, Msg: fmt.Sprintf(format, args...)})
}

// run executes pass 1 then pass 2. It returns the accumulated errors (nil if
// none), following the "stop on first error" default of spec.md §7: pass 2
// never starts if pass 1 produced any error.
func (p *parser) run() error {
	p.pass = 1
	p.locCtr = 0
	p.lineNum = 0
	for _, line := range p.lines {
		p.lineNum++
		if p.abort() {
			break
		}
		p.processLine(line)
	}
	if len(p.errs) > 0 {
		return p.errs
	}
	if p.locCtr == 0 {
		p.errorAt(0, "", "empty source: no instructions or data emitted")
		return p.errs
	}

	p.pass = 2
	p.locCtr = 0
	p.lineNum = 0
	p.code = make([]uint16, 0, p.locCtr)
	for _, line := range p.lines {
		p.lineNum++
		if p.abort() {
			break
		}
		p.processLine(line)
	}
	if len(p.errs) > 0 {
		return p.errs
	}

	if p.startLabel != "" {
		sym, ok := p.syms[p.startLabel]
		if !ok || !sym.defined {
			p.errorAt(0, "", "undefined start label "+p.startLabel)
			return p.errs
		}
		p.entries = append(p.entries, obj.Entry{Type: obj.Start, Address: uint16(sym.addr)})
	}

	for name := range p.globals {
		sym, ok := p.syms[name]
		if !ok || !sym.defined {
			p.errorAt(0, "", "undefined global "+name)
			continue
		}
		p.entries = append(p.entries, obj.Entry{Type: obj.Global, Address: uint16(sym.addr), Label: name})
	}
	if len(p.errs) > 0 {
		return p.errs
	}
	return nil
}

// processLine tokenizes one source line, handles an optional leading label
// definition, then dispatches to a directive or an instruction.
func (p *parser) processLine(line string) {
	lx := newLineLexer(line)
	toks, err := lx.tokens()
	if err != nil {
		p.errorAt(p.lineNum, line, err.Error())
		return
	}
	if len(toks) == 0 {
		if p.pass == 2 {
			p.lines2 = append(p.lines2, listing.Line{LineNo: p.lineNum, Loc: uint16(p.locCtr), Source: line})
		}
		return
	}

	idx := 0
	if toks[0].kind == tokLabelDef {
		p.defineLabel(toks[0].text)
		idx = 1
	}
	if idx >= len(toks) {
		if p.pass == 2 {
			p.lines2 = append(p.lines2, listing.Line{LineNo: p.lineNum, Loc: uint16(p.locCtr), Source: line})
		}
		return
	}

	startLoc := p.locCtr
	name := toks[idx].text
	var words []uint16
	if len(name) > 0 && name[0] == '.' {
		words = p.directive(name, toks[idx+1:], line)
	} else {
		words = p.instruction(name, toks[idx+1:])
	}

	if p.pass == 2 {
		p.lines2 = append(p.lines2, listing.Line{LineNo: p.lineNum, Loc: uint16(startLoc), Source: line, Words: words})
		p.code = append(p.code, words...)
	}
}

func (p *parser) defineLabel(name string) {
	if p.pass != 1 {
		return
	}
	sym, ok := p.syms[name]
	if !ok {
		p.syms[name] = &symbol{addr: p.locCtr, defined: true, line: p.lineNum}
		return
	}
	if sym.fromGlobalForward && !sym.defined {
		sym.defined = true
		sym.addr = p.locCtr
		sym.fromGlobalForward = false
		return
	}
	if sym.defined {
		p.errorf("duplicate label definition: %s (first defined on line %d)", name, sym.line)
		return
	}
	sym.defined = true
	sym.addr = p.locCtr
	sym.line = p.lineNum
}

// instruction handles a single mnemonic line. In pass 1 it only needs to
// know the word count (always 1 for LCC); in pass 2 it performs the full
// encode.
func (p *parser) instruction(mnemonic string, rest []token) []uint16 {
	if p.pass == 1 {
		if !isKnownMnemonic(mnemonic) {
			p.errorf("unknown instruction mnemonic %q", mnemonic)
			return nil
		}
		p.locCtr++
		return nil
	}
	word, ok := p.encodeInstruction(mnemonic, rest)
	p.locCtr++
	if !ok {
		return nil
	}
	return []uint16{word}
}

// operands consumes exactly n operands from rest, reporting a parse error
// through p.errorf and returning ok=false on the first failure.
func (p *parser) operands(rest []token, n int) ([]operand, bool) {
	ops := make([]operand, 0, n)
	idx := 0
	for len(ops) < n {
		op, err := parseOperand(rest, &idx)
		if err != nil {
			p.errorf("%s", err)
			return nil, false
		}
		ops = append(ops, op)
	}
	return ops, true
}
