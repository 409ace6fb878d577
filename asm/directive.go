package asm

import "github.com/lcc-toolchain/lcc/internal/obj"

// directive handles one assembler directive line for both passes. Like
// instruction, it returns the words to append during pass 2 (nil in pass 1).
func (p *parser) directive(name string, rest []token, line string) []uint16 {
	switch name {
	case ".start":
		return p.dirStart(rest)
	case ".global", ".globl":
		return p.dirGlobal(rest)
	case ".extern":
		return p.dirExtern(rest)
	case ".blkw", ".space", ".zero":
		return p.dirBlock(rest)
	case ".word", ".fill":
		return p.dirWord(rest)
	case ".stringz", ".asciz", ".string":
		return p.dirString(rest)
	}
	p.errorf("unknown directive %q", name)
	return nil
}

// dirStart records the program's entry label (spec.md §4.2's "S" header
// entry). Only the first .start in a module is honored; a second is a
// duplicate-label-class error, matching the teacher's one-shot directives.
func (p *parser) dirStart(rest []token) []uint16 {
	if p.pass != 1 {
		return nil
	}
	name, ok := p.identOperand(rest)
	if !ok {
		return nil
	}
	if p.startLabel != "" {
		p.errorf(".start already specified (first was %s)", p.startLabel)
		return nil
	}
	p.startLabel = name
	return nil
}

// dirGlobal exports one or more labels (spec.md §4.2's "G" entries). A
// .global that precedes its label's definition pre-binds a placeholder
// symbol so ordinary label lookups still see it as "known", per spec.md §9.
func (p *parser) dirGlobal(rest []token) []uint16 {
	if p.pass != 1 {
		return nil
	}
	names, ok := p.identOperands(rest)
	if !ok {
		return nil
	}
	p.objectMode = true
	for _, name := range names {
		p.globals[name] = true
		if _, exists := p.syms[name]; !exists {
			p.syms[name] = &symbol{fromGlobalForward: true}
		}
	}
	return nil
}

// dirExtern declares one or more labels resolved by the linker.
func (p *parser) dirExtern(rest []token) []uint16 {
	if p.pass != 1 {
		return nil
	}
	names, ok := p.identOperands(rest)
	if !ok {
		return nil
	}
	p.objectMode = true
	for _, name := range names {
		p.externs[name] = true
	}
	return nil
}

// dirBlock reserves n words of zeroed storage (.blkw/.space/.zero are
// synonyms, per spec.md §4.2).
func (p *parser) dirBlock(rest []token) []uint16 {
	ops, ok := p.operands(rest, 1)
	if !ok {
		return nil
	}
	if ops[0].kind != opndImm {
		p.errorf("missing number")
		return nil
	}
	n := ops[0].imm
	if n <= 0 {
		p.errorf("block size must be positive")
		return nil
	}
	p.locCtr += n
	if p.pass != 2 {
		return nil
	}
	return make([]uint16, n)
}

// dirWord emits one literal word, or (when given a label) a linkable
// absolute reference: an internal "A" adjustment entry for a locally
// resolved label (the linker shifts its value by the module's load
// address), or an external "V" fixup when the label is .extern.
func (p *parser) dirWord(rest []token) []uint16 {
	ops, ok := p.operands(rest, 1)
	if !ok {
		return nil
	}
	p.locCtr++
	if p.pass != 2 {
		return nil
	}
	switch ops[0].kind {
	case opndImm:
		return []uint16{uint16(ops[0].imm)}
	case opndLabel, opndLoc:
		addr, found := p.resolveLocal(ops[0])
		if found {
			p.entries = append(p.entries, obj.Entry{Type: obj.Adjust, Address: uint16(p.locCtr - 1)})
			return []uint16{uint16(addr)}
		}
		if ops[0].kind == opndLabel && p.externs[ops[0].label] {
			p.entries = append(p.entries, obj.Entry{Type: obj.ExtWord, Address: uint16(p.locCtr - 1), Label: ops[0].label})
			return []uint16{0}
		}
		p.errorf("undefined label %s", ops[0].label)
		return []uint16{0}
	}
	p.errorf("missing number")
	return []uint16{0}
}

// dirString emits a nul-terminated sequence of one word per character.
func (p *parser) dirString(rest []token) []uint16 {
	if len(rest) == 0 || rest[0].kind != tokString {
		p.errorf("missing string operand")
		return nil
	}
	s := rest[0].text
	p.locCtr += len(s) + 1
	if p.pass != 2 {
		return nil
	}
	out := make([]uint16, 0, len(s)+1)
	for i := 0; i < len(s); i++ {
		out = append(out, uint16(s[i]))
	}
	out = append(out, 0)
	return out
}

func (p *parser) identOperand(rest []token) (string, bool) {
	if len(rest) == 0 || rest[0].kind != tokIdent {
		p.errorf("missing operand")
		return "", false
	}
	return rest[0].text, true
}

func (p *parser) identOperands(rest []token) ([]string, bool) {
	var names []string
	for _, t := range rest {
		if t.kind != tokIdent {
			p.errorf("missing operand")
			return nil, false
		}
		names = append(names, t.text)
	}
	if len(names) == 0 {
		p.errorf("missing operand")
		return nil, false
	}
	return names, true
}
