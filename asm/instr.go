package asm

import "github.com/lcc-toolchain/lcc/internal/obj"

// resolveLocal evaluates a label or '*' operand against the (by pass 2,
// fully populated) symbol table. ok is false for an undefined label.
func (p *parser) resolveLocal(op operand) (addr int, ok bool) {
	switch op.kind {
	case opndLoc:
		return p.locCtr + op.offset, true
	case opndLabel:
		sym, found := p.syms[op.label]
		if found && sym.defined {
			return sym.addr + op.offset, true
		}
	}
	return 0, false
}

// resolveTarget computes a PC-relative displacement for a br/ld/st/lea/bl
// operand. When the operand names an extern symbol and the instruction
// supports external fixups (allowExtern), it records the appropriate
// E/e/V-kind entry and returns a zeroed placeholder displacement per
// spec.md's "displacement field zeroed" invariant.
func (p *parser) resolveTarget(op operand, allowExtern bool, kind obj.EntryType) (disp int, ok bool) {
	if addr, found := p.resolveLocal(op); found {
		return addr - (p.locCtr + 1), true
	}
	if op.kind == opndLabel && p.externs[op.label] {
		if !allowExtern {
			p.errorf("external reference not supported for this instruction: %s", op.label)
			return 0, false
		}
		p.entries = append(p.entries, obj.Entry{Type: kind, Address: uint16(p.locCtr), Label: op.label})
		return 0, true
	}
	if op.kind == opndLabel {
		p.errorf("undefined label %s", op.label)
	}
	return 0, false
}

// encodeInstruction performs the full pass-2 encode for one mnemonic line,
// per the table in spec.md §4.1.
func (p *parser) encodeInstruction(mnemonic string, rest []token) (uint16, bool) {
	if cc, ok := branchCC[mnemonic]; ok {
		return p.encodeBranch(cc, rest)
	}
	if cg, ok := caseGroup[mnemonic]; ok {
		return p.encodeCaseGroup(cg.eo, cg.arity, rest)
	}
	if vec, ok := trapVectors[mnemonic]; ok {
		return p.encodeTrap(mnemonic, vec, rest)
	}
	switch mnemonic {
	case "add":
		return p.encodeArith(opADD, rest)
	case "sub":
		return p.encodeArith(opSUB, rest)
	case "and":
		return p.encodeArith(opAND, rest)
	case "cmp":
		return p.encodeCmp(rest)
	case "ld":
		return p.encodePCRel(opLD, obj.Ext9, rest)
	case "st":
		return p.encodePCRel(opST, obj.Ext9, rest)
	case "lea":
		return p.encodePCRel(opLEA, obj.Ext9, rest)
	case "ldr":
		return p.encodeBaseOff(opLDR, rest)
	case "str":
		return p.encodeBaseOff(opSTR, rest)
	case "bl":
		return p.encodeBL(rest)
	case "blr", "jsrr":
		return p.encodeBaseOnly(rest)
	case "jmp":
		return p.encodeJmp(rest)
	case "ret":
		return p.encodeRet(rest)
	case "not":
		return p.encodeNot(rest)
	case "mvi":
		return p.encodeMvi(rest)
	case "trap":
		return p.encodeTrapLiteral(rest)
	}
	p.errorf("unknown instruction mnemonic %q", mnemonic)
	return 0, false
}

// encodeTrap encodes one of the named trap aliases (halt, dout, sin, ...).
// I/O traps take a register operand, packed into the dr field alongside the
// fixed vector; halt/m/r/s/bp take none.
func (p *parser) encodeTrap(mnemonic string, vec uint16, rest []token) (uint16, bool) {
	if trapTakesRegister[mnemonic] {
		ops, ok := p.operands(rest, 1)
		if !ok {
			return 0, false
		}
		if ops[0].kind != opndReg {
			p.errorf("missing register")
			return 0, false
		}
		return uint16(opTRAP)<<12 | uint16(ops[0].reg)<<9 | vec, true
	}
	if len(rest) != 0 {
		p.errorf("this trap takes no operands")
		return 0, false
	}
	return uint16(opTRAP)<<12 | vec, true
}

// encodeTrapLiteral encodes the bare "trap n" form with an explicit numeric
// vector operand.
func (p *parser) encodeTrapLiteral(rest []token) (uint16, bool) {
	ops, ok := p.operands(rest, 1)
	if !ok {
		return 0, false
	}
	if ops[0].kind != opndImm {
		p.errorf("missing number")
		return 0, false
	}
	if ops[0].imm < 0 || ops[0].imm > 0xFFF {
		p.errorf("trap vector out of range")
		return 0, false
	}
	return uint16(opTRAP)<<12 | uint16(ops[0].imm), true
}

func (p *parser) encodeBranch(cc uint16, rest []token) (uint16, bool) {
	ops, ok := p.operands(rest, 1)
	if !ok {
		return 0, false
	}
	disp, ok := p.resolveTarget(ops[0], false, 0)
	if !ok {
		return 0, false
	}
	if !fitsSigned(disp, 9) {
		p.errorf("pcoffset9 out of range")
		return 0, false
	}
	return uint16(opBR)<<12 | cc<<9 | signedField(disp, 9), true
}

func (p *parser) encodeArith(op uint16, rest []token) (uint16, bool) {
	ops, ok := p.operands(rest, 3)
	if !ok {
		return 0, false
	}
	if ops[0].kind != opndReg || ops[1].kind != opndReg {
		p.errorf("missing register")
		return 0, false
	}
	dr, sr1 := uint16(ops[0].reg), uint16(ops[1].reg)
	switch ops[2].kind {
	case opndReg:
		return uint16(op)<<12 | dr<<9 | sr1<<6 | uint16(ops[2].reg), true
	case opndImm:
		if !fitsSigned(ops[2].imm, 5) {
			p.errorf("imm5 out of range")
			return 0, false
		}
		return uint16(op)<<12 | dr<<9 | sr1<<6 | 1<<5 | signedField(ops[2].imm, 5), true
	default:
		p.errorf("missing register")
		return 0, false
	}
}

func (p *parser) encodeCmp(rest []token) (uint16, bool) {
	ops, ok := p.operands(rest, 2)
	if !ok {
		return 0, false
	}
	if ops[0].kind != opndReg {
		p.errorf("missing register")
		return 0, false
	}
	sr1 := uint16(ops[0].reg)
	switch ops[1].kind {
	case opndReg:
		return uint16(opCMP)<<12 | sr1<<6 | uint16(ops[1].reg), true
	case opndImm:
		if !fitsSigned(ops[1].imm, 5) {
			p.errorf("imm5 out of range")
			return 0, false
		}
		return uint16(opCMP)<<12 | sr1<<6 | 1<<5 | signedField(ops[1].imm, 5), true
	default:
		p.errorf("missing register")
		return 0, false
	}
}

// encodePCRel handles ld/st/lea. spec.md §9 documents a quirk: a bare
// immediate literal is accepted as the displacement verbatim, bypassing
// label resolution entirely.
func (p *parser) encodePCRel(op uint16, kind obj.EntryType, rest []token) (uint16, bool) {
	ops, ok := p.operands(rest, 2)
	if !ok {
		return 0, false
	}
	if ops[0].kind != opndReg {
		p.errorf("missing register")
		return 0, false
	}
	reg := uint16(ops[0].reg)
	if ops[1].kind == opndImm {
		if !fitsSigned(ops[1].imm, 9) {
			p.errorf("pcoffset9 out of range")
			return 0, false
		}
		return uint16(op)<<12 | reg<<9 | signedField(ops[1].imm, 9), true
	}
	disp, ok := p.resolveTarget(ops[1], true, kind)
	if !ok {
		return 0, false
	}
	if !fitsSigned(disp, 9) {
		p.errorf("pcoffset9 out of range")
		return 0, false
	}
	return uint16(op)<<12 | reg<<9 | signedField(disp, 9), true
}

func (p *parser) encodeBaseOff(op uint16, rest []token) (uint16, bool) {
	ops, ok := p.operands(rest, 3)
	if !ok {
		return 0, false
	}
	if ops[0].kind != opndReg || ops[1].kind != opndReg || ops[2].kind != opndImm {
		p.errorf("missing register")
		return 0, false
	}
	if !fitsSigned(ops[2].imm, 6) {
		p.errorf("offset6 out of range")
		return 0, false
	}
	return uint16(op)<<12 | uint16(ops[0].reg)<<9 | uint16(ops[1].reg)<<6 | signedField(ops[2].imm, 6), true
}

func (p *parser) encodeBL(rest []token) (uint16, bool) {
	ops, ok := p.operands(rest, 1)
	if !ok {
		return 0, false
	}
	disp, ok := p.resolveTarget(ops[0], true, obj.Ext11)
	if !ok {
		return 0, false
	}
	if !fitsSigned(disp, 11) {
		p.errorf("pcoffset11 out of range")
		return 0, false
	}
	return uint16(opBL)<<12 | 1<<11 | signedField(disp, 11), true
}

func (p *parser) encodeBaseOnly(rest []token) (uint16, bool) {
	ops, err := p.optionalOperands(rest, 1, 2)
	if err {
		return 0, false
	}
	if len(ops) == 0 || ops[0].kind != opndReg {
		p.errorf("missing register")
		return 0, false
	}
	off := 0
	if len(ops) == 2 {
		if ops[1].kind != opndImm || !fitsSigned(ops[1].imm, 6) {
			p.errorf("offset6 out of range")
			return 0, false
		}
		off = ops[1].imm
	}
	return uint16(opBL)<<12 | uint16(ops[0].reg)<<6 | signedField(off, 6), true
}

func (p *parser) encodeJmp(rest []token) (uint16, bool) {
	ops, err := p.optionalOperands(rest, 1, 2)
	if err {
		return 0, false
	}
	if len(ops) == 0 || ops[0].kind != opndReg {
		p.errorf("missing register")
		return 0, false
	}
	off := 0
	if len(ops) == 2 {
		if ops[1].kind != opndImm || !fitsSigned(ops[1].imm, 6) {
			p.errorf("offset6 out of range")
			return 0, false
		}
		off = ops[1].imm
	}
	return uint16(opJMP)<<12 | uint16(ops[0].reg)<<6 | signedField(off, 6), true
}

func (p *parser) encodeRet(rest []token) (uint16, bool) {
	return uint16(opJMP)<<12 | 7<<6, true
}

func (p *parser) encodeNot(rest []token) (uint16, bool) {
	ops, ok := p.operands(rest, 2)
	if !ok {
		return 0, false
	}
	if ops[0].kind != opndReg || ops[1].kind != opndReg {
		p.errorf("missing register")
		return 0, false
	}
	return uint16(opNOT)<<12 | uint16(ops[0].reg)<<9 | uint16(ops[1].reg)<<6, true
}

func (p *parser) encodeMvi(rest []token) (uint16, bool) {
	ops, ok := p.operands(rest, 2)
	if !ok {
		return 0, false
	}
	if ops[0].kind != opndReg {
		p.errorf("missing register")
		return 0, false
	}
	if ops[1].kind != opndImm {
		p.errorf("missing number")
		return 0, false
	}
	if !fitsSigned(ops[1].imm, 9) {
		p.errorf("mvi immediate out of range")
		return 0, false
	}
	return uint16(opMVI)<<12 | uint16(ops[0].reg)<<9 | signedField(ops[1].imm, 9), true
}

func (p *parser) encodeCaseGroup(eo uint16, arity int, rest []token) (uint16, bool) {
	switch arity {
	case 1:
		ops, ok := p.operands(rest, 1)
		if !ok {
			return 0, false
		}
		if ops[0].kind != opndReg {
			p.errorf("missing register")
			return 0, false
		}
		return uint16(opCASE)<<12 | uint16(ops[0].reg)<<9 | eo, true
	case 2:
		ops, ok := p.operands(rest, 2)
		if !ok {
			return 0, false
		}
		if ops[0].kind != opndReg || ops[1].kind != opndReg {
			p.errorf("missing register")
			return 0, false
		}
		return uint16(opCASE)<<12 | uint16(ops[0].reg)<<9 | uint16(ops[1].reg)<<6 | eo, true
	case 3:
		ops, ok := p.operands(rest, 2)
		if !ok {
			return 0, false
		}
		if ops[0].kind != opndReg || ops[1].kind != opndImm {
			p.errorf("missing register")
			return 0, false
		}
		count := ops[1].imm
		if count < 0 || count > 15 {
			p.warnf("shift count out of range, masked to low 4 bits")
			count &= 0xF
		}
		return uint16(opCASE)<<12 | uint16(ops[0].reg)<<9 | uint16(count&0xF)<<5 | eo, true
	}
	return 0, false
}

// optionalOperands parses between min and max operands, stopping as soon as
// an operand fails to parse past min. errOut reports a hard parse error (not
// simply "fewer operands than max").
func (p *parser) optionalOperands(rest []token, min, max int) (ops []operand, errOut bool) {
	idx := 0
	for len(ops) < max {
		if idx >= len(rest) {
			break
		}
		op, err := parseOperand(rest, &idx)
		if err != nil {
			if len(ops) >= min {
				break
			}
			p.errorf("%s", err)
			return nil, true
		}
		ops = append(ops, op)
	}
	if len(ops) < min {
		p.errorf("missing operand")
		return nil, true
	}
	return ops, false
}
