package interp

import "github.com/pkg/errors"

// step fetches, decodes and executes exactly one instruction.
func (m *Machine) step() error {
	ir := m.mem[m.pc]
	m.pc++
	m.lastIR = ir
	d := decode(ir)

	switch d.op {
	case opBR:
		return m.execBranch(d)
	case opADD:
		return m.execArith(d, m.addWithFlags)
	case opSUB:
		return m.execArith(d, m.subWithFlags)
	case opAND:
		return m.execLogical(d, func(x, y uint16) uint16 { return x & y })
	case opLD:
		target := uint16(int(m.pc) + d.pcoffset9)
		m.reg[d.dr] = m.mem[target]
		m.setNZ(m.reg[d.dr])
	case opST:
		target := uint16(int(m.pc) + d.pcoffset9)
		m.mem[target] = m.reg[d.dr]
		m.used[target] = true
	case opBL:
		return m.execBL(d)
	case opLDR:
		target := m.reg[d.sr1] + uint16(d.offset6)
		m.reg[d.dr] = m.mem[target]
		m.setNZ(m.reg[d.dr])
	case opSTR:
		target := m.reg[d.sr1] + uint16(d.offset6)
		m.mem[target] = m.reg[d.dr]
		m.used[target] = true
	case opCMP:
		m.subWithFlags(m.reg[d.sr1], m.operand2(d))
	case opNOT:
		m.reg[d.dr] = ^m.reg[d.sr1]
		m.setNZ(m.reg[d.dr])
	case opCASE:
		return m.execCase(d)
	case opJMP:
		m.pc = m.reg[d.sr1] + uint16(d.offset6)
	case opMVI:
		m.reg[d.dr] = uint16(d.imm9)
		m.setNZ(m.reg[d.dr])
	case opLEA:
		m.reg[d.dr] = uint16(int(m.pc) + d.pcoffset9)
		m.setNZ(m.reg[d.dr])
	case opTRAP:
		return m.execTrap(d)
	}
	return nil
}

// operand2 resolves the second operand of a register/immediate instruction
// (bit5 selects imm5 over a plain register read from sr2).
func (m *Machine) operand2(d decoded) uint16 {
	if d.bit5 {
		return uint16(d.imm5)
	}
	return m.reg[d.sr2]
}

func (m *Machine) execArith(d decoded, op func(x, y uint16) uint16) error {
	m.reg[d.dr] = op(m.reg[d.sr1], m.operand2(d))
	return nil
}

func (m *Machine) execLogical(d decoded, op func(x, y uint16) uint16) error {
	m.reg[d.dr] = op(m.reg[d.sr1], m.operand2(d))
	m.setNZ(m.reg[d.dr])
	return nil
}

func (m *Machine) execBranch(d decoded) error {
	if branchTaken(d.dr, m.flg) {
		m.pc = uint16(int(m.pc) + d.pcoffset9)
	}
	return nil
}

func branchTaken(cc uint16, f Flags) bool {
	switch cc {
	case 0: // brz/bre
		return f.Z
	case 1: // brnz/brne
		return !f.Z
	case 2: // brn
		return f.N
	case 3: // brp
		return f.N == f.Z
	case 4: // brlt
		return f.N != f.V
	case 5: // brgt
		return f.N == f.V && !f.Z
	case 6: // brc/brb
		return f.C
	case 7: // br/bral
		return true
	default:
		return false
	}
}

// execBL handles both bl (bit11=1, pcoffset11-relative call) and blr/jsrr
// (bit11=0, base register + offset6 call), which share primary opcode 4.
func (m *Machine) execBL(d decoded) error {
	link := m.pc
	if d.bit11 {
		m.pc = uint16(int(m.pc) + d.pcoffset11)
	} else {
		m.pc = m.reg[d.sr1] + uint16(d.offset6)
	}
	m.reg[7] = link
	return nil
}

func (m *Machine) execCase(d decoded) error {
	switch d.eop {
	case eoPush:
		m.push(m.reg[d.dr])
	case eoPop:
		m.reg[d.dr] = m.pop()
		m.setNZ(m.reg[d.dr])
	case eoSrl, eoSra, eoSll, eoRol, eoRor:
		m.execShift(d)
	case eoMul:
		m.reg[d.dr] = m.reg[d.dr] * m.reg[d.sr1]
		m.setNZ(m.reg[d.dr])
	case eoDiv:
		if m.reg[d.sr1] == 0 {
			return errors.New("Floating point exception")
		}
		m.reg[d.dr] = uint16(int16(m.reg[d.dr]) / int16(m.reg[d.sr1]))
		m.setNZ(m.reg[d.dr])
	case eoRem:
		if m.reg[d.sr1] == 0 {
			return errors.New("Floating point exception")
		}
		m.reg[d.dr] = uint16(int16(m.reg[d.dr]) % int16(m.reg[d.sr1]))
		m.setNZ(m.reg[d.dr])
	case eoOr:
		m.reg[d.dr] = m.reg[d.dr] | m.reg[d.sr1]
		m.setNZ(m.reg[d.dr])
	case eoXor:
		m.reg[d.dr] = m.reg[d.dr] ^ m.reg[d.sr1]
		m.setNZ(m.reg[d.dr])
	case eoMvr:
		m.reg[d.dr] = m.reg[d.sr1]
		m.setNZ(m.reg[d.dr])
	case eoSext:
		width := int(m.reg[d.sr1])
		if width < 1 || width > 16 {
			return errors.Errorf("sext: bad field width %d", width)
		}
		m.reg[d.dr] = uint16(signExtend16(m.reg[d.dr], width))
		m.setNZ(m.reg[d.dr])
	default:
		return errors.Errorf("unknown extended opcode %d", d.eop)
	}
	return nil
}

func (m *Machine) execShift(d decoded) {
	count := uint((d.raw >> 5) & 0xF)
	v := m.reg[d.dr]
	var out uint16
	var lastBit bool
	switch d.eop {
	case eoSrl:
		if count > 0 {
			lastBit = (v>>(count-1))&1 == 1
		}
		out = v >> count
	case eoSra:
		if count > 0 {
			lastBit = (v>>(count-1))&1 == 1
		}
		out = uint16(int16(v) >> count)
	case eoSll:
		if count > 0 {
			lastBit = (v>>(16-count))&1 == 1
		}
		out = v << count
	case eoRol:
		c := count % 16
		out = (v << c) | (v >> (16 - c))
		if c > 0 {
			lastBit = (v>>(16-c))&1 == 1
		}
	case eoRor:
		c := count % 16
		out = (v >> c) | (v << (16 - c))
		if c > 0 {
			lastBit = (v>>(c-1))&1 == 1
		}
	}
	m.reg[d.dr] = out
	m.flg.C = lastBit
	m.setNZ(out)
}
