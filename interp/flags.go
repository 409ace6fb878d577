package interp

// setNZ sets N and Z from a 16-bit result reinterpreted as signed, leaving
// C and V untouched (used by logical operations: and, not, or, xor, mvr,
// mvi, lea, ld, ldr, sext).
func (m *Machine) setNZ(result uint16) {
	r := int16(result)
	m.flg.N = r < 0
	m.flg.Z = r == 0
}

// addWithFlags computes x+y over 16-bit signed operands and sets N, Z, C, V
// per spec.md §4.3's arithmetic flag rules, returning the 16-bit result.
func (m *Machine) addWithFlags(x, y uint16) uint16 {
	xs, ys := int16(x), int16(y)
	result := uint16(xs + ys)
	m.setNZ(result)
	m.flg.C = carryOf(xs, ys, int16(result))
	m.flg.V = overflowOf(xs, ys, int16(result))
	return result
}

// subWithFlags implements x - y as x + (-y), per spec.md's explicit rule.
func (m *Machine) subWithFlags(x, y uint16) uint16 {
	return m.addWithFlags(x, uint16(-int16(y)))
}

func carryOf(x, y, result int16) bool {
	switch {
	case x >= 0 && y >= 0:
		return false
	case x < 0 && y < 0:
		return true
	default:
		return result >= 0
	}
}

func overflowOf(x, y, result int16) bool {
	if (x >= 0) != (y >= 0) {
		return false
	}
	return (result >= 0) != (x >= 0)
}
