package interp

// push decrements sp (r6) and stores v at the new top of a descending
// stack (spec.md §4.3's "manages a descending stack").
func (m *Machine) push(v uint16) {
	m.reg[6]--
	m.mem[m.reg[6]] = v
	m.used[m.reg[6]] = true
}

// pop loads the current top of stack and increments sp.
func (m *Machine) pop() uint16 {
	v := m.mem[m.reg[6]]
	m.reg[6]++
	return v
}
