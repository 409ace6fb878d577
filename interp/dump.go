package interp

import (
	"fmt"
	"sort"
)

// dumpMemory implements trap vector 11 (m): every address ever loaded or
// written, in ascending order, grounded on the teacher's dumpSlice helper
// in lang/retro/dump.go (walk the whole address space once, print only
// what's meaningful).
func (m *Machine) dumpMemory() {
	addrs := make([]uint16, 0, len(m.used))
	for a := range m.used {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	for _, a := range addrs {
		m.writeOut([]byte(fmt.Sprintf("%04x: %04x\n", a, m.mem[a])))
	}
}

// dumpRegisters implements trap vector 12 (r).
func (m *Machine) dumpRegisters() {
	m.writeOut([]byte(fmt.Sprintf("PC=%04x IR=%04x NZCV=%d%d%d%d\n",
		m.pc, m.lastIR, b2i(m.flg.N), b2i(m.flg.Z), b2i(m.flg.C), b2i(m.flg.V))))
	for i, r := range m.reg {
		m.writeOut([]byte(fmt.Sprintf("r%d=%04x ", i, r)))
	}
	m.writeOut([]byte("\n"))
}

// dumpStack implements trap vector 13 (s): every word between the current
// sp and the sp captured at load time (spec.md §4.3 "Stack dump
// semantics").
func (m *Machine) dumpStack() {
	sp := m.reg[6]
	for a := sp; a != m.initialSP; a++ {
		m.writeOut([]byte(fmt.Sprintf("%04x: %04x\n", a, m.mem[a])))
		if a == 0xFFFF {
			break
		}
	}
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
