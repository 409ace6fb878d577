package interp

import (
	"fmt"
	"strconv"
	"strings"
)

// execTrap dispatches on the fixed trap vector table of spec.md §4.3. The
// register operand (when the trap has one) lives in the dr field alongside
// the vector, mirroring every other opcode's register-in-bits-11..9 layout.
func (m *Machine) execTrap(d decoded) error {
	reg := d.dr
	switch d.trapVec {
	case trapHalt:
		m.halted = true
	case trapNl:
		m.writeOut([]byte("\n"))
	case trapDout:
		m.writeOut([]byte(strconv.FormatInt(int64(int16(m.reg[reg])), 10)))
	case trapUdout:
		m.writeOut([]byte(strconv.FormatUint(uint64(m.reg[reg]), 10)))
	case trapHout:
		m.writeOut([]byte(fmt.Sprintf("%x", m.reg[reg])))
	case trapAout:
		m.writeOut([]byte{byte(m.reg[reg])})
	case trapSout:
		m.writeOut(m.readCString(m.reg[reg]))
	case trapDin:
		v, err := m.readDecimal()
		if err != nil {
			return err
		}
		m.reg[reg] = v
	case trapHin:
		v, err := m.readHex()
		if err != nil {
			return err
		}
		m.reg[reg] = v
	case trapAin:
		c, err := m.in.ReadByte()
		if err != nil {
			m.reg[reg] = 0
			return nil
		}
		m.reg[reg] = uint16(c)
	case trapSin:
		line, _ := m.in.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		base := m.reg[reg]
		for i := 0; i < len(line); i++ {
			m.mem[base+uint16(i)] = uint16(line[i])
			m.used[base+uint16(i)] = true
		}
		m.mem[base+uint16(len(line))] = 0
		m.used[base+uint16(len(line))] = true
	case trapM:
		m.dumpMemory()
	case trapR:
		m.dumpRegisters()
	case trapS:
		m.dumpStack()
	case trapBp:
		// breakpoint is a stub outside an interactive debugger.
	}
	return nil
}

func (m *Machine) readCString(addr uint16) []byte {
	var b []byte
	for m.mem[addr] != 0 {
		b = append(b, byte(m.mem[addr]))
		addr++
	}
	return b
}

func (m *Machine) readDecimal() (uint16, error) {
	for {
		line, err := m.readLine()
		if err != nil {
			return 0, err
		}
		n, perr := strconv.ParseInt(strings.TrimSpace(line), 10, 32)
		if perr == nil {
			return uint16(n), nil
		}
		m.writeOut([]byte("Invalid dec constant. Re-enter:"))
	}
}

func (m *Machine) readHex() (uint16, error) {
	for {
		line, err := m.readLine()
		if err != nil {
			return 0, err
		}
		n, perr := strconv.ParseInt(strings.TrimSpace(line), 16, 32)
		if perr == nil {
			return uint16(n), nil
		}
		m.writeOut([]byte("Invalid hex constant. Re-enter:"))
	}
}

func (m *Machine) readLine() (string, error) {
	line, err := m.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return line, nil
}
