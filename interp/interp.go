// Package interp implements the LCC stack-oriented bytecode interpreter:
// loading an executable image, decoding and executing each 16-bit
// instruction, and servicing the fixed trap table. It keeps the captured
// output and run statistics that the lcc driver writes into the listing
// artifacts; it does not write listings itself.
package interp

import (
	"bufio"
	"bytes"
	"io"

	"github.com/pkg/errors"

	"github.com/lcc-toolchain/lcc/internal/obj"
)

// maxInstructions is the fixed safety cap of spec.md §4.3 "Safety cap".
const maxInstructions = 500000

// Flags holds the four one-bit condition codes.
type Flags struct {
	N, Z, C, V bool
}

// Machine is one loaded, runnable program. It owns the entire address
// space, register file and flag word exclusively (spec.md §3 "Ownership"),
// matching the teacher's vm.Instance: a single struct big enough to hold
// everything decode/exec touches, built once per run and discarded after.
type Machine struct {
	mem    [65536]uint16
	reg    [8]uint16
	pc     uint16
	lastIR uint16
	flg    Flags

	loadPoint uint16
	startAddr uint16
	initialSP uint16

	out      io.Writer
	captured bytes.Buffer
	in       *bufio.Reader

	used map[uint16]bool

	instructions uint32
	maxStack     uint32
	halted       bool
}

// Option configures a Machine at construction, the functional-options
// pattern the teacher's vm package uses for vm.Instance.
type Option func(*Machine)

// WithLoadPoint sets the address the executable's code is copied to.
func WithLoadPoint(lp uint16) Option {
	return func(m *Machine) { m.loadPoint = lp }
}

// WithInput supplies a canned input stream for din/hin/ain/sin, in place of
// the default (an empty reader: din and hin then fail at EOF, ain yields 0
// and sin stores an empty string).
func WithInput(r io.Reader) Option {
	return func(m *Machine) { m.in = bufio.NewReader(r) }
}

// WithOutput tees all trap output to w in addition to the Machine's own
// captured-output buffer (used to build the listing's "Output" section).
func WithOutput(w io.Writer) Option {
	return func(m *Machine) { m.out = w }
}

// New loads mod into a fresh Machine, ready to Run.
func New(mod *obj.Module, opts ...Option) (*Machine, error) {
	m := &Machine{
		used: make(map[uint16]bool),
		in:   bufio.NewReader(bytes.NewReader(nil)),
	}
	for _, opt := range opts {
		opt(m)
	}

	for _, e := range mod.Entries {
		if e.Type == obj.Start {
			m.startAddr = e.Address
		}
		// G and A entries are informational for the linker only
		// (spec.md §4.3 "Loader").
	}

	for i, w := range mod.Code {
		addr := m.loadPoint + uint16(i)
		m.mem[addr] = w
		m.used[addr] = true
	}

	m.pc = m.loadPoint + m.startAddr
	m.initialSP = m.reg[6]
	return m, nil
}

// Run executes until halt, a runtime fault, or the instruction safety cap.
func (m *Machine) Run() error {
	for {
		if m.halted {
			return nil
		}
		if m.instructions >= maxInstructions {
			return errors.New("Possible infinite loop")
		}
		if err := m.step(); err != nil {
			return err
		}
		m.instructions++
		if depth := m.stackDepth(); depth > m.maxStack {
			m.maxStack = depth
		}
	}
}

// Output returns everything written by output traps during Run.
func (m *Machine) Output() []byte { return m.captured.Bytes() }

// Instructions returns the number of instructions executed.
func (m *Machine) Instructions() uint32 { return m.instructions }

// MaxStackDepth returns the largest stack depth observed during Run.
func (m *Machine) MaxStackDepth() uint32 { return m.maxStack }

// LoadPoint returns the address the image was loaded at.
func (m *Machine) LoadPoint() uint16 { return m.loadPoint }

func (m *Machine) writeOut(p []byte) {
	m.captured.Write(p)
	if m.out != nil {
		m.out.Write(p)
	}
}

func (m *Machine) stackDepth() uint32 {
	sp := m.reg[6]
	if sp == 0 {
		return 0
	}
	return uint32(65536) - uint32(sp)
}
