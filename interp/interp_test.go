package interp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lcc-toolchain/lcc/asm"
	"github.com/lcc-toolchain/lcc/internal/obj"
)

func assembleAndLoad(t *testing.T, src string, opts ...Option) *Machine {
	t.Helper()
	res, err := asm.Assemble("t.a", strings.NewReader(src))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	mod, err := obj.Read(bytes.NewReader(res.Bytes))
	if err != nil {
		t.Fatalf("obj.Read: %v", err)
	}
	m, err := New(mod, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestRunAddAndHalt(t *testing.T) {
	src := `
.start main
main:
	mvi r0, 5
	add r0, r0, 3
	halt
`
	m := assembleAndLoad(t, src)
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.reg[0] != 8 {
		t.Errorf("r0 = %d, want 8", m.reg[0])
	}
}

func TestRunDoutOutputsSignedDecimal(t *testing.T) {
	var out bytes.Buffer
	src := `
.start main
main:
	mvi r0, -5
	dout r0
	halt
`
	m := assembleAndLoad(t, src, WithOutput(&out))
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.String() != "-5" {
		t.Errorf("output = %q, want %q", out.String(), "-5")
	}
}

func TestRunDivisionByZeroIsFatal(t *testing.T) {
	src := `
.start main
main:
	mvi r0, 10
	mvi r1, 0
	div r0, r1
	halt
`
	m := assembleAndLoad(t, src)
	err := m.Run()
	if err == nil || !strings.Contains(err.Error(), "Floating point exception") {
		t.Fatalf("err = %v, want Floating point exception", err)
	}
}

func TestRunPushPopRoundTrip(t *testing.T) {
	src := `
.start main
main:
	mvi r0, 42
	push r0
	mvi r0, 0
	pop r1
	halt
`
	m := assembleAndLoad(t, src)
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.reg[1] != 42 {
		t.Errorf("r1 = %d, want 42", m.reg[1])
	}
}

func TestRunBranchZero(t *testing.T) {
	src := `
.start main
main:
	mvi r0, 0
	add r0, r0, 0
	brz done
	mvi r1, 1
done:
	halt
`
	m := assembleAndLoad(t, src)
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.reg[1] != 0 {
		t.Errorf("r1 = %d, want 0 (brz should have skipped the mvi)", m.reg[1])
	}
}

func TestInfiniteLoopHitsSafetyCap(t *testing.T) {
	src := `
.start main
main:
	br main
`
	m := assembleAndLoad(t, src)
	err := m.Run()
	if err == nil || !strings.Contains(err.Error(), "Possible infinite loop") {
		t.Fatalf("err = %v, want Possible infinite loop", err)
	}
}

func TestDecodeFieldExtraction(t *testing.T) {
	d := decode(0xD1FF) // mvi r0, -1 (imm9 all ones)
	if d.op != opMVI {
		t.Errorf("op = %x, want mvi", d.op)
	}
	if d.imm9 != -1 {
		t.Errorf("imm9 = %d, want -1", d.imm9)
	}
}

func TestStackDepthTracksSP(t *testing.T) {
	src := `
.start main
main:
	mvi r0, 1
	push r0
	push r0
	halt
`
	m := assembleAndLoad(t, src)
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.MaxStackDepth() != 2 {
		t.Errorf("MaxStackDepth = %d, want 2", m.MaxStackDepth())
	}
}
