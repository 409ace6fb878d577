package asm

import (
	"strings"
	"testing"
)

func mustAssemble(t *testing.T, src string) *Result {
	t.Helper()
	res, err := Assemble("t.a", strings.NewReader(src))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	return res
}

func TestAssembleSimpleProgram(t *testing.T) {
	src := `
.start main
main:   mvi r0, 5
        add r0, r0, 1
        halt
`
	res := mustAssemble(t, src)
	if len(res.Code) != 3 {
		t.Fatalf("expected 3 words, got %d: %#v", len(res.Code), res.Code)
	}
	want0 := uint16(opMVI)<<12 | 0<<9 | 5
	if res.Code[0] != want0 {
		t.Errorf("mvi word = %#04x, want %#04x", res.Code[0], want0)
	}
	want1 := uint16(opADD)<<12 | 0<<9 | 0<<6 | 1<<5 | 1
	if res.Code[1] != want1 {
		t.Errorf("add word = %#04x, want %#04x", res.Code[1], want1)
	}
	want2 := uint16(opTRAP)<<12 | trapHalt
	if res.Code[2] != want2 {
		t.Errorf("halt word = %#04x, want %#04x", res.Code[2], want2)
	}
}

func TestImm5BoundaryEncoding(t *testing.T) {
	for _, tc := range []struct {
		imm int
		ok  bool
	}{
		{15, true}, {-16, true}, {16, false}, {-17, false},
	} {
		src := "\tadd r0, r0, " + itoaSigned(tc.imm) + "\n"
		_, err := Assemble("t.a", strings.NewReader(src))
		if tc.ok && err != nil {
			t.Errorf("imm5=%d: unexpected error: %v", tc.imm, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("imm5=%d: expected range error, got none", tc.imm)
		}
	}
}

func itoaSigned(n int) string {
	if n < 0 {
		return "-" + itoaSigned(-n)
	}
	if n == 0 {
		return "0"
	}
	digits := ""
	for n > 0 {
		digits = string(rune('0'+n%10)) + digits
		n /= 10
	}
	return digits
}

func TestDuplicateLabelIsError(t *testing.T) {
	src := `
.start l1
l1: halt
l1: halt
`
	_, err := Assemble("t.a", strings.NewReader(src))
	if err == nil {
		t.Fatal("expected duplicate label error")
	}
	if !strings.Contains(err.Error(), "duplicate label") {
		t.Errorf("error = %v, want mention of duplicate label", err)
	}
}

func TestEmptySourceIsError(t *testing.T) {
	_, err := Assemble("t.a", strings.NewReader("; just a comment\n"))
	if err == nil {
		t.Fatal("expected empty-source error")
	}
}

func TestGlobalForwardBinding(t *testing.T) {
	src := `
.start entry
.global later
entry:
	bl later
later:
	halt
`
	res := mustAssemble(t, src)
	found := false
	for _, e := range res.Entries {
		if e.Type == 'G' && e.Label == "later" {
			found = true
		}
	}
	if !found {
		t.Error("expected a G entry for 'later'")
	}
}

func TestUndefinedStartLabel(t *testing.T) {
	src := ".start nope\n\thalt\n"
	_, err := Assemble("t.a", strings.NewReader(src))
	if err == nil || !strings.Contains(err.Error(), "undefined start label") {
		t.Fatalf("err = %v, want undefined start label", err)
	}
}

func TestExternReferenceRecordsFixup(t *testing.T) {
	src := `
.start main
.extern helper
main:
	bl helper
	halt
`
	res := mustAssemble(t, src)
	has := false
	for _, e := range res.Entries {
		if e.Type == 'E' && e.Label == "helper" {
			has = true
		}
	}
	if !has {
		t.Errorf("entries = %+v, want an E entry for helper", res.Entries)
	}
}

func TestBinRoundTrip(t *testing.T) {
	src := "0001000000000010\n0011100000000101\n"
	res, err := Assemble("t.bin", strings.NewReader(src))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(res.Code) != 2 || res.Code[0] != 0x1002 || res.Code[1] != 0x3805 {
		t.Fatalf("code = %#04x, want [0x1002 0x3805]", res.Code)
	}
}

func TestHexRoundTrip(t *testing.T) {
	src := "1002\n3805\n"
	res, err := Assemble("t.hex", strings.NewReader(src))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(res.Code) != 2 || res.Code[0] != 0x1002 || res.Code[1] != 0x3805 {
		t.Fatalf("code = %#04x, want [0x1002 0x3805]", res.Code)
	}
}

func TestUnsupportedExtension(t *testing.T) {
	_, err := Assemble("t.xyz", strings.NewReader("halt\n"))
	if err == nil || !strings.Contains(err.Error(), "Unsupported file type") {
		t.Fatalf("err = %v, want Unsupported file type", err)
	}
}

func TestApExtensionRejected(t *testing.T) {
	_, err := Assemble("t.ap", strings.NewReader("halt\n"))
	if err == nil || !strings.Contains(err.Error(), "extended assembler") {
		t.Fatalf("err = %v, want extended-assembler message", err)
	}
}

func TestStringzEmitsNulTerminated(t *testing.T) {
	src := `
.start main
main:
	halt
msg:	.stringz "hi"
`
	res := mustAssemble(t, src)
	n := len(res.Code)
	if res.Code[n-3] != 'h' || res.Code[n-2] != 'i' || res.Code[n-1] != 0 {
		t.Fatalf("tail = %#v, want [h i 0]", res.Code[n-3:])
	}
}

func TestBlkwReservesZeroedWords(t *testing.T) {
	src := `
.start main
main:
	halt
buf:	.blkw 3
`
	res := mustAssemble(t, src)
	n := len(res.Code)
	for i := n - 3; i < n; i++ {
		if res.Code[i] != 0 {
			t.Errorf("word %d = %#04x, want 0", i, res.Code[i])
		}
	}
}
