package link

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lcc-toolchain/lcc/asm"
	"github.com/lcc-toolchain/lcc/internal/obj"
)

func assembleModule(t *testing.T, src string) *asm.Result {
	t.Helper()
	res, err := asm.Assemble("m.a", strings.NewReader(src))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	return res
}

func TestLinkResolvesExternalCall(t *testing.T) {
	mainSrc := `
.start main
.extern helper
main:
	bl helper
	halt
`
	helperSrc := `
.global helper
helper:
	ret
`
	mainMod := assembleModule(t, mainSrc)
	helperMod := assembleModule(t, helperSrc)

	res, err := Link([]Input{
		{Name: "main.o", Data: bytes.NewReader(mainMod.Bytes)},
		{Name: "helper.o", Data: bytes.NewReader(helperMod.Bytes)},
	})
	if err != nil {
		t.Fatalf("Link: %v", err)
	}

	out, err := obj.Read(bytes.NewReader(res.Bytes))
	if err != nil {
		t.Fatalf("obj.Read(linked): %v", err)
	}

	var gotStart bool
	for _, e := range out.Entries {
		if e.Type == obj.Start {
			gotStart = true
		}
	}
	if !gotStart {
		t.Error("linked module has no S entry")
	}

	blWord := out.Code[0]
	disp := signExtend(blWord, 11)
	target := 0 + disp + 1 // bl at address 0
	if target != 2 {
		t.Errorf("resolved bl target = %d, want 2 (helper's address in the merged image)", target)
	}
}

func TestLinkUndefinedExternalIsFatal(t *testing.T) {
	mainSrc := `
.start main
.extern ghost
main:
	bl ghost
	halt
`
	mainMod := assembleModule(t, mainSrc)
	_, err := Link([]Input{{Name: "main.o", Data: bytes.NewReader(mainMod.Bytes)}})
	if err == nil || !strings.Contains(err.Error(), "undefined external reference") {
		t.Fatalf("err = %v, want undefined external reference", err)
	}
}

func TestLinkDuplicateGlobalIsFatal(t *testing.T) {
	a := assembleModule(t, ".global dup\ndup:\n\thalt\n")
	b := assembleModule(t, ".global dup\ndup:\n\thalt\n")
	_, err := Link([]Input{
		{Name: "a.o", Data: bytes.NewReader(a.Bytes)},
		{Name: "b.o", Data: bytes.NewReader(b.Bytes)},
	})
	if err == nil || !strings.Contains(err.Error(), "Multiple definitions") {
		t.Fatalf("err = %v, want Multiple definitions", err)
	}
}

func TestLinkMultipleEntryPointsIsFatal(t *testing.T) {
	a := assembleModule(t, ".start a\na:\n\thalt\n")
	b := assembleModule(t, ".start b\nb:\n\thalt\n")
	_, err := Link([]Input{
		{Name: "a.o", Data: bytes.NewReader(a.Bytes)},
		{Name: "b.o", Data: bytes.NewReader(b.Bytes)},
	})
	if err == nil || !strings.Contains(err.Error(), "Multiple entry points") {
		t.Fatalf("err = %v, want Multiple entry points", err)
	}
}
