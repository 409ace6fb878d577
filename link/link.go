// Package link implements the LCC relocatable linker: it merges object
// modules into one flat code image and resolves cross-module references
// through the three external fix-up tables plus the internal adjustment
// table, following the free-function style of the teacher package rather
// than a stateful linker object (spec.md §4.2 has no notion of linker
// state surviving past one invocation).
package link

import (
	"bytes"
	"io"

	"github.com/lcc-toolchain/lcc/internal/obj"
)

// Input names one object module to merge, the name used only for
// diagnostics.
type Input struct {
	Name string
	Data io.Reader
}

// Result is the linked executable.
type Result struct {
	Bytes []byte
}

// Link merges inputs in order into one executable, per spec.md §4.2.
func Link(inputs []Input) (*Result, error) {
	var mca []uint16
	var haveStart bool
	var startAddr uint16

	globals := make(map[string]uint16)
	var globalOrder []string

	var ext11, ext9, extWord []extRef
	var adjusts []adjust

	for _, in := range inputs {
		mod, err := obj.Read(in.Data)
		if err != nil {
			return nil, errf(in.Name, "%s", err)
		}
		base := uint16(len(mca))

		for _, e := range mod.Entries {
			addr := e.Address + base
			switch e.Type {
			case obj.Start:
				if haveStart {
					return nil, errf(in.Name, "Multiple entry points")
				}
				haveStart = true
				startAddr = addr
			case obj.Global:
				if _, exists := globals[e.Label]; exists {
					return nil, errf(in.Name, "Multiple definitions: %s", e.Label)
				}
				globals[e.Label] = addr
				globalOrder = append(globalOrder, e.Label)
			case obj.Ext11:
				ext11 = append(ext11, extRef{address: addr, label: e.Label})
			case obj.Ext9:
				ext9 = append(ext9, extRef{address: addr, label: e.Label})
			case obj.ExtWord:
				extWord = append(extWord, extRef{address: addr, label: e.Label})
			case obj.Adjust:
				adjusts = append(adjusts, adjust{address: addr, moduleStart: base})
			}
		}

		mca = append(mca, mod.Code...)
	}

	if err := resolveDisp(mca, ext11, globals, 11); err != nil {
		return nil, err
	}
	if err := resolveDisp(mca, ext9, globals, 9); err != nil {
		return nil, err
	}
	for _, ref := range extWord {
		gaddr, ok := globals[ref.label]
		if !ok {
			return nil, errf("", "undefined external reference: %s", ref.label)
		}
		mca[ref.address] += gaddr
	}
	for _, a := range adjusts {
		mca[a.address] += a.moduleStart
	}

	var entries []obj.Entry
	if haveStart {
		entries = append(entries, obj.Entry{Type: obj.Start, Address: startAddr})
	}
	for _, name := range globalOrder {
		entries = append(entries, obj.Entry{Type: obj.Global, Address: globals[name], Label: name})
	}
	for _, ref := range extWord {
		entries = append(entries, obj.Entry{Type: obj.Adjust, Address: ref.address})
	}
	for _, a := range adjusts {
		entries = append(entries, obj.Entry{Type: obj.Adjust, Address: a.address})
	}

	var buf bytes.Buffer
	if err := obj.Write(&buf, entries, mca); err != nil {
		return nil, err
	}
	return &Result{Bytes: buf.Bytes()}, nil
}

// resolveDisp patches every PC-relative fix-up of the given bit width,
// preserving the existing low-bits displacement baked in by the assembler
// (spec.md §4.2's "new offset = existingDisp + Gaddr − address − 1").
func resolveDisp(mca []uint16, refs []extRef, globals map[string]uint16, bits int) error {
	kind := fixupKinds[entryTypeForBits(bits)]
	for _, ref := range refs {
		gaddr, ok := globals[ref.label]
		if !ok {
			return errf("", "undefined external reference: %s", ref.label)
		}
		word := mca[ref.address]
		existingDisp := signExtend(word, bits)
		newDisp := existingDisp + int(gaddr) - int(ref.address) - 1
		mca[ref.address] = kind.patch(word, uint16(newDisp))
	}
	return nil
}

func entryTypeForBits(bits int) obj.EntryType {
	if bits == 11 {
		return obj.Ext11
	}
	return obj.Ext9
}
