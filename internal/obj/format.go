// Package obj implements the on-disk object/executable format shared by the
// assembler, linker and interpreter: a magic byte, a sequence of typed
// header entries, a code marker, and a packed little-endian word stream.
//
// See spec.md §6 for the normative grammar:
//
//	magic        = "o"
//	entries      = entry*
//	code_marker  = "C"
//	code         = uint16_le * (file_size_remaining / 2)
//
//	entry := "S" uint16_le
//	       | "G" uint16_le cstring
//	       | "E" uint16_le cstring
//	       | "e" uint16_le cstring
//	       | "V" uint16_le cstring
//	       | "A" uint16_le
package obj

import "github.com/pkg/errors"

// EntryType is the single-byte tag of a header entry.
type EntryType byte

// Recognized header entry types.
const (
	Start    EntryType = 'S' // program entry point
	Global   EntryType = 'G' // exported label
	Ext11    EntryType = 'E' // 11-bit external reference (bl)
	Ext9     EntryType = 'e' // 9-bit external reference (ld/st/lea)
	ExtWord  EntryType = 'V' // full-word external reference (.word/.fill)
	Adjust   EntryType = 'A' // internal relocation site
	magic    byte      = 'o'
	codeMark byte      = 'C'
)

// Entry is one header record. Label is empty for Start and Adjust entries.
type Entry struct {
	Type    EntryType
	Address uint16
	Label   string
}

// hasLabel reports whether entries of this type carry a null-terminated
// label after the address.
func (t EntryType) hasLabel() bool {
	switch t {
	case Global, Ext11, Ext9, ExtWord:
		return true
	default:
		return false
	}
}

func (t EntryType) valid() bool {
	switch t {
	case Start, Global, Ext11, Ext9, ExtWord, Adjust:
		return true
	default:
		return false
	}
}

// ErrInvalidSignature is returned when a file does not begin with the 'o'
// magic byte.
var ErrInvalidSignature = errors.New("invalid file signature")
