package obj

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

// Module is a fully parsed object/executable file: its header entries in
// on-disk order, and the raw code words that follow the 'C' marker.
type Module struct {
	Entries []Entry
	Code    []uint16
}

// Read parses one object/executable module from r. It verifies the leading
// magic byte, reads header entries until the code marker, then reads the
// remaining bytes as a packed little-endian uint16 stream.
func Read(r io.Reader) (*Module, error) {
	br := bufio.NewReader(r)

	m0, err := br.ReadByte()
	if err != nil {
		return nil, errors.Wrap(err, "read signature")
	}
	if m0 != magic {
		return nil, ErrInvalidSignature
	}

	var mod Module
	for {
		tb, err := br.ReadByte()
		if err != nil {
			return nil, errors.Wrap(err, "read header entry type")
		}
		if tb == codeMark {
			break
		}
		et := EntryType(tb)
		if !et.valid() {
			return nil, errors.Errorf("unrecognized header entry type %q", tb)
		}
		addr, err := readWord(br)
		if err != nil {
			return nil, errors.Wrap(err, "read header entry address")
		}
		e := Entry{Type: et, Address: addr}
		if et.hasLabel() {
			label, err := readCString(br)
			if err != nil {
				return nil, errors.Wrap(err, "read header entry label")
			}
			e.Label = label
		}
		mod.Entries = append(mod.Entries, e)
	}

	code, err := readCode(br)
	if err != nil {
		return nil, errors.Wrap(err, "read code section")
	}
	mod.Code = code
	return &mod, nil
}

func readWord(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return uint16(b[0]) | uint16(b[1])<<8, nil
}

func readCString(r *bufio.Reader) (string, error) {
	s, err := r.ReadString(0)
	if err != nil {
		return "", err
	}
	return s[:len(s)-1], nil
}

func readCode(r io.Reader) ([]uint16, error) {
	var code []uint16
	for {
		w, err := readWord(r)
		if err != nil {
			if err == io.ErrUnexpectedEOF {
				return nil, errors.New("code section has a dangling byte")
			}
			if err == io.EOF {
				return code, nil
			}
			return nil, err
		}
		code = append(code, w)
	}
}
