package obj

import (
	"io"
	"sort"

	"github.com/pkg/errors"
)

// errWriter wraps an io.Writer so that after the first failing Write, every
// subsequent Write is a no-op returning the same error. Adapted from the
// teacher's internal/ngi.ErrWriter so callers can chain a sequence of writes
// without checking an error after each one.
type errWriter struct {
	w   io.Writer
	Err error
}

func (w *errWriter) Write(p []byte) (int, error) {
	if w.Err != nil {
		return 0, w.Err
	}
	n, err := w.w.Write(p)
	if err != nil {
		w.Err = errors.Wrap(err, "write failed")
	}
	return n, w.Err
}

// Write serializes a module to w: magic byte, header entries sorted by
// address, code marker, then the packed code words. Header entries are
// sorted by address per spec.md §4.1 "Emission layout".
func Write(w io.Writer, entries []Entry, code []uint16) error {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Address < sorted[j].Address })

	ew := &errWriter{w: w}
	ew.Write([]byte{magic})
	for _, e := range sorted {
		writeEntry(ew, e)
	}
	ew.Write([]byte{codeMark})
	writeCode(ew, code)
	return ew.Err
}

func writeEntry(w *errWriter, e Entry) {
	w.Write([]byte{byte(e.Type)})
	writeWord(w, e.Address)
	if e.Type.hasLabel() {
		w.Write([]byte(e.Label))
		w.Write([]byte{0})
	}
}

func writeWord(w *errWriter, v uint16) {
	w.Write([]byte{byte(v), byte(v >> 8)})
}

func writeCode(w *errWriter, code []uint16) {
	for _, c := range code {
		writeWord(w, c)
	}
}
