package link

import "github.com/lcc-toolchain/lcc/internal/obj"

// extRef is one pending external reference: a module-translated address that
// still needs its displacement or full word patched once the label's final
// address is known.
type extRef struct {
	address uint16
	label   string
}

// adjust is one pending internal relocation: a module-translated address
// whose word already holds a module-relative absolute value that must be
// biased by the module's load offset (moduleStart == mcaIndex at load time).
type adjust struct {
	address     uint16
	moduleStart uint16
}

// fixupKind ties an entry type to the bit width of the displacement field it
// patches and the function that patches it, mirroring the teacher's
// per-port handler-map idiom (vm.Instance's inH/outH/waitH) generalized from
// "one map per I/O port" to "one map per fix-up width".
type fixupKind struct {
	bits  int
	patch func(word, disp uint16) uint16
}

var fixupKinds = map[obj.EntryType]fixupKind{
	obj.Ext11: {bits: 11, patch: patchBits(11)},
	obj.Ext9:  {bits: 9, patch: patchBits(9)},
}

// patchBits returns a patch function that replaces the low n bits of word
// with disp, leaving the upper bits (opcode, registers, flags) untouched.
func patchBits(n int) func(word, disp uint16) uint16 {
	mask := uint16(1<<uint(n)) - 1
	return func(word, disp uint16) uint16 {
		return (word &^ mask) | (disp & mask)
	}
}

// signExtend sign-extends the low n bits of v to a full int.
func signExtend(v uint16, n int) int {
	mask := uint16(1<<uint(n)) - 1
	x := int(v & mask)
	if x&(1<<uint(n-1)) != 0 {
		x -= 1 << uint(n)
	}
	return x
}
