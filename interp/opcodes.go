package interp

// Primary opcodes, mirroring asm/encode.go's assignment (the assembler and
// interpreter are built from the same table so a round trip is faithful;
// see asm/encode.go for why add/sub/and land on 0x1/0x5/0xB).
const (
	opBR   = 0x0
	opADD  = 0x1
	opLD   = 0x2
	opST   = 0x3
	opBL   = 0x4
	opAND  = 0x5
	opLDR  = 0x6
	opSTR  = 0x7
	opCMP  = 0x8
	opNOT  = 0x9
	opCASE = 0xA
	opSUB  = 0xB
	opJMP  = 0xC
	opMVI  = 0xD
	opLEA  = 0xE
	opTRAP = 0xF
)

// Extended opcodes within the case-10 group, mirroring asm/encode.go.
const (
	eoPush = 0
	eoPop  = 1
	eoSrl  = 2
	eoSra  = 3
	eoSll  = 4
	eoRol  = 5
	eoRor  = 6
	eoMul  = 7
	eoDiv  = 8
	eoRem  = 9
	eoOr   = 10
	eoXor  = 11
	eoMvr  = 12
	eoSext = 13
)

// Trap vectors, mirroring asm/encode.go.
const (
	trapHalt  = 0
	trapNl    = 1
	trapDout  = 2
	trapUdout = 3
	trapHout  = 4
	trapAout  = 5
	trapSout  = 6
	trapDin   = 7
	trapHin   = 8
	trapAin   = 9
	trapSin   = 10
	trapM     = 11
	trapR     = 12
	trapS     = 13
	trapBp    = 14
)
