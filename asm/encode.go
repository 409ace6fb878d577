package asm

// Primary opcodes. spec.md §4.1 gives explicit bit patterns for every
// mnemonic except add/sub/and, whose row merely says "op". Of the sixteen
// 4-bit opcode values, thirteen are pinned down by the other rows (br=0000,
// ld=0010, st=0011, bl/blr=0100, ldr=0110, str=0111, cmp=1000, not=1001,
// case-10 group=1010, jmp=1100, mvi=1101, lea=1110, trap=1111), leaving
// exactly three free slots (0001, 0101, 1011) for the three remaining
// mnemonics. add and and take the LC-3-conventional 0001/0101; sub takes
// the only slot left, 1011.
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

// Extended opcodes within the case-10 group (spec.md §4.1's "case-10 group"
// row names the mnemonics but not their numeric sub-opcodes; this table
// assigns them, consistently used by both the assembler and the
// interpreter built alongside it).
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

// Trap vectors (spec.md §4.3).
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

func fitsSigned(v, bits int) bool {
	min := -(1 << (uint(bits) - 1))
	max := (1 << (uint(bits) - 1)) - 1
	return v >= min && v <= max
}

func signedField(v, bits int) uint16 {
	return uint16(v) & uint16((1<<uint(bits))-1)
}

// branchCC maps a branch mnemonic to its 3-bit condition code.
var branchCC = map[string]uint16{
	"br": 7, "bral": 7,
	"brz": 0, "bre": 0,
	"brnz": 1, "brne": 1,
	"brn": 2,
	"brp": 3,
	"brlt": 4,
	"brgt": 5,
	"brc": 6, "brb": 6,
}

// caseGroup maps the shift/logic mnemonics that share primary opcode 1010
// to their extended opcode and operand arity.
var caseGroup = map[string]struct {
	eo    uint16
	arity int // 1 = single register, 2 = two registers, 3 = register + count
}{
	"push": {eoPush, 1},
	"pop":  {eoPop, 1},
	"srl":  {eoSrl, 3},
	"sra":  {eoSra, 3},
	"sll":  {eoSll, 3},
	"rol":  {eoRol, 3},
	"ror":  {eoRor, 3},
	"mul":  {eoMul, 2},
	"div":  {eoDiv, 2},
	"rem":  {eoRem, 2},
	"or":   {eoOr, 2},
	"xor":  {eoXor, 2},
	"mvr":  {eoMvr, 2},
	"mov":  {eoMvr, 2},
	"sext": {eoSext, 2},
}

var trapVectors = map[string]uint16{
	"halt": trapHalt, "nl": trapNl, "dout": trapDout, "udout": trapUdout,
	"hout": trapHout, "aout": trapAout, "sout": trapSout, "din": trapDin,
	"hin": trapHin, "ain": trapAin, "sin": trapSin, "m": trapM, "r": trapR,
	"s": trapS, "bp": trapBp,
}

// trapTakesRegister names the trap aliases whose operand register (encoded
// in the dr field, bits 11..9, alongside the vector in bits 7..0) the
// interpreter's trap handler reads from or writes into.
var trapTakesRegister = map[string]bool{
	"dout": true, "udout": true, "hout": true, "aout": true, "sout": true,
	"din": true, "hin": true, "ain": true, "sin": true,
}

// isKnownMnemonic reports whether s is an instruction mnemonic, so pass 1
// can size the line without running the encoder (size is always 1 word;
// only pass 2 needs the operand shape).
func isKnownMnemonic(s string) bool {
	if _, ok := branchCC[s]; ok {
		return true
	}
	if _, ok := caseGroup[s]; ok {
		return true
	}
	if _, ok := trapVectors[s]; ok {
		return true
	}
	switch s {
	case "add", "sub", "and", "cmp", "ld", "st", "lea", "ldr", "str",
		"bl", "blr", "jsrr", "jmp", "ret", "not", "mvi", "trap":
		return true
	}
	return false
}
