package asm

import "strings"

// operandKind classifies a parsed operand atom (spec.md §4.1 "Expression
// evaluation").
type operandKind int

const (
	opndNone operandKind = iota
	opndReg
	opndImm
	opndLabel
	opndLoc // the '*' location-counter marker
)

// operand is the parsed form of one instruction/directive argument.
type operand struct {
	kind   operandKind
	reg    int    // 0..7, valid when kind == opndReg
	imm    int    // valid when kind == opndImm
	label  string // valid when kind == opndLabel
	offset int    // additional signed offset for opndLabel/opndLoc
}

var registerNames = map[string]int{
	"r0": 0, "r1": 1, "r2": 2, "r3": 3, "r4": 4, "r5": 5, "r6": 6, "r7": 7,
	"fp": 5, "sp": 6, "lr": 7,
}

func regOf(name string) (int, bool) {
	n, ok := registerNames[strings.ToLower(name)]
	return n, ok
}

// parseOperand consumes one operand starting at toks[*idx], advancing *idx
// past it. It does not resolve labels against the symbol table; that
// happens later, during pass 2, in instr.go's resolveLocal/resolveTarget.
func parseOperand(toks []token, idx *int) (operand, error) {
	if *idx >= len(toks) {
		return operand{}, errMissingOperand
	}
	t := toks[*idx]
	switch t.kind {
	case tokNumber:
		*idx++
		return operand{kind: opndImm, imm: t.num}, nil
	case tokString:
		if len(t.text) != 1 {
			return operand{}, errBadCharLiteral
		}
		*idx++
		return operand{kind: opndImm, imm: int(t.text[0])}, nil
	case tokStar:
		*idx++
		off, err := parseOptionalOffset(toks, idx)
		if err != nil {
			return operand{}, err
		}
		return operand{kind: opndLoc, offset: off}, nil
	case tokIdent:
		*idx++
		if r, ok := regOf(t.text); ok {
			return operand{kind: opndReg, reg: r}, nil
		}
		off, err := parseOptionalOffset(toks, idx)
		if err != nil {
			return operand{}, err
		}
		return operand{kind: opndLabel, label: t.text, offset: off}, nil
	default:
		return operand{}, errMissingOperand
	}
}

// parseOptionalOffset consumes a trailing "+ N", "- N" or already-negative
// "N" token, matching spec.md's "label ± N (whitespace-tolerant)" and the
// equivalent rule for "*".
func parseOptionalOffset(toks []token, idx *int) (int, error) {
	if *idx >= len(toks) {
		return 0, nil
	}
	switch toks[*idx].kind {
	case tokPlus:
		*idx++
		if *idx >= len(toks) || toks[*idx].kind != tokNumber {
			return 0, errMissingNumber
		}
		n := toks[*idx].num
		*idx++
		return n, nil
	case tokMinus:
		*idx++
		if *idx >= len(toks) || toks[*idx].kind != tokNumber {
			return 0, errMissingNumber
		}
		n := toks[*idx].num
		*idx++
		return -n, nil
	case tokNumber:
		// an attached negative offset, e.g. "data-2", lexes as [ident][number]
		// with the number already carrying its sign.
		if toks[*idx].text[0] == '-' {
			n := toks[*idx].num
			*idx++
			return n, nil
		}
		return 0, nil
	default:
		return 0, nil
	}
}
