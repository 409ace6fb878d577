package asm

// tokenKind classifies one lexical token. The lexer is line-oriented: labels
// are recognized by a trailing colon or by appearing in column 0, so the
// parser needs to know both the token text and its source column.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent         // bare word: mnemonic, directive (.foo), register, or label reference
	tokLabelDef      // identifier that ended with ':' or started in column 0
	tokNumber        // already-evaluated integer (decimal or 0x-hex)
	tokString        // decoded contents of a quoted literal (used verbatim by .stringz et al.)
	tokStar          // the location-counter marker '*'
	tokPlus          // '+'
	tokMinus         // '-'
)

// token is one lexical unit within a source line.
type token struct {
	kind tokenKind
	text string // original spelling, label colon stripped
	num  int    // valid when kind == tokNumber
	col  int    // 0-based column of the first rune
}

func (t token) String() string {
	switch t.kind {
	case tokNumber:
		return t.text
	case tokString:
		return `"` + t.text + `"`
	default:
		return t.text
	}
}
