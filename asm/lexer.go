package asm

import (
	"fmt"
	"strings"

	"github.com/lcc-toolchain/lcc/internal/lcctext"
)

// lineLexer splits one source line into tokens. LCC's grammar (';'-to-EOL
// comments, ':'-suffixed labels, quoted strings/chars with backslash
// escapes) does not map cleanly onto text/scanner's Go-flavored tokenizer,
// so (as the teacher's own asm/parser.go does when it reclassifies
// scanner.Ident tokens back into numbers and chars) this is a small
// hand-rolled scanner instead.
type lineLexer struct {
	line    string
	pos     int
	comment string
}

func newLineLexer(line string) *lineLexer {
	return &lineLexer{line: line}
}

func isLabelRune(c byte) bool {
	return c == '_' || c == '$' || c == '@' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isLabelStart(c byte) bool {
	return c == '_' || c == '$' || c == '@' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDirectiveStart(c byte) bool { return c == '.' }

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\r' }

// tokens returns every token on the line; the text of a trailing ';'
// comment is kept in lx.comment.
func (lx *lineLexer) tokens() ([]token, error) {
	var out []token
	for {
		tok, ok, err := lx.next()
		if err != nil {
			return out, err
		}
		if !ok {
			break
		}
		out = append(out, tok)
	}
	return out, nil
}

func (lx *lineLexer) next() (token, bool, error) {
	for lx.pos < len(lx.line) {
		c := lx.line[lx.pos]
		if isSpace(c) || c == ',' {
			lx.pos++
			continue
		}
		if c == ';' {
			lx.comment = lx.line[lx.pos+1:]
			lx.pos = len(lx.line)
			return token{}, false, nil
		}
		break
	}
	if lx.pos >= len(lx.line) {
		return token{}, false, nil
	}

	start := lx.pos
	c := lx.line[lx.pos]

	switch {
	case c == '"' || c == '\'':
		return lx.scanQuoted(start)
	case c == '*':
		lx.pos++
		return token{kind: tokStar, text: "*", col: start}, true, nil
	case c == '+':
		lx.pos++
		return token{kind: tokPlus, text: "+", col: start}, true, nil
	case c == '-' && (lx.pos+1 >= len(lx.line) || lx.line[lx.pos+1] < '0' || lx.line[lx.pos+1] > '9'):
		lx.pos++
		return token{kind: tokMinus, text: "-", col: start}, true, nil
	case c == '-' || (c >= '0' && c <= '9'):
		return lx.scanNumber(start)
	case isLabelStart(c):
		return lx.scanIdent(start)
	case isDirectiveStart(c):
		return lx.scanDirective(start)
	default:
		return token{}, false, lexErrorf(start, "unexpected character %q", c)
	}
}

func (lx *lineLexer) scanNumber(start int) (token, bool, error) {
	lx.pos++ // consume leading '-' or digit
	if lx.line[start] == '-' {
		for lx.pos < len(lx.line) && lx.line[lx.pos] >= '0' && lx.line[lx.pos] <= '9' {
			lx.pos++
		}
		// keep "-0x..." in one token so ParseNumber can reject it
		if lx.pos == start+2 && lx.line[start+1] == '0' && lx.pos < len(lx.line) && (lx.line[lx.pos] == 'x' || lx.line[lx.pos] == 'X') {
			lx.pos++
			for lx.pos < len(lx.line) && isHexDigit(lx.line[lx.pos]) {
				lx.pos++
			}
		}
	} else if lx.line[start] == '0' && lx.pos < len(lx.line) && (lx.line[lx.pos] == 'x' || lx.line[lx.pos] == 'X') {
		lx.pos++
		for lx.pos < len(lx.line) && isHexDigit(lx.line[lx.pos]) {
			lx.pos++
		}
	} else {
		for lx.pos < len(lx.line) && lx.line[lx.pos] >= '0' && lx.line[lx.pos] <= '9' {
			lx.pos++
		}
	}
	text := lx.line[start:lx.pos]
	n, ok, err := lcctext.ParseNumber(text)
	if err != nil {
		return token{}, false, lexErrorf(start, "%s", err)
	}
	if !ok {
		return token{}, false, lexErrorf(start, "bad number %q", text)
	}
	return token{kind: tokNumber, text: text, num: n, col: start}, true, nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func (lx *lineLexer) scanIdent(start int) (token, bool, error) {
	lx.pos++
	for lx.pos < len(lx.line) && isLabelRune(lx.line[lx.pos]) {
		lx.pos++
	}
	text := lx.line[start:lx.pos]
	if lx.pos < len(lx.line) && lx.line[lx.pos] == ':' {
		lx.pos++
		return token{kind: tokLabelDef, text: text, col: start}, true, nil
	}
	if start == 0 {
		return token{kind: tokLabelDef, text: text, col: start}, true, nil
	}
	return token{kind: tokIdent, text: text, col: start}, true, nil
}

// scanDirective scans a leading '.' plus the identifier that follows it
// (".start", ".global", ".word", ...). Directives are never label
// definitions, even when they sit in column 0 like every label does.
func (lx *lineLexer) scanDirective(start int) (token, bool, error) {
	lx.pos++
	for lx.pos < len(lx.line) && isLabelRune(lx.line[lx.pos]) {
		lx.pos++
	}
	text := lx.line[start:lx.pos]
	if text == "." {
		return token{}, false, lexErrorf(start, "bare '.' is not a directive")
	}
	return token{kind: tokIdent, text: text, col: start}, true, nil
}

func (lx *lineLexer) scanQuoted(start int) (token, bool, error) {
	quote := lx.line[lx.pos]
	lx.pos++
	var b strings.Builder
	for {
		if lx.pos >= len(lx.line) {
			return token{}, false, lexErrorf(start, "missing terminating %c character", quote)
		}
		c := lx.line[lx.pos]
		if c == quote {
			lx.pos++
			break
		}
		if c == '\\' {
			lx.pos++
			if lx.pos >= len(lx.line) {
				return token{}, false, lexErrorf(start, "dangling escape at end of line")
			}
			dec, err := lcctext.UnquoteString(`\` + string(lx.line[lx.pos]))
			if err != nil {
				return token{}, false, lexErrorf(start, "%s", err)
			}
			b.WriteString(dec)
			lx.pos++
			continue
		}
		b.WriteByte(c)
		lx.pos++
	}
	return token{kind: tokString, text: b.String(), col: start}, true, nil
}

func lexErrorf(col int, format string, args ...interface{}) error {
	return &lexError{col: col, msg: fmt.Sprintf(format, args...)}
}

type lexError struct {
	col int
	msg string
}

func (e *lexError) Error() string { return e.msg }
