// Package lcctext holds the small number/char-literal parsing helpers used
// by the assembler's lexer. The .bin/.hex fast-path readers in asm/asm.go
// parse their words with strconv directly and do not use this package.
package lcctext

import (
	"strconv"

	"github.com/pkg/errors"
)

// ParseNumber parses a decimal integer, or a "0x"-prefixed hex integer
// (never negative, per spec.md §4.1 "negative hex is not supported").
func ParseNumber(tok string) (int, bool, error) {
	if len(tok) > 2 && (tok[0:2] == "0x" || tok[0:2] == "0X") {
		n, err := strconv.ParseInt(tok[2:], 16, 32)
		if err != nil {
			return 0, true, errors.Errorf("bad hex number %q", tok)
		}
		return int(n), true, nil
	}
	if len(tok) > 0 && tok[0] == '-' && len(tok) > 2 && (tok[1:3] == "0x" || tok[1:3] == "0X") {
		return 0, true, errors.New("hex literals may not be negative")
	}
	n, err := strconv.ParseInt(tok, 10, 32)
	if err != nil {
		return 0, false, nil
	}
	return int(n), true, nil
}

// ParseCharLiteral decodes a single-quoted character literal such as 'c' or
// '\n' into its ASCII code. tok includes the surrounding quotes.
func ParseCharLiteral(tok string) (int, error) {
	if len(tok) < 3 || tok[0] != '\'' || tok[len(tok)-1] != '\'' {
		return 0, errors.Errorf("malformed character literal %q", tok)
	}
	r, _, _, err := strconv.UnquoteChar(tok[1:len(tok)-1], '\'')
	if err != nil {
		return 0, errors.Wrapf(err, "malformed character literal %q", tok)
	}
	return int(r), nil
}

// UnquoteString decodes a double- or single-quoted string literal honoring
// the escapes \n \t \r \\ \" \' (spec.md §4.1 "Lexing").
func UnquoteString(body string) (string, error) {
	var out []byte
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			out = append(out, c)
			continue
		}
		i++
		if i >= len(body) {
			return "", errors.New("dangling escape at end of string")
		}
		switch body[i] {
		case 'n':
			out = append(out, '\n')
		case 't':
			out = append(out, '\t')
		case 'r':
			out = append(out, '\r')
		case '\\':
			out = append(out, '\\')
		case '"':
			out = append(out, '"')
		case '\'':
			out = append(out, '\'')
		default:
			return "", errors.Errorf("unknown escape \\%c", body[i])
		}
	}
	return string(out), nil
}
