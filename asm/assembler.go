// Package asm assembles one-mnemonic-per-line source into a conforming
// Whitespace byte stream, the inverse of package wsio's tokenizer.
package asm

import (
	"strconv"
	"strings"

	"github.com/ark-vm/whitespace/lexer"
	"github.com/ark-vm/whitespace/token"
	"github.com/ark-vm/whitespace/wsio"
	"github.com/pkg/errors"
)

// Assemble converts src, one instruction per line ("MNEMONIC [ARG]"), into
// a Whitespace byte stream. Blank and whitespace-only lines are skipped.
// An unknown mnemonic or malformed operand returns an *Error.
func Assemble(src string) ([]byte, error) {
	var out []byte
	for i, line := range strings.Split(src, "\n") {
		lineNum := i + 1
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		mnemonic, arg, _ := strings.Cut(trimmed, " ")
		arg = strings.TrimSpace(arg)
		mnemonic = strings.ToUpper(mnemonic)

		op, ok := token.MnemonicToOp[mnemonic]
		if !ok {
			return nil, errors.WithStack(newError(lineNum, line, "unknown mnemonic"))
		}

		prefix, ok := wsio.PrefixFor(op)
		if !ok {
			return nil, errors.WithStack(newError(lineNum, line, "internal: no prefix for recognized mnemonic"))
		}
		out = append(out, prefix...)

		switch op.ArgKind() {
		case token.KindNumber:
			n, err := strconv.ParseInt(arg, 10, 64)
			if err != nil {
				return nil, errors.WithStack(newError(lineNum, line, "expected a signed decimal integer argument"))
			}
			out = append(out, encodeNumber(n)...)
		case token.KindLabel:
			enc, err := encodeLabel(arg)
			if err != nil {
				return nil, errors.WithStack(newError(lineNum, line, err.Error()))
			}
			out = append(out, enc...)
		}
	}
	return out, nil
}

// encodeNumber renders n as sign + most-significant-first magnitude bits +
// line feed.
func encodeNumber(n int64) []byte {
	var out []byte
	if n < 0 {
		out = append(out, lexer.Tab)
	} else {
		out = append(out, lexer.Space)
	}

	mag := n
	if mag < 0 {
		mag = -mag
	}
	if mag == 0 {
		return append(out, lexer.LF)
	}
	bits := strconv.FormatUint(uint64(mag), 2)
	for _, c := range bits {
		if c == '1' {
			out = append(out, lexer.Tab)
		} else {
			out = append(out, lexer.Space)
		}
	}
	return append(out, lexer.LF)
}

// encodeLabel renders an S/T literal label followed by its terminating
// line feed.
func encodeLabel(lbl string) ([]byte, error) {
	out := make([]byte, 0, len(lbl)+1)
	for _, c := range lbl {
		switch c {
		case 'S':
			out = append(out, lexer.Space)
		case 'T':
			out = append(out, lexer.Tab)
		default:
			return nil, labelCharError{c}
		}
	}
	return append(out, lexer.LF), nil
}

type labelCharError struct{ r rune }

func (e labelCharError) Error() string {
	return "label arguments must use only S and T characters, got " + strconv.QuoteRune(e.r)
}
