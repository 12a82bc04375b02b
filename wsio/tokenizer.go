// Package wsio implements the Whitespace tokenizer: a greedy prefix
// decoder over the filtered {space, tab, lf} stream, producing a linear
// token.Token sequence. A single pass suffices because Whitespace's
// instruction prefixes form a genuine prefix code: at most one table entry
// can match at any position.
package wsio

import (
	"github.com/ark-vm/whitespace/lexer"
	"github.com/ark-vm/whitespace/token"
	"github.com/pkg/errors"
)

type prefixEntry struct {
	prefix []byte
	op     token.Op
}

// opTable lists every instruction's S/T/L prefix. Because the set is
// prefix-free, insertion order does not affect correctness; it is kept in
// a fixed order for readability.
var opTable = buildOpTable()

func buildOpTable() []prefixEntry {
	const S, T, L = lexer.Space, lexer.Tab, lexer.LF
	return []prefixEntry{
		{[]byte{S, S}, token.Push},
		{[]byte{S, L, S}, token.Duplicate},
		{[]byte{S, T, S}, token.Copy},
		{[]byte{S, L, T}, token.Swap},
		{[]byte{S, L, L}, token.Discard},
		{[]byte{S, T, L}, token.Slide},
		{[]byte{T, S, S, S}, token.Add},
		{[]byte{T, S, S, T}, token.Sub},
		{[]byte{T, S, S, L}, token.Mult},
		{[]byte{T, S, T, S}, token.Div},
		{[]byte{T, S, T, T}, token.Mod},
		{[]byte{T, T, S}, token.Store},
		{[]byte{T, T, T}, token.Retrieve},
		{[]byte{L, S, S}, token.Mark},
		{[]byte{L, S, T}, token.Call},
		{[]byte{L, S, L}, token.Jump},
		{[]byte{L, T, S}, token.JumpZero},
		{[]byte{L, T, T}, token.JumpNeg},
		{[]byte{L, T, L}, token.Return},
		{[]byte{L, L, L}, token.EndProgram},
		{[]byte{T, L, S, S}, token.OutCh},
		{[]byte{T, L, S, T}, token.OutNum},
		{[]byte{T, L, T, S}, token.InCh},
		{[]byte{T, L, T, T}, token.InNum},
	}
}

// Tokenize decodes the already-filtered Whitespace stream src into a linear
// sequence of tokens. src must contain only space, tab, and line feed bytes
// (the output of lexer.Filter); passing unfiltered source produces
// unspecified results since the tokenizer assumes no comment bytes remain.
func Tokenize(src []byte) ([]token.Token, error) {
	var toks []token.Token
	pos := 0
	for pos < len(src) {
		entry, ok := matchPrefix(src, pos)
		if !ok {
			return nil, errors.WithStack(newSyntaxError(src, pos, "unknown instruction prefix"))
		}
		start := pos
		pos += len(entry.prefix)

		tok := token.Token{Op: entry.op, Pos: start}
		switch entry.op.ArgKind() {
		case token.KindNumber:
			n, next, err := parseNumber(src, pos)
			if err != nil {
				return nil, err
			}
			tok.Num = n
			pos = next
		case token.KindLabel:
			lbl, next, err := parseLabel(src, pos)
			if err != nil {
				return nil, err
			}
			tok.Label = lbl
			pos = next
		}
		toks = append(toks, tok)
	}
	return toks, nil
}

// PrefixFor returns the byte prefix that encodes op, for use by the
// assembler (package asm) as the exact inverse of the tokenizer.
func PrefixFor(op token.Op) ([]byte, bool) {
	for _, e := range opTable {
		if e.op == op {
			return e.prefix, true
		}
	}
	return nil, false
}

func matchPrefix(src []byte, pos int) (prefixEntry, bool) {
	for _, e := range opTable {
		if hasPrefixAt(src, pos, e.prefix) {
			return e, true
		}
	}
	return prefixEntry{}, false
}

func hasPrefixAt(src []byte, pos int, prefix []byte) bool {
	if pos+len(prefix) > len(src) {
		return false
	}
	for i, b := range prefix {
		if src[pos+i] != b {
			return false
		}
	}
	return true
}

// parseNumber reads a signed binary number: a sign byte (space=non-negative,
// tab=negative) followed by most-significant-first magnitude bits,
// terminated by a line feed. An empty magnitude encodes 0.
func parseNumber(src []byte, pos int) (int64, int, error) {
	if pos >= len(src) {
		return 0, pos, errors.WithStack(newSyntaxError(src, pos, "unterminated number: missing sign"))
	}
	var sign int64
	switch src[pos] {
	case lexer.Space:
		sign = 1
	case lexer.Tab:
		sign = -1
	case lexer.LF:
		return 0, pos, errors.WithStack(newSyntaxError(src, pos, "malformed number: missing sign before terminator"))
	default:
		return 0, pos, errors.WithStack(newSyntaxError(src, pos, "malformed number sign"))
	}
	pos++

	var magnitude int64
	for {
		if pos >= len(src) {
			return 0, pos, errors.WithStack(newSyntaxError(src, pos, "unterminated number: missing line feed"))
		}
		switch src[pos] {
		case lexer.LF:
			pos++
			return sign * magnitude, pos, nil
		case lexer.Space:
			magnitude <<= 1
		case lexer.Tab:
			magnitude = magnitude<<1 | 1
		}
		pos++
	}
}

// parseLabel reads a (possibly empty) sequence of space/tab symbols
// terminated by a line feed.
func parseLabel(src []byte, pos int) (token.Label, int, error) {
	start := pos
	for {
		if pos >= len(src) {
			return "", pos, errors.WithStack(newSyntaxError(src, pos, "unterminated label: missing line feed"))
		}
		if src[pos] == lexer.LF {
			return token.Label(lexer.Unwhite(src[start:pos], -1)), pos + 1, nil
		}
		pos++
	}
}
