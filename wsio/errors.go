package wsio

import (
	"fmt"

	"github.com/ark-vm/whitespace/lexer"
)

// SyntaxError reports a tokenization fault: an unknown prefix, an
// unterminated number or label, or a malformed number sign. Its only
// position concept is a byte offset into the filtered stream, since
// Whitespace carries no line/column structure once comments are stripped.
type SyntaxError struct {
	Offset  int
	Message string
	Context string // next ~25 characters of the filtered stream, S/T/L-rendered
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s (next: %q)", e.Offset, e.Message, e.Context)
}

func newSyntaxError(filtered []byte, offset int, message string) *SyntaxError {
	end := offset
	if end > len(filtered) {
		end = len(filtered)
	}
	return &SyntaxError{
		Offset:  offset,
		Message: message,
		Context: lexer.Unwhite(filtered[end:], 25),
	}
}
