// Package lexer strips every byte that is not space, tab, or line feed
// from raw Whitespace source, leaving a pure three-symbol stream for the
// tokenizer. A single pass suffices: anything not space/tab/lf is a
// comment, even mid-token, so there is no comment syntax or multi-mode
// state to track.
package lexer

const (
	Space = ' '
	Tab   = '\t'
	LF    = '\n'
)

// Filter returns the subsequence of src consisting only of space, tab, and
// line feed bytes, in their original order.
func Filter(src []byte) []byte {
	out := make([]byte, 0, len(src))
	for _, b := range src {
		switch b {
		case Space, Tab, LF:
			out = append(out, b)
		}
	}
	return out
}

// FilterString is the string-typed convenience form of Filter.
func FilterString(src string) string {
	return string(Filter([]byte(src)))
}

// Unwhite renders a filtered Whitespace fragment as the letters S/T/L, and
// any other byte as '*'.
// It is used by diagnostics to print a readable dump of otherwise-invisible
// source. If max >= 0 the result is truncated to at most max runes.
func Unwhite(src []byte, max int) string {
	out := make([]byte, 0, len(src))
	for _, b := range src {
		switch b {
		case Space:
			out = append(out, 'S')
		case Tab:
			out = append(out, 'T')
		case LF:
			out = append(out, 'L')
		default:
			out = append(out, '*')
		}
	}
	if max >= 0 && len(out) > max {
		out = out[:max]
	}
	return string(out)
}
