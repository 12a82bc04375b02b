// Package token defines the Whitespace instruction set: the Op enumeration,
// the Label type, and the Token sum type produced by the tokenizer and
// consumed by both the executor and the assembler.
package token

import "fmt"

// Op identifies one of the 24 Whitespace instructions.
type Op int

const (
	OpInvalid Op = iota
	Push
	Duplicate
	Copy
	Swap
	Discard
	Slide
	Add
	Sub
	Mult
	Div
	Mod
	Store
	Retrieve
	Mark
	Call
	Jump
	JumpZero
	JumpNeg
	Return
	EndProgram
	OutCh
	OutNum
	InCh
	InNum
)

// Kind describes the payload shape an Op carries.
type Kind int

const (
	KindNone Kind = iota
	KindNumber
	KindLabel
)

// ArgKind reports what kind of argument, if any, an Op's encoding carries.
func (o Op) ArgKind() Kind {
	switch o {
	case Push, Copy, Slide:
		return KindNumber
	case Mark, Call, Jump, JumpZero, JumpNeg:
		return KindLabel
	default:
		return KindNone
	}
}

var mnemonics = map[Op]string{
	Push: "PUSH", Duplicate: "DUPLICATE", Copy: "COPY", Swap: "SWAP",
	Discard: "DISCARD", Slide: "SLIDE", Add: "ADD", Sub: "SUB", Mult: "MULT",
	Div: "DIV", Mod: "MOD", Store: "STORE", Retrieve: "RETRIEVE", Mark: "MARK",
	Call: "CALL", Jump: "JUMP", JumpZero: "JUMPZERO", JumpNeg: "JUMPNEG",
	Return: "RETURN", EndProgram: "ENDPROGRAM", OutCh: "OUTCH", OutNum: "OUTNUM",
	InCh: "INCH", InNum: "INNUM",
}

// String returns the mnemonic for o, or "INVALID" if o is not a known op.
func (o Op) String() string {
	if m, ok := mnemonics[o]; ok {
		return m
	}
	return "INVALID"
}

// MnemonicToOp is the inverse of String, used by the assembler.
var MnemonicToOp = func() map[string]Op {
	m := make(map[string]Op, len(mnemonics))
	for op, name := range mnemonics {
		m[name] = op
	}
	return m
}()

// Label is a finite sequence of S (space) and T (tab) symbols naming a
// program location. The zero value is the empty label, which is valid.
type Label string

// String renders a label as its literal S/T characters, so labels read as
// identifiers in --describe output and diagnostics instead of as raw
// whitespace.
func (l Label) String() string {
	return string(l)
}

// Token is a single decoded instruction: an Op plus whichever payload its
// ArgKind calls for.
type Token struct {
	Op    Op
	Num   int64
	Label Label
	// Pos is the byte offset in the filtered Whitespace stream where this
	// token's prefix began, used for diagnostics.
	Pos int
}

// Describe renders a token the way `--describe` prints it: "MNEMONIC ARG",
// with ARG omitted for no-payload ops.
func (t Token) Describe() string {
	switch t.Op.ArgKind() {
	case KindNumber:
		return fmt.Sprintf("%s %d", t.Op, t.Num)
	case KindLabel:
		return fmt.Sprintf("%s %s", t.Op, t.Label)
	default:
		return t.Op.String()
	}
}
