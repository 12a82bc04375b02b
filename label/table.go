// Package label implements the Whitespace label resolver: a single sweep
// over a token sequence that records the token index of every MARK under
// its label, so forward CALL/JUMP references resolve. There is no scoping
// and no types, only last-MARK-wins symbol binding.
package label

import "github.com/ark-vm/whitespace/token"

// Table maps a Label to the token index of its MARK.
type Table struct {
	addrs map[token.Label]int
}

// Resolve sweeps toks once and builds the label table. A duplicate MARK of
// the same label overwrites the prior entry, so the table always reflects
// the last MARK in program order.
func Resolve(toks []token.Token) *Table {
	t := &Table{addrs: make(map[token.Label]int)}
	for i, tok := range toks {
		if tok.Op == token.Mark {
			t.addrs[tok.Label] = i
		}
	}
	return t
}

// Lookup returns the token index bound to lbl and whether it was found.
func (t *Table) Lookup(lbl token.Label) (int, bool) {
	idx, ok := t.addrs[lbl]
	return idx, ok
}

// Len reports the number of distinct labels in the table.
func (t *Table) Len() int {
	return len(t.addrs)
}
