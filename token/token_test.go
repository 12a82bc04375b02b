package token_test

import (
	"testing"

	"github.com/ark-vm/whitespace/token"
)

func TestOpStringRoundTripsThroughMnemonicToOp(t *testing.T) {
	ops := []token.Op{
		token.Push, token.Duplicate, token.Copy, token.Swap, token.Discard,
		token.Slide, token.Add, token.Sub, token.Mult, token.Div, token.Mod,
		token.Store, token.Retrieve, token.Mark, token.Call, token.Jump,
		token.JumpZero, token.JumpNeg, token.Return, token.EndProgram,
		token.OutCh, token.OutNum, token.InCh, token.InNum,
	}
	if len(ops) != 24 {
		t.Fatalf("expected 24 documented ops, test lists %d", len(ops))
	}
	for _, op := range ops {
		name := op.String()
		got, ok := token.MnemonicToOp[name]
		if !ok {
			t.Errorf("MnemonicToOp missing entry for %q", name)
			continue
		}
		if got != op {
			t.Errorf("MnemonicToOp[%q] = %v, want %v", name, got, op)
		}
	}
}

func TestArgKind(t *testing.T) {
	tests := []struct {
		op   token.Op
		kind token.Kind
	}{
		{token.Push, token.KindNumber},
		{token.Copy, token.KindNumber},
		{token.Slide, token.KindNumber},
		{token.Mark, token.KindLabel},
		{token.Call, token.KindLabel},
		{token.Jump, token.KindLabel},
		{token.JumpZero, token.KindLabel},
		{token.JumpNeg, token.KindLabel},
		{token.Add, token.KindNone},
		{token.Duplicate, token.KindNone},
		{token.EndProgram, token.KindNone},
	}
	for _, tt := range tests {
		if got := tt.op.ArgKind(); got != tt.kind {
			t.Errorf("%v.ArgKind() = %v, want %v", tt.op, got, tt.kind)
		}
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		tok  token.Token
		want string
	}{
		{"push", token.Token{Op: token.Push, Num: 42}, "PUSH 42"},
		{"push negative", token.Token{Op: token.Push, Num: -7}, "PUSH -7"},
		{"mark", token.Token{Op: token.Mark, Label: "ST"}, "MARK ST"},
		{"no arg", token.Token{Op: token.Add}, "ADD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tok.Describe(); got != tt.want {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}
