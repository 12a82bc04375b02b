package lexer_test

import (
	"testing"

	"github.com/ark-vm/whitespace/lexer"
)

func TestFilterStripsComments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"pure whitespace unchanged", " \t\n \t\n", " \t\n \t\n"},
		{"comment characters dropped", "push\tme\n now", "\t\n "},
		{"comment mid token", "S p a c e", "    "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lexer.FilterString(tt.in)
			if got != tt.want {
				t.Errorf("FilterString(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestUnwhite(t *testing.T) {
	got := lexer.Unwhite([]byte(" \t\n*"), -1)
	want := "STL*"
	if got != want {
		t.Errorf("Unwhite = %q, want %q", got, want)
	}
}

func TestUnwhiteTruncates(t *testing.T) {
	got := lexer.Unwhite([]byte("     "), 3)
	if len(got) != 3 {
		t.Errorf("Unwhite truncated length = %d, want 3", len(got))
	}
}
