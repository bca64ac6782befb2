package shopping

import (
	"errors"
	"strings"
	"testing"
)

func TestNewItem(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        string
		wantErr     bool
		wantMissing bool
	}{
		{"Plain name", "Milch", "Milch", false, false},
		{"Trims whitespace", "  Milch  ", "Milch", false, false},
		{"Trims tabs and newlines", "\tEier\n", "Eier", false, false},
		{"Keeps inner spaces", "rote Paprika", "rote Paprika", false, false},
		{"Empty", "", "", true, true},
		{"Whitespace only", "   \t ", "", true, true},
		{"Exactly max length", strings.Repeat("a", 200), strings.Repeat("a", 200), false, false},
		{"Too long", strings.Repeat("a", 201), "", true, false},
		{"Umlauts count as single characters", strings.Repeat("ä", 200), strings.Repeat("ä", 200), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := NewItem(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewItem(%q) expected error, got none", tt.input)
				}
				var invalid *InvalidNameError
				if !errors.As(err, &invalid) {
					t.Fatalf("NewItem(%q) error type = %T, want *InvalidNameError", tt.input, err)
				}
				if invalid.Missing != tt.wantMissing {
					t.Errorf("NewItem(%q) Missing = %t, want %t", tt.input, invalid.Missing, tt.wantMissing)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewItem(%q) unexpected error: %v", tt.input, err)
			}
			if item.Name() != tt.want {
				t.Errorf("NewItem(%q).Name() = %q, want %q", tt.input, item.Name(), tt.want)
			}
		})
	}
}
