package contracts

import (
	"errors"
	"testing"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		in   string
		want Key
	}{
		{"t", Layout('t')},
		{"T", Layout('T')},
		{"é", Layout('é')},
		{"shift", Shift},
		{"Shift", Shift},
		{"CONTROL", Control},
		{"ctrl", Control},
		{"option", OptionKey},
		{"Alt", Alt},
		{"esc", Escape},
		{"enter", Return},
		{"pageup", PageUp},
		{"LeftArrow", LeftArrow},
		{"left", LeftArrow},
		{"f1", Key{Kind: KeyF1}},
		{"F12", Key{Kind: KeyF12}},
		{"raw:0x38", Raw(0x38)},
		{"raw:56", Raw(56)},
	}
	for _, tt := range tests {
		got, err := ParseKey(tt.in)
		if err != nil {
			t.Fatalf("ParseKey(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseKey(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseKeyErrors(t *testing.T) {
	for _, in := range []string{"", "f13", "f0", "hyper", "raw:zz", "raw:0x10000"} {
		if _, err := ParseKey(in); !errors.Is(err, ErrUnknownKey) {
			t.Errorf("ParseKey(%q) error = %v, want ErrUnknownKey", in, err)
		}
	}
}

func TestKeyStringParses(t *testing.T) {
	keys := []Key{Return, Shift, Control, Alt, OptionKey, UpArrow, Layout('q'), Raw(0x7b)}
	for n := 1; n <= 12; n++ {
		k, err := Function(n)
		if err != nil {
			t.Fatalf("Function(%d): %v", n, err)
		}
		keys = append(keys, k)
	}
	for _, k := range keys {
		got, err := ParseKey(k.String())
		if err != nil {
			t.Fatalf("ParseKey(%q): %v", k.String(), err)
		}
		if got != k {
			t.Errorf("ParseKey(%q) = %+v, want %+v", k.String(), got, k)
		}
	}
}

func TestKeysAreMapKeys(t *testing.T) {
	state := map[Key]bool{Layout('a'): true, Shift: true}
	if !state[Layout('a')] || !state[Shift] || state[Layout('b')] {
		t.Fatalf("unexpected key equality: %v", state)
	}
}
