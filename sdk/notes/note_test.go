package notes

import (
	"errors"
	"testing"
)

func TestNewNoteRoundTrip(t *testing.T) {
	for b := 0; b < 128; b++ {
		if got := NewNote(byte(b)).Index(); got != byte(b) {
			t.Fatalf("NewNote(%d).Index() = %d", b, got)
		}
	}
}

func TestNewNoteMasks(t *testing.T) {
	if got := NewNote(0x80 | 60).Index(); got != 60 {
		t.Fatalf("NewNote(0xBC).Index() = %d, want 60", got)
	}
}

func TestNoteNames(t *testing.T) {
	tests := map[Note]string{
		0:   "Cn",
		1:   "Csn",
		11:  "Bn",
		12:  "C0",
		48:  "C3",
		60:  "C4",
		66:  "Fs4",
		84:  "C6",
		127: "G9",
	}
	for n, want := range tests {
		if got := n.String(); got != want {
			t.Errorf("Note(%d).String() = %q, want %q", n, got, want)
		}
	}
}

func TestParseNoteRoundTrip(t *testing.T) {
	for i := 0; i < 128; i++ {
		n := Note(i)
		got, err := ParseNote(n.String())
		if err != nil {
			t.Fatalf("ParseNote(%q): %v", n.String(), err)
		}
		if got != n {
			t.Fatalf("ParseNote(%q) = %d, want %d", n.String(), got, n)
		}
	}
}

func TestParseNoteVariants(t *testing.T) {
	tests := map[string]Note{
		"c3":      48,
		"FS4":     66,
		"F#4":     66,
		" C4 ":    60,
		"60":      60,
		"127":     127,
		"csn":     1,
		"C3-lead": 48,
		"Cs4x":    61,
	}
	for text, want := range tests {
		got, err := ParseNote(text)
		if err != nil {
			t.Fatalf("ParseNote(%q): %v", text, err)
		}
		if got != want {
			t.Errorf("ParseNote(%q) = %d, want %d", text, got, want)
		}
	}
}

func TestParseNoteErrors(t *testing.T) {
	tests := map[string]error{
		"128":  ErrNoteOutOfRange,
		"300":  ErrNoteOutOfRange,
		"-1":   ErrNoteOutOfRange,
		"":     ErrUnparseable,
		"H3":   ErrUnparseable,
		"Cb3":  ErrUnparseable,
		"xC3":  ErrUnparseable,
		"A9":   ErrUnparseable,
		"note": ErrUnparseable,
	}
	for text, want := range tests {
		if _, err := ParseNote(text); !errors.Is(err, want) {
			t.Errorf("ParseNote(%q) error = %v, want %v", text, err, want)
		}
	}
}
