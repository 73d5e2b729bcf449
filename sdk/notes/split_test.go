package notes

import (
	"bytes"
	"testing"
)

func TestSplit(t *testing.T) {
	packet := []byte{0x05, 0x90, 60, 100, 0x80, 60, 0, 0xF8}
	got := Split(packet)
	want := [][]byte{{0x90, 60, 100}, {0x80, 60, 0}, {0xF8}}
	if len(got) != len(want) {
		t.Fatalf("Split returned %d messages, want %d", len(got), len(want))
	}
	for i := range want {
		if !bytes.Equal(got[i], want[i]) {
			t.Errorf("message %d = % X, want % X", i, got[i], want[i])
		}
	}
}

func TestSplitNoStatus(t *testing.T) {
	if got := Split([]byte{1, 2, 3}); len(got) != 0 {
		t.Fatalf("Split without status byte = %v, want none", got)
	}
}
