package mapping

import (
	"github.com/leandrodaf/midiperform/sdk/contracts"
	"github.com/leandrodaf/midiperform/sdk/notes"
)

// Timings used by the default layout.
const (
	ModifierDelayMs = 5   // time for a keyboard modifier to stick
	KeyDelayMs      = 40  // time for a key press to stick
	SystemDelayMs   = 400 // time for system actions such as Escape to complete
)

// PianoChannel and PadChannel are the channels the default layout listens on.
const (
	PianoChannel notes.Channel = 0
	PadChannel   notes.Channel = 9
)

// pianoKeys are the characters for one octave plus the top C.
var pianoKeys = [13]rune{'q', '2', 'w', '3', 'e', 'r', '5', 't', '6', 'y', '7', 'u', 'i'}

// padKeys are the instrument-switch characters for pads 40..43.
var padKeys = [4]rune{'z', 'x', 'c', 'v'}

// DefaultLayout returns the built-in mappings: a three octave piano on
// channel 0 (C3..C6) and four instrument pads on channel 9 (notes 40..43).
//
// The piano reuses one octave of keys; C3..C4 hold Control and C5..C6 hold
// Shift to select the octave. Each pad sends Escape, waits for the
// application to react, then Control+Alt+Shift plus a letter.
func DefaultLayout() []NoteMapping {
	var out []NoteMapping

	control, shift := contracts.Control, contracts.Shift
	for n := notes.C3; n <= notes.C6; n++ {
		idx := int(n.Index() % 12)
		if n == notes.C6 {
			idx = 12
		}

		var modifier *contracts.Key
		switch {
		case n <= notes.C4:
			modifier = &control
		case n >= notes.C5:
			modifier = &shift
		}

		m := New(n, PianoChannel, nil)
		m.On = DownSequence(pianoKeys[idx], modifier, nil)
		m.Off = UpSequence(pianoKeys[idx], modifier, nil)
		out = append(out, m)
	}

	for i, c := range padKeys {
		m := New(notes.Note(40+i), PadChannel, nil)
		m.On = padSequence(c)
		out = append(out, m)
	}
	return out
}

func padSequence(c rune) []Step {
	key := contracts.Layout(c)
	return []Step{
		ModifierStep(nil),
		DownStep(contracts.Escape),
		DelayStep(KeyDelayMs),
		UpStep(contracts.Escape),
		DelayStep(SystemDelayMs),
		DownStep(contracts.Control),
		DownStep(contracts.Alt),
		DownStep(contracts.Shift),
		DelayStep(ModifierDelayMs),
		DownStep(key),
		DelayStep(KeyDelayMs),
		UpStep(key),
		DelayStep(ModifierDelayMs),
		UpStep(contracts.Control),
		UpStep(contracts.Alt),
		UpStep(contracts.Shift),
	}
}

// LoadDefaults appends DefaultLayout to t and returns the count added.
func LoadDefaults(t *Table) int {
	layout := DefaultLayout()
	for _, m := range layout {
		t.Add(m)
	}
	return len(layout)
}
