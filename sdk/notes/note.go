// Package notes decodes MIDI channel-voice note messages and names MIDI notes.
package notes

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

var (
	// ErrNoteOutOfRange is returned when a numeric note is above 127.
	ErrNoteOutOfRange = errors.New("note out of range")
	// ErrUnparseable is returned when a note name does not match the naming grammar.
	ErrUnparseable = errors.New("unparseable note name")
)

// Note is a MIDI pitch in [0,127].
type Note uint8

// Well-known notes used by the default layout.
const (
	C3 Note = 48
	C4 Note = 60
	C5 Note = 72
	C6 Note = 84
)

// MaxNote is the highest valid MIDI note.
const MaxNote Note = 127

var pitchClasses = [12]string{"C", "Cs", "D", "Ds", "E", "F", "Fs", "G", "Gs", "A", "As", "B"}

// names holds the case-folded name of every note, indexed by note value.
var names [128]string

func init() {
	folder := cases.Fold()
	for i := range names {
		names[i] = folder.String(Note(i).String())
	}
}

// NewNote builds a Note from a raw data byte, masking it to 7 bits.
func NewNote(b byte) Note {
	return Note(b & 0x7F)
}

// Index returns the MIDI note number.
func (n Note) Index() byte {
	return byte(n)
}

// String returns the note name. Octaves are numbered so that 48 is C3;
// notes below 12 use the octave marker "n" (Cn, Csn, ...).
func (n Note) String() string {
	pc := pitchClasses[int(n)%12]
	if n < 12 {
		return pc + "n"
	}
	return pc + strconv.Itoa((int(n)-12)/12)
}

// ParseNote parses a note name such as "C3", "fs4", "G#9" or "Csn", or a
// decimal note number such as "60". Names match case-insensitively against
// the start of text and the longest matching name wins, so "C3-lead" is C3.
func ParseNote(text string) (Note, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrUnparseable)
	}

	if v, err := strconv.Atoi(s); err == nil {
		if v < 0 || v > int(MaxNote) {
			return 0, fmt.Errorf("%w: %d", ErrNoteOutOfRange, v)
		}
		return Note(v), nil
	}

	// A Caser carries state, so each call gets its own.
	folded := cases.Fold().String(strings.Replace(s, "#", "s", 1))
	best, bestLen := -1, 0
	for i, name := range names {
		if len(name) > bestLen && strings.HasPrefix(folded, name) {
			best, bestLen = i, len(name)
		}
	}
	if best < 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnparseable, text)
	}
	return Note(best), nil
}
