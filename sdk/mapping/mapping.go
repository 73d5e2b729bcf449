package mapping

import (
	"fmt"
	"sync"

	"github.com/leandrodaf/midiperform/sdk/notes"
)

// NoteMapping binds a note on a channel, optionally restricted to an instrument,
// to the sequences run when the note starts and ends.
type NoteMapping struct {
	Note       notes.Note
	Channel    notes.Channel
	Instrument *string
	On         []Step
	Off        []Step
}

// New returns a mapping with empty sequences.
func New(note notes.Note, channel notes.Channel, instrument *string) NoteMapping {
	return NoteMapping{Note: note, Channel: channel, Instrument: instrument}
}

// Matches reports whether m is keyed by exactly (note, channel, instrument).
// A nil instrument only matches a nil instrument.
func (m *NoteMapping) Matches(note notes.Note, channel notes.Channel, instrument *string) bool {
	if m.Note != note || m.Channel != channel {
		return false
	}
	if m.Instrument == nil || instrument == nil {
		return m.Instrument == nil && instrument == nil
	}
	return *m.Instrument == *instrument
}

func (m NoteMapping) String() string {
	inst := "-"
	if m.Instrument != nil {
		inst = *m.Instrument
	}
	return fmt.Sprintf("%s/ch%d/%s on=%v off=%v", m.Note, m.Channel, inst, m.On, m.Off)
}

// Table is an ordered, append-only list of mappings.
// Lookups scan in insertion order and the first match wins; Add never removes
// or replaces an earlier mapping with the same key.
// Table is safe for concurrent use.
type Table struct {
	mu       sync.RWMutex
	mappings []NoteMapping
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{}
}

// Add appends m.
func (t *Table) Add(m NoteMapping) {
	t.mu.Lock()
	t.mappings = append(t.mappings, m)
	t.mu.Unlock()
}

// Find returns the first mapping added for (note, channel, instrument).
// The returned sequences are shared with the table and must not be modified.
func (t *Table) Find(note notes.Note, channel notes.Channel, instrument *string) (NoteMapping, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i := range t.mappings {
		if t.mappings[i].Matches(note, channel, instrument) {
			return t.mappings[i], true
		}
	}
	return NoteMapping{}, false
}

// Len returns the number of mappings, shadowed ones included.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.mappings)
}

// All returns a copy of the mappings in insertion order.
func (t *Table) All() []NoteMapping {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]NoteMapping, len(t.mappings))
	copy(out, t.mappings)
	return out
}
