package mapping

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/leandrodaf/midiperform/internal/logger"
	"github.com/leandrodaf/midiperform/sdk/contracts"
)

const sequenceDoc = `
mappings:
  - note: C4
    channel: 0
    key: t
    modifier: shift
  - note: "40"
    channel: 9
    on:
      - modifier: none
      - down: escape
      - delay: 40
      - up: escape
  - note: D4
    channel: 0
    instrument: organ
    key: p
`

func TestLoadYAML(t *testing.T) {
	table := NewTable()
	n, err := LoadYAML(strings.NewReader(sequenceDoc), table, logger.NewNopLogger())
	if err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	if n != 3 {
		t.Fatalf("LoadYAML added %d, want 3", n)
	}

	shift := contracts.Shift
	c4, ok := table.Find(60, 0, nil)
	if !ok {
		t.Fatalf("C4 not loaded")
	}
	if c4.On[0] != ModifierStep(&shift) || c4.On[1] != DownStep(contracts.Layout('t')) {
		t.Fatalf("C4 on = %v", c4.On)
	}

	pad, ok := table.Find(40, 9, nil)
	if !ok {
		t.Fatalf("pad 40 not loaded")
	}
	want := []Step{ModifierStep(nil), DownStep(contracts.Escape), DelayStep(40), UpStep(contracts.Escape)}
	if len(pad.On) != len(want) {
		t.Fatalf("pad on = %v, want %v", pad.On, want)
	}
	for i := range want {
		if pad.On[i] != want[i] {
			t.Fatalf("pad step %d = %v, want %v", i, pad.On[i], want[i])
		}
	}
	if pad.On[2].Delay != 40*time.Millisecond {
		t.Fatalf("delay = %v", pad.On[2].Delay)
	}
	if len(pad.Off) != 0 {
		t.Fatalf("pad off = %v, want empty", pad.Off)
	}

	if _, ok := table.Find(62, 0, strPtr("organ")); !ok {
		t.Fatalf("instrument mapping not loaded")
	}
}

func TestLoadYAMLErrors(t *testing.T) {
	tests := map[string]error{
		"mappings:\n  - note: C4\n    on:\n      - down: a\n        up: a\n": ErrInvalidStep,
		"mappings:\n  - note: C4\n    on:\n      - {}\n":                     ErrInvalidStep,
		"mappings:\n  - note: C4\n    key: a\n    on:\n      - down: a\n":    ErrInvalidStep,
		"mappings:\n  - note: C4\n    channel: 16\n    key: a\n":             ErrInvalidChannel,
		"mappings:\n  - note: C4\n    on:\n      - down: hyper\n":            contracts.ErrUnknownKey,
		"mappings:\n  - note: C4\n    key: hyper\n":                          contracts.ErrUnknownKey,
		"mappings:\n  - note: D4\n    channel: 0\n":                          ErrInvalidStep,
		"mappings:\n  - note: C4\n    on:\n      - delay: 60001\n":           ErrInvalidStep,
	}
	for doc, want := range tests {
		table := NewTable()
		if _, err := LoadYAML(strings.NewReader(doc), table, logger.NewNopLogger()); !errors.Is(err, want) {
			t.Errorf("LoadYAML(%q) error = %v, want %v", doc, err, want)
		}
		if table.Len() != 0 {
			t.Errorf("LoadYAML(%q) added mappings despite failing", doc)
		}
	}
}

func TestLoadYAMLNamedKey(t *testing.T) {
	doc := "mappings:\n  - note: C4\n    key: escape\n    modifier: control\n"
	table := NewTable()
	if _, err := LoadYAML(strings.NewReader(doc), table, logger.NewNopLogger()); err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	m, ok := table.Find(60, 0, nil)
	if !ok {
		t.Fatalf("C4 not loaded")
	}
	control := contracts.Control
	if len(m.On) != 2 || m.On[0] != ModifierStep(&control) || m.On[1] != DownStep(contracts.Escape) {
		t.Fatalf("C4 on = %v, want modifier(control) down(escape)", m.On)
	}
	if len(m.Off) != 1 || m.Off[0] != UpStep(contracts.Escape) {
		t.Fatalf("C4 off = %v, want up(escape)", m.Off)
	}
}

func TestLoadYAMLUnknownField(t *testing.T) {
	doc := "mappings:\n  - note: C4\n    colour: red\n"
	if _, err := LoadYAML(strings.NewReader(doc), NewTable(), logger.NewNopLogger()); err == nil {
		t.Fatalf("LoadYAML accepted an unknown field")
	}
}

func TestLoadYAMLEmpty(t *testing.T) {
	n, err := LoadYAML(strings.NewReader(""), NewTable(), logger.NewNopLogger())
	if err != nil || n != 0 {
		t.Fatalf("LoadYAML(empty) = %d, %v", n, err)
	}
}
