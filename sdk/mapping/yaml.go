package mapping

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/leandrodaf/midiperform/sdk/contracts"
	"github.com/leandrodaf/midiperform/sdk/notes"
	"gopkg.in/yaml.v3"
)

// ErrInvalidStep is returned when a YAML step does not hold exactly one
// action, or a mapping holds none.
var ErrInvalidStep = errors.New("invalid step")

// MaxDelayMs is the longest delay a sequence file may request.
const MaxDelayMs = 60_000

// sequenceFile is the YAML document layout:
//
//	mappings:
//	  - note: C4
//	    channel: 0
//	    key: t            # shorthand for on: [modifier, down t], off: [up t]
//	    modifier: shift
//	  - note: 40
//	    channel: 9
//	    on:
//	      - down: escape
//	      - delay: 40
//	      - up: escape
type sequenceFile struct {
	Mappings []mappingEntry `yaml:"mappings"`
}

type mappingEntry struct {
	Note       string      `yaml:"note"`
	Channel    uint8       `yaml:"channel"`
	Instrument *string     `yaml:"instrument"`
	Key        string      `yaml:"key"`
	Modifier   string      `yaml:"modifier"`
	On         []stepEntry `yaml:"on"`
	Off        []stepEntry `yaml:"off"`
}

type stepEntry struct {
	Delay    *uint64 `yaml:"delay"`
	Down     string  `yaml:"down"`
	Up       string  `yaml:"up"`
	Modifier *string `yaml:"modifier"`
}

// LoadYAMLFile reads a YAML sequence file and appends its mappings to t.
func LoadYAMLFile(path string, t *Table, logger contracts.Logger) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open sequence file: %w", err)
	}
	defer f.Close()
	return LoadYAML(f, t, logger)
}

// LoadYAML decodes a YAML sequence document and appends its mappings to t.
// Any invalid entry fails the whole load and nothing is added.
func LoadYAML(r io.Reader, t *Table, logger contracts.Logger) (int, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc sequenceFile
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("decode sequence file: %w", err)
	}

	parsed := make([]NoteMapping, 0, len(doc.Mappings))
	for i, entry := range doc.Mappings {
		m, err := entry.build()
		if err != nil {
			return 0, fmt.Errorf("mapping %d: %w", i, err)
		}
		logger.Debug("Loaded sequence mapping",
			logger.Field().Int("index", i),
			logger.Field().String("mapping", m.String()))
		parsed = append(parsed, m)
	}

	for _, m := range parsed {
		t.Add(m)
	}
	return len(parsed), nil
}

func (s mappingEntry) build() (NoteMapping, error) {
	note, err := notes.ParseNote(s.Note)
	if err != nil {
		return NoteMapping{}, err
	}
	if s.Channel > 15 {
		return NoteMapping{}, fmt.Errorf("%w: %d", ErrInvalidChannel, s.Channel)
	}
	m := New(note, notes.Channel(s.Channel), s.Instrument)

	modifier, err := parseModifier(s.Modifier)
	if err != nil {
		return NoteMapping{}, err
	}

	if s.Key != "" {
		if len(s.On) > 0 || len(s.Off) > 0 {
			return NoteMapping{}, fmt.Errorf("%w: key shorthand cannot be combined with on/off", ErrInvalidStep)
		}
		k, err := contracts.ParseKey(s.Key)
		if err != nil {
			return NoteMapping{}, err
		}
		if k.Kind == contracts.KeyLayout {
			m.On = DownSequence(k.Char, modifier, nil)
			m.Off = UpSequence(k.Char, modifier, nil)
		} else {
			m.On = []Step{ModifierStep(modifier), DownStep(k)}
			m.Off = []Step{UpStep(k)}
		}
		return m, nil
	}
	if len(s.On) == 0 && len(s.Off) == 0 {
		return NoteMapping{}, fmt.Errorf("%w: mapping for %s defines no key, on or off", ErrInvalidStep, note)
	}

	if m.On, err = buildSteps(s.On); err != nil {
		return NoteMapping{}, fmt.Errorf("on: %w", err)
	}
	if m.Off, err = buildSteps(s.Off); err != nil {
		return NoteMapping{}, fmt.Errorf("off: %w", err)
	}
	return m, nil
}

func buildSteps(entries []stepEntry) ([]Step, error) {
	steps := make([]Step, 0, len(entries))
	for i, entry := range entries {
		step, err := entry.build()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func (s stepEntry) build() (Step, error) {
	set := 0
	if s.Delay != nil {
		set++
	}
	if s.Down != "" {
		set++
	}
	if s.Up != "" {
		set++
	}
	if s.Modifier != nil {
		set++
	}
	if set != 1 {
		return Step{}, fmt.Errorf("%w: want exactly one of delay, down, up, modifier", ErrInvalidStep)
	}

	switch {
	case s.Delay != nil:
		if *s.Delay > MaxDelayMs {
			return Step{}, fmt.Errorf("%w: delay %dms exceeds %dms", ErrInvalidStep, *s.Delay, MaxDelayMs)
		}
		return DelayStep(*s.Delay), nil
	case s.Down != "":
		k, err := contracts.ParseKey(s.Down)
		if err != nil {
			return Step{}, err
		}
		return DownStep(k), nil
	case s.Up != "":
		k, err := contracts.ParseKey(s.Up)
		if err != nil {
			return Step{}, err
		}
		return UpStep(k), nil
	default:
		modifier, err := parseModifier(*s.Modifier)
		if err != nil {
			return Step{}, err
		}
		return ModifierStep(modifier), nil
	}
}

// parseModifier maps "" and "none" to nil.
func parseModifier(s string) (*contracts.Key, error) {
	if s == "" || strings.EqualFold(s, "none") {
		return nil, nil
	}
	k, err := contracts.ParseKey(s)
	if err != nil {
		return nil, err
	}
	return &k, nil
}
