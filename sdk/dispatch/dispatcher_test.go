package dispatch

import (
	"sync"
	"testing"
	"time"

	"github.com/leandrodaf/midiperform/internal/logger"
	"github.com/leandrodaf/midiperform/sdk/contracts"
	"github.com/leandrodaf/midiperform/sdk/keydriver"
	"github.com/leandrodaf/midiperform/sdk/mapping"
	"github.com/leandrodaf/midiperform/sdk/notes"
)

type keyEvent struct {
	key  contracts.Key
	down bool
}

type recordingInjector struct {
	mu     sync.Mutex
	events []keyEvent
}

func (r *recordingInjector) KeyDown(k contracts.Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, keyEvent{k, true})
	return nil
}

func (r *recordingInjector) KeyUp(k contracts.Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, keyEvent{k, false})
	return nil
}

func (r *recordingInjector) Close() error { return nil }

type fixture struct {
	dispatcher *Dispatcher
	injector   *recordingInjector
	slept      []time.Duration
}

func newFixture(mappings ...mapping.NoteMapping) *fixture {
	f := &fixture{injector: &recordingInjector{}}
	table := mapping.NewTable()
	for _, m := range mappings {
		table.Add(m)
	}
	log := logger.NewNopLogger()
	driver := keydriver.New(f.injector, log, keydriver.WithSleep(func(d time.Duration) {
		f.slept = append(f.slept, d)
	}))
	f.dispatcher = New(table, driver, log)
	return f
}

func tapMapping(note notes.Note, char rune) mapping.NoteMapping {
	m := mapping.New(note, 0, nil)
	m.On = []mapping.Step{mapping.ModifierStep(nil), mapping.DownStep(contracts.Layout(char))}
	m.Off = []mapping.Step{mapping.UpStep(contracts.Layout(char))}
	return m
}

func TestDispatchNoteOnEndToEnd(t *testing.T) {
	f := newFixture(tapMapping(60, 't'))

	if r := f.dispatcher.Dispatch([]byte{0x90, 60, 100}); r != Executed {
		t.Fatalf("Dispatch = %s, want executed", r)
	}
	if len(f.injector.events) != 1 || f.injector.events[0] != (keyEvent{contracts.Layout('t'), true}) {
		t.Fatalf("events = %v, want a single down for 't'", f.injector.events)
	}
	if len(f.slept) != 0 {
		t.Fatalf("slept %v; no modifier changed so no settle delay is expected", f.slept)
	}
}

func TestDispatchNoteOffRunsOffSequence(t *testing.T) {
	f := newFixture(tapMapping(60, 't'))
	f.dispatcher.Dispatch([]byte{0x90, 60, 100})
	f.injector.events = nil

	// Note-On with zero velocity counts as Note-Off.
	if r := f.dispatcher.Dispatch([]byte{0x90, 60, 0}); r != Executed {
		t.Fatalf("Dispatch = %s, want executed", r)
	}
	if len(f.injector.events) != 1 || f.injector.events[0] != (keyEvent{contracts.Layout('t'), false}) {
		t.Fatalf("events = %v, want a single up for 't'", f.injector.events)
	}

	f.injector.events = nil
	f.dispatcher.Dispatch([]byte{0x80, 60, 64})
	if len(f.injector.events) != 0 {
		t.Fatalf("repeated Note-Off sent %v", f.injector.events)
	}
}

func TestDispatchIgnoresNonNoteTraffic(t *testing.T) {
	f := newFixture(tapMapping(60, 't'))
	for _, raw := range [][]byte{nil, {0x90}, {0x90, 60}, {0xB0, 7, 100}, {0xF8}, {0xE0, 0, 64}} {
		if r := f.dispatcher.Dispatch(raw); r != Ignored {
			t.Errorf("Dispatch(% X) = %s, want ignored", raw, r)
		}
	}
	if len(f.injector.events) != 0 {
		t.Fatalf("ignored traffic produced key events: %v", f.injector.events)
	}
}

func TestDispatchUnmapped(t *testing.T) {
	f := newFixture(tapMapping(60, 't'))
	if r := f.dispatcher.Dispatch([]byte{0x90, 61, 100}); r != Unmapped {
		t.Fatalf("Dispatch(note 61) = %s, want unmapped", r)
	}
	if r := f.dispatcher.Dispatch([]byte{0x91, 60, 100}); r != Unmapped {
		t.Fatalf("Dispatch(channel 1) = %s, want unmapped", r)
	}
}

func TestDispatchFirstMappingWins(t *testing.T) {
	f := newFixture(tapMapping(60, 'a'), tapMapping(60, 'b'))
	f.dispatcher.Dispatch([]byte{0x90, 60, 100})
	if len(f.injector.events) != 1 || f.injector.events[0].key != contracts.Layout('a') {
		t.Fatalf("events = %v, want the first mapping's key", f.injector.events)
	}
}

func TestDispatchModifierChangeSettles(t *testing.T) {
	shift := contracts.Shift
	low := mapping.New(60, 0, nil)
	low.On = mapping.DownSequence('q', nil, nil)
	low.Off = mapping.UpSequence('q', nil, nil)
	high := mapping.New(72, 0, nil)
	high.On = mapping.DownSequence('q', &shift, nil)
	high.Off = mapping.UpSequence('q', &shift, nil)
	f := newFixture(low, high)

	f.dispatcher.Dispatch([]byte{0x90, 72, 100})
	f.dispatcher.Dispatch([]byte{0x80, 72, 0})
	f.dispatcher.Dispatch([]byte{0x90, 72, 100})
	f.dispatcher.Dispatch([]byte{0x80, 72, 0})
	if len(f.slept) != 1 {
		t.Fatalf("slept %v, want one settle for the first Shift", f.slept)
	}

	f.dispatcher.Dispatch([]byte{0x90, 60, 100})
	if len(f.slept) != 2 {
		t.Fatalf("slept %v, want a settle when Shift is released", f.slept)
	}
	if f.dispatcher.Driver().IsPressed(shift) {
		t.Fatalf("Shift still held after an unmodified note")
	}
}

func TestHandlerAndReset(t *testing.T) {
	f := newFixture(tapMapping(60, 't'))
	h := f.dispatcher.Handler()
	h("keyboard", []byte{0x90, 60, 100})
	h("keyboard", []byte{0xB0, 1, 1})

	if n := f.dispatcher.Reset(); n != 1 {
		t.Fatalf("Reset = %d, want 1", n)
	}
	last := f.injector.events[len(f.injector.events)-1]
	if last != (keyEvent{contracts.Layout('t'), false}) {
		t.Fatalf("last event = %v, want release of 't'", last)
	}
}

func TestDispatchConcurrentDevices(t *testing.T) {
	f := newFixture(tapMapping(60, 'a'), tapMapping(62, 'b'))

	var wg sync.WaitGroup
	for _, note := range []byte{60, 62} {
		wg.Add(1)
		go func(note byte) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				f.dispatcher.Dispatch([]byte{0x90, note, 100})
				f.dispatcher.Dispatch([]byte{0x80, note, 0})
			}
		}(note)
	}
	wg.Wait()

	if len(f.injector.events) != 200 {
		t.Fatalf("got %d events, want 200", len(f.injector.events))
	}
	for _, k := range []contracts.Key{contracts.Layout('a'), contracts.Layout('b')} {
		if f.dispatcher.Driver().IsPressed(k) {
			t.Fatalf("%v left pressed", k)
		}
	}
}
