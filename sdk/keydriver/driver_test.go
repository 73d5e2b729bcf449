package keydriver

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/leandrodaf/midiperform/internal/logger"
	"github.com/leandrodaf/midiperform/sdk/contracts"
	"github.com/leandrodaf/midiperform/sdk/mapping"
)

type keyEvent struct {
	key  contracts.Key
	down bool
}

type recordingInjector struct {
	mu     sync.Mutex
	events []keyEvent
	fail   error
}

func (r *recordingInjector) KeyDown(k contracts.Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, keyEvent{k, true})
	return r.fail
}

func (r *recordingInjector) KeyUp(k contracts.Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, keyEvent{k, false})
	return r.fail
}

func (r *recordingInjector) Close() error { return nil }

type sleepRecorder struct {
	slept []time.Duration
}

func (s *sleepRecorder) sleep(d time.Duration) { s.slept = append(s.slept, d) }

func newTestDriver() (*Driver, *recordingInjector, *sleepRecorder) {
	inj := &recordingInjector{}
	sl := &sleepRecorder{}
	return New(inj, logger.NewNopLogger(), WithSleep(sl.sleep)), inj, sl
}

func TestPressIsIdempotent(t *testing.T) {
	d, inj, _ := newTestDriver()
	a := contracts.Layout('a')

	if !d.Press(a) {
		t.Fatalf("first Press returned false")
	}
	if !d.IsPressed(a) {
		t.Fatalf("key not pressed after first Press")
	}
	if d.Press(a) {
		t.Fatalf("second Press returned true")
	}
	if !d.IsPressed(a) {
		t.Fatalf("key not pressed after second Press")
	}
	if len(inj.events) != 1 {
		t.Fatalf("injector saw %d events, want 1", len(inj.events))
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	d, inj, _ := newTestDriver()
	a := contracts.Layout('a')

	if d.Release(a) {
		t.Fatalf("Release of a never-pressed key returned true")
	}
	d.Press(a)
	if !d.Release(a) || d.Release(a) {
		t.Fatalf("Release should succeed once after Press")
	}
	if len(inj.events) != 2 || inj.events[1] != (keyEvent{a, false}) {
		t.Fatalf("events = %v", inj.events)
	}
}

func TestReset(t *testing.T) {
	d, inj, _ := newTestDriver()
	a, b, c := contracts.Layout('a'), contracts.Layout('b'), contracts.Layout('c')
	d.Press(a)
	d.Press(b)
	d.Press(c)
	d.Release(c)
	inj.events = nil

	if n := d.Reset(); n != 2 {
		t.Fatalf("Reset = %d, want 2", n)
	}
	released := map[contracts.Key]bool{}
	for _, e := range inj.events {
		if e.down {
			t.Fatalf("Reset pressed %v", e.key)
		}
		released[e.key] = true
	}
	if len(released) != 2 || !released[a] || !released[b] {
		t.Fatalf("Reset released %v, want {a, b}", released)
	}
	for _, k := range []contracts.Key{a, b, c} {
		if d.IsPressed(k) {
			t.Fatalf("%v still pressed after Reset", k)
		}
	}
	if n := d.Reset(); n != 0 {
		t.Fatalf("second Reset = %d, want 0", n)
	}
}

func TestApplyModifier(t *testing.T) {
	d, inj, _ := newTestDriver()
	shift, control := contracts.Shift, contracts.Control

	if n := d.ApplyModifier(&control); n != 1 {
		t.Fatalf("ApplyModifier(Control) = %d, want 1", n)
	}
	inj.events = nil

	if n := d.ApplyModifier(&shift); n != 2 {
		t.Fatalf("ApplyModifier(Shift) after Control = %d, want 2", n)
	}
	if !d.IsPressed(shift) || d.IsPressed(control) {
		t.Fatalf("want Shift pressed and Control released")
	}
	want := []keyEvent{{control, false}, {shift, true}}
	if len(inj.events) != 2 || inj.events[0] != want[0] || inj.events[1] != want[1] {
		t.Fatalf("events = %v, want %v", inj.events, want)
	}

	if n := d.ApplyModifier(&shift); n != 0 {
		t.Fatalf("repeated ApplyModifier(Shift) = %d, want 0", n)
	}
}

func TestApplyModifierReleasesAll(t *testing.T) {
	d, _, _ := newTestDriver()
	shift := contracts.Shift
	alt := contracts.Alt

	d.Press(contracts.Control)
	d.ApplyModifier(&shift)
	if n := d.ApplyModifier(nil); n != 1 {
		t.Fatalf("ApplyModifier(nil) = %d, want 1", n)
	}

	d.Press(contracts.Shift)
	d.Press(contracts.Control)
	if n := d.ApplyModifier(&alt); n != 2 {
		t.Fatalf("ApplyModifier(Alt) = %d, want 2", n)
	}
	if d.IsPressed(alt) {
		t.Fatalf("Alt is not a managed modifier and must not be pressed")
	}
	if n := d.ApplyModifier(nil); n != 0 {
		t.Fatalf("ApplyModifier(nil) with nothing held = %d, want 0", n)
	}
}

func TestExecuteSettlesOnlyOnModifierChange(t *testing.T) {
	d, inj, sl := newTestDriver()
	shift := contracts.Shift
	on := mapping.DownSequence('t', &shift, nil)
	off := mapping.UpSequence('t', &shift, nil)

	if n := d.Execute(on); n != 2 {
		t.Fatalf("Execute(on) = %d transitions, want 2", n)
	}
	if len(sl.slept) != 1 || sl.slept[0] != DefaultSettleDelay {
		t.Fatalf("slept %v, want one settle delay", sl.slept)
	}
	d.Execute(off)

	// Same modifier again: no re-press and no settle delay.
	sl.slept = nil
	inj.events = nil
	if n := d.Execute(on); n != 1 {
		t.Fatalf("second Execute(on) = %d transitions, want 1", n)
	}
	if len(sl.slept) != 0 {
		t.Fatalf("slept %v on an unchanged modifier", sl.slept)
	}
	if len(inj.events) != 1 || inj.events[0] != (keyEvent{contracts.Layout('t'), true}) {
		t.Fatalf("events = %v", inj.events)
	}
}

func TestExecuteDelay(t *testing.T) {
	d, _, sl := newTestDriver()
	d.Execute([]mapping.Step{mapping.DelayStep(40), mapping.DelayStep(400)})
	if len(sl.slept) != 2 || sl.slept[0] != 40*time.Millisecond || sl.slept[1] != 400*time.Millisecond {
		t.Fatalf("slept %v", sl.slept)
	}
}

func TestExecuteZeroSettle(t *testing.T) {
	inj := &recordingInjector{}
	sl := &sleepRecorder{}
	d := New(inj, logger.NewNopLogger(), WithSleep(sl.sleep), WithSettleDelay(0))
	shift := contracts.Shift
	d.Execute([]mapping.Step{mapping.ModifierStep(&shift)})
	if len(sl.slept) != 0 {
		t.Fatalf("slept %v with settle disabled", sl.slept)
	}
}

func TestInjectionFailureKeepsState(t *testing.T) {
	d, inj, _ := newTestDriver()
	inj.fail = errors.New("boom")
	a := contracts.Layout('a')
	if !d.Press(a) || !d.IsPressed(a) {
		t.Fatalf("Press should record the transition even when injection fails")
	}
}

func TestExecuteSerializesSequences(t *testing.T) {
	inj := &recordingInjector{}
	d := New(inj, logger.NewNopLogger(), WithSleep(func(time.Duration) {}))
	seq := []mapping.Step{
		mapping.DownStep(contracts.Layout('x')),
		mapping.DelayStep(1),
		mapping.UpStep(contracts.Layout('x')),
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Execute(seq)
		}()
	}
	wg.Wait()

	// Each sequence runs whole, so events strictly alternate down/up.
	if len(inj.events) != 32 {
		t.Fatalf("got %d events, want 32", len(inj.events))
	}
	for i, e := range inj.events {
		if e.down != (i%2 == 0) {
			t.Fatalf("event %d = %v; sequences interleaved", i, e)
		}
	}
}
