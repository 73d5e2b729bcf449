// Package keydriver tracks the pressed state of logical keys and executes
// mapping sequences against a KeyInjector without sending redundant events.
package keydriver

import (
	"sync"
	"time"

	"github.com/leandrodaf/midiperform/sdk/contracts"
	"github.com/leandrodaf/midiperform/sdk/mapping"
)

// Modifiers is the fixed set managed by SetModifier steps.
var Modifiers = [...]contracts.Key{contracts.Shift, contracts.Control}

// DefaultSettleDelay is the pause after a modifier change.
const DefaultSettleDelay = mapping.ModifierDelayMs * time.Millisecond

// Driver is the key state machine. Keys are a process-wide resource, so one
// Driver is shared by every input device and all methods serialize on a
// single lock; Execute holds it for the whole sequence.
type Driver struct {
	mu       sync.Mutex
	injector contracts.KeyInjector
	logger   contracts.Logger
	pressed  map[contracts.Key]bool
	settle   time.Duration
	sleep    func(time.Duration)
}

// Option configures a Driver.
type Option func(*Driver)

// WithSettleDelay sets the pause inserted after a modifier change.
func WithSettleDelay(d time.Duration) Option {
	return func(drv *Driver) {
		drv.settle = d
	}
}

// WithSleep replaces time.Sleep, mainly for tests.
func WithSleep(fn func(time.Duration)) Option {
	return func(drv *Driver) {
		drv.sleep = fn
	}
}

// New returns a Driver with every key released.
func New(injector contracts.KeyInjector, logger contracts.Logger, opts ...Option) *Driver {
	drv := &Driver{
		injector: injector,
		logger:   logger,
		pressed:  make(map[contracts.Key]bool),
		settle:   DefaultSettleDelay,
		sleep:    time.Sleep,
	}
	for _, opt := range opts {
		opt(drv)
	}
	return drv
}

// Press presses key. It returns false, sending nothing, if key is already pressed.
func (d *Driver) Press(key contracts.Key) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.press(key)
}

// Release releases key. It returns false, sending nothing, if key is already released.
func (d *Driver) Release(key contracts.Key) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.release(key)
}

// IsPressed reports the tracked state of key.
func (d *Driver) IsPressed(key contracts.Key) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pressed[key]
}

// Reset releases every pressed key and returns how many were released.
// Used after a device disconnects and at shutdown so no key stays stuck.
func (d *Driver) Reset() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	changed := 0
	for key, down := range d.pressed {
		if down {
			d.send(key, false)
			changed++
		}
	}
	clear(d.pressed)
	if changed > 0 {
		d.logger.Info("Released stuck keys", d.logger.Field().Int("count", changed))
	}
	return changed
}

// ApplyModifier makes requested the only held modifier. A nil request, or a
// key outside Modifiers, releases them all. It returns the number of press
// and release calls that changed state.
func (d *Driver) ApplyModifier(requested *contracts.Key) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.applyModifier(requested)
}

// Execute runs steps in order while holding the driver lock. Delay steps
// block the caller. It returns the number of key transitions made.
func (d *Driver) Execute(steps []mapping.Step) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	changed := 0
	for _, step := range steps {
		switch step.Kind {
		case mapping.Delay:
			d.sleep(step.Delay)
		case mapping.KeyDown:
			if d.press(step.Key) {
				changed++
			}
		case mapping.KeyUp:
			if d.release(step.Key) {
				changed++
			}
		case mapping.SetModifier:
			var requested *contracts.Key
			if step.HasKey {
				requested = &step.Key
			}
			n := d.applyModifier(requested)
			if n > 0 && d.settle > 0 {
				d.sleep(d.settle)
			}
			changed += n
		default:
			d.logger.Warn("Skipping unknown step", d.logger.Field().Int("kind", int(step.Kind)))
		}
	}
	return changed
}

func (d *Driver) applyModifier(requested *contracts.Key) int {
	target := -1
	if requested != nil {
		for i, m := range Modifiers {
			if m == *requested {
				target = i
				break
			}
		}
	}

	changed := 0
	for i, m := range Modifiers {
		if i != target && d.release(m) {
			changed++
		}
	}
	if target >= 0 && d.press(Modifiers[target]) {
		changed++
	}
	return changed
}

func (d *Driver) press(key contracts.Key) bool {
	if d.pressed[key] {
		return false
	}
	d.pressed[key] = true
	d.send(key, true)
	return true
}

func (d *Driver) release(key contracts.Key) bool {
	if !d.pressed[key] {
		return false
	}
	d.pressed[key] = false
	d.send(key, false)
	return true
}

// send forwards a transition to the injector. Injection failures are logged;
// the tracked state already reflects the request.
func (d *Driver) send(key contracts.Key, down bool) {
	var err error
	if down {
		err = d.injector.KeyDown(key)
	} else {
		err = d.injector.KeyUp(key)
	}
	if err != nil {
		d.logger.Warn("Key injection failed",
			d.logger.Field().String("key", key.String()),
			d.logger.Field().Bool("down", down),
			d.logger.Field().Error("error", err))
		return
	}
	d.logger.Debug("Key event sent",
		d.logger.Field().String("key", key.String()),
		d.logger.Field().Bool("down", down))
}
