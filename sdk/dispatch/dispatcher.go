// Package dispatch turns raw MIDI messages into key sequences.
package dispatch

import (
	"errors"
	"fmt"

	"github.com/leandrodaf/midiperform/sdk/contracts"
	"github.com/leandrodaf/midiperform/sdk/keydriver"
	"github.com/leandrodaf/midiperform/sdk/mapping"
	"github.com/leandrodaf/midiperform/sdk/notes"
)

// Result describes what Dispatch did with a message.
type Result uint8

const (
	// Ignored means the message was not a decodable note event.
	Ignored Result = iota
	// Unmapped means the note had no mapping.
	Unmapped
	// Executed means a mapping's sequence was run.
	Executed
)

func (r Result) String() string {
	switch r {
	case Ignored:
		return "ignored"
	case Unmapped:
		return "unmapped"
	case Executed:
		return "executed"
	}
	return fmt.Sprintf("Result(%d)", uint8(r))
}

// Dispatcher owns the mapping table and key driver used while performing.
// It is safe to call from several device callbacks at once: table lookups
// run concurrently and sequence execution is serialized by the driver.
type Dispatcher struct {
	table  *mapping.Table
	driver *keydriver.Driver
	logger contracts.Logger
}

// New returns a Dispatcher over table and driver.
func New(table *mapping.Table, driver *keydriver.Driver, logger contracts.Logger) *Dispatcher {
	return &Dispatcher{table: table, driver: driver, logger: logger}
}

// Table returns the mapping table.
func (d *Dispatcher) Table() *mapping.Table { return d.table }

// Driver returns the key driver.
func (d *Dispatcher) Driver() *keydriver.Driver { return d.driver }

// Dispatch decodes raw and runs the matching sequence synchronously.
// Malformed and non-note messages are logged and ignored, never returned as errors.
func (d *Dispatcher) Dispatch(raw []byte) Result {
	msg, err := notes.Decode(raw)
	if err != nil {
		if errors.Is(err, notes.ErrUnimplemented) {
			d.logger.Debug("Ignoring non-note MIDI message", d.logger.Field().String("data", fmt.Sprintf("% X", raw)))
		} else {
			d.logger.Warn("Dropping malformed MIDI message",
				d.logger.Field().String("data", fmt.Sprintf("% X", raw)),
				d.logger.Field().Error("error", err))
		}
		return Ignored
	}
	return d.DispatchMessage(msg)
}

// DispatchMessage runs the sequence mapped to an already decoded message.
func (d *Dispatcher) DispatchMessage(msg notes.Message) Result {
	m, ok := d.table.Find(msg.Note, msg.Channel, nil)
	if !ok {
		d.logger.Debug("Unmapped note", d.logger.Field().String("message", msg.String()))
		return Unmapped
	}

	steps := m.Off
	if msg.Kind == notes.NoteOn {
		steps = m.On
	}
	changed := d.driver.Execute(steps)
	d.logger.Debug("Sequence executed",
		d.logger.Field().String("message", msg.String()),
		d.logger.Field().Int("steps", len(steps)),
		d.logger.Field().Int("transitions", changed))
	return Executed
}

// Handler adapts the dispatcher to a transport callback.
func (d *Dispatcher) Handler() contracts.MessageHandler {
	return func(source string, data []byte) {
		if r := d.Dispatch(data); r == Executed {
			d.logger.Debug("Handled MIDI message", d.logger.Field().String("source", source))
		}
	}
}

// Reset releases every key the driver holds.
func (d *Dispatcher) Reset() int {
	return d.driver.Reset()
}
