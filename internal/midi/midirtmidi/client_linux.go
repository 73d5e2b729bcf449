//go:build linux
// +build linux

// Package midirtmidi provides MIDI input through RtMidi (ALSA on Linux).
package midirtmidi

import (
	"errors"
	"fmt"
	"sync"

	"github.com/leandrodaf/midiperform/sdk/contracts"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"go.uber.org/multierr"
)

var (
	ErrNoMIDIDevices     = errors.New("no MIDI devices found")
	ErrInvalidMIDIDevice = errors.New("invalid MIDI device")
	ErrNotConnected      = errors.New("no MIDI device selected")
)

// ClientMid reads MIDI input through the gomidi rtmidi driver.
type ClientMid struct {
	logger          contracts.Logger
	drv             *rtmididrv.Driver
	midiEventFilter *contracts.MIDIEventFilter

	mu      sync.Mutex
	in      drivers.In
	stopFn  func()
	handler contracts.MessageHandler
}

// NewMIDIClient opens the rtmidi driver.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}
	options.Logger.Info("MIDI client created for RtMidi")
	return &ClientMid{
		logger:          options.Logger,
		drv:             drv,
		midiEventFilter: options.MIDIEventFilter,
	}, nil
}

// ListDevices lists the rtmidi input ports.
func (m *ClientMid) ListDevices() ([]contracts.DeviceInfo, error) {
	ins, err := m.drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI inputs: %w", err)
	}
	if len(ins) == 0 {
		m.logger.Warn(ErrNoMIDIDevices.Error())
		return nil, ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, len(ins))
	for i, in := range ins {
		devices[i] = contracts.DeviceInfo{
			ID:         i,
			Name:       in.String(),
			EntityName: in.String(),
		}
	}
	return devices, nil
}

// SelectDevice opens the input port at deviceID, closing any previous one.
func (m *ClientMid) SelectDevice(deviceID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ins, err := m.drv.Ins()
	if err != nil {
		return fmt.Errorf("error retrieving MIDI inputs: %w", err)
	}
	if deviceID < 0 || deviceID >= len(ins) {
		m.logger.Error(ErrInvalidMIDIDevice.Error(), m.logger.Field().Int("deviceID", deviceID))
		return ErrInvalidMIDIDevice
	}

	if err := m.closeLocked(); err != nil {
		m.logger.Warn("Failed to close previous MIDI input", m.logger.Field().Error("error", err))
	}

	in := ins[deviceID]
	if err := in.Open(); err != nil {
		return fmt.Errorf("open %q: %w", in.String(), err)
	}
	m.in = in
	m.logger.Info("MIDI device connected",
		m.logger.Field().Int("deviceID", deviceID),
		m.logger.Field().String("deviceName", in.String()))

	if m.handler != nil {
		return m.listenLocked()
	}
	return nil
}

// StartCapture begins delivering messages to handler.
func (m *ClientMid) StartCapture(handler contracts.MessageHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if handler == nil {
		m.logger.Error("StartCapture called with nil handler")
		return
	}
	if m.stopFn != nil {
		m.stopFn()
		m.stopFn = nil
	}
	m.handler = handler
	if m.in == nil {
		m.logger.Error("Cannot start capture", m.logger.Field().Error("error", ErrNotConnected))
		return
	}
	if err := m.listenLocked(); err != nil {
		m.logger.Error("Failed to start MIDI capture", m.logger.Field().Error("error", err))
		return
	}
	m.logger.Info("MIDI capture started")
}

func (m *ClientMid) listenLocked() error {
	name := m.in.String()
	handler := m.handler
	stop, err := midi.ListenTo(m.in, func(msg midi.Message, _ int32) {
		if len(msg) == 0 || !m.midiEventFilter.Allows(msg[0]) {
			return
		}
		handler(name, msg)
	}, midi.HandleError(func(listenErr error) {
		m.logger.Warn("MIDI listener error",
			m.logger.Field().String("device", name),
			m.logger.Field().Error("error", listenErr))
	}))
	if err != nil {
		return fmt.Errorf("listen %q: %w", name, err)
	}
	m.stopFn = stop
	return nil
}

func (m *ClientMid) closeLocked() error {
	if m.stopFn != nil {
		m.stopFn()
		m.stopFn = nil
	}
	if m.in == nil {
		return nil
	}
	err := m.in.Close()
	m.in = nil
	return err
}

// Stop closes the input port and the driver.
func (m *ClientMid) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := multierr.Combine(m.closeLocked(), m.drv.Close())
	m.logger.Info("MIDI capture stopped")
	return err
}
