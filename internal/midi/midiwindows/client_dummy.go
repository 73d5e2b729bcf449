//go:build !windows
// +build !windows

package midiwindows

import (
	"fmt"

	"github.com/leandrodaf/midiperform/sdk/contracts"
)

type dummyMIDIClient struct {
	logger contracts.Logger
}

// NewMIDIClient initializes a dummy MIDI client for non-Windows systems.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	options.Logger.Debug("Using dummy winmm client for non-Windows system")
	return &dummyMIDIClient{
		logger: options.Logger,
	}, nil
}

// ListDevices reports that winmm is unavailable on this platform.
func (m *dummyMIDIClient) ListDevices() ([]contracts.DeviceInfo, error) {
	m.logger.Warn("ListDevices called on dummy winmm client")
	return nil, fmt.Errorf("winmm is not available on this platform")
}

// SelectDevice reports that winmm is unavailable on this platform.
func (m *dummyMIDIClient) SelectDevice(deviceID int) error {
	m.logger.Warn("SelectDevice called on dummy winmm client")
	return fmt.Errorf("winmm is not available on this platform")
}

func (m *dummyMIDIClient) StartCapture(handler contracts.MessageHandler) {
	m.logger.Warn("StartCapture called on dummy winmm client")
}

func (m *dummyMIDIClient) Stop() error {
	return nil
}
