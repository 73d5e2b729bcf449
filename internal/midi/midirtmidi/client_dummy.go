//go:build !linux
// +build !linux

package midirtmidi

import (
	"fmt"

	"github.com/leandrodaf/midiperform/sdk/contracts"
)

type dummyMIDIClient struct {
	logger contracts.Logger
}

// NewMIDIClient initializes a dummy MIDI client for systems without the RtMidi backend.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	options.Logger.Debug("Using dummy RtMidi client")
	return &dummyMIDIClient{logger: options.Logger}, nil
}

func (m *dummyMIDIClient) ListDevices() ([]contracts.DeviceInfo, error) {
	return nil, fmt.Errorf("RtMidi is not available on this platform")
}

func (m *dummyMIDIClient) SelectDevice(deviceID int) error {
	return fmt.Errorf("RtMidi is not available on this platform")
}

func (m *dummyMIDIClient) StartCapture(handler contracts.MessageHandler) {
	m.logger.Warn("StartCapture called on dummy RtMidi client")
}

func (m *dummyMIDIClient) Stop() error {
	return nil
}
