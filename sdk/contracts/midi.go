package contracts

// MessageHandler receives one raw MIDI message per invocation.
// source names the device the message arrived from. Calls for a single
// source are sequential; different sources may call concurrently.
// The data slice is only valid for the duration of the call.
type MessageHandler func(source string, data []byte)

// ClientMIDI defines an interface for MIDI client operations.
type ClientMIDI interface {
	Stop() error                         // Stops the MIDI client and releases resources.
	ListDevices() ([]DeviceInfo, error)  // Lists all available MIDI devices.
	SelectDevice(deviceID int) error     // Selects a MIDI device by its ID for communication.
	StartCapture(handler MessageHandler) // Starts delivering raw MIDI messages to handler.
}
