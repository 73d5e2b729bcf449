package midi

import (
	"github.com/leandrodaf/midiperform/sdk/contracts"
)

// NewMIDIClient creates a new MIDI client with the specified options.
// It applies default options and initializes the client.
//
// opts ...contracts.Option: A variadic list of option functions to customize the client configuration.
//
// Returns:
//   - contracts.ClientMIDI: An instance of the MIDI client.
//   - error: An error, if any occurred during the creation of the client.
func NewMIDIClient(opts ...contracts.Option) (contracts.ClientMIDI, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	return NewClient(&options)
}

// NewKeyInjector creates the key injector for the current operating system.
//
// opts ...contracts.Option: A variadic list of option functions; KeyboardConfig selects the virtual device name.
//
// Returns:
//   - contracts.KeyInjector: An injector sending OS-level key events.
//   - error: An error, if any occurred during the creation of the injector.
func NewKeyInjector(opts ...contracts.Option) (contracts.KeyInjector, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	return NewInjector(&options)
}
