package midi

import (
	"github.com/leandrodaf/midiperform/internal/logger"
	"github.com/leandrodaf/midiperform/sdk/contracts"
	"github.com/leandrodaf/midiperform/sdk/keydriver"
)

// Defaults applied by applyDefaultOptions.
const (
	DefaultClientName = "midiperform"
	DefaultDeviceName = "midiperform virtual keyboard"
)

// applyDefaultOptions sets default values for ClientOptions if not explicitly provided.
//
// opts ...contracts.Option: A variadic list of option functions that can modify ClientOptions.
//
// Returns:
//   - contracts.ClientOptions: A structure containing the finalized client options with defaults applied.
//   - error: An error if there was an issue applying the options.
func applyDefaultOptions(opts ...contracts.Option) (contracts.ClientOptions, error) {
	options := &contracts.ClientOptions{LogLevel: contracts.InfoLevel}
	for _, opt := range opts {
		opt(options)
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.LogFilePath != "" {
		options.Logger.SetDestination(contracts.FileLog, options.LogFilePath)
	}

	if options.CoreMIDIConfig == nil {
		options.CoreMIDIConfig = &contracts.CoreMIDIConfig{}
	}
	if options.CoreMIDIConfig.ClientName == "" {
		options.CoreMIDIConfig.ClientName = DefaultClientName
	}

	if options.KeyboardConfig == nil {
		options.KeyboardConfig = &contracts.KeyboardConfig{SettleDelay: keydriver.DefaultSettleDelay}
	}
	if options.KeyboardConfig.DeviceName == "" {
		options.KeyboardConfig.DeviceName = DefaultDeviceName
	}

	options.Logger.SetLevel(options.LogLevel)
	return *options, nil
}
