package midi

import (
	"errors"
	"fmt"

	"github.com/leandrodaf/midiperform/sdk/contracts"
	"github.com/leandrodaf/midiperform/sdk/dispatch"
	"github.com/leandrodaf/midiperform/sdk/keydriver"
	"github.com/leandrodaf/midiperform/sdk/mapping"
	"go.uber.org/multierr"
)

// ErrDeviceNotFound is returned when no input device matches the requested name.
var ErrDeviceNotFound = errors.New("MIDI device not found")

// Performer wires a MIDI client, a key injector and a dispatcher together.
type Performer struct {
	Client     contracts.ClientMIDI
	Injector   contracts.KeyInjector
	Dispatcher *dispatch.Dispatcher
	Logger     contracts.Logger
}

// NewPerformer creates a Performer over table using the platform MIDI client and key injector.
//
// table *mapping.Table: The mappings to perform; it may still be filled before Start.
// opts ...contracts.Option: Configuration options shared by the client, injector and driver.
//
// Returns:
//   - *Performer: A performer ready for Start.
//   - error: An error if the client or injector could not be created.
func NewPerformer(table *mapping.Table, opts ...contracts.Option) (*Performer, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	injector, err := NewInjector(&options)
	if err != nil {
		return nil, fmt.Errorf("create key injector: %w", err)
	}
	client, err := NewClient(&options)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("create MIDI client: %w", err), injector.Close())
	}

	return newPerformer(table, client, injector, &options), nil
}

func newPerformer(table *mapping.Table, client contracts.ClientMIDI, injector contracts.KeyInjector, options *contracts.ClientOptions) *Performer {
	driver := keydriver.New(injector, options.Logger,
		keydriver.WithSettleDelay(options.KeyboardConfig.SettleDelay))
	return &Performer{
		Client:     client,
		Injector:   injector,
		Dispatcher: dispatch.New(table, driver, options.Logger),
		Logger:     options.Logger,
	}
}

// Start selects the device named name, or the first device when name is
// empty, and begins dispatching its messages.
func (p *Performer) Start(name string) (contracts.DeviceInfo, error) {
	devices, err := p.Client.ListDevices()
	if err != nil {
		return contracts.DeviceInfo{}, err
	}
	device, err := pickDevice(devices, name)
	if err != nil {
		return contracts.DeviceInfo{}, err
	}

	if err := p.Client.SelectDevice(device.ID); err != nil {
		return contracts.DeviceInfo{}, err
	}
	p.Client.StartCapture(p.Dispatcher.Handler())
	p.Logger.Info("Performing",
		p.Logger.Field().String("device", device.Name),
		p.Logger.Field().Int("mappings", p.Dispatcher.Table().Len()))
	return device, nil
}

func pickDevice(devices []contracts.DeviceInfo, name string) (contracts.DeviceInfo, error) {
	if len(devices) == 0 {
		return contracts.DeviceInfo{}, ErrDeviceNotFound
	}
	if name == "" {
		return devices[0], nil
	}
	for _, d := range devices {
		if d.Name == name {
			return d, nil
		}
	}
	return contracts.DeviceInfo{}, fmt.Errorf("%w: %q", ErrDeviceNotFound, name)
}

// Close stops capture, releases every held key and closes the injector.
func (p *Performer) Close() error {
	err := p.Client.Stop()
	p.Dispatcher.Reset()
	return multierr.Append(err, p.Injector.Close())
}
