package midi

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/leandrodaf/midiperform/internal/keyboard/kbddarwin"
	"github.com/leandrodaf/midiperform/internal/keyboard/kbdlinux"
	"github.com/leandrodaf/midiperform/internal/keyboard/kbdwindows"
	"github.com/leandrodaf/midiperform/internal/midi/mididarwin"
	"github.com/leandrodaf/midiperform/internal/midi/midirtmidi"
	"github.com/leandrodaf/midiperform/internal/midi/midiwindows"
	"github.com/leandrodaf/midiperform/sdk/contracts"
)

// ErrUnsupportedOS is returned when the operating system is not supported.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// clientInitializers maps OS names to corresponding MIDI client initializers.
var clientInitializers = map[string]func(*contracts.ClientOptions) (contracts.ClientMIDI, error){
	"darwin":  mididarwin.NewMIDIClient,  // macOS (Darwin) CoreMIDI client.
	"windows": midiwindows.NewMIDIClient, // Windows winmm client.
	"linux":   midirtmidi.NewMIDIClient,  // Linux RtMidi (ALSA) client.
}

// injectorInitializers maps OS names to corresponding key injector initializers.
var injectorInitializers = map[string]func(*contracts.ClientOptions) (contracts.KeyInjector, error){
	"darwin":  kbddarwin.NewKeyInjector,  // CoreGraphics events.
	"windows": kbdwindows.NewKeyInjector, // SendInput.
	"linux":   kbdlinux.NewKeyInjector,   // uinput virtual keyboard.
}

// NewClient initializes a MIDI client based on the current operating system.
// It supports macOS (Darwin), Windows and Linux, returning ErrUnsupportedOS otherwise.
//
// opts *contracts.ClientOptions: Configuration options for the MIDI client.
//
// Returns:
//   - contracts.ClientMIDI: An instance of the MIDI client.
//   - error: An error if the operating system is unsupported or if initialization fails.
func NewClient(opts *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	if initializer, exists := clientInitializers[runtime.GOOS]; exists {
		return initializer(opts)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, runtime.GOOS)
}

// NewInjector initializes a key injector based on the current operating system.
//
// opts *contracts.ClientOptions: Configuration options, KeyboardConfig in particular.
//
// Returns:
//   - contracts.KeyInjector: An injector sending OS-level key events.
//   - error: An error if the operating system is unsupported or if initialization fails.
func NewInjector(opts *contracts.ClientOptions) (contracts.KeyInjector, error) {
	if initializer, exists := injectorInitializers[runtime.GOOS]; exists {
		return initializer(opts)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, runtime.GOOS)
}
