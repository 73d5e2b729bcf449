//go:build linux
// +build linux

// Package kbdlinux injects key events through a uinput virtual keyboard.
package kbdlinux

import (
	"errors"
	"fmt"
	"sync"
	"unicode"

	"github.com/holoplot/go-evdev"
	"github.com/leandrodaf/midiperform/sdk/contracts"
	"go.uber.org/multierr"
)

// ErrUnmappedKey is returned for keys with no evdev code on a US layout.
var ErrUnmappedKey = errors.New("key has no evdev code")

const busUSB = 0x03

var namedCodes = map[contracts.KeyKind]evdev.EvCode{
	contracts.KeyReturn:     evdev.KEY_ENTER,
	contracts.KeyTab:        evdev.KEY_TAB,
	contracts.KeySpace:      evdev.KEY_SPACE,
	contracts.KeyBackspace:  evdev.KEY_BACKSPACE,
	contracts.KeyEscape:     evdev.KEY_ESC,
	contracts.KeyMeta:       evdev.KEY_LEFTMETA,
	contracts.KeyShift:      evdev.KEY_LEFTSHIFT,
	contracts.KeyCapsLock:   evdev.KEY_CAPSLOCK,
	contracts.KeyAlt:        evdev.KEY_LEFTALT,
	contracts.KeyOption:     evdev.KEY_LEFTALT,
	contracts.KeyControl:    evdev.KEY_LEFTCTRL,
	contracts.KeyHome:       evdev.KEY_HOME,
	contracts.KeyPageUp:     evdev.KEY_PAGEUP,
	contracts.KeyPageDown:   evdev.KEY_PAGEDOWN,
	contracts.KeyLeftArrow:  evdev.KEY_LEFT,
	contracts.KeyRightArrow: evdev.KEY_RIGHT,
	contracts.KeyDownArrow:  evdev.KEY_DOWN,
	contracts.KeyUpArrow:    evdev.KEY_UP,
	contracts.KeyF1:         evdev.KEY_F1,
	contracts.KeyF2:         evdev.KEY_F2,
	contracts.KeyF3:         evdev.KEY_F3,
	contracts.KeyF4:         evdev.KEY_F4,
	contracts.KeyF5:         evdev.KEY_F5,
	contracts.KeyF6:         evdev.KEY_F6,
	contracts.KeyF7:         evdev.KEY_F7,
	contracts.KeyF8:         evdev.KEY_F8,
	contracts.KeyF9:         evdev.KEY_F9,
	contracts.KeyF10:        evdev.KEY_F10,
	contracts.KeyF11:        evdev.KEY_F11,
	contracts.KeyF12:        evdev.KEY_F12,
}

// layoutCodes covers the unshifted characters of a US keyboard.
var layoutCodes = map[rune]evdev.EvCode{
	'a': evdev.KEY_A, 'b': evdev.KEY_B, 'c': evdev.KEY_C, 'd': evdev.KEY_D,
	'e': evdev.KEY_E, 'f': evdev.KEY_F, 'g': evdev.KEY_G, 'h': evdev.KEY_H,
	'i': evdev.KEY_I, 'j': evdev.KEY_J, 'k': evdev.KEY_K, 'l': evdev.KEY_L,
	'm': evdev.KEY_M, 'n': evdev.KEY_N, 'o': evdev.KEY_O, 'p': evdev.KEY_P,
	'q': evdev.KEY_Q, 'r': evdev.KEY_R, 's': evdev.KEY_S, 't': evdev.KEY_T,
	'u': evdev.KEY_U, 'v': evdev.KEY_V, 'w': evdev.KEY_W, 'x': evdev.KEY_X,
	'y': evdev.KEY_Y, 'z': evdev.KEY_Z,
	'1': evdev.KEY_1, '2': evdev.KEY_2, '3': evdev.KEY_3, '4': evdev.KEY_4,
	'5': evdev.KEY_5, '6': evdev.KEY_6, '7': evdev.KEY_7, '8': evdev.KEY_8,
	'9': evdev.KEY_9, '0': evdev.KEY_0,
	' ': evdev.KEY_SPACE, '-': evdev.KEY_MINUS, '=': evdev.KEY_EQUAL,
	'[': evdev.KEY_LEFTBRACE, ']': evdev.KEY_RIGHTBRACE, ';': evdev.KEY_SEMICOLON,
	'\'': evdev.KEY_APOSTROPHE, '`': evdev.KEY_GRAVE, '\\': evdev.KEY_BACKSLASH,
	',': evdev.KEY_COMMA, '.': evdev.KEY_DOT, '/': evdev.KEY_SLASH,
}

// shiftedSymbols covers the shifted punctuation of a US keyboard.
var shiftedSymbols = map[rune]evdev.EvCode{
	'!': evdev.KEY_1, '@': evdev.KEY_2, '#': evdev.KEY_3, '$': evdev.KEY_4,
	'%': evdev.KEY_5, '^': evdev.KEY_6, '&': evdev.KEY_7, '*': evdev.KEY_8,
	'(': evdev.KEY_9, ')': evdev.KEY_0,
	'_': evdev.KEY_MINUS, '+': evdev.KEY_EQUAL, '{': evdev.KEY_LEFTBRACE, '}': evdev.KEY_RIGHTBRACE,
	':': evdev.KEY_SEMICOLON, '"': evdev.KEY_APOSTROPHE, '~': evdev.KEY_GRAVE, '|': evdev.KEY_BACKSLASH,
	'<': evdev.KEY_COMMA, '>': evdev.KEY_DOT, '?': evdev.KEY_SLASH,
}

// eventWriter is the part of *evdev.InputDevice the keyboard uses.
type eventWriter interface {
	WriteOne(event *evdev.InputEvent) error
	Close() error
}

// Keyboard is a uinput virtual keyboard.
type Keyboard struct {
	mu        sync.Mutex
	dev       eventWriter
	logger    contracts.Logger
	shiftHeld bool // a Shift key pressed through KeyDown and not yet released
}

// NewKeyInjector creates the virtual keyboard. It needs write access to /dev/uinput.
func NewKeyInjector(options *contracts.ClientOptions) (contracts.KeyInjector, error) {
	codes := make([]evdev.EvCode, 0, len(namedCodes)+len(layoutCodes))
	for _, c := range namedCodes {
		codes = append(codes, c)
	}
	for _, c := range layoutCodes {
		codes = append(codes, c)
	}
	codes = append(codes, evdev.KEY_RIGHTSHIFT)

	dev, err := evdev.CreateDevice(options.KeyboardConfig.DeviceName,
		evdev.InputID{BusType: busUSB, Vendor: 0x1209, Product: 0x6d70, Version: 1},
		map[evdev.EvType][]evdev.EvCode{
			evdev.EV_KEY: codes,
		})
	if err != nil {
		return nil, fmt.Errorf("create uinput keyboard: %w", err)
	}
	options.Logger.Info("Virtual keyboard created",
		options.Logger.Field().String("name", options.KeyboardConfig.DeviceName))
	return newKeyboard(dev, options.Logger), nil
}

func newKeyboard(dev eventWriter, logger contracts.Logger) *Keyboard {
	return &Keyboard{dev: dev, logger: logger}
}

// KeyDown presses key.
func (k *Keyboard) KeyDown(key contracts.Key) error {
	return k.emit(key, 1)
}

// KeyUp releases key.
func (k *Keyboard) KeyUp(key contracts.Key) error {
	return k.emit(key, 0)
}

func (k *Keyboard) emit(key contracts.Key, value int32) error {
	code, shifted, err := resolve(key)
	if err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if code == evdev.KEY_LEFTSHIFT || code == evdev.KEY_RIGHTSHIFT {
		if err := k.write(code, value); err != nil {
			return err
		}
		k.shiftHeld = value == 1
		return nil
	}

	// A shifted character brings its own Shift only when none is held, and
	// never releases a Shift it did not press.
	wrap := shifted && value == 1 && !k.shiftHeld
	if wrap {
		if err := k.write(evdev.KEY_LEFTSHIFT, 1); err != nil {
			return err
		}
	}
	if err := k.write(code, value); err != nil {
		return err
	}
	if wrap {
		return k.write(evdev.KEY_LEFTSHIFT, 0)
	}
	return nil
}

func (k *Keyboard) write(code evdev.EvCode, value int32) error {
	err := k.dev.WriteOne(&evdev.InputEvent{Type: evdev.EV_KEY, Code: code, Value: value})
	return multierr.Append(err, k.dev.WriteOne(&evdev.InputEvent{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT}))
}

func resolve(key contracts.Key) (evdev.EvCode, bool, error) {
	switch key.Kind {
	case contracts.KeyLayout:
		if code, ok := layoutCodes[key.Char]; ok {
			return code, false, nil
		}
		if code, ok := shiftedSymbols[key.Char]; ok {
			return code, true, nil
		}
		if lower := unicode.ToLower(key.Char); lower != key.Char {
			if code, ok := layoutCodes[lower]; ok {
				return code, true, nil
			}
		}
		return 0, false, fmt.Errorf("%w: %q", ErrUnmappedKey, key.Char)
	case contracts.KeyRaw:
		return evdev.EvCode(key.Code), false, nil
	default:
		if code, ok := namedCodes[key.Kind]; ok {
			return code, false, nil
		}
		return 0, false, fmt.Errorf("%w: %s", ErrUnmappedKey, key)
	}
}

// Close destroys the virtual keyboard.
func (k *Keyboard) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.logger.Info("Closing virtual keyboard")
	return k.dev.Close()
}
