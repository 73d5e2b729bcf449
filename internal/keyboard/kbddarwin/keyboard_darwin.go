//go:build darwin
// +build darwin

package kbddarwin

/*
#cgo LDFLAGS: -framework ApplicationServices -framework CoreFoundation
#include <ApplicationServices/ApplicationServices.h>

static int postKey(CGKeyCode code, bool down) {
	CGEventRef ev = CGEventCreateKeyboardEvent(NULL, code, down);
	if (ev == NULL) {
		return -1;
	}
	CGEventPost(kCGHIDEventTap, ev);
	CFRelease(ev);
	return 0;
}

static int postUnicode(UniChar ch, bool down) {
	CGEventRef ev = CGEventCreateKeyboardEvent(NULL, 0, down);
	if (ev == NULL) {
		return -1;
	}
	CGEventKeyboardSetUnicodeString(ev, 1, &ch);
	CGEventPost(kCGHIDEventTap, ev);
	CFRelease(ev);
	return 0;
}
*/
import "C"

import (
	"errors"
	"fmt"

	"github.com/leandrodaf/midiperform/sdk/contracts"
)

// ErrPostFailed is returned when CoreGraphics cannot create the event.
var ErrPostFailed = errors.New("CGEventPost failed")

// macOS virtual key codes (HIToolbox/Events.h).
var namedCodes = map[contracts.KeyKind]C.CGKeyCode{
	contracts.KeyReturn:     0x24,
	contracts.KeyTab:        0x30,
	contracts.KeySpace:      0x31,
	contracts.KeyBackspace:  0x33,
	contracts.KeyEscape:     0x35,
	contracts.KeyMeta:       0x37,
	contracts.KeyShift:      0x38,
	contracts.KeyCapsLock:   0x39,
	contracts.KeyAlt:        0x3A,
	contracts.KeyOption:     0x3A,
	contracts.KeyControl:    0x3B,
	contracts.KeyHome:       0x73,
	contracts.KeyPageUp:     0x74,
	contracts.KeyPageDown:   0x79,
	contracts.KeyLeftArrow:  0x7B,
	contracts.KeyRightArrow: 0x7C,
	contracts.KeyDownArrow:  0x7D,
	contracts.KeyUpArrow:    0x7E,
	contracts.KeyF1:         0x7A,
	contracts.KeyF2:         0x78,
	contracts.KeyF3:         0x63,
	contracts.KeyF4:         0x76,
	contracts.KeyF5:         0x60,
	contracts.KeyF6:         0x61,
	contracts.KeyF7:         0x62,
	contracts.KeyF8:         0x64,
	contracts.KeyF9:         0x65,
	contracts.KeyF10:        0x6D,
	contracts.KeyF11:        0x67,
	contracts.KeyF12:        0x6F,
}

// Keyboard posts CoreGraphics keyboard events. The process needs the
// Accessibility permission for the events to reach other applications.
type Keyboard struct {
	logger contracts.Logger
}

// NewKeyInjector returns a CoreGraphics-backed injector.
func NewKeyInjector(options *contracts.ClientOptions) (contracts.KeyInjector, error) {
	options.Logger.Info("Key injector created for macOS")
	return &Keyboard{logger: options.Logger}, nil
}

// KeyDown presses key.
func (k *Keyboard) KeyDown(key contracts.Key) error {
	return post(key, true)
}

// KeyUp releases key.
func (k *Keyboard) KeyUp(key contracts.Key) error {
	return post(key, false)
}

func post(key contracts.Key, down bool) error {
	var rc C.int
	switch key.Kind {
	case contracts.KeyLayout:
		if key.Char > 0xFFFF {
			return fmt.Errorf("%w: %q outside the BMP", ErrPostFailed, key.Char)
		}
		rc = C.postUnicode(C.UniChar(key.Char), C.bool(down))
	case contracts.KeyRaw:
		rc = C.postKey(C.CGKeyCode(key.Code), C.bool(down))
	default:
		code, ok := namedCodes[key.Kind]
		if !ok {
			return fmt.Errorf("%w: unmapped key %s", ErrPostFailed, key)
		}
		rc = C.postKey(code, C.bool(down))
	}
	if rc != 0 {
		return fmt.Errorf("%w: %s", ErrPostFailed, key)
	}
	return nil
}

// Close is a no-op; events are posted without a persistent handle.
func (k *Keyboard) Close() error {
	return nil
}
