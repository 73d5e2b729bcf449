//go:build windows
// +build windows

package kbdwindows

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/leandrodaf/midiperform/sdk/contracts"
	"golang.org/x/sys/windows"
)

// Constants for SendInput
const (
	INPUT_KEYBOARD        = 1
	KEYEVENTF_EXTENDEDKEY = 0x0001
	KEYEVENTF_KEYUP       = 0x0002
)

// Virtual-key codes
const (
	VK_BACK    = 0x08
	VK_TAB     = 0x09
	VK_RETURN  = 0x0D
	VK_SHIFT   = 0x10
	VK_CONTROL = 0x11
	VK_MENU    = 0x12
	VK_CAPITAL = 0x14
	VK_ESCAPE  = 0x1B
	VK_SPACE   = 0x20
	VK_PRIOR   = 0x21
	VK_NEXT    = 0x22
	VK_HOME    = 0x24
	VK_LEFT    = 0x25
	VK_UP      = 0x26
	VK_RIGHT   = 0x27
	VK_DOWN    = 0x28
	VK_LWIN    = 0x5B
	VK_F1      = 0x70
)

// ErrUnmappedKey is returned for characters the active layout cannot type.
var ErrUnmappedKey = errors.New("key has no virtual-key code")

var (
	user32         = windows.NewLazySystemDLL("user32.dll")
	procSendInput  = user32.NewProc("SendInput")
	procVkKeyScanW = user32.NewProc("VkKeyScanW")
)

type keybdInput struct {
	wVk         uint16
	wScan       uint16
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

// input mirrors INPUT with the keyboard member of the union; the padding
// brings it up to the size of the largest member (MOUSEINPUT).
type input struct {
	inputType uint32
	ki        keybdInput
	padding   uint64
}

var namedVK = map[contracts.KeyKind]uint16{
	contracts.KeyReturn:     VK_RETURN,
	contracts.KeyTab:        VK_TAB,
	contracts.KeySpace:      VK_SPACE,
	contracts.KeyBackspace:  VK_BACK,
	contracts.KeyEscape:     VK_ESCAPE,
	contracts.KeyMeta:       VK_LWIN,
	contracts.KeyShift:      VK_SHIFT,
	contracts.KeyCapsLock:   VK_CAPITAL,
	contracts.KeyAlt:        VK_MENU,
	contracts.KeyOption:     VK_MENU,
	contracts.KeyControl:    VK_CONTROL,
	contracts.KeyHome:       VK_HOME,
	contracts.KeyPageUp:     VK_PRIOR,
	contracts.KeyPageDown:   VK_NEXT,
	contracts.KeyLeftArrow:  VK_LEFT,
	contracts.KeyRightArrow: VK_RIGHT,
	contracts.KeyDownArrow:  VK_DOWN,
	contracts.KeyUpArrow:    VK_UP,
}

// Keyboard sends input through SendInput.
type Keyboard struct {
	mu        sync.Mutex
	logger    contracts.Logger
	scan      func(c rune) uintptr               // VkKeyScanW
	sendInput func(vk uint16, flags uint32) error // one keyboard INPUT
	shiftHeld bool                                // Shift pressed through KeyDown and not yet released
}

// NewKeyInjector returns a SendInput-backed injector.
func NewKeyInjector(options *contracts.ClientOptions) (contracts.KeyInjector, error) {
	if err := procSendInput.Find(); err != nil {
		return nil, fmt.Errorf("SendInput unavailable: %w", err)
	}
	options.Logger.Info("Key injector created for Windows")
	return &Keyboard{logger: options.Logger, scan: vkKeyScan, sendInput: sendInput}, nil
}

// KeyDown presses key.
func (k *Keyboard) KeyDown(key contracts.Key) error {
	return k.send(key, 0)
}

// KeyUp releases key.
func (k *Keyboard) KeyUp(key contracts.Key) error {
	return k.send(key, KEYEVENTF_KEYUP)
}

func (k *Keyboard) send(key contracts.Key, flags uint32) error {
	vk, shifted, err := k.virtualKey(key)
	if err != nil {
		return err
	}
	switch key.Kind {
	case contracts.KeyHome, contracts.KeyPageUp, contracts.KeyPageDown,
		contracts.KeyLeftArrow, contracts.KeyRightArrow, contracts.KeyDownArrow, contracts.KeyUpArrow:
		flags |= KEYEVENTF_EXTENDEDKEY
	}
	down := flags&KEYEVENTF_KEYUP == 0

	k.mu.Lock()
	defer k.mu.Unlock()

	if vk == VK_SHIFT {
		if err := k.sendInput(vk, flags); err != nil {
			return err
		}
		k.shiftHeld = down
		return nil
	}

	// A shifted character brings its own Shift only when none is held, and
	// never releases a Shift it did not press.
	wrap := shifted && down && !k.shiftHeld
	if wrap {
		if err := k.sendInput(VK_SHIFT, 0); err != nil {
			return err
		}
	}
	if err := k.sendInput(vk, flags); err != nil {
		return err
	}
	if wrap {
		return k.sendInput(VK_SHIFT, KEYEVENTF_KEYUP)
	}
	return nil
}

func sendInput(vk uint16, flags uint32) error {
	in := input{inputType: INPUT_KEYBOARD, ki: keybdInput{wVk: vk, dwFlags: flags}}
	r1, _, callErr := procSendInput.Call(1, uintptr(unsafe.Pointer(&in)), unsafe.Sizeof(in))
	if r1 != 1 {
		return fmt.Errorf("SendInput: %v", callErr)
	}
	return nil
}

func vkKeyScan(c rune) uintptr {
	r1, _, _ := procVkKeyScanW.Call(uintptr(c))
	return r1
}

// virtualKey returns the virtual-key code for key and whether the active
// layout needs Shift to produce it.
func (k *Keyboard) virtualKey(key contracts.Key) (uint16, bool, error) {
	switch {
	case key.Kind == contracts.KeyRaw:
		return key.Code, false, nil
	case key.Kind == contracts.KeyLayout:
		r1 := k.scan(key.Char)
		// Low byte: virtual-key code. High byte: shift state, bit 0 is Shift.
		// -1 in both bytes means no mapping.
		if int16(r1) == -1 {
			return 0, false, fmt.Errorf("%w: %q", ErrUnmappedKey, key.Char)
		}
		return uint16(r1 & 0xFF), r1&0x100 != 0, nil
	case key.Kind >= contracts.KeyF1 && key.Kind <= contracts.KeyF12:
		return VK_F1 + uint16(key.Kind-contracts.KeyF1), false, nil
	}
	if vk, ok := namedVK[key.Kind]; ok {
		return vk, false, nil
	}
	return 0, false, fmt.Errorf("%w: %s", ErrUnmappedKey, key)
}

// Close is a no-op; SendInput holds no resources.
func (k *Keyboard) Close() error {
	return nil
}
