package contracts

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// KeyKind identifies the variant of a logical Key.
type KeyKind uint8

const (
	KeyReturn KeyKind = iota + 1
	KeyTab
	KeySpace
	KeyBackspace
	KeyEscape
	KeyMeta // super key on Linux, command key on macOS, windows key on Windows
	KeyShift
	KeyCapsLock
	KeyAlt    // option key on macOS
	KeyOption // alt key on Linux and Windows
	KeyControl
	KeyHome
	KeyPageUp
	KeyPageDown
	KeyLeftArrow
	KeyRightArrow
	KeyDownArrow
	KeyUpArrow
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	// KeyLayout is a keyboard-layout dependent printable character.
	KeyLayout
	// KeyRaw is a platform keycode passed through untranslated.
	KeyRaw
)

// Key is a logical keyboard key. It is comparable and usable as a map key.
// Key is never the injection library's own key type; KeyInjector
// implementations translate it at the OS boundary.
type Key struct {
	Kind KeyKind
	Char rune   // set only for KeyLayout
	Code uint16 // set only for KeyRaw
}

// Named keys.
var (
	Return     = Key{Kind: KeyReturn}
	Tab        = Key{Kind: KeyTab}
	Space      = Key{Kind: KeySpace}
	Backspace  = Key{Kind: KeyBackspace}
	Escape     = Key{Kind: KeyEscape}
	Meta       = Key{Kind: KeyMeta}
	Shift      = Key{Kind: KeyShift}
	CapsLock   = Key{Kind: KeyCapsLock}
	Alt        = Key{Kind: KeyAlt}
	OptionKey  = Key{Kind: KeyOption}
	Control    = Key{Kind: KeyControl}
	Home       = Key{Kind: KeyHome}
	PageUp     = Key{Kind: KeyPageUp}
	PageDown   = Key{Kind: KeyPageDown}
	LeftArrow  = Key{Kind: KeyLeftArrow}
	RightArrow = Key{Kind: KeyRightArrow}
	DownArrow  = Key{Kind: KeyDownArrow}
	UpArrow    = Key{Kind: KeyUpArrow}
)

// Function returns the function key Fn for n in [1,12].
func Function(n int) (Key, error) {
	if n < 1 || n > 12 {
		return Key{}, fmt.Errorf("%w: F%d", ErrUnknownKey, n)
	}
	return Key{Kind: KeyF1 + KeyKind(n-1)}, nil
}

// Layout returns the layout-dependent key producing c.
func Layout(c rune) Key { return Key{Kind: KeyLayout, Char: c} }

// Raw returns a key for the platform keycode code.
func Raw(code uint16) Key { return Key{Kind: KeyRaw, Code: code} }

// ErrUnknownKey is returned when a key name cannot be resolved.
var ErrUnknownKey = errors.New("unknown key")

var keyNames = map[KeyKind]string{
	KeyReturn:     "return",
	KeyTab:        "tab",
	KeySpace:      "space",
	KeyBackspace:  "backspace",
	KeyEscape:     "escape",
	KeyMeta:       "meta",
	KeyShift:      "shift",
	KeyCapsLock:   "capslock",
	KeyAlt:        "alt",
	KeyOption:     "option",
	KeyControl:    "control",
	KeyHome:       "home",
	KeyPageUp:     "pageup",
	KeyPageDown:   "pagedown",
	KeyLeftArrow:  "left",
	KeyRightArrow: "right",
	KeyDownArrow:  "down",
	KeyUpArrow:    "up",
}

var keyAliases = map[string]Key{
	"enter": Return,
	"esc":   Escape,
	"ctrl":  Control,
	"super": Meta,
	"cmd":   Meta,
	"pgup":  PageUp,
	"pgdn":  PageDown,

	"leftarrow":  LeftArrow,
	"rightarrow": RightArrow,
	"downarrow":  DownArrow,
	"uparrow":    UpArrow,
}

// String returns the canonical name of k, the form accepted by ParseKey.
func (k Key) String() string {
	switch {
	case k.Kind == KeyLayout:
		return string(k.Char)
	case k.Kind == KeyRaw:
		return fmt.Sprintf("raw:0x%x", k.Code)
	case k.Kind >= KeyF1 && k.Kind <= KeyF12:
		return fmt.Sprintf("f%d", int(k.Kind-KeyF1)+1)
	}
	if name, ok := keyNames[k.Kind]; ok {
		return name
	}
	return fmt.Sprintf("Key(%d)", k.Kind)
}

// ParseKey resolves a textual key description.
//
// A single character yields a Layout key, "raw:<n>" yields a Raw key (decimal or 0x-prefixed),
// anything else is looked up case-insensitively among the named keys and f1..f12.
func ParseKey(s string) (Key, error) {
	if utf8.RuneCountInString(s) == 1 {
		r, _ := utf8.DecodeRuneInString(s)
		return Layout(r), nil
	}

	name := cases.Fold().String(strings.TrimSpace(s))
	if code, ok := strings.CutPrefix(name, "raw:"); ok {
		v, err := strconv.ParseUint(code, 0, 16)
		if err != nil {
			return Key{}, fmt.Errorf("%w: %q: %v", ErrUnknownKey, s, err)
		}
		return Raw(uint16(v)), nil
	}
	if len(name) >= 2 && name[0] == 'f' {
		if n, err := strconv.Atoi(name[1:]); err == nil {
			return Function(n)
		}
	}
	for kind, known := range keyNames {
		if known == name {
			return Key{Kind: kind}, nil
		}
	}
	if k, ok := keyAliases[name]; ok {
		return k, nil
	}
	return Key{}, fmt.Errorf("%w: %q", ErrUnknownKey, s)
}

// KeyInjector performs OS-level synthetic keyboard input.
type KeyInjector interface {
	KeyDown(key Key) error // Sends a key press for key.
	KeyUp(key Key) error   // Sends a key release for key.
	Close() error          // Releases the underlying OS resources.
}
