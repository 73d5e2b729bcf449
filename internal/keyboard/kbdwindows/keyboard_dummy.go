//go:build !windows
// +build !windows

package kbdwindows

import (
	"errors"

	"github.com/leandrodaf/midiperform/sdk/contracts"
)

// NewKeyInjector fails on systems without SendInput.
func NewKeyInjector(options *contracts.ClientOptions) (contracts.KeyInjector, error) {
	return nil, errors.New("SendInput is not available on this platform")
}
