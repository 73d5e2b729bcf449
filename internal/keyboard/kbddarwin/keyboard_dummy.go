//go:build !darwin
// +build !darwin

package kbddarwin

import (
	"errors"

	"github.com/leandrodaf/midiperform/sdk/contracts"
)

// NewKeyInjector fails on systems without CoreGraphics.
func NewKeyInjector(options *contracts.ClientOptions) (contracts.KeyInjector, error) {
	return nil, errors.New("CoreGraphics is not available on this platform")
}
