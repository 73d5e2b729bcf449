//go:build !linux
// +build !linux

package kbdlinux

import (
	"errors"

	"github.com/leandrodaf/midiperform/sdk/contracts"
)

// NewKeyInjector fails on systems without uinput.
func NewKeyInjector(options *contracts.ClientOptions) (contracts.KeyInjector, error) {
	return nil, errors.New("uinput is not available on this platform")
}
