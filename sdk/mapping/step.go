// Package mapping holds the note mapping table and the key sequences attached to each mapping.
package mapping

import (
	"fmt"
	"math"
	"time"

	"github.com/leandrodaf/midiperform/sdk/contracts"
)

// StepKind tags the variant held by a Step.
type StepKind uint8

const (
	// Delay pauses the sequence for Step.Delay.
	Delay StepKind = iota + 1
	// KeyDown presses Step.Key.
	KeyDown
	// KeyUp releases Step.Key.
	KeyUp
	// SetModifier holds Step.Key as the only modifier, or releases all
	// modifiers when Step.HasKey is false.
	SetModifier
)

// Step is one primitive action in a sequence. Steps are values and are never mutated once built.
type Step struct {
	Kind   StepKind
	Key    contracts.Key
	HasKey bool // false only for a SetModifier step that releases all modifiers
	Delay  time.Duration
}

// maxDelayMs is the longest delay a time.Duration can hold.
const maxDelayMs = uint64(math.MaxInt64 / int64(time.Millisecond))

// DelayStep returns a Delay step of ms milliseconds, saturating at the
// largest representable time.Duration.
func DelayStep(ms uint64) Step {
	if ms > maxDelayMs {
		ms = maxDelayMs
	}
	return Step{Kind: Delay, Delay: time.Duration(ms) * time.Millisecond}
}

// DownStep returns a KeyDown step.
func DownStep(k contracts.Key) Step {
	return Step{Kind: KeyDown, Key: k, HasKey: true}
}

// UpStep returns a KeyUp step.
func UpStep(k contracts.Key) Step {
	return Step{Kind: KeyUp, Key: k, HasKey: true}
}

// ModifierStep returns a SetModifier step; a nil modifier releases all modifiers.
func ModifierStep(modifier *contracts.Key) Step {
	if modifier == nil {
		return Step{Kind: SetModifier}
	}
	return Step{Kind: SetModifier, Key: *modifier, HasKey: true}
}

func (s Step) String() string {
	switch s.Kind {
	case Delay:
		return fmt.Sprintf("delay(%dms)", s.Delay.Milliseconds())
	case KeyDown:
		return fmt.Sprintf("down(%s)", s.Key)
	case KeyUp:
		return fmt.Sprintf("up(%s)", s.Key)
	case SetModifier:
		if !s.HasKey {
			return "modifier(none)"
		}
		return fmt.Sprintf("modifier(%s)", s.Key)
	}
	return fmt.Sprintf("Step(%d)", s.Kind)
}

// DownSequence builds the "on" sequence for a single character: declare the
// modifier (or its absence) once, then press the character.
// The delay hint is accepted for symmetry with UpSequence and currently unused.
func DownSequence(char rune, modifier *contracts.Key, delay *uint64) []Step {
	return []Step{
		ModifierStep(modifier),
		DownStep(contracts.Layout(char)),
	}
}

// UpSequence builds the "off" sequence for a single character. The modifier
// stays held so that the next note sharing it does not press it again.
func UpSequence(char rune, modifier *contracts.Key, delay *uint64) []Step {
	return []Step{UpStep(contracts.Layout(char))}
}
