package notes

import (
	"errors"
	"fmt"
)

var (
	// ErrTooShort is returned when a buffer is shorter than its status byte requires.
	ErrTooShort = errors.New("MIDI message too short")
	// ErrUnimplemented is matched by every UnimplementedError.
	ErrUnimplemented = errors.New("unimplemented MIDI status")
)

// UnimplementedError reports a status byte outside the Note-On/Note-Off range.
type UnimplementedError struct {
	Status byte
}

func (e *UnimplementedError) Error() string {
	return fmt.Sprintf("%s: 0x%02X", ErrUnimplemented, e.Status)
}

// Is makes errors.Is(err, ErrUnimplemented) succeed.
func (e *UnimplementedError) Is(target error) bool {
	return target == ErrUnimplemented
}

// Kind is the type of a decoded note message.
type Kind uint8

const (
	NoteOff Kind = iota
	NoteOn
)

func (k Kind) String() string {
	switch k {
	case NoteOff:
		return "NoteOff"
	case NoteOn:
		return "NoteOn"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Channel is a MIDI channel in [0,15].
type Channel uint8

// Message is a decoded Note-On or Note-Off.
type Message struct {
	Kind     Kind
	Channel  Channel
	Note     Note
	Velocity uint8
}

func (m Message) String() string {
	return fmt.Sprintf("%s ch=%d note=%s vel=%d", m.Kind, m.Channel, m.Note, m.Velocity)
}

// Decode parses a raw MIDI message. Only channel-voice Note-On (0x9n) and
// Note-Off (0x8n) are understood; a Note-On with velocity 0 is returned as
// NoteOff. Other statuses fail with an *UnimplementedError.
func Decode(b []byte) (Message, error) {
	if len(b) == 0 {
		return Message{}, ErrTooShort
	}

	status := b[0]
	var kind Kind
	switch status & 0xF0 {
	case 0x80:
		kind = NoteOff
	case 0x90:
		kind = NoteOn
	default:
		return Message{}, &UnimplementedError{Status: status}
	}

	if len(b) < 3 {
		return Message{}, ErrTooShort
	}

	msg := Message{
		Kind:     kind,
		Channel:  Channel(status & 0x0F),
		Note:     NewNote(b[1]),
		Velocity: b[2] & 0x7F,
	}
	if msg.Kind == NoteOn && msg.Velocity == 0 {
		msg.Kind = NoteOff
	}
	return msg, nil
}
