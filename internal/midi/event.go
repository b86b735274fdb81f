// Package midi holds the instrument-control event model shared by the bridge
// components.
package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Type classifies an Event by its status byte.
type Type uint8

const (
	Other Type = iota
	NoteOff
	NoteOn
	ControlChange
	Clock
)

func (t Type) String() string {
	switch t {
	case NoteOff:
		return "note_off"
	case NoteOn:
		return "note_on"
	case ControlChange:
		return "control_change"
	case Clock:
		return "clock"
	default:
		return "other"
	}
}

// Status bytes and masks.
const (
	StatusNoteOff       byte = 0x80
	StatusNoteOn        byte = 0x90
	StatusControlChange byte = 0xB0
	StatusSysEx         byte = 0xF0
	StatusClock         byte = 0xF8

	statusBit   byte = 0x80
	channelMask byte = 0x0F
)

// Event is a single instrument-control message: a status byte plus up to two
// data bytes. Unused data bytes are zero. Events are values and never change
// once received.
type Event struct {
	Status byte
	Data1  byte
	Data2  byte
}

// NewEvent builds a channel-voice event of type t. Clock ignores channel and
// data bytes. Other is not constructible this way.
func NewEvent(t Type, channel uint8, d1, d2 byte) (Event, error) {
	if channel > 15 {
		return Event{}, fmt.Errorf("midi: channel %d out of range", channel)
	}
	if d1 > 0x7F || d2 > 0x7F {
		return Event{}, fmt.Errorf("midi: data bytes %#x %#x out of range", d1, d2)
	}

	switch t {
	case NoteOff:
		return Event{Status: StatusNoteOff | channel, Data1: d1, Data2: d2}, nil
	case NoteOn:
		return Event{Status: StatusNoteOn | channel, Data1: d1, Data2: d2}, nil
	case ControlChange:
		return Event{Status: StatusControlChange | channel, Data1: d1, Data2: d2}, nil
	case Clock:
		return Event{Status: StatusClock}, nil
	default:
		return Event{}, fmt.Errorf("midi: cannot construct event of type %s", t)
	}
}

// FromBytes builds an Event from a raw wire message as delivered by a driver.
// Bytes beyond the third are ignored.
func FromBytes(b []byte) (Event, error) {
	if len(b) == 0 {
		return Event{}, fmt.Errorf("midi: empty message")
	}
	if b[0]&statusBit == 0 {
		return Event{}, fmt.Errorf("midi: %#x is not a status byte", b[0])
	}

	ev := Event{Status: b[0]}
	if len(b) > 1 {
		ev.Data1 = b[1]
	}
	if len(b) > 2 {
		ev.Data2 = b[2]
	}
	return ev, nil
}

// Type returns the event's classification. A note on with velocity zero is
// still NoteOn.
func (e Event) Type() Type {
	switch gomidi.Message(e.Bytes()).Type() {
	case gomidi.TimingClockMsg:
		return Clock
	case gomidi.ControlChangeMsg:
		return ControlChange
	case gomidi.NoteOnMsg:
		return NoteOn
	case gomidi.NoteOffMsg:
		// gomidi reads a note on with velocity zero as a note off.
		if e.Status&^channelMask == StatusNoteOn {
			return NoteOn
		}
		return NoteOff
	default:
		return Other
	}
}

// Channel returns the zero-based channel of a channel-voice event, or -1 for
// system messages.
func (e Event) Channel() int {
	if e.Status < statusBit || e.Status >= StatusSysEx {
		return -1
	}
	return int(e.Status & channelMask)
}

// Len is the length of the event on the instrument wire, status included.
func (e Event) Len() int {
	switch {
	case e.Status < statusBit:
		return 0
	case e.Status >= StatusClock:
		// System realtime.
		return 1
	}

	switch e.Status {
	case 0xF1, 0xF3:
		return 2
	case 0xF2:
		return 3
	case StatusSysEx, 0xF4, 0xF5, 0xF6, 0xF7:
		return 1
	}

	switch e.Status &^ channelMask {
	case 0xC0, 0xD0:
		return 2
	default:
		return 3
	}
}

// Bytes returns the event in wire form.
func (e Event) Bytes() []byte {
	b := []byte{e.Status, e.Data1, e.Data2}
	return b[:e.Len()]
}

func (e Event) String() string {
	switch e.Len() {
	case 1:
		return fmt.Sprintf("%s [%02x]", e.Type(), e.Status)
	case 2:
		return fmt.Sprintf("%s [%02x %02x]", e.Type(), e.Status, e.Data1)
	default:
		return fmt.Sprintf("%s [%02x %02x %02x]", e.Type(), e.Status, e.Data1, e.Data2)
	}
}
