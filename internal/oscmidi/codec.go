// Package oscmidi converts instrument-control events to and from the /midi
// messages exchanged with a TouchOSC surface.
//
// The surface sends its four byte MIDI argument as [port, status, data1,
// data2] but expects the bytes it receives as [port, data2, data1, status].
// Decode and Encode each implement one direction, so Decode(Encode(e)) does
// not return e.
package oscmidi

import (
	"fmt"

	"github.com/chabad360/touchosc2midi/internal/midi"
	"github.com/chabad360/touchosc2midi/osc"
)

const (
	// Address is the only OSC address the surface uses for MIDI.
	Address = "/midi"
	// Signature is the argument signature of a MIDI message.
	Signature = string(osc.TypeMIDI)

	// PayloadSize is the length of the MIDI argument.
	PayloadSize = 4
)

// MalformedPayloadError reports an inbound message that cannot be turned into
// an event.
type MalformedPayloadError struct {
	Payload []byte
	Reason  string
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("oscmidi: malformed payload [% x]: %s", e.Payload, e.Reason)
}

// UnsupportedEventError reports an event that has no four byte form.
type UnsupportedEventError struct {
	Event  midi.Event
	Reason string
}

func (e *UnsupportedEventError) Error() string {
	return fmt.Sprintf("oscmidi: unsupported event %v: %s", e.Event, e.Reason)
}

// Decode interprets payload in receive order [port, status, data1, data2].
// The port byte is discarded.
func Decode(payload []byte) (midi.Event, error) {
	if len(payload) != PayloadSize {
		return midi.Event{}, &MalformedPayloadError{Payload: payload, Reason: fmt.Sprintf("length %d, want %d", len(payload), PayloadSize)}
	}

	ev := midi.Event{Status: payload[1], Data1: payload[2], Data2: payload[3]}
	if reason := check(ev); reason != "" {
		return midi.Event{}, &MalformedPayloadError{Payload: payload, Reason: reason}
	}
	return ev, nil
}

// Encode returns ev in send order [0, data2, data1, status].
func Encode(ev midi.Event) ([PayloadSize]byte, error) {
	if reason := check(ev); reason != "" {
		return [PayloadSize]byte{}, &UnsupportedEventError{Event: ev, Reason: reason}
	}

	// Bytes past the event's wire length are sent as zero.
	b := ev.Bytes()
	var d1, d2 byte
	if len(b) > 1 {
		d1 = b[1]
	}
	if len(b) > 2 {
		d2 = b[2]
	}
	return [PayloadSize]byte{0, d2, d1, ev.Status}, nil
}

func check(ev midi.Event) string {
	switch {
	case ev.Status < midi.StatusNoteOff:
		return fmt.Sprintf("%#x is not a status byte", ev.Status)
	case ev.Status == midi.StatusSysEx:
		return "system exclusive does not fit in four bytes"
	case ev.Data1 > 0x7F || ev.Data2 > 0x7F:
		return "data byte out of range"
	}
	return ""
}

// NewMessage wraps the encoded event in a /midi message.
func NewMessage(ev midi.Event) (*osc.Message, error) {
	payload, err := Encode(ev)
	if err != nil {
		return nil, err
	}
	return osc.NewMessage(Address, osc.MIDI(payload)), nil
}

// EventFromMessage checks that msg is a /midi message with a single MIDI
// argument and decodes it.
func EventFromMessage(msg *osc.Message) (midi.Event, error) {
	if msg.Address != Address {
		return midi.Event{}, &MalformedPayloadError{Reason: fmt.Sprintf("address %q, want %q", msg.Address, Address)}
	}
	if sig := msg.Signature(); sig != Signature {
		return midi.Event{}, &MalformedPayloadError{Reason: fmt.Sprintf("type tags %q, want %q", sig, Signature)}
	}

	payload := msg.Arguments[0].(osc.MIDI)
	return Decode(payload[:])
}
