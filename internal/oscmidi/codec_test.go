package oscmidi

import (
	"errors"
	"testing"

	"github.com/chabad360/touchosc2midi/internal/midi"
	"github.com/chabad360/touchosc2midi/osc"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    midi.Event
		wantErr bool
	}{
		{"note_on", []byte{0x00, 0x90, 0x3c, 0x64}, midi.Event{Status: 0x90, Data1: 60, Data2: 100}, false},
		{"control_change", []byte{0x00, 0xb1, 0x07, 0x7f}, midi.Event{Status: 0xb1, Data1: 7, Data2: 127}, false},
		{"port_ignored", []byte{0x03, 0x80, 0x3c, 0x00}, midi.Event{Status: 0x80, Data1: 60}, false},
		{"empty", []byte{}, midi.Event{}, true},
		{"three_bytes", []byte{0x90, 0x3c, 0x64}, midi.Event{}, true},
		{"five_bytes", []byte{0x00, 0x90, 0x3c, 0x64, 0x00}, midi.Event{}, true},
		{"no_status", []byte{0x00, 0x3c, 0x3c, 0x64}, midi.Event{}, true},
		{"data_out_of_range", []byte{0x00, 0x90, 0x80, 0x64}, midi.Event{}, true},
		{"sysex", []byte{0x00, 0xf0, 0x7e, 0x7f}, midi.Event{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.payload)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var mpe *MalformedPayloadError
				if !errors.As(err, &mpe) {
					t.Errorf("Decode() error = %T, want *MalformedPayloadError", err)
				}
			}
			if got != tt.want {
				t.Errorf("Decode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecode_NoteOn(t *testing.T) {
	ev, err := Decode([]byte{0x00, 0x90, 0x3C, 0x64})
	if err != nil {
		t.Fatal(err)
	}
	if ev.Type() != midi.NoteOn || ev.Data1 != 60 || ev.Data2 != 100 {
		t.Errorf("Decode() = %v, want note_on 60 100", ev)
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name    string
		ev      midi.Event
		want    [4]byte
		wantErr bool
	}{
		{"note_on", midi.Event{Status: 0x90, Data1: 60, Data2: 100}, [4]byte{0x00, 0x64, 0x3c, 0x90}, false},
		{"control_change", midi.Event{Status: 0xb0, Data1: 1, Data2: 2}, [4]byte{0x00, 0x02, 0x01, 0xb0}, false},
		{"program_change", midi.Event{Status: 0xc0, Data1: 5, Data2: 9}, [4]byte{0x00, 0x00, 0x05, 0xc0}, false},
		{"realtime", midi.Event{Status: 0xfa}, [4]byte{0x00, 0x00, 0x00, 0xfa}, false},
		{"no_status", midi.Event{Status: 0x10}, [4]byte{}, true},
		{"sysex", midi.Event{Status: 0xf0}, [4]byte{}, true},
		{"data_out_of_range", midi.Event{Status: 0x90, Data1: 0xff}, [4]byte{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.ev)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Encode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var uee *UnsupportedEventError
				if !errors.As(err, &uee) {
					t.Errorf("Encode() error = %T, want *UnsupportedEventError", err)
				}
			}
			if got != tt.want {
				t.Errorf("Encode() = % x, want % x", got, tt.want)
			}
		})
	}
}

// asReceived reorders a send-order payload into receive order.
func asReceived(p [4]byte) []byte {
	return []byte{p[0], p[3], p[2], p[1]}
}

func TestCodec_Asymmetry(t *testing.T) {
	for _, status := range []byte{0x80, 0x90, 0x9f, 0xa0, 0xb0, 0xbf, 0xe0} {
		for _, d := range [][2]byte{{0, 0}, {60, 100}, {127, 127}, {1, 0}} {
			ev := midi.Event{Status: status, Data1: d[0], Data2: d[1]}
			payload, err := Encode(ev)
			if err != nil {
				t.Fatalf("Encode(%v) error = %v", ev, err)
			}

			if got, err := Decode(payload[:]); err == nil && got == ev {
				t.Errorf("Decode(Encode(%v)) = %v; the send and receive orders must differ", ev, got)
			}

			got, err := Decode(asReceived(payload))
			if err != nil {
				t.Fatalf("Decode(asReceived(Encode(%v))) error = %v", ev, err)
			}
			if got != ev {
				t.Errorf("Decode(asReceived(Encode(%v))) = %v", ev, got)
			}
		}
	}
}

func TestEventFromMessage(t *testing.T) {
	tests := []struct {
		name    string
		msg     *osc.Message
		want    midi.Event
		wantErr bool
	}{
		{"midi", osc.NewMessage("/midi", osc.MIDI{0, 0xb0, 7, 64}), midi.Event{Status: 0xb0, Data1: 7, Data2: 64}, false},
		{"wrong_address", osc.NewMessage("/foo", osc.MIDI{0, 0xb0, 7, 64}), midi.Event{}, true},
		{"blob", osc.NewMessage("/midi", []byte{0, 0xb0, 7, 64}), midi.Event{}, true},
		{"two_arguments", osc.NewMessage("/midi", osc.MIDI{0, 0xb0, 7, 64}, osc.MIDI{}), midi.Event{}, true},
		{"no_arguments", osc.NewMessage("/midi"), midi.Event{}, true},
		{"float", osc.NewMessage("/midi", float32(0.5)), midi.Event{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EventFromMessage(tt.msg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("EventFromMessage() error = %v, wantErr %v", err, tt.wantErr)
			}
			var mpe *MalformedPayloadError
			if err != nil && !errors.As(err, &mpe) {
				t.Errorf("EventFromMessage() error = %T, want *MalformedPayloadError", err)
			}
			if got != tt.want {
				t.Errorf("EventFromMessage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewMessage(t *testing.T) {
	msg, err := NewMessage(midi.Event{Status: 0x90, Data1: 0x3c, Data2: 0x64})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := msg.String(), "/midi ,m [00 64 3c 90]"; got != want {
		t.Errorf("NewMessage() = %s, want %s", got, want)
	}

	if _, err := NewMessage(midi.Event{Status: 0xf0}); err == nil {
		t.Error("NewMessage() of a SysEx event should fail")
	}
}

func FuzzDecode(f *testing.F) {
	f.Add([]byte{0x00, 0x90, 0x3c, 0x64})
	f.Add([]byte{0x00, 0xf8, 0x00, 0x00})
	f.Add([]byte{0x01, 0x02})
	f.Fuzz(func(t *testing.T, payload []byte) {
		ev, err := Decode(payload)
		if err != nil {
			return
		}
		if len(payload) != 4 {
			t.Fatalf("Decode accepted a %d byte payload", len(payload))
		}
		if ev.Status != payload[1] || ev.Data1 != payload[2] || ev.Data2 != payload[3] {
			t.Fatalf("Decode(% x) = %v", payload, ev)
		}
	})
}
