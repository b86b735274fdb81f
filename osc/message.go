package osc

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Message represents a single OSC message. An OSC message consists of an OSC
// address pattern and zero or more arguments.
type Message struct {
	Address   string
	Arguments []interface{}
}

// Verify that Messages implements the Packet interface.
var _ Packet = (*Message)(nil)

// NewMessage returns a new Message. The address parameter is the OSC address.
func NewMessage(addr string, args ...interface{}) *Message {
	return &Message{Address: addr, Arguments: args}
}

// NewMessageFromData parses data as a single OSC message.
func NewMessageFromData(data []byte) (*Message, error) {
	msg := &Message{}
	if err := msg.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return msg, nil
}

// Append appends the given arguments to the arguments list.
func (m *Message) Append(args ...interface{}) error {
	for _, a := range args {
		if ToTypeTag(a) == TypeInvalid {
			return fmt.Errorf("Append: unsupported type: %T", a)
		}
	}
	m.Arguments = append(m.Arguments, args...)
	return nil
}

// Clear clears the OSC address and all arguments.
func (m *Message) Clear() {
	m.Address = ""
	m.Arguments = m.Arguments[:0]
}

// Match returns true, if the OSC address pattern of the OSC Message matches the given
// address. The match is case sensitive!
func (m *Message) Match(addr string) bool {
	re, err := getRegEx(m.Address)
	if err != nil {
		return false
	}
	return re.MatchString(addr)
}

// TypeTags returns the type tag string, including the leading comma.
func (m *Message) TypeTags() (string, error) {
	if m == nil {
		return "", fmt.Errorf("TypeTags: message is nil")
	}

	tags := make([]byte, 0, len(m.Arguments)+1)
	tags = append(tags, ',')
	for _, arg := range m.Arguments {
		tt := ToTypeTag(arg)
		if tt == TypeInvalid {
			return "", fmt.Errorf("TypeTags: unsupported type: %T", arg)
		}
		tags = append(tags, byte(tt))
	}

	return string(tags), nil
}

// Signature returns the type tags without the leading comma, e.g. "m" for a
// message carrying a single MIDI argument. It returns "" if any argument has
// an unsupported type.
func (m *Message) Signature() string {
	tags, err := m.TypeTags()
	if err != nil {
		return ""
	}
	return tags[1:]
}

// String implements the fmt.Stringer interface.
func (m *Message) String() string {
	if m == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(m.Address)

	tags, err := m.TypeTags()
	if err != nil || len(m.Arguments) == 0 {
		return sb.String()
	}

	sb.WriteByte(' ')
	sb.WriteString(tags)

	for _, arg := range m.Arguments {
		switch arg := arg.(type) {
		case bool, int32, int64, float32, float64, string:
			fmt.Fprintf(&sb, " %v", arg)

		case nil:
			sb.WriteString(" Nil")

		case []byte:
			fmt.Fprintf(&sb, " blob(%d)", len(arg))

		case MIDI:
			fmt.Fprintf(&sb, " [% x]", arg[:])

		case Timetag:
			fmt.Fprintf(&sb, " %d", arg.TimeTag())
		}
	}

	return sb.String()
}

// MarshalBinary implements the encoding.BinaryMarshaler interface. The result
// consists of the padded address, the padded type tag string and the
// arguments.
func (m *Message) MarshalBinary() ([]byte, error) {
	tags, err := m.TypeTags()
	if err != nil {
		return nil, fmt.Errorf("MarshalBinary: %w", err)
	}

	b := make([]byte, 0, len(m.Address)+len(tags)+8+len(m.Arguments)*bit64Size)
	b = appendPaddedString(b, m.Address)
	b = appendPaddedString(b, tags)

	for _, arg := range m.Arguments {
		switch t := arg.(type) {
		case bool, nil:
			continue
		case int32:
			b = binary.BigEndian.AppendUint32(b, uint32(t))
		case float32:
			b = binary.BigEndian.AppendUint32(b, math.Float32bits(t))
		case int64:
			b = binary.BigEndian.AppendUint64(b, uint64(t))
		case float64:
			b = binary.BigEndian.AppendUint64(b, math.Float64bits(t))
		case string:
			b = appendPaddedString(b, t)
		case []byte:
			b = appendBlob(b, t)
		case MIDI:
			b = append(b, t[:]...)
		case Timetag:
			b = binary.BigEndian.AppendUint64(b, uint64(t))
		}
	}

	if len(b) > MaxPacketSize {
		return nil, fmt.Errorf("MarshalBinary: packet too large: %d", len(b))
	}

	return b, nil
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface.
// Blob arguments alias data.
func (m *Message) UnmarshalBinary(data []byte) error {
	if len(data) == 0 || data[0] != '/' {
		return fmt.Errorf("UnmarshalBinary: data not a valid OSC message")
	}

	if (len(data) % bit32Size) != 0 {
		return fmt.Errorf("UnmarshalBinary: data isn't mod 4")
	}

	addr, n, err := parsePaddedString(data)
	if err != nil {
		return fmt.Errorf("UnmarshalBinary: %w", err)
	}

	m.Address = addr
	m.Arguments = nil
	if err = m.readArguments(data[n:]); err != nil {
		return fmt.Errorf("UnmarshalBinary: %w", err)
	}

	return nil
}

// readArguments decodes the type tag string and the arguments that follow it.
func (m *Message) readArguments(data []byte) error {
	// Messages without a type tag string are legal in OSC 1.0.
	if len(data) == 0 {
		return nil
	}

	typetags, n, err := parsePaddedString(data)
	if err != nil {
		return fmt.Errorf("readArguments: %w", err)
	}
	data = data[n:]

	if len(typetags) == 0 || typetags[0] != ',' {
		return fmt.Errorf("unsupported typetag string: %q", typetags)
	}
	if len(typetags) == 1 {
		return nil
	}

	args := make([]interface{}, 0, len(typetags)-1)
	for _, c := range typetags[1:] {
		var size int
		switch TypeTag(c) {
		case TypeInt32, TypeFloat32, TypeMIDI:
			size = bit32Size
		case TypeInt64, TypeFloat64, TypeTimeTag:
			size = bit64Size
		}
		if len(data) < size {
			return fmt.Errorf("readArguments: not enough bytes for %c", c)
		}

		switch TypeTag(c) {
		default:
			return fmt.Errorf("unsupported typetag: %c", c)

		case TypeInt32:
			args = append(args, int32(binary.BigEndian.Uint32(data)))

		case TypeInt64:
			args = append(args, int64(binary.BigEndian.Uint64(data)))

		case TypeFloat32:
			args = append(args, math.Float32frombits(binary.BigEndian.Uint32(data)))

		case TypeFloat64:
			args = append(args, math.Float64frombits(binary.BigEndian.Uint64(data)))

		case TypeTimeTag:
			args = append(args, Timetag(binary.BigEndian.Uint64(data)))

		case TypeMIDI:
			var mm MIDI
			copy(mm[:], data)
			args = append(args, mm)

		case TypeString:
			var s string
			if s, size, err = parsePaddedString(data); err != nil {
				return fmt.Errorf("readArguments: %w", err)
			}
			args = append(args, s)

		case TypeBlob:
			var blob []byte
			if blob, size, err = parseBlob(data); err != nil {
				return fmt.Errorf("readArguments: %w", err)
			}
			args = append(args, blob)

		case TypeNil:
			args = append(args, nil)

		case TypeTrue:
			args = append(args, true)

		case TypeFalse:
			args = append(args, false)
		}
		data = data[size:]
	}

	m.Arguments = args
	return nil
}
