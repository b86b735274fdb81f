package osc

import (
	"encoding"
	"fmt"
)

// Packet is the interface for Message and Bundle.
type Packet interface {
	encoding.BinaryMarshaler
}

// ParsePacket parses the given data into an OSC Message or Bundle. The data is
// copied, so the caller may reuse its buffer.
func ParsePacket(data []byte) (Packet, error) {
	b := make([]byte, len(data))
	copy(b, data)
	return parsePacket(b)
}

// parsePacket does the work of ParsePacket without copying.
func parsePacket(data []byte) (Packet, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("ParsePacket: empty packet")
	}

	switch data[0] {
	case '/':
		return NewMessageFromData(data)
	case '#':
		return NewBundleFromData(data)
	default:
		return nil, fmt.Errorf("ParsePacket: invalid packet")
	}
}
