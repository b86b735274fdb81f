package osc

import (
	"encoding/binary"
	"time"
)

const (
	// secondsFrom1900To1970 is the offset between the NTP and Unix epochs.
	secondsFrom1900To1970 = 2208988800

	// immediately is the special time tag value meaning "now".
	immediately = Timetag(1)
)

// Timetag represents an OSC Time Tag.
// An OSC Time Tag is defined as follows:
// Time tags are represented by a 64 bit fixed point number. The first 32 bits
// specify the number of seconds since midnight on January 1, 1900, and the
// last 32 bits specify fractional parts of a second to a precision of about
// 200 picoseconds. This is the representation used by Internet NTP timestamps.
type Timetag uint64

// NewImmediateTimetag returns the time tag that means "dispatch immediately".
func NewImmediateTimetag() Timetag {
	return immediately
}

// NewTimetag returns a time tag for the current time.
func NewTimetag() Timetag {
	return NewTimetagFromTime(time.Now())
}

// NewTimetagFromTime returns a new OSC time tag object from a time.Time.
func NewTimetagFromTime(timeStamp time.Time) Timetag {
	secs := uint64(timeStamp.Unix()+secondsFrom1900To1970) << 32
	frac := uint64(timeStamp.Nanosecond()) << 32 / uint64(time.Second)
	return Timetag(secs | frac)
}

// Time returns the time.
func (t Timetag) Time() time.Time {
	nanos := (uint64(t.FractionalSecond()) * uint64(time.Second)) >> 32
	return time.Unix(int64(t.SecondsSinceEpoch())-secondsFrom1900To1970, int64(nanos))
}

// FractionalSecond returns the last 32 bits of the OSC time tag. Specifies the
// fractional part of a second.
func (t Timetag) FractionalSecond() uint32 {
	return uint32(t)
}

// SecondsSinceEpoch returns the first 32 bits (the number of seconds since the
// midnight 1900) from the OSC time tag.
func (t Timetag) SecondsSinceEpoch() uint32 {
	return uint32(t >> 32)
}

// TimeTag returns the time tag value
func (t Timetag) TimeTag() uint64 {
	return uint64(t)
}

// MarshalBinary converts the OSC time tag to a byte array.
func (t Timetag) MarshalBinary() ([]byte, error) {
	return binary.BigEndian.AppendUint64(nil, uint64(t)), nil
}

// ExpiresIn calculates the duration until the time tag is reached. It returns
// zero for the immediate time tag and for time tags in the past.
func (t Timetag) ExpiresIn() time.Duration {
	if t <= immediately {
		return 0
	}

	d := time.Until(t.Time())
	if d <= 0 {
		return 0
	}

	return d
}
