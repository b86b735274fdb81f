// Package midiport adapts gomidi driver ports to the bridge's event source
// and sink.
package midiport

import (
	"errors"
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"go.uber.org/zap"

	"github.com/chabad360/touchosc2midi/internal/midi"
)

var (
	// ErrClosed is returned when using a port after Close.
	ErrClosed = errors.New("midiport: port closed")
	// ErrListening is returned by a second call to Input.Listen.
	ErrListening = errors.New("midiport: already listening")
)

// Input delivers events from a driver input port.
type Input struct {
	port drivers.In
	log  *zap.Logger

	mu     sync.Mutex
	stop   func()
	closed bool
}

// NewInput wraps port. The port is opened by Listen.
func NewInput(port drivers.In, log *zap.Logger) *Input {
	if log == nil {
		log = zap.NewNop()
	}
	return &Input{port: port, log: log.With(zap.String("port", port.String()))}
}

// Listen registers fn for every event received on the port. fn runs on the
// driver's delivery goroutine and must not block. Listen may be called once.
func (i *Input) Listen(fn func(midi.Event)) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	switch {
	case i.closed:
		return ErrClosed
	case i.stop != nil:
		return ErrListening
	}

	stop, err := gomidi.ListenTo(i.port, func(msg gomidi.Message, _ int32) {
		ev, err := midi.FromBytes(msg)
		if err != nil {
			i.log.Debug("midi: skipping message", zap.Error(err))
			return
		}
		fn(ev)
	}, gomidi.HandleError(func(err error) {
		i.log.Warn("midi: listener error", zap.Error(err))
	}))
	if err != nil {
		return fmt.Errorf("listen %q: %w", i.port, err)
	}

	i.stop = stop
	return nil
}

// Close stops listening and closes the port. Calling Close more than once is
// a no-op.
func (i *Input) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return nil
	}
	i.closed = true

	if i.stop != nil {
		i.stop()
		i.stop = nil
	}
	if !i.port.IsOpen() {
		return nil
	}
	return i.port.Close()
}

func (i *Input) String() string {
	return i.port.String()
}

// Output writes events to a driver output port.
type Output struct {
	port drivers.Out

	mu     sync.Mutex
	send   func(gomidi.Message) error
	closed bool
}

// NewOutput opens port for sending.
func NewOutput(port drivers.Out) (*Output, error) {
	send, err := gomidi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", port, err)
	}
	return &Output{port: port, send: send}, nil
}

// Send writes ev to the port.
func (o *Output) Send(ev midi.Event) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrClosed
	}

	b := ev.Bytes()
	if len(b) == 0 {
		return fmt.Errorf("midiport: cannot send %v", ev)
	}
	return o.send(b)
}

// Close closes the port. Calling Close more than once is a no-op.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true

	if !o.port.IsOpen() {
		return nil
	}
	return o.port.Close()
}

func (o *Output) String() string {
	return o.port.String()
}
