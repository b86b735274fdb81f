package bridge

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/chabad360/touchosc2midi/internal/midi"
	"github.com/chabad360/touchosc2midi/osc"
)

type fakeSource struct {
	mu        sync.Mutex
	fn        func(midi.Event)
	closed    int
	listenErr error
	onClose   func()
}

func (s *fakeSource) Listen(fn func(midi.Event)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listenErr != nil {
		return s.listenErr
	}
	s.fn = fn
	return nil
}

func (s *fakeSource) emit(ev midi.Event) {
	s.mu.Lock()
	fn := s.fn
	s.mu.Unlock()
	fn(ev)
}

func (s *fakeSource) Close() error {
	s.mu.Lock()
	s.closed++
	s.mu.Unlock()
	if s.onClose != nil {
		s.onClose()
	}
	return nil
}

func (s *fakeSource) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeSink struct {
	events  chan midi.Event
	err     error
	onClose func()

	mu     sync.Mutex
	closed int
}

func newFakeSink() *fakeSink {
	return &fakeSink{events: make(chan midi.Event, 64)}
}

func (s *fakeSink) Send(ev midi.Event) error {
	if s.err != nil {
		return s.err
	}
	s.events <- ev
	return nil
}

func (s *fakeSink) Close() error {
	s.mu.Lock()
	s.closed++
	s.mu.Unlock()
	if s.onClose != nil {
		s.onClose()
	}
	return nil
}

func (s *fakeSink) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *fakeSink) next(t *testing.T) midi.Event {
	t.Helper()
	select {
	case ev := <-s.events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an event at the sink")
		return midi.Event{}
	}
}

type recordingSender struct {
	mu      sync.Mutex
	packets []osc.Packet
	err     error
}

func (s *recordingSender) Send(p osc.Packet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.packets = append(s.packets, p)
	return nil
}

var errUnreachable = errors.New("network is unreachable")
