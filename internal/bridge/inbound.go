package bridge

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/chabad360/touchosc2midi/internal/oscmidi"
	"github.com/chabad360/touchosc2midi/osc"
)

// State of an InboundRelay.
type State int32

const (
	Stopped State = iota
	Listening
)

func (s State) String() string {
	if s == Listening {
		return "listening"
	}
	return "stopped"
}

// InboundStats counts inbound messages by outcome.
type InboundStats struct {
	Delivered uint64
	Discarded uint64
	Failed    uint64
}

// InboundRelay receives /midi messages from the network and writes the
// decoded events to a Sink. Anything else is logged and discarded.
type InboundRelay struct {
	log *zap.Logger

	mu    sync.Mutex
	state State
	conn  net.PacketConn
	sink  Sink
	done  chan struct{}

	delivered atomic.Uint64
	discarded atomic.Uint64
	failed    atomic.Uint64
}

// NewInboundRelay returns a stopped relay.
func NewInboundRelay(log *zap.Logger) *InboundRelay {
	if log == nil {
		log = zap.NewNop()
	}
	return &InboundRelay{log: log}
}

// Start binds addr and serves it on a new goroutine. The bind happens before
// Start returns; its failure is a *StartupError. The relay uses sink but
// never closes it.
func (r *InboundRelay) Start(addr string, sink Sink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == Listening {
		return &StartupError{Op: "listen", Err: errors.New("inbound relay already listening")}
	}

	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return &StartupError{Op: "listen", Err: err}
	}

	d := osc.NewDispatcher()
	if err := d.AddMethodFunc(oscmidi.Address, oscmidi.Signature, r.handle); err != nil {
		conn.Close()
		return &StartupError{Op: "listen", Err: err}
	}
	d.Unhandled = r.discard
	// Timed bundles would outlive Stop.
	d.IgnoreTimetags = true

	r.conn = conn
	r.sink = sink
	r.done = make(chan struct{})
	r.state = Listening

	srv := &osc.Server{Dispatcher: d, Logger: r.log}
	go func(done chan struct{}) {
		defer close(done)
		if err := srv.Serve(conn); err != nil {
			r.log.Error("inbound relay stopped", zap.Error(err))
		}
	}(r.done)

	return nil
}

func (r *InboundRelay) handle(msg *osc.Message) {
	ev, err := oscmidi.EventFromMessage(msg)
	if err != nil {
		r.discarded.Add(1)
		r.log.Debug("discarding message", zap.Stringer("msg", msg), zap.Error(err))
		return
	}

	r.log.Debug("received", zap.Stringer("event", ev))
	if err := r.sink.Send(ev); err != nil {
		r.failed.Add(1)
		r.log.Info("dropping event", zap.Stringer("event", ev), zap.Error(err))
		return
	}
	r.delivered.Add(1)
}

func (r *InboundRelay) discard(msg *osc.Message) {
	r.discarded.Add(1)
	r.log.Debug("discarding message", zap.Stringer("msg", msg))
}

// Stop closes the listener and waits for the serve goroutine to exit. It is a
// no-op on a stopped relay.
func (r *InboundRelay) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == Stopped {
		return nil
	}

	err := r.conn.Close()
	<-r.done

	r.state = Stopped
	r.conn = nil
	return err
}

// State reports whether the relay is listening.
func (r *InboundRelay) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Addr returns the bound address, or nil when stopped.
func (r *InboundRelay) Addr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return nil
	}
	return r.conn.LocalAddr()
}

// Stats returns the relay's counters.
func (r *InboundRelay) Stats() InboundStats {
	return InboundStats{
		Delivered: r.delivered.Load(),
		Discarded: r.discarded.Load(),
		Failed:    r.failed.Load(),
	}
}
