package bridge

import (
	"errors"
	"net"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/chabad360/touchosc2midi/internal/midi"
	"github.com/chabad360/touchosc2midi/internal/oscmidi"
)

// OutboundStats counts outbound events by outcome.
type OutboundStats struct {
	Sent     uint64
	Filtered uint64
	Dropped  uint64
}

// OutboundRelay sends instrument events to the peer as /midi messages. Clock
// events are never sent. Failures drop the event; nothing is retried.
type OutboundRelay struct {
	sender Sender
	peer   Peer
	log    *zap.Logger

	sent     atomic.Uint64
	filtered atomic.Uint64
	dropped  atomic.Uint64
}

// NewOutboundRelay returns a relay sending through sender to peer.
func NewOutboundRelay(sender Sender, peer Peer, log *zap.Logger) *OutboundRelay {
	if log == nil {
		log = zap.NewNop()
	}
	return &OutboundRelay{sender: sender, peer: peer, log: log}
}

// Attach registers Handle with src.
func (r *OutboundRelay) Attach(src Source) error {
	return src.Listen(r.Handle)
}

// Handle relays a single event. It runs on the source's delivery goroutine
// and does not block beyond one datagram write.
func (r *OutboundRelay) Handle(ev midi.Event) {
	if ev.Type() == midi.Clock {
		r.filtered.Add(1)
		return
	}

	msg, err := oscmidi.NewMessage(ev)
	if err != nil {
		r.dropped.Add(1)
		r.log.Debug("dropping event", zap.Error(err))
		return
	}

	if err := r.sender.Send(msg); err != nil {
		r.dropped.Add(1)
		var serr error = &SendError{Peer: r.peer, Err: err}
		if errors.Is(err, net.ErrClosed) {
			r.log.Debug("dropping event", zap.Stringer("event", ev), zap.Error(serr))
			return
		}
		r.log.Info("dropping event", zap.Stringer("event", ev), zap.Error(serr))
		return
	}

	r.sent.Add(1)
	r.log.Debug("sent", zap.Stringer("event", ev), zap.Stringer("msg", msg))
}

// Stats returns the relay's counters.
func (r *OutboundRelay) Stats() OutboundStats {
	return OutboundStats{
		Sent:     r.sent.Load(),
		Filtered: r.filtered.Load(),
		Dropped:  r.dropped.Load(),
	}
}
