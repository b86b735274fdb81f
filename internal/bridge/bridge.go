// Package bridge relays MIDI events between instrument ports and a TouchOSC
// surface.
//
// The inbound relay listens for /midi messages and writes the decoded events
// to the instrument output. The outbound relay receives events from the
// instrument input and sends them to a fixed peer. The two directions share
// nothing but the immutable peer address.
package bridge

import (
	"context"
	"net"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/chabad360/touchosc2midi/internal/midi"
	"github.com/chabad360/touchosc2midi/osc"
)

// Source pushes instrument events to a single registered handler.
type Source interface {
	Listen(fn func(midi.Event)) error
	Close() error
}

// Sink accepts instrument events.
type Sink interface {
	Send(ev midi.Event) error
	Close() error
}

// Sender delivers OSC packets to the peer.
type Sender interface {
	Send(p osc.Packet) error
}

// Options configure a Bridge.
type Options struct {
	// ListenHost and Port form the inbound listen address.
	ListenHost string
	Port       int

	// PeerHost is the outbound destination. Empty means the broadcast
	// address of the main interface's network, with PrefixLen bits.
	PeerHost  string
	PeerPort  int
	PrefixLen int
	ProbeAddr string
}

// peerPort is the outbound port: PeerPort if set, else Port+1.
func (o Options) peerPort() int {
	if o.PeerPort != 0 {
		return o.PeerPort
	}
	return o.Port + 1
}

// Bridge owns both relays and the handles they use.
type Bridge struct {
	opts   Options
	source Source
	sink   Sink
	log    *zap.Logger

	peer     Peer
	client   *osc.Client
	inbound  *InboundRelay
	outbound *OutboundRelay

	stopOnce sync.Once
}

// New returns a Bridge for the given instrument handles. The bridge takes
// ownership of source and sink and closes them on Stop.
func New(opts Options, source Source, sink Sink, log *zap.Logger) *Bridge {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.ProbeAddr == "" {
		opts.ProbeAddr = DefaultProbeAddr
	}
	return &Bridge{
		opts:    opts,
		source:  source,
		sink:    sink,
		log:     log,
		inbound: NewInboundRelay(log.Named("inbound")),
	}
}

// Start resolves the peer, starts the inbound relay and attaches the outbound
// relay to the source. All failures are *StartupError. On failure, resources
// acquired so far stay owned by the bridge and are released by Stop.
func (b *Bridge) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &StartupError{Op: "start", Err: err}
	}

	peer, err := ResolvePeer(b.opts.PeerHost, b.opts.peerPort(), b.opts.PrefixLen, b.opts.ProbeAddr)
	if err != nil {
		return err
	}
	b.peer = peer

	addr := net.JoinHostPort(b.opts.ListenHost, strconv.Itoa(b.opts.Port))
	if err := b.inbound.Start(addr, b.sink); err != nil {
		return err
	}
	b.log.Info("Listening on", zap.Stringer("addr", b.inbound.Addr()))

	client, err := osc.Dial(peer.String())
	if err != nil {
		return &StartupError{Op: "open client", Err: err}
	}
	b.client = client
	b.log.Info("Will send to", zap.Stringer("peer", peer))

	b.outbound = NewOutboundRelay(client, peer, b.log.Named("outbound"))
	if err := b.outbound.Attach(b.source); err != nil {
		return &StartupError{Op: "attach instrument input", Err: err}
	}
	b.log.Info("Listening for midi", zap.Any("input", b.source))

	return nil
}

// Run starts the bridge and blocks until ctx is done, then stops it. It only
// returns an error if Start fails.
func (b *Bridge) Run(ctx context.Context) error {
	defer b.Stop()

	if err := b.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	return nil
}

// Stop shuts the bridge down: the inbound relay first, then the instrument
// input, the instrument output and the network client. Only the first call
// has any effect. Errors are logged.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		if err := b.inbound.Stop(); err != nil {
			b.log.Warn("stopping inbound relay", zap.Error(err))
		}
		if err := b.source.Close(); err != nil {
			b.log.Warn("closing instrument input", zap.Error(err))
		}
		if err := b.sink.Close(); err != nil {
			b.log.Warn("closing instrument output", zap.Error(err))
		}
		if b.client != nil {
			if err := b.client.Close(); err != nil {
				b.log.Warn("closing OSC client", zap.Error(err))
			}
		}
		b.log.Info("closed all ports")
	})
}

// Peer returns the resolved peer. It is the zero Peer before Start.
func (b *Bridge) Peer() Peer { return b.peer }

// Addr returns the inbound listen address, or nil if not listening.
func (b *Bridge) Addr() net.Addr { return b.inbound.Addr() }

// Stats returns the outbound relay's counters.
func (b *Bridge) Stats() OutboundStats {
	if b.outbound == nil {
		return OutboundStats{}
	}
	return b.outbound.Stats()
}
