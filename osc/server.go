package osc

import (
	"errors"
	"net"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
)

var bufPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, MaxPacketSize)
		return &b
	},
}

// Server represents an OSC server. The server listens on Addr for incoming
// OSC packets and hands them to Dispatcher.
type Server struct {
	Addr        string
	Dispatcher  *Dispatcher
	ReadTimeout time.Duration

	// Logger receives malformed packets and handler panics. Nil discards.
	Logger *zap.Logger
}

// ListenAndServe retrieves incoming OSC packets and dispatches the retrieved OSC packets.
func (s *Server) ListenAndServe() error {
	ln, err := net.ListenPacket("udp", s.Addr)
	if err != nil {
		return err
	}
	defer ln.Close()

	return s.Serve(ln)
}

// Serve retrieves incoming OSC packets from the given connection and
// dispatches them on the calling goroutine, so packets from one sender are
// handled in the order they arrive. Malformed packets are logged and
// skipped, and read errors are retried with a backoff capped at one second.
// Serve returns nil once c is closed.
func (s *Server) Serve(c net.PacketConn) error {
	if s.Dispatcher == nil {
		s.Dispatcher = NewDispatcher()
	}

	var tempDelay time.Duration
	for {
		p, addr, err := s.readFromConnection(c)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) {
				if ne.Timeout() {
					continue
				}
				if tempDelay == 0 {
					tempDelay = 5 * time.Millisecond
				} else {
					tempDelay *= 2
				}
				if max := 1 * time.Second; tempDelay > max {
					tempDelay = max
				}
				s.logger().Debug("osc: read error, retrying", zap.Error(err), zap.Duration("delay", tempDelay))
				time.Sleep(tempDelay)
				continue
			}
			s.logger().Debug("osc: dropping malformed packet", zap.Stringer("from", addr), zap.Error(err))
			continue
		}
		tempDelay = 0
		s.serve(p, addr)
	}
}

func (s *Server) serve(p Packet, a net.Addr) {
	defer func() {
		if err := recover(); err != nil {
			buf := make([]byte, 64<<10)
			buf = buf[:runtime.Stack(buf, false)]
			s.logger().Error("osc: panic handling packet",
				zap.Stringer("from", a), zap.Any("panic", err), zap.ByteString("stack", buf))
		}
	}()
	if err := s.Dispatcher.Dispatch(p); err != nil {
		s.logger().Debug("osc: dispatch failed", zap.Stringer("from", a), zap.Error(err))
	}
}

// ReceivePacket reads a single OSC packet from c.
func (s *Server) ReceivePacket(c net.PacketConn) (Packet, net.Addr, error) {
	return s.readFromConnection(c)
}

// readFromConnection retrieves OSC packets.
func (s *Server) readFromConnection(c net.PacketConn) (Packet, net.Addr, error) {
	if s.ReadTimeout != 0 {
		if err := c.SetReadDeadline(time.Now().Add(s.ReadTimeout)); err != nil {
			return nil, nil, err
		}
	}

	b := bufPool.Get().(*[]byte)
	defer bufPool.Put(b)

	n, a, err := c.ReadFrom(*b)
	if err != nil {
		return nil, a, err
	}

	p, err := ParsePacket((*b)[:n])
	return p, a, err
}

func (s *Server) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
