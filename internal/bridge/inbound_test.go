package bridge

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/chabad360/touchosc2midi/internal/midi"
	"github.com/chabad360/touchosc2midi/osc"
)

func startInbound(t *testing.T, sink Sink, log *zap.Logger) (*InboundRelay, *osc.Client) {
	t.Helper()
	r := NewInboundRelay(log)
	if err := r.Start("127.0.0.1:0", sink); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { r.Stop() })

	c, err := osc.Dial(r.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return r, c
}

func TestInboundRelay_Deliver(t *testing.T) {
	sink := newFakeSink()
	r, c := startInbound(t, sink, zaptest.NewLogger(t))

	if got := r.State(); got != Listening {
		t.Fatalf("State() = %s, want %s", got, Listening)
	}

	if err := c.Send(osc.NewMessage("/midi", osc.MIDI{0x00, 0x90, 0x3c, 0x64})); err != nil {
		t.Fatal(err)
	}
	if got, want := sink.next(t), (midi.Event{Status: 0x90, Data1: 60, Data2: 100}); got != want {
		t.Errorf("sink received %v, want %v", got, want)
	}
}

func TestInboundRelay_Discard(t *testing.T) {
	sink := newFakeSink()
	core, logs := observer.New(zapcore.DebugLevel)
	r, c := startInbound(t, sink, zap.New(core))

	discarded := []osc.Packet{
		osc.NewMessage("/foo", osc.MIDI{0x00, 0x90, 0x3c, 0x64}),
		osc.NewMessage("/midi", int32(144)),
		osc.NewMessage("/midi", []byte{0x00, 0x90, 0x3c, 0x64}),
		osc.NewMessage("/midi", osc.MIDI{0x00, 0x3c, 0x3c, 0x64}),
		osc.NewMessage("/midi"),
	}
	for _, p := range discarded {
		if err := c.Send(p); err != nil {
			t.Fatal(err)
		}
	}
	// Packets from one sender are handled in order, so once this one arrives
	// every earlier one has been discarded.
	if err := c.Send(osc.NewMessage("/midi", osc.MIDI{0x00, 0xb0, 0x07, 0x40})); err != nil {
		t.Fatal(err)
	}
	if got, want := sink.next(t), (midi.Event{Status: 0xb0, Data1: 7, Data2: 64}); got != want {
		t.Errorf("sink received %v, want %v", got, want)
	}

	select {
	case ev := <-sink.events:
		t.Errorf("sink received unexpected %v", ev)
	default:
	}

	stats := r.Stats()
	if stats.Discarded != uint64(len(discarded)) || stats.Delivered != 1 {
		t.Errorf("Stats() = %+v, want %d discarded and 1 delivered", stats, len(discarded))
	}
	if n := logs.FilterMessage("discarding message").Len(); n != len(discarded) {
		t.Errorf("logged %d discards, want %d", n, len(discarded))
	}
}

func TestInboundRelay_SinkError(t *testing.T) {
	sink := newFakeSink()
	sink.err = errors.New("port gone")
	core, logs := observer.New(zapcore.InfoLevel)
	r, c := startInbound(t, sink, zap.New(core))

	if err := c.Send(osc.NewMessage("/midi", osc.MIDI{0x00, 0x90, 0x3c, 0x64})); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for r.Stats().Failed == 0 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for the sink failure")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if n := logs.FilterMessage("dropping event").Len(); n != 1 {
		t.Errorf("logged %d dropped events, want 1", n)
	}
	if r.State() != Listening {
		t.Error("relay stopped after a sink failure")
	}
}

func TestInboundRelay_Stop(t *testing.T) {
	r := NewInboundRelay(nil)

	if err := r.Stop(); err != nil {
		t.Errorf("Stop() on a stopped relay = %v", err)
	}

	if err := r.Start("127.0.0.1:0", newFakeSink()); err != nil {
		t.Fatal(err)
	}
	if err := r.Start("127.0.0.1:0", newFakeSink()); err == nil {
		t.Error("second Start() should fail")
	}

	for i := 0; i < 2; i++ {
		if err := r.Stop(); err != nil {
			t.Errorf("Stop() #%d = %v", i+1, err)
		}
	}
	if got := r.State(); got != Stopped {
		t.Errorf("State() = %s, want %s", got, Stopped)
	}
	if r.Addr() != nil {
		t.Errorf("Addr() = %v after Stop, want nil", r.Addr())
	}
}

func TestInboundRelay_TimedBundle(t *testing.T) {
	sink := newFakeSink()
	r, c := startInbound(t, sink, zaptest.NewLogger(t))

	start := time.Now()
	b := osc.NewBundle(osc.NewMessage("/midi", osc.MIDI{0x00, 0x90, 0x3c, 0x64}))
	b.Timetag = osc.NewTimetagFromTime(start.Add(300 * time.Millisecond))
	if err := c.Send(b); err != nil {
		t.Fatal(err)
	}

	// The time tag is ignored: the event arrives without waiting for it.
	if got, want := sink.next(t), (midi.Event{Status: 0x90, Data1: 60, Data2: 100}); got != want {
		t.Errorf("sink received %v, want %v", got, want)
	}
	if waited := time.Since(start); waited >= 300*time.Millisecond {
		t.Errorf("bundle delivered after %v, want before its time tag", waited)
	}

	if err := r.Stop(); err != nil {
		t.Fatal(err)
	}
	select {
	case ev := <-sink.events:
		t.Errorf("sink received %v after Stop", ev)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestInboundRelay_BindError(t *testing.T) {
	first := NewInboundRelay(nil)
	if err := first.Start("127.0.0.1:0", newFakeSink()); err != nil {
		t.Fatal(err)
	}
	defer first.Stop()

	second := NewInboundRelay(nil)
	err := second.Start(first.Addr().String(), newFakeSink())
	var se *StartupError
	if !errors.As(err, &se) {
		t.Fatalf("Start() on a bound port = %v, want *StartupError", err)
	}
	if second.State() != Stopped {
		t.Error("relay is listening after a failed Start")
	}
}
