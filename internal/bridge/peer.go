package bridge

import (
	"encoding/binary"
	"fmt"
	"net"
	"net/netip"
	"strconv"
)

// DefaultProbeAddr is in TEST-NET-1 (RFC 5737), so no custom route should
// exist for it and the kernel picks the default route's interface.
const DefaultProbeAddr = "192.0.2.0"

// Peer is the fixed destination of outbound messages.
type Peer struct {
	Host string
	Port int
}

func (p Peer) String() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

// MainIP returns the local address of the interface carrying the default
// route. No packet is sent: connecting a UDP socket only selects a route.
func MainIP(probe string) (netip.Addr, error) {
	conn, err := net.Dial("udp4", net.JoinHostPort(probe, "9"))
	if err != nil {
		return netip.Addr{}, err
	}
	defer conn.Close()

	addr, ok := netip.AddrFromSlice(conn.LocalAddr().(*net.UDPAddr).IP)
	if !ok {
		return netip.Addr{}, fmt.Errorf("unexpected local address %s", conn.LocalAddr())
	}
	return addr.Unmap(), nil
}

// Broadcast returns the broadcast address of ip/prefixLen.
func Broadcast(ip netip.Addr, prefixLen int) (netip.Addr, error) {
	ip = ip.Unmap()
	if !ip.Is4() {
		return netip.Addr{}, fmt.Errorf("%s is not an IPv4 address", ip)
	}
	if prefixLen < 0 || prefixLen > 32 {
		return netip.Addr{}, fmt.Errorf("invalid prefix length %d", prefixLen)
	}

	b := ip.As4()
	host := uint32(1<<(32-prefixLen) - 1)
	binary.BigEndian.PutUint32(b[:], binary.BigEndian.Uint32(b[:])|host)
	return netip.AddrFrom4(b), nil
}

// ResolvePeer returns host:port when host is set. Otherwise the peer is the
// broadcast address of the main interface's /prefixLen network.
func ResolvePeer(host string, port, prefixLen int, probe string) (Peer, error) {
	if host != "" {
		return Peer{Host: host, Port: port}, nil
	}

	ip, err := MainIP(probe)
	if err != nil {
		return Peer{}, &StartupError{Op: "infer local address", Err: err}
	}
	bcast, err := Broadcast(ip, prefixLen)
	if err != nil {
		return Peer{}, &StartupError{Op: "compute broadcast address", Err: err}
	}
	return Peer{Host: bcast.String(), Port: port}, nil
}
