package osc

import (
	"context"
	"fmt"
	"net"
)

// Client enables you to send OSC Packets to a specified server. The socket is
// left unconnected with SO_BROADCAST set, so the server may be a subnet
// broadcast address.
type Client struct {
	conn  net.PacketConn
	raddr *net.UDPAddr
}

// Dial creates a new OSC Client sending to addr ("host:port").
func Dial(addr string) (*Client, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}

	network := "udp6"
	if raddr.IP == nil || raddr.IP.To4() != nil {
		network = "udp4"
	}

	lc := net.ListenConfig{Control: enableBroadcast}
	conn, err := lc.ListenPacket(context.Background(), network, ":0")
	if err != nil {
		return nil, fmt.Errorf("Dial: %w", err)
	}
	return &Client{conn: conn, raddr: raddr}, nil
}

// Send sends an OSC Packet to the server.
func (c *Client) Send(packet Packet) error {
	data, err := packet.MarshalBinary()
	if err != nil {
		return err
	}

	_, err = c.conn.WriteTo(data, c.raddr)
	return err
}

// RemoteAddr returns the address packets are sent to.
func (c *Client) RemoteAddr() net.Addr {
	return c.raddr
}

// LocalAddr returns the address of the client's socket.
func (c *Client) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// Close closes the connection to the server.
func (c *Client) Close() error {
	return c.conn.Close()
}
