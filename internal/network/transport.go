package network

import (
	"hostlogd/internal/global"
	"net"
)

// Datagram source backed by a bound UDP socket
type UDPTransport struct {
	conn   *net.UDPConn
	buffer []byte
}

func NewUDPTransport(conn *net.UDPConn) (transport *UDPTransport) {
	transport = &UDPTransport{
		conn:   conn,
		buffer: make([]byte, global.MaxDatagramSize),
	}
	return
}

// Blocks until one datagram arrives.
// Payload is a copy and stays valid across calls.
func (transport *UDPTransport) Receive() (remoteAddress string, payload []byte, err error) {
	n, remoteAddr, err := transport.conn.ReadFromUDP(transport.buffer)
	if err != nil {
		return
	}

	payload = make([]byte, n)
	copy(payload, transport.buffer[:n])

	// IPv4-mapped IPv6 senders are stored under their IPv4 form
	if v4 := remoteAddr.IP.To4(); v4 != nil {
		remoteAddress = v4.String()
	} else {
		remoteAddress = remoteAddr.IP.String()
	}
	return
}

// Releases the socket, unblocking any pending Receive
func (transport *UDPTransport) Close() (err error) {
	err = transport.conn.Close()
	return
}

func (transport *UDPTransport) LocalAddr() (addr net.Addr) {
	addr = transport.conn.LocalAddr()
	return
}
