package network

import (
	"context"
	"fmt"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// Opens the receive socket on all addresses for the given port.
// Address reuse lets a restarted daemon rebind while the old socket lingers.
func ListenUDP(port int) (conn *net.UDPConn, err error) {
	// Using x/sys/unix package for more up-to-date syscall numbers
	cfg := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var err error
			c.Control(func(fd uintptr) {
				err = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			})
			return err
		},
	}

	addr := net.UDPAddr{Port: port}
	pc, err := cfg.ListenPacket(context.Background(), "udp", addr.String())
	if err != nil {
		err = fmt.Errorf("failed to listen on udp port %d: %v", port, err)
		return
	}
	conn = pc.(*net.UDPConn)
	return
}
