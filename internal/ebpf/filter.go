// Kernel-side datagram filtering for the receive socket
package ebpf

import (
	"fmt"
	"net"
	"os"
	"runtime"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/asm"
	"golang.org/x/sys/unix"
)

const (
	udpHeaderLen int    = 8 // socket filters see the UDP header in skb->len
	acceptLabel  string = "accept"
)

// Socket filter program that drops datagrams with fewer than minPayload bytes.
// Return value of a socket filter is the number of bytes to keep, so returning
// skb->len keeps the whole datagram and 0 drops it.
func runtFilterInstructions(minPayload int) (insns asm.Instructions) {
	insns = asm.Instructions{
		// r0 = skb->len
		asm.LoadMem(asm.R0, asm.R1, 0, asm.Word),
		asm.JGE.Imm(asm.R0, int32(udpHeaderLen+minPayload), acceptLabel),
		asm.Mov.Imm(asm.R0, 0),
		asm.Return(),
		asm.Return().WithSymbol(acceptLabel),
	}
	return
}

// Loads the runt filter and attaches it to the socket.
// No-op (nil error, attached=false) when not on linux or not root.
func AttachRuntFilter(conn *net.UDPConn, minPayload int) (attached bool, err error) {
	if runtime.GOOS != "linux" {
		return
	}

	// Must run as root
	if os.Geteuid() != 0 {
		return
	}

	err = unix.Setrlimit(unix.RLIMIT_MEMLOCK, &unix.Rlimit{
		Cur: unix.RLIM_INFINITY,
		Max: unix.RLIM_INFINITY,
	})
	if err != nil {
		err = fmt.Errorf("set resource limit: %v", err)
		return
	}

	prog, err := ebpf.NewProgram(&ebpf.ProgramSpec{
		Name:         "hostlogd_runt",
		Type:         ebpf.SocketFilter,
		License:      "GPL",
		Instructions: runtFilterInstructions(minPayload),
	})
	if err != nil {
		err = fmt.Errorf("load socket filter: %v", err)
		return
	}
	// Socket holds its own reference once attached
	defer prog.Close()

	rawConn, err := conn.SyscallConn()
	if err != nil {
		err = fmt.Errorf("raw socket: %v", err)
		return
	}

	var attachErr error
	err = rawConn.Control(func(fd uintptr) {
		attachErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_ATTACH_BPF, prog.FD())
	})
	if err != nil {
		err = fmt.Errorf("socket control: %v", err)
		return
	}
	if attachErr != nil {
		err = fmt.Errorf("attach socket filter: %v", attachErr)
		return
	}

	attached = true
	return
}
