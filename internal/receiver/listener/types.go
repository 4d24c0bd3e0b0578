package listener

import (
	"hostlogd/internal/externalio/beats"
	"hostlogd/internal/externalio/diag"
	"hostlogd/internal/receiver/hosts"
	"hostlogd/internal/receiver/writer"
	"sync/atomic"
	"time"
)

// Source of datagrams. Receive blocks until one arrives or the source is closed,
// in which case the error wraps net.ErrClosed.
type Transport interface {
	Receive() (remoteAddress string, payload []byte, err error)
}

// The single receive worker. Owns the host registry and drives every stage for each datagram.
type Instance struct {
	Namespace []string
	transport Transport
	registry  *hosts.Registry
	writer    *writer.Writer
	sink      *diag.Sink       // nil when diagnostics are off
	forwarder *beats.OutModule // nil when forwarding is off
	Metrics   MetricStorage

	errorBackoff time.Duration // pause after a failed receive
}

type MetricStorage struct {
	Received        atomic.Uint64 // datagrams read from the transport
	TransportErrors atomic.Uint64
	ParseErrors     atomic.Uint64
	DirectoryErrors atomic.Uint64
	WriteErrors     atomic.Uint64
	RotationErrors  atomic.Uint64
	Written         atomic.Uint64 // messages appended
	BytesWritten    atomic.Uint64
	Rotations       atomic.Uint64 // completed rotations
	NewHosts        atomic.Uint64
	KnownHosts      atomic.Uint64 // never cleared
	BusyNs          atomic.Uint64 // time spent processing, excludes idle receive
}
