package receiver

import (
	"context"
	"hostlogd/internal/externalio/beats"
	"hostlogd/internal/externalio/server"
	"hostlogd/internal/network"
	"hostlogd/internal/receiver/listener"
	"hostlogd/internal/receiver/metrics"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

type JSONConfig struct {
	Network struct {
		Port int `json:"port"`
	} `json:"network"`
	Logging struct {
		LogPath         string `json:"logPath"`
		MaxLogSize      string `json:"maxLogSize"` // human size, e.g. "1MiB", "512 KB", "1048576"
		MaxArchiveFiles int    `json:"maxArchiveFiles"`
		LogErrors       bool   `json:"logErrors"`
		LogDebug        bool   `json:"logDebug"`
	} `json:"logging"`
	Outputs struct {
		BeatsAddress string `json:"beatsAddress,omitempty"`
	} `json:"outputs"`
	Metrics struct {
		Interval          string `json:"collectionInterval"`
		MaxAge            string `json:"maximumRetention,omitempty"`
		EnableQueryServer bool   `json:"enableHTTPQueryServer"`
		QueryServerPort   int    `json:"queryServerPort,omitempty"`
	} `json:"metrics"`
}

type Config struct {
	// Basic settings
	ListenPort int

	// Log tree
	LogPath         string
	MaxLogSize      int64 // bytes; files strictly larger are rotated before the next append
	MaxArchiveFiles int   // 0 keeps every archive
	LogErrors       bool
	LogDebug        bool

	// Outputs
	BeatsEndpoint string

	// Metrics
	MetricQueryServerEnabled bool
	MetricQueryServerPort    int
	MetricCollectionInterval time.Duration
	MetricMaxAge             time.Duration
}

type Daemon struct {
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc

	group      *errgroup.Group
	groupCtx   context.Context
	workerDone chan struct{}
	fatalErr   error
	stopOnce   sync.Once

	transport          *network.UDPTransport
	worker             *listener.Instance
	forwarder          *beats.OutModule
	metricsCollector   *metrics.Gatherer
	MetricServer       *http.Server
	MetricDataSearcher server.DataSearcher
	MetricDiscoverer   server.Discoverer
}
