// Daemon for continuous reception of log datagrams and delivery into the per-host log tree
package receiver

import (
	"context"
	"errors"
	"fmt"
	"hostlogd/internal/ebpf"
	"hostlogd/internal/externalio/beats"
	"hostlogd/internal/externalio/diag"
	"hostlogd/internal/externalio/server"
	"hostlogd/internal/global"
	"hostlogd/internal/lifecycle"
	"hostlogd/internal/logctx"
	"hostlogd/internal/network"
	"hostlogd/internal/receiver/hosts"
	"hostlogd/internal/receiver/listener"
	"hostlogd/internal/receiver/metrics"
	"hostlogd/internal/receiver/rotation"
	"hostlogd/internal/receiver/writer"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
)

// Create new receiver daemon instance
func NewDaemon(cfg Config) (new *Daemon) {
	ctx, cancel := context.WithCancel(context.Background())
	new = &Daemon{
		cfg:        cfg,
		ctx:        ctx,
		cancel:     cancel,
		workerDone: make(chan struct{}),
	}
	return
}

// Binds the socket and starts the worker and supporting tasks in background.
// Anything opened before a startup error is released before returning.
func (daemon *Daemon) Start(globalCtx context.Context) (err error) {
	// New context for the daemon
	daemon.ctx, daemon.cancel = context.WithCancel(context.Background())
	daemon.ctx = logctx.WithLogger(daemon.ctx, logctx.GetLogger(globalCtx))

	// Top level tag for daemon logs
	daemon.ctx = logctx.AppendCtxTag(daemon.ctx, global.NSRecv)

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog, "Starting...\n")

	daemon.cfg.setDefaults()
	err = daemon.cfg.Validate()
	if err != nil {
		err = fmt.Errorf("invalid configuration: %v", err)
		return
	}

	err = os.MkdirAll(daemon.cfg.LogPath, os.FileMode(global.LogDirMode))
	if err != nil {
		err = fmt.Errorf("failed to create log directory %s: %v", daemon.cfg.LogPath, err)
		return
	}

	// Socket
	conn, err := network.ListenUDP(daemon.cfg.ListenPort)
	if err != nil {
		return
	}
	daemon.transport = network.NewUDPTransport(conn)

	filterCtx := logctx.AppendCtxTag(daemon.ctx, global.NSFilter)
	attached, filterErr := ebpf.AttachRuntFilter(conn, global.MinDatagramLength)
	if filterErr != nil {
		logctx.LogEvent(filterCtx, global.VerbosityStandard, global.WarnLog,
			"Kernel runt datagram filter unavailable, continuing without it: %v\n", filterErr)
	} else if attached {
		logctx.LogEvent(filterCtx, global.VerbosityProgress, global.InfoLog,
			"Kernel filter drops datagrams shorter than %d bytes\n", global.MinDatagramLength)
	}

	// Optional forwarding
	if daemon.cfg.BeatsEndpoint != "" {
		daemon.forwarder, err = beats.NewOutput([]string{global.NSRecv}, daemon.cfg.BeatsEndpoint)
		if err != nil {
			err = fmt.Errorf("failed starting beats output: %v", err)
			daemon.transport.Close()
			return
		}
	}

	diagCtx := logctx.AppendCtxTag(daemon.ctx, global.NSDiag)
	sink := diag.New(daemon.cfg.LogPath, daemon.cfg.LogErrors, daemon.cfg.LogDebug, func(diagErr error) {
		logctx.LogEvent(diagCtx, global.VerbosityStandard, global.WarnLog, "%v\n", diagErr)
	})

	// Receive pipeline, leaves first
	rotator := rotation.New(daemon.cfg.MaxArchiveFiles)
	logWriter := writer.New(daemon.cfg.MaxLogSize, rotator)
	registry := hosts.New(daemon.cfg.LogPath)
	daemon.worker = listener.New([]string{global.NSRecv}, daemon.transport, registry, logWriter, sink, daemon.forwarder)

	daemon.group, daemon.groupCtx = errgroup.WithContext(daemon.ctx)

	// Worker
	workerCtx := daemon.ctx
	daemon.group.Go(func() (err error) {
		defer close(daemon.workerDone)
		err = daemon.worker.Run(workerCtx)
		if err != nil {
			daemon.fatalErr = err
			logctx.LogEvent(workerCtx, global.VerbosityStandard, global.ErrorLog,
				"Receive worker stopped: %v\n", err)
		}
		return
	})

	// Metrics Collector
	sources := []metrics.Collector{daemon.worker}
	if daemon.forwarder != nil {
		sources = append(sources, daemon.forwarder)
	}
	daemon.metricsCollector = metrics.New([]string{global.NSRecv},
		daemon.cfg.MetricCollectionInterval,
		daemon.cfg.MetricMaxAge,
		sources...)
	daemon.MetricDataSearcher = daemon.metricsCollector.Registry.Search
	daemon.MetricDiscoverer = daemon.metricsCollector.Registry.Discover
	daemon.group.Go(func() error {
		daemon.metricsCollector.Run(daemon.groupCtx)
		return nil
	})

	// Metric Server
	if daemon.cfg.MetricQueryServerEnabled {
		// Top level tag for metric server logs (copy so return doesn't strip ns tags)
		serverCtx := daemon.ctx
		serverCtx = logctx.AppendCtxTag(serverCtx, global.NSMetric)
		serverCtx = logctx.AppendCtxTag(serverCtx, global.NSMetricSrv)

		daemon.MetricServer = server.SetupListener(serverCtx,
			daemon.cfg.MetricQueryServerPort,
			daemon.MetricDataSearcher,
			daemon.MetricDiscoverer)
		daemon.group.Go(func() error {
			// Query server failure does not stop log reception
			srvErr := server.Start(serverCtx, daemon.MetricServer)
			if srvErr != nil {
				logctx.LogEvent(serverCtx, global.VerbosityStandard, global.ErrorLog,
					"Metric query server stopped: %v\n", srvErr)
			}
			return nil
		})
	}

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
		"Receiving on udp port %d into %s (rotate above %s, keep %d archives)\n",
		daemon.cfg.ListenPort, daemon.cfg.LogPath,
		humanize.IBytes(uint64(daemon.cfg.MaxLogSize)), daemon.cfg.MaxArchiveFiles)

	err = lifecycle.NotifyReady(daemon.ctx)
	if err != nil {
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify ready failed: %v\n", err)
		err = nil
	}
	err = lifecycle.NotifyStatus(daemon.ctx, "Receiving on "+daemon.LocalAddr().String())
	if err != nil {
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify status failed: %v\n", err)
		err = nil
	}

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog, "Startup complete.\n")
	return
}

// Blocks until the daemon is stopped or the worker fails.
// Returns the worker failure, if any.
func (daemon *Daemon) Run() (err error) {
	<-daemon.groupCtx.Done()
	err = daemon.fatalErr
	return
}

// Stops reception and background tasks (errors are printed to program log buffer).
// Safe to call more than once.
func (daemon *Daemon) Shutdown() {
	daemon.stopOnce.Do(daemon.shutdown)
}

func (daemon *Daemon) shutdown() {
	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
		"Daemon shutdown started...\n")

	err := lifecycle.NotifyStopping(daemon.ctx)
	if err != nil {
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify stopping failed: %v\n", err)
	}

	// Stop metric server
	if daemon.MetricServer != nil {
		srvCtx, srvCancel := context.WithTimeout(context.Background(), global.HTTPWriteTimeout)
		err := daemon.MetricServer.Shutdown(srvCtx)
		srvCancel()
		if err != nil && err != http.ErrServerClosed {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"metric HTTP server did not shutdown gracefully: %v\n", err)
		}
	}

	// Request stop, worker observes it after its current datagram
	daemon.cancel()

	if daemon.worker != nil {
		select {
		case <-daemon.workerDone:
		case <-time.After(global.WorkerStopGracePeriod):
			// Still idle in receive, closing the socket unblocks it
			logctx.LogEvent(daemon.ctx, global.VerbosityProgress, global.InfoLog,
				"Receive worker idle after %v, closing socket\n", global.WorkerStopGracePeriod)
		}
	}
	if daemon.transport != nil {
		err = daemon.transport.Close()
		if err != nil && !errors.Is(err, net.ErrClosed) {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"failed closing receive socket: %v\n", err)
		}
	}

	// Wait for all tasks to finish (with timeout)
	if daemon.group != nil {
		done := make(chan struct{})
		go func() {
			daemon.group.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(global.ReceiveShutdownTimeout):
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"Timeout: receive daemon did not shutdown within %v seconds\n",
				global.ReceiveShutdownTimeout.Seconds())
			return
		}
	}

	err = daemon.forwarder.Shutdown()
	if err != nil {
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
			"beats output did not close cleanly: %v\n", err)
	}

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
		"Daemon shutdown completed successfully\n")
}

// Address the receive socket is bound to (nil before Start)
func (daemon *Daemon) LocalAddr() (addr net.Addr) {
	if daemon.transport == nil {
		return
	}
	addr = daemon.transport.LocalAddr()
	return
}
