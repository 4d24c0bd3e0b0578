package lifecycle

import (
	"context"
	"hostlogd/internal/global"
	"hostlogd/internal/logctx"
	"os"
	"os/signal"
	"syscall"
)

type DaemonLike interface {
	Shutdown()
}

// Signals that request a graceful stop
var StopSignals = []os.Signal{syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGHUP}

// Blocks until a stop signal arrives or ctx ends, then shuts the daemon down.
// Returns the received signal (nil when ctx ended first).
func SignalHandler(ctx context.Context, daemon DaemonLike) (received os.Signal) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, StopSignals...)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		return
	case received = <-sigChan:
	}

	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Received signal: %v\n", received)

	daemon.Shutdown()
	return
}
