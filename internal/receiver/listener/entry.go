// Receives datagrams and runs each one through parse, host lookup and write
package listener

import (
	"context"
	"errors"
	"fmt"
	"hostlogd/internal/externalio/beats"
	"hostlogd/internal/externalio/diag"
	"hostlogd/internal/global"
	"hostlogd/internal/logctx"
	"hostlogd/internal/receiver/hosts"
	"hostlogd/internal/receiver/parser"
	"hostlogd/internal/receiver/shared"
	"hostlogd/internal/receiver/writer"
	"net"
	"runtime/debug"
	"time"
)

func New(namespace []string, transport Transport, registry *hosts.Registry, logWriter *writer.Writer, sink *diag.Sink, forwarder *beats.OutModule) (new *Instance) {
	new = &Instance{
		Namespace: append(append([]string{}, namespace...), global.NSWorker),
		transport: transport,
		registry:  registry,
		writer:    logWriter,
		sink:      sink,
		forwarder: forwarder,

		errorBackoff: global.TransportErrorBackoff,
	}
	return
}

// Processes datagrams until the context is cancelled or the transport is closed.
// Cancellation is only observed between datagrams; a receive in progress is not interrupted.
// Returns a non-nil error only when the transport closed without cancellation.
func (instance *Instance) Run(ctx context.Context) (err error) {
	ctx = logctx.AppendCtxTag(ctx, global.NSWorker)

	for {
		var stop bool
		stop, err = instance.next(ctx)
		if stop || err != nil {
			return
		}

		// Stop checkpoint
		if ctx.Err() != nil {
			logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog, "Stop requested, receive worker exiting\n")
			return
		}
	}
}

// Receives and handles exactly one datagram
func (instance *Instance) next(ctx context.Context) (stop bool, err error) {
	remoteAddress, payload, recvErr := instance.transport.Receive()
	if recvErr != nil {
		if errors.Is(recvErr, net.ErrClosed) {
			stop = true
			if ctx.Err() == nil {
				err = shared.NewError(shared.KindTransport, "receive", "", recvErr)
			}
			return
		}

		instance.Metrics.TransportErrors.Add(1)
		instance.report(ctx, global.ErrorLog, "Failed reading data from socket: %v", shared.NewError(shared.KindTransport, "receive", "", recvErr))

		// Persistent socket faults would otherwise spin this loop
		select {
		case <-ctx.Done():
		case <-time.After(instance.errorBackoff):
		}
		return
	}
	instance.Metrics.Received.Add(1)

	start := time.Now()
	func() {
		defer func() {
			// Record panics and continue receiving
			if fatalError := recover(); fatalError != nil {
				stack := debug.Stack()
				logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
					"panic in receive worker: %v\n%s", fatalError, stack)
				instance.sink.RecordError(fmt.Sprintf("panic in receive worker: %v", fatalError))
			}
		}()
		instance.handle(ctx, remoteAddress, payload)
	}()
	instance.Metrics.BusyNs.Add(uint64(time.Since(start)))
	return
}

// Parse, resolve, write, forward. Every failure drops only this message.
func (instance *Instance) handle(ctx context.Context, remoteAddress string, payload []byte) {
	msg, err := parser.Parse(payload)
	if err != nil {
		instance.Metrics.ParseErrors.Add(1)
		instance.report(ctx, global.WarnLog, "Dropped datagram from %s: %v", remoteAddress, err)
		return
	}

	directoryPath, created, err := instance.registry.Resolve(remoteAddress)
	if err != nil {
		instance.Metrics.DirectoryErrors.Add(1)
		instance.report(ctx, global.ErrorLog, "Dropped message from %s for %q: %v", remoteAddress, msg.TargetFilename, err)
		return
	}
	if created {
		instance.Metrics.NewHosts.Add(1)
		instance.Metrics.KnownHosts.Store(uint64(instance.registry.Len()))
		logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
			"New host %s logging to %s\n", remoteAddress, directoryPath)
	}

	result, err := instance.writer.Write(ctx, directoryPath, msg.TargetFilename, msg.Body)
	if result.RotationErr != nil {
		instance.Metrics.RotationErrors.Add(1)
		instance.report(ctx, global.ErrorLog, "Rotation of %s aborted: %v", result.Path, result.RotationErr)
	}
	if result.Rotated {
		instance.Metrics.Rotations.Add(1)
		instance.sink.RecordDebug(fmt.Sprintf("rotated %s (%d archives found, %d renamed, %d deleted)",
			result.Path, result.Rotation.ArchivesFound, result.Rotation.Renamed, len(result.Rotation.Deleted)))
	}
	if err != nil {
		instance.Metrics.WriteErrors.Add(1)
		instance.report(ctx, global.ErrorLog, "Dropped message from %s: %v", remoteAddress, err)
		return
	}

	instance.Metrics.Written.Add(1)
	instance.Metrics.BytesWritten.Add(uint64(result.BytesWritten))
	logctx.LogEvent(ctx, global.VerbosityData, global.InfoLog,
		"Wrote %d bytes from %s to %s\n", result.BytesWritten, remoteAddress, result.Path)
	instance.sink.RecordDebug(fmt.Sprintf("wrote %d bytes from %s to %s", result.BytesWritten, remoteAddress, result.Path))

	_, err = instance.forwarder.Write(ctx, beats.Record{
		Timestamp:     time.Now(),
		RemoteAddress: remoteAddress,
		Filename:      msg.TargetFilename,
		Body:          msg.Body,
	})
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog, "%v\n", err)
	}
}

// Sends a warning or error to the console logger and the diagnostics sink
func (instance *Instance) report(ctx context.Context, severity string, format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	logctx.LogEvent(ctx, global.VerbosityStandard, severity, "%s\n", text)
	instance.sink.RecordError("[" + severity + "] " + text)
}
