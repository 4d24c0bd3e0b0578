package listener

import (
	"hostlogd/internal/metrics"
	"time"
)

func (instance *Instance) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	// Read and clear
	received := instance.Metrics.Received.Swap(0)
	transportErrs := instance.Metrics.TransportErrors.Swap(0)
	parseErrs := instance.Metrics.ParseErrors.Swap(0)
	dirErrs := instance.Metrics.DirectoryErrors.Swap(0)
	writeErrs := instance.Metrics.WriteErrors.Swap(0)
	rotationErrs := instance.Metrics.RotationErrors.Swap(0)
	written := instance.Metrics.Written.Swap(0)
	bytesWritten := instance.Metrics.BytesWritten.Swap(0)
	rotations := instance.Metrics.Rotations.Swap(0)
	newHosts := instance.Metrics.NewHosts.Swap(0)
	busyNs := instance.Metrics.BusyNs.Swap(0)
	knownHosts := instance.Metrics.KnownHosts.Load()

	// Record read time
	recordTime := time.Now()

	var busyPct uint64
	if interval > 0 {
		busyPct = busyNs * 100 / uint64(interval.Nanoseconds())
	}

	ns := instance.Namespace

	bytesMetric := metrics.NewCounter("written_bytes", "Bytes appended to log files in the interval", ns, bytesWritten, interval, recordTime)
	bytesMetric.Value.Unit = "bytes"

	collection = []metrics.Metric{
		metrics.NewCounter("received_datagrams", "Datagrams read from the socket in the interval", ns, received, interval, recordTime),
		metrics.NewCounter("transport_errors", "Socket read failures in the interval", ns, transportErrs, interval, recordTime),
		metrics.NewCounter("parse_errors", "Datagrams dropped for a missing delimiter or invalid filename", ns, parseErrs, interval, recordTime),
		metrics.NewCounter("directory_errors", "Messages dropped because the host directory was unusable", ns, dirErrs, interval, recordTime),
		metrics.NewCounter("write_errors", "Messages dropped because the append failed", ns, writeErrs, interval, recordTime),
		metrics.NewCounter("rotation_errors", "Rotations aborted in the interval", ns, rotationErrs, interval, recordTime),
		metrics.NewCounter("written_messages", "Messages appended to log files in the interval", ns, written, interval, recordTime),
		metrics.NewCounter("rotations", "Completed log rotations in the interval", ns, rotations, interval, recordTime),
		metrics.NewCounter("new_hosts", "Hosts seen for the first time in the interval", ns, newHosts, interval, recordTime),
		bytesMetric,
		metrics.NewGauge("known_hosts", "Distinct hosts with a log directory", ns, knownHosts, "count", recordTime),
		metrics.NewGauge("busy_time_percent", "Share of the interval spent processing datagrams", ns, busyPct, "%", recordTime),
	}
	return
}
