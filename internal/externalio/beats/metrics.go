package beats

import (
	"hostlogd/internal/metrics"
	"time"
)

func (mod *OutModule) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	if mod == nil {
		return
	}

	// Read and clear
	sent := mod.Metrics.Sent.Swap(0)
	failed := mod.Metrics.Failed.Swap(0)
	recordTime := time.Now()

	collection = []metrics.Metric{
		metrics.NewCounter("forwarded_events", "Events acknowledged by the beats endpoint", mod.Namespace, sent, interval, recordTime),
		metrics.NewCounter("forward_failures", "Send attempts to the beats endpoint that failed", mod.Namespace, failed, interval, recordTime),
	}
	return
}
