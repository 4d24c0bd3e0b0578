package metrics

import (
	"hostlogd/internal/metrics"
	"time"
)

// Any component exposing read-and-clear metrics
type Collector interface {
	CollectMetrics(interval time.Duration) []metrics.Metric
}

type Gatherer struct {
	Interval  time.Duration     // Polling interval to gather metrics at
	Retention time.Duration     // Maximum time to maintain metrics for
	Registry  *metrics.Registry // Storage for metric data
	Sources   []Collector       // Worker, forwarder and anything else registered at startup
	Namespace []string          // Namespace for system gauges
}
