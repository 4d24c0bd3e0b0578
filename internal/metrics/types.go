package metrics

import (
	"sync"
	"time"
)

type MetricType string

const (
	Counter MetricType = "counter" // per-interval count, reset on collection
	Gauge   MetricType = "gauge"   // point-in-time reading
)

// Time-sliced metric storage.
// slices[interval start][namespace joined by '/'][metric name]
type Registry struct {
	mu     sync.RWMutex
	slices map[time.Time]map[string]map[string]Metric
}

// Container for a metric and associated data
type Metric struct {
	Name        string // e.g. written_messages, rotations
	Description string
	Namespace   []string // e.g. "Receiver/Worker"
	Value       MetricValue
	Type        MetricType
	Timestamp   time.Time // when the value was read
}

type MetricValue struct {
	Raw      uint64
	Unit     string        // e.g. "count", "bytes"
	Interval time.Duration // window the value covers
}

// JSON form served by the query server
type JMetric struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Namespace   string       `json:"namespace"`
	Value       JMetricValue `json:"value"`
	Type        string       `json:"type"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

type JMetricValue struct {
	Raw      uint64 `json:"raw"`
	Unit     string `json:"unit"`
	Interval string `json:"interval,omitempty"`
}
