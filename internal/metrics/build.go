package metrics

import (
	"strings"
	"time"
)

// Counter metric in count units
func NewCounter(name, description string, namespace []string, value uint64, interval time.Duration, recordTime time.Time) (metric Metric) {
	metric = Metric{
		Name:        name,
		Description: description,
		Namespace:   namespace,
		Value:       MetricValue{Raw: value, Unit: "count", Interval: interval},
		Type:        Counter,
		Timestamp:   recordTime,
	}
	return
}

// Gauge metric in the given unit
func NewGauge(name, description string, namespace []string, value uint64, unit string, recordTime time.Time) (metric Metric) {
	metric = Metric{
		Name:        name,
		Description: description,
		Namespace:   namespace,
		Value:       MetricValue{Raw: value, Unit: unit},
		Type:        Gauge,
		Timestamp:   recordTime,
	}
	return
}

// Converts internal metric to export (JSON) metric
func (metric Metric) Convert() (out JMetric) {
	out = JMetric{
		Name:        metric.Name,
		Description: metric.Description,
		Namespace:   strings.Join(metric.Namespace, "/"),
		Type:        string(metric.Type),
		Value: JMetricValue{
			Raw:  metric.Value.Raw,
			Unit: metric.Value.Unit,
		},
	}
	if metric.Value.Interval > 0 {
		out.Value.Interval = metric.Value.Interval.String()
	}
	if !metric.Timestamp.IsZero() {
		out.Timestamp = metric.Timestamp.Format(time.RFC3339Nano)
	}
	return
}
