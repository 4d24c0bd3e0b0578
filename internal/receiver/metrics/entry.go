// Gathers component metrics and saves to central registry
package metrics

import (
	"context"
	"hostlogd/internal/global"
	"hostlogd/internal/logctx"
	"hostlogd/internal/metrics"
	"runtime/debug"
	"time"

	"github.com/pbnjay/memory"
)

func New(namespace []string, interval time.Duration, maximumMetricAge time.Duration, sources ...Collector) (new *Gatherer) {
	new = &Gatherer{
		Registry:  metrics.New(),
		Sources:   sources,
		Interval:  interval,
		Retention: maximumMetricAge,
		Namespace: append(append([]string{}, namespace...), global.NSSystem),
	}
	return
}

func (gatherer *Gatherer) Run(ctx context.Context) {
	ctx = logctx.AppendCtxTag(ctx, global.NSMetric)

	lastRun := time.Now()

	ticker := time.NewTicker(gatherer.Interval / 2) // Use polling interval half of desired record interval
	defer ticker.Stop()

	// Counter to track how many ticks have passed (for retention)
	var tickCount int

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if now.Sub(lastRun) >= gatherer.Interval {
				timeSlice := gatherer.Registry.NewTimeSlice(now, gatherer.Interval)
				lastRun = now
				gatherer.runIntervalTasks(ctx, timeSlice, gatherer.Interval)
			}

			// Conduct old metric cleanup
			tickCount++
			if tickCount >= 30 {
				gatherer.Registry.Prune(now, gatherer.Retention)
				tickCount = 0
			}
		}
	}
}

// Read every source once and store the results under timeSlice
func (gatherer *Gatherer) runIntervalTasks(ctx context.Context, timeSlice time.Time, interval time.Duration) {
	// Record panics and continue on next interval
	defer func() {
		if fatalError := recover(); fatalError != nil {
			stack := debug.Stack()
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"panic in receiver metric collector thread: %v\n%s", fatalError, stack)
		}
	}()

	for _, source := range gatherer.Sources {
		gatherer.Registry.Add(timeSlice, source.CollectMetrics(interval))
	}
	gatherer.Registry.Add(timeSlice, gatherer.systemMetrics())
}

// Host memory gauges
func (gatherer *Gatherer) systemMetrics() (collection []metrics.Metric) {
	recordTime := time.Now()
	collection = []metrics.Metric{
		metrics.NewGauge("free_memory", "Free system memory", gatherer.Namespace, memory.FreeMemory(), "bytes", recordTime),
		metrics.NewGauge("total_memory", "Total system memory", gatherer.Namespace, memory.TotalMemory(), "bytes", recordTime),
	}
	return
}
