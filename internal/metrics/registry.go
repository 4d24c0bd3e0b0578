// Central registry for storing time-based metrics gathered from receiver components
package metrics

import (
	"sort"
	"strings"
	"time"
)

// Creates new metric registry storage
func New() (registry *Registry) {
	registry = &Registry{
		slices: make(map[time.Time]map[string]map[string]Metric),
	}
	return
}

// Allocates (or reuses) the slice for the interval containing now
func (registry *Registry) NewTimeSlice(now time.Time, interval time.Duration) (timeSlice time.Time) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	timeSlice = now
	if interval > 0 {
		timeSlice = now.Truncate(interval)
	}
	if registry.slices[timeSlice] == nil {
		registry.slices[timeSlice] = make(map[string]map[string]Metric)
	}
	return
}

// Stores metrics under an existing time slice. Unknown slices are ignored.
func (registry *Registry) Add(timeSlice time.Time, collection []Metric) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	byNamespace, ok := registry.slices[timeSlice]
	if !ok {
		return
	}
	for _, metric := range collection {
		ns := strings.Join(metric.Namespace, "/")
		if byNamespace[ns] == nil {
			byNamespace[ns] = make(map[string]Metric)
		}
		byNamespace[ns][metric.Name] = metric
	}
}

// Deletes slices older than maxAge relative to currentTime
func (registry *Registry) Prune(currentTime time.Time, maxAge time.Duration) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	for timeSlice := range registry.slices {
		if currentTime.Sub(timeSlice) > maxAge {
			delete(registry.slices, timeSlice)
		}
	}
}

// Returns metrics matching name (empty = all) under namespace prefix (empty = all)
// whose slice falls inside [start, end] (zero bounds are open). Oldest first.
func (registry *Registry) Search(name string, namespacePrefix []string, start, end time.Time) (results []Metric) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	var timestamps []time.Time
	for ts := range registry.slices {
		if !start.IsZero() && ts.Before(start) {
			continue
		}
		if !end.IsZero() && ts.After(end) {
			continue
		}
		timestamps = append(timestamps, ts)
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i].Before(timestamps[j]) })

	for _, ts := range timestamps {
		var sliceResults []Metric
		for ns, byName := range registry.slices[ts] {
			if !hasPrefix(strings.Split(ns, "/"), namespacePrefix) {
				continue
			}
			for metricName, metric := range byName {
				if name == "" || metricName == name {
					sliceResults = append(sliceResults, metric)
				}
			}
		}
		sortMetrics(sliceResults)
		results = append(results, sliceResults...)
	}
	return
}

// Lists distinct metrics (without values) matching the filters, across all time
func (registry *Registry) Discover(name string, namespacePrefix []string, metricType MetricType) (results []Metric) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	seen := make(map[string]bool)
	for _, byNamespace := range registry.slices {
		for ns, byName := range byNamespace {
			if !hasPrefix(strings.Split(ns, "/"), namespacePrefix) {
				continue
			}
			for _, metric := range byName {
				if name != "" && !strings.Contains(metric.Name, name) {
					continue
				}
				if metricType != "" && metric.Type != metricType {
					continue
				}
				key := ns + "|" + metric.Name
				if seen[key] {
					continue
				}
				seen[key] = true

				results = append(results, Metric{
					Name:        metric.Name,
					Description: metric.Description,
					Namespace:   metric.Namespace,
					Type:        metric.Type,
					Value:       MetricValue{Unit: metric.Value.Unit},
				})
			}
		}
	}
	sortMetrics(results)
	return
}

// Exact or prefix namespace match, ignoring empty trailing query components
func hasPrefix(metricNS, queryNS []string) (matches bool) {
	for len(queryNS) > 0 && queryNS[len(queryNS)-1] == "" {
		queryNS = queryNS[:len(queryNS)-1]
	}
	if len(metricNS) < len(queryNS) {
		return
	}
	for i := range queryNS {
		if metricNS[i] != queryNS[i] {
			return
		}
	}
	matches = true
	return
}

func sortMetrics(list []Metric) {
	sort.Slice(list, func(i, j int) bool {
		nsI, nsJ := strings.Join(list[i].Namespace, "/"), strings.Join(list[j].Namespace, "/")
		if nsI != nsJ {
			return nsI < nsJ
		}
		return list[i].Name < list[j].Name
	})
}
