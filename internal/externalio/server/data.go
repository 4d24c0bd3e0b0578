package server

import (
	"context"
	"hostlogd/internal/global"
	"hostlogd/internal/metrics"
	"net/http"
	"strings"
	"time"
)

// Handles metric search requests for a namespace over a time window
func handleData(ctx context.Context, search DataSearcher, w http.ResponseWriter, r *http.Request) {
	reqNamespace := splitNamespace(strings.TrimPrefix(r.URL.Path, global.DataPath))
	reqName := r.FormValue("name")

	now := time.Now()
	reqStartTime, ok := parseTimeParam(r.FormValue("starttime"), now, now.Add(-1*time.Minute))
	if !ok || reqStartTime.After(now) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	reqEndTime, ok := parseTimeParam(r.FormValue("endtime"), now, now)
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var results []metrics.JMetric
	for _, metric := range search(reqName, reqNamespace, reqStartTime, reqEndTime) {
		results = append(results, metric.Convert())
	}

	if len(results) == 0 {
		jResp(ctx, w, Jerror{Msg: "Search returned no results"})
		return
	}
	jResp(ctx, w, results)
}

// Accepts "", "now", relative durations ("-5m") or RFC3339 timestamps
func parseTimeParam(raw string, now time.Time, fallback time.Time) (parsed time.Time, ok bool) {
	switch {
	case raw == "":
		parsed, ok = fallback, true
	case raw == "now":
		parsed, ok = now, true
	case raw[0] == '-' || raw[0] == '+':
		dur, err := time.ParseDuration(raw)
		if err != nil {
			return
		}
		parsed, ok = now.Add(dur), true
	default:
		var err error
		parsed, err = time.Parse(time.RFC3339Nano, raw)
		ok = err == nil
	}
	return
}

func splitNamespace(raw string) (namespace []string) {
	raw = strings.Trim(raw, "/")
	if raw == "" {
		return
	}
	namespace = strings.Split(raw, "/")
	return
}
