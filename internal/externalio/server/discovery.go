package server

import (
	"context"
	"hostlogd/internal/global"
	"hostlogd/internal/metrics"
	"net/http"
	"strings"
)

// Lists available metrics without values
func handleDiscovery(ctx context.Context, discover Discoverer, w http.ResponseWriter, r *http.Request) {
	reqNamespace := splitNamespace(strings.TrimPrefix(r.URL.Path, global.DiscoveryPath))
	reqName := r.FormValue("name")

	var reqType metrics.MetricType
	switch rawType := metrics.MetricType(strings.ToLower(r.FormValue("type"))); rawType {
	case metrics.Counter, metrics.Gauge, "":
		reqType = rawType
	default:
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var results []metrics.JMetric
	for _, metric := range discover(reqName, reqNamespace, reqType) {
		results = append(results, metric.Convert())
	}

	if len(results) == 0 {
		jResp(ctx, w, Jerror{Msg: "Search returned no results"})
		return
	}
	jResp(ctx, w, results)
}
