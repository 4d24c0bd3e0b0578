package server

import (
	"context"
	"encoding/json"
	"hostlogd/internal/global"
	"hostlogd/internal/metrics"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHandleData(t *testing.T) {
	ctx := context.Background()
	sample := []metrics.Metric{
		metrics.NewCounter("written_messages", "messages written", []string{"Receiver", "Worker"}, 7, time.Minute, time.Now()),
	}

	tests := []struct {
		name       string
		path       string
		results    []metrics.Metric
		wantStatus int
		wantCount  int
	}{
		{name: "default times", path: global.DataPath + "Receiver/?name=written_messages", results: sample, wantStatus: http.StatusOK, wantCount: 1},
		{name: "invalid starttime", path: global.DataPath + "?starttime=badtime", wantStatus: http.StatusBadRequest},
		{name: "invalid relative start", path: global.DataPath + "?starttime=-5w", wantStatus: http.StatusBadRequest},
		{name: "future start", path: global.DataPath + "?starttime=+15m", wantStatus: http.StatusBadRequest},
		{name: "invalid end", path: global.DataPath + "?endtime=+2y", wantStatus: http.StatusBadRequest},
		{name: "relative start past", path: global.DataPath + "?starttime=-5m", results: sample, wantStatus: http.StatusOK, wantCount: 1},
		{name: "absolute start", path: global.DataPath + "?starttime=2001-01-02T01:02:03.001Z&endtime=now", results: sample, wantStatus: http.StatusOK, wantCount: 1},
		{name: "empty results as JSON error", path: global.DataPath, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)

			handleData(ctx, mockDataSearcher(tt.results), rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status=%d want=%d", rr.Code, tt.wantStatus)
			}
			if rr.Code != http.StatusOK {
				return
			}
			if tt.wantCount == 0 {
				var jerr Jerror
				if err := json.Unmarshal(rr.Body.Bytes(), &jerr); err != nil || jerr.Msg == "" {
					t.Fatalf("expected JSON error body, got %q", rr.Body.String())
				}
				return
			}
			var got []metrics.JMetric
			if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(got) != tt.wantCount || got[0].Namespace != "Receiver/Worker" {
				t.Fatalf("unexpected body %q", rr.Body.String())
			}
		})
	}
}

func TestHandleDiscovery(t *testing.T) {
	ctx := context.Background()
	sample := []metrics.Metric{{Name: "rotations", Namespace: []string{"Receiver", "Worker"}, Type: metrics.Counter}}

	tests := []struct {
		name       string
		query      string
		results    []metrics.Metric
		wantStatus int
	}{
		{name: "all", query: "", results: sample, wantStatus: http.StatusOK},
		{name: "with type", query: "Receiver/?type=Counter", results: sample, wantStatus: http.StatusOK},
		{name: "bad type", query: "?type=histogram", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, global.DiscoveryPath+tt.query, nil)

			handleDiscovery(ctx, mockDiscoverer(tt.results), rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status=%d want=%d", rr.Code, tt.wantStatus)
			}
		})
	}
}

func TestSetupListenerRoutes(t *testing.T) {
	srv := SetupListener(context.Background(), 0, mockDataSearcher(nil), mockDiscoverer(nil))

	tests := []struct {
		method     string
		path       string
		wantStatus int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/missing", http.StatusNotFound},
		{http.MethodPost, "/", http.StatusMethodNotAllowed},
		{http.MethodPost, global.DataPath, http.StatusMethodNotAllowed},
		{http.MethodGet, global.DiscoveryPath, http.StatusOK},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
		if rr.Code != tt.wantStatus {
			t.Errorf("%s %s: status=%d want=%d", tt.method, tt.path, rr.Code, tt.wantStatus)
		}
	}
}
