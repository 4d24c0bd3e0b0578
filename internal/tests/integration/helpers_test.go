package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"hostlogd/internal/logctx"
	"hostlogd/internal/metrics"
	"net"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

// Uses logger in context to search logger buffer for events matching all non-empty filters
func filterLogBuffer(ctx context.Context, searchText, searchTag, searchSeverity string) (matches string, found bool) {
	logger := logctx.GetLogger(ctx)
	if logger == nil {
		return
	}

	var foundLines []string
	for _, line := range logger.GetFormattedLogLines() {
		if searchTag != "" && !strings.Contains(line, searchTag) {
			continue
		}
		if searchSeverity != "" && !strings.Contains(line, "["+searchSeverity+"]") {
			continue
		}
		if searchText != "" && !strings.Contains(line, searchText) {
			continue
		}
		foundLines = append(foundLines, line)
		found = true
	}

	matches = strings.Join(foundLines, "")
	return
}

func freeUDPPort(t *testing.T) int {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("reserve udp port: %v", err)
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).Port
}

func freeTCPPort(t *testing.T) int {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserve tcp port: %v", err)
	}
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port
}

// Polls until path holds exactly want, or the timeout passes
func waitForContent(path string, want string, timeout time.Duration) (got string, err error) {
	deadline := time.Now().Add(timeout)
	for {
		data, readErr := os.ReadFile(path)
		got = string(data)
		if readErr == nil && got == want {
			return
		}
		if time.Now().After(deadline) {
			err = fmt.Errorf("timeout waiting for %s (last read err: %v)", path, readErr)
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
}

// Sums a counter across every time slice the query server returns
func sumMetric(t *testing.T, port int, namespace, name string) (total uint64, err error) {
	t.Helper()
	url := fmt.Sprintf("http://127.0.0.1:%d/data/%s?name=%s&starttime=-5m", port, namespace, name)
	resp, err := http.Get(url)
	if err != nil {
		return
	}
	defer resp.Body.Close()

	var results []metrics.JMetric
	err = json.NewDecoder(resp.Body).Decode(&results)
	if err != nil {
		// No results yet is served as a JSON error object
		err = fmt.Errorf("decode %s: %v", url, err)
		return
	}
	for _, result := range results {
		total += result.Value.Raw
	}
	return
}
