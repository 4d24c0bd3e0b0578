// HTTP server exposing receiver metrics to programs on the local system only
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"hostlogd/internal/global"
	"hostlogd/internal/logctx"
	"log"
	"net/http"
	"strconv"
	"strings"
)

// Sets up HTTP listener configuration for metric querying
func SetupListener(ctx context.Context, port int, search DataSearcher, discover Discoverer) (server *http.Server) {
	mux := http.NewServeMux()

	// Index lists available endpoints
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if r.URL.Path != "/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		jResp(ctx, w, map[string]string{
			"data":     global.DataPath + "<namespace>?name=&starttime=&endtime=",
			"discover": global.DiscoveryPath + "<namespace>?name=&type=",
			"version":  global.ProgVersion,
		})
	})

	mux.HandleFunc(global.DiscoveryPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handleDiscovery(ctx, discover, w, r)
	})

	mux.HandleFunc(global.DataPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handleData(ctx, search, w, r)
	})

	server = &http.Server{
		Addr:         global.HTTPListenAddr + ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  global.HTTPReadTimeout,
		WriteTimeout: global.HTTPWriteTimeout,
		IdleTimeout:  global.HTTPIdleTimeout,
		ErrorLog:     log.New(httpLogWriter{ctx: ctx}, "", 0),
	}
	return
}

// Starts the metric HTTP server and blocks serving requests
func Start(ctx context.Context, server *http.Server) (err error) {
	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog,
		"Metric query server starting on http://%s/\n", server.Addr)

	err = server.ListenAndServe()
	if err == http.ErrServerClosed {
		err = nil
	}
	return
}

// Encodes JSON and sends as response body
func jResp(ctx context.Context, w http.ResponseWriter, content any) {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(content); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Failed marshaling metric results: %v\n", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Logs HTTP server errors to internal program buffer (via context logger)
func (logWriter httpLogWriter) Write(p []byte) (n int, err error) {
	n = len(p)
	if n == 0 {
		return
	}
	logctx.LogEvent(logWriter.ctx, global.VerbosityStandard, global.ErrorLog,
		"%s\n", strings.TrimSpace(string(p)))
	return
}
