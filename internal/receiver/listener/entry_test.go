package listener

import (
	"context"
	"errors"
	"hostlogd/internal/externalio/diag"
	"hostlogd/internal/global"
	"hostlogd/internal/logctx"
	"hostlogd/internal/receiver/hosts"
	"hostlogd/internal/receiver/rotation"
	"hostlogd/internal/receiver/shared"
	"hostlogd/internal/receiver/writer"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type datagram struct {
	addr    string
	payload string
	err     error
}

// Replays queued datagrams then reports a closed socket
type fakeTransport struct {
	queue    []datagram
	received int
}

func (f *fakeTransport) Receive() (remoteAddress string, payload []byte, err error) {
	if f.received >= len(f.queue) {
		err = net.ErrClosed
		return
	}
	d := f.queue[f.received]
	f.received++
	remoteAddress, payload, err = d.addr, []byte(d.payload), d.err
	return
}

func newTestInstance(t *testing.T, root string, queue []datagram, sink *diag.Sink) (instance *Instance, transport *fakeTransport) {
	t.Helper()
	transport = &fakeTransport{queue: queue}
	instance = New([]string{"Test"}, transport, hosts.New(root), writer.New(100, rotation.New(2)), sink, nil)
	return
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestRunRoutesMessages(t *testing.T) {
	root := t.TempDir()
	instance, _ := newTestInstance(t, root, []datagram{
		{addr: "10.0.0.5", payload: "app.log:first"},
		{addr: "10.0.0.6", payload: "app.log:other host"},
		{addr: "10.0.0.5", payload: "app.log:second: with colon"},
		{addr: "10.0.0.5", payload: "auth.log:login"},
	}, nil)

	err := instance.Run(context.Background())
	if !errors.Is(err, net.ErrClosed) {
		t.Fatalf("expected closed transport error, got %v", err)
	}
	if kind := shared.KindOf(err); kind != shared.KindTransport {
		t.Errorf("kind = %q, want %q", kind, shared.KindTransport)
	}

	tests := []struct {
		path string
		want string
	}{
		{filepath.Join(root, "10.0.0.5", "app.log"), "first\nsecond: with colon\n"},
		{filepath.Join(root, "10.0.0.6", "app.log"), "other host\n"},
		{filepath.Join(root, "10.0.0.5", "auth.log"), "login\n"},
	}
	for _, tt := range tests {
		if got := readFile(t, tt.path); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.path, got, tt.want)
		}
	}

	if got := instance.Metrics.Written.Load(); got != 4 {
		t.Errorf("written = %d, want 4", got)
	}
	if got := instance.Metrics.NewHosts.Load(); got != 2 {
		t.Errorf("new hosts = %d, want 2", got)
	}
}

func TestRunDropsInvalidAndContinues(t *testing.T) {
	root := t.TempDir()
	instance, _ := newTestInstance(t, root, []datagram{
		{addr: "10.0.0.5", payload: "no delimiter"},
		{addr: "10.0.0.5", payload: "../escape:body"},
		{addr: "10.0.0.5", payload: ":empty name"},
		{err: errors.New("transient read failure")},
		{addr: "../bad", payload: "app.log:body"},
		{addr: "10.0.0.5", payload: "app.log:kept"},
	}, nil)

	instance.Run(context.Background())

	if got := instance.Metrics.ParseErrors.Load(); got != 3 {
		t.Errorf("parse errors = %d, want 3", got)
	}
	if got := instance.Metrics.TransportErrors.Load(); got != 1 {
		t.Errorf("transport errors = %d, want 1", got)
	}
	if got := instance.Metrics.DirectoryErrors.Load(); got != 1 {
		t.Errorf("directory errors = %d, want 1", got)
	}

	entries, err := os.ReadDir(filepath.Join(root, "10.0.0.5"))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "app.log" {
		t.Fatalf("unexpected files in host dir: %v", entries)
	}
	if got := readFile(t, filepath.Join(root, "10.0.0.5", "app.log")); got != "kept\n" {
		t.Errorf("app.log = %q", got)
	}
	if _, err := os.Stat(filepath.Join(root, "escape:body")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("invalid filename reached the filesystem")
	}
}

func TestRunStopsAtCheckpoint(t *testing.T) {
	root := t.TempDir()
	instance, transport := newTestInstance(t, root, []datagram{
		{addr: "10.0.0.5", payload: "app.log:one"},
		{addr: "10.0.0.5", payload: "app.log:two"},
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := instance.Run(ctx)
	if err != nil {
		t.Fatalf("expected clean stop, got %v", err)
	}
	if transport.received != 1 {
		t.Fatalf("expected exactly one datagram processed before stopping, got %d", transport.received)
	}
	if got := readFile(t, filepath.Join(root, "10.0.0.5", "app.log")); got != "one\n" {
		t.Errorf("app.log = %q", got)
	}
}

func TestRunClosedAfterCancelIsClean(t *testing.T) {
	instance, _ := newTestInstance(t, t.TempDir(), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := instance.Run(ctx); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestRunRecordsDiagnostics(t *testing.T) {
	root := t.TempDir()
	sink := diag.New(root, true, true, nil)
	instance, _ := newTestInstance(t, root, []datagram{
		{addr: "10.0.0.5", payload: "garbage"},
		{addr: "10.0.0.5", payload: "app.log:fine"},
	}, sink)

	instance.Run(context.Background())

	errorFiles, err := filepath.Glob(filepath.Join(root, "ScriptLogs", "Errors", "*.log"))
	if err != nil || len(errorFiles) != 1 {
		t.Fatalf("expected one error file, got %v (%v)", errorFiles, err)
	}
	if got := readFile(t, errorFiles[0]); !strings.Contains(got, "Dropped datagram from 10.0.0.5") {
		t.Errorf("error file missing parse failure: %q", got)
	}

	debugFiles, err := filepath.Glob(filepath.Join(root, "ScriptLogs", "Debug", "*.log"))
	if err != nil || len(debugFiles) != 1 {
		t.Fatalf("expected one debug file, got %v (%v)", debugFiles, err)
	}
	if got := readFile(t, debugFiles[0]); !strings.Contains(got, "wrote 5 bytes from 10.0.0.5") {
		t.Errorf("debug file missing write record: %q", got)
	}
}

func TestRunRotatesInOrder(t *testing.T) {
	root := t.TempDir()
	body := strings.Repeat("x", 59)

	var queue []datagram
	var sent []string
	for i := 0; i < 7; i++ {
		line := string(rune('a'+i)) + body
		sent = append(sent, line)
		queue = append(queue, datagram{addr: "10.0.0.5", payload: "app.log:" + line})
	}
	instance, _ := newTestInstance(t, root, queue, nil)
	instance.Run(context.Background())

	dir := filepath.Join(root, "10.0.0.5")
	var chain []string
	for _, name := range []string{"app.log.2", "app.log.1", "app.log"} {
		for _, line := range strings.Split(strings.TrimSuffix(readFile(t, filepath.Join(dir, name)), "\n"), "\n") {
			chain = append(chain, line)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "app.log.3")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("retention exceeded: app.log.3 exists")
	}
	if strings.Join(chain, ",") != strings.Join(sent[2:], ",") {
		t.Errorf("chain order broken:\n got %v\nwant %v", chain, sent[2:])
	}
	if got := instance.Metrics.Rotations.Load(); got != 3 {
		t.Errorf("rotations = %d, want 3", got)
	}
}

func TestRunBacksOffAfterTransportError(t *testing.T) {
	instance, transport := newTestInstance(t, t.TempDir(), []datagram{
		{err: errors.New("socket fault")},
		{err: errors.New("socket fault")},
	}, nil)
	instance.errorBackoff = 40 * time.Millisecond

	start := time.Now()
	instance.Run(context.Background())
	elapsed := time.Since(start)

	if elapsed < 2*instance.errorBackoff {
		t.Errorf("two receive errors took %v, want at least %v", elapsed, 2*instance.errorBackoff)
	}
	if transport.received != 2 {
		t.Errorf("received = %d, want 2", transport.received)
	}
	if got := instance.Metrics.TransportErrors.Load(); got != 2 {
		t.Errorf("transport errors = %d, want 2", got)
	}
}

func TestRunBackoffEndsOnCancel(t *testing.T) {
	instance, _ := newTestInstance(t, t.TempDir(), []datagram{
		{err: errors.New("socket fault")},
	}, nil)
	instance.errorBackoff = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	finished := make(chan error, 1)
	go func() { finished <- instance.Run(ctx) }()

	select {
	case err := <-finished:
		if err != nil {
			t.Fatalf("expected clean stop, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run stayed in backoff after cancellation")
	}
}

func TestReportKeepsPercentLiteral(t *testing.T) {
	done := make(chan struct{})
	defer close(done)
	ctx := logctx.New(context.Background(), global.NSTest, global.VerbosityStandard, done)

	instance, _ := newTestInstance(t, t.TempDir(), nil, nil)
	instance.report(ctx, global.WarnLog, "Dropped datagram from %s: %v", "10.0.0.5", errors.New("disk 100%d full"))

	lines := logctx.GetLogger(ctx).GetFormattedLogLines()
	if len(lines) != 1 {
		t.Fatalf("expected one log line, got %v", lines)
	}
	if !strings.HasSuffix(lines[0], "Dropped datagram from 10.0.0.5: disk 100%d full\n") {
		t.Errorf("message altered: %q", lines[0])
	}
}

func TestKnownHostsTracksRegistry(t *testing.T) {
	instance, _ := newTestInstance(t, t.TempDir(), []datagram{
		{addr: "10.0.0.5", payload: "app.log:one"},
		{addr: "10.0.0.6", payload: "app.log:two"},
		{addr: "10.0.0.5", payload: "app.log:three"},
	}, nil)
	instance.Run(context.Background())

	if got, want := instance.Metrics.KnownHosts.Load(), uint64(instance.registry.Len()); got != want || got != 2 {
		t.Errorf("known hosts = %d, registry has %d, want 2", got, want)
	}
}
