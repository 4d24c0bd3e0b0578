package writer

import (
	"context"
	"errors"
	"fmt"
	"hostlogd/internal/receiver/rotation"
	"hostlogd/internal/receiver/shared"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type failingRotator struct {
	calls int
}

func (f *failingRotator) Rotate(ctx context.Context, directoryPath string, filename string) (result rotation.Result, err error) {
	f.calls++
	err = shared.NewError(shared.KindRotation, "rename", filepath.Join(directoryPath, filename), errors.New("device busy"))
	return
}

func fileSize(t *testing.T, path string) (size int64) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	size = info.Size()
	return
}

// Reads archives oldest first, then the active file, and returns every line in order
func readChain(t *testing.T, dir string, filename string) (lines []string) {
	t.Helper()
	var paths []string
	for suffix := 1; ; suffix++ {
		path := filepath.Join(dir, fmt.Sprintf("%s.%d", filename, suffix))
		if _, err := os.Stat(path); err != nil {
			break
		}
		paths = append([]string{path}, paths...)
	}
	paths = append(paths, filepath.Join(dir, filename))

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		lines = append(lines, strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")...)
	}
	return
}

func TestWriteCreatesAndAppends(t *testing.T) {
	dir := t.TempDir()
	writer := New(1024, rotation.New(0))

	for _, body := range []string{"one", "two: with colon", ""} {
		result, err := writer.Write(context.Background(), dir, "app.log", body)
		if err != nil {
			t.Fatalf("write %q: %v", body, err)
		}
		if result.BytesWritten != len(body)+1 {
			t.Fatalf("wrote %d bytes for %q", result.BytesWritten, body)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "app.log"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "one\ntwo: with colon\n\n" {
		t.Fatalf("unexpected content %q", data)
	}
}

// MaxLogSize=100, MaxArchiveFiles=2, 60 byte bodies (61 bytes per line)
func TestWriteRotationScenario(t *testing.T) {
	dir := t.TempDir()
	writer := New(100, rotation.New(2))
	path := filepath.Join(dir, "app.log")

	type step struct {
		wantRotated  bool
		wantSize     int64
		wantArchives []string
	}
	steps := []step{
		{wantSize: 61},
		{wantSize: 122}, // pre-write size 61 is under the limit
		{wantRotated: true, wantSize: 61, wantArchives: []string{"app.log.1"}},
		{wantSize: 122, wantArchives: []string{"app.log.1"}}, // archives persist between rotations
		{wantRotated: true, wantSize: 61, wantArchives: []string{"app.log.1", "app.log.2"}},
		{wantSize: 122, wantArchives: []string{"app.log.1", "app.log.2"}},
		{wantRotated: true, wantSize: 61, wantArchives: []string{"app.log.1", "app.log.2"}},
	}

	var sent []string
	for i, st := range steps {
		body := fmt.Sprintf("%02d%s", i+1, strings.Repeat("x", 58))
		sent = append(sent, body)

		result, err := writer.Write(context.Background(), dir, "app.log", body)
		if err != nil {
			t.Fatalf("message %d: %v", i+1, err)
		}
		if result.RotationErr != nil {
			t.Fatalf("message %d: rotation error %v", i+1, result.RotationErr)
		}
		if result.Rotated != st.wantRotated {
			t.Fatalf("message %d: rotated=%v want %v", i+1, result.Rotated, st.wantRotated)
		}
		if got := fileSize(t, path); got != st.wantSize {
			t.Fatalf("message %d: size %d want %d", i+1, got, st.wantSize)
		}

		matches, _ := filepath.Glob(path + ".*")
		var archives []string
		for _, m := range matches {
			archives = append(archives, filepath.Base(m))
		}
		if diff := cmp.Diff(st.wantArchives, archives); diff != "" {
			t.Fatalf("message %d: archives (-want +got):\n%s", i+1, diff)
		}
	}

	// Oldest two messages were retired by retention, the rest read back in order
	if diff := cmp.Diff(sent[2:], readChain(t, dir, "app.log")); diff != "" {
		t.Fatalf("chain order (-want +got):\n%s", diff)
	}
}

func TestWriteUnlimitedRetentionKeepsEverything(t *testing.T) {
	dir := t.TempDir()
	writer := New(10, rotation.New(0))

	var sent []string
	for i := 0; i < 25; i++ {
		body := fmt.Sprintf("message-%03d", i)
		sent = append(sent, body)
		if _, err := writer.Write(context.Background(), dir, "svc.log", body); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	if diff := cmp.Diff(sent, readChain(t, dir, "svc.log")); diff != "" {
		t.Fatalf("messages lost or reordered (-want +got):\n%s", diff)
	}
}

func TestWriteRotationFailureStillAppends(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	if err := os.WriteFile(path, []byte(strings.Repeat("z", 50)), 0640); err != nil {
		t.Fatalf("setup: %v", err)
	}

	rotator := &failingRotator{}
	result, err := New(10, rotator).Write(context.Background(), dir, "app.log", "after")
	if err != nil {
		t.Fatalf("append should succeed: %v", err)
	}
	if rotator.calls != 1 {
		t.Fatalf("expected one rotation attempt, got %d", rotator.calls)
	}
	if result.Rotated || shared.KindOf(result.RotationErr) != shared.KindRotation {
		t.Fatalf("expected reported rotation failure, got rotated=%v err=%v", result.Rotated, result.RotationErr)
	}
	if got := fileSize(t, path); got != 56 {
		t.Fatalf("expected append onto over-threshold file, size %d", got)
	}
}

func TestWriteAtThresholdDoesNotRotate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	if err := os.WriteFile(path, []byte(strings.Repeat("z", 10)), 0640); err != nil {
		t.Fatalf("setup: %v", err)
	}

	rotator := &failingRotator{}
	if _, err := New(10, rotator).Write(context.Background(), dir, "app.log", "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rotator.calls != 0 {
		t.Fatalf("size equal to limit must not rotate")
	}
}

func TestWriteMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "removed")
	_, err := New(10, rotation.New(0)).Write(context.Background(), dir, "app.log", "x")
	if shared.KindOf(err) != shared.KindWrite {
		t.Fatalf("expected write error kind, got %v", err)
	}
}
