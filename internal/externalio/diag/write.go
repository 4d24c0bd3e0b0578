package diag

import (
	"fmt"
	"hostlogd/internal/global"
	"os"
	"path/filepath"
	"strings"
)

// Appends message to today's error file. Never fails back to the caller.
func (sink *Sink) RecordError(message string) {
	if sink == nil || !sink.errorEnabled {
		return
	}
	sink.record(sink.errorDir, message)
}

// Appends message to today's debug file. Never fails back to the caller.
func (sink *Sink) RecordDebug(message string) {
	if sink == nil || !sink.debugEnabled {
		return
	}
	sink.record(sink.debugDir, message)
}

func (sink *Sink) record(dir string, message string) {
	defer func() {
		if fatalError := recover(); fatalError != nil {
			sink.fail(fmt.Errorf("panic recording diagnostics: %v", fatalError))
		}
	}()

	now := sink.now()

	err := os.MkdirAll(dir, os.FileMode(global.LogDirMode))
	if err != nil {
		sink.fail(fmt.Errorf("failed creating diagnostics directory: %w", err))
		return
	}

	path := filepath.Join(dir, now.Format(global.DiagDateLayout)+global.DiagFileSuffix)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, os.FileMode(global.LogFileMode))
	if err != nil {
		sink.fail(fmt.Errorf("failed opening diagnostics file: %w", err))
		return
	}
	defer file.Close()

	line := now.Format("15:04:05.000") + " " + strings.TrimRight(message, "\n") + global.LineTerminator
	_, err = file.WriteString(line)
	if err != nil {
		sink.fail(fmt.Errorf("failed writing diagnostics file: %w", err))
	}
}

func (sink *Sink) fail(err error) {
	if sink.onFailure != nil {
		sink.onFailure(err)
	}
}
