package beats

import (
	"context"
	"fmt"
	"hostlogd/internal/global"
	"os"
)

// Sends one record to the beats server. Nil module is a no-op.
func (mod *OutModule) Write(ctx context.Context, record Record) (logsSent int, err error) {
	if mod == nil {
		return
	}

	fields := map[string]interface{}{
		// Minimum required fields
		"@timestamp": record.Timestamp,
		"message":    record.Body,

		"host": map[string]interface{}{
			"ip": record.RemoteAddress,
		},
		"log": map[string]interface{}{
			"file": map[string]interface{}{
				"path": record.Filename,
			},
		},
		"agent": map[string]interface{}{
			"program": global.ProgBaseName,
			"version": global.ProgVersion,
			"pid":     os.Getpid(),
		},
	}

	logsSent, err = mod.sink.Send([]interface{}{fields})
	if err != nil {
		mod.Metrics.Failed.Add(1)
		err = fmt.Errorf("failed sending to beats server %s: %w", mod.endpoint, err)
		return
	}
	mod.Metrics.Sent.Add(uint64(logsSent))
	return
}
