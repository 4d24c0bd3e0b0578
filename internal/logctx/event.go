package logctx

import (
	"context"
	"fmt"
	"hostlogd/internal/global"
	"strings"
	"time"
)

// Entry for logging events.
// Message is only run through Sprintf when variables are given and a verb is present.
func LogEvent(ctx context.Context, eventLevel int, severity string, message string, vars ...any) {
	logger := GetLogger(ctx)
	if logger == nil {
		return
	}

	text := message
	if len(vars) > 0 && strings.Contains(message, "%") {
		text = fmt.Sprintf(message, vars...)
	}

	logger.record(eventLevel, severity, GetTagList(ctx), text)
}

// Queues event if it passes the level filter
func (logger *Logger) record(eventLevel int, severity string, tags []string, text string) {
	logger.mutex.Lock()
	defer logger.mutex.Unlock()

	if eventLevel > logger.PrintLevel && severity != global.ErrorLog {
		return
	}

	logger.queue = append(logger.queue, Event{
		Timestamp: time.Now(),
		Severity:  severity,
		Tags:      tags,
		Message:   text,
	})
	logger.cond.Signal()
}
