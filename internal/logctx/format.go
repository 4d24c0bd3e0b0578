package logctx

import (
	"strings"
	"time"
)

const fixedWidthRFC3339 string = "2006-01-02T15:04:05.000000000Z07:00"

// Stringify full event.
// Fmt: '[2026-01-02T03:04:05.000000001-07:00] [Receiver/Worker] [Warn] message'
func (event Event) Format() (text string) {
	var parts []string
	if !event.Timestamp.IsZero() {
		parts = append(parts, "["+padTimestamp(event.Timestamp)+"]")
	}
	if len(event.Tags) > 0 {
		parts = append(parts, "["+strings.Join(event.Tags, "/")+"]")
	}
	if event.Severity != "" {
		parts = append(parts, "["+event.Severity+"]")
	}
	if event.Message != "" {
		parts = append(parts, event.Message)
	}

	// No newline added, message creator determines newlines
	text = strings.Join(parts, " ")
	return
}

// Fixed width RFC3339 timestamps (nanoseconds always 9 digits)
func padTimestamp(timestamp time.Time) (formatted string) {
	formatted = timestamp.Format(fixedWidthRFC3339)
	return
}
