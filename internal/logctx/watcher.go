package logctx

import (
	"fmt"
	"hostlogd/internal/global"
	"io"
	"strings"
	"time"
)

const (
	dedupWindow      time.Duration = 5 * time.Second
	dedupMinRepeats  int           = 10
	suppressCooldown time.Duration = 1 * time.Minute
)

// Starts a go routine that pops events and writes formatted output to io.Writer.
// Exits once logger.Done is closed and the queue has been drained.
func StartWatcher(logger *Logger, output io.Writer) {
	logger.wg.Add(1)

	go func() {
		defer logger.wg.Done()

		var dedup dedupState
		for {
			event, ok := logger.next()
			if !ok {
				return
			}

			now := time.Now()

			// A flood of identical messages (e.g. one bad sender retrying) is collapsed
			if event.Message != "" &&
				event.Message == dedup.lastMsg &&
				now.Sub(event.Timestamp) <= dedupWindow {

				dedup.repeatCount++
				if dedup.repeatCount >= dedupMinRepeats && now.Sub(dedup.lastSuppressTime) >= suppressCooldown {
					suppressed := Event{
						Timestamp: event.Timestamp,
						Tags:      event.Tags,
						Severity:  global.InfoLog,
						Message:   fmt.Sprintf("Suppressed %d repeated messages: %s", dedup.repeatCount, strings.TrimSuffix(dedup.lastMsg, "\n")),
					}
					fmt.Fprintln(output, suppressed.Format())

					dedup.lastSuppressTime = now
					dedup.repeatCount = 0
				}
				continue
			}
			dedup.lastMsg = event.Message
			dedup.repeatCount = 1

			fmt.Fprint(output, event.Format())
		}
	}()
}

// Blocks until an event is available. Returns false when logger is done and queue is empty.
func (logger *Logger) next() (event Event, ok bool) {
	logger.mutex.Lock()
	defer logger.mutex.Unlock()

	for len(logger.queue) == 0 {
		select {
		case <-logger.Done:
			return
		default:
			logger.cond.Wait()
		}
	}

	event = logger.queue[0]
	logger.queue = logger.queue[1:]
	ok = true
	return
}
