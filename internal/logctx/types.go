package logctx

import (
	"sync"
	"time"
)

// Single recorded log event
type Event struct {
	Timestamp time.Time
	Severity  string
	Tags      []string
	Message   string
}

// Buffered event logger shared through context
type Logger struct {
	ID         string
	CreatedAt  time.Time
	PrintLevel int             // Highest verbosity level that is recorded (errors always recorded)
	Done       <-chan struct{} // Closed when watchers should drain and exit
	queue      []Event         // pending events not yet consumed by a watcher
	mutex      sync.Mutex      // protects queue and PrintLevel
	cond       *sync.Cond      // signals watchers that events are pending
	wg         *sync.WaitGroup // tracks running watchers
}

// Repeated message suppression state for a watcher
type dedupState struct {
	lastMsg          string
	repeatCount      int
	lastSuppressTime time.Time
}
