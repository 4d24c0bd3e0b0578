package diag

import "time"

// Date-named error/debug trace files under the log root.
// A nil *Sink is valid and records nothing.
type Sink struct {
	errorDir     string
	debugDir     string
	errorEnabled bool
	debugEnabled bool
	now          func() time.Time
	onFailure    func(error) // reports sink failures without returning them
}
