package diag

import (
	"hostlogd/internal/global"
	"path/filepath"
	"time"
)

// Creates diagnostics sink rooted at logRoot/ScriptLogs. Returns nil when both streams are disabled.
// onFailure may be nil.
func New(logRoot string, logErrors bool, logDebug bool, onFailure func(error)) (sink *Sink) {
	if !logErrors && !logDebug {
		return
	}

	base := filepath.Join(logRoot, global.DiagRootDir)
	sink = &Sink{
		errorDir:     filepath.Join(base, global.DiagErrorDir),
		debugDir:     filepath.Join(base, global.DiagDebugDir),
		errorEnabled: logErrors,
		debugEnabled: logDebug,
		now:          time.Now,
		onFailure:    onFailure,
	}
	return
}
