package writer

import (
	"context"
	"hostlogd/internal/receiver/rotation"
)

// Anything able to rotate one log file in a directory
type Rotator interface {
	Rotate(ctx context.Context, directoryPath string, filename string) (result rotation.Result, err error)
}

// Appends message bodies to per-host log files, rotating when over threshold
type Writer struct {
	maxLogSize int64
	fileMode   uint32
	rotator    Rotator
}

// Outcome of a single write
type Result struct {
	Path         string
	BytesWritten int
	Rotated      bool            // rotation ran to completion before the append
	Rotation     rotation.Result // details when a rotation was attempted
	RotationErr  error           // rotation failed; append was still attempted
}
