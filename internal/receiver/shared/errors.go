// Error kinds shared by every stage of the receive pipeline
package shared

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindNone      ErrorKind = ""
	KindTransport ErrorKind = "TransportError" // receive failed, loop continues
	KindParse     ErrorKind = "ParseError"     // malformed payload, message dropped
	KindDirectory ErrorKind = "DirectoryError" // host directory unusable, retried on next message
	KindWrite     ErrorKind = "WriteError"     // append failed, message dropped
	KindRotation  ErrorKind = "RotationError"  // rotation aborted, write still attempted
)

// Failure from one pipeline step with enough context to log it
type ProcessingError struct {
	Kind ErrorKind
	Op   string // e.g. "rename", "mkdir", "append"
	Path string // file or directory involved, may be empty
	Err  error
}

func (e *ProcessingError) Error() (text string) {
	text = string(e.Kind) + ": " + e.Op
	if e.Path != "" {
		text += " " + e.Path
	}
	if e.Err != nil {
		text += ": " + e.Err.Error()
	}
	return
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// Wraps err with kind and operation context. Nil in, nil out.
func NewError(kind ErrorKind, op string, path string, err error) error {
	if err == nil {
		return nil
	}
	return &ProcessingError{Kind: kind, Op: op, Path: path, Err: err}
}

// Returns the kind of the first ProcessingError in the chain
func KindOf(err error) (kind ErrorKind) {
	var procErr *ProcessingError
	if errors.As(err, &procErr) {
		kind = procErr.Kind
		return
	}
	if err != nil {
		kind = ErrorKind(fmt.Sprintf("%T", err))
	}
	return
}
