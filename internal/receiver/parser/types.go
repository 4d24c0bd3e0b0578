package parser

import "errors"

// Payload split into its destination file and log text
type LogMessage struct {
	TargetFilename string
	Body           string
}

var (
	ErrInvalidFilename = errors.New("invalid filename")
	ErrMissingDelim    = errors.New("missing ':' delimiter")
)
