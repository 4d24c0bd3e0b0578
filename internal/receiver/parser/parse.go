// Splits raw datagram payloads into target filename and body.
//
// Wire format is '<filename>:<body>'. The filename ends at the first ':'; there is no
// escape for a ':' inside a filename, everything after the first ':' is body.
package parser

import (
	"fmt"
	"hostlogd/internal/global"
	"hostlogd/internal/receiver/shared"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const delimiter = ':'

// Parses a raw payload. Never touches the filesystem.
func Parse(payload []byte) (msg LogMessage, err error) {
	text := string(payload)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, string(utf8.RuneError))
	}

	delimIndex := strings.IndexByte(text, delimiter)
	if delimIndex == -1 {
		err = shared.NewError(shared.KindParse, "split", "", ErrMissingDelim)
		return
	}

	filename := text[:delimIndex]
	err = ValidateFilename(filename)
	if err != nil {
		err = shared.NewError(shared.KindParse, "validate", "", err)
		return
	}

	msg.TargetFilename = filename
	msg.Body = text[delimIndex+1:]
	return
}

// Syntactic check that name is usable as a single file name inside a host directory
func ValidateFilename(name string) (err error) {
	switch {
	case name == "":
		err = fmt.Errorf("%w: empty name", ErrInvalidFilename)
	case len(name) > global.MaxFileNameLength:
		err = fmt.Errorf("%w: name longer than %d bytes", ErrInvalidFilename, global.MaxFileNameLength)
	case name == "." || name == "..":
		err = fmt.Errorf("%w: %q is a directory reference", ErrInvalidFilename, name)
	case strings.ContainsAny(name, "/\x00") || strings.ContainsRune(name, filepath.Separator):
		err = fmt.Errorf("%w: %q contains a path separator or NUL", ErrInvalidFilename, name)
	case !filepath.IsLocal(name) || filepath.Base(name) != name:
		err = fmt.Errorf("%w: %q is not a plain file name on this system", ErrInvalidFilename, name)
	}
	return
}
