// Appends message bodies to log files inside a host directory
package writer

import (
	"context"
	"errors"
	"hostlogd/internal/global"
	"hostlogd/internal/logctx"
	"hostlogd/internal/receiver/shared"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
)

// Creates a writer that rotates any file already larger than maxLogSize bytes before appending
func New(maxLogSize int64, rotator Rotator) (writer *Writer) {
	writer = &Writer{
		maxLogSize: maxLogSize,
		fileMode:   global.LogFileMode,
		rotator:    rotator,
	}
	return
}

// Appends body plus line terminator to directoryPath/filename.
// Size is checked before appending, so the file may end slightly over the threshold
// and the body that triggers a rotation always lands in the fresh file.
// A rotation failure is reported in result.RotationErr and does not stop the append.
func (writer *Writer) Write(ctx context.Context, directoryPath string, filename string, body string) (result Result, err error) {
	path := filepath.Join(directoryPath, filename)
	result.Path = path

	info, err := os.Stat(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		err = shared.NewError(shared.KindWrite, "stat", path, err)
		return
	}
	if err == nil && info.Size() > writer.maxLogSize && writer.rotator != nil {
		logctx.LogEvent(ctx, global.VerbosityData, global.InfoLog,
			"%s is %s (limit %s), rotating\n", path,
			humanize.IBytes(uint64(info.Size())), humanize.IBytes(uint64(writer.maxLogSize)))

		result.Rotation, result.RotationErr = writer.rotator.Rotate(ctx, directoryPath, filename)
		result.Rotated = result.RotationErr == nil
	}
	err = nil

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, os.FileMode(writer.fileMode))
	if err != nil {
		err = shared.NewError(shared.KindWrite, "open", path, err)
		return
	}

	line := []byte(body + global.LineTerminator)
	result.BytesWritten, err = file.Write(line)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		err = shared.NewError(shared.KindWrite, "append", path, err)
		return
	}
	return
}
