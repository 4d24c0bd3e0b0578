// Size-triggered rotation of per-host log files.
//
// Archives are 'name.1' (newest) through 'name.k' (oldest). A rotation first deletes what
// retention no longer allows, then shifts the chain up by one starting from the oldest
// survivor, then moves the active file to 'name.1'. Deleting before shifting means no rename
// ever targets an existing archive. The new active file is not created here.
package rotation

import (
	"context"
	"errors"
	"hostlogd/internal/global"
	"hostlogd/internal/logctx"
	"hostlogd/internal/receiver/shared"
	"io/fs"
	"os"
	"path/filepath"
)

// Creates a rotator keeping at most maxArchiveFiles archives (0 or less keeps all)
func New(maxArchiveFiles int) (rotator *Rotator) {
	if maxArchiveFiles < 0 {
		maxArchiveFiles = 0
	}
	rotator = &Rotator{MaxArchiveFiles: maxArchiveFiles}
	return
}

// Rotates filename inside directoryPath.
// Stops at the first failing delete or rename; the chain stays dense up to that point.
func (rotator *Rotator) Rotate(ctx context.Context, directoryPath string, filename string) (result Result, err error) {
	activePath := filepath.Join(directoryPath, filename)

	suffixes, err := archiveSuffixes(directoryPath, filename)
	if err != nil {
		err = shared.NewError(shared.KindRotation, "scan", directoryPath, err)
		return
	}
	k := denseCount(suffixes)
	result.ArchivesFound = k

	// Retention: after shifting, suffix i becomes i+1, so anything at or above N must go
	highest := k
	if rotator.MaxArchiveFiles > 0 && k >= rotator.MaxArchiveFiles {
		for suffix := k; suffix >= rotator.MaxArchiveFiles; suffix-- {
			oldest := filepath.Join(directoryPath, archiveName(filename, suffix))
			err = os.Remove(oldest)
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				err = shared.NewError(shared.KindRotation, "delete", oldest, err)
				return
			}
			err = nil
			result.Deleted = append(result.Deleted, oldest)
			highest = suffix - 1

			logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
				"Deleted archive %s (retention %d)\n", oldest, rotator.MaxArchiveFiles)
		}
	}

	// Shift from the highest survivor down so nothing is overwritten
	for suffix := highest; suffix >= 1; suffix-- {
		from := filepath.Join(directoryPath, archiveName(filename, suffix))
		to := filepath.Join(directoryPath, archiveName(filename, suffix+1))
		err = os.Rename(from, to)
		if err != nil {
			err = shared.NewError(shared.KindRotation, "rename", from, err)
			return
		}
		result.Renamed++
	}

	firstArchive := filepath.Join(directoryPath, archiveName(filename, 1))
	err = os.Rename(activePath, firstArchive)
	if err != nil {
		err = shared.NewError(shared.KindRotation, "rename", activePath, err)
		return
	}
	result.Renamed++

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
		"Rotated %s (%d archives before, %d deleted)\n", activePath, k, len(result.Deleted))
	return
}
