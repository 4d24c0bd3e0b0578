// Maps remote host addresses to per-host log directories, creating them on first contact
package hosts

import (
	"fmt"
	"hostlogd/internal/global"
	"hostlogd/internal/receiver/parser"
	"hostlogd/internal/receiver/shared"
	"os"
	"path/filepath"
)

// Creates an empty registry rooted at rootLogPath
func New(rootLogPath string) (registry *Registry) {
	registry = &Registry{
		rootLogPath: rootLogPath,
		dirMode:     global.LogDirMode,
		entries:     make(map[string]HostEntry),
	}
	return
}

// Returns the log directory for a remote address, creating it on first use.
// created is true only when this call recorded a new entry.
func (registry *Registry) Resolve(remoteAddress string) (directoryPath string, created bool, err error) {
	entry, known := registry.entries[remoteAddress]
	if known {
		directoryPath = entry.DirectoryPath
		return
	}

	// Address becomes a directory name so it must be a single component
	err = parser.ValidateFilename(remoteAddress)
	if err != nil {
		err = shared.NewError(shared.KindDirectory, "validate", remoteAddress, err)
		return
	}

	newPath := filepath.Join(registry.rootLogPath, remoteAddress)

	// Existing directory from a prior run is fine
	err = os.MkdirAll(newPath, os.FileMode(registry.dirMode))
	if err != nil {
		err = shared.NewError(shared.KindDirectory, "mkdir", newPath, err)
		return
	}

	info, err := os.Stat(newPath)
	if err != nil {
		err = shared.NewError(shared.KindDirectory, "stat", newPath, err)
		return
	}
	if !info.IsDir() {
		err = shared.NewError(shared.KindDirectory, "stat", newPath, fmt.Errorf("not a directory"))
		return
	}

	registry.entries[remoteAddress] = HostEntry{
		RemoteAddress: remoteAddress,
		DirectoryPath: newPath,
	}
	directoryPath = newPath
	created = true
	return
}

// Number of hosts seen so far
func (registry *Registry) Len() (count int) {
	count = len(registry.entries)
	return
}

// Looks up a host without creating anything
func (registry *Registry) lookup(remoteAddress string) (entry HostEntry, found bool) {
	entry, found = registry.entries[remoteAddress]
	return
}
