package rotation

import (
	"hostlogd/internal/global"
	"os"
	"strconv"
	"strings"
)

// Lists archive suffixes present for filename in directoryPath
func archiveSuffixes(directoryPath string, filename string) (suffixes map[int]struct{}, err error) {
	entries, err := os.ReadDir(directoryPath)
	if err != nil {
		return
	}

	prefix := filename + global.ArchiveSeparator
	suffixes = make(map[int]struct{})
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		suffix, ok := parseSuffix(name[len(prefix):])
		if !ok {
			continue
		}
		suffixes[suffix] = struct{}{}
	}
	return
}

// Accepts only canonical positive integers ("3", not "03" or "+3")
func parseSuffix(raw string) (suffix int, ok bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || strconv.Itoa(n) != raw {
		return
	}
	suffix = n
	ok = true
	return
}

// Length of the run 1..k with every suffix present
func denseCount(suffixes map[int]struct{}) (k int) {
	for {
		if _, present := suffixes[k+1]; !present {
			return
		}
		k++
	}
}

// Path of the archive with the given suffix
func archiveName(filename string, suffix int) (name string) {
	name = filename + global.ArchiveSeparator + strconv.Itoa(suffix)
	return
}
