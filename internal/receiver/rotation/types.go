package rotation

// Renumbers and retires archives of one log file.
// MaxArchiveFiles of 0 keeps every archive.
type Rotator struct {
	MaxArchiveFiles int
}

// What one rotation did, for logging and metrics
type Result struct {
	ArchivesFound int      // dense archive run length before rotating
	Deleted       []string // archive paths removed for retention
	Renamed       int      // rename operations completed (shifts plus active file)
}
