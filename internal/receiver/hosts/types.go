package hosts

// Remote host and the directory its logs are written under
type HostEntry struct {
	RemoteAddress string
	DirectoryPath string
}

// Address to directory mapping for every host seen by this process.
//
// Not safe for concurrent use: only the receive worker mutates it. Entries are never evicted.
type Registry struct {
	rootLogPath string
	dirMode     uint32
	entries     map[string]HostEntry
}
