package global

import "time"

const (
	// Descriptive Names for available verbosity levels
	VerbosityNone int = iota
	VerbosityStandard
	VerbosityProgress
	VerbosityData
	VerbosityFullData
	VerbosityDebug

	// Descriptive names for available severity levels
	ErrorLog string = "Error"
	WarnLog  string = "Warn"
	InfoLog  string = "Info"
)

const (
	ProgVersion  string = "v1.2.0"
	ProgBaseName string = "hostlogd"

	// Context keys
	LoggerKey  CtxKey = "logger"  // Event queue (mostly for variable log verbosity handling)
	LogTagsKey CtxKey = "logtags" // List of tags in order of broad->specific appended/popped at various parts of the program

	DefaultConfigPath      string = "/etc/hostlogd.json"
	DefaultBinaryPath      string = "/usr/local/bin/hostlogd"
	DefaultUnitPath        string = "/etc/systemd/system/hostlogd.service"
	DefaultLogPath         string = "/var/log/hostlogd"
	DefaultReceiverPort    int    = 2000
	DefaultMaxLogSize      int64  = 1 << 20 // 1 MiB
	DefaultMaxArchiveFiles int    = 0       // unlimited

	// Datagram constraints
	MaxDatagramSize   int = 65535
	MinDatagramLength int = 2 // shortest valid payload is "a:"
	MaxFileNameLength int = 255

	// On-disk layout
	LogFileMode      uint32 = 0640
	LogDirMode       uint32 = 0750
	ArchiveSeparator string = "."
	LineTerminator   string = "\n"

	// Diagnostics sink layout (relative to log root)
	DiagRootDir    string = "ScriptLogs"
	DiagErrorDir   string = "Errors"
	DiagDebugDir   string = "Debug"
	DiagDateLayout string = "2006-01-02"
	DiagFileSuffix string = ".log"

	// Timeout values
	ReceiveShutdownTimeout time.Duration = 20 * time.Second
	WorkerStopGracePeriod  time.Duration = 2 * time.Second
	BeatsDialTimeout       time.Duration = 3 * time.Second
	TransportErrorBackoff  time.Duration = 100 * time.Millisecond

	// Metric HTTP server
	HTTPListenPortReceiver int           = 20000 + DefaultReceiverPort // Default listen port
	HTTPListenAddr         string        = "localhost"                 // Metric queries only exposed to local machine
	HTTPReadTimeout        time.Duration = 30 * time.Second
	HTTPWriteTimeout       time.Duration = 10 * time.Second
	HTTPIdleTimeout        time.Duration = 180 * time.Second
	DataPath               string        = "/data/"
	DiscoveryPath          string        = "/discover/"

	// Namespacing Name Components
	NSMetric    string = "Metrics"
	NSMetricSrv string = "Server"
	NSTest      string = "Test"
	NSCLI       string = "CLI"
	NSRecv      string = "Receiver"
	NSWorker    string = "Worker"
	NSDiag      string = "Diagnostics"
	NSoBeats    string = "Beats"
	NSFilter    string = "SocketFilter"
	NSSystem    string = "System"
)
