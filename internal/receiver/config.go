package receiver

import (
	"encoding/json"
	"fmt"
	"hostlogd/internal/global"
	"math"
	"os"
	"time"

	"github.com/dustin/go-humanize"
)

// Loads JSON config from file
func LoadConfig(path string) (cfg JSONConfig, err error) {
	configFile, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("failed to read config file: %w", err)
		return
	}

	err = json.Unmarshal(configFile, &cfg)
	if err != nil {
		err = fmt.Errorf("invalid config syntax in '%s': %v", path, err)
		return
	}

	return
}

// Parses JSON config into daemon config
func (cfg JSONConfig) NewDaemonConf() (config Config, err error) {
	// Network settings
	config.ListenPort = cfg.Network.Port

	// Log tree settings
	config.LogPath = cfg.Logging.LogPath
	config.MaxArchiveFiles = cfg.Logging.MaxArchiveFiles
	config.LogErrors = cfg.Logging.LogErrors
	config.LogDebug = cfg.Logging.LogDebug
	if cfg.Logging.MaxLogSize != "" {
		config.MaxLogSize, err = ParseSize(cfg.Logging.MaxLogSize)
		if err != nil {
			err = fmt.Errorf("failed to parse maximum log size: %v", err)
			return
		}
	}

	// Output settings
	config.BeatsEndpoint = cfg.Outputs.BeatsAddress

	// Metric settings
	config.MetricQueryServerEnabled = cfg.Metrics.EnableQueryServer
	config.MetricQueryServerPort = cfg.Metrics.QueryServerPort
	if cfg.Metrics.MaxAge != "" {
		config.MetricMaxAge, err = time.ParseDuration(cfg.Metrics.MaxAge)
		if err != nil {
			err = fmt.Errorf("failed to parse metric max age time: %v", err)
			return
		}
	}
	if cfg.Metrics.Interval != "" {
		config.MetricCollectionInterval, err = time.ParseDuration(cfg.Metrics.Interval)
		if err != nil {
			err = fmt.Errorf("failed to parse metric collection interval time: %v", err)
			return
		}
	}

	err = config.Validate()
	return
}

// Parses human readable byte sizes ("1MiB", "512 KB", "1048576")
func ParseSize(raw string) (size int64, err error) {
	parsed, err := humanize.ParseBytes(raw)
	if err != nil {
		return
	}
	if parsed > math.MaxInt64 {
		err = fmt.Errorf("size %q is too large", raw)
		return
	}
	size = int64(parsed)
	return
}

// Rejects values that have no usable meaning
func (cfg Config) Validate() (err error) {
	if cfg.ListenPort < 0 || cfg.ListenPort > 65535 {
		err = fmt.Errorf("listen port %d out of range", cfg.ListenPort)
		return
	}
	if cfg.MaxLogSize < 0 {
		err = fmt.Errorf("maximum log size cannot be negative")
		return
	}
	if cfg.MaxArchiveFiles < 0 {
		err = fmt.Errorf("maximum archive files cannot be negative (0 keeps all archives)")
		return
	}
	if cfg.MetricQueryServerPort < 0 || cfg.MetricQueryServerPort > 65535 {
		err = fmt.Errorf("metric query server port %d out of range", cfg.MetricQueryServerPort)
		return
	}
	if cfg.MetricCollectionInterval < 0 || cfg.MetricMaxAge < 0 {
		err = fmt.Errorf("metric durations cannot be negative")
		return
	}
	return
}

// Sets defaults for any missing values
func (cfg *Config) setDefaults() {
	// Network
	if cfg.ListenPort == 0 {
		cfg.ListenPort = global.DefaultReceiverPort
	}

	// Log tree
	if cfg.LogPath == "" {
		cfg.LogPath = global.DefaultLogPath
	}
	if cfg.MaxLogSize == 0 {
		cfg.MaxLogSize = global.DefaultMaxLogSize
	}

	// Metrics
	if cfg.MetricMaxAge == 0 {
		cfg.MetricMaxAge = 1 * time.Hour
	}
	if cfg.MetricQueryServerPort == 0 {
		cfg.MetricQueryServerPort = global.HTTPListenPortReceiver
	}
	if cfg.MetricCollectionInterval == 0 {
		cfg.MetricCollectionInterval = time.Duration(15 * time.Second)
	}
}

// Example configuration with every option populated
func ConfigTemplate() (cfg JSONConfig) {
	cfg.Network.Port = global.DefaultReceiverPort
	cfg.Logging.LogPath = global.DefaultLogPath
	cfg.Logging.MaxLogSize = humanize.IBytes(uint64(global.DefaultMaxLogSize))
	cfg.Logging.MaxArchiveFiles = 5
	cfg.Logging.LogErrors = true
	cfg.Logging.LogDebug = false
	cfg.Outputs.BeatsAddress = ""
	cfg.Metrics.Interval = "15s"
	cfg.Metrics.MaxAge = "1h"
	cfg.Metrics.EnableQueryServer = false
	cfg.Metrics.QueryServerPort = global.HTTPListenPortReceiver
	return
}
