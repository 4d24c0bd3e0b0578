package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"hostlogd/internal/global"
	"hostlogd/internal/lifecycle"
	"hostlogd/internal/logctx"
	"hostlogd/internal/receiver"
	"io/fs"
	"os"
)

// Command line values that replace config file values when given
type receiveOverrides struct {
	port        int
	logPath     string
	maxLogSize  string
	maxArchives int
	logErrors   bool
	logDebug    bool
}

func setReceiveOverrides(commandFlags *flag.FlagSet, overrides *receiveOverrides) {
	commandFlags.IntVar(&overrides.port, "port", 0, "UDP port to listen on (overrides config)")
	commandFlags.StringVar(&overrides.logPath, "log-path", "", "Root directory for host log trees (overrides config)")
	commandFlags.StringVar(&overrides.maxLogSize, "max-log-size", "", "Rotate files larger than this, e.g. 1MiB (overrides config)")
	commandFlags.IntVar(&overrides.maxArchives, "max-archives", 0, "Archives kept per file, 0 keeps all (overrides config)")
	commandFlags.BoolVar(&overrides.logErrors, "log-errors", false, "Record errors under <log path>/ScriptLogs/Errors (overrides config)")
	commandFlags.BoolVar(&overrides.logDebug, "log-debug", false, "Record debug traces under <log path>/ScriptLogs/Debug (overrides config)")
}

// Applies only flags that were explicitly set on the command line
func (overrides receiveOverrides) apply(commandFlags *flag.FlagSet, cfg *receiver.Config) (err error) {
	commandFlags.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "port":
			cfg.ListenPort = overrides.port
		case "log-path":
			cfg.LogPath = overrides.logPath
		case "max-log-size":
			cfg.MaxLogSize, err = receiver.ParseSize(overrides.maxLogSize)
			if err != nil {
				err = fmt.Errorf("invalid --max-log-size: %v", err)
			}
		case "max-archives":
			cfg.MaxArchiveFiles = overrides.maxArchives
		case "log-errors":
			cfg.LogErrors = overrides.logErrors
		case "log-debug":
			cfg.LogDebug = overrides.logDebug
		}
	})
	if err != nil {
		return
	}
	err = cfg.Validate()
	return
}

// Builds daemon config from the config file (optional when flags name a log path) and overrides
func loadReceiveConfig(commandFlags *flag.FlagSet, configPath string, overrides receiveOverrides) (daemonConfig receiver.Config, err error) {
	var explicitConfig, explicitLogPath bool
	commandFlags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "c", "config":
			explicitConfig = true
		case "log-path":
			explicitLogPath = true
		}
	})

	jsonCfg, err := receiver.LoadConfig(configPath)
	if errors.Is(err, fs.ErrNotExist) && !explicitConfig && explicitLogPath {
		// Flags alone are enough
		err = nil
	}
	if err != nil {
		return
	}

	daemonConfig, err = jsonCfg.NewDaemonConf()
	if err != nil {
		return
	}

	err = overrides.apply(commandFlags, &daemonConfig)
	return
}

func ReceiveMode(ctx context.Context, cliOpts *global.CommandSet, commandname string, args []string) (exitCode int) {
	var configPath string
	var overrides receiveOverrides

	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	SetGlobalArguments(commandFlags)
	SetCommon(commandFlags, &configPath)
	setReceiveOverrides(commandFlags, &overrides)

	commandFlags.Usage = func() {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
	}
	commandFlags.Parse(args)
	logctx.SetLogLevel(ctx, global.Verbosity)

	daemonConfig, err := loadReceiveConfig(commandFlags, configPath, overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = 1
		return
	}

	ctx = logctx.AppendCtxTag(ctx, global.NSCLI)

	recvDaemon := receiver.NewDaemon(daemonConfig)
	err = recvDaemon.Start(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting receiving daemon: %v\n", err)
		recvDaemon.Shutdown()
		exitCode = 1
		return
	}

	signalCtx, stopSignals := context.WithCancel(ctx)
	defer stopSignals()
	go lifecycle.SignalHandler(signalCtx, recvDaemon)

	err = recvDaemon.Run()
	recvDaemon.Shutdown()
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Receiver stopped: %v\n", err)
		exitCode = 1
	}
	return
}
