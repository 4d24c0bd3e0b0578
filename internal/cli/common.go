package cli

import (
	"flag"
	"hostlogd/internal/global"
)

func SetGlobalArguments(fs *flag.FlagSet) (logLevel *int) {
	logLevel = &global.Verbosity
	fs.IntVar(&global.Verbosity, "v", global.VerbosityStandard, "Increase detailed progress messages (Higher is more verbose) <0...5>")
	fs.IntVar(&global.Verbosity, "verbosity", global.VerbosityStandard, "Increase detailed progress messages (Higher is more verbose) <0...5>")
	return
}

func SetCommon(fs *flag.FlagSet, configPath *string) {
	fs.StringVar(configPath, "c", global.DefaultConfigPath, "Path to the configuration file")
	fs.StringVar(configPath, "config", global.DefaultConfigPath, "Path to the configuration file")
}
