package main

import (
	"context"
	"flag"
	"fmt"
	"hostlogd/internal/cli"
	"hostlogd/internal/global"
	"hostlogd/internal/logctx"
	"os"
	"runtime"
)

func main() {
	os.Exit(run())
}

func run() (exitCode int) {
	cliOpts := cli.DefineOptions()

	commandFlags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	requestedLogLevel := cli.SetGlobalArguments(commandFlags)

	commandFlags.Usage = func() {
		cli.PrintHelpMenu(commandFlags, cli.RootCLICommand, cliOpts)
	}
	if len(os.Args) < 2 {
		cli.PrintHelpMenu(commandFlags, cli.RootCLICommand, cliOpts)
		exitCode = 1
		return
	}
	commandFlags.Parse(os.Args[1:])

	// Retrieve command and args
	remaining := commandFlags.Args()
	if len(remaining) == 0 {
		cli.PrintHelpMenu(commandFlags, cli.RootCLICommand, cliOpts)
		exitCode = 1
		return
	}
	command := remaining[0]
	args := remaining[1:]

	// Setting global logging
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger := logctx.NewLogger("global", *requestedLogLevel, ctx.Done()) // New logger tied to global
	ctx = logctx.WithLogger(ctx, logger)                                 // Add logger to global ctx
	logctx.StartWatcher(logger, os.Stdout)                               // Send received output to stdout

	// Process commands
	switch command {
	case "receive":
		exitCode = cli.ReceiveMode(ctx, cliOpts, command, args)
	case "configure":
		exitCode = cli.SetupMode(cliOpts, command, args)
	case "version":
		if len(args) > 0 && (args[0] == "--verbosity" || args[0] == "-v") {
			fmt.Printf("%s %s\n", global.ProgBaseName, global.ProgVersion)
			fmt.Printf("Built using %s(%s) for %s on %s\n", runtime.Version(), runtime.Compiler, runtime.GOOS, runtime.GOARCH)
		} else {
			fmt.Println(global.ProgVersion)
		}
	default:
		cli.PrintHelpMenu(commandFlags, cli.RootCLICommand, cliOpts)
		exitCode = 1
	}

	// Finish up any stdout writes for global logger
	cancel()
	logger.Wake()
	logger.Wait()
	return
}
