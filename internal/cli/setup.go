package cli

import (
	"flag"
	"fmt"
	"hostlogd/internal/global"
	"hostlogd/internal/install"
	"os"
)

// Setup/installation options
func SetupMode(cliOpts *global.CommandSet, commandname string, args []string) (exitCode int) {
	var newRecvConf bool
	var installReceiver bool
	var uninstallReceiver bool
	var templateConfPath string

	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	commandFlags.BoolVar(&installReceiver, "install", false, "Install/Upgrade the receiver daemon as a systemd service")
	commandFlags.BoolVar(&uninstallReceiver, "uninstall", false, "Remove the receiver daemon (log files are kept)")
	commandFlags.StringVar(&templateConfPath, "c", "", "Path to template config file")
	commandFlags.StringVar(&templateConfPath, "config", "", "Path to template config file")
	commandFlags.BoolVar(&newRecvConf, "recv-config-template", false, "Create new template config for the receiver daemon (using config-path argument)")

	commandFlags.Usage = func() {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
	}
	if len(args) < 1 {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
		exitCode = 1
		return
	}
	commandFlags.Parse(args)

	var err error

	if newRecvConf {
		err = install.CreateRecvTemplateConfig(templateConfPath)
	} else if installReceiver {
		err = install.Run()
	} else if uninstallReceiver {
		err = install.Remove()
	} else {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
		exitCode = 1
		return
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = 1
	}
	return
}
