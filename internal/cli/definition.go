package cli

import "hostlogd/internal/global"

func DefineOptions() (cmdOpts *global.CommandSet) {
	// Root level
	root := &global.CommandSet{
		Description:     "Host Log Receiver (hostlogd)",
		FullDescription: "  Receives log lines over UDP and files them per sending host with size based rotation",
		CommandName:     RootCLICommand,
		ChildCommands:   make(map[string]*global.CommandSet),
	}

	// Receiving
	root.ChildCommands["receive"] = &global.CommandSet{
		CommandName:     "receive",
		Description:     "Receive Messages",
		FullDescription: "Listens for datagrams, writes each message to its host log file and rotates files over the size limit",
		ChildCommands:   nil,
	}

	// Setup
	root.ChildCommands["configure"] = &global.CommandSet{
		CommandName:     "configure",
		Description:     "Setup Actions",
		FullDescription: "Generate template configuration and install or remove the service",
		ChildCommands:   nil,
	}

	// Version Info
	root.ChildCommands["version"] = &global.CommandSet{
		CommandName:     "version",
		Description:     "Show Version Information",
		FullDescription: "Display meta information about program",
	}

	cmdOpts = root
	return
}
