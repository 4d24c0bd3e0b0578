// Handles installation, template configuration and service setup
package install

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Read in installation static files at compile time
//
//go:embed static-files/*
var installationFiles embed.FS

// Full installation (idempotent)
func Run() (err error) {
	// Must run as root
	if os.Geteuid() != 0 {
		err = fmt.Errorf("installation must be run as root")
		return
	}

	// Move binary (self) into place
	err = installBinary()
	if err != nil {
		err = fmt.Errorf("installing binary: %v", err)
		return
	}

	// Template config, kept if present unless confirmed
	err = installConfig()
	if err != nil {
		err = fmt.Errorf("template config: %v", err)
		return
	}

	err = installService()
	if err != nil {
		err = fmt.Errorf("systemd service: %v", err)
		return
	}

	fmt.Printf("Installation completed successfully\n")
	return
}

// Full uninstall. Log files under the log path are never removed.
func Remove() (err error) {
	if !confirm(os.Stdin, "Are you SURE you want to uninstall? (this will remove the configuration file)") {
		fmt.Printf("Aborting uninstall\n")
		return
	}

	// Must run as root
	if os.Geteuid() != 0 {
		err = fmt.Errorf("uninstall must be run as root")
		return
	}

	// Best effort for every step, first error is returned
	for _, step := range []func() error{uninstallService, uninstallBinary, uninstallConfig} {
		stepErr := step()
		if stepErr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", stepErr)
			if err == nil {
				err = stepErr
			}
		}
	}
	return
}

// Asks a yes/no question when attached to a terminal.
// Without a terminal nothing is confirmed.
func confirm(input io.Reader, question string) (confirmed bool) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return
	}
	confirmed = askYes(input, question)
	return
}

func askYes(input io.Reader, question string) (confirmed bool) {
	fmt.Printf("%s (yes/no): ", question)
	reader := bufio.NewReader(input)
	answer, _ := reader.ReadString('\n')
	confirmed = strings.ToLower(strings.TrimSpace(answer)) == "yes"
	return
}
