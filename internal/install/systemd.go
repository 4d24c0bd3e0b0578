package install

import (
	"errors"
	"fmt"
	"hostlogd/internal/global"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Fills in paths for the embedded unit template
func renderUnit() (unit []byte, err error) {
	template, err := installationFiles.ReadFile("static-files/hostlogd.service")
	if err != nil {
		err = fmt.Errorf("unable to retrieve unit file from embedded filesystem: %v", err)
		return
	}

	replacer := strings.NewReplacer(
		"$executableFilePath", global.DefaultBinaryPath,
		"$configFilePath", global.DefaultConfigPath,
	)
	unit = []byte(replacer.Replace(string(template)))
	return
}

func systemctl(args ...string) (output string, err error) {
	raw, err := exec.Command("systemctl", args...).CombinedOutput()
	output = strings.TrimSpace(string(raw))
	if err != nil {
		err = fmt.Errorf("systemctl %s: %v: %s", strings.Join(args, " "), err, output)
	}
	return
}

func installService() (err error) {
	unitName := filepath.Base(global.DefaultUnitPath)

	unit, err := renderUnit()
	if err != nil {
		return
	}

	err = os.WriteFile(global.DefaultUnitPath, unit, 0644)
	if err != nil {
		return
	}

	// Reload for new unit file
	_, err = systemctl("daemon-reload")
	if err != nil {
		return
	}

	// Disabled status is a non-zero exit
	status, _ := systemctl("is-enabled", unitName)
	if status != "enabled" {
		_, err = systemctl("enable", unitName)
		if err != nil {
			return
		}
	}

	fmt.Printf("Successfully installed Systemd service\n")
	fmt.Printf("  IMPORTANT: modify the configuration to your needs and start the service with 'systemctl start %s'\n", unitName)
	return
}

func uninstallService() (err error) {
	unitName := filepath.Base(global.DefaultUnitPath)

	status, _ := systemctl("is-enabled", unitName)
	if status == "enabled" {
		_, err = systemctl("disable", unitName)
		if err != nil {
			return
		}
	}

	state, _ := systemctl("show", unitName, "--property=ActiveState")
	if strings.Contains(state, "active") && !strings.Contains(state, "inactive") {
		_, err = systemctl("stop", unitName)
		if err != nil {
			return
		}
	}

	err = os.Remove(global.DefaultUnitPath)
	if errors.Is(err, os.ErrNotExist) {
		err = nil
	}
	if err != nil {
		return
	}

	_, err = systemctl("daemon-reload")
	if err != nil {
		return
	}

	fmt.Printf("Successfully uninstalled systemd service\n")
	return
}
