package install

import (
	"encoding/json"
	"fmt"
	"hostlogd/internal/global"
	"hostlogd/internal/receiver"
	"os"
)

func installConfig() (err error) {
	// Don't overwrite existing without confirmation
	_, err = os.Stat(global.DefaultConfigPath)
	if err == nil {
		question := fmt.Sprintf("Configuration file already exists at '%s'. Are you SURE you want to overwrite it?", global.DefaultConfigPath)
		if !confirm(os.Stdin, question) {
			fmt.Printf("Existing configuration file present, not overwriting\n")
			return
		}
	}

	err = CreateRecvTemplateConfig(global.DefaultConfigPath)
	if err != nil {
		return
	}

	fmt.Printf("Successfully wrote template configuration file to '%s'\n", global.DefaultConfigPath)
	return
}

func uninstallConfig() (err error) {
	err = os.Remove(global.DefaultConfigPath)
	if err != nil && !os.IsNotExist(err) {
		err = fmt.Errorf("failed to remove configuration file: %v", err)
		return
	}
	err = nil

	fmt.Printf("Successfully removed configuration file '%s'\n", global.DefaultConfigPath)
	return
}

// Writes an example receiver configuration to path
func CreateRecvTemplateConfig(path string) (err error) {
	if path == "" {
		err = fmt.Errorf("specify template file path via the --config/-c arguments")
		return
	}

	confBytes, err := json.MarshalIndent(receiver.ConfigTemplate(), "", "  ")
	if err != nil {
		err = fmt.Errorf("error marshaling new config: %v", err)
		return
	}
	confBytes = append(confBytes, []byte("\n")...)

	err = os.WriteFile(path, confBytes, 0600)
	if err != nil {
		err = fmt.Errorf("failed to write config to file: %v", err)
		return
	}
	return
}
