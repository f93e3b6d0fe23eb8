package commands

import (
	"fmt"

	"github.com/vsinha/storealloc/pkg/infrastructure/config"
)

// ConfigCommand prints the effective configuration
type ConfigCommand struct {
	config Config
}

// NewConfigCommand creates a new config command
func NewConfigCommand(config Config) *ConfigCommand {
	return &ConfigCommand{config: config}
}

// Execute loads the configuration and writes it as YAML
func (c *ConfigCommand) Execute() error {
	settings, err := config.Load(c.config.ConfigFile)
	if err != nil {
		return err
	}
	data, err := settings.YAML()
	if err != nil {
		return err
	}
	w, _ := c.config.streams()
	_, err = fmt.Fprint(w, string(data))
	return err
}
