package config

import (
	"fmt"
	"net"
	"os"
	"os/exec"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"

	"github.com/handsandhope/hope/internal/core/validate"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration including
// event patterns, listen address, and file accessibility. The configPath argument
// specifies the config file location to validate (empty string skips config file check).
// This calls Validate() first for basic structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		validate.ProfileNameField("profile", c.Profile),
		c.validateEventPatterns(),
		criterio.Run("server.addr", c.Server.Addr, isHostPort),
		c.validateKafka(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if len(c.Voice.TTSCommand) > 0 {
		if _, err := exec.LookPath(c.Voice.TTSCommand[0]); err != nil {
			warnings = append(warnings, ValidationWarning{
				Category: "Voice",
				Item:     c.Voice.TTSCommand[0],
				Message:  "speech program not found, confirmations will be silent",
			})
		}
	}

	if c.Kafka.Enabled() && c.Kafka.GroupID == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Kafka",
			Message:  "no group_id set, every instance will read the whole topic",
		})
	}

	return warnings
}

// validateFileAccess checks the config file and data directory.
func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

func isHostPort(addr string) error {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	return nil
}

// validateEventPatterns checks notification event globs are well formed.
func (c *Config) validateEventPatterns() error {
	var errs criterio.FieldErrorsBuilder
	for i, pattern := range c.Notifications.Events {
		if !doublestar.ValidatePattern(pattern) {
			errs = errs.Append(fmt.Sprintf("notifications.events[%d]", i), fmt.Errorf("invalid pattern %q", pattern))
		}
	}
	return errs.ToError()
}

func (c *Config) validateKafka() error {
	if !c.Kafka.Enabled() {
		return nil
	}

	var errs criterio.FieldErrorsBuilder
	for i, broker := range c.Kafka.Brokers {
		if err := isHostPort(broker); err != nil {
			errs = errs.Append(fmt.Sprintf("kafka.brokers[%d]", i), err)
		}
	}
	return errs.ToError()
}
