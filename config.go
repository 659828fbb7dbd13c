package railbed

import (
	"fmt"
	"strings"
)

// Config is a serialisable representation of the session configuration. It can
// be populated from JSON, YAML, environment variables, etc. DefaultConfig
// mirrors the defaults applied by the functional options.
type Config struct {
	// RailsEnv is the named environment provisioned into the generated
	// project and exported as RAILS_ENV for the duration of a run.
	RailsEnv string `json:"railsEnv" yaml:"railsEnv"`

	// ProjectName is the directory name of the generated application inside
	// the holder directory.
	ProjectName string `json:"projectName" yaml:"projectName"`

	// KeepInstallation disables post-run deletion of the holder directory.
	KeepInstallation bool `json:"keepInstallation" yaml:"keepInstallation"`

	// CommandTimeoutMs bounds each external command invocation.
	CommandTimeoutMs int `json:"commandTimeoutMs" yaml:"commandTimeoutMs"`
}

// DefaultConfig returns a Config populated with the package defaults.
func DefaultConfig() *Config {
	return &Config{
		RailsEnv:         "test",
		ProjectName:      "rails_project",
		CommandTimeoutMs: 15 * 60 * 1000,
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("railbed: nil config")
	}
	if strings.TrimSpace(c.RailsEnv) == "" {
		return fmt.Errorf("%w: %q", ErrInvalidEnvironment, c.RailsEnv)
	}
	if strings.TrimSpace(c.ProjectName) == "" {
		return fmt.Errorf("railbed: projectName must not be empty")
	}
	if c.CommandTimeoutMs <= 0 {
		return fmt.Errorf("railbed: commandTimeoutMs must be > 0")
	}
	return nil
}
