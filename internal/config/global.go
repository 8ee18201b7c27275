// Package config provides configuration loading for herd.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/tessro/herd/internal/paths"
)

// GlobalConfig represents the global herd configuration.
type GlobalConfig struct {
	// Agent configures the supervised agent CLI.
	Agent AgentConfig `toml:"agent"`

	// Log configures logging output.
	Log LogConfig `toml:"log"`
}

// AgentConfig configures how agent processes are spawned.
type AgentConfig struct {
	// Command is the agent CLI executable name (e.g., "claude").
	Command string `toml:"command"`

	// Args are default arguments prepended to every session's argument list.
	Args []string `toml:"args"`
}

// LogConfig configures logging output.
type LogConfig struct {
	// Level is the log verbosity: "debug", "info", "warn", or "error".
	Level string `toml:"level"`

	// Path overrides the default log file location.
	Path string `toml:"path"`
}

// DefaultAgentCommand is the agent CLI spawned when none is configured.
const DefaultAgentCommand = "claude"

// LoadGlobal loads the global herd configuration.
// Returns nil config and nil error if the file doesn't exist.
func LoadGlobal() (*GlobalConfig, error) {
	path, err := paths.ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadGlobalFromPath(path)
}

// LoadGlobalFromPath loads the global config from a specific path.
// Returns nil config and nil error if the file doesn't exist.
func LoadGlobalFromPath(path string) (*GlobalConfig, error) {
	var cfg GlobalConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

// AgentCommand returns the configured agent command or the default.
func (c *GlobalConfig) AgentCommand() string {
	if c != nil && c.Agent.Command != "" {
		return c.Agent.Command
	}
	return DefaultAgentCommand
}

// AgentArgs returns the configured default arguments, or nil.
func (c *GlobalConfig) AgentArgs() []string {
	if c == nil {
		return nil
	}
	return c.Agent.Args
}

// LogLevel returns the configured log level string, defaulting to "info".
func (c *GlobalConfig) LogLevel() string {
	if c != nil && c.Log.Level != "" {
		return c.Log.Level
	}
	return "info"
}

// LogPath returns the configured log path, or empty for the default.
func (c *GlobalConfig) LogPath() string {
	if c == nil {
		return ""
	}
	return c.Log.Path
}
