package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadGlobalFromPath(t *testing.T) {
	t.Run("full config", func(t *testing.T) {
		path := writeConfig(t, `
[agent]
command = "claude"
args = ["--dangerously-skip-permissions"]

[log]
level = "debug"
path = "/tmp/herd-test.log"
`)

		cfg, err := LoadGlobalFromPath(path)
		if err != nil {
			t.Fatalf("LoadGlobalFromPath() error = %v", err)
		}
		if cfg == nil {
			t.Fatal("expected config, got nil")
		}
		if cfg.AgentCommand() != "claude" {
			t.Errorf("AgentCommand() = %q", cfg.AgentCommand())
		}
		if len(cfg.AgentArgs()) != 1 || cfg.AgentArgs()[0] != "--dangerously-skip-permissions" {
			t.Errorf("AgentArgs() = %v", cfg.AgentArgs())
		}
		if cfg.LogLevel() != "debug" {
			t.Errorf("LogLevel() = %q", cfg.LogLevel())
		}
		if cfg.LogPath() != "/tmp/herd-test.log" {
			t.Errorf("LogPath() = %q", cfg.LogPath())
		}
	})

	t.Run("missing file returns nil without error", func(t *testing.T) {
		cfg, err := LoadGlobalFromPath(filepath.Join(t.TempDir(), "absent.toml"))
		if err != nil {
			t.Fatalf("LoadGlobalFromPath() error = %v", err)
		}
		if cfg != nil {
			t.Errorf("expected nil config, got %+v", cfg)
		}
	})

	t.Run("malformed file returns error", func(t *testing.T) {
		path := writeConfig(t, `[agent`)
		_, err := LoadGlobalFromPath(path)
		if err == nil {
			t.Fatal("expected parse error")
		}
	})

	t.Run("empty file uses defaults", func(t *testing.T) {
		path := writeConfig(t, "")
		cfg, err := LoadGlobalFromPath(path)
		if err != nil {
			t.Fatalf("LoadGlobalFromPath() error = %v", err)
		}
		if cfg.AgentCommand() != DefaultAgentCommand {
			t.Errorf("AgentCommand() = %q, want %q", cfg.AgentCommand(), DefaultAgentCommand)
		}
		if cfg.LogLevel() != "info" {
			t.Errorf("LogLevel() = %q, want info", cfg.LogLevel())
		}
	})
}

func TestGlobalConfig_NilReceiver(t *testing.T) {
	var cfg *GlobalConfig

	if cfg.AgentCommand() != DefaultAgentCommand {
		t.Errorf("AgentCommand() = %q, want %q", cfg.AgentCommand(), DefaultAgentCommand)
	}
	if cfg.AgentArgs() != nil {
		t.Errorf("AgentArgs() = %v, want nil", cfg.AgentArgs())
	}
	if cfg.LogLevel() != "info" {
		t.Errorf("LogLevel() = %q, want info", cfg.LogLevel())
	}
	if cfg.LogPath() != "" {
		t.Errorf("LogPath() = %q, want empty", cfg.LogPath())
	}
}
