package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pedrodeoliamarante/shorts-blocker-app/internal/model"
)

func TestBuildInputPlugins_RegistersPrimitives(t *testing.T) {
	t.Parallel()

	plugins := buildInputPlugins(InputPluginConfig{
		TCPEnabled: true,
		TCPAddr:    "127.0.0.1:4100",
	})

	if len(plugins) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(plugins))
	}
	if plugins[0].Name() != "tcp" {
		t.Fatalf("plugins[0] name = %q, want %q", plugins[0].Name(), "tcp")
	}
	if plugins[1].Name() != "stdin" {
		t.Fatalf("plugins[1] name = %q, want %q", plugins[1].Name(), "stdin")
	}
	if !plugins[0].Enabled() {
		t.Fatal("expected tcp plugin to be enabled when TCPEnabled=true")
	}
}

func TestBuildInputPlugins_TCPDisabled(t *testing.T) {
	t.Parallel()

	plugins := buildInputPlugins(InputPluginConfig{
		TCPEnabled: false,
		TCPAddr:    "127.0.0.1:4100",
	})

	if len(plugins) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(plugins))
	}
	if plugins[0].Enabled() {
		t.Fatal("expected tcp plugin to be disabled when TCPEnabled=false")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	resetBlockerEnv(t)

	configPath := writeTempConfig(t, `
tcp-port: 4100
api-port: 3000
`)
	cfg, err := loadConfig(configPath)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if cfg.Cooldown != model.DefaultCooldown {
		t.Errorf("Cooldown = %s, want %s", cfg.Cooldown, model.DefaultCooldown)
	}
	if cfg.ReelClickWindow != model.DefaultReelClickWindow {
		t.Errorf("ReelClickWindow = %s, want %s", cfg.ReelClickWindow, model.DefaultReelClickWindow)
	}
	if cfg.ExploreWindow != model.DefaultExploreWindow {
		t.Errorf("ExploreWindow = %s, want %s", cfg.ExploreWindow, model.DefaultExploreWindow)
	}
	if cfg.blockAction() != model.ActionBack {
		t.Errorf("blockAction = %s, want back", cfg.blockAction())
	}
	if cfg.DryRun {
		t.Error("DryRun should default to false")
	}
	if cfg.TCPAddr != "127.0.0.1:4100" {
		t.Errorf("TCPAddr = %q, want 127.0.0.1:4100", cfg.TCPAddr)
	}
	if cfg.APIAddr != "127.0.0.1:3000" {
		t.Errorf("APIAddr = %q, want 127.0.0.1:3000", cfg.APIAddr)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	resetBlockerEnv(t)

	configPath := writeTempConfig(t, `
cooldown: 2s
reel-click-window: 3s
explore-window: 1m
action: home
dry-run: true
adb-serial: emulator-5554
tcp-addr: 10.0.0.5:9999
api-addr: 10.0.0.5:8888
`)
	cfg, err := loadConfig(configPath)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if cfg.Cooldown != 2*time.Second {
		t.Errorf("Cooldown = %s, want 2s", cfg.Cooldown)
	}
	if cfg.ReelClickWindow != 3*time.Second {
		t.Errorf("ReelClickWindow = %s, want 3s", cfg.ReelClickWindow)
	}
	if cfg.ExploreWindow != time.Minute {
		t.Errorf("ExploreWindow = %s, want 1m", cfg.ExploreWindow)
	}
	if cfg.blockAction() != model.ActionHome {
		t.Errorf("blockAction = %s, want home", cfg.blockAction())
	}
	if !cfg.DryRun {
		t.Error("DryRun = false, want true")
	}
	if cfg.AdbSerial != "emulator-5554" {
		t.Errorf("AdbSerial = %q, want emulator-5554", cfg.AdbSerial)
	}
	if cfg.TCPAddr != "10.0.0.5:9999" {
		t.Errorf("TCPAddr = %q, explicit address should override port", cfg.TCPAddr)
	}
	if cfg.APIAddr != "10.0.0.5:8888" {
		t.Errorf("APIAddr = %q, explicit address should override port", cfg.APIAddr)
	}
}

func TestLoadConfig_RejectsInvalid(t *testing.T) {
	resetBlockerEnv(t)

	tests := []struct {
		name         string
		configYAML   string
		errSubstring string
	}{
		{"bad tcp port", "tcp-port: 0", "invalid tcp-port"},
		{"bad api port", "api-port: 99999", "invalid api-port"},
		{"bad action", "action: reboot", "invalid action"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := writeTempConfig(t, tt.configYAML)
			_, err := loadConfig(configPath)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errSubstring) {
				t.Fatalf("error = %q, want substring %q", err.Error(), tt.errSubstring)
			}
		})
	}
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, []byte(strings.TrimSpace(content)+"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func resetBlockerEnv(t *testing.T) {
	t.Helper()

	original := make(map[string]string)
	existed := make(map[string]bool)

	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, "SHORTSBLOCKER_") {
			continue
		}
		original[key] = value
		existed[key] = true
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}

	t.Cleanup(func() {
		for key := range existed {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("cleanup unset %s: %v", key, err)
			}
		}
		for key, value := range original {
			if err := os.Setenv(key, value); err != nil {
				t.Fatalf("cleanup restore %s: %v", key, err)
			}
		}
	})
}
