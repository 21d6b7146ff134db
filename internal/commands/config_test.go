package commands

import (
	"os"
	"strings"
	"testing"

	"github.com/diogo/healthchat/internal/config"
)

func TestConfig_ShowDefaults(t *testing.T) {
	env := newTestEnv(t)
	if err := env.run("config"); err != nil {
		t.Fatalf("config failed: %v", err)
	}

	out := env.stdout.String()
	path, _ := config.GetConfigPath()
	if !strings.HasPrefix(out, "# "+path) {
		t.Errorf("output should start with the config path, got %q", out)
	}
	if !strings.Contains(out, `"relay_url": "http://localhost:8787"`) {
		t.Errorf("output should contain the default relay URL, got %q", out)
	}
}

func TestConfig_Init(t *testing.T) {
	env := newTestEnv(t)

	if err := env.run("config", "init"); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	path, _ := config.GetConfigPath()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	if err := env.run("config", "init"); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second init error = %v, want already exists", err)
	}

	if err := env.run("config", "init", "--force"); err != nil {
		t.Errorf("init --force failed: %v", err)
	}
}

func TestConfig_Edit(t *testing.T) {
	env := newTestEnv(t)
	if err := env.run("config", "edit"); err != nil {
		t.Fatalf("config edit failed: %v", err)
	}

	path, _ := config.GetConfigPath()
	if len(env.edited) != 1 || env.edited[0] != path {
		t.Errorf("editor calls = %v, want [%s]", env.edited, path)
	}
}
