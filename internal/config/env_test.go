package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func unsetForTest(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		old, had := os.LookupEnv(k)
		os.Unsetenv(k)
		t.Cleanup(func() {
			if had {
				os.Setenv(k, old)
			}
		})
	}
}

func TestLoadEnv_FromFile(t *testing.T) {
	unsetForTest(t, EnvRelayURL, EnvPublicKey, EnvUpstreamAPIKey, EnvUpstreamURL, EnvListenAddr)

	path := writeEnvFile(t, "HEALTHCHAT_RELAY_URL=https://relay.test\nHEALTHCHAT_PUBLIC_KEY=pub-123\nOPENAI_API_KEY=sk-test\n")

	env, err := LoadEnv(path)
	if err != nil {
		t.Fatalf("LoadEnv() returned error: %v", err)
	}
	if env.RelayURL != "https://relay.test" {
		t.Errorf("RelayURL = %q", env.RelayURL)
	}
	if env.PublicKey != "pub-123" {
		t.Errorf("PublicKey = %q", env.PublicKey)
	}
	if env.UpstreamAPIKey != "sk-test" {
		t.Errorf("UpstreamAPIKey = %q", env.UpstreamAPIKey)
	}
	if env.ListenAddr != "" {
		t.Errorf("ListenAddr = %q, want empty", env.ListenAddr)
	}

	if _, ok := os.LookupEnv(EnvUpstreamAPIKey); ok {
		t.Error("LoadEnv must not modify the process environment")
	}
}

func TestLoadEnv_ProcessWins(t *testing.T) {
	unsetForTest(t, EnvRelayURL, EnvPublicKey, EnvUpstreamAPIKey, EnvUpstreamURL, EnvListenAddr)
	t.Setenv(EnvUpstreamAPIKey, "sk-process")

	path := writeEnvFile(t, "OPENAI_API_KEY=sk-file\n")

	env, err := LoadEnv(path)
	if err != nil {
		t.Fatalf("LoadEnv() returned error: %v", err)
	}
	if env.UpstreamAPIKey != "sk-process" {
		t.Errorf("UpstreamAPIKey = %q, want process value", env.UpstreamAPIKey)
	}
}

func TestLoadEnv_FirstFileWins(t *testing.T) {
	unsetForTest(t, EnvRelayURL, EnvPublicKey, EnvUpstreamAPIKey, EnvUpstreamURL, EnvListenAddr)

	first := writeEnvFile(t, "HEALTHCHAT_LISTEN_ADDR=:9000\n")
	second := writeEnvFile(t, "HEALTHCHAT_LISTEN_ADDR=:9001\nHEALTHCHAT_UPSTREAM_URL=http://upstream.test\n")

	env, err := LoadEnv(first, second)
	if err != nil {
		t.Fatalf("LoadEnv() returned error: %v", err)
	}
	if env.ListenAddr != ":9000" {
		t.Errorf("ListenAddr = %q, want :9000", env.ListenAddr)
	}
	if env.UpstreamURL != "http://upstream.test" {
		t.Errorf("UpstreamURL = %q", env.UpstreamURL)
	}
}

func TestLoadEnv_MissingFileIgnored(t *testing.T) {
	unsetForTest(t, EnvRelayURL, EnvPublicKey, EnvUpstreamAPIKey, EnvUpstreamURL, EnvListenAddr)

	env, err := LoadEnv(filepath.Join(t.TempDir(), "does-not-exist.env"))
	if err != nil {
		t.Fatalf("LoadEnv() returned error: %v", err)
	}
	if env != (Environment{}) {
		t.Errorf("expected empty environment, got %+v", env)
	}
}
