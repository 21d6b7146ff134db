package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variable names
const (
	EnvRelayURL       = "HEALTHCHAT_RELAY_URL"
	EnvPublicKey      = "HEALTHCHAT_PUBLIC_KEY"
	EnvUpstreamAPIKey = "OPENAI_API_KEY"
	EnvUpstreamURL    = "HEALTHCHAT_UPSTREAM_URL"
	EnvListenAddr     = "HEALTHCHAT_LISTEN_ADDR"
)

// DefaultEnvFile is read when LoadEnv is called without arguments
const DefaultEnvFile = ".env"

// Environment holds the values consumed from the process environment.
// It is resolved once at startup and passed explicitly to constructors.
type Environment struct {
	RelayURL       string
	PublicKey      string
	UpstreamAPIKey string
	UpstreamURL    string
	ListenAddr     string
}

// LoadEnv resolves the environment from the process and the given dotenv
// files. Process variables win over file values, and earlier files win over
// later ones. Missing files are ignored. The process environment is never
// modified.
func LoadEnv(files ...string) (Environment, error) {
	if len(files) == 0 {
		files = []string{DefaultEnvFile}
	}

	fileValues := make(map[string]string)
	for _, file := range files {
		values, err := godotenv.Read(file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Environment{}, fmt.Errorf("failed to read env file %s: %w", file, err)
		}
		for k, v := range values {
			if _, exists := fileValues[k]; !exists {
				fileValues[k] = v
			}
		}
	}

	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return fileValues[key]
	}

	return Environment{
		RelayURL:       lookup(EnvRelayURL),
		PublicKey:      lookup(EnvPublicKey),
		UpstreamAPIKey: lookup(EnvUpstreamAPIKey),
		UpstreamURL:    lookup(EnvUpstreamURL),
		ListenAddr:     lookup(EnvListenAddr),
	}, nil
}
