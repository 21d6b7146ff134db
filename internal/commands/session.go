package commands

import (
	"github.com/pkg/errors"

	"github.com/diogo/healthchat/internal/config"
	"github.com/diogo/healthchat/internal/models"
)

// session is the configuration resolved once per command invocation
type session struct {
	env      config.Environment
	cfg      config.Config
	relayURL string
}

// loadSession reads the env files and the config file and resolves the relay
// URL: flag, then environment, then config file, then the built-in default.
func loadSession(opts *rootOptions) (*session, error) {
	var files []string
	if opts.envFile != "" {
		files = append(files, opts.envFile)
	}

	env, err := config.LoadEnv(files...)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}

	return &session{
		env:      env,
		cfg:      cfg,
		relayURL: firstNonEmpty(opts.relayURL, env.RelayURL, cfg.RelayURL, models.DefaultRelayURL),
	}, nil
}

// verbose reports whether request details should be printed
func (s *session) verbose(opts *rootOptions) bool {
	return opts.verbose || s.cfg.Verbose
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
