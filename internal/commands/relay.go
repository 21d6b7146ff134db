package commands

import (
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/diogo/healthchat/internal/config"
	"github.com/diogo/healthchat/internal/relay"
)

// relayEnvPrefix prefixes the environment overrides of relay flags,
// e.g. HEALTHCHAT_MAX_TOKENS for --max-tokens.
const relayEnvPrefix = "HEALTHCHAT"

// relaySettings is the resolved relay configuration
type relaySettings struct {
	addr            string
	opts            relay.Options
	level           zerolog.Level
	logJSON         bool
	shutdownTimeout time.Duration
}

func newRelayCmd(deps *Dependencies, root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Run the health-chat relay endpoint",
		Long: `Run the stateless health-chat relay.

The relay accepts {"messages": [...]} on POST, prepends the public health
instruction and streams the upstream completion events back unchanged. The
upstream key is read from OPENAI_API_KEY (process environment or .env).

Every flag can also be set through the environment with the HEALTHCHAT_
prefix, e.g. HEALTHCHAT_LISTEN_ADDR or HEALTHCHAT_MAX_TOKENS.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := loadSession(root)
			if err != nil {
				return err
			}

			settings, err := resolveRelaySettings(cmd, sess.cfg.Relay, sess.env)
			if err != nil {
				return err
			}

			logger := newRelayLogger(deps.Stderr, settings)
			if settings.opts.APIKey == "" {
				logger.Warn().Str("env", config.EnvUpstreamAPIKey).Msg("upstream API key is not set; every request will fail")
			}

			if sess.verbose(root) {
				gin.SetMode(gin.DebugMode)
			} else {
				gin.SetMode(gin.ReleaseMode)
			}

			handler := relay.New(settings.opts, relay.WithLogger(logger))
			server := relay.NewServer(settings.addr, handler,
				relay.WithServerLogger(logger),
				relay.WithShutdownTimeout(settings.shutdownTimeout),
			)

			logger.Info().
				Str("path", handler.Path()).
				Str("model", settings.opts.Model).
				Str("upstream", settings.opts.UpstreamURL).
				Msg("relay configured")

			return server.Run(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.String("listen-addr", "", "Address to listen on")
	flags.String("path", "", "Route of the relay endpoint")
	flags.String("upstream-url", "", "Upstream chat completions URL")
	flags.String("model", "", "Upstream model name")
	flags.Float64("temperature", 0, "Sampling temperature")
	flags.Int("max-tokens", 0, "Maximum tokens per answer")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.Bool("log-json", false, "Write JSON logs instead of console output")
	flags.Duration("shutdown-timeout", relay.DefaultShutdownTimeout, "Time allowed for in-flight streams on shutdown")

	return cmd
}

// resolveRelaySettings merges the relay flags, HEALTHCHAT_* variables, the
// env file and the config file, in that order of precedence.
func resolveRelaySettings(cmd *cobra.Command, cfg config.RelayConfig, env config.Environment) (relaySettings, error) {
	v := viper.New()
	v.SetEnvPrefix(relayEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// env.* already merges the process environment with the env file
	v.SetDefault("listen-addr", firstNonEmpty(env.ListenAddr, cfg.ListenAddr))
	v.SetDefault("upstream-url", firstNonEmpty(env.UpstreamURL, cfg.UpstreamURL))
	v.SetDefault("path", cfg.Path)
	v.SetDefault("model", cfg.Model)
	v.SetDefault("temperature", cfg.Temperature)
	v.SetDefault("max-tokens", cfg.MaxTokens)

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return relaySettings{}, errors.Wrap(err, "failed to bind relay flags")
	}

	level, err := zerolog.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return relaySettings{}, errors.Wrapf(err, "invalid log level %q", v.GetString("log-level"))
	}

	temperature := v.GetFloat64("temperature")
	if temperature < 0 || temperature > 2 {
		return relaySettings{}, errors.Errorf("temperature must be between 0 and 2, got %v", temperature)
	}

	return relaySettings{
		addr: v.GetString("listen-addr"),
		opts: relay.Options{
			APIKey:      env.UpstreamAPIKey,
			UpstreamURL: v.GetString("upstream-url"),
			Model:       v.GetString("model"),
			Temperature: temperature,
			MaxTokens:   v.GetInt("max-tokens"),
			Path:        v.GetString("path"),
		},
		level:           level,
		logJSON:         v.GetBool("log-json"),
		shutdownTimeout: v.GetDuration("shutdown-timeout"),
	}, nil
}

func newRelayLogger(out io.Writer, settings relaySettings) zerolog.Logger {
	out = zerolog.SyncWriter(out)
	if !settings.logJSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(settings.level).With().Timestamp().Logger()
}
