package relay

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DefaultShutdownTimeout bounds graceful shutdown of in-flight streams
const DefaultShutdownTimeout = 30 * time.Second

// NewEngine builds the gin engine serving h, a health probe and the request
// logging middleware.
func NewEngine(h *Handler, logger zerolog.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), RequestLogger(logger))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	h.Register(engine)

	return engine
}

// Server runs the relay over HTTP.
type Server struct {
	addr            string
	httpServer      *http.Server
	logger          zerolog.Logger
	shutdownTimeout time.Duration
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the server's logger.
func WithServerLogger(logger zerolog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithShutdownTimeout sets how long Run waits for in-flight requests.
func WithShutdownTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		s.shutdownTimeout = d
	}
}

// NewServer creates a Server listening on addr.
func NewServer(addr string, h *Handler, opts ...ServerOption) *Server {
	s := &Server{
		addr:            addr,
		logger:          log.Logger,
		shutdownTimeout: DefaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	// No write timeout: responses are long-lived event streams
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           NewEngine(h, s.logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run listens on the configured address and serves until ctx is cancelled
// or the process receives SIGINT or SIGTERM.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.addr)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("starting health-chat relay")
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("server listen error")
			return errors.Wrap(err, "serve")
		}
		return nil
	})

	eg.Go(func() error {
		<-egCtx.Done()
		s.logger.Info().Msg("shutting down relay")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error().Err(err).Msg("server shutdown error")
			return errors.Wrap(err, "shutdown")
		}
		s.logger.Info().Msg("relay shutdown complete")
		return nil
	})

	return eg.Wait()
}
