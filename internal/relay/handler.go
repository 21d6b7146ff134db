// Package relay implements the stateless health-chat endpoint. It prepends the
// public-health system instruction to the caller's messages, forwards them to
// the upstream completion API with streaming enabled and pipes the raw event
// stream back to the caller.
package relay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/diogo/healthchat/internal/config"
	apierrors "github.com/diogo/healthchat/internal/errors"
	"github.com/diogo/healthchat/internal/models"
)

const (
	// maxLoggedBody bounds how much of a failed upstream response is logged
	maxLoggedBody = 4096
	// copyBufferSize is the size of a single read from the upstream body
	copyBufferSize = 4096

	allowHeaders = "authorization, x-client-info, apikey, content-type"
)

// Options configures a Handler. Zero values fall back to the defaults in
// package models, except APIKey: an empty key makes every relay request fail
// with a configuration error.
type Options struct {
	APIKey       string
	UpstreamURL  string
	Model        string
	Temperature  float64
	MaxTokens    int
	SystemPrompt string
	Path         string
}

func (o Options) withDefaults() Options {
	if o.UpstreamURL == "" {
		o.UpstreamURL = models.EndpointChatCompletions
	}
	if o.Model == "" {
		o.Model = models.DefaultModel
	}
	if o.Temperature == 0 {
		o.Temperature = models.DefaultTemperature
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = models.DefaultMaxTokens
	}
	if o.SystemPrompt == "" {
		o.SystemPrompt = config.PublicHealthPersona().SystemPrompt
	}
	if o.Path == "" {
		o.Path = models.DefaultRelayPath
	}
	if !strings.HasPrefix(o.Path, "/") {
		o.Path = "/" + o.Path
	}
	return o
}

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Handler serves the relay endpoint.
type Handler struct {
	opts   Options
	client Doer
	logger zerolog.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithHTTPClient sets the client used to reach the upstream API.
func WithHTTPClient(client Doer) HandlerOption {
	return func(h *Handler) {
		h.client = client
	}
}

// WithLogger sets the logger used when no request-scoped logger is present.
func WithLogger(logger zerolog.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// New creates a Handler. The upstream credential is taken from opts only.
func New(opts Options, options ...HandlerOption) *Handler {
	h := &Handler{
		opts:   opts.withDefaults(),
		client: &http.Client{},
		logger: log.Logger,
	}
	for _, opt := range options {
		opt(h)
	}
	return h
}

// Path returns the route the handler is registered on.
func (h *Handler) Path() string {
	return h.opts.Path
}

// Register mounts the preflight and relay routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.OPTIONS(h.opts.Path, corsHeaders, h.preflight)
	r.POST(h.opts.Path, corsHeaders, h.relay)
}

func corsHeaders(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Headers", allowHeaders)
	c.Next()
}

func (h *Handler) preflight(c *gin.Context) {
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
}

func (h *Handler) relay(c *gin.Context) {
	logger := h.requestLogger(c)

	if h.opts.APIKey == "" {
		h.fail(c, apierrors.NewConfigError(config.EnvUpstreamAPIKey, "OpenAI API key is not configured"))
		return
	}

	var req models.RelayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, apierrors.NewParseError("invalid request body", err))
		return
	}
	if err := validateMessages(req.Messages); err != nil {
		h.fail(c, err)
		return
	}
	logger.Info().Int("messages", len(req.Messages)).Msg("received chat request")

	resp, err := h.forward(c, req.Messages)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBody))
		logger.Error().
			Int("status", resp.StatusCode).
			Str("body", string(body)).
			Msg("upstream API error")
		h.fail(c, apierrors.NewAPIError(resp.StatusCode, h.opts.UpstreamURL,
			"upstream API error: "+resp.Status))
		return
	}

	logger.Debug().Msg("streaming upstream response")
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()

	n, err := h.pipe(c, resp.Body)
	if err != nil {
		logger.Warn().Err(err).Int64("bytes", n).Msg("stream interrupted")
		return
	}
	logger.Info().Int64("bytes", n).Msg("stream complete")
}

// validateMessages rejects messages whose role is missing or not
// conversational. A missing role key never reaches Role.UnmarshalJSON.
func validateMessages(messages []models.Message) error {
	for i, msg := range messages {
		if !msg.Role.IsConversational() {
			return apierrors.NewParseError("invalid request body",
				fmt.Errorf("message %d: invalid role %q", i, msg.Role))
		}
	}
	return nil
}

// forward posts the completion request upstream. The system instruction is
// always the first message; caller messages follow unaltered.
func (h *Handler) forward(c *gin.Context, messages []models.Message) (*http.Response, error) {
	outgoing := make([]models.Message, 0, len(messages)+1)
	outgoing = append(outgoing, models.Message{Role: models.RoleSystem, Content: h.opts.SystemPrompt})
	outgoing = append(outgoing, messages...)

	payload, err := json.Marshal(models.CompletionRequest{
		Model:       h.opts.Model,
		Messages:    outgoing,
		Temperature: h.opts.Temperature,
		MaxTokens:   h.opts.MaxTokens,
		Stream:      true,
	})
	if err != nil {
		return nil, apierrors.NewParseError("failed to encode completion request", err)
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodPost, h.opts.UpstreamURL, bytes.NewReader(payload))
	if err != nil {
		return nil, apierrors.NewNetworkErrorWithEndpoint("create upstream request", h.opts.UpstreamURL, err)
	}
	req.Header.Set("Authorization", "Bearer "+h.opts.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, apierrors.NewNetworkErrorWithEndpoint("upstream request", h.opts.UpstreamURL, err)
	}
	return resp, nil
}

// pipe copies body to the client unchanged, flushing after every read.
func (h *Handler) pipe(c *gin.Context, body io.Reader) (int64, error) {
	var written int64
	buf := make([]byte, copyBufferSize)
	ctx := c.Request.Context()

	for {
		n, err := body.Read(buf)
		if n > 0 {
			m, werr := c.Writer.Write(buf[:n])
			written += int64(m)
			if werr != nil {
				return written, werr
			}
			c.Writer.Flush()
		}
		if errors.Is(err, io.EOF) {
			return written, nil
		}
		if err != nil {
			return written, err
		}
		if ctx.Err() != nil {
			return written, ctx.Err()
		}
	}
}

// fail logs err and answers with a 500 JSON error body.
func (h *Handler) fail(c *gin.Context, err error) {
	h.requestLogger(c).Error().Err(err).Msg("error in health-chat relay")
	c.JSON(http.StatusInternalServerError, models.ErrorBody{Error: errorMessage(err)})
}

func errorMessage(err error) string {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

func (h *Handler) requestLogger(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if l, ok := v.(*zerolog.Logger); ok {
			return l
		}
	}
	return &h.logger
}
