// Package api implements the HTTP client the chat UI uses to reach the relay.
package api

import (
	"fmt"
	"net/url"
	"strings"

	tls_client "github.com/bogdanfinn/tls-client"

	apierrors "github.com/diogo/healthchat/internal/errors"
	"github.com/diogo/healthchat/internal/models"
)

// DefaultTimeoutSeconds bounds one whole request cycle, body included
const DefaultTimeoutSeconds = 300

// RelayClient posts conversations to the relay and hands back the raw
// event stream.
type RelayClient struct {
	httpClient     tls_client.HttpClient
	baseURL        string
	path           string
	publicKey      string
	timeoutSeconds int
}

// ClientOption is a function that configures the client
type ClientOption func(*RelayClient)

// WithPath sets the relay path appended to the base URL
func WithPath(path string) ClientOption {
	return func(c *RelayClient) {
		c.path = path
	}
}

// WithPublicKey sets the static bearer credential sent to the relay
func WithPublicKey(key string) ClientOption {
	return func(c *RelayClient) {
		c.publicKey = key
	}
}

// WithTimeoutSeconds sets the request timeout of the default HTTP client
func WithTimeoutSeconds(seconds int) ClientOption {
	return func(c *RelayClient) {
		c.timeoutSeconds = seconds
	}
}

// WithHTTPClient replaces the underlying HTTP client (used in tests)
func WithHTTPClient(httpClient tls_client.HttpClient) ClientOption {
	return func(c *RelayClient) {
		c.httpClient = httpClient
	}
}

// NewRelayClient creates a RelayClient for the relay at baseURL
func NewRelayClient(baseURL string, opts ...ClientOption) (*RelayClient, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, apierrors.NewConfigError("relay URL", "relay URL is not configured")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, apierrors.NewConfigError("relay URL", fmt.Sprintf("invalid relay URL %q", baseURL))
	}

	client := &RelayClient{
		baseURL:        strings.TrimRight(baseURL, "/"),
		path:           models.DefaultRelayPath,
		timeoutSeconds: DefaultTimeoutSeconds,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.path != "" && !strings.HasPrefix(client.path, "/") {
		client.path = "/" + client.path
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(client.timeoutSeconds),
			tls_client.WithNotFollowRedirects(),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// Endpoint returns the full relay URL
func (c *RelayClient) Endpoint() string {
	return c.baseURL + c.path
}

// Close releases idle connections
func (c *RelayClient) Close() {
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}
}
