package api

import (
	"io"
	"net/url"
	"strings"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/bogdanfinn/tls-client/bandwidth"
)

// MockResponseBody is a ReadCloser that hands out data in fixed-size reads
type MockResponseBody struct {
	data      []byte
	pos       int
	chunkSize int
	closed    bool
}

// NewMockResponseBody creates a new MockResponseBody with the given data
func NewMockResponseBody(data []byte) *MockResponseBody {
	return &MockResponseBody{data: data}
}

// Read implements the io.Reader interface
func (m *MockResponseBody) Read(p []byte) (n int, err error) {
	if m.pos >= len(m.data) {
		return 0, io.EOF
	}
	if m.chunkSize > 0 && len(p) > m.chunkSize {
		p = p[:m.chunkSize]
	}
	n = copy(p, m.data[m.pos:])
	m.pos += n
	return n, nil
}

// Close implements the io.Closer interface
func (m *MockResponseBody) Close() error {
	m.closed = true
	return nil
}

// MockHttpClient is a mock implementation of tls_client.HttpClient for testing
type MockHttpClient struct {
	Response *fhttp.Response
	Err      error

	LastRequest *fhttp.Request
	LastBody    string
	IdleClosed  bool
}

func (m *MockHttpClient) GetCookies(u *url.URL) []*fhttp.Cookie          { return nil }
func (m *MockHttpClient) SetCookies(u *url.URL, cookies []*fhttp.Cookie) {}
func (m *MockHttpClient) SetCookieJar(jar fhttp.CookieJar)               {}
func (m *MockHttpClient) GetCookieJar() fhttp.CookieJar                  { return nil }
func (m *MockHttpClient) SetProxy(proxyUrl string) error                 { return nil }
func (m *MockHttpClient) GetProxy() string                               { return "" }
func (m *MockHttpClient) SetFollowRedirect(followRedirect bool)          {}
func (m *MockHttpClient) GetFollowRedirect() bool                        { return false }
func (m *MockHttpClient) CloseIdleConnections()                          { m.IdleClosed = true }
func (m *MockHttpClient) Get(url string) (*fhttp.Response, error)        { return m.Response, m.Err }
func (m *MockHttpClient) Head(url string) (*fhttp.Response, error)       { return m.Response, m.Err }
func (m *MockHttpClient) Post(url, contentType string, body io.Reader) (*fhttp.Response, error) {
	return m.Response, m.Err
}
func (m *MockHttpClient) GetBandwidthTracker() bandwidth.BandwidthTracker { return nil }

// Do records the request and returns the canned response
func (m *MockHttpClient) Do(req *fhttp.Request) (*fhttp.Response, error) {
	m.LastRequest = req
	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		m.LastBody = string(data)
	}
	return m.Response, m.Err
}

// NewMockHttpClient creates a new MockHttpClient with a canned response
func NewMockHttpClient(body []byte, statusCode int) *MockHttpClient {
	return &MockHttpClient{
		Response: &fhttp.Response{
			StatusCode: statusCode,
			Status:     strings.TrimSpace(fhttp.StatusText(statusCode)),
			Body:       NewMockResponseBody(body),
			Header:     make(fhttp.Header),
		},
	}
}

// NewMockHttpClientWithError creates a new MockHttpClient that returns an error
func NewMockHttpClientWithError(err error) *MockHttpClient {
	return &MockHttpClient{
		Response: nil,
		Err:      err,
	}
}
