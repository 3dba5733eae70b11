package fetch

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// ClientOptions for the fetch client.
type ClientOptions struct {
	Timeout   time.Duration
	UserAgent string
}

// Client is a small wrapper around retryablehttp providing timeouts and a
// stable User-Agent.
type Client struct {
	inner     *retryablehttp.Client
	userAgent string
}

// NewClient creates a new Client.
func NewClient(opts ClientOptions) *Client {
	r := retryablehttp.NewClient()
	r.RetryMax = 2
	r.HTTPClient.Timeout = opts.Timeout
	r.Logger = nil
	return &Client{inner: r, userAgent: opts.UserAgent}
}

// StandardClient exposes the wrapped net/http client.
func (c *Client) StandardClient() *http.Client {
	return c.inner.StandardClient()
}

// Do performs the request with the client's User-Agent applied.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return c.inner.StandardClient().Do(req)
}
