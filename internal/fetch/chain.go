package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// ErrAllStrategiesFailed is returned when no strategy produced content.
var ErrAllStrategiesFailed = errors.New("all fetch strategies failed")

// Strategy is one way to reach a URL: directly or through a proxy endpoint.
// Each strategy carries its own timeout.
type Strategy struct {
	Name    string
	Build   func(target string) string
	Timeout time.Duration
}

// Direct fetches the target URL as-is.
func Direct(timeout time.Duration) Strategy {
	return Strategy{
		Name:    "direct",
		Build:   func(target string) string { return target },
		Timeout: timeout,
	}
}

// Proxy routes the target through a proxy endpoint that takes the raw URL as
// a query parameter, e.g. "https://proxy.example/get?url=".
func Proxy(name, endpoint string, timeout time.Duration) Strategy {
	return Strategy{
		Name:    name,
		Build:   func(target string) string { return endpoint + url.QueryEscape(target) },
		Timeout: timeout,
	}
}

// Chain tries an ordered list of strategies and returns the first non-empty
// response. The engine behind it does not know or care which strategy won.
type Chain struct {
	client     *Client
	strategies []Strategy
	log        *zap.Logger
}

func NewChain(client *Client, log *zap.Logger, strategies ...Strategy) *Chain {
	return &Chain{client: client, strategies: strategies, log: log}
}

// Fetch retrieves the raw body of target. Strategies are attempted in order,
// each under its own timeout; the first 200 response with a non-empty body
// wins and the rest are not tried.
func (c *Chain) Fetch(ctx context.Context, target string) (string, error) {
	for _, s := range c.strategies {
		body, err := c.attempt(ctx, s, target)
		if err != nil {
			c.log.Debug("fetch strategy failed",
				zap.String("strategy", s.Name),
				zap.String("url", target),
				zap.Error(err))
			continue
		}
		return body, nil
	}
	return "", fmt.Errorf("%w: %s", ErrAllStrategiesFailed, target)
}

func (c *Chain) attempt(ctx context.Context, s Strategy, target string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Build(target), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected HTTP status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if len(body) == 0 {
		return "", errors.New("empty response body")
	}
	return string(body), nil
}
