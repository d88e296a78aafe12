package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	drifterrors "github.com/yairfalse/driftwatch/internal/errors"
)

// DefaultTimeout bounds a single endpoint request when no timeout is
// configured.
const DefaultTimeout = 30 * time.Second

// Result is one successful fetch from the endpoint under test.
type Result struct {
	Data         interface{}
	Status       int
	ResponseTime time.Duration
}

// Client talks to the JSON endpoint collaborator. It treats transport errors
// and non-2xx responses identically as fetch failures and never interprets
// domain-specific payloads.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the service under test rooted at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
}

// BaseURL returns the configured service base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchJSON issues one GET to endpoint with the given query parameters and
// decodes the JSON body. The caller-supplied context carries cancellation
// and deadline; the client's own timeout applies on top of it.
func (c *Client) FetchJSON(ctx context.Context, endpoint string, params map[string]string) (*Result, error) {
	requestURL, err := c.buildURL(endpoint, params)
	if err != nil {
		return nil, drifterrors.FetchFailed(endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, drifterrors.FetchFailed(endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, drifterrors.FetchFailed(endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, drifterrors.FetchFailed(endpoint, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var data interface{}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, drifterrors.FetchFailed(endpoint, fmt.Errorf("decoding response body: %w", err))
	}

	return &Result{
		Data:         data,
		Status:       resp.StatusCode,
		ResponseTime: time.Since(start),
	}, nil
}

func (c *Client) buildURL(endpoint string, params map[string]string) (string, error) {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}

	parsed, err := url.Parse(c.baseURL + endpoint)
	if err != nil {
		return "", err
	}

	if len(params) > 0 {
		query := parsed.Query()
		for k, v := range params {
			query.Set(k, v)
		}
		parsed.RawQuery = query.Encode()
	}

	return parsed.String(), nil
}
