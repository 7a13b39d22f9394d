package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a thin wrapper around *http.Client that applies a set of default
// headers to every request and returns status code and body as a string.
type Client struct {
	client  *http.Client
	headers map[string]string
}

// NewClient returns a Client with the given request timeout and default
// headers. Defaults are overridden by per request headers with the same key.
func NewClient(timeout time.Duration, headers map[string]string) *Client {
	if headers == nil {
		headers = map[string]string{}
	}
	return &Client{
		client:  &http.Client{Timeout: timeout},
		headers: headers,
	}
}

// NewHTTPRequest function builds http call
// @param method <string>: http method
// @param url <string>: URL http to call
// @return <int>, <string>, error
func (c *Client) NewHTTPRequest(
	ctx context.Context,
	method, url, bodyString string,
	header map[string]string,
) (int, string, error) {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPatch,
		http.MethodPut, http.MethodDelete:
	default:
		return 0, "", fmt.Errorf("verb not supported %s", method)
	}

	var body io.Reader
	if bodyString != "" {
		body = strings.NewReader(bodyString)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, "", err
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	for key, value := range header {
		req.Header.Set(key, value)
	}

	rs, err := c.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer rs.Body.Close()

	bodyBytes, err := io.ReadAll(rs.Body)
	if err != nil {
		return 0, "", fmt.Errorf("failed to parse response body: %w", err)
	}

	return rs.StatusCode, string(bodyBytes), nil
}
