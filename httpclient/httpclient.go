// Package httpclient builds the retrying HTTP client shared by the provider
// packages and decodes their JSON responses.
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// StatusError is returned when a provider answers with a non-2xx status
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
}

// New returns a retrying client. retryMax 0 disables retries, which is what
// anything that can trigger a signing prompt must use.
func New(retryMax int, timeout time.Duration) *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.Logger = nil
	c.RetryMax = retryMax
	c.RetryWaitMin = 200 * time.Millisecond
	c.RetryWaitMax = 2 * time.Second
	c.HTTPClient.Timeout = timeout
	// hand the last response back instead of a bare "giving up" error
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return c
}

// GetJSON issues a GET and decodes a 2xx JSON body into out
func GetJSON(ctx context.Context, c *retryablehttp.Client, url string, header http.Header, out any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return Do(c, req, out)
}

// Do sends req and decodes a 2xx JSON body into out
func Do(c *retryablehttp.Client, req *retryablehttp.Request, out any) error {
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Method: req.Method, URL: redact(req.URL.Path), StatusCode: resp.StatusCode, Body: string(body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// redact keeps API keys embedded in paths out of error messages
func redact(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if len(p) >= 24 {
			parts[i] = "…"
		}
	}
	return strings.Join(parts, "/")
}
