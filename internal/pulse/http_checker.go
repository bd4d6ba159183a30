package pulse

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Compile-time interface guard.
var _ Checker = (*HTTPChecker)(nil)

// HTTPChecker polls http_agent objects with a GET request. The value is the
// response status code; anything outside 2xx is a failed poll.
type HTTPChecker struct {
	client *http.Client
}

// NewHTTPChecker creates an HTTP checker with the given timeout.
// Self-signed TLS certificates are accepted.
func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	return &HTTPChecker{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig:   &tls.Config{MinVersion: tls.VersionTLS12, InsecureSkipVerify: true}, //nolint:gosec // G402: monitored endpoints often use self-signed certs
				DisableKeepAlives: true,
			},
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

func (c *HTTPChecker) Check(ctx context.Context, target string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		err = fmt.Errorf("invalid URL %q: %w", target, err)
		return failedResult(0, err), err
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return failedResult(elapsed, err), fmt.Errorf("http get %s: %w", target, err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()

	result := &Result{
		Value:     strconv.Itoa(resp.StatusCode),
		LatencyMs: millis(elapsed),
		CheckedAt: time.Now().UTC(),
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		result.ErrorMessage = fmt.Sprintf("HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		return result, fmt.Errorf("http %s: status %d", target, resp.StatusCode)
	}
	result.Success = true
	return result, nil
}
