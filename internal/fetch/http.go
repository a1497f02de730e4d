package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultUserAgent = "index-symbols/1.0 (+https://github.com/arnabmitra/index-symbols)"
	maxBodySize      = 32 << 20
)

// StatusError is returned for any response outside 2xx.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s returned %s", e.URL, e.Status)
}

// ErrBodyTooLarge is returned instead of a truncated payload.
var ErrBodyTooLarge = errors.New("response body too large")

// HTTPClient fetches pages over HTTP(S).
type HTTPClient struct {
	userAgent  string
	httpClient *http.Client
	maxBody    int64
}

// NewHTTPClient creates a client. The timeout is a backstop; callers bound each fetch with
// their context as well.
func NewHTTPClient(userAgent string, timeout time.Duration) *HTTPClient {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTPClient{
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxBody: maxBodySize,
	}
}

func (c *HTTPClient) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,text/csv,text/plain;q=0.9,*/*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: %s is over %d bytes", ErrBodyTooLarge, url, c.maxBody)
	}
	return body, nil
}
