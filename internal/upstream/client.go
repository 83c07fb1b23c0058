package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"
)

const defaultTimeout = 12 * time.Second

// userAgent mirrors what the upstream API expects from browser-like clients;
// some hosts reject the Go default.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Client issues GET requests against the upstream catalog API with bounded
// retry on rate limiting and timeouts. Retries are a loop with an attempt
// counter, never recursion, and only 429 and timeouts are retried; other
// 4xx/5xx fail fast.
type Client struct {
	BaseURL    string
	HTTP       *http.Client
	MaxRetries int
	RetryDelay time.Duration

	// sleep is swappable so tests can observe the backoff schedule.
	sleep func(time.Duration)

	attempted atomic.Uint64
	failed    atomic.Uint64
}

func NewClient(baseURL string, maxRetries int, retryDelay time.Duration) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTP:       &http.Client{Timeout: defaultTimeout},
		MaxRetries: maxRetries,
		RetryDelay: retryDelay,
		sleep:      time.Sleep,
	}
}

// Stats reports the process-wide attempted and terminally failed request
// counts for the ops surface.
func (c *Client) Stats() (attempted, failed uint64) {
	return c.attempted.Load(), c.failed.Load()
}

// Get fetches rawURL, retrying on 429 and timeouts with linear backoff
// RetryDelay * (attempt + 1) up to MaxRetries extra attempts.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		c.attempted.Add(1)
		requestsTotal.Inc()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, c.fail(&Error{Kind: KindTransport, URL: rawURL, Err: err})
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		resp, err := c.HTTP.Do(req)
		if err != nil {
			if isTimeout(err) {
				if attempt < c.MaxRetries {
					c.backoff(attempt)
					continue
				}
				return nil, c.fail(&Error{Kind: KindTimeout, URL: rawURL, Err: err})
			}
			return nil, c.fail(&Error{Kind: KindTransport, URL: rawURL, Err: err})
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			if attempt < c.MaxRetries {
				c.backoff(attempt)
				continue
			}
			return nil, c.fail(&Error{Kind: KindRateLimited, Status: resp.StatusCode, URL: rawURL})
		case resp.StatusCode < 200 || resp.StatusCode > 299:
			return nil, c.fail(&Error{Kind: KindBadStatus, Status: resp.StatusCode, URL: rawURL})
		case readErr != nil:
			return nil, c.fail(&Error{Kind: KindTransport, URL: rawURL, Err: readErr})
		}
		return body, nil
	}
}

// GetJSON fetches rawURL and decodes the body into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any) error {
	body, err := c.Get(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return c.fail(&Error{Kind: KindInvalidBody, URL: rawURL, Err: err})
	}
	return nil
}

func (c *Client) backoff(attempt int) {
	c.sleep(c.RetryDelay * time.Duration(attempt+1))
}

func (c *Client) fail(e *Error) error {
	c.failed.Add(1)
	failuresTotal.WithLabelValues(e.Kind.String()).Inc()
	return e
}

func isTimeout(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
