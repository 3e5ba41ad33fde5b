package distance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// httpStatusError is a provider response with a status code of 400 or above.
type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Code, e.Body)
}

// get fetches endpoint, repeating transient failures with a doubling pause
// between attempts. The caller closes the body of the returned response.
func (c *GoogleMatrixClient) get(ctx context.Context, endpoint string) (*http.Response, error) {
	pause := c.retryBackoff
	for attempt := 1; ; attempt++ {
		resp, err := c.attempt(ctx, endpoint)
		if err == nil {
			return resp, nil
		}
		if attempt >= c.maxAttempts || !transient(err) {
			return nil, err
		}
		if err := sleep(ctx, pause); err != nil {
			return nil, err
		}
		pause *= 2
	}
}

// attempt sends one GET once the rate limiter admits it.
// Errors never carry the API key.
func (c *GoogleMatrixClient) attempt(ctx context.Context, endpoint string) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", c.withoutKey(err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.session.Do(req)
	if err != nil {
		return nil, c.withoutKey(err)
	}
	if resp.StatusCode < http.StatusBadRequest {
		return resp, nil
	}

	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return nil, &httpStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

// transient reports whether a failed attempt is worth repeating.
// Cancellation never is.
func transient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var se *httpStatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	var ne net.Error
	return errors.As(err, &ne)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// withoutKey replaces the API key in URLs carried by transport errors.
func (c *GoogleMatrixClient) withoutKey(err error) error {
	var ue *url.Error
	if c.apiKey != "" && errors.As(err, &ue) {
		ue.URL = strings.ReplaceAll(ue.URL, url.QueryEscape(c.apiKey), "REDACTED")
	}
	return err
}
