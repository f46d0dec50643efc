package gositemapbuilder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultUserAgent  = "go-sitemap-builder/1.0"
	maxRetryAttempts  = 3
	defaultRetryDelay = 5 * time.Second
	maxRetryDelay     = 30 * time.Second
)

// FetchOptions configures FetchSitemap.
type FetchOptions struct {
	HTTPClient        *http.Client
	UserAgent         string
	PerRequestTimeout time.Duration
	Logger            *slog.Logger
}

// FetchSitemap downloads a published sitemap so it can be merged with Load.
// 429 responses are retried a few times, honoring Retry-After; any other non-2xx
// status is returned as *ErrHTTPStatus. The caller must close the returned body.
func FetchSitemap(ctx context.Context, loc *url.URL, opts FetchOptions) (io.ReadCloser, error) {
	if loc == nil || loc.Host == "" || (loc.Scheme != "http" && loc.Scheme != "https") {
		return nil, &ErrInvalidInput{Field: "sitemap URL", Value: fmt.Sprint(loc), Err: errors.New("must be an http(s) URL")}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	for attempt := 0; attempt <= maxRetryAttempts; attempt++ {
		req, cancel, err := newRequest(ctx, loc, opts)
		if err != nil {
			return nil, err
		}

		resp, err := opts.HTTPClient.Do(req)
		if err != nil {
			cancel()
			return nil, err
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			delay := retryDelay(resp)
			resp.Body.Close()
			cancel()
			if attempt == maxRetryAttempts {
				return nil, &ErrHTTPStatus{URL: loc, StatusCode: resp.StatusCode, Status: resp.Status}
			}
			opts.Logger.Debug(fmt.Sprintf("received 429 for %s, retrying in %s", loc, delay))
			if err := sleepWithContext(ctx, delay); err != nil {
				return nil, err
			}
			continue
		}
		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			resp.Body.Close()
			cancel()
			return nil, &ErrHTTPStatus{URL: loc, StatusCode: resp.StatusCode, Status: resp.Status}
		}

		return &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}, nil
	}

	return nil, &ErrHTTPStatus{URL: loc, StatusCode: http.StatusTooManyRequests, Status: http.StatusText(http.StatusTooManyRequests)}
}

func newRequest(ctx context.Context, loc *url.URL, opts FetchOptions) (*http.Request, context.CancelFunc, error) {
	cancel := context.CancelFunc(func() {})
	if opts.PerRequestTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, opts.PerRequestTimeout)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc.String(), nil)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	req.Header.Set("User-Agent", opts.UserAgent)
	return req, cancel, nil
}

// retryDelay reads Retry-After as seconds or an HTTP date, falling back to
// defaultRetryDelay and capping at maxRetryDelay.
func retryDelay(resp *http.Response) time.Duration {
	delay := defaultRetryDelay
	if resp != nil {
		value := strings.TrimSpace(resp.Header.Get("Retry-After"))
		if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
			delay = time.Duration(seconds) * time.Second
		} else if at, err := http.ParseTime(value); err == nil && time.Until(at) > 0 {
			delay = time.Until(at)
		}
	}
	return min(delay, maxRetryDelay)
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// cancelOnClose releases the per-request timeout once the body is closed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}
