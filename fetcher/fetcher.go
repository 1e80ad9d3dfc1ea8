package fetcher

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

const (
	defaultMaxBytes = 10 << 20 // 10MiB
	acceptHeader    = "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5"
)

// RetryPolicy bounds how often a single feed is requested before giving up.
// MaxAttempts counts the first request.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Delay: time.Second}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOffContext {
	retries := 0
	if p.MaxAttempts > 1 {
		retries = p.MaxAttempts - 1
	}
	return backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Delay), uint64(retries)),
		ctx,
	)
}

// FetchError is returned once every attempt for a feed has failed
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s failed after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// StatusError is an attempt that got a non-2xx answer
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %s", e.Status)
}

type Config struct {
	// Timeout applies to every single attempt, not to the whole retry loop
	Timeout   time.Duration
	Policy    RetryPolicy
	UserAgent string
	MaxBytes  int64
	Client    *http.Client
}

// Fetcher retrieves raw feed documents. It holds no mutable state and is
// safe for concurrent use by many aggregation tasks.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	policy    RetryPolicy
	userAgent string
	maxBytes  int64
}

func New(config Config) *Fetcher {
	client := config.Client
	if client == nil {
		client = newHTTPClient()
	}

	maxBytes := config.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}

	policy := config.Policy
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	return &Fetcher{
		client:    client,
		timeout:   config.Timeout,
		policy:    policy,
		userAgent: config.UserAgent,
		maxBytes:  maxBytes,
	}
}

// Fetch returns the raw document behind feedURL, retrying per the policy.
// The returned error is always a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]byte, error) {
	var body []byte
	attempts := 0

	operation := func() error {
		attempts++
		fetchAttempts.Inc()

		data, err := f.attempt(ctx, feedURL)
		if err != nil {
			fetchAttemptFailures.WithLabelValues(failureReason(err)).Inc()
			return err
		}

		body = data
		return nil
	}

	notify := func(err error, next time.Duration) {
		log.WithFields(log.Fields{
			"url":     feedURL,
			"attempt": attempts,
			"retryIn": next,
			"error":   err,
		}).Debug("Feed request failed, retrying")
	}

	if err := backoff.RetryNotify(operation, f.policy.backOff(ctx), notify); err != nil {
		fetchFailures.Inc()
		return nil, &FetchError{URL: feedURL, Attempts: attempts, Err: err}
	}

	return body, nil
}

// attempt performs one request under its own timeout scope
func (f *Fetcher) attempt(ctx context.Context, feedURL string) ([]byte, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("invalid feed url: %w", err))
	}
	req.Header.Set("Accept", acceptHeader)
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, backoff.Permanent(fmt.Errorf("feed larger than %d bytes", f.maxBytes))
	}

	return data, nil
}

func failureReason(err error) string {
	var statusErr *StatusError
	var netErr net.Error
	switch {
	case errors.As(err, &statusErr):
		return "status"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	default:
		return "transport"
	}
}

func newHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &http.Client{Transport: transport}
}
