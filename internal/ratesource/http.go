package ratesource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/fxpick/internal/candidate"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
)

// StatusError is a non-2xx lookup response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// Temporary reports whether retrying might help: 5xx and 429 do, other
// 4xx do not.
func (e *StatusError) Temporary() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

// HTTP looks up `GET {BaseURL}/{Base}` and expects the exchangerate-api v4
// shape: {"base": "SGD", "rates": {"USD": 0.73, ...}}.
type HTTP struct {
	BaseURL string
	Base    string

	client     *http.Client
	retries    int
	timeout    time.Duration
	log        logr.Logger
	newBackOff func() backoff.BackOff
}

// HTTPOption configures an HTTP source.
type HTTPOption func(*HTTP)

func WithClient(c *http.Client) HTTPOption { return func(h *HTTP) { h.client = c } }

// WithRetries sets how many times a failed attempt is retried.
func WithRetries(n int) HTTPOption { return func(h *HTTP) { h.retries = max(n, 0) } }

// WithTimeout bounds each attempt. Zero keeps the default.
func WithTimeout(d time.Duration) HTTPOption {
	return func(h *HTTP) {
		if d > 0 {
			h.timeout = d
		}
	}
}

func WithLogger(log logr.Logger) HTTPOption { return func(h *HTTP) { h.log = log } }

// WithBackOff replaces the exponential backoff policy; tests use it to
// avoid sleeping.
func WithBackOff(fn func() backoff.BackOff) HTTPOption {
	return func(h *HTTP) { h.newBackOff = fn }
}

// NewHTTP returns a lookup against baseURL for the base currency.
func NewHTTP(baseURL, base string, opts ...HTTPOption) *HTTP {
	h := &HTTP{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Base:    strings.ToUpper(strings.TrimSpace(base)),
		client:  http.DefaultClient,
		retries: 3,
		timeout: defaultTimeout,
		log:     logr.Discard(),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 250 * time.Millisecond
			b.MaxInterval = 4 * time.Second
			b.MaxElapsedTime = 0
			return b
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HTTP) URL() string {
	return h.BaseURL + "/" + url.PathEscape(h.Base)
}

func (h *HTTP) Describe() string { return h.URL() }

// Fetch performs the lookup, retrying transient failures with exponential
// backoff. Client errors (4xx other than 429) and undecodable bodies are
// not retried.
func (h *HTTP) Fetch(ctx context.Context) ([]candidate.Candidate, error) {
	target := h.URL()
	policy := backoff.WithContext(backoff.WithMaxRetries(h.newBackOff(), uint64(h.retries)), ctx)
	attempt := 0

	list, err := backoff.RetryNotifyWithData(func() ([]candidate.Candidate, error) {
		attempt++
		return h.fetchOnce(ctx, target)
	}, policy, func(err error, wait time.Duration) {
		h.log.Info("rate lookup failed, retrying", "url", target, "attempt", attempt, "wait", wait.String(), "error", err.Error())
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	h.log.V(1).Info("rate lookup complete", "url", target, "attempts", attempt, "candidates", len(list))
	return list, nil
}

func (h *HTTP) fetchOnce(ctx context.Context, target string) ([]candidate.Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		serr := &StatusError{Code: resp.StatusCode, URL: target}
		if serr.Temporary() {
			return nil, serr
		}
		return nil, backoff.Permanent(serr)
	}

	var body struct {
		Base  string             `json:"base"`
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode rates: %w", err))
	}
	if body.Rates == nil {
		return nil, backoff.Permanent(errors.New("response has no rates"))
	}
	return candidate.FromRates(body.Rates), nil
}
