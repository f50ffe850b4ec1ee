// Package probe verifies that a registered WordPress endpoint is reachable
// with the stored credentials.
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jonesrussell/gosites/internal/logger"
	"github.com/jonesrussell/gosites/internal/models"
)

const (
	// DefaultTimeout bounds a single probe request.
	DefaultTimeout = 5 * time.Second
	// DefaultMaxConcurrent caps outbound fan-out in CheckAll.
	DefaultMaxConcurrent = 4

	postsPath = "/wp-json/wp/v2/posts"
	// totalHeader is the WordPress REST API post-count header.
	totalHeader = "X-WP-Total"
)

// Reason classifies why a probe failed.
type Reason string

const (
	ReasonNone       Reason = ""
	ReasonTimeout    Reason = "timeout"
	ReasonAuth       Reason = "auth"
	ReasonNetwork    Reason = "network"
	ReasonHTTPStatus Reason = "http-status"
)

// Result is the outcome of a single probe. Connectivity failures are data,
// never errors: a probe always produces a Result.
type Result struct {
	Connected     bool       `json:"connected"`
	PostCount     int        `json:"postCount,omitempty"`
	LastPostDate  *time.Time `json:"lastPostDate,omitempty"`
	FailureReason Reason     `json:"reason,omitempty"`
}

// Checker issues authenticated reads against site content APIs. It holds no
// per-site state; every Check call is independent.
type Checker struct {
	client        *http.Client
	timeout       time.Duration
	maxConcurrent int
	logger        logger.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithTimeout overrides the per-probe timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) { c.timeout = d }
}

// WithMaxConcurrent overrides the CheckAll fan-out cap.
func WithMaxConcurrent(n int) Option {
	return func(c *Checker) { c.maxConcurrent = n }
}

// WithHTTPClient overrides the HTTP client. The Checker still applies its
// own per-probe deadline.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Checker) { c.client = client }
}

// NewChecker creates a probe checker.
func NewChecker(log logger.Logger, opts ...Option) *Checker {
	c := &Checker{
		client:        &http.Client{},
		timeout:       DefaultTimeout,
		maxConcurrent: DefaultMaxConcurrent,
		logger:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// wpPost is the subset of a WordPress post object the probe reads. The
// listing is returned newest first, so the first item carries the most
// recent publish date.
type wpPost struct {
	Date string `json:"date"`
}

// Check issues one authenticated read against the site's post listing and
// classifies the outcome. It never returns an error; all failures are
// represented in the Result. The remote system is only read, never changed.
func (c *Checker) Check(ctx context.Context, site models.Site) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := models.NormalizeURL(site.URL) + postsPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return c.failed(site.URL, ReasonNetwork, err)
	}
	req.SetBasicAuth(site.Username, site.Password)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return c.failed(site.URL, classifyTransportError(err), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return c.failed(site.URL, ReasonAuth, fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return c.failed(site.URL, ReasonHTTPStatus, fmt.Errorf("status %d", resp.StatusCode))
	}

	result := Result{Connected: true}

	var posts []wpPost
	if decodeErr := json.NewDecoder(resp.Body).Decode(&posts); decodeErr == nil {
		result.PostCount = len(posts)
		if len(posts) > 0 {
			if ts, parseErr := parseWPDate(posts[0].Date); parseErr == nil {
				result.LastPostDate = &ts
			}
		}
	}
	if total, parseErr := strconv.Atoi(resp.Header.Get(totalHeader)); parseErr == nil {
		result.PostCount = total
	}

	c.logger.Debug("Probe succeeded",
		logger.String("url", site.URL),
		logger.Int("post_count", result.PostCount),
	)
	return result
}

// CheckAll probes every site with bounded concurrency. Results are returned
// in input order.
func (c *Checker) CheckAll(ctx context.Context, sites []models.Site) []Result {
	results := make([]Result, len(sites))
	sem := make(chan struct{}, c.maxConcurrent)
	done := make(chan struct{})

	for i := range sites {
		go func(i int) {
			sem <- struct{}{}
			defer func() { <-sem; done <- struct{}{} }()
			results[i] = c.Check(ctx, sites[i])
		}(i)
	}
	for range sites {
		<-done
	}
	return results
}

func (c *Checker) failed(url string, reason Reason, err error) Result {
	c.logger.Debug("Probe failed",
		logger.String("url", url),
		logger.String("reason", string(reason)),
		logger.Error(err),
	)
	return Result{Connected: false, FailureReason: reason}
}

func classifyTransportError(err error) Reason {
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}
	return ReasonNetwork
}

// parseWPDate handles the WordPress REST date format, which omits a zone
// offset, as well as full RFC 3339 stamps.
func parseWPDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("empty date")
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02T15:04:05", raw)
}
