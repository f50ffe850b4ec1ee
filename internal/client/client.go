// Package client is the consuming side of the registry service: it drives
// the add-site flow (validate, probe, merge, persist) and renders merged
// connectivity status for site listings.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonesrussell/gosites/internal/logger"
	"github.com/jonesrussell/gosites/internal/models"
	"github.com/jonesrussell/gosites/internal/probe"
)

// requestTimeout bounds one registry service round-trip.
const requestTimeout = 10 * time.Second

// ErrNotConnected is wrapped when a candidate site fails its probe and is
// therefore not accepted into the registry.
var ErrNotConnected = errors.New("site is not reachable")

// Prober is the connectivity check contract the orchestrator needs.
type Prober interface {
	Check(ctx context.Context, site models.Site) probe.Result
	CheckAll(ctx context.Context, sites []models.Site) []probe.Result
}

// Client orchestrates the registry service and the connectivity probe. The
// probe is called directly, not through the service, so candidate
// credentials are verified before anything is persisted.
type Client struct {
	baseURL string
	http    *http.Client
	prober  Prober
	logger  logger.Logger
}

// New creates a client for the registry service at baseURL.
func New(baseURL string, prober Prober, log logger.Logger) *Client {
	return &Client{
		baseURL: models.NormalizeURL(baseURL),
		http:    &http.Client{Timeout: requestTimeout},
		prober:  prober,
		logger:  log,
	}
}

// errorResponse is the service's error payload.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// AddSite runs the linear add-site flow: validate the candidate locally,
// probe it, merge the observed status into the record, persist it through
// the service, and return the merged record. A candidate that fails its
// probe is rejected with ErrNotConnected and nothing is persisted.
func (c *Client) AddSite(ctx context.Context, site models.Site) (models.Site, error) {
	if err := site.Validate(); err != nil {
		return models.Site{}, err
	}
	site.Normalize()

	result := c.prober.Check(ctx, site)
	if !result.Connected {
		return models.Site{}, fmt.Errorf("%w: %s (%s)", ErrNotConnected, site.URL, result.FailureReason)
	}

	now := time.Now().UTC()
	site.IsConnected = true
	site.LastChecked = &now
	if result.LastPostDate != nil {
		site.LastPost = result.LastPostDate
	}

	if err := c.upsert(ctx, site); err != nil {
		return models.Site{}, err
	}

	c.logger.Info("Site added",
		logger.String("url", site.URL),
		logger.Bool("connected", site.IsConnected),
	)
	return site, nil
}

// RemoveSite deletes a site by URL and returns the remaining collection.
func (c *Client) RemoveSite(ctx context.Context, url string) ([]models.Site, error) {
	body, err := json.Marshal(map[string]string{"url": models.NormalizeURL(url)})
	if err != nil {
		return nil, fmt.Errorf("encode delete request: %w", err)
	}

	if reqErr := c.do(ctx, http.MethodDelete, "/sites", body, nil); reqErr != nil {
		return nil, reqErr
	}
	return c.Sites(ctx)
}

// Sites returns the collection as persisted by the service.
func (c *Client) Sites(ctx context.Context) ([]models.Site, error) {
	var sites []models.Site
	if err := c.do(ctx, http.MethodGet, "/sites", nil, &sites); err != nil {
		return nil, err
	}
	if sites == nil {
		sites = []models.Site{}
	}
	return sites, nil
}

// RefreshStatus probes every site and returns copies with merged
// connectivity observations. Storage is not touched: the refreshed status
// is a view, persisted only when the caller re-saves a record.
func (c *Client) RefreshStatus(ctx context.Context, sites []models.Site) []models.Site {
	results := c.prober.CheckAll(ctx, sites)
	now := time.Now().UTC()

	merged := make([]models.Site, len(sites))
	for i, site := range sites {
		site.IsConnected = results[i].Connected
		site.LastChecked = &now
		if results[i].LastPostDate != nil {
			site.LastPost = results[i].LastPostDate
		}
		merged[i] = site
	}
	return merged
}

func (c *Client) upsert(ctx context.Context, site models.Site) error {
	body, err := json.Marshal(site)
	if err != nil {
		return fmt.Errorf("encode site: %w", err)
	}
	return c.do(ctx, http.MethodPost, "/sites", body, nil)
}

// do issues one service request and decodes the response into out when
// given. Non-2xx responses surface the service's error message and code.
func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp errorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil && errResp.Error != "" {
			return fmt.Errorf("%s %s: %s (%s)", method, path, errResp.Error, errResp.Code)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if decodeErr := json.NewDecoder(resp.Body).Decode(out); decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	return nil
}
