// Package metadata extracts form-prefill hints from a candidate site URL.
package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/gosites/internal/logger"
	"github.com/jonesrussell/gosites/internal/models"
)

// defaultHTTPTimeout is the default timeout for extraction requests.
const defaultHTTPTimeout = 30 * time.Second

// SiteMetadata holds suggested values for the add-site form.
type SiteMetadata struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Generator   string `json:"generator,omitempty"`
	IsWordPress bool   `json:"is_wordpress"`
}

// Extractor fetches a page and reads its metadata. It is read-only and
// unauthenticated; connectivity verification is the probe's job.
type Extractor struct {
	logger logger.Logger
	client *http.Client
}

// NewExtractor creates a metadata extractor.
func NewExtractor(log logger.Logger) *Extractor {
	return &Extractor{
		logger: log,
		client: &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// Extract fetches siteURL and returns prefill suggestions: the page title
// (or og:site_name when present) and whether the generator meta tag looks
// like WordPress.
func (e *Extractor) Extract(ctx context.Context, siteURL string) (*SiteMetadata, error) {
	siteURL = models.NormalizeURL(siteURL)
	if _, err := url.Parse(siteURL); err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, siteURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; gosites/1.0)")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	meta := &SiteMetadata{URL: siteURL}

	meta.Name = strings.TrimSpace(doc.Find("title").First().Text())
	if siteName, ok := doc.Find(`meta[property="og:site_name"]`).Attr("content"); ok && siteName != "" {
		meta.Name = strings.TrimSpace(siteName)
	}

	if generator, ok := doc.Find(`meta[name="generator"]`).Attr("content"); ok {
		meta.Generator = strings.TrimSpace(generator)
		meta.IsWordPress = strings.Contains(strings.ToLower(generator), "wordpress")
	}

	e.logger.Debug("Extracted site metadata",
		logger.String("url", siteURL),
		logger.String("name", meta.Name),
		logger.Bool("is_wordpress", meta.IsWordPress),
	)
	return meta, nil
}
