// Package models defines the site record persisted by the registry.
package models

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// ErrValidation is wrapped by all record validation failures.
var ErrValidation = errors.New("invalid site")

// Site represents a registered WordPress endpoint.
//
// PostInterval and MaxPostsPerDay are numeric strings carried for the
// scheduling layer; the registry does not interpret them. IsConnected,
// LastPost, and LastChecked are observations from the most recent probe
// and may be stale. NextPost is a passthrough field, never computed here.
type Site struct {
	URL            string     `json:"url"`
	Username       string     `json:"username"`
	Password       string     `json:"password"`
	Category       string     `json:"category"`
	PostInterval   string     `json:"post_interval"`
	MaxPostsPerDay string     `json:"max_posts_per_day"`
	IsConnected    bool       `json:"is_connected"`
	LastPost       *time.Time `json:"last_post,omitempty"`
	NextPost       *time.Time `json:"next_post,omitempty"`
	LastChecked    *time.Time `json:"last_checked,omitempty"`
}

// Validate checks the fields required before a site can be probed or
// persisted. It does not touch the network.
func (s *Site) Validate() error {
	if s.URL == "" {
		return fmt.Errorf("%w: url is required", ErrValidation)
	}
	if s.Username == "" {
		return fmt.Errorf("%w: username is required", ErrValidation)
	}
	if s.Password == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}

	parsed, err := url.Parse(NormalizeURL(s.URL))
	if err != nil {
		return fmt.Errorf("%w: url %q is not parseable", ErrValidation, s.URL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: url scheme must be http or https", ErrValidation)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: url has no host", ErrValidation)
	}
	return nil
}

// Normalize canonicalizes the identity URL in place.
func (s *Site) Normalize() {
	s.URL = NormalizeURL(s.URL)
}
