// Package events publishes site lifecycle events to a Redis stream.
package events

import (
	"time"

	"github.com/google/uuid"
)

// StreamName is the Redis stream site events are appended to.
const StreamName = "gosites:site-events"

// EventType identifies what happened to a site record.
type EventType string

const (
	SiteCreated EventType = "site.created"
	SiteUpdated EventType = "site.updated"
	SiteDeleted EventType = "site.deleted"
	SiteChecked EventType = "site.checked"
)

// SiteEvent describes a change to a site record. Payloads identify the site
// by URL only; credentials never leave the registry.
type SiteEvent struct {
	EventID   uuid.UUID `json:"event_id"`
	EventType EventType `json:"event_type"`
	SiteURL   string    `json:"site_url"`
	Connected *bool     `json:"connected,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
