package models

import "time"

// Event kinds accepted by the collection endpoint.
const (
	EventTypePageview = "pageview"
	EventTypeClick    = "click"
)

// SessionSnapshot carries the device/os/browser facts the tracker derived
// once per tab.
type SessionSnapshot struct {
	Device  string `json:"device"`
	OS      string `json:"os"`
	Browser string `json:"browser"`
}

// SiteEvent is a single analytics fact collected from the public site.
// EventID, ReceivedAt, UserAgent and IPAddress are stamped server-side; the
// rest comes from the tracker payload. Duration is only present on
// leave-style pageviews, ElementID only on clicks.
type SiteEvent struct {
	EventID         string            `json:"event_id"`
	EventType       string            `json:"event_type"`
	SessionID       string            `json:"session_id"`
	Session         SessionSnapshot   `json:"session"`
	Path            string            `json:"path"`
	Duration        *int64            `json:"duration,omitempty"`
	ElementID       string            `json:"element_id,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	IsAuthenticated *bool             `json:"is_authenticated,omitempty"`
	ReceivedAt      time.Time         `json:"received_at"`
	UserAgent       string            `json:"user_agent,omitempty"`
	IPAddress       string            `json:"ip_address,omitempty"`
}

type TopPathResult struct {
	Path  string `json:"path"`
	Count uint64 `json:"count"`
}

type TopElementResult struct {
	ElementID string `json:"element_id"`
	Count     uint64 `json:"count"`
}
