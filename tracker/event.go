package tracker

// Kind discriminates the two event families the collector emits.
type Kind string

const (
	KindPageview Kind = "pageview"
	KindClick    Kind = "click"
)

// SessionInfo is the device/os/browser snapshot attached to every event.
type SessionInfo struct {
	Device  string `json:"device"`
	OS      string `json:"os"`
	Browser string `json:"browser"`
}

// Event is the wire payload accepted by the collection endpoint. Optional
// fields are omitted entirely when absent, never null-padded.
type Event struct {
	SessionID       string            `json:"session_id"`
	Session         SessionInfo       `json:"session"`
	Kind            Kind              `json:"event_type"`
	Path            string            `json:"path"`
	Duration        *int              `json:"duration,omitempty"`
	ElementID       string            `json:"element_id,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	IsAuthenticated *bool             `json:"is_authenticated,omitempty"`
}

// Builder assembles typed event payloads from the tab identity. Construction
// has no side effects beyond the lazy session id generation in Identity.
type Builder struct {
	identity *Identity
}

func NewBuilder(identity *Identity) *Builder {
	return &Builder{identity: identity}
}

// Pageview builds a pageview event. Leave-style pageviews carry the dwell
// duration in seconds; enter-style pageviews pass nil.
func (b *Builder) Pageview(path string, durationSeconds *int, isAuthenticated *bool) Event {
	return Event{
		SessionID:       b.identity.SessionID(),
		Session:         b.identity.Session(),
		Kind:            KindPageview,
		Path:            path,
		Duration:        durationSeconds,
		IsAuthenticated: isAuthenticated,
	}
}

// Click builds a click event for an already-classified element descriptor.
func (b *Builder) Click(path, elementDescriptor string, metadata map[string]string, isAuthenticated *bool) Event {
	return Event{
		SessionID:       b.identity.SessionID(),
		Session:         b.identity.Session(),
		Kind:            KindClick,
		Path:            path,
		ElementID:       elementDescriptor,
		Metadata:        metadata,
		IsAuthenticated: isAuthenticated,
	}
}
