// Package tracker implements the site's first-party analytics pipeline: a
// per-tab session identity, typed event payloads, a click classifier, a
// fire-and-forget delivery transport and the page lifecycle collector that
// wires them together. Nothing in this package may break the hosting page:
// every failure degrades to "skip this one signal".
package tracker

import (
	"crypto/rand"
	"encoding/base64"
	"strconv"
	"time"
)

// Store is tab-scoped string storage. An implementation must survive a reload
// of the page that owns it and must never be shared across tabs. Get returns
// an empty string for a missing key.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// MemoryStore is a Store for tests and non-browser hosts.
type MemoryStore struct {
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, error) { return s.values[key], nil }

func (s *MemoryStore) Set(key, value string) error {
	s.values[key] = value
	return nil
}

// The two storage keys owned by this package. Their names are an
// implementation detail; only their tab-scoped semantics matter.
const (
	sessionKey   = "alx_session_id"
	pageEnterKey = "alx_page_enter"
)

// Identity derives and persists the tab's analytics identity.
type Identity struct {
	store     Store
	userAgent string
	now       func() time.Time
}

func NewIdentity(store Store, userAgent string) *Identity {
	return &Identity{store: store, userAgent: userAgent, now: time.Now}
}

// SessionID returns the tab's session identifier, generating and persisting
// one on first use. If storage is unavailable it returns an empty string and
// the session stays effectively anonymous; callers must tolerate that.
func (i *Identity) SessionID() string {
	id, err := i.store.Get(sessionKey)
	if err != nil {
		return ""
	}
	if id != "" {
		return id
	}
	id = newSessionID(i.now())
	if err := i.store.Set(sessionKey, id); err != nil {
		return ""
	}
	return id
}

// Session snapshots the static environment facts sent with every event.
func (i *Identity) Session() SessionInfo {
	return SessionInfo{
		Device:  Device(i.userAgent),
		OS:      OS(i.userAgent),
		Browser: Browser(i.userAgent),
	}
}

func newSessionID(now time.Time) string {
	b := make([]byte, 9)
	if _, err := rand.Read(b); err != nil {
		return strconv.FormatInt(now.UnixMilli(), 10)
	}
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + base64.RawURLEncoding.EncodeToString(b)
}
