package tracker

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenStore models a browser where tab storage throws (privacy mode).
type brokenStore struct{}

func (brokenStore) Get(string) (string, error) { return "", errors.New("storage unavailable") }
func (brokenStore) Set(string, string) error   { return errors.New("storage unavailable") }

func TestSessionID_StableWithinTab(t *testing.T) {
	identity := NewIdentity(NewMemoryStore(), uaMacChrome)

	first := identity.SessionID()
	require.NotEmpty(t, first)
	assert.Equal(t, first, identity.SessionID(), "same tab must keep the same session id")
}

func TestSessionID_NewTabGetsNewID(t *testing.T) {
	a := NewIdentity(NewMemoryStore(), uaMacChrome).SessionID()
	b := NewIdentity(NewMemoryStore(), uaMacChrome).SessionID()
	assert.NotEqual(t, a, b)
}

func TestSessionID_StorageFailureDegradesToEmpty(t *testing.T) {
	identity := NewIdentity(brokenStore{}, uaMacChrome)
	assert.Empty(t, identity.SessionID())
}

func TestSessionID_Shape(t *testing.T) {
	id := NewIdentity(NewMemoryStore(), uaMacChrome).SessionID()
	// unix millis, a dash, then random bits
	assert.True(t, strings.Contains(id, "-"), "id should combine time and random parts: %s", id)
}

func TestSession_Snapshot(t *testing.T) {
	identity := NewIdentity(NewMemoryStore(), uaIPhoneSafari)
	info := identity.Session()
	assert.Equal(t, SessionInfo{Device: "mobile", OS: "iOS", Browser: "Safari"}, info)
}
