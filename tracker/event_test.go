package tracker

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Pageview(t *testing.T) {
	builder := NewBuilder(NewIdentity(NewMemoryStore(), uaMacChrome))

	enter := builder.Pageview("/galerie", nil, nil)
	assert.Equal(t, KindPageview, enter.Kind)
	assert.Equal(t, "/galerie", enter.Path)
	assert.Nil(t, enter.Duration)
	assert.NotEmpty(t, enter.SessionID)
	assert.Equal(t, "desktop", enter.Session.Device)

	d := 42
	leave := builder.Pageview("/galerie", &d, nil)
	require.NotNil(t, leave.Duration)
	assert.Equal(t, 42, *leave.Duration)
	assert.Equal(t, enter.SessionID, leave.SessionID, "one tab, one session id")
}

func TestBuilder_Click(t *testing.T) {
	builder := NewBuilder(NewIdentity(NewMemoryStore(), uaMacChrome))

	click := builder.Click("/", "menu|Contact", nil, nil)
	assert.Equal(t, KindClick, click.Kind)
	assert.Equal(t, "menu|Contact", click.ElementID)
	assert.Equal(t, "/", click.Path)
}

func TestEvent_OptionalFieldsOmitted(t *testing.T) {
	builder := NewBuilder(NewIdentity(NewMemoryStore(), uaMacChrome))

	raw, err := json.Marshal(builder.Pageview("/", nil, nil))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.NotContains(t, decoded, "duration", "absent optionals must be omitted, not null")
	assert.NotContains(t, decoded, "element_id")
	assert.NotContains(t, decoded, "metadata")
	assert.NotContains(t, decoded, "is_authenticated")
	assert.Contains(t, decoded, "session_id")
	assert.Contains(t, decoded, "session")
}
