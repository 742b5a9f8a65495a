package tracker

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSender_DeliversInOrder(t *testing.T) {
	var mu sync.Mutex
	var received []Event

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var event Event
		require.NoError(t, json.Unmarshal(body, &event))
		mu.Lock()
		received = append(received, event)
		mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sender := NewHTTPSender(srv.URL, nil)

	leave := 5
	sender.Send(Event{Kind: KindPageview, Path: "/a", Duration: &leave}, false)
	sender.Send(Event{Kind: KindPageview, Path: "/b"}, false)
	sender.Send(Event{Kind: KindPageview, Path: "/b", Duration: &leave}, true)
	sender.Close(2 * time.Second)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 3)
	assert.Equal(t, "/a", received[0].Path)
	assert.NotNil(t, received[0].Duration, "the leave for the previous page goes first")
	assert.Equal(t, "/b", received[1].Path)
	assert.Nil(t, received[1].Duration)
	assert.Equal(t, "/b", received[2].Path)
}

func TestHTTPSender_SwallowsDeliveryFailure(t *testing.T) {
	// nothing is listening here
	sender := NewHTTPSender("http://127.0.0.1:1/collect", nil)
	sender.Send(Event{Kind: KindClick, Path: "/"}, false)
	// must not panic, must not block
	sender.Close(2 * time.Second)
}

func TestHTTPSender_SendAfterCloseIsNoop(t *testing.T) {
	sender := NewHTTPSender("http://127.0.0.1:1/collect", nil)
	sender.Close(time.Second)
	sender.Send(Event{Kind: KindClick, Path: "/"}, false)
	sender.Send(Event{Kind: KindPageview, Path: "/"}, true)
	sender.Close(time.Second)
}
