package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"atelierlux/api/logger"
	"atelierlux/api/models"
)

// EventWriter persists collected events.
type EventWriter interface {
	InsertEvents(ctx context.Context, events []models.SiteEvent) error
}

type CollectHandlers struct {
	Events EventWriter
	Log    *logger.Logger
}

func NewCollectHandlers(events EventWriter, log *logger.Logger) *CollectHandlers {
	return &CollectHandlers{Events: events, Log: log}
}

// Collect is the public collection endpoint. The tracker sends one event per
// signal (pageview enter/leave, click), some of them via beacon, so the body
// may be a single object or an array. The response body is never read by the
// client; 202 just acknowledges the attempt.
func (h *CollectHandlers) Collect(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable request body"})
		return
	}

	events, err := decodeEvents(raw)
	if err != nil {
		h.Log.Debug("rejected collect payload", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if len(events) == 0 {
		c.Status(http.StatusAccepted)
		return
	}

	now := time.Now().UTC()
	for i := range events {
		if events[i].EventType != models.EventTypePageview && events[i].EventType != models.EventTypeClick {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unknown event_type %q", events[i].EventType)})
			return
		}
		events[i].EventID = uuid.New().String()
		events[i].ReceivedAt = now
		events[i].UserAgent = c.Request.UserAgent()
		events[i].IPAddress = c.ClientIP()
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	if err := h.Events.InsertEvents(ctx, events); err != nil {
		h.Log.Error("failed to insert collected events", "count", len(events), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record events"})
		return
	}

	c.Status(http.StatusAccepted)
}

func decodeEvents(raw []byte) ([]models.SiteEvent, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var events []models.SiteEvent
		if err := json.Unmarshal(trimmed, &events); err != nil {
			return nil, err
		}
		return events, nil
	}
	var event models.SiteEvent
	if err := json.Unmarshal(trimmed, &event); err != nil {
		return nil, err
	}
	return []models.SiteEvent{event}, nil
}
