package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"atelierlux/api/logger"
	"atelierlux/api/models"
	"atelierlux/api/store"
)

// StatsReader serves the admin dashboard queries.
type StatsReader interface {
	GetEventCountsOverTime(ctx context.Context, interval string, start, end time.Time, eventTypeFilter string) ([]store.EventCountByTime, error)
	GetTopPaths(ctx context.Context, start, end time.Time, limit uint64) ([]models.TopPathResult, error)
	GetAverageDwell(ctx context.Context, path string, start, end time.Time) (float64, error)
	GetTopElements(ctx context.Context, start, end time.Time, limit uint64) ([]models.TopElementResult, error)
}

type StatsHandlers struct {
	Stats StatsReader
	Log   *logger.Logger
}

func NewStatsHandlers(stats StatsReader, log *logger.Logger) *StatsHandlers {
	return &StatsHandlers{Stats: stats, Log: log}
}

// parseTimeRange reads optional RFC3339 start/end query params, defaulting to
// the last 7 days.
func parseTimeRange(c *gin.Context) (start, end time.Time, ok bool) {
	end = time.Now().UTC()
	start = end.Add(-7 * 24 * time.Hour)

	if startParam := c.Query("start"); startParam != "" {
		parsed, err := time.Parse(time.RFC3339, startParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'start' timestamp format. Use RFC3339 (e.g., 2006-01-02T15:04:05Z)"})
			return start, end, false
		}
		start = parsed
	}
	if endParam := c.Query("end"); endParam != "" {
		parsed, err := time.Parse(time.RFC3339, endParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'end' timestamp format. Use RFC3339 (e.g., 2006-01-02T15:04:05Z)"})
			return start, end, false
		}
		end = parsed
	}
	return start, end, true
}

func parseLimit(c *gin.Context) (uint64, bool) {
	var limit uint64 = 10
	if limitParam := c.Query("limit"); limitParam != "" {
		parsed, err := strconv.ParseUint(limitParam, 10, 64)
		if err != nil || parsed == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'limit' parameter. Must be a positive integer."})
			return 0, false
		}
		limit = parsed
	}
	return limit, true
}

func (h *StatsHandlers) GetEventCountsOverTime(c *gin.Context) {
	interval := c.Query("interval")
	if interval == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "interval query parameter is required (e.g., 'Day', 'Hour')"})
		return
	}

	start, end, ok := parseTimeRange(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	results, err := h.Stats.GetEventCountsOverTime(ctx, interval, start, end, c.Query("eventType"))
	if err != nil {
		h.Log.Error("failed to get event counts over time", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve event statistics"})
		return
	}

	c.JSON(http.StatusOK, results)
}

func (h *StatsHandlers) GetTopPaths(c *gin.Context) {
	start, end, ok := parseTimeRange(c)
	if !ok {
		return
	}
	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	results, err := h.Stats.GetTopPaths(ctx, start, end, limit)
	if err != nil {
		h.Log.Error("failed to get top paths", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve top page paths"})
		return
	}

	c.JSON(http.StatusOK, results)
}

// GetAverageDwell reports the average dwell duration (seconds) of leave-style
// pageviews, optionally filtered by path.
func (h *StatsHandlers) GetAverageDwell(c *gin.Context) {
	start, end, ok := parseTimeRange(c)
	if !ok {
		return
	}
	path := c.Query("path")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	avg, err := h.Stats.GetAverageDwell(ctx, path, start, end)
	if err != nil {
		h.Log.Error("failed to get average dwell", "path", path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve average dwell statistics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"path":                path,
		"startDate":           start.Format(time.RFC3339),
		"endDate":             end.Format(time.RFC3339),
		"averageDwellSeconds": avg,
	})
}

func (h *StatsHandlers) GetTopElements(c *gin.Context) {
	start, end, ok := parseTimeRange(c)
	if !ok {
		return
	}
	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	results, err := h.Stats.GetTopElements(ctx, start, end, limit)
	if err != nil {
		h.Log.Error("failed to get top elements", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve top clicked elements"})
		return
	}

	c.JSON(http.StatusOK, results)
}
