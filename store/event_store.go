package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"atelierlux/api/database"
	"atelierlux/api/logger"
	"atelierlux/api/models"
	"atelierlux/api/utils"
)

type EventStore struct {
	DB  *database.ClickHouseClient
	Log *logger.Logger
}

type EventCountByTime struct {
	Time      time.Time `json:"time"`
	EventType *string   `json:"event_type,omitempty"`
	Count     uint64    `json:"count"`
}

func NewEventStore(chClient *database.ClickHouseClient, log *logger.Logger) *EventStore {
	return &EventStore{DB: chClient, Log: log}
}

// InsertEvents batch-inserts collected events. Metadata is stored as a JSON
// string; Duration stays nullable so enter pageviews are distinguishable from
// leave pageviews.
func (s *EventStore) InsertEvents(ctx context.Context, events []models.SiteEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO site_events (
			event_id, event_type, session_id, device, os, browser, path,
			duration, element_id, metadata, is_authenticated,
			received_at, user_agent, ip_address
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	for _, event := range events {
		metadata := "{}"
		if len(event.Metadata) > 0 {
			if raw, merr := json.Marshal(event.Metadata); merr == nil {
				metadata = string(raw)
			}
		}

		err := batch.Append(
			event.EventID,
			event.EventType,
			event.SessionID,
			event.Session.Device,
			event.Session.OS,
			event.Session.Browser,
			event.Path,
			event.Duration,
			event.ElementID,
			metadata,
			event.IsAuthenticated,
			event.ReceivedAt,
			event.UserAgent,
			event.IPAddress,
		)
		if err != nil {
			s.Log.Error("failed to append event to batch", "event_id", event.EventID, "error", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	return nil
}

// GetEventCountsOverTime buckets event counts by the given interval,
// optionally split by event type.
func (s *EventStore) GetEventCountsOverTime(ctx context.Context, interval string, start, end time.Time, eventTypeFilter string) ([]EventCountByTime, error) {
	if !utils.IsValidInterval(interval) {
		return nil, fmt.Errorf("invalid interval: %s", interval)
	}

	args := []interface{}{start, end}
	selectCols := fmt.Sprintf("toStartOf%s(received_at) as time_bucket, count() as total_events", interval)
	groupByCols := "time_bucket"
	whereClause := "WHERE received_at >= ? AND received_at <= ?"
	orderByCols := "time_bucket ASC"
	filtering := eventTypeFilter != ""

	if filtering {
		selectCols += ", event_type"
		groupByCols += ", event_type"
		whereClause += " AND event_type = ?"
		args = append(args, eventTypeFilter)
		orderByCols += ", event_type ASC"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM site_events
		%s
		GROUP BY %s
		ORDER BY %s
	`, selectCols, whereClause, groupByCols, orderByCols)

	rows, err := s.DB.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query event counts over time: %w", err)
	}
	defer rows.Close()

	var results []EventCountByTime
	for rows.Next() {
		var (
			timeBucket time.Time
			count      uint64
			eventType  string
			result     EventCountByTime
		)

		if filtering {
			if err := rows.Scan(&timeBucket, &count, &eventType); err != nil {
				s.Log.Error("failed to scan event count row", "error", err)
				continue
			}
			result.EventType = &eventType
		} else {
			if err := rows.Scan(&timeBucket, &count); err != nil {
				s.Log.Error("failed to scan event count row", "error", err)
				continue
			}
		}

		result.Time = timeBucket
		result.Count = count
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during event counts query: %w", err)
	}

	return results, nil
}

// GetTopPaths ranks pages by enter-style pageviews (the ones without a dwell
// duration), so a page is counted once per visit, not once more on leave.
func (s *EventStore) GetTopPaths(ctx context.Context, start, end time.Time, limit uint64) ([]models.TopPathResult, error) {
	if limit == 0 {
		limit = 10
	}

	query := `
		SELECT path, count() as view_count
		FROM site_events
		WHERE event_type = 'pageview' AND duration IS NULL
		  AND received_at >= ? AND received_at <= ?
		GROUP BY path
		ORDER BY view_count DESC
		LIMIT ?
	`
	rows, err := s.DB.Conn.Query(ctx, query, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top paths: %w", err)
	}
	defer rows.Close()

	var results []models.TopPathResult
	for rows.Next() {
		var path string
		var count uint64
		if err := rows.Scan(&path, &count); err != nil {
			s.Log.Error("failed to scan top path row", "error", err)
			continue
		}
		results = append(results, models.TopPathResult{Path: path, Count: count})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows for top paths: %w", err)
	}

	return results, nil
}

// GetAverageDwell averages the dwell duration of leave-style pageviews,
// optionally for one path.
func (s *EventStore) GetAverageDwell(ctx context.Context, path string, start, end time.Time) (float64, error) {
	query := `
		SELECT avg(duration)
		FROM site_events
		WHERE event_type = 'pageview' AND duration IS NOT NULL
		  AND received_at >= ? AND received_at <= ?
	`
	args := []interface{}{start, end}

	if path != "" {
		query += ` AND path = ?`
		args = append(args, path)
	}

	var avg float64
	if err := s.DB.Conn.QueryRow(ctx, query, args...).Scan(&avg); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return 0.0, nil
		}
		return 0.0, fmt.Errorf("failed to query average dwell: %w", err)
	}

	// avg() over zero rows yields NaN, which JSON cannot carry
	if math.IsNaN(avg) {
		return 0.0, nil
	}

	return avg, nil
}

// GetTopElements ranks click descriptors, surfacing what visitors actually
// interact with (nav items, social links, gallery images).
func (s *EventStore) GetTopElements(ctx context.Context, start, end time.Time, limit uint64) ([]models.TopElementResult, error) {
	if limit == 0 {
		limit = 10
	}

	query := `
		SELECT element_id, count() as click_count
		FROM site_events
		WHERE event_type = 'click' AND element_id != ''
		  AND received_at >= ? AND received_at <= ?
		GROUP BY element_id
		ORDER BY click_count DESC
		LIMIT ?
	`
	rows, err := s.DB.Conn.Query(ctx, query, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top elements: %w", err)
	}
	defer rows.Close()

	var results []models.TopElementResult
	for rows.Next() {
		var elementID string
		var count uint64
		if err := rows.Scan(&elementID, &count); err != nil {
			s.Log.Error("failed to scan top element row", "error", err)
			continue
		}
		results = append(results, models.TopElementResult{ElementID: elementID, Count: count})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows for top elements: %w", err)
	}

	return results, nil
}
