package models

import (
	"encoding/json"
	"time"
)

// SiteSetting is one admin-editable content block, persisted as a key mapping
// to an opaque JSON value (text, image references, video embeds...). The
// public site reads them to render its pages; only admins may write.
type SiteSetting struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type SettingUpsertRequest struct {
	Value json.RawMessage `json:"value" binding:"required"`
}
