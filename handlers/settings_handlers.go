package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"atelierlux/api/logger"
	"atelierlux/api/models"
	"atelierlux/api/store"
)

// SettingRepository is the persistence behind the admin-editable content
// blocks.
type SettingRepository interface {
	Get(ctx context.Context, key string) (*models.SiteSetting, error)
	List(ctx context.Context) ([]models.SiteSetting, error)
	Upsert(ctx context.Context, key string, value json.RawMessage) (*models.SiteSetting, error)
	Delete(ctx context.Context, key string) error
}

type SettingsHandlers struct {
	Settings SettingRepository
	Log      *logger.Logger
}

func NewSettingsHandlers(settings SettingRepository, log *logger.Logger) *SettingsHandlers {
	return &SettingsHandlers{Settings: settings, Log: log}
}

// List returns every content block; the public site loads them all at once to
// render its pages.
func (h *SettingsHandlers) List(c *gin.Context) {
	settings, err := h.Settings.List(c.Request.Context())
	if err != nil {
		h.Log.Error("failed to list settings", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
		return
	}
	if settings == nil {
		settings = []models.SiteSetting{}
	}
	c.JSON(http.StatusOK, settings)
}

func (h *SettingsHandlers) Get(c *gin.Context) {
	key := c.Param("key")
	setting, err := h.Settings.Get(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, store.ErrSettingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Setting not found"})
			return
		}
		h.Log.Error("failed to get setting", "key", key, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load setting"})
		return
	}
	c.JSON(http.StatusOK, setting)
}

// Upsert creates or replaces a content block (admin only).
func (h *SettingsHandlers) Upsert(c *gin.Context) {
	key := c.Param("key")

	var req models.SettingUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	setting, err := h.Settings.Upsert(c.Request.Context(), key, req.Value)
	if err != nil {
		h.Log.Error("failed to upsert setting", "key", key, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save setting"})
		return
	}

	c.JSON(http.StatusOK, setting)
}

func (h *SettingsHandlers) Delete(c *gin.Context) {
	key := c.Param("key")
	if err := h.Settings.Delete(c.Request.Context(), key); err != nil {
		if errors.Is(err, store.ErrSettingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Setting not found"})
			return
		}
		h.Log.Error("failed to delete setting", "key", key, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete setting"})
		return
	}
	c.Status(http.StatusNoContent)
}
