package service

import (
	"context"
	"encoding/json"
	"sync"

	"go-file-manager/internal/kv"
	"go-file-manager/internal/logger"
	"go-file-manager/internal/model"
	"go-file-manager/pkg/fault"
)

const settingsKey = "settings:app"

// SettingsService keeps the runtime security toggles, persisted in the
// key-value store so they survive restarts. A broken store degrades to the
// in-memory copy.
type SettingsService struct {
	mu      sync.RWMutex
	current model.Settings
	store   kv.Store
	log     *logger.Logger
}

func NewSettingsService(ctx context.Context, store kv.Store, log *logger.Logger) *SettingsService {
	s := &SettingsService{
		current: model.DefaultSettings(),
		store:   store,
		log:     log,
	}

	if raw, err := store.Get(ctx, settingsKey); err == nil {
		var persisted model.Settings
		if json.Unmarshal(raw, &persisted) == nil {
			s.current = persisted
		}
	}

	s.applyLogging(s.current)
	return s
}

func (s *SettingsService) Current(_ context.Context) model.Settings {
	return s.CurrentSettings()
}

// CurrentSettings is the context-free variant the middleware layer uses.
func (s *SettingsService) CurrentSettings() model.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update replaces the settings, persists them, and applies the
// request-logging toggle immediately.
func (s *SettingsService) Update(ctx context.Context, identity model.Identity, next model.Settings) (model.Settings, error) {
	raw, err := json.Marshal(next)
	if err != nil {
		return model.Settings{}, fault.Wrap(fault.KindIO, "encode settings", err)
	}

	if err := s.store.Set(ctx, settingsKey, raw, 0); err != nil {
		s.log.Warn(logger.CategorySystem, "settings not persisted; applying in memory only", map[string]any{
			"error": err.Error(),
		}, nil)
	}

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()

	s.applyLogging(next)
	s.log.Security(identity, "settings_updated", "runtime security settings changed", map[string]any{
		"rateLimit":       next.RateLimit,
		"securityHeaders": next.SecurityHeaders,
		"inputValidation": next.InputValidation,
		"uploadSecurity":  next.UploadSecurity,
		"requestLogging":  next.RequestLogging,
		"csp":             next.CSP,
	})

	return next, nil
}

func (s *SettingsService) applyLogging(settings model.Settings) {
	s.log.SetCategoryEnabled(logger.CategoryRequest, settings.RequestLogging)
}
