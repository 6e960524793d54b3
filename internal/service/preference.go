package service

import (
	"context"
	"log/slog"

	"github.com/daybook/daybook/internal/metrics"
	"github.com/daybook/daybook/internal/model"
	"github.com/daybook/daybook/internal/store"
)

// PreferenceService manages the theme preference of accounts.
type PreferenceService struct {
	prefs   store.PreferenceStore
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewPreferenceService creates a new PreferenceService.
func NewPreferenceService(prefs store.PreferenceStore, recorder metrics.Recorder, logger *slog.Logger) *PreferenceService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PreferenceService{prefs: prefs, metrics: recorder, logger: logger}
}

// GetTheme returns the preference of owner, creating the default if absent.
func (s *PreferenceService) GetTheme(ctx context.Context, ownerID string) (*model.ThemePreference, error) {
	return s.prefs.GetOrCreatePreference(ctx, ownerID)
}

// SetTheme stores raw as the theme of owner when it is a known theme.
// Unknown values are dropped without an error; the returned bool reports
// whether anything changed and the current preference is returned either way.
func (s *PreferenceService) SetTheme(ctx context.Context, ownerID, raw string) (*model.ThemePreference, bool, error) {
	theme, ok := model.ParseTheme(raw)
	if !ok {
		s.metrics.IncThemeIgnored()
		s.logger.Debug("theme_ignored", "owner_id", ownerID, "value", raw)

		pref, err := s.prefs.GetOrCreatePreference(ctx, ownerID)
		return pref, false, err
	}

	pref, err := s.prefs.SetTheme(ctx, ownerID, theme)
	if err != nil {
		return nil, false, err
	}

	s.metrics.IncThemeUpdated()
	return pref, true, nil
}
