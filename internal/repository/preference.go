package repository

import (
	"context"
	"fmt"

	"github.com/daybook/daybook/internal/model"
)

// GetOrCreatePreference returns the theme preference of ownerID, inserting
// the default row when none exists yet.
func (r *Repository) GetOrCreatePreference(ctx context.Context, ownerID string) (*model.ThemePreference, error) {
	// The no-op update makes RETURNING yield the existing row on conflict.
	query := `
		INSERT INTO theme_preferences (owner_id, theme, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (owner_id) DO UPDATE SET owner_id = EXCLUDED.owner_id
		RETURNING owner_id, theme, updated_at
	`

	var pref model.ThemePreference
	err := r.pool.QueryRow(ctx, query, ownerID, string(model.DefaultTheme)).
		Scan(&pref.OwnerID, &pref.Theme, &pref.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get preference: %w", notFound(err))
	}

	return &pref, nil
}

// SetTheme stores theme for ownerID.
func (r *Repository) SetTheme(ctx context.Context, ownerID string, theme model.Theme) (*model.ThemePreference, error) {
	query := `
		INSERT INTO theme_preferences (owner_id, theme, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (owner_id) DO UPDATE
		SET theme = EXCLUDED.theme, updated_at = EXCLUDED.updated_at
		RETURNING owner_id, theme, updated_at
	`

	var pref model.ThemePreference
	err := r.pool.QueryRow(ctx, query, ownerID, string(theme)).
		Scan(&pref.OwnerID, &pref.Theme, &pref.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to set theme: %w", err)
	}

	return &pref, nil
}
