package litestore

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/daybook/daybook/internal/model"
)

type preferenceRow struct {
	OwnerID   string `db:"owner_id"`
	Theme     string `db:"theme"`
	UpdatedAt int64  `db:"updated_at"`
}

// GetOrCreatePreference returns the preference of ownerID, inserting the default when absent.
func (s *Store) GetOrCreatePreference(ctx context.Context, ownerID string) (*model.ThemePreference, error) {
	insert := sq.Insert("theme_preferences").
		Columns("owner_id", "theme", "updated_at").
		Values(ownerID, string(model.DefaultTheme), toUnix(s.now())).
		Suffix("ON CONFLICT (owner_id) DO NOTHING")

	if _, err := s.exec(ctx, insert); err != nil {
		return nil, fmt.Errorf("failed to create preference: %w", err)
	}

	return s.loadPreference(ctx, ownerID)
}

// SetTheme stores theme for ownerID.
func (s *Store) SetTheme(ctx context.Context, ownerID string, theme model.Theme) (*model.ThemePreference, error) {
	upsert := sq.Insert("theme_preferences").
		Columns("owner_id", "theme", "updated_at").
		Values(ownerID, string(theme), toUnix(s.now())).
		Suffix("ON CONFLICT (owner_id) DO UPDATE SET theme = excluded.theme, updated_at = excluded.updated_at")

	if _, err := s.exec(ctx, upsert); err != nil {
		return nil, fmt.Errorf("failed to set theme: %w", err)
	}

	return s.loadPreference(ctx, ownerID)
}

func (s *Store) loadPreference(ctx context.Context, ownerID string) (*model.ThemePreference, error) {
	query := sq.Select("owner_id", "theme", "updated_at").
		From("theme_preferences").
		Where(sq.Eq{"owner_id": ownerID})

	var row preferenceRow
	if err := s.get(ctx, &row, query); err != nil {
		return nil, fmt.Errorf("failed to load preference: %w", err)
	}

	return &model.ThemePreference{
		OwnerID:   row.OwnerID,
		Theme:     model.Theme(row.Theme),
		UpdatedAt: fromUnix(row.UpdatedAt),
	}, nil
}
