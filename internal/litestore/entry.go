package litestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/samber/lo"

	"github.com/daybook/daybook/internal/calendar"
	"github.com/daybook/daybook/internal/model"
	"github.com/daybook/daybook/internal/store"
)

const entriesTable = "entries"

var entryColumns = []string{"id", "owner_id", "content", "created_at", "updated_at"}

type entryRow struct {
	ID        string `db:"id"`
	OwnerID   string `db:"owner_id"`
	Content   string `db:"content"`
	CreatedAt int64  `db:"created_at"`
	UpdatedAt int64  `db:"updated_at"`
}

func (r entryRow) toModel() *model.Entry {
	return &model.Entry{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Content:   r.Content,
		CreatedAt: fromUnix(r.CreatedAt),
		UpdatedAt: fromUnix(r.UpdatedAt),
	}
}

// CreateEntry inserts e.
func (s *Store) CreateEntry(ctx context.Context, e *model.Entry) error {
	query := sq.Insert(entriesTable).
		Columns(entryColumns...).
		Values(e.ID, e.OwnerID, e.Content, toUnix(e.CreatedAt), toUnix(e.UpdatedAt))

	if _, err := s.exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create entry: %w", err)
	}
	return nil
}

// GetEntry loads an entry owned by ownerID.
func (s *Store) GetEntry(ctx context.Context, ownerID, id string) (*model.Entry, error) {
	query := sq.Select(entryColumns...).From(entriesTable).
		Where(sq.Eq{"id": id, "owner_id": ownerID})

	var row entryRow
	if err := s.get(ctx, &row, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return row.toModel(), nil
}

// DeleteEntry removes an entry if ownerID owns it.
func (s *Store) DeleteEntry(ctx context.Context, ownerID, id string) (bool, error) {
	query := sq.Delete(entriesTable).Where(sq.Eq{"id": id, "owner_id": ownerID})

	n, err := s.exec(ctx, query)
	if err != nil {
		return false, fmt.Errorf("failed to delete entry: %w", err)
	}
	return n > 0, nil
}

// UpdateEntryContent replaces the content of an owned entry.
func (s *Store) UpdateEntryContent(ctx context.Context, ownerID, id, content string, updatedAt time.Time) error {
	query := sq.Update(entriesTable).
		Set("content", content).
		Set("updated_at", toUnix(updatedAt)).
		Where(sq.Eq{"id": id, "owner_id": ownerID})

	n, err := s.exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListEntriesOn returns the entries created on day d, most recent first.
func (s *Store) ListEntriesOn(ctx context.Context, ownerID string, d calendar.Date) ([]*model.Entry, error) {
	start, end := d.Range(s.loc)
	query := sq.Select(entryColumns...).From(entriesTable).
		Where(sq.Eq{"owner_id": ownerID}).
		Where(sq.GtOrEq{"created_at": toUnix(start)}).
		Where(sq.Lt{"created_at": toUnix(end)}).
		OrderBy("created_at DESC", "id DESC")

	return s.listEntries(ctx, query)
}

// ListEntriesBefore returns every entry created before day d.
func (s *Store) ListEntriesBefore(ctx context.Context, ownerID string, d calendar.Date) ([]*model.Entry, error) {
	query := sq.Select(entryColumns...).From(entriesTable).
		Where(sq.Eq{"owner_id": ownerID}).
		Where(sq.Lt{"created_at": toUnix(d.Start(s.loc))})

	return s.listEntries(ctx, query)
}

// EntryDates returns the distinct days with entries.
// SQLite has no time zone support, so days are derived in Go.
func (s *Store) EntryDates(ctx context.Context, ownerID string) ([]calendar.Date, error) {
	query := sq.Select("created_at").From(entriesTable).Where(sq.Eq{"owner_id": ownerID})

	var stamps []int64
	if err := s.selectAll(ctx, &stamps, query); err != nil {
		return nil, fmt.Errorf("failed to list entry dates: %w", err)
	}

	return calendar.DistinctDates(lo.Map(stamps, func(n int64, _ int) time.Time {
		return fromUnix(n)
	}), s.loc), nil
}

// ImportEntries inserts entries in one transaction, skipping any that match
// an existing (owner, created_at, content) triple.
func (s *Store) ImportEntries(ctx context.Context, entries []*model.Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO entries (id, owner_id, content, created_at, updated_at)
		SELECT ?, ?, ?, ?, ?
		WHERE NOT EXISTS (
			SELECT 1 FROM entries WHERE owner_id = ? AND created_at = ? AND content = ?
		)
		ON CONFLICT (id) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare import: %w", err)
	}
	defer stmt.Close()

	imported := 0
	for _, e := range entries {
		updatedAt := e.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = e.CreatedAt
		}
		created := toUnix(e.CreatedAt)

		result, err := stmt.ExecContext(ctx,
			e.ID, e.OwnerID, e.Content, created, toUnix(updatedAt),
			e.OwnerID, created, e.Content,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to import entry %s: %w", e.ID, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to import entry %s: %w", e.ID, err)
		}
		imported += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return imported, nil
}

func (s *Store) listEntries(ctx context.Context, query sq.SelectBuilder) ([]*model.Entry, error) {
	var rows []entryRow
	if err := s.selectAll(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	return lo.Map(rows, func(r entryRow, _ int) *model.Entry {
		return r.toModel()
	}), nil
}
