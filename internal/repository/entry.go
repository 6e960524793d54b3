package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/daybook/daybook/internal/calendar"
	"github.com/daybook/daybook/internal/model"
	"github.com/daybook/daybook/internal/store"
)

const entryColumns = "id, owner_id, content, created_at, updated_at"

// CreateEntry inserts a new entry into the database.
func (r *Repository) CreateEntry(ctx context.Context, e *model.Entry) error {
	query := `
		INSERT INTO entries (id, owner_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		e.ID,
		e.OwnerID,
		e.Content,
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create entry: %w", err)
	}

	return nil
}

// GetEntry retrieves an entry by ID, scoped to its owner.
func (r *Repository) GetEntry(ctx context.Context, ownerID, id string) (*model.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = $1 AND owner_id = $2`

	entry, err := scanEntry(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	return entry, nil
}

// DeleteEntry removes an entry if ownerID owns it.
func (r *Repository) DeleteEntry(ctx context.Context, ownerID, id string) (bool, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM entries WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to delete entry: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// UpdateEntryContent replaces the content of an owned entry.
func (r *Repository) UpdateEntryContent(ctx context.Context, ownerID, id, content string, updatedAt time.Time) error {
	query := `
		UPDATE entries
		SET content = $3, updated_at = $4
		WHERE id = $1 AND owner_id = $2
	`

	result, err := r.pool.Exec(ctx, query, id, ownerID, content, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrNotFound
	}

	return nil
}

// ListEntriesOn returns the entries created on day d, most recent first.
// Ties on created_at fall back to id order, which follows insertion for ULIDs.
func (r *Repository) ListEntriesOn(ctx context.Context, ownerID string, d calendar.Date) ([]*model.Entry, error) {
	start, end := d.Range(r.loc)

	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE owner_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at DESC, id DESC
	`

	return r.queryEntries(ctx, query, ownerID, start, end)
}

// ListEntriesBefore returns every entry created before day d.
func (r *Repository) ListEntriesBefore(ctx context.Context, ownerID string, d calendar.Date) ([]*model.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE owner_id = $1 AND created_at < $2
	`

	return r.queryEntries(ctx, query, ownerID, d.Start(r.loc))
}

// EntryDates returns the distinct days, in the repository time zone, that have entries.
func (r *Repository) EntryDates(ctx context.Context, ownerID string) ([]calendar.Date, error) {
	query := `
		SELECT DISTINCT (created_at AT TIME ZONE $2::text)::date AS day
		FROM entries
		WHERE owner_id = $1
		ORDER BY day
	`

	rows, err := r.pool.Query(ctx, query, ownerID, r.loc.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list entry dates: %w", err)
	}
	defer rows.Close()

	dates := make([]calendar.Date, 0)
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("failed to scan entry date: %w", err)
		}
		dates = append(dates, calendar.FromCivil(day))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry dates: %w", err)
	}

	return dates, nil
}

// ImportEntries bulk inserts entries in one statement.
// Rows matching an existing (owner, created_at, content) are skipped.
func (r *Repository) ImportEntries(ctx context.Context, entries []*model.Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	ids := make([]string, len(entries))
	owners := make([]string, len(entries))
	contents := make([]string, len(entries))
	created := make([]string, len(entries))
	updated := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
		owners[i] = e.OwnerID
		contents[i] = e.Content
		created[i] = e.CreatedAt.Format(time.RFC3339Nano)
		updatedAt := e.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = e.CreatedAt
		}
		updated[i] = updatedAt.Format(time.RFC3339Nano)
	}

	query := `
		INSERT INTO entries (id, owner_id, content, created_at, updated_at)
		SELECT DISTINCT ON (i.owner_id, i.created_at, i.content)
			i.id, i.owner_id, i.content, i.created_at, i.updated_at
		FROM unnest($1::text[], $2::text[], $3::text[], $4::timestamptz[], $5::timestamptz[])
			AS i(id, owner_id, content, created_at, updated_at)
		WHERE NOT EXISTS (
			SELECT 1 FROM entries e
			WHERE e.owner_id = i.owner_id
			  AND e.created_at = i.created_at
			  AND e.content = i.content
		)
		ON CONFLICT (id) DO NOTHING
	`

	result, err := r.pool.Exec(ctx, query,
		pq.Array(ids),
		pq.Array(owners),
		pq.Array(contents),
		pq.Array(created),
		pq.Array(updated),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to import entries: %w", err)
	}

	return int(result.RowsAffected()), nil
}

func (r *Repository) queryEntries(ctx context.Context, query string, args ...any) ([]*model.Entry, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*model.Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}

	return entries, nil
}

// scanEntry scans a single row into an Entry model.
func scanEntry(row pgx.Row) (*model.Entry, error) {
	var e model.Entry
	err := row.Scan(
		&e.ID,
		&e.OwnerID,
		&e.Content,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
