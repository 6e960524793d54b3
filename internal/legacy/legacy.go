// Package legacy imports accounts and entries from the SQLite database of
// the earlier journal application.
//
// The source holds two tables:
//
//	users(id, username, password_hash, created_at)
//	journal(id, user_id, timestamp, content)
//
// Old password hashes use a scheme Daybook does not verify, so imported
// accounts get an unusable password and must reset it.
package legacy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/daybook/daybook/internal/model"
)

// ErrNoUsersTable is returned when the source has nothing to import.
var ErrNoUsersTable = errors.New("legacy database has no users table")

// batchSize bounds how many entries go to the store per call.
const batchSize = 500

// AccountImporter finds or creates accounts by username.
type AccountImporter interface {
	ImportAccount(ctx context.Context, username string, createdAt time.Time) (*model.Account, bool, error)
}

// EntryImporter stores entries keeping their timestamps and reports how
// many were new.
type EntryImporter interface {
	ImportEntries(ctx context.Context, entries []*model.Entry) (int, error)
}

// Report summarises an import run.
type Report struct {
	AccountsCreated  int
	AccountsExisting int
	EntriesImported  int
	EntriesSkipped   int // already present
	EntriesOrphaned  int // user_id without a matching user
}

type userRow struct {
	ID        int64  `db:"id"`
	Username  string `db:"username"`
	CreatedAt string `db:"created_at"`
}

type journalRow struct {
	ID        int64  `db:"id"`
	UserID    int64  `db:"user_id"`
	Timestamp string `db:"timestamp"`
	Content   string `db:"content"`
}

// Importer copies a legacy database into Daybook.
type Importer struct {
	accounts AccountImporter
	entries  EntryImporter
	loc      *time.Location
	logger   *slog.Logger
}

// NewImporter creates an Importer. Timestamps without a zone are read in loc.
func NewImporter(accounts AccountImporter, entries EntryImporter, loc *time.Location, logger *slog.Logger) *Importer {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{accounts: accounts, entries: entries, loc: loc, logger: logger}
}

// OpenSource opens the legacy database read-only.
func OpenSource(ctx context.Context, path string) (*sqlx.DB, error) {
	dsn := "file:" + path + "?mode=ro"
	db, err := sqlx.ConnectContext(ctx, "sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy database: %w", err)
	}
	return db, nil
}

// Run imports every user and entry of src. Running it twice imports nothing
// the second time.
func (i *Importer) Run(ctx context.Context, src *sqlx.DB) (*Report, error) {
	var tables int
	if err := src.GetContext(ctx, &tables,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'users'`); err != nil {
		return nil, fmt.Errorf("failed to inspect legacy database: %w", err)
	}
	if tables == 0 {
		return nil, ErrNoUsersTable
	}

	report := &Report{}

	owners, err := i.importUsers(ctx, src, report)
	if err != nil {
		return nil, err
	}
	if err := i.importEntries(ctx, src, owners, report); err != nil {
		return nil, err
	}

	i.logger.Info("legacy_import_completed",
		"accounts_created", report.AccountsCreated,
		"accounts_existing", report.AccountsExisting,
		"entries_imported", report.EntriesImported,
		"entries_skipped", report.EntriesSkipped,
		"entries_orphaned", report.EntriesOrphaned,
	)
	return report, nil
}

// importUsers maps legacy user ids to Daybook account ids.
func (i *Importer) importUsers(ctx context.Context, src *sqlx.DB, report *Report) (map[int64]string, error) {
	var users []userRow
	if err := src.SelectContext(ctx, &users,
		`SELECT id, username, COALESCE(created_at, '') AS created_at FROM users ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to read legacy users: %w", err)
	}

	owners := make(map[int64]string, len(users))
	for _, u := range users {
		var createdAt time.Time
		if u.CreatedAt != "" {
			t, err := parseTimestamp(u.CreatedAt, i.loc)
			if err != nil {
				i.logger.Warn("legacy_user_bad_created_at", "username", u.Username, "value", u.CreatedAt)
			} else {
				createdAt = t
			}
		}

		account, created, err := i.accounts.ImportAccount(ctx, u.Username, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to import user %q: %w", u.Username, err)
		}
		if created {
			report.AccountsCreated++
			i.logger.Info("legacy_account_created", "username", u.Username, "account_id", account.ID)
		} else {
			report.AccountsExisting++
			i.logger.Info("legacy_account_exists", "username", u.Username, "account_id", account.ID)
		}
		owners[u.ID] = account.ID
	}
	return owners, nil
}

func (i *Importer) importEntries(ctx context.Context, src *sqlx.DB, owners map[int64]string, report *Report) error {
	rows, err := src.QueryxContext(ctx,
		`SELECT id, user_id, timestamp, content FROM journal ORDER BY timestamp, id`)
	if err != nil {
		return fmt.Errorf("failed to read legacy journal: %w", err)
	}
	defer rows.Close()

	batch := make([]*model.Entry, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := i.entries.ImportEntries(ctx, batch)
		if err != nil {
			return fmt.Errorf("failed to import entries: %w", err)
		}
		report.EntriesImported += n
		report.EntriesSkipped += len(batch) - n
		batch = batch[:0]
		return nil
	}

	for rows.Next() {
		var row journalRow
		if err := rows.StructScan(&row); err != nil {
			return fmt.Errorf("failed to scan legacy entry: %w", err)
		}

		owner, ok := owners[row.UserID]
		if !ok {
			report.EntriesOrphaned++
			i.logger.Warn("legacy_entry_unknown_user", "entry_id", row.ID, "user_id", row.UserID)
			continue
		}

		ts, err := parseTimestamp(row.Timestamp, i.loc)
		if err != nil {
			return fmt.Errorf("legacy entry %d: %w", row.ID, err)
		}

		batch = append(batch, &model.Entry{
			OwnerID:   owner,
			Content:   row.Content,
			CreatedAt: ts.UTC(),
			UpdatedAt: ts.UTC(),
		})
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read legacy journal: %w", err)
	}
	return flush()
}

// Layouts accepted for legacy timestamps, tried in order. Values without
// an offset are interpreted in the importer's location.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func parseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", raw)
}
