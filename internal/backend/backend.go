// Package backend opens the store named by a database URL.
package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/daybook/daybook/internal/litestore"
	"github.com/daybook/daybook/internal/repository"
	"github.com/daybook/daybook/internal/store"
)

// ErrUnsupportedURL is returned for database URLs with an unknown scheme.
var ErrUnsupportedURL = errors.New("unsupported database URL")

// Kind names a storage engine.
type Kind string

const (
	KindPostgres Kind = "postgres"
	KindSQLite   Kind = "sqlite"
)

// Detect returns the engine for databaseURL and the address to hand to it.
// "sqlite:" URLs keep only the path part; "file:" URIs go to SQLite whole so
// their query options reach the driver.
func Detect(databaseURL string) (Kind, string, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return KindPostgres, databaseURL, nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return KindSQLite, strings.TrimPrefix(databaseURL, "sqlite://"), nil
	case strings.HasPrefix(databaseURL, "sqlite:"):
		return KindSQLite, strings.TrimPrefix(databaseURL, "sqlite:"), nil
	case strings.HasPrefix(databaseURL, "file:"):
		return KindSQLite, databaseURL, nil
	}
	return "", "", fmt.Errorf("%w: %q", ErrUnsupportedURL, redact(databaseURL))
}

// Open connects to the store at databaseURL. Calendar days use loc.
// PostgreSQL migrations are applied when migrate is set; SQLite always
// creates its schema on open.
func Open(ctx context.Context, databaseURL string, loc *time.Location, migrate bool) (store.Store, error) {
	kind, addr, err := Detect(databaseURL)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindSQLite:
		return litestore.Open(ctx, addr, loc)
	default:
		repo, err := repository.New(ctx, addr, loc)
		if err != nil {
			return nil, err
		}
		if migrate {
			if _, err := repo.Migrate(ctx); err != nil {
				repo.Close()
				return nil, fmt.Errorf("apply migrations: %w", err)
			}
		}
		return repo, nil
	}
}

func redact(u string) string {
	if i := strings.Index(u, "@"); i >= 0 {
		if j := strings.Index(u, "://"); j >= 0 && j < i {
			return u[:j+3] + "***" + u[i:]
		}
	}
	return u
}
