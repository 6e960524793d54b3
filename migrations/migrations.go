// Package migrations embeds the PostgreSQL schema migrations.
package migrations

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.sql
var files embed.FS

// Migration is one numbered schema step.
type Migration struct {
	Version string
	Up      string
	Down    string
}

// All returns the migrations in version order.
func All() ([]Migration, error) {
	names, err := fs.Glob(files, "*.up.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	out := make([]Migration, 0, len(names))
	for _, name := range names {
		version := strings.TrimSuffix(name, ".up.sql")

		up, err := fs.ReadFile(files, name)
		if err != nil {
			return nil, err
		}
		down, err := fs.ReadFile(files, version+".down.sql")
		if err != nil {
			return nil, err
		}

		out = append(out, Migration{Version: version, Up: string(up), Down: string(down)})
	}
	return out, nil
}
