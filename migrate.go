package tasks

import (
	"context"
	"io/fs"
	"sort"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// RunMigrations applies every .sql file under the given filesystem in
// lexical order. File names carry a timestamp prefix, so lexical order is
// application order. Statements use IF NOT EXISTS and are safe to re-run.
func RunMigrations(ctx context.Context, db *bun.DB, migrations fs.FS) error {
	var files []string

	err := fs.WalkDir(migrations, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if len(path) > 4 && path[len(path)-4:] == ".sql" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to walk migrations")
	}

	sort.Strings(files)

	for _, file := range files {
		payload, err := fs.ReadFile(migrations, file)
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to read migration").
				WithMetadata(map[string]any{"file": file})
		}

		if _, err := db.ExecContext(ctx, string(payload)); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to apply migration").
				WithMetadata(map[string]any{"file": file})
		}
	}

	return nil
}
