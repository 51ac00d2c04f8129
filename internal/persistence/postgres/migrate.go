package postgres

import (
	"context"
	"embed"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

//go:embed migrations/*.up.sql
var migrations embed.FS

// Migrate applies the embedded schema files in lexical order. Every file is
// idempotent, so running it against an existing schema is a no-op.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	names, err := fs.Glob(migrations, "migrations/*.up.sql")
	if err != nil {
		return errors.WithStack(err)
	}
	sort.Strings(names)

	for _, name := range names {
		contents, err := migrations.ReadFile(name)
		if err != nil {
			return errors.Wrapf(err, "read %s", name)
		}
		if _, err := pool.Exec(ctx, string(contents)); err != nil {
			return errors.Wrapf(err, "apply %s", name)
		}
	}
	return nil
}
