package database

import (
	"context"
	"database/sql"

	"github.com/jask/studydeck/internal/database/repository"
)

// SeedDefaults stores baseline preferences for new databases without
// overwriting anything the user already chose. It is idempotent and safe to
// run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB, theme, startRoute string) error {
	prefs := repository.NewPreferenceRepo(db)
	if err := prefs.SetDefault(ctx, repository.PrefTheme, theme); err != nil {
		return err
	}
	return prefs.SetDefault(ctx, repository.PrefLastRoute, startRoute)
}
