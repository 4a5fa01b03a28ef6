package cases

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/m-mizutani/goerr/v2"
)

// CreateTables ensures the cases table exists.
func CreateTables(ctx context.Context, db *sqlx.DB) error {
	casesSchema := `CREATE TABLE IF NOT EXISTS cases (
		case_id INTEGER PRIMARY KEY AUTOINCREMENT,
		case_number INTEGER NOT NULL,
		guild_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		moderator_id TEXT NOT NULL,
		case_type TEXT NOT NULL,
		reason TEXT NOT NULL,
		user_roles_json TEXT NOT NULL DEFAULT '[]',
		created_at INTEGER NOT NULL,
		UNIQUE(guild_id, case_number)
	);`
	if _, err := db.ExecContext(ctx, casesSchema); err != nil {
		return goerr.Wrap(err, "failed to create cases table")
	}

	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_cases_guild_user ON cases (guild_id, user_id)`); err != nil {
		return goerr.Wrap(err, "failed to create cases index")
	}

	return nil
}
