package config

import (
	"context"

	"discord-modbot/utils/database"
	"discord-modbot/utils/database/cases"
	"discord-modbot/utils/database/guildconfig"
	"discord-modbot/utils/logging"

	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v3"
)

// Database holds CLI flags for the sqlite store
type Database struct {
	path string
}

func (d *Database) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "database-path",
			Usage:       "Path of the sqlite database file",
			Value:       "data/modbot.db",
			Sources:     cli.EnvVars("DATABASE_PATH"),
			Destination: &d.path,
		},
	}
}

func (d *Database) Path() string {
	return d.path
}

// Open connects to the database and ensures every table exists.
// The caller is responsible for closing the returned handle.
func (d *Database) Open(ctx context.Context) (*sqlx.DB, error) {
	db, err := database.Open(ctx, d.path)
	if err != nil {
		return nil, err
	}

	for _, create := range []func(context.Context, *sqlx.DB) error{
		cases.CreateTables,
		guildconfig.CreateTables,
	} {
		if err := create(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	logging.Default().Debug("database ready", "path", d.path)
	return db, nil
}
