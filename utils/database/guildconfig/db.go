package guildconfig

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"discord-modbot/model"

	"github.com/jmoiron/sqlx"
	"github.com/m-mizutani/goerr/v2"
)

// CreateTables ensures the guild_configs table exists.
func CreateTables(ctx context.Context, db *sqlx.DB) error {
	schema := `CREATE TABLE IF NOT EXISTS guild_configs (
		guild_id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		jail_role_id TEXT NOT NULL DEFAULT '',
		jail_channel_id TEXT NOT NULL DEFAULT '',
		updated_at INTEGER NOT NULL DEFAULT 0
	);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return goerr.Wrap(err, "failed to create guild_configs table")
	}
	return nil
}

// Get returns the stored config of guildID, or nil when the guild has none.
func Get(ctx context.Context, db *sqlx.DB, guildID string) (*model.GuildConfig, error) {
	var cfg model.GuildConfig
	query := `SELECT guild_id, name, jail_role_id, jail_channel_id FROM guild_configs WHERE guild_id = ?`
	if err := db.GetContext(ctx, &cfg, query, guildID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get guild config", goerr.V("guild_id", guildID))
	}
	return &cfg, nil
}

// List returns every stored guild config ordered by guild id.
func List(ctx context.Context, db *sqlx.DB) ([]model.GuildConfig, error) {
	var configs []model.GuildConfig
	query := `SELECT guild_id, name, jail_role_id, jail_channel_id FROM guild_configs ORDER BY guild_id`
	if err := db.SelectContext(ctx, &configs, query); err != nil {
		return nil, goerr.Wrap(err, "failed to list guild configs")
	}
	return configs, nil
}

// Upsert stores cfg, replacing any previous config of the same guild.
func Upsert(ctx context.Context, db *sqlx.DB, cfg model.GuildConfig) error {
	if cfg.GuildID == "" {
		return goerr.New("guild id is required")
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO guild_configs (guild_id, name, jail_role_id, jail_channel_id, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(guild_id) DO UPDATE SET
			name = excluded.name,
			jail_role_id = excluded.jail_role_id,
			jail_channel_id = excluded.jail_channel_id,
			updated_at = excluded.updated_at;
	`, cfg.GuildID, cfg.Name, cfg.JailRoleID, cfg.JailChannelID, time.Now().Unix())
	if err != nil {
		return goerr.Wrap(err, "failed to upsert guild config", goerr.V("guild_id", cfg.GuildID))
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit guild config", goerr.V("guild_id", cfg.GuildID))
	}
	return nil
}
