package cases

import (
	"context"
	"time"

	"discord-modbot/model"

	"github.com/jmoiron/sqlx"
	"github.com/m-mizutani/goerr/v2"
)

// Repository is the sqlite-backed case store used by the moderation engine.
type Repository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

func (r *Repository) InsertCase(ctx context.Context, c *model.ModerationCase) (*model.ModerationCase, error) {
	if c == nil {
		return nil, goerr.New("case is required")
	}
	if c.GuildID == "" || c.UserID == "" {
		return nil, goerr.New("case requires guild and user", goerr.V("guild_id", c.GuildID), goerr.V("user_id", c.UserID))
	}
	return AddCase(ctx, r.db, c, r.now())
}

func (r *Repository) GetCase(ctx context.Context, guildID string, number int64) (*model.ModerationCase, error) {
	return GetCase(ctx, r.db, guildID, number)
}

func (r *Repository) ListCases(ctx context.Context, guildID, userID string) ([]*model.ModerationCase, error) {
	return ListCases(ctx, r.db, guildID, userID)
}
