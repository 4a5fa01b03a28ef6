package guildconfig

import (
	"context"
	"time"

	"discord-modbot/model"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/jmoiron/sqlx"
)

const cacheSize = 1024

// Store serves guild configs from sqlite through a TTL cache.
// Guilds without a row are cached as empty configs, so unset ids read as "".
type Store struct {
	db    *sqlx.DB
	cache *expirable.LRU[string, model.GuildConfig]
}

func NewStore(db *sqlx.DB, ttl time.Duration) *Store {
	return &Store{
		db:    db,
		cache: expirable.NewLRU[string, model.GuildConfig](cacheSize, nil, ttl),
	}
}

// Config returns the config of guildID; a guild with no row yields a config with empty ids.
func (s *Store) Config(ctx context.Context, guildID string) (model.GuildConfig, error) {
	if cfg, ok := s.cache.Get(guildID); ok {
		return cfg, nil
	}

	stored, err := Get(ctx, s.db, guildID)
	if err != nil {
		return model.GuildConfig{}, err
	}
	cfg := model.GuildConfig{GuildID: guildID}
	if stored != nil {
		cfg = *stored
	}
	s.cache.Add(guildID, cfg)
	return cfg, nil
}

func (s *Store) JailRoleID(ctx context.Context, guildID string) (string, error) {
	cfg, err := s.Config(ctx, guildID)
	if err != nil {
		return "", err
	}
	return cfg.JailRoleID, nil
}

func (s *Store) JailChannelID(ctx context.Context, guildID string) (string, error) {
	cfg, err := s.Config(ctx, guildID)
	if err != nil {
		return "", err
	}
	return cfg.JailChannelID, nil
}

// Save upserts cfg and drops the cached copy.
func (s *Store) Save(ctx context.Context, cfg model.GuildConfig) error {
	if err := Upsert(ctx, s.db, cfg); err != nil {
		return err
	}
	s.Invalidate(cfg.GuildID)
	return nil
}

func (s *Store) Invalidate(guildID string) {
	s.cache.Remove(guildID)
}
