package config

import (
	"errors"
	"os"
	"strings"

	"discord-modbot/model"
	"discord-modbot/utils/logging"

	"github.com/joho/godotenv"
	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/viper"
)

// LoadEnv loads a .env file into the process environment when one exists.
func LoadEnv(paths ...string) {
	if err := godotenv.Load(paths...); err != nil {
		logging.Default().Info(".env file not found, relying on environment variables")
	}
}

// Validate checks the settings the gateway connection cannot start without.
func Validate(cfg *model.Config) error {
	if cfg.BotToken == "" {
		return goerr.New("BOT_TOKEN is not set")
	}
	if cfg.AppID == "" {
		return goerr.New("APP_ID is not set")
	}
	if cfg.LogChannelID == "" {
		logging.Default().Warn("LOG_CHANNEL_ID not set, channel logging will be disabled")
	}
	return nil
}

// SplitIDs parses a comma separated id list, dropping blanks.
func SplitIDs(raw []string) []string {
	ids := make([]string, 0, len(raw))
	for _, item := range raw {
		for _, id := range strings.Split(item, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// LoadGuildSeeds reads the per-guild jail settings from a YAML, TOML or JSON file:
//
//	guilds:
//	  - guild_id: "123"
//	    name: "Example"
//	    jail_role_id: "456"
//	    jail_channel_id: "789"
//
// A missing file yields no seeds.
func LoadGuildSeeds(path string) ([]model.GuildConfig, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logging.Default().Warn("guild config file not found, skipping", "path", path)
		return nil, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, goerr.Wrap(err, "failed to read guild config file", goerr.V("path", path))
	}

	var seeds []model.GuildConfig
	if err := v.UnmarshalKey("guilds", &seeds); err != nil {
		return nil, goerr.Wrap(err, "failed to decode guild config file", goerr.V("path", path))
	}

	seen := make(map[string]bool, len(seeds))
	for i, seed := range seeds {
		if seed.GuildID == "" {
			return nil, goerr.New("guild entry without guild_id", goerr.V("path", path), goerr.V("index", i))
		}
		if seen[seed.GuildID] {
			return nil, goerr.New("duplicate guild entry", goerr.V("path", path), goerr.V("guild_id", seed.GuildID))
		}
		seen[seed.GuildID] = true
	}

	return seeds, nil
}
