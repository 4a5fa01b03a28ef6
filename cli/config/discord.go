package config

import (
	"log/slog"
	"time"

	rootconfig "discord-modbot/config"
	"discord-modbot/model"

	"github.com/urfave/cli/v3"
)

// Discord holds CLI flags for the gateway connection and moderation settings
type Discord struct {
	token            string
	appID            string
	logChannelID     string
	guildConfigPath  string
	moderatorRoleIDs []string
	developerUserIDs []string
	configCacheTTL   time.Duration
	dmRate           float64
	dmBurst          int
}

func (d *Discord) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "bot-token",
			Usage:       "Discord bot token",
			Sources:     cli.EnvVars("BOT_TOKEN"),
			Destination: &d.token,
		},
		&cli.StringFlag{
			Name:        "app-id",
			Usage:       "Discord application ID",
			Sources:     cli.EnvVars("APP_ID"),
			Destination: &d.appID,
		},
		&cli.StringFlag{
			Name:        "log-channel-id",
			Usage:       "Channel that receives moderation logs (optional)",
			Sources:     cli.EnvVars("LOG_CHANNEL_ID"),
			Destination: &d.logChannelID,
		},
		&cli.StringFlag{
			Name:        "guild-config",
			Usage:       "Guild settings file (YAML, TOML or JSON) seeded into the database at startup",
			Value:       "data/guilds.yaml",
			Sources:     cli.EnvVars("GUILD_CONFIG_PATH"),
			Destination: &d.guildConfigPath,
		},
		&cli.StringSliceFlag{
			Name:        "moderator-role-id",
			Usage:       "Role allowed to use moderation commands (repeatable, comma separated in env)",
			Sources:     cli.EnvVars("MODERATOR_ROLE_IDS"),
			Destination: &d.moderatorRoleIDs,
		},
		&cli.StringSliceFlag{
			Name:        "developer-user-id",
			Usage:       "User allowed to use every command (repeatable, comma separated in env)",
			Sources:     cli.EnvVars("DEVELOPER_USER_IDS"),
			Destination: &d.developerUserIDs,
		},
		&cli.DurationFlag{
			Name:        "config-cache-ttl",
			Usage:       "How long guild settings are cached",
			Value:       5 * time.Minute,
			Sources:     cli.EnvVars("CONFIG_CACHE_TTL"),
			Destination: &d.configCacheTTL,
		},
		&cli.FloatFlag{
			Name:        "dm-rate",
			Usage:       "Direct messages per second",
			Value:       1,
			Sources:     cli.EnvVars("DM_RATE_LIMIT"),
			Destination: &d.dmRate,
		},
		&cli.IntFlag{
			Name:        "dm-burst",
			Usage:       "Direct message burst size",
			Value:       5,
			Sources:     cli.EnvVars("DM_RATE_BURST"),
			Destination: &d.dmBurst,
		},
	}
}

func (d *Discord) GuildConfigPath() string {
	return d.guildConfigPath
}

// Config assembles the runtime configuration.
func (d *Discord) Config(databasePath string) *model.Config {
	return &model.Config{
		BotToken:         d.token,
		AppID:            d.appID,
		LogChannelID:     d.logChannelID,
		DatabasePath:     databasePath,
		GuildConfigPath:  d.guildConfigPath,
		ModeratorRoleIDs: rootconfig.SplitIDs(d.moderatorRoleIDs),
		DeveloperUserIDs: rootconfig.SplitIDs(d.developerUserIDs),
		ConfigCacheTTL:   d.configCacheTTL,
		DMRatePerSecond:  d.dmRate,
		DMBurst:          d.dmBurst,
	}
}

func (d Discord) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("app_id", d.appID),
		slog.Bool("token_set", d.token != ""),
		slog.String("log_channel_id", d.logChannelID),
		slog.String("guild_config", d.guildConfigPath),
		slog.Int("moderator_roles", len(d.moderatorRoleIDs)),
		slog.Duration("config_cache_ttl", d.configCacheTTL),
	)
}
