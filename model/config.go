package model

import "time"

// GuildConfig holds the guild-scoped settings the jail workflow reads.
// Empty ids mean the setting has not been configured.
type GuildConfig struct {
	GuildID       string `db:"guild_id" mapstructure:"guild_id"`
	Name          string `db:"name" mapstructure:"name"`
	JailRoleID    string `db:"jail_role_id" mapstructure:"jail_role_id"`
	JailChannelID string `db:"jail_channel_id" mapstructure:"jail_channel_id"`
}

// Config stores the application's runtime configuration.
type Config struct {
	BotToken         string `masq:"secret"`
	AppID            string
	LogChannelID     string
	DatabasePath     string
	GuildConfigPath  string
	ModeratorRoleIDs []string
	DeveloperUserIDs []string
	ConfigCacheTTL   time.Duration
	DMRatePerSecond  float64
	DMBurst          int
}
