package bot

import (
	"sync/atomic"
	"time"

	"discord-modbot/model"
	"discord-modbot/moderation"
	"discord-modbot/utils/database/cases"
	"discord-modbot/utils/database/guildconfig"
	"discord-modbot/utils/logging"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
	"github.com/m-mizutani/goerr/v2"
)

type Bot struct {
	Session            *discordgo.Session
	RegisteredCommands []*discordgo.ApplicationCommand
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
	DB                 *sqlx.DB
	GuildConfigs       *guildconfig.Store
	Cases              *cases.Repository
	Jail               *moderation.JailEngine
	Locks              *moderation.TargetLocks // shared by every engine mutating member roles
	StartedAt          time.Time
	config             atomic.Value // *model.Config
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

func (b *Bot) GetDB() *sqlx.DB {
	return b.DB
}

func (b *Bot) GetSession() *discordgo.Session {
	return b.Session
}

func (b *Bot) GetStartedAt() time.Time {
	return b.StartedAt
}

var _ model.Bot = (*Bot)(nil)

// New creates the gateway session and the stores backed by db. Handlers are attached by the caller.
func New(cfg *model.Config, db *sqlx.DB) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create discord session")
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent
	dg.StateEnabled = true

	b := &Bot{
		Session:         dg,
		CommandHandlers: make(map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)),
		DB:              db,
		GuildConfigs:    guildconfig.NewStore(db, cfg.ConfigCacheTTL),
		Cases:           cases.NewRepository(db),
		Locks:           moderation.NewTargetLocks(),
	}
	b.config.Store(cfg)
	return b, nil
}

func (b *Bot) Close() {
	logging.Default().Info("gracefully shutting down")
	if err := b.Session.Close(); err != nil {
		logging.Default().Warn("failed to close discord session", "error", err)
	}
}
