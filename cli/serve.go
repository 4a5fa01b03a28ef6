package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"discord-modbot/bot"
	"discord-modbot/cli/config"
	rootconfig "discord-modbot/config"
	"discord-modbot/handlers"
	"discord-modbot/utils/database/guildconfig"
	"discord-modbot/utils/logging"

	"github.com/jmoiron/sqlx"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var dbCfg config.Database
	var discordCfg config.Discord

	var flags []cli.Flag
	flags = append(flags, dbCfg.Flags()...)
	flags = append(flags, discordCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Connect to Discord and handle moderation commands",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg := discordCfg.Config(dbCfg.Path())
			if err := rootconfig.Validate(cfg); err != nil {
				return err
			}
			logging.Default().Info("Starting bot", "discord", discordCfg, "database", dbCfg.Path())

			db, err := dbCfg.Open(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to open database")
			}
			defer func() {
				if err := db.Close(); err != nil {
					logging.Default().Error("failed to close database", "error", err.Error())
				}
			}()

			if err := seedGuildConfigs(ctx, db, discordCfg.GuildConfigPath()); err != nil {
				return err
			}

			b, err := bot.New(cfg, db)
			if err != nil {
				return err
			}
			handlers.Register(b)

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return b.Run(ctx)
		},
	}
}

// seedGuildConfigs upserts the settings file into the guild_configs table.
func seedGuildConfigs(ctx context.Context, db *sqlx.DB, path string) error {
	seeds, err := rootconfig.LoadGuildSeeds(path)
	if err != nil {
		return err
	}
	for _, seed := range seeds {
		if err := guildconfig.Upsert(ctx, db, seed); err != nil {
			return goerr.Wrap(err, "failed to seed guild config", goerr.V("guild_id", seed.GuildID))
		}
	}
	if len(seeds) > 0 {
		logging.Default().Info("guild configs seeded", "count", len(seeds), "path", path)
	}
	return nil
}
