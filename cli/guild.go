package cli

import (
	"context"
	"fmt"

	"discord-modbot/cli/config"
	"discord-modbot/model"
	"discord-modbot/utils/database/guildconfig"

	"github.com/urfave/cli/v3"
)

func cmdGuild() *cli.Command {
	var dbCfg config.Database
	var settings model.GuildConfig

	set := &cli.Command{
		Name:  "set",
		Usage: "Store the jail role and channel of a guild",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "guild", Aliases: []string{"g"}, Usage: "Guild ID", Required: true, Destination: &settings.GuildID},
			&cli.StringFlag{Name: "name", Usage: "Guild name for reference", Destination: &settings.Name},
			&cli.StringFlag{Name: "jail-role", Usage: "Jail role ID", Destination: &settings.JailRoleID},
			&cli.StringFlag{Name: "jail-channel", Usage: "Jail channel ID", Destination: &settings.JailChannelID},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			db, err := dbCfg.Open(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := guildconfig.Upsert(ctx, db, settings); err != nil {
				return err
			}
			fmt.Fprintf(c.Root().Writer, "saved guild %s\n", settings.GuildID)
			return nil
		},
	}

	list := &cli.Command{
		Name:  "list",
		Usage: "List stored guild settings",
		Action: func(ctx context.Context, c *cli.Command) error {
			db, err := dbCfg.Open(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			configs, err := guildconfig.List(ctx, db)
			if err != nil {
				return err
			}
			for _, g := range configs {
				fmt.Fprintf(c.Root().Writer, "%s\t%s\tjail_role=%s\tjail_channel=%s\n",
					g.GuildID, g.Name, orNone(g.JailRoleID), orNone(g.JailChannelID))
			}
			return nil
		},
	}

	return &cli.Command{
		Name:     "guild",
		Usage:    "Manage per-guild jail settings",
		Flags:    dbCfg.Flags(),
		Commands: []*cli.Command{set, list},
	}
}

func orNone(id string) string {
	if id == "" {
		return "(unset)"
	}
	return id
}
