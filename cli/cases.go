package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"discord-modbot/cli/config"
	"discord-modbot/model"
	"discord-modbot/utils/database/cases"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdCases() *cli.Command {
	var dbCfg config.Database
	var guildID string

	guildFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:        "guild",
			Aliases:     []string{"g"},
			Usage:       "Guild ID",
			Required:    true,
			Destination: &guildID,
		}
	}

	var userID string
	list := &cli.Command{
		Name:  "list",
		Usage: "List the cases of a guild",
		Flags: []cli.Flag{
			guildFlag(),
			&cli.StringFlag{
				Name:        "user",
				Aliases:     []string{"u"},
				Usage:       "Only cases of this user ID",
				Destination: &userID,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			db, err := dbCfg.Open(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			all, err := cases.NewRepository(db).ListCases(ctx, guildID, userID)
			if err != nil {
				return err
			}
			w := c.Root().Writer
			if len(all) == 0 {
				fmt.Fprintln(w, "no cases")
				return nil
			}
			for _, mc := range all {
				printCaseLine(w, mc)
			}
			return nil
		},
	}

	show := &cli.Command{
		Name:      "show",
		Usage:     "Show one case with the role ids it snapshotted",
		ArgsUsage: "<case number>",
		Flags:     []cli.Flag{guildFlag()},
		Action: func(ctx context.Context, c *cli.Command) error {
			var number int64
			if _, err := fmt.Sscan(c.Args().First(), &number); err != nil || number <= 0 {
				return goerr.New("a positive case number is required", goerr.V("arg", c.Args().First()))
			}

			db, err := dbCfg.Open(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			mc, err := cases.NewRepository(db).GetCase(ctx, guildID, number)
			if err != nil {
				return err
			}
			printCaseDetail(c.Root().Writer, mc)
			return nil
		},
	}

	return &cli.Command{
		Name:     "cases",
		Usage:    "Inspect recorded moderation cases",
		Flags:    dbCfg.Flags(),
		Commands: []*cli.Command{list, show},
	}
}

func printCaseLine(w io.Writer, c *model.ModerationCase) {
	fmt.Fprintf(w, "#%d\t%s\tuser=%s\tmoderator=%s\t%s\t%s\n",
		c.Number, c.Type, c.UserID, c.ModeratorID, c.CreatedAt.Format(time.RFC3339), c.Reason)
}

func printCaseDetail(w io.Writer, c *model.ModerationCase) {
	roles := "(none)"
	if len(c.UserRoles) > 0 {
		roles = strings.Join(c.UserRoles, ",")
	}
	fmt.Fprintf(w, "Case #%d (%s)\n", c.Number, c.Type)
	fmt.Fprintf(w, "Guild:     %s\n", c.GuildID)
	fmt.Fprintf(w, "User:      %s\n", c.UserID)
	fmt.Fprintf(w, "Moderator: %s\n", c.ModeratorID)
	fmt.Fprintf(w, "Reason:    %s\n", c.Reason)
	fmt.Fprintf(w, "Created:   %s\n", c.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Roles:     %s\n", roles)
}
