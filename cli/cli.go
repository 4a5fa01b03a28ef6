package cli

import (
	"context"

	"discord-modbot/cli/config"
	rootconfig "discord-modbot/config"
	"discord-modbot/utils/logging"

	"github.com/urfave/cli/v3"
)

func Run(ctx context.Context, args []string, version string) error {
	rootconfig.LoadEnv()

	app := newApp(version)
	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", "error", err)
		return err
	}

	return nil
}

func newApp(version string) *cli.Command {
	var loggerCfg config.Logger
	var closer func()

	return &cli.Command{
		Name:    "modbot",
		Usage:   "Discord moderation bot",
		Version: version,
		Flags:   loggerCfg.Flags(),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closer = f

			logging.Default().Debug("Starting modbot", "logger", loggerCfg)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if closer != nil {
				closer()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdCases(),
			cmdGuild(),
		},
	}
}
