package bot

import (
	"context"
	"time"

	"discord-modbot/commands"
	"discord-modbot/utils"
	"discord-modbot/utils/logging"

	"github.com/m-mizutani/goerr/v2"
)

// Run opens the gateway, registers the application commands and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.Session.Open(); err != nil {
		return goerr.Wrap(err, "failed to open discord connection")
	}
	defer b.Close()
	b.StartedAt = time.Now()

	if err := b.RefreshCommands(); err != nil {
		return err
	}

	logging.Default().Info("bot is now running", "commands", len(b.RegisteredCommands))
	if err := utils.LogInfo(b.Session, b.GetConfig().LogChannelID, "System", "Startup", "Bot has started successfully."); err != nil {
		logging.Default().Warn("failed to send startup log", "error", err)
	}

	<-ctx.Done()
	logging.Default().Info("shutting down")
	if err := utils.LogWarn(b.Session, b.GetConfig().LogChannelID, "System", "Shutdown", "Bot is shutting down."); err != nil {
		logging.Default().Warn("failed to send shutdown log", "error", err)
	}
	return nil
}

// RefreshCommands overwrites the global application commands with the current set.
func (b *Bot) RefreshCommands() error {
	cmds := commands.GenerateCommands()
	registered, err := b.Session.ApplicationCommandBulkOverwrite(b.GetConfig().AppID, "", cmds)
	if err != nil {
		return goerr.Wrap(err, "failed to register commands", goerr.V("count", len(cmds)))
	}
	b.RegisteredCommands = registered
	return nil
}
