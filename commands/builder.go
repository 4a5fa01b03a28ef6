package commands

import (
	"discord-modbot/commands/defs"

	"github.com/bwmarrin/discordgo"
)

// GenerateCommands returns the application commands registered for every guild the bot serves.
func GenerateCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		defs.Jail,
		defs.SystemInfo,
		defs.XKCD,
	}
}
