package handlers

import (
	"discord-modbot/bot"
	"discord-modbot/utils/logging"

	"github.com/bwmarrin/discordgo"
)

func handleInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name
	h, ok := b.CommandHandlers[name]
	if !ok {
		logging.Default().Warn("unknown command", "command", name, "guild_id", i.GuildID)
		return
	}
	h(s, i)
}
