package handlers

import (
	"discord-modbot/bot"
	"discord-modbot/handlers/jail"
	"discord-modbot/utils"
	"discord-modbot/utils/logging"

	"github.com/bwmarrin/discordgo"
)

// Register builds the jail engine and attaches every gateway handler to the session.
func Register(b *bot.Bot) {
	b.Jail = jail.NewEngine(b)
	b.CommandHandlers = commandHandlers(b)
	addHandlers(b)
}

func addHandlers(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		logging.Default().Info("logged in", "user", r.User.Username, "guilds", len(r.Guilds))
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		handleInteractionCreate(s, i, b)
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		handleMessageCreate(s, m)
	})
	b.Session.AddHandler(func(s *discordgo.Session, g *discordgo.GuildDelete) {
		// settings of a guild the bot left must be re-read if it rejoins
		b.GuildConfigs.Invalidate(g.ID)
	})
}

func permissionDenied(s *discordgo.Session, i *discordgo.InteractionCreate) {
	utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
}
