package handlers

import (
	"discord-modbot/bot"
	"discord-modbot/handlers/jail"
	"discord-modbot/handlers/xkcd"
	"discord-modbot/utils"

	"github.com/bwmarrin/discordgo"
)

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	comics := xkcd.NewClient()

	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"jail": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			jail.HandleJailCommand(s, i, b)
		},
		"sysinfo": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			cfg := b.GetConfig()
			var roles []string
			userID := ""
			if i.Member != nil && i.Member.User != nil {
				roles, userID = i.Member.Roles, i.Member.User.ID
			} else if i.User != nil {
				userID = i.User.ID
			}
			if utils.CheckPermission(roles, userID, cfg.ModeratorRoleIDs, cfg.DeveloperUserIDs) == utils.GuestPermission {
				permissionDenied(s, i)
				return
			}
			SystemInfoHandler(s, i, b)
		},
		"xkcd": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			xkcd.HandleXKCDCommand(s, i, comics)
		},
	}
}
