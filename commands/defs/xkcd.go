package defs

import "github.com/bwmarrin/discordgo"

var minComicID = 1.0

var XKCD = &discordgo.ApplicationCommand{
	Name:        "xkcd",
	Description: "xkcd commands",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "newest",
			Description: "Get the latest xkcd comic",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "random",
			Description: "Get a random xkcd comic",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "specific",
			Description: "Search for a specific xkcd comic",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "comic_id",
					Description: "The comic number",
					Required:    true,
					MinValue:    &minComicID,
				},
			},
		},
	},
}
