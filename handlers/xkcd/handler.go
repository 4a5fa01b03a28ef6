package xkcd

import (
	"context"

	"discord-modbot/utils"
	"discord-modbot/utils/logging"

	"github.com/bwmarrin/discordgo"
)

// lookup resolves the comic and embed title for one subcommand.
func lookup(ctx context.Context, c *Client, data discordgo.ApplicationCommandInteractionData) (string, *Comic, error) {
	sub := data.Options[0]
	switch sub.Name {
	case "random":
		comic, err := c.Random(ctx)
		return "Random xkcd Comic", comic, err
	case "specific":
		num := 0
		for _, opt := range sub.Options {
			if opt.Name == "comic_id" {
				num = int(opt.IntValue())
			}
		}
		comic, err := c.Get(ctx, num)
		return specificTitle(num), comic, err
	default:
		comic, err := c.Latest(ctx)
		return "Latest xkcd Comic", comic, err
	}
}

func HandleXKCDCommand(s *discordgo.Session, i *discordgo.InteractionCreate, c *Client) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		utils.SendErrorResponse(s, i, "Please choose a subcommand.")
		return
	}

	logger := logging.Default().With("command", "xkcd", "subcommand", data.Options[0].Name)

	if err := utils.DeferResponse(s, i, false); err != nil {
		logger.Warn("failed to defer interaction", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	title, comic, err := lookup(ctx, c, data)
	if err != nil {
		logger.Warn("failed to fetch comic", "error", err)
		utils.SendFollowUpEmbed(s, i.Interaction, ErrorEmbed(err))
		return
	}

	logger.Info("comic sent", "num", comic.Num, "channel_id", i.ChannelID)
	utils.SendFollowUpEmbed(s, i.Interaction, ComicEmbed(title, comic))
}
