package xkcd

import (
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	colorSuccess = 0x2ECC71
	colorError   = 0xE74C3C
)

// ComicEmbed renders a comic with its image and links.
func ComicEmbed(title string, comic *Comic) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: comic.Title,
		Color:       colorSuccess,
		Image:       &discordgo.MessageEmbedImage{URL: comic.Image},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Explainxkcd URL", Value: comic.ExplanationURL()},
			{Name: "Webpage URL", Value: comic.ComicURL()},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// ErrorEmbed maps a fetch failure to the message shown in the channel.
func ErrorEmbed(err error) *discordgo.MessageEmbed {
	description := "An HTTP error occurred, please try again."
	if errors.Is(err, ErrTimeout) {
		description = "A timeout has occurred, please try again."
	}
	return &discordgo.MessageEmbed{
		Title:       "Error",
		Description: description,
		Color:       colorError,
	}
}

func specificTitle(num int) string {
	return fmt.Sprintf("xkcd comic %d", num)
}
