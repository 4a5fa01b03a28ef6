package utils

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/m-mizutani/goerr/v2"
)

// SendPrivateMessage sends a direct message to a user.
func SendPrivateMessage(ctx context.Context, s *discordgo.Session, userID, message string) error {
	channel, err := s.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return goerr.Wrap(err, "failed to open private channel", goerr.V("user_id", userID))
	}
	if _, err := s.ChannelMessageSend(channel.ID, message, discordgo.WithContext(ctx)); err != nil {
		return goerr.Wrap(err, "failed to send private message", goerr.V("user_id", userID))
	}
	return nil
}
