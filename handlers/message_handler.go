package handlers

import (
	"strings"

	"discord-modbot/utils/logging"

	"github.com/bwmarrin/discordgo"
)

func handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || (s.State.User != nil && m.Author.ID == s.State.User.ID) {
		return
	}
	reply, ok := messageReply(m.Content)
	if !ok {
		return
	}
	if _, err := s.ChannelMessageSendReply(m.ChannelID, reply, m.Reference()); err != nil {
		logging.Default().Warn("failed to reply to message", "channel_id", m.ChannelID, "error", err)
	}
}

// messageReply returns the canned reply for a prefix command, if any.
func messageReply(content string) (string, bool) {
	switch strings.TrimSpace(content) {
	case "!hello":
		return "Hello!", true
	}
	return "", false
}
