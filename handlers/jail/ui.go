package jail

import (
	"errors"
	"fmt"
	"time"

	"discord-modbot/moderation"

	"github.com/bwmarrin/discordgo"
)

const (
	colorJailed = 0xE67E22
	colorFailed = 0xE74C3C
)

var eligibilityMessages = []struct {
	err error
	msg string
}{
	{moderation.ErrSelfAction, "You cannot jail yourself."},
	{moderation.ErrTargetIsBot, "Bots cannot be jailed."},
	{moderation.ErrTargetIsOwner, "The server owner cannot be jailed."},
	{moderation.ErrTargetOutranks, "You cannot jail a member whose top role is equal to or above yours."},
	{moderation.ErrBotOutranked, "I cannot jail a member whose top role is equal to or above mine."},
}

// FailureMessage is the text shown to the moderator when the jail did not complete.
func FailureMessage(result *moderation.JailResult, targetLabel string) string {
	f := result.Failure
	if f == nil {
		return ""
	}

	switch f.Kind {
	case moderation.FailureConfigurationMissing:
		if f.Subject == "jail channel" {
			return "The jail channel has not been set up or cannot be found."
		}
		return "The jail role has not been set up or cannot be found."
	case moderation.FailureAlreadyInState:
		return "The user is already jailed."
	case moderation.FailureEligibilityDenied:
		for _, m := range eligibilityMessages {
			if errors.Is(f, m.err) {
				return m.msg
			}
		}
		return "You are not allowed to jail this member."
	case moderation.FailureCancelled:
		return "The jail request was cancelled before it completed."
	case moderation.FailureLookup:
		if f.Subject == "member" {
			return "That user is not a member of this server."
		}
	}

	msg := fmt.Sprintf("Failed to jail %s. %s", targetLabel, causeOf(f))
	if result.Case != nil {
		msg += fmt.Sprintf("\nCase #%d keeps the roles to restore.", result.Case.Number)
	}
	return msg
}

func causeOf(f *moderation.Failure) string {
	if f.Err == nil {
		return f.Error()
	}
	cause := f.Err
	for {
		next := errors.Unwrap(cause)
		if next == nil {
			return cause.Error()
		}
		cause = next
	}
}

// CaseEmbed renders a completed jail.
func CaseEmbed(result *moderation.JailResult) *discordgo.MessageEmbed {
	c := result.Case
	dm := "DM not sent"
	if result.DMSent {
		dm = "DM sent"
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Case #%d (%s)", c.Number, c.Type),
		Color: colorJailed,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Moderator", Value: fmt.Sprintf("<@%s>", c.ModeratorID), Inline: true},
			{Name: "Target", Value: fmt.Sprintf("<@%s>", c.UserID), Inline: true},
			{Name: "Reason", Value: result.Reason},
			{Name: "Roles removed", Value: roleMentions(c.UserRoles)},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: dm},
		Timestamp: c.CreatedAt.Format(time.RFC3339),
	}
	return embed
}

// FailureEmbed is posted to the log channel when a jail stops after its case was recorded.
func FailureEmbed(result *moderation.JailResult, targetLabel string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "Jail incomplete",
		Description: FailureMessage(result, targetLabel),
		Color:       colorFailed,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Stage", Value: string(result.Stage), Inline: true},
			{Name: "Kind", Value: string(result.Failure.Kind), Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if result.Case != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Snapshot",
			Value: roleMentions(result.Case.UserRoles),
		})
	}
	return embed
}

func roleMentions(ids []string) string {
	if len(ids) == 0 {
		return "None"
	}
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("<@&%s>", id)
	}
	return out
}
