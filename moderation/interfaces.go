package moderation

import (
	"context"

	"discord-modbot/model"
)

// ConfigLookup resolves guild-scoped moderation settings. An empty id means unset.
type ConfigLookup interface {
	JailRoleID(ctx context.Context, guildID string) (string, error)
	JailChannelID(ctx context.Context, guildID string) (string, error)
}

// Eligibility decides whether moderator may perform action on target.
// A non-nil error is the reason the action is denied.
type Eligibility interface {
	Check(ctx context.Context, guildID string, moderator, target *model.Member, action model.CaseType) error
}

// CaseRepository durably records moderation cases.
type CaseRepository interface {
	// InsertCase stores c and returns it with ID, Number and CreatedAt assigned.
	InsertCase(ctx context.Context, c *model.ModerationCase) (*model.ModerationCase, error)
}

// RoleMutator applies role changes to a live guild member.
type RoleMutator interface {
	// RemoveRoles removes roleIDs one at a time and stops at the first error.
	RemoveRoles(ctx context.Context, guildID, userID string, roleIDs []string, reason string) error
	AddRole(ctx context.Context, guildID, userID, roleID, reason string) error
}

// Notifier delivers a direct message to a user.
type Notifier interface {
	DirectMessage(ctx context.Context, userID, message string) error
}

// GuildState reads live guild state.
type GuildState interface {
	Member(ctx context.Context, guildID, userID string) (*model.Member, error)
	// Role returns nil, nil when the role does not exist in the guild.
	Role(ctx context.Context, guildID, roleID string) (*model.Role, error)
	ChannelExists(ctx context.Context, guildID, channelID string) (bool, error)
	Scope(ctx context.Context, guildID string) (*model.GuildScope, error)
}
