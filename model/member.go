package model

// RoleTags carries the platform's provenance flags for a role.
// The discordgo role type does not decode tags, so roles read from Discord leave this empty
// and Managed is the signal for bot, integration and booster roles.
type RoleTags struct {
	BotID             string
	IntegrationID     string
	PremiumSubscriber bool
}

// Role is the subset of a guild role the moderation workflow reasons about.
type Role struct {
	ID          string
	Name        string
	Position    int
	Permissions int64
	Managed     bool
	Tags        RoleTags
}

// Member is a guild member with roles resolved, in the member's role order.
type Member struct {
	GuildID  string
	UserID   string
	Username string
	Bot      bool
	Roles    []Role
}

// HasRole reports whether the member holds roleID.
func (m *Member) HasRole(roleID string) bool {
	for _, r := range m.Roles {
		if r.ID == roleID {
			return true
		}
	}
	return false
}

// TopPosition is the highest role position the member holds, 0 when it only has @everyone.
func (m *Member) TopPosition() int {
	top := 0
	for _, r := range m.Roles {
		if r.Position > top {
			top = r.Position
		}
	}
	return top
}

// RoleIDs returns the ids of roles in order.
func RoleIDs(roles []Role) []string {
	ids := make([]string, 0, len(roles))
	for _, r := range roles {
		ids = append(ids, r.ID)
	}
	return ids
}

// GuildScope describes what the bot itself is allowed to do inside a guild.
type GuildScope struct {
	GuildID        string
	OwnerID        string
	BotID          string
	BotTopPosition int
	BotPermissions int64
}

// Discord permission bits the role classifier needs.
const (
	PermissionAdministrator int64 = 1 << 3
	PermissionManageRoles   int64 = 1 << 28
)
