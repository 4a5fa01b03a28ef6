package moderation

import "discord-modbot/model"

// AssignablePredicate reports whether the acting bot can assign and later restore role.
type AssignablePredicate func(role model.Role) bool

// ScopeAssignable builds the assignability predicate for the bot described by scope.
//
// A role is assignable when it is neither @everyone nor managed, and either the bot owns the
// guild or the bot can manage roles, the role sits strictly below the bot's highest role and
// (for non-administrators) grants nothing the bot does not hold itself.
func ScopeAssignable(scope model.GuildScope) AssignablePredicate {
	return func(role model.Role) bool {
		if role.ID == scope.GuildID || role.Managed {
			return false
		}
		if scope.BotID != "" && scope.BotID == scope.OwnerID {
			return true
		}

		admin := scope.BotPermissions&model.PermissionAdministrator != 0
		if !admin && scope.BotPermissions&model.PermissionManageRoles == 0 {
			return false
		}
		if role.Position >= scope.BotTopPosition {
			return false
		}
		if !admin && role.Permissions&^scope.BotPermissions != 0 {
			return false
		}
		return true
	}
}

// IsExcluded reports whether role belongs to a category the workflow never touches:
// managed, bot, integration and premium-subscriber roles, @everyone, and the jail role itself.
func IsExcluded(guildID, jailRoleID string, role model.Role) bool {
	return role.Managed ||
		role.Tags.BotID != "" ||
		role.Tags.IntegrationID != "" ||
		role.Tags.PremiumSubscriber ||
		role.ID == guildID ||
		role.ID == jailRoleID
}

// ManageableRoles returns, in input order, the roles that are safe to strip and later restore.
// A nil predicate applies no assignability restriction beyond the excluded categories.
func ManageableRoles(guildID string, roles []model.Role, jailRoleID string, assignable AssignablePredicate) []model.Role {
	manageable := make([]model.Role, 0, len(roles))
	for _, role := range roles {
		if IsExcluded(guildID, jailRoleID, role) {
			continue
		}
		if assignable != nil && !assignable(role) {
			continue
		}
		manageable = append(manageable, role)
	}
	return manageable
}
