package utils

import "slices"

// Permission levels
const (
	DeveloperPermission = "developer"
	ModeratorPermission = "moderator"
	GuestPermission     = "guest"
)

// CheckPermission returns the highest permission level of a member given its role ids.
// With no moderator roles configured every member passes as moderator, leaving the
// command's default member permissions as the only gate.
func CheckPermission(memberRoleIDs []string, userID string, moderatorRoleIDs, developerUserIDs []string) string {
	if slices.Contains(developerUserIDs, userID) {
		return DeveloperPermission
	}

	if len(moderatorRoleIDs) == 0 {
		return ModeratorPermission
	}
	for _, roleID := range memberRoleIDs {
		if slices.Contains(moderatorRoleIDs, roleID) {
			return ModeratorPermission
		}
	}

	return GuestPermission
}
