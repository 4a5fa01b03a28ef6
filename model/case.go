package model

import "time"

// CaseType is the kind of moderation action a case records.
type CaseType string

const (
	CaseTypeJail CaseType = "JAIL"
)

func (t CaseType) String() string {
	return string(t)
}

// ModerationCase is the audit record of a single moderation action.
// The table is named 'cases'. Number is sequential per guild and never reused.
type ModerationCase struct {
	ID          int64     `db:"case_id"` // Primary Key, Auto-increment
	Number      int64     `db:"case_number"`
	GuildID     string    `db:"guild_id"`
	UserID      string    `db:"user_id"`
	ModeratorID string    `db:"moderator_id"`
	Type        CaseType  `db:"case_type"`
	Reason      string    `db:"reason"`
	UserRoles   []string  `db:"-"` // role ids snapshotted before the action, in member order
	CreatedAt   time.Time `db:"created_at"`
}
