package cases

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"discord-modbot/model"

	"github.com/jmoiron/sqlx"
	"github.com/m-mizutani/goerr/v2"
)

// ErrCaseNotFound is returned when no case matches the lookup.
var ErrCaseNotFound = errors.New("case not found")

// caseRow is the cases table row; roles are stored as a JSON array.
type caseRow struct {
	ID            int64  `db:"case_id"`
	Number        int64  `db:"case_number"`
	GuildID       string `db:"guild_id"`
	UserID        string `db:"user_id"`
	ModeratorID   string `db:"moderator_id"`
	Type          string `db:"case_type"`
	Reason        string `db:"reason"`
	UserRolesJSON string `db:"user_roles_json"`
	CreatedAt     int64  `db:"created_at"`
}

func (r caseRow) toModel() (*model.ModerationCase, error) {
	roles := []string{}
	if r.UserRolesJSON != "" {
		if err := json.Unmarshal([]byte(r.UserRolesJSON), &roles); err != nil {
			return nil, goerr.Wrap(err, "failed to decode case roles", goerr.V("case_id", r.ID))
		}
	}
	return &model.ModerationCase{
		ID:          r.ID,
		Number:      r.Number,
		GuildID:     r.GuildID,
		UserID:      r.UserID,
		ModeratorID: r.ModeratorID,
		Type:        model.CaseType(r.Type),
		Reason:      r.Reason,
		UserRoles:   roles,
		CreatedAt:   time.Unix(r.CreatedAt, 0).UTC(),
	}, nil
}

const selectColumns = `case_id, case_number, guild_id, user_id, moderator_id, case_type, reason, user_roles_json, created_at`

// AddCase inserts c with the next case number of its guild and returns the stored case.
func AddCase(ctx context.Context, db *sqlx.DB, c *model.ModerationCase, now time.Time) (*model.ModerationCase, error) {
	roles := c.UserRoles
	if roles == nil {
		roles = []string{}
	}
	rolesJSON, err := json.Marshal(roles)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode case roles")
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	var next int64
	if err := tx.GetContext(ctx, &next, `SELECT COALESCE(MAX(case_number), 0) + 1 FROM cases WHERE guild_id = ?`, c.GuildID); err != nil {
		return nil, goerr.Wrap(err, "failed to allocate case number", goerr.V("guild_id", c.GuildID))
	}

	row := caseRow{
		Number:        next,
		GuildID:       c.GuildID,
		UserID:        c.UserID,
		ModeratorID:   c.ModeratorID,
		Type:          c.Type.String(),
		Reason:        c.Reason,
		UserRolesJSON: string(rolesJSON),
		CreatedAt:     now.Unix(),
	}
	query := `INSERT INTO cases (case_number, guild_id, user_id, moderator_id, case_type, reason, user_roles_json, created_at)
			  VALUES (:case_number, :guild_id, :user_id, :moderator_id, :case_type, :reason, :user_roles_json, :created_at)`
	result, err := tx.NamedExecContext(ctx, query, row)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to insert case", goerr.V("guild_id", c.GuildID), goerr.V("user_id", c.UserID))
	}
	row.ID, err = result.LastInsertId()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get last insert ID")
	}

	if err := tx.Commit(); err != nil {
		return nil, goerr.Wrap(err, "failed to commit case", goerr.V("guild_id", c.GuildID))
	}

	return row.toModel()
}

// GetCase retrieves a case by its per-guild number.
func GetCase(ctx context.Context, db *sqlx.DB, guildID string, number int64) (*model.ModerationCase, error) {
	var row caseRow
	query := `SELECT ` + selectColumns + ` FROM cases WHERE guild_id = ? AND case_number = ?`
	if err := db.GetContext(ctx, &row, query, guildID, number); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(ErrCaseNotFound, "no such case", goerr.V("guild_id", guildID), goerr.V("case_number", number))
		}
		return nil, goerr.Wrap(err, "failed to get case", goerr.V("guild_id", guildID), goerr.V("case_number", number))
	}
	return row.toModel()
}

// ListCases retrieves the cases of a guild in case number order, optionally only those of userID.
func ListCases(ctx context.Context, db *sqlx.DB, guildID, userID string) ([]*model.ModerationCase, error) {
	query := `SELECT ` + selectColumns + ` FROM cases WHERE guild_id = ?`
	args := []interface{}{guildID}
	if userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY case_number"

	var rows []caseRow
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, goerr.Wrap(err, "failed to list cases", goerr.V("guild_id", guildID), goerr.V("user_id", userID))
	}

	out := make([]*model.ModerationCase, 0, len(rows))
	for _, row := range rows {
		c, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
