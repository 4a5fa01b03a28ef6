package moderation

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a moderation workflow stopped or degraded.
type FailureKind string

const (
	FailureConfigurationMissing FailureKind = "configuration_missing"
	FailureAlreadyInState       FailureKind = "already_in_state"
	FailureEligibilityDenied    FailureKind = "eligibility_denied"
	FailureLookup               FailureKind = "lookup_error"
	FailureRepository           FailureKind = "repository_error"
	FailureRoleMutation         FailureKind = "role_mutation_error"
	FailureNotification         FailureKind = "notification_failed"
	FailureCancelled            FailureKind = "cancelled"
)

// Failure is the value every workflow step returns instead of panicking.
// Subject names what was missing or which state was already held, e.g. "jail role" or "jailed".
type Failure struct {
	Kind    FailureKind
	Stage   Stage
	Subject string
	Err     error
}

func (f *Failure) Error() string {
	switch f.Kind {
	case FailureConfigurationMissing:
		return fmt.Sprintf("configuration missing: %s", f.Subject)
	case FailureAlreadyInState:
		return fmt.Sprintf("already %s", f.Subject)
	}

	msg := fmt.Sprintf("%s at %s", f.Kind, f.Stage)
	if f.Subject != "" {
		msg += " (" + f.Subject + ")"
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Fatal reports whether the failure aborts the workflow.
func (f *Failure) Fatal() bool {
	return f.Kind != FailureNotification
}

// Sentinel errors returned by RankEligibility. An Eligibility denies by returning one of these
// or an error wrapping ErrNotEligible; any other error is treated as a lookup failure.
var (
	ErrNotEligible    = errors.New("not eligible")
	ErrSelfAction     = errors.New("moderator cannot act on themselves")
	ErrTargetIsBot    = errors.New("target is a bot account")
	ErrTargetIsOwner  = errors.New("target is the guild owner")
	ErrTargetOutranks = errors.New("target has a higher or equal role than the moderator")
	ErrBotOutranked   = errors.New("target has a higher or equal role than the bot")
)

// IsDenial reports whether err is an eligibility denial rather than a failure to decide.
func IsDenial(err error) bool {
	for _, target := range []error{ErrNotEligible, ErrSelfAction, ErrTargetIsBot, ErrTargetIsOwner, ErrTargetOutranks, ErrBotOutranked} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Context keys for error values
const (
	GuildIDKey  = "guild_id"
	TargetIDKey = "target_id"
	RoleIDKey   = "role_id"
)
