package moderation

import (
	"context"
	"fmt"
	"strings"

	"discord-modbot/model"
	"discord-modbot/utils/errutil"
	"discord-modbot/utils/logging"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
)

// Stage is a state of the jail transition.
type Stage string

const (
	StageValidated     Stage = "validated"
	StageCaseRecorded  Stage = "case_recorded"
	StageRolesStripped Stage = "roles_stripped"
	StageRoleGranted   Stage = "role_granted"
	StageNotified      Stage = "notified"
	StageCompleted     Stage = "completed"
)

// Outcome is the terminal state of a workflow run.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
)

// DefaultReason is recorded when the moderator gives no reason.
const DefaultReason = "No reason provided"

// JailRequest is one invocation of the jail command.
type JailRequest struct {
	GuildID   string
	GuildName string
	TargetID  string
	Moderator *model.Member
	Reason    string
	Silent    bool
}

// JailResult is what the presentation layer renders.
// On failure Stage is the stage that was being attempted.
type JailResult struct {
	Outcome      Outcome
	Stage        Stage
	Target       *model.Member
	Reason       string
	Case         *model.ModerationCase
	Failure      *Failure
	Notification *Failure
	DMSent       bool
}

func (r *JailResult) Completed() bool {
	return r.Outcome == OutcomeCompleted
}

func (r *JailResult) fail(f *Failure) *JailResult {
	r.Outcome = OutcomeFailed
	r.Stage = f.Stage
	r.Failure = f
	return r
}

// JailEngine runs the jail workflow: validate, record case, strip roles, grant the jail role,
// notify. Nothing is retried and nothing is rolled back once the case exists.
type JailEngine struct {
	config      ConfigLookup
	guild       GuildState
	eligibility Eligibility
	cases       CaseRepository
	roles       RoleMutator
	notifier    Notifier
	locks       *TargetLocks
}

type Option func(*JailEngine)

func WithEligibility(e Eligibility) Option {
	return func(engine *JailEngine) {
		engine.eligibility = e
	}
}

func WithTargetLocks(l *TargetLocks) Option {
	return func(engine *JailEngine) {
		engine.locks = l
	}
}

func NewJailEngine(config ConfigLookup, guild GuildState, cases CaseRepository, roles RoleMutator, notifier Notifier, opts ...Option) *JailEngine {
	engine := &JailEngine{
		config:   config,
		guild:    guild,
		cases:    cases,
		roles:    roles,
		notifier: notifier,
	}
	for _, opt := range opts {
		opt(engine)
	}
	if engine.eligibility == nil {
		engine.eligibility = NewRankEligibility(guild)
	}
	if engine.locks == nil {
		engine.locks = NewTargetLocks()
	}
	return engine
}

type jailPlan struct {
	target        *model.Member
	jailRole      *model.Role
	jailChannelID string
	snapshot      []model.Role
}

// Jail moves the target from free to jailed. It never returns nil.
func (e *JailEngine) Jail(ctx context.Context, req JailRequest) *JailResult {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = DefaultReason
	}
	result := &JailResult{Reason: reason}

	logger := logging.From(ctx).With(GuildIDKey, req.GuildID, TargetIDKey, req.TargetID)
	ctx = logging.With(ctx, logger)

	unlock, err := e.locks.Lock(ctx, req.GuildID, req.TargetID)
	if err != nil {
		return result.fail(&Failure{
			Kind:  FailureCancelled,
			Stage: StageValidated,
			Err:   goerr.Wrap(err, "interrupted while waiting for target lock"),
		})
	}
	defer unlock()

	plan, failure := e.validate(ctx, req)
	if plan != nil {
		result.Target = plan.target
	}
	if failure != nil {
		if failure.Kind == FailureLookup {
			errutil.Handle(ctx, failure, "failed to validate jail request")
		} else {
			logger.Info("jail rejected", "kind", failure.Kind, "reason", failure.Error())
		}
		return result.fail(failure)
	}

	created, failure := e.recordCase(ctx, req, plan, reason)
	if failure != nil {
		errutil.Handle(ctx, failure, "failed to record jail case")
		return result.fail(failure)
	}
	result.Case = created
	logger = logger.With("case_number", created.Number)

	if failure := e.stripRoles(ctx, req, plan, reason); failure != nil {
		errutil.Handle(logging.With(ctx, logger), failure, "failed to strip roles, case retained for reconciliation")
		return result.fail(failure)
	}

	if failure := e.grantRole(ctx, req, plan, reason); failure != nil {
		errutil.Handle(logging.With(ctx, logger), failure, "roles stripped but jail role not granted")
		return result.fail(failure)
	}

	result.DMSent, result.Notification = e.notify(ctx, req, plan, reason)
	if result.Notification != nil {
		logger.Warn("jail notification not delivered", "error", result.Notification.Error())
	}

	result.Outcome = OutcomeCompleted
	result.Stage = StageCompleted
	logger.Info("member jailed",
		"moderator_id", req.Moderator.UserID,
		"stripped_roles", created.UserRoles,
		"dm_sent", result.DMSent,
	)
	return result
}

func (e *JailEngine) validate(ctx context.Context, req JailRequest) (*jailPlan, *Failure) {
	lookupFailure := func(err error, subject string) *Failure {
		return &Failure{Kind: FailureLookup, Stage: StageValidated, Subject: subject, Err: err}
	}
	missing := func(subject string) *Failure {
		return &Failure{Kind: FailureConfigurationMissing, Stage: StageValidated, Subject: subject}
	}

	if req.Moderator == nil {
		return nil, lookupFailure(goerr.New("moderator is required"), "moderator")
	}

	target, err := e.guild.Member(ctx, req.GuildID, req.TargetID)
	if err != nil {
		return nil, lookupFailure(goerr.Wrap(err, "failed to get target member",
			goerr.V(GuildIDKey, req.GuildID),
			goerr.V(TargetIDKey, req.TargetID)), "member")
	}
	plan := &jailPlan{target: target}

	if err := e.eligibility.Check(ctx, req.GuildID, req.Moderator, target, model.CaseTypeJail); err != nil {
		if !IsDenial(err) {
			return plan, lookupFailure(goerr.Wrap(err, "failed to check eligibility"), "eligibility")
		}
		return plan, &Failure{Kind: FailureEligibilityDenied, Stage: StageValidated, Err: err}
	}

	roleID, channelID, err := e.lookupConfig(ctx, req.GuildID)
	if err != nil {
		return plan, lookupFailure(err, "guild config")
	}

	if roleID == "" {
		return plan, missing("jail role")
	}
	jailRole, err := e.guild.Role(ctx, req.GuildID, roleID)
	if err != nil {
		return plan, lookupFailure(goerr.Wrap(err, "failed to resolve jail role", goerr.V(RoleIDKey, roleID)), "jail role")
	}
	if jailRole == nil {
		return plan, missing("jail role")
	}
	plan.jailRole = jailRole

	if channelID == "" {
		return plan, missing("jail channel")
	}
	exists, err := e.guild.ChannelExists(ctx, req.GuildID, channelID)
	if err != nil {
		return plan, lookupFailure(goerr.Wrap(err, "failed to resolve jail channel", goerr.V("channel_id", channelID)), "jail channel")
	}
	if !exists {
		return plan, missing("jail channel")
	}
	plan.jailChannelID = channelID

	if target.HasRole(jailRole.ID) {
		return plan, &Failure{Kind: FailureAlreadyInState, Stage: StageValidated, Subject: "jailed"}
	}

	scope, err := e.guild.Scope(ctx, req.GuildID)
	if err != nil {
		return plan, lookupFailure(goerr.Wrap(err, "failed to resolve guild scope"), "guild scope")
	}
	plan.snapshot = ManageableRoles(req.GuildID, target.Roles, jailRole.ID, ScopeAssignable(*scope))

	return plan, nil
}

// lookupConfig issues both configuration reads concurrently.
func (e *JailEngine) lookupConfig(ctx context.Context, guildID string) (string, string, error) {
	var roleID, channelID string

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		id, err := e.config.JailRoleID(egCtx, guildID)
		if err != nil {
			return goerr.Wrap(err, "failed to get jail role id", goerr.V(GuildIDKey, guildID))
		}
		roleID = id
		return nil
	})
	eg.Go(func() error {
		id, err := e.config.JailChannelID(egCtx, guildID)
		if err != nil {
			return goerr.Wrap(err, "failed to get jail channel id", goerr.V(GuildIDKey, guildID))
		}
		channelID = id
		return nil
	})
	if err := eg.Wait(); err != nil {
		return "", "", err
	}

	return roleID, channelID, nil
}

func (e *JailEngine) recordCase(ctx context.Context, req JailRequest, plan *jailPlan, reason string) (*model.ModerationCase, *Failure) {
	if err := ctx.Err(); err != nil {
		return nil, &Failure{
			Kind:  FailureCancelled,
			Stage: StageCaseRecorded,
			Err:   goerr.Wrap(err, "context done before case insert"),
		}
	}

	c := &model.ModerationCase{
		GuildID:     req.GuildID,
		UserID:      plan.target.UserID,
		ModeratorID: req.Moderator.UserID,
		Type:        model.CaseTypeJail,
		Reason:      reason,
		UserRoles:   model.RoleIDs(plan.snapshot),
	}

	created, err := e.cases.InsertCase(ctx, c)
	if err != nil {
		return nil, &Failure{
			Kind:  FailureRepository,
			Stage: StageCaseRecorded,
			Err: goerr.Wrap(err, "failed to insert case",
				goerr.V(GuildIDKey, req.GuildID),
				goerr.V(TargetIDKey, plan.target.UserID)),
		}
	}
	return created, nil
}

func (e *JailEngine) stripRoles(ctx context.Context, req JailRequest, plan *jailPlan, reason string) *Failure {
	if len(plan.snapshot) == 0 {
		return nil
	}

	roleIDs := model.RoleIDs(plan.snapshot)
	if err := e.roles.RemoveRoles(ctx, req.GuildID, plan.target.UserID, roleIDs, reason); err != nil {
		return &Failure{
			Kind:  FailureRoleMutation,
			Stage: StageRolesStripped,
			Err:   goerr.Wrap(err, "failed to remove roles", goerr.V("role_ids", roleIDs)),
		}
	}
	return nil
}

func (e *JailEngine) grantRole(ctx context.Context, req JailRequest, plan *jailPlan, reason string) *Failure {
	if err := e.roles.AddRole(ctx, req.GuildID, plan.target.UserID, plan.jailRole.ID, reason); err != nil {
		return &Failure{
			Kind:    FailureRoleMutation,
			Stage:   StageRoleGranted,
			Subject: "jail role",
			Err:     goerr.Wrap(err, "failed to add jail role", goerr.V(RoleIDKey, plan.jailRole.ID)),
		}
	}
	return nil
}

func (e *JailEngine) notify(ctx context.Context, req JailRequest, plan *jailPlan, reason string) (bool, *Failure) {
	if req.Silent {
		return false, nil
	}

	if err := e.notifier.DirectMessage(ctx, plan.target.UserID, JailNotice(req.GuildName, reason)); err != nil {
		return false, &Failure{
			Kind:  FailureNotification,
			Stage: StageNotified,
			Err:   goerr.Wrap(err, "failed to send direct message"),
		}
	}
	return true, nil
}

// JailNotice is the direct message sent to a jailed member.
func JailNotice(guildName, reason string) string {
	if guildName == "" {
		guildName = "the server"
	}
	return fmt.Sprintf("You have been jailed from %s for the following reason:\n> %s", guildName, reason)
}
