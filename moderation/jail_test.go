package moderation_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"discord-modbot/model"
	"discord-modbot/moderation"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

const (
	testGuildID   = "100"
	testOwnerID   = "owner"
	testBotID     = "bot"
	testModID     = "mod"
	testTargetID  = "target"
	testJailRole  = "J"
	testJailChan  = "C"
	testGuildName = "Test Guild"
)

var (
	roleA    = model.Role{ID: "A", Name: "member", Position: 10}
	roleB    = model.Role{ID: "B", Name: "helper-bot", Position: 5, Managed: true, Tags: model.RoleTags{BotID: "999"}}
	roleJail = model.Role{ID: testJailRole, Name: "jailed", Position: 20}
	roleMod  = model.Role{ID: "M", Name: "moderator", Position: 40}
)

type harness struct {
	guild    *fakeGuild
	config   *fakeConfig
	cases    *fakeCases
	roles    *fakeRoles
	notifier *fakeNotifier
	engine   *moderation.JailEngine
	mod      *model.Member
}

func newHarness(t *testing.T, targetRoles ...model.Role) *harness {
	t.Helper()

	guild := newFakeGuild(model.GuildScope{
		GuildID:        testGuildID,
		OwnerID:        testOwnerID,
		BotID:          testBotID,
		BotTopPosition: 50,
		BotPermissions: model.PermissionManageRoles,
	})
	for _, r := range []model.Role{roleA, roleB, roleJail, roleMod} {
		guild.addRole(r)
	}
	guild.channels[testJailChan] = true

	mod := &model.Member{GuildID: testGuildID, UserID: testModID, Username: "mod", Roles: []model.Role{roleMod}}
	guild.addMember(mod)
	guild.addMember(&model.Member{GuildID: testGuildID, UserID: testTargetID, Username: "target", Roles: targetRoles})

	h := &harness{
		guild:    guild,
		config:   &fakeConfig{roleID: testJailRole, channelID: testJailChan},
		cases:    &fakeCases{},
		notifier: &fakeNotifier{},
		mod:      mod,
	}
	h.roles = &fakeRoles{guild: guild}
	h.engine = moderation.NewJailEngine(h.config, h.guild, h.cases, h.roles, h.notifier)
	return h
}

func (h *harness) request(reason string) moderation.JailRequest {
	return moderation.JailRequest{
		GuildID:   testGuildID,
		GuildName: testGuildName,
		TargetID:  testTargetID,
		Moderator: h.mod,
		Reason:    reason,
	}
}

func TestJailStripsManageableRolesAndGrantsJailRole(t *testing.T) {
	h := newHarness(t, roleA, roleB)

	result := h.engine.Jail(context.Background(), h.request("spam"))

	gt.Bool(t, result.Completed()).True()
	gt.Value(t, result.Stage).Equal(moderation.StageCompleted)
	gt.Value(t, result.Failure).Nil()
	gt.Bool(t, result.DMSent).True()

	calls, cases := h.cases.snapshot()
	gt.Number(t, calls).Equal(1)
	gt.Array(t, cases).Length(1).Required()
	gt.Value(t, cases[0].UserRoles).Equal([]string{"A"})
	gt.Value(t, cases[0].Type).Equal(model.CaseTypeJail)
	gt.Value(t, cases[0].Reason).Equal("spam")
	gt.Value(t, cases[0].ModeratorID).Equal(testModID)

	gt.Value(t, result.Case).NotNil()
	gt.Value(t, result.Case.Number).Equal(int64(1))

	// managed role B is left alone
	gt.Value(t, h.guild.memberRoleIDs(testTargetID)).Equal([]string{"B", testJailRole})

	gt.Value(t, h.roles.removed).Equal([][]string{{"A"}})
	gt.Value(t, h.notifier.messages[testTargetID]).Equal([]string{
		"You have been jailed from Test Guild for the following reason:\n> spam",
	})
}

func TestJailAlreadyJailedHasNoSideEffects(t *testing.T) {
	h := newHarness(t, roleA, roleJail)

	result := h.engine.Jail(context.Background(), h.request("again"))

	gt.Bool(t, result.Completed()).False()
	gt.Value(t, result.Stage).Equal(moderation.StageValidated)
	gt.Value(t, result.Failure.Kind).Equal(moderation.FailureAlreadyInState)
	gt.Value(t, result.Failure.Subject).Equal("jailed")

	calls, _ := h.cases.snapshot()
	gt.Number(t, calls).Equal(0)
	removes, adds := h.roles.counts()
	gt.Number(t, removes).Equal(0)
	gt.Number(t, adds).Equal(0)
	gt.Number(t, h.notifier.count()).Equal(0)
}

func TestJailEmptySnapshotStillGrantsJailRole(t *testing.T) {
	h := newHarness(t, roleB)

	result := h.engine.Jail(context.Background(), h.request("spam"))

	gt.Bool(t, result.Completed()).True()
	_, cases := h.cases.snapshot()
	gt.Array(t, cases).Length(1).Required()
	gt.Bool(t, cases[0].UserRoles != nil).True()
	gt.Array(t, cases[0].UserRoles).Length(0)

	removes, adds := h.roles.counts()
	gt.Number(t, removes).Equal(0)
	gt.Number(t, adds).Equal(1)
	gt.Value(t, h.guild.memberRoleIDs(testTargetID)).Equal([]string{"B", testJailRole})
}

func TestJailMissingConfiguration(t *testing.T) {
	testCases := map[string]struct {
		setup   func(h *harness)
		subject string
	}{
		"jail role unset": {
			setup:   func(h *harness) { h.config.roleID = "" },
			subject: "jail role",
		},
		"jail role deleted from guild": {
			setup:   func(h *harness) { h.config.roleID = "gone" },
			subject: "jail role",
		},
		"jail channel unset": {
			setup:   func(h *harness) { h.config.channelID = "" },
			subject: "jail channel",
		},
		"jail channel deleted from guild": {
			setup:   func(h *harness) { h.config.channelID = "gone" },
			subject: "jail channel",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, roleA)
			tc.setup(h)

			result := h.engine.Jail(context.Background(), h.request("spam"))

			gt.Value(t, result.Outcome).Equal(moderation.OutcomeFailed)
			gt.Value(t, result.Stage).Equal(moderation.StageValidated)
			gt.Value(t, result.Failure.Kind).Equal(moderation.FailureConfigurationMissing)
			gt.Value(t, result.Failure.Subject).Equal(tc.subject)

			calls, _ := h.cases.snapshot()
			gt.Number(t, calls).Equal(0)
			gt.Value(t, h.guild.memberRoleIDs(testTargetID)).Equal([]string{"A"})
		})
	}
}

func TestJailRoleCheckedBeforeChannel(t *testing.T) {
	h := newHarness(t, roleA)
	h.config.roleID = ""
	h.config.channelID = ""

	result := h.engine.Jail(context.Background(), h.request(""))

	gt.Value(t, result.Failure.Subject).Equal("jail role")
}

func TestJailConfigLookupError(t *testing.T) {
	h := newHarness(t, roleA)
	h.config.err = errDatastore

	result := h.engine.Jail(context.Background(), h.request("spam"))

	gt.Value(t, result.Failure.Kind).Equal(moderation.FailureLookup)
	gt.Error(t, result.Failure).Is(errDatastore)
	calls, _ := h.cases.snapshot()
	gt.Number(t, calls).Equal(0)
}

func TestJailScopeLookupErrorIsNotDenial(t *testing.T) {
	h := newHarness(t, roleA)
	h.guild.scopeErr = errPlatform

	result := h.engine.Jail(context.Background(), h.request("spam"))

	gt.Value(t, result.Failure.Kind).Equal(moderation.FailureLookup)
	gt.Value(t, result.Failure.Subject).Equal("eligibility")
	gt.Error(t, result.Failure).Is(errPlatform)
	gt.Bool(t, moderation.IsDenial(result.Failure)).False()
	calls, _ := h.cases.snapshot()
	gt.Number(t, calls).Equal(0)
}

func TestJailUnknownTarget(t *testing.T) {
	h := newHarness(t, roleA)
	req := h.request("spam")
	req.TargetID = "nobody"

	result := h.engine.Jail(context.Background(), req)

	gt.Value(t, result.Failure.Kind).Equal(moderation.FailureLookup)
	gt.Value(t, result.Failure.Subject).Equal("member")
	gt.Value(t, result.Target).Nil()
}

func TestJailReadsConfigConcurrently(t *testing.T) {
	h := newHarness(t, roleA)

	roleStarted := make(chan struct{})
	channelStarted := make(chan struct{})
	await := func(own, other chan struct{}) func(ctx context.Context) error {
		return func(ctx context.Context) error {
			close(own)
			select {
			case <-other:
				return nil
			case <-time.After(2 * time.Second):
				return errors.New("lookups were not issued concurrently")
			}
		}
	}
	h.config.onRole = await(roleStarted, channelStarted)
	h.config.onChannel = await(channelStarted, roleStarted)

	result := h.engine.Jail(context.Background(), h.request("spam"))

	gt.Bool(t, result.Completed()).True()
}

func TestJailInsertFailureLeavesRolesUntouched(t *testing.T) {
	h := newHarness(t, roleA, roleB)
	h.cases.err = errDatastore

	result := h.engine.Jail(context.Background(), h.request("spam"))

	gt.Value(t, result.Outcome).Equal(moderation.OutcomeFailed)
	gt.Value(t, result.Stage).Equal(moderation.StageCaseRecorded)
	gt.Value(t, result.Failure.Kind).Equal(moderation.FailureRepository)
	gt.Error(t, result.Failure).Is(errDatastore)
	gt.Value(t, result.Case).Nil()

	removes, adds := h.roles.counts()
	gt.Number(t, removes).Equal(0)
	gt.Number(t, adds).Equal(0)
	gt.Value(t, h.guild.memberRoleIDs(testTargetID)).Equal([]string{"A", "B"})
}

func TestJailRemoveFailureKeepsCase(t *testing.T) {
	h := newHarness(t, roleA, roleB)
	h.roles.removeErr = errPlatform

	result := h.engine.Jail(context.Background(), h.request("spam"))

	gt.Value(t, result.Outcome).Equal(moderation.OutcomeFailed)
	gt.Value(t, result.Stage).Equal(moderation.StageRolesStripped)
	gt.Value(t, result.Failure.Kind).Equal(moderation.FailureRoleMutation)
	gt.Error(t, result.Failure).Is(errPlatform)

	_, cases := h.cases.snapshot()
	gt.Array(t, cases).Length(1).Required()
	gt.Value(t, cases[0].UserRoles).Equal([]string{"A"})
	gt.Value(t, result.Case).NotNil()

	_, adds := h.roles.counts()
	gt.Number(t, adds).Equal(0)
	gt.Value(t, h.guild.memberRoleIDs(testTargetID)).Equal([]string{"A", "B"})
	gt.Number(t, h.notifier.count()).Equal(0)
}

func TestJailAddFailureAfterStrip(t *testing.T) {
	h := newHarness(t, roleA, roleB)
	h.roles.addErr = errPlatform

	result := h.engine.Jail(context.Background(), h.request("spam"))

	gt.Value(t, result.Stage).Equal(moderation.StageRoleGranted)
	gt.Value(t, result.Failure.Kind).Equal(moderation.FailureRoleMutation)
	gt.Value(t, result.Failure.Subject).Equal("jail role")

	_, cases := h.cases.snapshot()
	gt.Array(t, cases).Length(1)
	gt.Value(t, h.guild.memberRoleIDs(testTargetID)).Equal([]string{"B"})
	gt.Number(t, h.notifier.count()).Equal(0)
}

func TestJailNotificationFailureIsNotFatal(t *testing.T) {
	h := newHarness(t, roleA)
	h.notifier.err = errDMDisabled

	result := h.engine.Jail(context.Background(), h.request("spam"))

	gt.Bool(t, result.Completed()).True()
	gt.Bool(t, result.DMSent).False()
	gt.Value(t, result.Notification).NotNil()
	gt.Value(t, result.Notification.Kind).Equal(moderation.FailureNotification)
	gt.Bool(t, result.Notification.Fatal()).False()
	gt.Value(t, h.guild.memberRoleIDs(testTargetID)).Equal([]string{testJailRole})
}

func TestJailSilentSkipsNotification(t *testing.T) {
	h := newHarness(t, roleA)
	req := h.request("spam")
	req.Silent = true

	result := h.engine.Jail(context.Background(), req)

	gt.Bool(t, result.Completed()).True()
	gt.Bool(t, result.DMSent).False()
	gt.Value(t, result.Notification).Nil()
	gt.Number(t, h.notifier.count()).Equal(0)
}

func TestJailDefaultReason(t *testing.T) {
	h := newHarness(t, roleA)

	result := h.engine.Jail(context.Background(), h.request("   "))

	gt.Value(t, result.Reason).Equal(moderation.DefaultReason)
	_, cases := h.cases.snapshot()
	gt.Array(t, cases).Length(1).Required()
	gt.Value(t, cases[0].Reason).Equal(moderation.DefaultReason)
}

func TestJailEligibilityDenied(t *testing.T) {
	testCases := map[string]struct {
		target *model.Member
		want   error
	}{
		"self": {
			target: &model.Member{UserID: testModID, Roles: []model.Role{roleMod}},
			want:   moderation.ErrSelfAction,
		},
		"bot": {
			target: &model.Member{UserID: "other-bot", Bot: true},
			want:   moderation.ErrTargetIsBot,
		},
		"owner": {
			target: &model.Member{UserID: testOwnerID},
			want:   moderation.ErrTargetIsOwner,
		},
		"outranks moderator": {
			target: &model.Member{UserID: "senior", Roles: []model.Role{{ID: "S", Position: 45}}},
			want:   moderation.ErrTargetOutranks,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, roleA)
			tc.target.GuildID = testGuildID
			h.guild.addMember(tc.target)
			req := h.request("spam")
			req.TargetID = tc.target.UserID

			result := h.engine.Jail(context.Background(), req)

			gt.Value(t, result.Failure.Kind).Equal(moderation.FailureEligibilityDenied)
			gt.Error(t, result.Failure).Is(tc.want)
			calls, _ := h.cases.snapshot()
			gt.Number(t, calls).Equal(0)
		})
	}
}

type denyAll struct{}

func (denyAll) Check(ctx context.Context, guildID string, moderator, target *model.Member, action model.CaseType) error {
	return goerr.Wrap(moderation.ErrNotEligible, "denied by policy")
}

func TestJailWithCustomEligibility(t *testing.T) {
	h := newHarness(t, roleA)
	engine := moderation.NewJailEngine(h.config, h.guild, h.cases, h.roles, h.notifier,
		moderation.WithEligibility(denyAll{}))

	result := engine.Jail(context.Background(), h.request("spam"))

	gt.Value(t, result.Failure.Kind).Equal(moderation.FailureEligibilityDenied)
	gt.String(t, result.Failure.Error()).Contains("denied by policy")
}

func TestJailCancelledContext(t *testing.T) {
	h := newHarness(t, roleA)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := h.engine.Jail(ctx, h.request("spam"))

	gt.Value(t, result.Outcome).Equal(moderation.OutcomeFailed)
	gt.Value(t, result.Failure.Kind).Equal(moderation.FailureCancelled)
	gt.Error(t, result.Failure).Is(context.Canceled)

	calls, _ := h.cases.snapshot()
	gt.Number(t, calls).Equal(0)
	removes, adds := h.roles.counts()
	gt.Number(t, removes).Equal(0)
	gt.Number(t, adds).Equal(0)
}

func TestJailSharedTargetLocks(t *testing.T) {
	h := newHarness(t, roleA)
	locks := moderation.NewTargetLocks()
	engine := moderation.NewJailEngine(h.config, h.guild, h.cases, h.roles, h.notifier,
		moderation.WithTargetLocks(locks))

	unlock, err := locks.Lock(context.Background(), testGuildID, testTargetID)
	gt.NoError(t, err).Required()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	blocked := engine.Jail(ctx, h.request("spam"))
	gt.Value(t, blocked.Failure.Kind).Equal(moderation.FailureCancelled)
	gt.Error(t, blocked.Failure).Is(context.DeadlineExceeded)
	calls, _ := h.cases.snapshot()
	gt.Number(t, calls).Equal(0)

	unlock()
	result := engine.Jail(context.Background(), h.request("spam"))
	gt.Bool(t, result.Completed()).True()
	gt.Number(t, locks.Len()).Equal(0)
}

func TestJailConcurrentSameTarget(t *testing.T) {
	h := newHarness(t, roleA, roleB)

	const n = 8
	results := make([]*moderation.JailResult, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = h.engine.Jail(context.Background(), h.request("spam"))
		}()
	}
	wg.Wait()

	completed, already := 0, 0
	for _, r := range results {
		switch {
		case r.Completed():
			completed++
		case r.Failure != nil && r.Failure.Kind == moderation.FailureAlreadyInState:
			already++
		}
	}
	gt.Number(t, completed).Equal(1)
	gt.Number(t, already).Equal(n - 1)

	calls, _ := h.cases.snapshot()
	gt.Number(t, calls).Equal(1)
	gt.Value(t, h.guild.memberRoleIDs(testTargetID)).Equal([]string{"B", testJailRole})
}

func TestJailNotice(t *testing.T) {
	gt.Value(t, moderation.JailNotice("Guild", "spam")).
		Equal("You have been jailed from Guild for the following reason:\n> spam")
	gt.String(t, moderation.JailNotice("", "spam")).Contains("the server")
}

func TestFailureMessages(t *testing.T) {
	missing := &moderation.Failure{Kind: moderation.FailureConfigurationMissing, Subject: "jail channel"}
	gt.Value(t, missing.Error()).Equal("configuration missing: jail channel")
	gt.Bool(t, missing.Fatal()).True()

	already := &moderation.Failure{Kind: moderation.FailureAlreadyInState, Subject: "jailed"}
	gt.Value(t, already.Error()).Equal("already jailed")

	mutation := &moderation.Failure{Kind: moderation.FailureRoleMutation, Stage: moderation.StageRolesStripped, Err: errPlatform}
	gt.Value(t, mutation.Error()).Equal("role_mutation_error at roles_stripped: platform error")
	gt.Error(t, mutation).Is(errPlatform)
}
