package moderation

import (
	"context"

	"discord-modbot/model"

	"github.com/m-mizutani/goerr/v2"
)

// RankEligibility is the default Eligibility: self, bot and owner guards plus role rank
// comparison against both the moderator and the bot.
type RankEligibility struct {
	guild GuildState
}

func NewRankEligibility(guild GuildState) *RankEligibility {
	return &RankEligibility{guild: guild}
}

func (e *RankEligibility) Check(ctx context.Context, guildID string, moderator, target *model.Member, action model.CaseType) error {
	if moderator == nil || target == nil {
		return goerr.New("moderator and target are required", goerr.V("action", action))
	}
	if moderator.UserID == target.UserID {
		return goerr.Wrap(ErrSelfAction, "eligibility denied", goerr.V(TargetIDKey, target.UserID))
	}
	if target.Bot {
		return goerr.Wrap(ErrTargetIsBot, "eligibility denied", goerr.V(TargetIDKey, target.UserID))
	}

	scope, err := e.guild.Scope(ctx, guildID)
	if err != nil {
		return goerr.Wrap(err, "failed to resolve guild scope", goerr.V(GuildIDKey, guildID))
	}
	if target.UserID == scope.OwnerID {
		return goerr.Wrap(ErrTargetIsOwner, "eligibility denied", goerr.V(TargetIDKey, target.UserID))
	}
	if moderator.UserID != scope.OwnerID && moderator.TopPosition() <= target.TopPosition() {
		return goerr.Wrap(ErrTargetOutranks, "eligibility denied",
			goerr.V(TargetIDKey, target.UserID),
			goerr.V("moderator_position", moderator.TopPosition()),
			goerr.V("target_position", target.TopPosition()))
	}
	if scope.BotID != scope.OwnerID && scope.BotTopPosition <= target.TopPosition() {
		return goerr.Wrap(ErrBotOutranked, "eligibility denied",
			goerr.V(TargetIDKey, target.UserID),
			goerr.V("bot_position", scope.BotTopPosition))
	}
	return nil
}
