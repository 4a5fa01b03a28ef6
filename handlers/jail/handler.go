package jail

import (
	"context"
	"time"

	"discord-modbot/bot"
	"discord-modbot/moderation"
	"discord-modbot/utils"
	"discord-modbot/utils/errutil"
	"discord-modbot/utils/logging"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

const commandTimeout = 30 * time.Second

// NewEngine wires the jail engine to the bot's session, stores and settings.
func NewEngine(b *bot.Bot) *moderation.JailEngine {
	cfg := b.GetConfig()
	return moderation.NewJailEngine(
		b.GuildConfigs,
		NewDiscordGuild(b.Session),
		b.Cases,
		NewDiscordRoles(b.Session),
		NewDiscordNotifier(b.Session, cfg.DMRatePerSecond, cfg.DMBurst),
		moderation.WithTargetLocks(b.Locks),
	)
}

// options holds the parsed options of the jail command.
type options struct {
	Target *discordgo.User
	Reason string
	Silent bool
}

func parseOptions(s *discordgo.Session, i *discordgo.InteractionCreate) options {
	opts := i.ApplicationCommandData().Options
	optionMap := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		optionMap[opt.Name] = opt
	}

	var parsed options
	if opt, ok := optionMap["user"]; ok {
		parsed.Target = opt.UserValue(s)
	}
	if opt, ok := optionMap["reason"]; ok {
		parsed.Reason = opt.StringValue()
	}
	if opt, ok := optionMap["silent"]; ok {
		parsed.Silent = opt.BoolValue()
	}
	return parsed
}

func HandleJailCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	cfg := b.GetConfig()

	logger := logging.Default().With(
		"request_id", uuid.NewString(),
		"command", "jail",
		"guild_id", i.GuildID,
	)
	ctx, cancel := context.WithTimeout(logging.With(context.Background(), logger), commandTimeout)
	defer cancel()

	// 1. Defer initial response
	if err := utils.DeferResponse(s, i, true); err != nil {
		errutil.Handle(ctx, err, "failed to defer interaction")
		return
	}

	// 2. Guild and moderator checks
	if i.Member == nil || i.Member.User == nil || i.GuildID == "" {
		utils.SendFollowUp(s, i.Interaction, "This command can only be used in a server.")
		return
	}
	if utils.CheckPermission(i.Member.Roles, i.Member.User.ID, cfg.ModeratorRoleIDs, cfg.DeveloperUserIDs) == utils.GuestPermission {
		utils.SendFollowUp(s, i.Interaction, "You do not have permission to use this command.")
		return
	}

	// 3. Parse command options
	opts := parseOptions(s, i)
	if opts.Target == nil {
		utils.SendFollowUp(s, i.Interaction, "Please choose a member to jail.")
		return
	}
	logger = logger.With("moderator_id", i.Member.User.ID, "target_id", opts.Target.ID)
	ctx = logging.With(ctx, logger)

	// 4. Resolve the moderator with roles
	guild := NewDiscordGuild(s)
	moderator, err := guild.Member(ctx, i.GuildID, i.Member.User.ID)
	if err != nil {
		errutil.Handle(ctx, err, "failed to resolve moderator")
		utils.SendFollowUp(s, i.Interaction, "Could not retrieve your member details.")
		return
	}

	guildName := ""
	if g, err := guild.guild(ctx, i.GuildID); err == nil {
		guildName = g.Name
	}

	// 5. Run the workflow
	result := b.Jail.Jail(ctx, moderation.JailRequest{
		GuildID:   i.GuildID,
		GuildName: guildName,
		TargetID:  opts.Target.ID,
		Moderator: moderator,
		Reason:    opts.Reason,
		Silent:    opts.Silent,
	})

	// 6. Respond and mirror to the log channel
	if result.Completed() {
		embed := CaseEmbed(result)
		utils.SendFollowUpEmbed(s, i.Interaction, embed)
		if err := utils.SendLogEmbed(s, cfg.LogChannelID, embed); err != nil {
			errutil.Handle(ctx, err, "failed to mirror case to log channel")
		}
		return
	}

	utils.SendFollowUp(s, i.Interaction, FailureMessage(result, opts.Target.Mention()))
	switch {
	case result.Case != nil:
		if err := utils.SendLogEmbed(s, cfg.LogChannelID, FailureEmbed(result, opts.Target.Mention())); err != nil {
			errutil.Handle(ctx, err, "failed to report incomplete jail to log channel")
		}
	case result.Failure != nil && result.Failure.Kind == moderation.FailureRepository:
		if err := utils.LogError(s, cfg.LogChannelID, "Jail", "Record case", result.Failure.Error()); err != nil {
			errutil.Handle(ctx, err, "failed to report case insert failure to log channel")
		}
	}
}
