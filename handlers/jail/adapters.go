package jail

import (
	"context"
	"errors"
	"net/http"

	"discord-modbot/model"
	"discord-modbot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/time/rate"
)

// DiscordGuild reads live guild state through the gateway cache, falling back to REST.
type DiscordGuild struct {
	session *discordgo.Session
}

func NewDiscordGuild(s *discordgo.Session) *DiscordGuild {
	return &DiscordGuild{session: s}
}

func (g *DiscordGuild) guild(ctx context.Context, guildID string) (*discordgo.Guild, error) {
	if guild, err := g.session.State.Guild(guildID); err == nil && guild != nil {
		return guild, nil
	}
	guild, err := g.session.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get guild", goerr.V("guild_id", guildID))
	}
	return guild, nil
}

func (g *DiscordGuild) roles(ctx context.Context, guildID string) ([]*discordgo.Role, error) {
	if guild, err := g.session.State.Guild(guildID); err == nil && guild != nil && len(guild.Roles) > 0 {
		return guild.Roles, nil
	}
	roles, err := g.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get guild roles", goerr.V("guild_id", guildID))
	}
	return roles, nil
}

func (g *DiscordGuild) member(ctx context.Context, guildID, userID string) (*discordgo.Member, error) {
	member, err := g.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get guild member", goerr.V("guild_id", guildID), goerr.V("user_id", userID))
	}
	return member, nil
}

// Member always asks REST so the role list reflects changes made moments ago.
func (g *DiscordGuild) Member(ctx context.Context, guildID, userID string) (*model.Member, error) {
	member, err := g.member(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}
	roles, err := g.roles(ctx, guildID)
	if err != nil {
		return nil, err
	}
	return toMember(guildID, member, roles), nil
}

func (g *DiscordGuild) Role(ctx context.Context, guildID, roleID string) (*model.Role, error) {
	roles, err := g.roles(ctx, guildID)
	if err != nil {
		return nil, err
	}
	for _, r := range roles {
		if r.ID == roleID {
			role := toRole(r)
			return &role, nil
		}
	}
	return nil, nil
}

func (g *DiscordGuild) ChannelExists(ctx context.Context, guildID, channelID string) (bool, error) {
	if channel, err := g.session.State.Channel(channelID); err == nil && channel != nil {
		return channel.GuildID == guildID, nil
	}

	channel, err := g.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		var restErr *discordgo.RESTError
		if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to get channel", goerr.V("channel_id", channelID))
	}
	return channel.GuildID == guildID, nil
}

func (g *DiscordGuild) Scope(ctx context.Context, guildID string) (*model.GuildScope, error) {
	guild, err := g.guild(ctx, guildID)
	if err != nil {
		return nil, err
	}
	roles, err := g.roles(ctx, guildID)
	if err != nil {
		return nil, err
	}
	botMember, err := g.member(ctx, guildID, g.session.State.User.ID)
	if err != nil {
		return nil, err
	}
	scope := toScope(guild.ID, guild.OwnerID, botMember, roles)
	return &scope, nil
}

// toRole leaves Tags empty: discordgo does not expose them, Managed covers those roles.
func toRole(r *discordgo.Role) model.Role {
	return model.Role{
		ID:          r.ID,
		Name:        r.Name,
		Position:    r.Position,
		Permissions: r.Permissions,
		Managed:     r.Managed,
	}
}

// toMember resolves the member's role ids against the guild roles, keeping the member's order.
// Ids the guild no longer knows are dropped.
func toMember(guildID string, m *discordgo.Member, guildRoles []*discordgo.Role) *model.Member {
	byID := make(map[string]*discordgo.Role, len(guildRoles))
	for _, r := range guildRoles {
		byID[r.ID] = r
	}

	member := &model.Member{GuildID: guildID, Roles: make([]model.Role, 0, len(m.Roles))}
	if m.User != nil {
		member.UserID = m.User.ID
		member.Username = m.User.Username
		member.Bot = m.User.Bot
	}
	for _, id := range m.Roles {
		if r, ok := byID[id]; ok {
			member.Roles = append(member.Roles, toRole(r))
		}
	}
	return member
}

// toScope computes the bot's top role position and its guild-wide permissions,
// including those granted to @everyone.
func toScope(guildID, ownerID string, botMember *discordgo.Member, guildRoles []*discordgo.Role) model.GuildScope {
	bot := toMember(guildID, botMember, guildRoles)
	scope := model.GuildScope{
		GuildID:        guildID,
		OwnerID:        ownerID,
		BotID:          bot.UserID,
		BotTopPosition: bot.TopPosition(),
	}
	for _, r := range guildRoles {
		if r.ID == guildID {
			scope.BotPermissions |= r.Permissions
		}
	}
	for _, r := range bot.Roles {
		scope.BotPermissions |= r.Permissions
	}
	return scope
}

// DiscordRoles applies role changes with the reason recorded in the audit log.
type DiscordRoles struct {
	session *discordgo.Session
}

func NewDiscordRoles(s *discordgo.Session) *DiscordRoles {
	return &DiscordRoles{session: s}
}

func (r *DiscordRoles) RemoveRoles(ctx context.Context, guildID, userID string, roleIDs []string, reason string) error {
	removed := make([]string, 0, len(roleIDs))
	for _, roleID := range roleIDs {
		err := r.session.GuildMemberRoleRemove(guildID, userID, roleID,
			discordgo.WithContext(ctx),
			discordgo.WithAuditLogReason(reason))
		if err != nil {
			return goerr.Wrap(err, "failed to remove role",
				goerr.V("role_id", roleID),
				goerr.V("removed", removed))
		}
		removed = append(removed, roleID)
	}
	return nil
}

func (r *DiscordRoles) AddRole(ctx context.Context, guildID, userID, roleID, reason string) error {
	err := r.session.GuildMemberRoleAdd(guildID, userID, roleID,
		discordgo.WithContext(ctx),
		discordgo.WithAuditLogReason(reason))
	if err != nil {
		return goerr.Wrap(err, "failed to add role", goerr.V("role_id", roleID))
	}
	return nil
}

// DiscordNotifier sends direct messages, throttled to stay clear of the DM rate limit.
type DiscordNotifier struct {
	session *discordgo.Session
	limiter *rate.Limiter
}

func NewDiscordNotifier(s *discordgo.Session, perSecond float64, burst int) *DiscordNotifier {
	if perSecond <= 0 {
		perSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &DiscordNotifier{
		session: s,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

func (n *DiscordNotifier) DirectMessage(ctx context.Context, userID, message string) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return goerr.Wrap(err, "direct message throttled", goerr.V("user_id", userID))
	}
	return utils.SendPrivateMessage(ctx, n.session, userID, message)
}
