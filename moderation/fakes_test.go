package moderation_test

import (
	"context"
	"errors"
	"slices"
	"sync"

	"discord-modbot/model"
)

var (
	errPlatform   = errors.New("platform error")
	errDatastore  = errors.New("datastore unavailable")
	errDMDisabled = errors.New("cannot send messages to this user")
)

// fakeGuild is an in-memory guild whose member roles are mutated by fakeRoles.
type fakeGuild struct {
	mu       sync.Mutex
	scope    model.GuildScope
	roles    map[string]model.Role
	channels map[string]bool
	members  map[string]*model.Member
	scopeErr error
}

func newFakeGuild(scope model.GuildScope) *fakeGuild {
	return &fakeGuild{
		scope:    scope,
		roles:    make(map[string]model.Role),
		channels: make(map[string]bool),
		members:  make(map[string]*model.Member),
	}
}

func (g *fakeGuild) addRole(r model.Role) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.roles[r.ID] = r
}

func (g *fakeGuild) addMember(m *model.Member) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.members[m.UserID] = copyMember(m)
}

func (g *fakeGuild) memberRoleIDs(userID string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return model.RoleIDs(g.members[userID].Roles)
}

func copyMember(m *model.Member) *model.Member {
	c := *m
	c.Roles = slices.Clone(m.Roles)
	return &c
}

func (g *fakeGuild) Member(ctx context.Context, guildID, userID string) (*model.Member, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	m, ok := g.members[userID]
	if !ok {
		return nil, errors.New("unknown member")
	}
	return copyMember(m), nil
}

func (g *fakeGuild) Role(ctx context.Context, guildID, roleID string) (*model.Role, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.roles[roleID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (g *fakeGuild) ChannelExists(ctx context.Context, guildID, channelID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.channels[channelID], nil
}

func (g *fakeGuild) Scope(ctx context.Context, guildID string) (*model.GuildScope, error) {
	if g.scopeErr != nil {
		return nil, g.scopeErr
	}
	s := g.scope
	return &s, nil
}

type fakeConfig struct {
	roleID    string
	channelID string
	err       error

	// optional hooks used to observe concurrent lookups
	onRole    func(ctx context.Context) error
	onChannel func(ctx context.Context) error
}

func (c *fakeConfig) JailRoleID(ctx context.Context, guildID string) (string, error) {
	if c.onRole != nil {
		if err := c.onRole(ctx); err != nil {
			return "", err
		}
	}
	return c.roleID, c.err
}

func (c *fakeConfig) JailChannelID(ctx context.Context, guildID string) (string, error) {
	if c.onChannel != nil {
		if err := c.onChannel(ctx); err != nil {
			return "", err
		}
	}
	return c.channelID, c.err
}

type fakeCases struct {
	mu    sync.Mutex
	err   error
	calls int
	cases []*model.ModerationCase
}

func (r *fakeCases) InsertCase(ctx context.Context, c *model.ModerationCase) (*model.ModerationCase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	stored := *c
	stored.UserRoles = append([]string{}, c.UserRoles...)
	stored.ID = int64(len(r.cases) + 1)
	stored.Number = stored.ID
	r.cases = append(r.cases, &stored)

	out := stored
	out.UserRoles = append([]string{}, stored.UserRoles...)
	return &out, nil
}

func (r *fakeCases) snapshot() (int, []*model.ModerationCase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls, slices.Clone(r.cases)
}

// fakeRoles applies role changes to a fakeGuild's members.
type fakeRoles struct {
	guild *fakeGuild

	mu          sync.Mutex
	removeErr   error
	addErr      error
	removeCalls int
	addCalls    int
	removed     [][]string
}

func (r *fakeRoles) RemoveRoles(ctx context.Context, guildID, userID string, roleIDs []string, reason string) error {
	r.mu.Lock()
	r.removeCalls++
	r.removed = append(r.removed, slices.Clone(roleIDs))
	err := r.removeErr
	r.mu.Unlock()
	if err != nil {
		return err
	}

	r.guild.mu.Lock()
	defer r.guild.mu.Unlock()
	m := r.guild.members[userID]
	m.Roles = slices.DeleteFunc(m.Roles, func(role model.Role) bool {
		return slices.Contains(roleIDs, role.ID)
	})
	return nil
}

func (r *fakeRoles) AddRole(ctx context.Context, guildID, userID, roleID, reason string) error {
	r.mu.Lock()
	r.addCalls++
	err := r.addErr
	r.mu.Unlock()
	if err != nil {
		return err
	}

	r.guild.mu.Lock()
	defer r.guild.mu.Unlock()
	m := r.guild.members[userID]
	m.Roles = append(m.Roles, r.guild.roles[roleID])
	return nil
}

func (r *fakeRoles) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeCalls, r.addCalls
}

type fakeNotifier struct {
	mu       sync.Mutex
	err      error
	messages map[string][]string
}

func (n *fakeNotifier) DirectMessage(ctx context.Context, userID, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.messages == nil {
		n.messages = make(map[string][]string)
	}
	n.messages[userID] = append(n.messages[userID], message)
	return n.err
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	total := 0
	for _, msgs := range n.messages {
		total += len(msgs)
	}
	return total
}
