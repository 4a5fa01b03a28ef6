package defs

import "github.com/bwmarrin/discordgo"

var (
	moderateMembers int64 = discordgo.PermissionModerateMembers
	guildOnly             = false
)

var Jail = &discordgo.ApplicationCommand{
	Name:        "jail",
	Description: "Strip a member's roles and confine them to the jail channel",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "关禁闭",
		discordgo.ChineseTW: "關禁閉",
	},
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "移除成员的身份组并将其限制在禁闭频道",
		discordgo.ChineseTW: "移除成員的身份組並將其限制在禁閉頻道",
	},
	DefaultMemberPermissions: &moderateMembers,
	DMPermission:             &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "The member to jail",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Why the member is being jailed",
			Required:    false,
			MaxLength:   512,
		},
		{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "silent",
			Description: "Do not send the member a direct message",
			Required:    false,
		},
	},
}
