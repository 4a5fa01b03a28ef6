package handlers

import (
	"fmt"
	"runtime"
	"time"

	"discord-modbot/model"
	"discord-modbot/utils/database"
	"discord-modbot/utils/logging"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

type systemInfo struct {
	Platform    string
	Kernel      string
	CPUCount    int
	CPUPercent  float64
	MemPercent  float64
	MemUsedMB   uint64
	MemTotalMB  uint64
	DBSizeBytes int64
	Latency     time.Duration
	Goroutines  int
	Guilds      int
	Uptime      time.Duration
}

func collectSystemInfo(s *discordgo.Session, cfg *model.Config, startedAt time.Time) systemInfo {
	info := systemInfo{
		Goroutines: runtime.NumGoroutine(),
		Latency:    s.HeartbeatLatency(),
	}
	if s.State != nil {
		info.Guilds = len(s.State.Guilds)
	}
	if !startedAt.IsZero() {
		info.Uptime = time.Since(startedAt)
	}

	if n, err := cpu.Counts(true); err == nil {
		info.CPUCount = n
	}
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		info.CPUPercent = pct[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.MemPercent = vm.UsedPercent
		info.MemUsedMB = vm.Used / 1024 / 1024
		info.MemTotalMB = vm.Total / 1024 / 1024
	}
	if h, err := host.Info(); err == nil {
		info.Platform = fmt.Sprintf("%s %s", h.Platform, h.PlatformVersion)
		info.Kernel = h.KernelVersion
	}
	if size, err := database.Size(cfg.DatabasePath); err == nil {
		info.DBSizeBytes = size
	} else {
		logging.Default().Debug("database size unavailable", "error", err)
	}
	return info
}

func systemInfoEmbed(info systemInfo, now time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "System Information",
		Color: 0x5865F2, // Discord Blurple
		Fields: []*discordgo.MessageEmbedField{
			{Name: "💻 OS", Value: orDash(info.Platform), Inline: true},
			{Name: "🔧 Kernel", Value: orDash(info.Kernel), Inline: true},
			{Name: "🐹 Go", Value: runtime.Version(), Inline: true},
			{Name: "🔼 CPUs", Value: fmt.Sprintf("%d", info.CPUCount), Inline: true},
			{Name: "🔥 CPU usage", Value: fmt.Sprintf("%.1f%%", info.CPUPercent), Inline: true},
			{Name: "🧠 Memory", Value: fmt.Sprintf("%.1f%% (%d MB / %d MB)", info.MemPercent, info.MemUsedMB, info.MemTotalMB), Inline: true},
			{Name: "🗃️ Database", Value: fmt.Sprintf("%.2f MB", float64(info.DBSizeBytes)/1024/1024), Inline: true},
			{Name: "⏱️ Gateway latency", Value: info.Latency.String(), Inline: true},
			{Name: "🚀 Goroutines", Value: fmt.Sprintf("%d", info.Goroutines), Inline: true},
			{Name: "🌍 Guilds", Value: fmt.Sprintf("%d", info.Guilds), Inline: true},
			{Name: "⌛ Uptime", Value: info.Uptime.Round(time.Second).String(), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("System monitor • %s", now.Format("15:04")),
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func SystemInfoHandler(s *discordgo.Session, i *discordgo.InteractionCreate, b model.Bot) {
	embed := systemInfoEmbed(collectSystemInfo(s, b.GetConfig(), b.GetStartedAt()), time.Now())

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		logging.Default().Warn("failed to respond with system info", "error", err)
	}
}
