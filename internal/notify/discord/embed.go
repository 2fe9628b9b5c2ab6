package discord

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/hamed0406/statusnotifier/internal/config"
	"github.com/hamed0406/statusnotifier/internal/render"
)

const (
	colorGreen  = 0x2ECC71
	colorYellow = 0xFEE75C
	colorRed    = 0xE74C3C
)

func embedColor(c render.Color) int {
	switch c {
	case render.Green:
		return colorGreen
	case render.Yellow:
		return colorYellow
	default:
		return colorRed
	}
}

// Embed formats a presentation as the live status message.
func Embed(d config.Display, p render.Presentation, now time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       d.Title,
		Description: fmt.Sprintf("%s <t:%d:R>", d.UpdatedText, now.Unix()),
		Color:       embedColor(p.Color),
		Fields: []*discordgo.MessageEmbedField{
			{Name: d.WebLabel, Value: fmt.Sprintf("%s **%s**", p.WebEmoji, p.WebText)},
			{Name: d.AppLabel, Value: fmt.Sprintf("%s **%s**", p.AppEmoji, p.AppText)},
			{Name: d.UptimeLabel, Value: fmt.Sprintf("%s\n`%s`", p.UptimeText, p.ProgressBar)},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: d.Footer},
		Timestamp: now.UTC().Format(time.RFC3339),
	}
}
