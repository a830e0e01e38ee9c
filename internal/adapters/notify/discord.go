// Package notify contains the notification-channel adapters. Every channel
// is best effort: the pipeline logs delivery errors and moves on.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/example/autonote/internal/ports/secondary"
)

const (
	colorGreen = 0x00C896
	colorRed   = 0xFF4444
)

// DiscordNotifier posts a run summary as an embed to a Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	client     *resty.Client
}

// NewDiscordNotifier creates a Discord notifier for the given webhook URL.
func NewDiscordNotifier(webhookURL string, timeout time.Duration) *DiscordNotifier {
	return &DiscordNotifier{
		webhookURL: webhookURL,
		client:     resty.New().SetTimeout(timeout),
	}
}

// Channel names the channel for logging.
func (n *DiscordNotifier) Channel() string { return "discord" }

type discordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

// Notify delivers the summary embed.
func (n *DiscordNotifier) Notify(ctx context.Context, summary secondary.RunSummary) error {
	embed := discordEmbed{Description: fmt.Sprintf("**%s**", summary.Title)}
	switch {
	case summary.Success && summary.DraftSaved:
		embed.Title = "✅ note記事を下書き保存しました"
		embed.Color = colorGreen
	case summary.Success:
		embed.Title = "✅ note記事を投稿しました"
		embed.Color = colorGreen
		if summary.PostURL != "" {
			embed.Description += fmt.Sprintf("\n[記事を見る](%s)", summary.PostURL)
		}
	default:
		embed.Title = "❌ note投稿に失敗しました"
		embed.Color = colorRed
		if summary.ErrDetail != "" {
			embed.Description += fmt.Sprintf("\n```%s```", truncateRunes(summary.ErrDetail, 800))
		}
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(discordPayload{Embeds: []discordEmbed{embed}}).
		Post(n.webhookURL)
	if err != nil {
		return fmt.Errorf("discord webhook call failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("discord webhook returned %s", resp.Status())
	}
	return nil
}

// truncateRunes caps error text for channel limits without splitting a
// multi-byte character.
func truncateRunes(s string, max int) string {
	if r := []rune(s); len(r) > max {
		return string(r[:max])
	}
	return s
}
