package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/example/autonote/internal/ports/secondary"
)

const lineNotifyURL = "https://notify-api.line.me/api/notify"

// LineNotifier sends a run summary through LINE Notify.
type LineNotifier struct {
	token  string
	client *resty.Client
}

// NewLineNotifier creates a LINE notifier for the given access token.
func NewLineNotifier(token string, timeout time.Duration) *LineNotifier {
	return &LineNotifier{
		token:  token,
		client: resty.New().SetTimeout(timeout),
	}
}

// Channel names the channel for logging.
func (n *LineNotifier) Channel() string { return "line" }

// Notify delivers the summary as a plain text message.
func (n *LineNotifier) Notify(ctx context.Context, summary secondary.RunSummary) error {
	var msg string
	switch {
	case summary.Success && summary.DraftSaved:
		msg = fmt.Sprintf("\n✅ note下書き保存完了\n記事: %s", summary.Title)
	case summary.Success:
		msg = fmt.Sprintf("\n✅ note投稿完了\n記事: %s", summary.Title)
		if summary.PostURL != "" {
			msg += "\n" + summary.PostURL
		}
	default:
		msg = fmt.Sprintf("\n❌ note投稿失敗\n記事: %s", summary.Title)
		if summary.ErrDetail != "" {
			msg += "\nエラー: " + truncateRunes(summary.ErrDetail, 200)
		}
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+n.token).
		SetFormData(map[string]string{"message": msg}).
		Post(lineNotifyURL)
	if err != nil {
		return fmt.Errorf("line notify call failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("line notify returned %s", resp.Status())
	}
	return nil
}
