package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/example/autonote/internal/ports/secondary"
)

func discordServer(t *testing.T, status int) (*httptest.Server, *[]discordPayload) {
	t.Helper()

	var received []discordPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload discordPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("failed to decode webhook payload: %v", err)
		}
		received = append(received, payload)
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)

	return server, &received
}

func TestDiscordNotifySuccess(t *testing.T) {
	server, received := discordServer(t, http.StatusNoContent)
	n := NewDiscordNotifier(server.URL, 5*time.Second)

	summary := secondary.RunSummary{
		Title:   "テスト記事",
		Success: true,
		PostURL: "https://note.com/a/n/x1",
	}
	if err := n.Notify(context.Background(), summary); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	if len(*received) != 1 {
		t.Fatalf("expected 1 webhook call, got %d", len(*received))
	}
	embed := (*received)[0].Embeds[0]
	if embed.Color != colorGreen {
		t.Errorf("Color = %#x, want green", embed.Color)
	}
	if !strings.Contains(embed.Description, "テスト記事") {
		t.Errorf("Description missing title: %q", embed.Description)
	}
	if !strings.Contains(embed.Description, summary.PostURL) {
		t.Errorf("Description missing post URL: %q", embed.Description)
	}
}

func TestDiscordNotifyFailure(t *testing.T) {
	server, received := discordServer(t, http.StatusNoContent)
	n := NewDiscordNotifier(server.URL, 5*time.Second)

	summary := secondary.RunSummary{
		Title:     "テスト記事",
		Success:   false,
		ErrDetail: "account-2: login failed",
	}
	if err := n.Notify(context.Background(), summary); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	embed := (*received)[0].Embeds[0]
	if embed.Color != colorRed {
		t.Errorf("Color = %#x, want red", embed.Color)
	}
	if !strings.Contains(embed.Description, "login failed") {
		t.Errorf("Description missing error detail: %q", embed.Description)
	}
}

func TestDiscordNotifyDraftSaved(t *testing.T) {
	server, received := discordServer(t, http.StatusNoContent)
	n := NewDiscordNotifier(server.URL, 5*time.Second)

	summary := secondary.RunSummary{Title: "テスト記事", Success: true, DraftSaved: true}
	if err := n.Notify(context.Background(), summary); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	embed := (*received)[0].Embeds[0]
	if !strings.Contains(embed.Title, "下書き") {
		t.Errorf("draft save not reflected in title: %q", embed.Title)
	}
}

func TestDiscordNotifyServerError(t *testing.T) {
	server, _ := discordServer(t, http.StatusBadGateway)
	n := NewDiscordNotifier(server.URL, 5*time.Second)

	if err := n.Notify(context.Background(), secondary.RunSummary{Title: "t", Success: true}); err == nil {
		t.Fatal("expected error for 5xx webhook response")
	}
}

func TestDiscordNotifyTruncatesLongErrors(t *testing.T) {
	server, received := discordServer(t, http.StatusNoContent)
	n := NewDiscordNotifier(server.URL, 5*time.Second)

	// Multi-byte error text must be cut on a character boundary.
	summary := secondary.RunSummary{
		Title:     "t",
		Success:   false,
		ErrDetail: strings.Repeat("あ", 2000),
	}
	if err := n.Notify(context.Background(), summary); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	embed := (*received)[0].Embeds[0]
	if n := len([]rune(embed.Description)); n > 820 {
		t.Errorf("description not truncated: %d runes", n)
	}
	if !utf8.ValidString(embed.Description) {
		t.Errorf("truncation split a multi-byte character")
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"short unchanged", "abc", 5, "abc"},
		{"exact unchanged", "abcde", 5, "abcde"},
		{"ascii cut", "abcdef", 3, "abc"},
		{"multibyte cut", "あいうえお", 3, "あいう"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateRunes(tt.input, tt.max); got != tt.want {
				t.Errorf("truncateRunes = %q, want %q", got, tt.want)
			}
		})
	}
}
