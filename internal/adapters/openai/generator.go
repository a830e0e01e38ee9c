// Package openai contains the generative-API adapters: article generation
// via chat completions and cover generation via the images API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/example/autonote/internal/config"
	"github.com/example/autonote/internal/core/article"
	"github.com/example/autonote/internal/core/run"
)

// defaultHashtags pads the tag list when the model returns none.
var defaultHashtags = []string{"ビジネス", "ライフハック", "自己成長", "学び", "仕事術"}

// Generator implements secondary.ArticleGenerator with chat completions.
type Generator struct {
	client  openai.Client
	model   string
	timeout time.Duration
	logger  *log.Logger
}

// NewGenerator creates a Generator from the LLM configuration. The API key
// is resolved from the environment variable the config names.
func NewGenerator(cfg config.LLMConfig, timeout time.Duration, logger *log.Logger) (*Generator, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("api key missing: set %s", cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("llm model is required")
	}
	if logger == nil {
		logger = log.Default()
	}

	opts := []option.RequestOption{option.WithAPIKey(key)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Generator{
		client:  openai.NewClient(opts...),
		model:   cfg.Model,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Generate produces a draft for the theme. The model is instructed to emit
// marker-delimited sections, which survive formatting drift better than
// asking for JSON.
func (g *Generator) Generate(ctx context.Context, theme article.Theme) (article.Draft, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("あなたはnote.comで人気のブロガーです。指定されたフォーマットに厳密に従って出力してください。"),
			openai.UserMessage(buildPrompt(theme)),
		},
	})
	if err != nil {
		return article.Draft{}, &run.GenerationError{Cause: err, Transient: isRateLimited(err)}
	}
	if len(resp.Choices) == 0 {
		return article.Draft{}, &run.GenerationError{Cause: errors.New("empty choices in completion response")}
	}

	draft, err := parseDraft(resp.Choices[0].Message.Content, theme)
	if err != nil {
		return article.Draft{}, &run.GenerationError{Cause: err}
	}

	g.logger.Printf("[generator] draft ready title=%q body=%d chars tags=%d", draft.Title, draft.WordCount, len(draft.Hashtags))
	return draft, nil
}

func buildPrompt(theme article.Theme) string {
	var sb strings.Builder
	sb.WriteString("以下のテーマについて、note.comに投稿する記事を書いてください。\n\n")
	sb.WriteString("## テーマ\n")
	sb.WriteString(theme.Title)
	sb.WriteString("\n\n## 記事のスタイル・要件\n")
	sb.WriteString("- 3000文字以上のMarkdown形式\n")
	sb.WriteString("- 見出し(##)を4つ以上使って章立てする\n")
	sb.WriteString("- 読者への問いかけを入れた親しみやすい文体\n")
	for _, hint := range theme.StyleHints {
		sb.WriteString("- ")
		sb.WriteString(hint)
		sb.WriteString("\n")
	}
	sb.WriteString(`
## 出力フォーマット
以下の形式で出力してください（マーカーは必ず含めてください）：

---TITLE_START---
（記事タイトルを1行で。キャッチーで読みたくなるタイトルに）
---TITLE_END---

---BODY_START---
（記事本文。Markdown形式で）
---BODY_END---

---HASHTAGS_START---
（カンマ区切りでハッシュタグを5個。#は不要）
---HASHTAGS_END---
`)
	return sb.String()
}

// parseDraft extracts the marker-delimited sections from the model output.
func parseDraft(text string, theme article.Theme) (article.Draft, error) {
	title := strings.TrimSpace(extractBetween(text, "---TITLE_START---", "---TITLE_END---"))
	body := strings.TrimSpace(extractBetween(text, "---BODY_START---", "---BODY_END---"))
	rawTags := strings.TrimSpace(extractBetween(text, "---HASHTAGS_START---", "---HASHTAGS_END---"))

	if title == "" || body == "" {
		return article.Draft{}, errors.New("model output missing title or body markers")
	}

	var hashtags []string
	for _, tag := range strings.FieldsFunc(rawTags, func(r rune) bool { return r == ',' || r == '、' }) {
		tag = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
		if tag != "" {
			hashtags = append(hashtags, tag)
		}
	}
	if len(hashtags) == 0 {
		hashtags = append(hashtags, defaultHashtags...)
	}

	return article.NewDraft(theme, title, body, hashtags), nil
}

func extractBetween(text, start, end string) string {
	i := strings.Index(text, start)
	if i < 0 {
		return ""
	}
	rest := text[i+len(start):]
	j := strings.Index(rest, end)
	if j < 0 {
		return ""
	}
	return rest[:j]
}

// isRateLimited reports whether the API rejected the call for quota or rate
// reasons, which is worth a delayed retry.
func isRateLimited(err error) bool {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return apierr.StatusCode == 429 || apierr.StatusCode >= 500
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate") || strings.Contains(msg, "quota")
}
