package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/example/autonote/internal/core/article"
)

// themeCatalog is the on-disk shape of themes.yaml.
type themeCatalog struct {
	Themes []article.Theme `yaml:"themes"`
}

// LoadThemes reads the candidate theme catalog. Order matters: the pipeline
// picks the first theme not excluded by the recency window.
func LoadThemes(path string) ([]article.Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme catalog: %w", err)
	}

	var catalog themeCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse theme catalog: %w", err)
	}
	if len(catalog.Themes) == 0 {
		return nil, fmt.Errorf("theme catalog %s contains no themes", path)
	}

	for i := range catalog.Themes {
		if catalog.Themes[i].ID == "" {
			return nil, fmt.Errorf("theme catalog %s: theme %d has no id", path, i+1)
		}
		if catalog.Themes[i].Title == "" {
			catalog.Themes[i].Title = catalog.Themes[i].ID
		}
	}

	return catalog.Themes, nil
}

// SaveThemes writes a theme catalog, used by `autonote init` for the seed file.
func SaveThemes(path string, themes []article.Theme) error {
	data, err := yaml.Marshal(themeCatalog{Themes: themes})
	if err != nil {
		return fmt.Errorf("failed to marshal theme catalog: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write theme catalog: %w", err)
	}
	return nil
}

// DefaultThemes is the seed catalog written by `autonote init`.
func DefaultThemes() []article.Theme {
	return []article.Theme{
		{ID: "side-income-basics", Title: "会社員が月3万円の副収入を作る現実的な方法", StyleHints: []string{"体験談風", "具体的な数字を入れる"}},
		{ID: "ai-tools-daily", Title: "AIツールを日常業務に取り入れる実践ガイド", StyleHints: []string{"初心者向け", "ツール名を挙げる"}},
		{ID: "index-investing", Title: "インデックス投資を始める前に知っておきたいこと", StyleHints: []string{"リスクの説明を丁寧に"}},
		{ID: "career-change-30s", Title: "30代の転職で失敗しないための準備", StyleHints: []string{"チェックリスト形式"}},
		{ID: "sns-writing", Title: "SNSで読まれる文章の書き方", StyleHints: []string{"例文を多めに"}},
	}
}
