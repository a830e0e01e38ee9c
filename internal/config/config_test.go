package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.LLM.Model = "gpt-4o"
	cfg.MaxRegenerations = 5
	cfg.Publish.PaidArticle = true

	if err := SaveConfig(dir, cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.LLM.Model != "gpt-4o" {
		t.Errorf("Model = %s, want gpt-4o", loaded.LLM.Model)
	}
	if loaded.MaxRegenerations != 5 {
		t.Errorf("MaxRegenerations = %d, want 5", loaded.MaxRegenerations)
	}
	if !loaded.Publish.PaidArticle {
		t.Errorf("PaidArticle not preserved")
	}
}

func TestLoadConfigFillsDefaults(t *testing.T) {
	dir := t.TempDir()

	// A minimal config file from an older version omits most keys.
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"version":"1"}`), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("Model default = %s, want gpt-4o-mini", cfg.LLM.Model)
	}
	if cfg.RecencyWindow != 30 {
		t.Errorf("RecencyWindow default = %d, want 30", cfg.RecencyWindow)
	}
	if cfg.Quality.MinWordCount != 800 {
		t.Errorf("MinWordCount default = %d, want 800", cfg.Quality.MinWordCount)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(t.TempDir()); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadAccountsNumbered(t *testing.T) {
	t.Setenv("NOTE_EMAIL", "")
	t.Setenv("NOTE_PASSWORD", "")
	t.Setenv("NOTE_EMAIL_1", "first@example.com")
	t.Setenv("NOTE_PASSWORD_1", "pw1")
	t.Setenv("NOTE_EMAIL_2", "second@example.com")
	t.Setenv("NOTE_PASSWORD_2", "pw2")
	t.Setenv("NOTE_EMAIL_3", "")
	t.Setenv("NOTE_PASSWORD_3", "")
	// A gap ends the scan even if later indexes are set.
	t.Setenv("NOTE_EMAIL_4", "ignored@example.com")
	t.Setenv("NOTE_PASSWORD_4", "pw4")

	accounts, err := LoadAccounts()
	if err != nil {
		t.Fatalf("LoadAccounts failed: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(accounts))
	}
	if accounts[0].Label != "account-1" || accounts[0].Email != "first@example.com" {
		t.Errorf("first account mismatch: %+v", accounts[0])
	}
	if accounts[1].Label != "account-2" {
		t.Errorf("second account label = %s", accounts[1].Label)
	}
}

func TestLoadAccountsSingleFallback(t *testing.T) {
	t.Setenv("NOTE_EMAIL_1", "")
	t.Setenv("NOTE_PASSWORD_1", "")
	t.Setenv("NOTE_EMAIL", "solo@example.com")
	t.Setenv("NOTE_PASSWORD", "pw")

	accounts, err := LoadAccounts()
	if err != nil {
		t.Fatalf("LoadAccounts failed: %v", err)
	}
	if len(accounts) != 1 || accounts[0].Label != "account" {
		t.Errorf("fallback account mismatch: %+v", accounts)
	}
}

func TestLoadAccountsNoneConfigured(t *testing.T) {
	t.Setenv("NOTE_EMAIL", "")
	t.Setenv("NOTE_PASSWORD", "")
	t.Setenv("NOTE_EMAIL_1", "")
	t.Setenv("NOTE_PASSWORD_1", "")

	if _, err := LoadAccounts(); err == nil {
		t.Fatal("expected error with no credentials set")
	}
}

func TestMaskEmail(t *testing.T) {
	if got := MaskEmail("user@example.com"); got != "user***" {
		t.Errorf("MaskEmail = %s, want user***", got)
	}
	if got := MaskEmail("a@b"); got != "***" {
		t.Errorf("MaskEmail short = %s, want ***", got)
	}
}

func TestSaveAndLoadThemes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "themes.yaml")

	if err := SaveThemes(path, DefaultThemes()); err != nil {
		t.Fatalf("SaveThemes failed: %v", err)
	}

	themes, err := LoadThemes(path)
	if err != nil {
		t.Fatalf("LoadThemes failed: %v", err)
	}
	if len(themes) != len(DefaultThemes()) {
		t.Fatalf("expected %d themes, got %d", len(DefaultThemes()), len(themes))
	}
	if themes[0].ID != "side-income-basics" {
		t.Errorf("theme order not preserved: first = %s", themes[0].ID)
	}
	if len(themes[0].StyleHints) == 0 {
		t.Errorf("style hints not round-tripped")
	}
}

func TestLoadThemesDefaultsTitleToID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "themes.yaml")
	content := "themes:\n  - id: bare-theme\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}

	themes, err := LoadThemes(path)
	if err != nil {
		t.Fatalf("LoadThemes failed: %v", err)
	}
	if themes[0].Title != "bare-theme" {
		t.Errorf("Title = %s, want the id", themes[0].Title)
	}
}

func TestLoadThemesRejectsMissingID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "themes.yaml")
	content := "themes:\n  - title: タイトルだけ\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}

	if _, err := LoadThemes(path); err == nil {
		t.Fatal("expected error for theme without id")
	}
}

func TestLoadThemesRejectsEmptyCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "themes.yaml")
	if err := os.WriteFile(path, []byte("themes: []\n"), 0644); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}

	if _, err := LoadThemes(path); err == nil {
		t.Fatal("expected error for empty catalog")
	}
}
