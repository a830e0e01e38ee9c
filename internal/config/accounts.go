package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/example/autonote/internal/ports/secondary"
)

// LoadEnv loads a .env file if one exists. Missing files are not an error;
// CI and scheduled runs set real environment variables instead.
func LoadEnv() {
	_ = godotenv.Load()
}

// LoadAccounts assembles the ordered credential list from the environment.
//
// Multiple accounts: NOTE_EMAIL_1/NOTE_PASSWORD_1, NOTE_EMAIL_2/..., read in
// index order until the first gap. Single account: NOTE_EMAIL/NOTE_PASSWORD,
// kept for backward compatibility.
func LoadAccounts() ([]secondary.AccountCredential, error) {
	var accounts []secondary.AccountCredential

	for idx := 1; ; idx++ {
		email := os.Getenv(fmt.Sprintf("NOTE_EMAIL_%d", idx))
		password := os.Getenv(fmt.Sprintf("NOTE_PASSWORD_%d", idx))
		if email == "" || password == "" {
			break
		}
		accounts = append(accounts, secondary.AccountCredential{
			Label:    fmt.Sprintf("account-%d", idx),
			Email:    email,
			Password: password,
		})
	}

	if len(accounts) == 0 {
		email := os.Getenv("NOTE_EMAIL")
		password := os.Getenv("NOTE_PASSWORD")
		if email != "" && password != "" {
			accounts = append(accounts, secondary.AccountCredential{
				Label:    "account",
				Email:    email,
				Password: password,
			})
		}
	}

	if len(accounts) == 0 {
		return nil, fmt.Errorf("no accounts configured: set NOTE_EMAIL/NOTE_PASSWORD or NOTE_EMAIL_1/NOTE_PASSWORD_1")
	}

	return accounts, nil
}

// MaskEmail shortens an email for log output, keeping the first few runes.
func MaskEmail(email string) string {
	r := []rune(email)
	if len(r) <= 4 {
		return strings.Repeat("*", len(r))
	}
	return string(r[:4]) + "***"
}
