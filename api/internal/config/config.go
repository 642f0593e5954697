package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Secret names shared by every Provider.
const (
	KeyGeminiAPIKey     = "GEMINI_API_KEY"
	KeyNotionAPIKey     = "NOTION_API_KEY"
	KeyNotionDatabaseID = "NOTION_DATABASE_ID"
	KeyTelegramBotToken = "TELEGRAM_BOT_TOKEN"
)

var ErrMissingSecret = errors.New("missing required secret")

// Provider resolves secrets by name. An unset secret is reported as ("", nil).
type Provider interface {
	Name() string
	Lookup(ctx context.Context, key string) (string, error)
}

type Config struct {
	GeminiAPIKey     string
	NotionAPIKey     string
	NotionDatabaseID string

	// only the Telegram front end needs it
	TelegramBotToken string
}

// Load reads all secrets once at start-up. The three service secrets are
// required; the bot token is optional and checked by RequireTelegram.
func Load(ctx context.Context, p Provider) (*Config, error) {
	if p == nil {
		return nil, errors.New("config: nil provider")
	}
	var (
		cfg Config
		err error
	)
	if cfg.GeminiAPIKey, err = mustGet(ctx, p, KeyGeminiAPIKey); err != nil {
		return nil, err
	}
	if cfg.NotionAPIKey, err = mustGet(ctx, p, KeyNotionAPIKey); err != nil {
		return nil, err
	}
	if cfg.NotionDatabaseID, err = mustGet(ctx, p, KeyNotionDatabaseID); err != nil {
		return nil, err
	}
	if cfg.TelegramBotToken, err = get(ctx, p, KeyTelegramBotToken); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) RequireTelegram() error {
	if strings.TrimSpace(c.TelegramBotToken) == "" {
		return fmt.Errorf("%w: %s", ErrMissingSecret, KeyTelegramBotToken)
	}
	return nil
}

// Secrets lists the loaded secret values, for log redaction.
func (c *Config) Secrets() []string {
	out := make([]string, 0, 4)
	for _, s := range []string{c.GeminiAPIKey, c.NotionAPIKey, c.NotionDatabaseID, c.TelegramBotToken} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func mustGet(ctx context.Context, p Provider, key string) (string, error) {
	v, err := get(ctx, p, key)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", fmt.Errorf("%w: %s (source %s)", ErrMissingSecret, key, p.Name())
	}
	return v, nil
}

func get(ctx context.Context, p Provider, key string) (string, error) {
	v, err := p.Lookup(ctx, key)
	if err != nil {
		return "", fmt.Errorf("config %s: lookup %s: %w", p.Name(), key, err)
	}
	return strings.TrimSpace(v), nil
}
