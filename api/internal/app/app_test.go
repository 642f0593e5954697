package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notes-capture/api/internal/config"
	"notes-capture/api/internal/notion"
)

func TestOptions_Addr(t *testing.T) {
	t.Setenv("PORT", "")
	assert.Equal(t, "0.0.0.0:8000", Options{Port: "8000"}.Addr())
	assert.Equal(t, "0.0.0.0:8080", Options{}.Addr())

	t.Setenv("PORT", "9999")
	assert.Equal(t, "0.0.0.0:9999", Options{Port: "8000"}.Addr())
}

func TestBindFlags(t *testing.T) {
	var o Options
	cmd := &cobra.Command{Use: "x", RunE: func(*cobra.Command, []string) error { return nil }}
	BindFlags(cmd, &o, "8000")
	require.NoError(t, cmd.ParseFlags([]string{"--secrets", "file", "--notion-transport", "client", "--dev"}))

	assert.Equal(t, "8000", o.Port)
	assert.Equal(t, SourceFile, o.SecretsSource)
	assert.Equal(t, "secrets.yaml", o.SecretsFile)
	assert.Equal(t, TransportClient, o.NotionTransport)
	assert.True(t, o.Dev)
}

func TestNewPublisher(t *testing.T) {
	cfg := &config.Config{NotionAPIKey: "k", NotionDatabaseID: "db"}

	p, err := NewPublisher("", cfg)
	require.NoError(t, err)
	assert.IsType(t, &notion.HTTPPublisher{}, p)

	p, err = NewPublisher(TransportClient, cfg)
	require.NoError(t, err)
	assert.IsType(t, &notion.ClientPublisher{}, p)

	_, err = NewPublisher("grpc", cfg)
	assert.Error(t, err)
}

func TestBuild_ConfigErrors(t *testing.T) {
	ctx := context.Background()

	_, err := Build(ctx, Options{SecretsSource: "vault"})
	assert.ErrorContains(t, err, "unknown secrets source")

	_, err = Build(ctx, Options{SecretsSource: SourceFile, SecretsFile: filepath.Join(t.TempDir(), "none.yaml")})
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "secrets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("GEMINI_API_KEY: g\n"), 0o600))
	_, err = Build(ctx, Options{SecretsSource: SourceFile, SecretsFile: path})
	assert.ErrorIs(t, err, config.ErrMissingSecret)

	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRES_PASSWORD", "")
	t.Setenv("PGHOST", "")
	_, err = Build(ctx, Options{SecretsSource: SourceDB})
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestBuild_UnknownTransport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("GEMINI_API_KEY: g\nNOTION_API_KEY: n\nNOTION_DATABASE_ID: d\n"), 0o600))

	_, err := Build(context.Background(), Options{SecretsSource: SourceFile, SecretsFile: path, NotionTransport: "smtp"})
	assert.ErrorContains(t, err, "unknown notion transport")
}
