// Package app wires configuration, logging and the capture collaborators
// shared by the web and Telegram binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"notes-capture/api/internal/capture"
	"notes-capture/api/internal/config"
	"notes-capture/api/internal/logging"
	"notes-capture/api/internal/notion"
	"notes-capture/api/internal/ocr/gemini"
	"notes-capture/api/internal/store"
)

const (
	SourceEnv  = "env"
	SourceFile = "file"
	SourceDB   = "db"

	TransportHTTP   = "http"
	TransportClient = "client"
)

type Options struct {
	Port            string
	SecretsSource   string
	EnvFile         string
	SecretsFile     string
	NotionTransport string
	LogFile         string
	Dev             bool
}

// BindFlags registers the shared flags on cmd.
func BindFlags(cmd *cobra.Command, o *Options, defaultPort string) {
	f := cmd.Flags()
	f.StringVar(&o.Port, "port", defaultPort, "HTTP port (PORT env var takes precedence)")
	f.StringVar(&o.SecretsSource, "secrets", SourceEnv, "secrets source: env | file | db")
	f.StringVar(&o.EnvFile, "env-file", ".env", "dotenv file loaded by the env source (optional)")
	f.StringVar(&o.SecretsFile, "secrets-file", "secrets.yaml", "YAML secrets file for the file source")
	f.StringVar(&o.NotionTransport, "notion-transport", TransportHTTP, "Notion transport: http | client")
	f.StringVar(&o.LogFile, "log-file", "", "also write JSON logs to this rotated file")
	f.BoolVar(&o.Dev, "dev", false, "development logging")
}

// Addr resolves the listen address; the platform PORT env var wins.
func (o Options) Addr() string {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = strings.TrimSpace(o.Port)
	}
	if port == "" {
		port = "8080"
	}
	return "0.0.0.0:" + port
}

type App struct {
	Config       *config.Config
	Log          *zap.Logger
	Orchestrator *capture.Orchestrator

	closers []func() error
}

// Build loads secrets once and constructs every long-lived client.
func Build(ctx context.Context, o Options) (*App, error) {
	a := &App{}
	provider, err := a.provider(ctx, o)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(ctx, provider)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Config = cfg

	log, err := logging.New(logging.Options{Development: o.Dev, FilePath: o.LogFile, Secrets: cfg.Secrets()})
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Log = log
	a.closers = append(a.closers, func() error { _ = log.Sync(); return nil })

	pub, err := NewPublisher(o.NotionTransport, cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	eng, err := gemini.New(ctx, cfg.GeminiAPIKey)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.closers = append(a.closers, eng.Close)

	a.Orchestrator = capture.New(eng, pub, log)
	log.Info("app ready",
		zap.String("secrets", provider.Name()),
		zap.String("notion_transport", o.NotionTransport),
		zap.String("engine", eng.Name()),
		zap.String("model", eng.GetModel()))
	return a, nil
}

func (a *App) provider(ctx context.Context, o Options) (config.Provider, error) {
	switch o.SecretsSource {
	case "", SourceEnv:
		return config.NewEnvProvider(o.EnvFile)
	case SourceFile:
		return config.NewFileProvider(o.SecretsFile)
	case SourceDB:
		dsn := store.ResolveDSN()
		if dsn == "" {
			return nil, errors.New("db secrets: set DATABASE_URL or POSTGRES_* env vars")
		}
		db, err := store.Open(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("db secrets (%s): %w", store.SafeDSNSummary(dsn), err)
		}
		a.closers = append(a.closers, db.Close)
		return config.NewDBProvider(store.NewSecretRepo(db)), nil
	default:
		return nil, fmt.Errorf("unknown secrets source %q", o.SecretsSource)
	}
}

// NewPublisher picks the Notion transport.
func NewPublisher(transport string, cfg *config.Config) (notion.Publisher, error) {
	switch transport {
	case "", TransportHTTP:
		return notion.NewHTTPPublisher(cfg.NotionAPIKey, cfg.NotionDatabaseID), nil
	case TransportClient:
		return notion.NewClientPublisher(cfg.NotionAPIKey, cfg.NotionDatabaseID), nil
	default:
		return nil, fmt.Errorf("unknown notion transport %q", transport)
	}
}

// Close releases clients in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
