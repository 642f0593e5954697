package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvProvider reads process environment variables. Optional dotenv files are
// loaded first and never override variables that are already set.
type EnvProvider struct {
	files []string
}

func NewEnvProvider(files ...string) (*EnvProvider, error) {
	var loaded []string
	for _, f := range files {
		if strings.TrimSpace(f) == "" {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
		loaded = append(loaded, f)
	}
	return &EnvProvider{files: loaded}, nil
}

func (p *EnvProvider) Name() string {
	if len(p.files) == 0 {
		return "env"
	}
	return "env+" + strings.Join(p.files, ",")
}

func (p *EnvProvider) Lookup(_ context.Context, key string) (string, error) {
	return os.Getenv(key), nil
}

// FileProvider serves secrets from a flat YAML document:
//
//	GEMINI_API_KEY: "..."
//	NOTION_API_KEY: "..."
//	NOTION_DATABASE_ID: "..."
type FileProvider struct {
	path    string
	secrets map[string]string
}

func NewFileProvider(path string) (*FileProvider, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read secrets file: %w", err)
	}
	m := map[string]string{}
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse secrets file %s: %w", path, err)
	}
	return &FileProvider{path: path, secrets: m}, nil
}

func (p *FileProvider) Name() string { return "file:" + p.path }

func (p *FileProvider) Lookup(_ context.Context, key string) (string, error) {
	return p.secrets[key], nil
}

// SecretSource is the read side of a secrets table (see store.SecretRepo).
type SecretSource interface {
	Get(ctx context.Context, name string) (string, error)
}

// DBProvider serves secrets from a database table. Missing rows are unset
// secrets, not errors.
type DBProvider struct {
	src SecretSource
}

func NewDBProvider(src SecretSource) *DBProvider { return &DBProvider{src: src} }

func (p *DBProvider) Name() string { return "db" }

func (p *DBProvider) Lookup(ctx context.Context, key string) (string, error) {
	v, err := p.src.Get(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}
