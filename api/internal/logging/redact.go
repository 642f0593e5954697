package logging

import (
	"regexp"
	"strings"

	"go.uber.org/zap/zapcore"
)

const RedactedPlaceholder = "[REDACTED]"

var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`),             // Google API keys
	regexp.MustCompile(`\b(?:secret|ntn)_[0-9A-Za-z]{20,}`), // Notion integration tokens
	regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._-]{20,}`),  // Authorization headers
	regexp.MustCompile(`\d{6,12}:[A-Za-z0-9_-]{30,}`),       // Telegram bot tokens
	regexp.MustCompile(`(?i)([?&]key=)[^&\s"]+`),            // API keys in query strings
}

// Redactor scrubs known secret values and secret-looking substrings.
type Redactor struct {
	literals []string
}

func NewRedactor(secrets []string) *Redactor {
	r := &Redactor{}
	for _, s := range secrets {
		// short values would mangle ordinary text
		if len(strings.TrimSpace(s)) >= 8 {
			r.literals = append(r.literals, s)
		}
	}
	return r
}

func (r *Redactor) String(s string) string {
	if s == "" {
		return s
	}
	for _, lit := range r.literals {
		s = strings.ReplaceAll(s, lit, RedactedPlaceholder)
	}
	for _, p := range sensitivePatterns {
		s = p.ReplaceAllString(s, RedactedPlaceholder)
	}
	return s
}

func (r *Redactor) fields(in []zapcore.Field) []zapcore.Field {
	if len(in) == 0 {
		return in
	}
	out := make([]zapcore.Field, len(in))
	for i, f := range in {
		switch f.Type {
		case zapcore.StringType:
			f.String = r.String(f.String)
		case zapcore.ErrorType:
			if err, ok := f.Interface.(error); ok && err != nil {
				f = zapcore.Field{Key: f.Key, Type: zapcore.StringType, String: r.String(err.Error())}
			}
		}
		out[i] = f
	}
	return out
}

type redactCore struct {
	zapcore.Core
	r *Redactor
}

// WrapCore returns a core that redacts messages and string/error fields
// before handing them to core.
func WrapCore(core zapcore.Core, secrets []string) zapcore.Core {
	return &redactCore{Core: core, r: NewRedactor(secrets)}
}

func (c *redactCore) With(fields []zapcore.Field) zapcore.Core {
	return &redactCore{Core: c.Core.With(c.r.fields(fields)), r: c.r}
}

func (c *redactCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *redactCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	ent.Message = c.r.String(ent.Message)
	return c.Core.Write(ent, c.r.fields(fields))
}
