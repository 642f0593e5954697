package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"notes-capture/api/internal/ocr"
)

// DefaultModel is fixed; it is not a runtime setting.
const DefaultModel = "gemini-1.5-pro"

var ErrEmptyResponse = errors.New("gemini: empty response")

type Engine struct {
	Model  string
	client *genai.Client
}

// New configures the Gemini client once; callers Close it at shutdown.
func New(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Engine, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Engine{Model: DefaultModel, client: cl}, nil
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Close() error {
	if e.client == nil {
		return nil
	}
	return e.client.Close()
}

// Process sends the text alone, or the text followed by the PNG-encoded image.
// Errors from the API are returned as is; there is no retry.
func (e *Engine) Process(ctx context.Context, content string, image []byte) (string, error) {
	parts, err := buildParts(content, image)
	if err != nil {
		return "", err
	}
	m := e.client.GenerativeModel(e.Model)
	if m == nil {
		return "", fmt.Errorf("gemini: model is nil")
	}
	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return responseText(resp)
}

func buildParts(content string, image []byte) ([]genai.Part, error) {
	parts := []genai.Part{genai.Text(content)}
	if len(image) == 0 {
		return parts, nil
	}
	png, err := ocr.EncodePNG(image)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return append(parts, genai.ImageData("png", png)), nil
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}
	var (
		b     strings.Builder
		found bool
	)
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
			found = true
		}
	}
	if !found {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}

var _ ocr.Engine = (*Engine)(nil)
