package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPPublisher calls the pages endpoint directly with a bearer token.
type HTTPPublisher struct {
	BaseURL    string
	APIKey     string
	DatabaseID string
	httpc      *http.Client
}

func NewHTTPPublisher(apiKey, databaseID string) *HTTPPublisher {
	return &HTTPPublisher{
		BaseURL:    DefaultBaseURL,
		APIKey:     strings.TrimSpace(apiKey),
		DatabaseID: strings.TrimSpace(databaseID),
		httpc:      &http.Client{},
	}
}

// Publish succeeds only on HTTP 200.
func (p *HTTPPublisher) Publish(ctx context.Context, text string) error {
	payload, err := json.Marshal(newPageRequest(p.DatabaseID, text))
	if err != nil {
		return &PublishError{Err: err}
	}
	url := strings.TrimRight(p.BaseURL, "/") + "/pages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return &PublishError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", APIVersion)

	resp, err := p.httpc.Do(req)
	if err != nil {
		return &PublishError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return &PublishError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(b)),
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

var _ Publisher = (*HTTPPublisher)(nil)
