// Package notion creates note pages in a Notion database.
package notion

import (
	"context"
	"fmt"

	"notes-capture/api/internal/util"
)

const (
	// MaxContentChars is Notion's limit for a single rich_text content value.
	MaxContentChars = 2000
	PageTitle       = "New Note"
	APIVersion      = "2022-06-28"
	DefaultBaseURL  = "https://api.notion.com/v1"

	titleProperty   = "Name"
	contentProperty = "Content"
)

// Publisher creates one page per call. Implementations never retry.
type Publisher interface {
	Publish(ctx context.Context, text string) error
}

// PublishError carries whatever the store told us about a failed create.
// StatusCode is 0 when no response was received.
type PublishError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *PublishError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("notion status %d: %s", e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("notion status %d", e.StatusCode)
	case e.Err != nil:
		return "notion: " + e.Err.Error()
	default:
		return "notion: publish failed"
	}
}

func (e *PublishError) Unwrap() error { return e.Err }

// Content returns text cut to the store's rich_text limit.
func Content(text string) string {
	return util.TruncateRunes(text, MaxContentChars)
}

type textContent struct {
	Content string `json:"content"`
}

type richText struct {
	Text textContent `json:"text"`
}

type pageRequest struct {
	Parent struct {
		DatabaseID string `json:"database_id"`
	} `json:"parent"`
	Properties struct {
		Name struct {
			Title []richText `json:"title"`
		} `json:"Name"`
		Content struct {
			RichText []richText `json:"rich_text"`
		} `json:"Content"`
	} `json:"properties"`
}

func newPageRequest(databaseID, text string) pageRequest {
	var req pageRequest
	req.Parent.DatabaseID = databaseID
	req.Properties.Name.Title = []richText{{Text: textContent{Content: PageTitle}}}
	req.Properties.Content.RichText = []richText{{Text: textContent{Content: Content(text)}}}
	return req
}
