package notion

import (
	"context"
	"errors"
	"strings"

	"github.com/jomei/notionapi"
)

// ClientPublisher creates pages through the notionapi client.
type ClientPublisher struct {
	client     *notionapi.Client
	databaseID notionapi.DatabaseID
}

func NewClientPublisher(apiKey, databaseID string, opts ...notionapi.ClientOption) *ClientPublisher {
	opts = append([]notionapi.ClientOption{notionapi.WithVersion(APIVersion)}, opts...)
	return &ClientPublisher{
		client:     notionapi.NewClient(notionapi.Token(strings.TrimSpace(apiKey)), opts...),
		databaseID: notionapi.DatabaseID(strings.TrimSpace(databaseID)),
	}
}

func (p *ClientPublisher) Publish(ctx context.Context, text string) error {
	_, err := p.client.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: p.databaseID,
		},
		Properties: notionapi.Properties{
			titleProperty: notionapi.TitleProperty{
				Title: []notionapi.RichText{{Text: &notionapi.Text{Content: PageTitle}}},
			},
			contentProperty: notionapi.RichTextProperty{
				RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: Content(text)}}},
			},
		},
	})
	if err == nil {
		return nil
	}
	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) {
		return &PublishError{StatusCode: apiErr.Status, Body: apiErr.Message, Err: err}
	}
	return &PublishError{Err: err}
}

var _ Publisher = (*ClientPublisher)(nil)
