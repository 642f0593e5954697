package ocr

import "context"

// Engine turns composed note content, plus an optional image, into text.
type Engine interface {
	Name() string
	GetModel() string
	// Process sends content and, when image is non-empty, the image as one
	// multi-part prompt and returns the generated text verbatim.
	Process(ctx context.Context, content string, image []byte) (string, error)
}
