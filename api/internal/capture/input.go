package capture

import (
	"fmt"
	"strings"
)

const (
	typedNotesFmt   = "Typed notes: %s\n\n"
	uploadedMarker  = "Processing uploaded image...\n"
	capturedMarker  = "Processing captured image...\n"
	uploadedCaption = "Uploaded Image"
	capturedCaption = "Captured Image"
)

// Input is what a user submitted in one action. Any field may be empty.
type Input struct {
	// Session identifies the submitting client (a browser cookie, a chat).
	Session string

	Text string

	Uploaded     []byte
	UploadedMIME string

	Captured     []byte
	CapturedMIME string
}

func (in Input) Empty() bool {
	return in.Text == "" && len(in.Uploaded) == 0 && len(in.Captured) == 0
}

func (in Input) HasBothImages() bool {
	return len(in.Uploaded) > 0 && len(in.Captured) > 0
}

// Compose builds the prompt text and selects the single image to forward.
// Sources are checked text, upload, capture; each image source appends its
// marker line, and a later image replaces an earlier one.
func Compose(in Input) (content string, image []byte) {
	var b strings.Builder
	if in.Text != "" {
		b.WriteString(fmt.Sprintf(typedNotesFmt, in.Text))
	}
	if len(in.Uploaded) > 0 {
		image = in.Uploaded
		b.WriteString(uploadedMarker)
	}
	if len(in.Captured) > 0 {
		image = in.Captured
		b.WriteString(capturedMarker)
	}
	return b.String(), image
}
