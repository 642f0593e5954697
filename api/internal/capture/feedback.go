package capture

import "fmt"

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// User-facing messages.
const (
	MsgNoInput       = "Please enter some text or upload/capture an image before processing."
	MsgPublished     = "Successfully updated Notion!"
	MsgPublishFailed = "Failed to update Notion. Please check the error messages above."
	MsgBusy          = "Another submission is still processing. Please wait for it to finish."
	MsgBothImages    = "Both an uploaded and a captured image were provided; only the captured image was sent for processing."
	msgProcessErrFmt = "An error occurred: %v"
	msgPublishErrFmt = "Failed to update Notion. Error: %v"
)

type Message struct {
	Level Level
	Text  string
}

// Preview is an image echoed back to the user.
type Preview struct {
	Caption string
	MIME    string
	Data    []byte
}

// Feedback is everything a front end shows after one action.
type Feedback struct {
	RequestID string
	Messages  []Message
	Previews  []Preview

	// Processed is the model output, empty when processing did not run or failed.
	Processed string
	Published bool

	// Err is the error that ended the action, if any.
	Err error
}

func (f *Feedback) add(level Level, format string, args ...any) {
	text := format
	if len(args) > 0 {
		text = fmt.Sprintf(format, args...)
	}
	f.Messages = append(f.Messages, Message{Level: level, Text: text})
}

func (f Feedback) Has(level Level) bool {
	for _, m := range f.Messages {
		if m.Level == level {
			return true
		}
	}
	return false
}

// Reject builds the feedback for an action a front end refused before
// submitting it.
func Reject(level Level, text string, err error) Feedback {
	fb := Feedback{Err: err}
	fb.add(level, "%s", text)
	return fb
}
