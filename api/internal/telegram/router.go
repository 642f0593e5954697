package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"notes-capture/api/internal/capture"
	"notes-capture/api/internal/util"
)

const (
	maxMessageChars = 3900

	helpText = "Send your notes as text, a photo, or an image file (jpg, jpeg, png).\n" +
		"A caption on the photo or file is added as typed notes.\n" +
		"Each message becomes one new page in Notion.\nCommands: /health"
	processingText  = "Processing..."
	unsupportedText = "Please send a jpg, jpeg or png image."

	downloadFailedText = "❌ Could not download the attachment, please send it again."
)

var errNotImage = errors.New("document is not a jpeg or png image")

// BotAPI is the part of *tgbotapi.BotAPI the router uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Submitter runs one capture action.
type Submitter interface {
	Submit(ctx context.Context, in capture.Input) capture.Feedback
}

// Router maps each incoming message to one capture action: text or caption
// is the typed note, an image document is the uploaded image and a photo is
// the captured image.
type Router struct {
	Bot       BotAPI
	Submitter Submitter
	Log       *zap.Logger
}

func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	cid := msg.Chat.ID

	if msg.IsCommand() {
		r.HandleCommand(cid, msg.Command())
		return
	}

	in, err := r.inputFromMessage(ctx, msg)
	if errors.Is(err, errNotImage) {
		r.send(cid, unsupportedText)
		return
	}
	if err != nil {
		// the error may carry the file URL, which embeds the bot token
		r.log().Error("fetch attachment", zap.Int64("chat_id", cid), zap.Error(err))
		r.send(cid, downloadFailedText)
		return
	}

	r.send(cid, processingText)
	fb := r.Submitter.Submit(ctx, in)
	r.log().Info("capture handled",
		zap.Int64("chat_id", cid),
		zap.String("request_id", fb.RequestID),
		zap.Bool("published", fb.Published))
	r.SendFeedback(cid, fb)
}

func (r *Router) HandleCommand(cid int64, cmd string) {
	switch cmd {
	case "start", "help":
		r.send(cid, helpText)
	case "health":
		r.send(cid, "✅ OK")
	default:
		r.send(cid, "Unknown command")
	}
}

func (r *Router) inputFromMessage(ctx context.Context, msg *tgbotapi.Message) (capture.Input, error) {
	in := capture.Input{Session: "tg:" + strconv.FormatInt(msg.Chat.ID, 10), Text: msg.Text}
	if in.Text == "" {
		in.Text = msg.Caption
	}

	if doc := msg.Document; doc != nil {
		if !util.IsUploadMIME(doc.MimeType) {
			return in, fmt.Errorf("%w: %s", errNotImage, doc.MimeType)
		}
		b, err := r.fetch(ctx, doc.FileID)
		if err != nil {
			return in, err
		}
		in.Uploaded, in.UploadedMIME = b, doc.MimeType
	}

	if len(msg.Photo) > 0 {
		ph := msg.Photo[len(msg.Photo)-1]
		b, err := r.fetch(ctx, ph.FileID)
		if err != nil {
			return in, err
		}
		in.Captured, in.CapturedMIME = b, util.SniffMimeHTTP(b)
	}
	return in, nil
}

func (r *Router) fetch(ctx context.Context, fileID string) ([]byte, error) {
	url, err := r.Bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	return download(ctx, url, maxDownloadBytes)
}

// SendFeedback mirrors the browser page: processed text first, then the
// status messages in order.
func (r *Router) SendFeedback(cid int64, fb capture.Feedback) {
	if fb.Processed != "" {
		r.send(cid, "📝 Processed content:\n\n"+util.Ellipsize(fb.Processed, maxMessageChars))
	}
	for _, m := range fb.Messages {
		r.send(cid, levelPrefix(m.Level)+m.Text)
	}
}

func levelPrefix(l capture.Level) string {
	switch l {
	case capture.LevelSuccess:
		return "✅ "
	case capture.LevelWarning:
		return "⚠️ "
	case capture.LevelError:
		return "❌ "
	default:
		return ""
	}
}

func (r *Router) send(chatID int64, text string) {
	if _, err := r.Bot.Send(tgbotapi.NewMessage(chatID, strings.TrimSpace(text))); err != nil {
		r.log().Warn("send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (r *Router) log() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}
