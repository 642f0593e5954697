// Package capture turns one user action into a transcribed note page.
package capture

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"notes-capture/api/internal/notion"
	"notes-capture/api/internal/util"
)

var (
	ErrNoInput = errors.New("no text or image submitted")
	ErrBusy    = errors.New("submission already in progress")
)

// Processor is the AI side of a submission; ocr.Engine satisfies it.
type Processor interface {
	Process(ctx context.Context, content string, image []byte) (string, error)
}

type State int32

const (
	StateIdle State = iota
	StateProcessing
)

func (s State) String() string {
	if s == StateProcessing {
		return "processing"
	}
	return "idle"
}

// Orchestrator runs Idle -> Processing -> Idle once per Submit. The state
// is tracked per session: a session cannot start a second action while its
// first is processing, other sessions are unaffected. Input without a
// session is a standalone action and is never rejected.
type Orchestrator struct {
	processor Processor
	publisher notion.Publisher
	log       *zap.Logger

	active sync.Map // session -> struct{}
}

func New(p Processor, pub notion.Publisher, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{processor: p, publisher: pub, log: log}
}

// State reports whether session has an action in flight.
func (o *Orchestrator) State(session string) State {
	if _, ok := o.active.Load(session); ok {
		return StateProcessing
	}
	return StateIdle
}

func (o *Orchestrator) enter(session string) bool {
	if session == "" {
		return true
	}
	_, busy := o.active.LoadOrStore(session, struct{}{})
	return !busy
}

func (o *Orchestrator) leave(session string) {
	if session != "" {
		o.active.Delete(session)
	}
}

// Submit processes one action. Every outcome, including failures, is
// reported through the returned Feedback; nothing is retried.
func (o *Orchestrator) Submit(ctx context.Context, in Input) Feedback {
	fb := Feedback{RequestID: uuid.NewString()}
	log := o.log.With(zap.String("request_id", fb.RequestID), zap.String("session", in.Session))

	if !o.enter(in.Session) {
		fb.add(LevelError, MsgBusy)
		fb.Err = ErrBusy
		log.Warn("submission rejected", zap.Error(ErrBusy))
		return fb
	}
	defer o.leave(in.Session)

	if in.Empty() {
		fb.add(LevelWarning, MsgNoInput)
		fb.Err = ErrNoInput
		log.Info("empty submission")
		return fb
	}

	if len(in.Uploaded) > 0 {
		fb.Previews = append(fb.Previews, Preview{Caption: uploadedCaption, MIME: util.PickMIME(in.UploadedMIME, in.Uploaded), Data: in.Uploaded})
	}
	if len(in.Captured) > 0 {
		fb.Previews = append(fb.Previews, Preview{Caption: capturedCaption, MIME: util.PickMIME(in.CapturedMIME, in.Captured), Data: in.Captured})
	}
	// Only one image reaches the model; the captured one wins.
	if in.HasBothImages() {
		fb.add(LevelWarning, MsgBothImages)
		log.Warn("both uploaded and captured images submitted, forwarding captured only")
	}

	content, image := Compose(in)
	log.Info("processing submission",
		zap.Int("text_len", len(in.Text)),
		zap.Int("uploaded_bytes", len(in.Uploaded)),
		zap.Int("captured_bytes", len(in.Captured)),
		zap.Bool("with_image", len(image) > 0))

	start := time.Now()
	processed, err := o.processor.Process(ctx, content, image)
	if err != nil {
		fb.add(LevelError, msgProcessErrFmt, err)
		fb.Err = err
		log.Error("processing failed", zap.Error(err), zap.Duration("took", time.Since(start)))
		return fb
	}
	fb.Processed = processed
	log.Debug("processed", zap.Int("chars", len([]rune(processed))), zap.Duration("took", time.Since(start)))

	start = time.Now()
	if o.publish(ctx, processed, &fb) {
		fb.Published = true
		fb.add(LevelSuccess, MsgPublished)
		log.Info("note published", zap.Duration("took", time.Since(start)))
	} else {
		fb.add(LevelError, MsgPublishFailed)
		log.Error("publish failed", zap.Error(fb.Err), zap.Duration("took", time.Since(start)))
	}
	return fb
}

// publish reports success as a bool; a failure is also recorded on fb.
func (o *Orchestrator) publish(ctx context.Context, text string, fb *Feedback) bool {
	if err := o.publisher.Publish(ctx, text); err != nil {
		fb.add(LevelError, msgPublishErrFmt, err)
		fb.Err = err
		return false
	}
	return true
}
