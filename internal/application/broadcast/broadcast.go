// Package broadcast fans a message out to every account that ever touched
// the bot. Each recipient is isolated: one failed send never aborts the
// run, and sends are paced to stay under flood limits.
package broadcast

import (
	"context"
	"time"

	"github.com/campus-hub/campus-content-bot/internal/infrastructure/external/telegram"
	"github.com/campus-hub/campus-content-bot/pkg/logger"
)

// Kind selects the broadcast payload type.
type Kind string

const (
	KindText  Kind = "text"
	KindPhoto Kind = "photo"
	KindVideo Kind = "video"
)

// Content is the message being broadcast. Photo and video carry a stored
// file reference plus an optional caption.
type Content struct {
	Kind    Kind
	Text    string
	FileID  string
	Caption string
}

// Sender is the outbound surface the engine needs. The Telegram client
// satisfies it.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) (*telegram.Message, error)
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string) (*telegram.Message, error)
	SendVideo(ctx context.Context, chatID int64, fileID, caption string) (*telegram.Message, error)
}

// Result counts the outcome of one broadcast run.
type Result struct {
	Sent   int
	Failed int
}

// Engine performs broadcast runs.
type Engine struct {
	sender Sender
	delay  time.Duration
	log    *logger.Logger
}

// NewEngine creates a broadcast engine. delay is the pause between
// consecutive sends.
func NewEngine(sender Sender, delay time.Duration, log *logger.Logger) *Engine {
	return &Engine{sender: sender, delay: delay, log: log}
}

// Send delivers content to every recipient. Failures are counted and
// logged, never propagated. Cancelling the context stops the run early;
// counts cover what was attempted.
func (e *Engine) Send(ctx context.Context, recipients []int64, content Content) Result {
	var res Result

	for i, chatID := range recipients {
		if ctx.Err() != nil {
			break
		}

		if err := e.sendOne(ctx, chatID, content); err != nil {
			res.Failed++
			e.log.Warn("broadcast delivery failed",
				logger.ChatID(chatID),
				logger.Err(err),
				logger.Bool("unreachable", telegram.IsUserUnreachable(err)),
			)
		} else {
			res.Sent++
		}

		if e.delay > 0 && i < len(recipients)-1 {
			select {
			case <-ctx.Done():
			case <-time.After(e.delay):
			}
		}
	}

	e.log.Info("broadcast finished",
		logger.Int("recipients", len(recipients)),
		logger.Int("sent", res.Sent),
		logger.Int("failed", res.Failed),
	)
	return res
}

func (e *Engine) sendOne(ctx context.Context, chatID int64, content Content) error {
	var err error
	switch content.Kind {
	case KindPhoto:
		_, err = e.sender.SendPhoto(ctx, chatID, content.FileID, content.Caption)
	case KindVideo:
		_, err = e.sender.SendVideo(ctx, chatID, content.FileID, content.Caption)
	default:
		_, err = e.sender.SendText(ctx, chatID, content.Text)
	}
	return err
}
