package telegram

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/campus-hub/campus-content-bot/internal/domain/identity"
	"github.com/campus-hub/campus-content-bot/internal/infrastructure/external/telegram"
	"github.com/campus-hub/campus-content-bot/internal/infrastructure/metrics"
	"github.com/campus-hub/campus-content-bot/internal/infrastructure/persistence/file"
	"github.com/campus-hub/campus-content-bot/internal/interface/telegram/session"
	"github.com/campus-hub/campus-content-bot/pkg/logger"
	"github.com/campus-hub/campus-content-bot/pkg/timeutil"
)

// maxPanicReport caps the stack trace forwarded to the owner; Telegram
// rejects messages over 4096 characters.
const maxPanicReport = 1500

// Bot drives the long-polling loop: every private-chat update is tracked
// for broadcast reach and handed to the dispatcher under the sender's
// session lock.
type Bot struct {
	client     *telegram.Client
	dispatcher *Dispatcher
	sessions   *session.Manager
	stores     *file.Stores
	metrics    *metrics.Metrics
	log        *logger.Logger
	ownerID    int64
}

func NewBot(client *telegram.Client, d *Dispatcher, stores *file.Stores, m *metrics.Metrics, ownerID int64, log *logger.Logger) *Bot {
	return &Bot{
		client:     client,
		dispatcher: d,
		sessions:   session.NewManager(),
		stores:     stores,
		metrics:    m,
		log:        log,
		ownerID:    ownerID,
	}
}

// Run blocks on long polling until the context is cancelled. Any pending
// webhook is dropped first; polling and webhooks are mutually exclusive.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.client.DeleteWebhook(ctx, true); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}

	me, err := b.client.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("get me: %w", err)
	}
	b.log.Info("bot online",
		logger.String("username", me.Username),
		logger.Int64("bot_id", me.ID),
	)

	return b.client.StartPolling(ctx, b.handleUpdate)
}

func (b *Bot) handleUpdate(ctx context.Context, update *telegram.Update) error {
	msg := update.Message
	if msg == nil {
		msg = update.EditedMessage
	}
	if !telegram.IsPrivateChat(msg) || msg.From == nil || msg.From.IsBot {
		return nil
	}

	b.track(ctx, msg.From)

	b.sessions.Do(msg.From.ID, func(s *session.Session) {
		defer b.recoverPanic(ctx, msg.Chat.ID)
		b.dispatcher.Handle(ctx, s, msg)
	})

	b.metrics.UpdatesHandled.Inc()
	return nil
}

// track records the sender for broadcast reach, identity lookups and the
// last-active stat. Failures never block handling.
func (b *Bot) track(ctx context.Context, from *telegram.User) {
	if err := b.stores.Seen.Add(from.ID); err != nil {
		b.log.Warn("recording seen user failed", logger.UserID(from.ID), logger.Err(err))
	}
	err := b.stores.Identities.Upsert(ctx, identity.Identity{
		ID:       from.ID,
		Name:     from.FullName(),
		Username: from.Username,
	})
	if err != nil {
		b.log.Warn("recording identity failed", logger.UserID(from.ID), logger.Err(err))
	}
	if err := b.stores.Stats.Touch(ctx, from.ID, timeutil.Now()); err != nil {
		b.log.Warn("recording activity failed", logger.UserID(from.ID), logger.Err(err))
	}
}

// recoverPanic converts a handler panic into a logged failure plus a
// private report to the owner. The user gets no reply for that update.
func (b *Bot) recoverPanic(ctx context.Context, chatID int64) {
	r := recover()
	if r == nil {
		return
	}
	b.metrics.UpdatesFailed.Inc()

	stack := string(debug.Stack())
	b.log.Error("handler panicked",
		logger.ChatID(chatID),
		logger.String("panic", fmt.Sprint(r)),
		logger.String("stack", stack),
	)

	report := fmt.Sprintf("⚠️ خطأ غير متوقع:\n%v\n\n%s", r, stack)
	if len(report) > maxPanicReport {
		report = report[:maxPanicReport]
	}
	if _, err := b.client.SendText(ctx, b.ownerID, report); err != nil {
		b.log.Warn("owner failure report not delivered", logger.Err(err))
	}
}
