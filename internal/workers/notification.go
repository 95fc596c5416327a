package workers

import (
	"context"

	"github.com/avetrov/go-idm-core/internal/config"
	"github.com/avetrov/go-idm-core/internal/logger"
	"github.com/avetrov/go-idm-core/models"
)

// defaultQueueSize is the dispatch queue capacity when none is configured.
const defaultQueueSize = 64

// NotificationDispatcher performs one awaited dispatch to the external email
// service.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, notification models.Notification) error
}

// NotificationWorker drains a bounded in-memory queue of fire-and-forget
// notifications into the dispatcher. Producers enqueue without blocking;
// the single worker goroutine owns all outbound traffic, so a slow notifier
// delays mail but never a request.
type NotificationWorker struct {
	ctx        context.Context
	queue      chan models.Notification
	dispatcher NotificationDispatcher

	logger *logger.Logger
}

// NewNotificationWorker constructs a worker with a queue sized from
// cfg.QueueSize. The given ctx bounds the worker's lifetime: cancelling it
// stops the drain loop after the in-flight dispatch.
func NewNotificationWorker(ctx context.Context, dispatcher NotificationDispatcher, cfg config.Notifier, log *logger.Logger) *NotificationWorker {
	size := cfg.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}

	return &NotificationWorker{
		ctx:        ctx,
		queue:      make(chan models.Notification, size),
		dispatcher: dispatcher,
		logger:     log,
	}
}

// Enqueue places the notification on the dispatch queue without blocking.
// When the queue is full the notification is dropped with a log line; a
// welcome mail is recoverable through the resend endpoint, losing one is
// preferable to stalling the provisioning workflow.
func (w *NotificationWorker) Enqueue(notification models.Notification) {
	select {
	case w.queue <- notification:
	default:
		w.logger.Warn().
			Str("template", notification.Template).
			Int64("account_id", notification.AccountID).
			Msg("notification queue full, dropping notification")
	}
}

// Run starts the drain loop in its own goroutine and returns immediately.
func (w *NotificationWorker) Run() {
	go w.drain()
}

func (w *NotificationWorker) drain() {
	for {
		select {
		case <-w.ctx.Done():
			w.logger.Info().Msg("notification worker stopped")
			return
		case notification := <-w.queue:
			if err := w.dispatcher.Dispatch(w.ctx, notification); err != nil {
				w.logger.Err(err).
					Str("template", notification.Template).
					Int64("account_id", notification.AccountID).
					Msg("background notification dispatch failed")
			}
		}
	}
}
