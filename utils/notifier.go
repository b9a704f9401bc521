package utils

import (
	"context"
	"time"

	"github.com/barrosyan/sistema-pronto/config"
)

// Notifier announces bulk data changes to downstream consumers.
type Notifier interface {
	Notify(ctx context.Context, msg config.NotificationMessage) error
}

type pubSubNotifier struct{}

func (pubSubNotifier) Notify(ctx context.Context, msg config.NotificationMessage) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err := config.PublishNotification(ctx, msg)
	return err
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, config.NotificationMessage) error { return nil }

// NewNotifier publishes to Pub/Sub when IMPORT_NOTIFICATIONS is on.
func NewNotifier() Notifier {
	if config.ImportNotificationsEnabled() {
		return pubSubNotifier{}
	}
	return nopNotifier{}
}

// NotifyAsync sends msg in the background and logs failures.
func NotifyAsync(n Notifier, msg config.NotificationMessage) {
	if n == nil {
		return
	}
	go func() {
		if err := n.Notify(context.Background(), msg); err != nil {
			config.LogError(config.GetLogger(), "Utils", "NotifyAsync", "publish notification", msg.Action, err)
		}
	}()
}
