package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/minasenanami/wonderful-editor/internal/middleware"
	"github.com/minasenanami/wonderful-editor/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Notifier publishes article events to Redis and subscribes to them.
// A nil Redis client turns every call into a no-op.
type Notifier struct {
	rdb *redis.Client
	now func() time.Time
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb, now: time.Now}
}

// Publish stamps and sends an event.
func (n *Notifier) Publish(ctx context.Context, ev ArticleEvent) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = n.now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal article event: %w", err)
	}
	if err := n.rdb.Publish(ctx, Channel, payload).Err(); err != nil {
		return err
	}
	observability.FeedEvents.WithLabelValues(string(ev.Type)).Inc()
	return nil
}

// Subscribe listens on Channel until ctx is done and calls onMessage for each
// payload. It returns once the subscription is confirmed.
func (n *Notifier) Subscribe(ctx context.Context, onMessage func(payload string)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, Channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", Channel, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in article event subscriber",
								slog.Any("panic", r),
								slog.String("stack", string(debug.Stack())),
							)
						}
					}()
					onMessage(msg.Payload)
				}()
			}
		}
	}()

	return nil
}
