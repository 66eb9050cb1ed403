package activity

import (
	"context"

	"go.uber.org/zap"
)

// Pusher delivers a best-effort device push. Implementations never
// return an error to the caller.
type Pusher interface {
	Push(ctx context.Context, recipientID uint, verb string)
}

// Counter tracks per-account unread notification counts.
type Counter interface {
	Incr(ctx context.Context, accountID uint) error
}

// Streamer forwards an event to live listeners of the recipient.
type Streamer interface {
	Stream(recipientID uint, e Event)
}

// Dispatcher delivers expanded events through the configured sinks.
// Delivery is fire-and-forget: failures are logged and never surfaced
// to the caller, so the primary state change always stands.
type Dispatcher struct {
	notifications NotificationSink
	feed          FeedSink
	push          Pusher
	unread        Counter
	stream        Streamer
	log           *zap.Logger
}

func NewDispatcher(notifications NotificationSink, feed FeedSink, log *zap.Logger) *Dispatcher {
	return &Dispatcher{notifications: notifications, feed: feed, log: log}
}

func (d *Dispatcher) AttachPush(p Pusher)      { d.push = p }
func (d *Dispatcher) AttachCounter(c Counter)  { d.unread = c }
func (d *Dispatcher) AttachStream(s Streamer)  { d.stream = s }

// Dispatch delivers each event in order. Secondary deliveries (unread
// counter, live stream, device push) only happen once the notification
// row is persisted.
func (d *Dispatcher) Dispatch(ctx context.Context, events []Event) {
	for _, e := range events {
		switch e.Channel {
		case ChannelNotification:
			if err := d.notifications.Emit(ctx, e); err != nil {
				d.log.Warn("notification emit failed",
					zap.Uint("recipient", e.RecipientID), zap.Error(err))
				continue
			}
			if d.unread != nil {
				if err := d.unread.Incr(ctx, e.RecipientID); err != nil {
					d.log.Warn("unread counter bump failed",
						zap.Uint("recipient", e.RecipientID), zap.Error(err))
				}
			}
			if d.stream != nil {
				d.stream.Stream(e.RecipientID, e)
			}
			if d.push != nil {
				d.push.Push(ctx, e.RecipientID, e.Verb)
			}
		case ChannelFeed:
			if err := d.feed.Emit(ctx, e); err != nil {
				d.log.Warn("feed emit failed", zap.Error(err))
			}
		}
	}
}
