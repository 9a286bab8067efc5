package integrator

import "context"

// NotificationKind is the kind of lifecycle notification delivered by the
// host environment.
type NotificationKind int

const (
	// NotificationConfigChanged reports that the raw configuration
	// snapshot may have changed.
	NotificationConfigChanged NotificationKind = iota

	// NotificationUpdateStatus is the periodic health check. It triggers
	// the same revalidate-and-republish path as any other notification.
	NotificationUpdateStatus

	// NotificationRelationCreated reports a newly observed consumer
	// channel. The notification carries the channel instance; its kind
	// distinguishes modern from legacy relations.
	NotificationRelationCreated
)

// String returns the string representation of the notification kind.
func (k NotificationKind) String() string {
	switch k {
	case NotificationConfigChanged:
		return "config-changed"
	case NotificationUpdateStatus:
		return "update-status"
	case NotificationRelationCreated:
		return "relation-created"
	default:
		return "unknown"
	}
}

// Notification is one discrete lifecycle event. Exactly one notification
// is processed at a time, to completion.
type Notification struct {
	// Kind selects the handler.
	Kind NotificationKind

	// Channel is the newly observed channel instance for
	// NotificationRelationCreated, nil otherwise.
	Channel Channel
}

// ConfigChanged builds a configuration-changed notification.
func ConfigChanged() Notification {
	return Notification{Kind: NotificationConfigChanged}
}

// UpdateStatus builds a periodic health check notification.
func UpdateStatus() Notification {
	return Notification{Kind: NotificationUpdateStatus}
}

// RelationCreated builds a notification for a newly observed channel.
func RelationCreated(ch Channel) Notification {
	return Notification{Kind: NotificationRelationCreated, Channel: ch}
}

// NotificationSource delivers lifecycle notifications to a Runner.
type NotificationSource interface {
	// Notifications begins observing the source and returns a channel
	// that emits notifications as they occur. The channel is closed when
	// the context is canceled or an unrecoverable error occurs.
	Notifications(ctx context.Context) (<-chan Notification, error)
}

// ChannelNotifier wraps an existing notification channel as a
// NotificationSource. Useful for testing and custom sources that already
// produce notifications.
type ChannelNotifier struct {
	ch   <-chan Notification
	sync bool
}

// NewChannelNotifier creates a ChannelNotifier that forwards notifications
// from the given channel through an internal goroutine.
func NewChannelNotifier(ch <-chan Notification) *ChannelNotifier {
	return &ChannelNotifier{ch: ch, sync: false}
}

// NewSyncChannelNotifier creates a ChannelNotifier that returns the source
// channel directly without an intermediate goroutine.
// Use with the Runner's sync mode for deterministic testing.
func NewSyncChannelNotifier(ch <-chan Notification) *ChannelNotifier {
	return &ChannelNotifier{ch: ch, sync: true}
}

// Notifications returns a channel that emits values from the wrapped channel.
func (n *ChannelNotifier) Notifications(ctx context.Context) (<-chan Notification, error) {
	if n.sync {
		return n.ch, nil
	}

	out := make(chan Notification)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-n.ch:
				if !ok {
					return
				}
				select {
				case out <- v:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

var _ NotificationSource = (*ChannelNotifier)(nil)
