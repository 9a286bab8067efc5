package integrator

import (
	"context"
	"testing"
	"time"
)

func TestNotificationKind_String(t *testing.T) {
	if s := NotificationConfigChanged.String(); s != "config-changed" {
		t.Errorf("expected 'config-changed', got %q", s)
	}
	if s := NotificationUpdateStatus.String(); s != "update-status" {
		t.Errorf("expected 'update-status', got %q", s)
	}
	if s := NotificationRelationCreated.String(); s != "relation-created" {
		t.Errorf("expected 'relation-created', got %q", s)
	}
	if s := NotificationKind(999).String(); s != "unknown" {
		t.Errorf("expected 'unknown', got %q", s)
	}
}

func TestRelationCreated_CarriesChannel(t *testing.T) {
	ch := NewMemoryChannel("smtp/0", ChannelModern)
	n := RelationCreated(ch)
	if n.Kind != NotificationRelationCreated {
		t.Errorf("expected relation-created, got %s", n.Kind)
	}
	if n.Channel != ch {
		t.Error("expected notification to carry the channel")
	}
}

func TestChannelNotifier_Sync(t *testing.T) {
	ch := make(chan Notification, 1)
	notifier := NewSyncChannelNotifier(ch)

	out, err := notifier.Notifications(context.Background())
	if err != nil {
		t.Fatalf("Notifications failed: %v", err)
	}

	ch <- ConfigChanged()
	select {
	case n := <-out:
		if n.Kind != NotificationConfigChanged {
			t.Errorf("expected config-changed, got %s", n.Kind)
		}
	default:
		t.Fatal("expected sync notifier to return the source channel directly")
	}
}

func TestChannelNotifier_Forwards(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := make(chan Notification, 1)
	notifier := NewChannelNotifier(ch)

	out, err := notifier.Notifications(ctx)
	if err != nil {
		t.Fatalf("Notifications failed: %v", err)
	}

	ch <- UpdateStatus()
	select {
	case n := <-out:
		if n.Kind != NotificationUpdateStatus {
			t.Errorf("expected update-status, got %s", n.Kind)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for forwarded notification")
	}
}

func TestChannelNotifier_ClosesOnSourceClose(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := make(chan Notification)
	notifier := NewChannelNotifier(ch)

	out, err := notifier.Notifications(ctx)
	if err != nil {
		t.Fatalf("Notifications failed: %v", err)
	}

	close(ch)
	select {
	case _, ok := <-out:
		if ok {
			t.Fatal("expected closed output channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for output channel to close")
	}
}
