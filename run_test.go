package integrator

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zoobzio/clockz"
)

// countingMetrics counts notifications by kind.
type countingMetrics struct {
	NoOpMetricsProvider
	updates atomic.Int32
}

func (m *countingMetrics) OnNotification(kind NotificationKind) {
	if kind == NotificationUpdateStatus {
		m.updates.Add(1)
	}
}

func TestRunner_StartProcessesInitialNotification(t *testing.T) {
	ctx := context.Background()
	ch := make(chan Notification, 1)
	legacy := NewMemoryChannel("smtp-legacy/0", ChannelLegacy)
	op := New(NewStaticSource(minimalConfig()), NewStaticRegistry(legacy))
	runner := NewRunner(op, NewSyncChannelNotifier(ch)).SyncMode()

	ch <- ConfigChanged()
	if err := runner.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if op.Status() != StatusActive {
		t.Errorf("expected active, got %s", op.Status())
	}
	if legacy.Data() == nil {
		t.Error("expected initial notification to broadcast")
	}
}

func TestRunner_StartReturnsInitialError(t *testing.T) {
	ctx := context.Background()
	ch := make(chan Notification, 1)
	op := New(NewStaticSource(RawConfig{}), NewStaticRegistry())
	runner := NewRunner(op, NewSyncChannelNotifier(ch)).SyncMode()

	ch <- ConfigChanged()
	err := runner.Start(ctx)
	if err == nil {
		t.Fatal("expected initial validation error")
	}
	if op.Status() != StatusBlocked {
		t.Errorf("expected blocked, got %s", op.Status())
	}
}

func TestRunner_StartTwiceFails(t *testing.T) {
	ctx := context.Background()
	ch := make(chan Notification, 2)
	op := New(NewStaticSource(minimalConfig()), NewStaticRegistry())
	runner := NewRunner(op, NewSyncChannelNotifier(ch)).SyncMode()

	ch <- ConfigChanged()
	if err := runner.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := runner.Start(ctx); err == nil {
		t.Fatal("expected second Start to fail")
	}
}

func TestRunner_StepProcessesPending(t *testing.T) {
	ctx := context.Background()
	ch := make(chan Notification, 2)
	op := New(NewStaticSource(minimalConfig()), NewStaticRegistry())
	runner := NewRunner(op, NewSyncChannelNotifier(ch)).SyncMode()

	ch <- ConfigChanged()
	if err := runner.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	newCh := NewMemoryChannel("smtp-legacy/0", ChannelLegacy)
	ch <- RelationCreated(newCh)
	if !runner.Step(ctx) {
		t.Fatal("expected Step to process the pending notification")
	}
	if newCh.Data() == nil {
		t.Error("expected the new channel to be populated")
	}

	if runner.Step(ctx) {
		t.Error("expected no further pending notifications")
	}
}

func TestRunner_TickActsAsRetry(t *testing.T) {
	ctx := context.Background()
	ch := make(chan Notification, 1)
	source := NewStaticSource(RawConfig{})
	op := New(source, NewStaticRegistry())
	runner := NewRunner(op, NewSyncChannelNotifier(ch)).SyncMode()

	ch <- ConfigChanged()
	if err := runner.Start(ctx); err == nil {
		t.Fatal("expected initial validation error")
	}

	source.Set(minimalConfig())
	if err := runner.Tick(ctx); err != nil {
		t.Fatalf("Tick failed: %v", err)
	}
	if op.Status() != StatusActive {
		t.Errorf("expected active after tick, got %s", op.Status())
	}
}

func TestRunner_TickRequiresSyncMode(t *testing.T) {
	op := New(NewStaticSource(minimalConfig()), NewStaticRegistry())
	runner := NewRunner(op, NewSyncChannelNotifier(make(chan Notification)))
	if err := runner.Tick(context.Background()); err == nil {
		t.Fatal("expected Tick to fail outside sync mode")
	}
}

func TestRunner_StepRequiresSyncMode(t *testing.T) {
	op := New(NewStaticSource(minimalConfig()), NewStaticRegistry())
	runner := NewRunner(op, NewSyncChannelNotifier(make(chan Notification)))
	if runner.Step(context.Background()) {
		t.Fatal("expected Step to be unavailable outside sync mode")
	}
}

func TestRunner_PeriodicTick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := clockz.NewFakeClock()
	metrics := &countingMetrics{}
	ch := make(chan Notification, 1)
	op := New(
		NewStaticSource(minimalConfig()),
		NewStaticRegistry(),
		WithMetrics(metrics),
	)
	runner := NewRunner(op, NewChannelNotifier(ch)).
		Interval(time.Minute).
		Clock(clock)

	ch <- ConfigChanged()
	if err := runner.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Advance past the interval until the background loop processes a tick.
	deadline := time.Now().Add(2 * time.Second)
	for metrics.updates.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for periodic update-status")
		}
		clock.Advance(time.Minute)
		clock.BlockUntilReady()
		time.Sleep(5 * time.Millisecond)
	}

	if op.Status() != StatusActive {
		t.Errorf("expected active, got %s", op.Status())
	}
}
