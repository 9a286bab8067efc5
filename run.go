package integrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// Runner drives an Integrator from a notification source, strictly
// sequentially: one notification is processed to completion before the
// next is considered. An optional periodic tick injects update-status
// notifications so transient failures are retried without operator
// intervention.
type Runner struct {
	integrator *Integrator
	source     NotificationSource
	interval   time.Duration
	clock      clockz.Clock
	syncMode   bool

	mu      sync.Mutex
	started bool

	// For sync mode: channel to receive notifications
	notifications <-chan Notification
}

// NewRunner creates a Runner delivering notifications from source to the
// given Integrator.
func NewRunner(i *Integrator, source NotificationSource) *Runner {
	return &Runner{
		integrator: i,
		source:     source,
		clock:      clockz.RealClock,
	}
}

// Interval enables the periodic update-status tick with the given period.
// Default: no periodic tick. Must be called before Start().
func (r *Runner) Interval(d time.Duration) *Runner {
	r.interval = d
	return r
}

// Clock sets a custom clock for the periodic tick.
// Use this with clockz.FakeClock for deterministic tests.
// Must be called before Start().
func (r *Runner) Clock(clock clockz.Clock) *Runner {
	r.clock = clock
	return r
}

// SyncMode enables synchronous processing for testing.
// In sync mode, Start only processes the initial notification; use Step()
// and Tick() to drive the Runner deterministically.
// Must be called before Start().
func (r *Runner) SyncMode() *Runner {
	r.syncMode = true
	return r
}

// Start begins processing notifications. It blocks until the first
// notification is processed (success or failure), then continues
// processing asynchronously.
//
// If the initial notification fails (e.g. the configuration is invalid),
// Start returns the error but keeps processing subsequent notifications.
//
// Start can only be called once. Subsequent calls return an error.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return fmt.Errorf("runner already started")
	}
	r.started = true
	r.mu.Unlock()

	capitan.Emit(ctx, RunnerStarted,
		KeyInterval.Field(r.interval),
	)

	notifications, err := r.source.Notifications(ctx)
	if err != nil {
		return fmt.Errorf("failed to start notification source: %w", err)
	}

	// Wait for the first notification and process it synchronously
	var initialErr error
	select {
	case <-ctx.Done():
		return ctx.Err()
	case n, ok := <-notifications:
		if !ok {
			return fmt.Errorf("notification source closed before emitting initial notification")
		}
		initialErr = r.integrator.Handle(ctx, n)
	}

	if r.syncMode {
		// In sync mode, store channel for manual processing
		r.notifications = notifications
		return initialErr
	}

	// Continue processing asynchronously
	go r.run(ctx, notifications)

	return initialErr
}

// Step processes the next pending notification from the source.
// This is only available in sync mode and is used for deterministic
// testing. Returns false if no notification is available or the channel
// is closed.
func (r *Runner) Step(ctx context.Context) bool {
	if !r.syncMode {
		return false
	}

	select {
	case n, ok := <-r.notifications:
		if !ok {
			return false
		}
		_ = r.integrator.Handle(ctx, n) //nolint:errcheck // Errors surfaced via Integrator status
		return true
	default:
		return false
	}
}

// Tick injects one update-status notification, as the periodic timer
// would. This is only available in sync mode.
func (r *Runner) Tick(ctx context.Context) error {
	if !r.syncMode {
		return fmt.Errorf("tick requires sync mode")
	}
	return r.integrator.Handle(ctx, UpdateStatus())
}

// run processes notifications until the context is canceled or the
// source closes, injecting periodic update-status notifications when an
// interval is configured.
func (r *Runner) run(ctx context.Context, notifications <-chan Notification) {
	defer func() {
		capitan.Emit(ctx, RunnerStopped,
			KeyStatus.Field(r.integrator.Status().String()),
		)
	}()

	var timer clockz.Timer
	if r.interval > 0 {
		timer = r.clock.NewTimer(r.interval)
		defer timer.Stop()
	}

	for {
		// Get timer channel or nil if no periodic tick
		var timerC <-chan time.Time
		if timer != nil {
			timerC = timer.C()
		}

		select {
		case <-ctx.Done():
			return

		case n, ok := <-notifications:
			if !ok {
				return
			}
			_ = r.integrator.Handle(ctx, n) //nolint:errcheck // Errors surfaced via Integrator status

		case <-timerC:
			_ = r.integrator.Handle(ctx, UpdateStatus()) //nolint:errcheck // Errors surfaced via Integrator status
			timer.Reset(r.interval)
		}
	}
}
