// Package integrator centralizes SMTP relay connection parameters and
// republishes them to dependent consumers.
//
// The core type is Integrator, which reacts to discrete lifecycle
// notifications from the host environment, rebuilds a validated
// RelayConfig from the current raw configuration snapshot, and writes it
// into every active consumer channel's shared area.
//
// # Processing
//
// Every notification follows the same path:
//
//	Snapshot → Build (validate) → Broadcast → Status
//
// Validation failure sets a Blocked status carrying the failure reason
// and skips the broadcast entirely; an invalid configuration is never
// partially published. Per-channel write failures are isolated: sibling
// channels still receive their update and the status remains Active with
// a warning annotation.
//
// # Channels
//
// Two channel dialects exist. Modern channels receive a secret reference
// (password_id) instead of the relay password; the password itself is
// stored once per broadcast in the configured SecretStore. Legacy
// channels receive the raw password embedded in the shared area. When no
// SecretStore is configured, modern channels are skipped entirely.
//
// # Status
//
// Operator-visible status is one of four states:
//
//   - Unset: no notification processed yet
//   - Maintenance: a configuration change is being applied
//   - Active: valid configuration published
//   - Blocked: configuration failed validation; reason in the message
//
// # Example
//
//	registry := integrator.NewStaticRegistry(
//	    integrator.NewMemoryChannel("smtp/0", integrator.ChannelModern),
//	)
//
//	op := integrator.New(
//	    integrator.NewFileSource("/etc/relay/config.yaml"),
//	    registry,
//	    integrator.WithSecretStore(integrator.NewMemorySecretStore()),
//	)
//
//	if err := op.Handle(ctx, integrator.ConfigChanged()); err != nil {
//	    log.Printf("relay configuration rejected: %v", err)
//	}
package integrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// Integrator holds the relay connection parameters for one deployment and
// republishes them over the active consumer channels on every lifecycle
// notification. Exactly one notification is processed at a time.
type Integrator struct {
	source    ConfigSource
	registry  Registry
	secrets   SecretStore
	sink      StatusSink
	isLeader  func() bool
	metrics   MetricsProvider
	clock     clockz.Clock
	buildOpts []BuildOption

	status    atomic.Int32
	message   atomic.Pointer[string]
	current   atomic.Pointer[RelayConfig]
	lastError atomic.Pointer[error]
	faults    *faultRing

	// mu serializes notification handling.
	mu       sync.Mutex
	handlers map[NotificationKind]func(ctx context.Context, n Notification) error
}

// config holds configuration options for an Integrator.
type config struct {
	secrets      SecretStore
	sink         StatusSink
	isLeader     func() bool
	metrics      MetricsProvider
	clock        clockz.Clock
	faultHistory int
	buildOpts    []BuildOption
}

// Option configures an Integrator.
type Option func(*config)

// WithSecretStore sets the secret store used by modern channels. Without
// one, modern channels receive no data at all.
func WithSecretStore(s SecretStore) Option {
	return func(c *config) {
		c.secrets = s
	}
}

// WithStatusSink sets the sink receiving every operator-visible status
// update.
func WithStatusSink(sink StatusSink) Option {
	return func(c *config) {
		c.sink = sink
	}
}

// WithLeaderCheck sets the leadership check consulted before writing
// channel data. Non-leader units compute status but write nothing.
// Default: always leader.
func WithLeaderCheck(fn func() bool) Option {
	return func(c *config) {
		c.isLeader = fn
	}
}

// WithMetrics sets a metrics provider for observability integration.
func WithMetrics(provider MetricsProvider) Option {
	return func(c *config) {
		c.metrics = provider
	}
}

// WithClock sets a custom clock for time operations.
// Use this with clockz.FakeClock for deterministic tests.
func WithClock(clock clockz.Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithFaultHistory retains up to n recent faults for inspection via
// FaultHistory(). Use 0 (default) to only retain the most recent error
// via LastError().
func WithFaultHistory(n int) Option {
	return func(c *config) {
		c.faultHistory = n
	}
}

// WithExtraCapture captures unrecognized configuration options into
// RelayConfig.Extra instead of dropping them.
func WithExtraCapture() Option {
	return func(c *config) {
		c.buildOpts = append(c.buildOpts, WithExtraFields())
	}
}

// New creates an Integrator reading raw configuration from source and
// publishing to the channels enumerated by registry.
func New(source ConfigSource, registry Registry, opts ...Option) *Integrator {
	cfg := &config{
		isLeader: func() bool { return true },
		clock:    clockz.RealClock,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	i := &Integrator{
		source:    source,
		registry:  registry,
		secrets:   cfg.secrets,
		sink:      cfg.sink,
		isLeader:  cfg.isLeader,
		metrics:   cfg.metrics,
		clock:     cfg.clock,
		buildOpts: cfg.buildOpts,
		faults:    newFaultRing(cfg.faultHistory),
	}
	i.status.Store(int32(StatusUnset))
	i.handlers = map[NotificationKind]func(ctx context.Context, n Notification) error{
		NotificationConfigChanged:   i.handleConfigChanged,
		NotificationUpdateStatus:    i.handleUpdateStatus,
		NotificationRelationCreated: i.handleRelationCreated,
	}

	return i
}

// Status returns the current operator-visible status.
func (i *Integrator) Status() Status {
	return Status(i.status.Load())
}

// StatusMessage returns the message accompanying the current status, e.g.
// the validation failure reason while Blocked.
func (i *Integrator) StatusMessage() string {
	ptr := i.message.Load()
	if ptr == nil {
		return ""
	}
	return *ptr
}

// Current returns the current valid relay configuration and true, or the
// zero value and false if no valid configuration has been applied.
func (i *Integrator) Current() (RelayConfig, bool) {
	ptr := i.current.Load()
	if ptr == nil {
		return RelayConfig{}, false
	}
	return *ptr, true
}

// LastError returns the last error encountered, or nil if the last
// notification completed cleanly.
func (i *Integrator) LastError() error {
	ptr := i.lastError.Load()
	if ptr == nil {
		return nil
	}
	return *ptr
}

// FaultHistory returns the recent faults, oldest first.
// Returns nil if fault history is not enabled (see WithFaultHistory).
func (i *Integrator) FaultHistory() []Fault {
	return i.faults.all()
}

// Handle processes one lifecycle notification to completion. Calls are
// serialized; a second notification waits until the first finishes.
//
// Validation failures are returned as a *ConfigError and set a Blocked
// status. Partial broadcast failures are returned joined together while
// the status remains Active.
func (i *Integrator) Handle(ctx context.Context, n Notification) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	capitan.Emit(ctx, NotificationReceived,
		KeyNotification.Field(n.Kind.String()),
	)
	if i.metrics != nil {
		i.metrics.OnNotification(n.Kind)
	}

	handler, ok := i.handlers[n.Kind]
	if !ok {
		return fmt.Errorf("unrecognized notification kind %d", n.Kind)
	}
	return handler(ctx, n)
}

// handleConfigChanged applies a configuration change, surfacing a
// maintenance status while the change is in flight.
func (i *Integrator) handleConfigChanged(ctx context.Context, _ Notification) error {
	i.setStatus(ctx, StatusMaintenance, "configuring relay")
	return i.refresh(ctx)
}

// handleUpdateStatus re-runs the same path as any other notification; the
// periodic check doubles as the retry mechanism for earlier failures.
func (i *Integrator) handleUpdateStatus(ctx context.Context, _ Notification) error {
	return i.refresh(ctx)
}

// handleRelationCreated registers the newly observed channel, when the
// registry accepts additions, then rebroadcasts so the new consumer
// receives the current data.
func (i *Integrator) handleRelationCreated(ctx context.Context, n Notification) error {
	if n.Channel != nil {
		if adder, ok := i.registry.(ChannelAdder); ok {
			adder.Add(n.Channel)
		}
	}
	return i.refresh(ctx)
}

// refresh rebuilds the relay configuration from a fresh snapshot and, on
// success, broadcasts it over the active channels.
func (i *Integrator) refresh(ctx context.Context) error {
	start := i.clock.Now()

	raw, err := i.source.Snapshot(ctx)
	if err != nil {
		err = fmt.Errorf("configuration snapshot: %w", err)
		i.recordError(err, "")
		i.setStatus(ctx, StatusBlocked, "cannot read configuration")
		capitan.Emit(ctx, ConfigRejected,
			KeyError.Field(err.Error()),
		)
		if i.metrics != nil {
			i.metrics.OnBuildFailure(i.clock.Since(start))
		}
		return err
	}

	state, err := BuildRelayConfig(raw, i.buildOpts...)
	if err != nil {
		i.recordError(err, "")
		reason := err.Error()
		var ce *ConfigError
		if errors.As(err, &ce) {
			reason = ce.Reason
		}
		i.setStatus(ctx, StatusBlocked, reason)
		capitan.Emit(ctx, ConfigRejected,
			KeyError.Field(err.Error()),
		)
		if i.metrics != nil {
			i.metrics.OnBuildFailure(i.clock.Since(start))
		}
		return err
	}

	i.current.Store(&state)
	capitan.Emit(ctx, ConfigApplied)

	if !i.isLeader() {
		capitan.Emit(ctx, BroadcastSkipped,
			KeyReason.Field("not leader"),
		)
		i.clearError()
		i.setStatus(ctx, StatusActive, "")
		return nil
	}

	channels := i.registry.Channels()
	failures := Broadcast(ctx, state, channels, i.secrets)
	capitan.Emit(ctx, BroadcastCompleted,
		KeyChannels.Field(len(channels)),
		KeyFailures.Field(len(failures)),
	)
	if i.metrics != nil {
		i.metrics.OnBroadcast(len(channels)-len(failures), len(failures), i.clock.Since(start))
	}

	if len(failures) > 0 {
		errs := make([]error, len(failures))
		for idx := range failures {
			f := failures[idx]
			errs[idx] = &f
			i.faults.push(Fault{Time: i.clock.Now(), Channel: f.ChannelID, Err: f.Err})
		}
		joined := errors.Join(errs...)
		i.setError(joined)
		i.setStatus(ctx, StatusActive, fmt.Sprintf("%d channel write(s) failed", len(failures)))
		return joined
	}

	i.clearError()
	i.setStatus(ctx, StatusActive, "")
	return nil
}

// setStatus updates the operator-visible status, forwards it to the sink,
// and emits a status change event on transitions.
func (i *Integrator) setStatus(ctx context.Context, s Status, message string) {
	old := i.Status()
	i.status.Store(int32(s))
	i.message.Store(&message)
	if i.sink != nil {
		i.sink.SetStatus(s, message)
	}
	if old == s {
		return
	}
	capitan.Emit(ctx, StatusChanged,
		KeyOldStatus.Field(old.String()),
		KeyNewStatus.Field(s.String()),
	)
	if i.metrics != nil {
		i.metrics.OnStatusChange(old, s)
	}
}

// recordError stores an error atomically and adds it to the fault history.
func (i *Integrator) recordError(err error, channel string) {
	i.setError(err)
	i.faults.push(Fault{Time: i.clock.Now(), Channel: channel, Err: err})
}

// setError stores an error atomically.
func (i *Integrator) setError(err error) {
	e := err
	i.lastError.Store(&e)
}

// clearError resets the error state after a clean notification.
func (i *Integrator) clearError() {
	i.lastError.Store(nil)
	i.faults.clear()
}
