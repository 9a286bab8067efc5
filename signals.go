package integrator

import "github.com/zoobzio/capitan"

// Integrator lifecycle signals.
var (
	// RunnerStarted is emitted when a Runner begins processing notifications.
	RunnerStarted = capitan.NewSignal(
		"integrator.runner.started",
		"Runner notification loop started",
	)

	// RunnerStopped is emitted when a Runner stops processing notifications.
	RunnerStopped = capitan.NewSignal(
		"integrator.runner.stopped",
		"Runner notification loop stopped",
	)

	// StatusChanged is emitted when the operator-visible status transitions.
	StatusChanged = capitan.NewSignal(
		"integrator.status.changed",
		"Operator status transition",
	)
)

// Notification processing signals.
var (
	// NotificationReceived is emitted when a lifecycle notification arrives.
	NotificationReceived = capitan.NewSignal(
		"integrator.notification.received",
		"Lifecycle notification received",
	)

	// ConfigRejected is emitted when the configuration snapshot fails validation.
	ConfigRejected = capitan.NewSignal(
		"integrator.config.rejected",
		"Configuration validation failed",
	)

	// ConfigApplied is emitted when a validated configuration becomes current.
	ConfigApplied = capitan.NewSignal(
		"integrator.config.applied",
		"Configuration validated and applied",
	)
)

// Broadcast signals.
var (
	// BroadcastCompleted is emitted after a broadcast over all active channels.
	BroadcastCompleted = capitan.NewSignal(
		"integrator.broadcast.completed",
		"Relay parameters broadcast over active channels",
	)

	// BroadcastSkipped is emitted when a broadcast is withheld, e.g. on a
	// non-leader unit.
	BroadcastSkipped = capitan.NewSignal(
		"integrator.broadcast.skipped",
		"Broadcast withheld",
	)

	// ChannelWriteFailed is emitted when one channel's shared-area write fails.
	ChannelWriteFailed = capitan.NewSignal(
		"integrator.channel.write.failed",
		"Channel shared-area write failed",
	)

	// ChannelSkipped is emitted when a channel is excluded from a broadcast.
	ChannelSkipped = capitan.NewSignal(
		"integrator.channel.skipped",
		"Channel excluded from broadcast",
	)

	// SecretStored is emitted when the relay password is stored as a secret.
	SecretStored = capitan.NewSignal(
		"integrator.secret.stored",
		"Relay password stored in secret store",
	)
)
