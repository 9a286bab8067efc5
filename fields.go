package integrator

import "github.com/zoobzio/capitan"

// Field keys for Integrator events.
var (
	// KeyNotification is the kind of the notification being processed.
	KeyNotification = capitan.NewStringKey("notification")

	// KeyStatus is the current operator-visible status.
	KeyStatus = capitan.NewStringKey("status")

	// KeyOldStatus is the previous status before a transition.
	KeyOldStatus = capitan.NewStringKey("old_status")

	// KeyNewStatus is the new status after a transition.
	KeyNewStatus = capitan.NewStringKey("new_status")

	// KeyError is the error message when an operation fails.
	KeyError = capitan.NewStringKey("error")

	// KeyReason is the human-readable reason for a skip or rejection.
	KeyReason = capitan.NewStringKey("reason")

	// KeyChannel is the identifier of the channel being written.
	KeyChannel = capitan.NewStringKey("channel")

	// KeyChannelKind is the dialect of the channel being written.
	KeyChannelKind = capitan.NewStringKey("channel_kind")

	// KeyChannels is the number of channels included in a broadcast.
	KeyChannels = capitan.NewIntKey("channels")

	// KeyFailures is the number of channel writes that failed.
	KeyFailures = capitan.NewIntKey("failures")

	// KeySecretID is the reference identifier of a stored secret.
	KeySecretID = capitan.NewStringKey("secret_id")

	// KeyInterval is the configured periodic update-status interval.
	KeyInterval = capitan.NewDurationKey("interval")
)
