package integrator

import "time"

// MetricsProvider allows integration with metrics systems like Prometheus, StatsD, etc.
// Implement this interface to receive callbacks on key integrator events.
type MetricsProvider interface {
	// OnStatusChange is called when the operator-visible status transitions.
	OnStatusChange(from, to Status)

	// OnNotification is called when a lifecycle notification is accepted
	// for processing.
	OnNotification(kind NotificationKind)

	// OnBuildFailure is called when a configuration snapshot fails
	// validation. Duration is the time spent building.
	OnBuildFailure(duration time.Duration)

	// OnBroadcast is called after each broadcast with the number of
	// channels written, the number of failed writes, and the time taken
	// for the whole notification (build plus broadcast).
	OnBroadcast(written, failed int, duration time.Duration)
}

// NoOpMetricsProvider is a no-op implementation of MetricsProvider.
// Use this as an embedded type to implement only the methods you need.
type NoOpMetricsProvider struct{}

func (NoOpMetricsProvider) OnStatusChange(_, _ Status)            {}
func (NoOpMetricsProvider) OnNotification(_ NotificationKind)     {}
func (NoOpMetricsProvider) OnBuildFailure(_ time.Duration)        {}
func (NoOpMetricsProvider) OnBroadcast(_, _ int, _ time.Duration) {}
