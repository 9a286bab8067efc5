package integrator

// Status is the operator-visible state of an Integrator.
type Status int32

const (
	// StatusUnset indicates no notification has been processed yet.
	StatusUnset Status = iota

	// StatusMaintenance indicates a configuration change is being applied.
	StatusMaintenance

	// StatusActive indicates the current configuration is valid and has
	// been published to the active channels.
	StatusActive

	// StatusBlocked indicates the current configuration failed validation.
	// The failure reason is surfaced as the status message and nothing is
	// published until the configuration changes.
	StatusBlocked
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusUnset:
		return "unset"
	case StatusMaintenance:
		return "maintenance"
	case StatusActive:
		return "active"
	case StatusBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// StatusSink receives every operator-visible status update. The host
// environment provides one to surface status to the operator; a nil sink
// is valid and the Integrator then only tracks status internally.
type StatusSink interface {
	SetStatus(status Status, message string)
}

// StatusSinkFunc adapts a function to the StatusSink interface.
type StatusSinkFunc func(status Status, message string)

// SetStatus implements StatusSink.
func (f StatusSinkFunc) SetStatus(status Status, message string) {
	f(status, message)
}
