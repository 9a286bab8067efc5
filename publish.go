package integrator

import (
	"context"
	"fmt"
	"strconv"

	"github.com/zoobzio/capitan"
)

// ChannelWriteError reports a failed write to one channel's shared area.
// A failing channel never prevents delivery to its siblings.
type ChannelWriteError struct {
	// ChannelID identifies the channel whose write failed.
	ChannelID string

	// Kind is the dialect of the failing channel.
	Kind ChannelKind

	// Err is the underlying write (or secret store) failure.
	Err error
}

// Error implements the error interface.
func (e *ChannelWriteError) Error() string {
	return fmt.Sprintf("channel %s (%s): %v", e.ChannelID, e.Kind, e.Err)
}

// Unwrap returns the underlying failure.
func (e *ChannelWriteError) Unwrap() error {
	return e.Err
}

// PublishLegacy projects the relay configuration into the legacy channel
// record. The password, when set, is embedded as plain text.
func (c RelayConfig) PublishLegacy() map[string]string {
	record := c.baseRecord()
	if c.Password != "" {
		record["password"] = c.Password
	}
	return record
}

// PublishModern projects the relay configuration into the modern channel
// record. passwordID is the secret reference standing in for the raw
// password; when empty the reference field is omitted entirely.
func (c RelayConfig) PublishModern(passwordID string) map[string]string {
	record := c.baseRecord()
	if passwordID != "" {
		record["password_id"] = passwordID
	}
	return record
}

// baseRecord holds the non-secret fields common to both dialects.
// Optional fields are omitted when unset rather than written empty.
func (c RelayConfig) baseRecord() map[string]string {
	record := map[string]string{
		"host":               c.Host,
		"port":               strconv.Itoa(c.Port),
		"auth_type":          string(c.AuthType),
		"transport_security": string(c.TransportSecurity),
		"skip_ssl_verify":    strconv.FormatBool(c.SkipSSLVerify),
	}
	if c.Domain != "" {
		record["domain"] = c.Domain
	}
	if c.User != "" {
		record["user"] = c.User
	}
	return record
}

// Broadcast writes the relay configuration into every channel's shared
// area, choosing the record projection from each channel's kind.
//
// When a password is set and at least one modern channel is present, the
// password is stored once per broadcast via secrets and the resulting
// reference is shared by every modern channel. A nil secrets store means
// the environment cannot hold secrets: modern channels are then skipped
// entirely so the raw password can never leak through them.
//
// Writes are not transactional: each failure is accumulated as a
// ChannelWriteError and the remaining channels are still written. A
// secret store failure counts as a write failure for every modern channel.
func Broadcast(ctx context.Context, state RelayConfig, channels []Channel, secrets SecretStore) []ChannelWriteError {
	var failures []ChannelWriteError

	var passwordID string
	var secretErr error
	if state.Password != "" && secrets != nil && hasModern(channels) {
		passwordID, secretErr = secrets.Put(ctx, state.Password)
		if secretErr == nil {
			capitan.Emit(ctx, SecretStored,
				KeySecretID.Field(passwordID),
			)
		}
	}

	for _, ch := range channels {
		var record map[string]string
		switch ch.Kind() {
		case ChannelModern:
			if secrets == nil {
				capitan.Emit(ctx, ChannelSkipped,
					KeyChannel.Field(ch.ID()),
					KeyChannelKind.Field(ch.Kind().String()),
				)
				continue
			}
			if secretErr != nil {
				failures = append(failures, ChannelWriteError{
					ChannelID: ch.ID(),
					Kind:      ch.Kind(),
					Err:       fmt.Errorf("secret store: %w", secretErr),
				})
				capitan.Emit(ctx, ChannelWriteFailed,
					KeyChannel.Field(ch.ID()),
					KeyChannelKind.Field(ch.Kind().String()),
					KeyError.Field(secretErr.Error()),
				)
				continue
			}
			record = state.PublishModern(passwordID)
		case ChannelLegacy:
			record = state.PublishLegacy()
		default:
			continue
		}

		if err := ch.Write(ctx, record); err != nil {
			failures = append(failures, ChannelWriteError{
				ChannelID: ch.ID(),
				Kind:      ch.Kind(),
				Err:       err,
			})
			capitan.Emit(ctx, ChannelWriteFailed,
				KeyChannel.Field(ch.ID()),
				KeyChannelKind.Field(ch.Kind().String()),
				KeyError.Field(err.Error()),
			)
		}
	}

	return failures
}

// hasModern reports whether any channel speaks the modern dialect.
func hasModern(channels []Channel) bool {
	for _, ch := range channels {
		if ch.Kind() == ChannelModern {
			return true
		}
	}
	return false
}
