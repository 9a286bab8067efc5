package integrator

import (
	"context"
	"sync"
)

// ChannelKind identifies the dialect a consumer channel speaks.
type ChannelKind int

const (
	// ChannelModern shares the relay password by secret reference.
	ChannelModern ChannelKind = iota

	// ChannelLegacy embeds the raw relay password in the shared area.
	ChannelLegacy
)

// String returns the string representation of the channel kind.
func (k ChannelKind) String() string {
	switch k {
	case ChannelModern:
		return "modern"
	case ChannelLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// Channel is one consumer channel instance: a per-consumer shared
// key/value area this package writes relay parameters into.
type Channel interface {
	// ID identifies the channel instance in errors and events.
	ID() string

	// Kind reports the dialect the channel speaks.
	Kind() ChannelKind

	// Write replaces the channel's shared area with data. Writes are
	// last-write-wins; implementations must not merge with prior content.
	Write(ctx context.Context, data map[string]string) error
}

// Registry enumerates the currently active channel instances.
type Registry interface {
	Channels() []Channel
}

// ChannelAdder is implemented by registries that accept new channel
// instances at runtime, e.g. when a relation-created notification
// carries one.
type ChannelAdder interface {
	Add(ch Channel)
}

// StaticRegistry is an in-memory Registry. The zero value is usable.
type StaticRegistry struct {
	mu       sync.RWMutex
	channels []Channel
}

// NewStaticRegistry creates a StaticRegistry holding the given channels.
func NewStaticRegistry(channels ...Channel) *StaticRegistry {
	return &StaticRegistry{channels: channels}
}

// Channels returns a snapshot of the registered channels.
func (r *StaticRegistry) Channels() []Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Channel, len(r.channels))
	copy(out, r.channels)
	return out
}

// Add registers a new channel instance.
func (r *StaticRegistry) Add(ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels = append(r.channels, ch)
}

// Ensure StaticRegistry satisfies both interfaces.
var (
	_ Registry     = (*StaticRegistry)(nil)
	_ ChannelAdder = (*StaticRegistry)(nil)
)

// MemoryChannel is an in-memory Channel. It backs tests and embedders
// that consume relay parameters in-process.
type MemoryChannel struct {
	id   string
	kind ChannelKind

	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryChannel creates a MemoryChannel with the given identity and kind.
func NewMemoryChannel(id string, kind ChannelKind) *MemoryChannel {
	return &MemoryChannel{id: id, kind: kind}
}

// ID returns the channel identifier.
func (c *MemoryChannel) ID() string { return c.id }

// Kind returns the channel dialect.
func (c *MemoryChannel) Kind() ChannelKind { return c.kind }

// Write replaces the shared area with a copy of data.
func (c *MemoryChannel) Write(_ context.Context, data map[string]string) error {
	snapshot := make(map[string]string, len(data))
	for k, v := range data {
		snapshot[k] = v
	}
	c.mu.Lock()
	c.data = snapshot
	c.mu.Unlock()
	return nil
}

// Data returns a copy of the shared area, or nil if never written.
func (c *MemoryChannel) Data() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data == nil {
		return nil
	}
	out := make(map[string]string, len(c.data))
	for k, v := range c.data {
		out[k] = v
	}
	return out
}

var _ Channel = (*MemoryChannel)(nil)
