package integrator

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ConfigSource supplies the current raw configuration snapshot. The host
// environment produces a fresh snapshot for every notification; snapshots
// are never cached across notifications.
type ConfigSource interface {
	Snapshot(ctx context.Context) (RawConfig, error)
}

// ConfigSourceFunc adapts a function to the ConfigSource interface.
type ConfigSourceFunc func(ctx context.Context) (RawConfig, error)

// Snapshot implements ConfigSource.
func (f ConfigSourceFunc) Snapshot(ctx context.Context) (RawConfig, error) {
	return f(ctx)
}

// StaticSource is a ConfigSource backed by a mutable in-memory snapshot.
// Useful for testing and for hosts that push configuration directly.
type StaticSource struct {
	mu  sync.RWMutex
	raw RawConfig
}

// NewStaticSource creates a StaticSource holding the given snapshot.
func NewStaticSource(raw RawConfig) *StaticSource {
	return &StaticSource{raw: raw}
}

// Snapshot returns a copy of the held snapshot.
func (s *StaticSource) Snapshot(_ context.Context) (RawConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(RawConfig, len(s.raw))
	for k, v := range s.raw {
		out[k] = v
	}
	return out, nil
}

// Set replaces the held snapshot.
func (s *StaticSource) Set(raw RawConfig) {
	s.mu.Lock()
	s.raw = raw
	s.mu.Unlock()
}

var _ ConfigSource = (*StaticSource)(nil)

// FileSource reads the raw configuration from a file and reports writes
// to it as config-changed notifications. The file may be YAML or JSON;
// the format is auto-detected unless a codec is forced.
type FileSource struct {
	path  string
	codec Codec
}

// NewFileSource creates a FileSource for the given file path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path, codec: AutoCodec{}}
}

// Codec forces a specific codec instead of auto-detection.
// Must be called before Snapshot or Notifications.
func (s *FileSource) Codec(codec Codec) *FileSource {
	s.codec = codec
	return s
}

// Snapshot reads and decodes the current file contents.
func (s *FileSource) Snapshot(_ context.Context) (RawConfig, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", s.path, err)
	}
	return DecodeRawConfig(data, s.codec)
}

// Notifications begins watching the file and returns a channel that emits
// a config-changed notification whenever the file is written. One
// notification is emitted immediately so the initial configuration is
// processed without waiting for a change.
func (s *FileSource) Notifications(ctx context.Context) (<-chan Notification, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	if err := watcher.Add(s.path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch file %s: %w", s.path, err)
	}

	out := make(chan Notification)

	go func() {
		defer close(out)
		defer watcher.Close()

		// Emit the initial notification
		select {
		case out <- ConfigChanged():
		case <-ctx.Done():
			return
		}

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				// Only emit on write or create events
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}

				select {
				case out <- ConfigChanged():
				case <-ctx.Done():
					return
				}

			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Continue watching despite errors
			}
		}
	}()

	return out, nil
}

var (
	_ ConfigSource       = (*FileSource)(nil)
	_ NotificationSource = (*FileSource)(nil)
)
