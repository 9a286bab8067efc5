package integrator

import (
	"context"
	"testing"
)

func TestChannelKind_String(t *testing.T) {
	if s := ChannelModern.String(); s != "modern" {
		t.Errorf("expected 'modern', got %q", s)
	}
	if s := ChannelLegacy.String(); s != "legacy" {
		t.Errorf("expected 'legacy', got %q", s)
	}
	if s := ChannelKind(999).String(); s != "unknown" {
		t.Errorf("expected 'unknown', got %q", s)
	}
}

func TestMemoryChannel_WriteReplaces(t *testing.T) {
	ctx := context.Background()
	ch := NewMemoryChannel("smtp/0", ChannelLegacy)

	if err := ch.Write(ctx, map[string]string{"host": "a", "stale": "yes"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := ch.Write(ctx, map[string]string{"host": "b"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data := ch.Data()
	if data["host"] != "b" {
		t.Errorf("expected host b, got %q", data["host"])
	}
	if _, ok := data["stale"]; ok {
		t.Error("expected prior content to be replaced, not merged")
	}
}

func TestMemoryChannel_DataIsCopy(t *testing.T) {
	ctx := context.Background()
	ch := NewMemoryChannel("smtp/0", ChannelModern)

	in := map[string]string{"host": "a"}
	if err := ch.Write(ctx, in); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	in["host"] = "mutated"

	out := ch.Data()
	if out["host"] != "a" {
		t.Errorf("expected write to snapshot its input, got %q", out["host"])
	}

	out["host"] = "mutated"
	if ch.Data()["host"] != "a" {
		t.Error("expected Data to return a copy")
	}
}

func TestMemoryChannel_UnwrittenDataNil(t *testing.T) {
	ch := NewMemoryChannel("smtp/0", ChannelModern)
	if ch.Data() != nil {
		t.Error("expected nil data before first write")
	}
}

func TestStaticRegistry_Add(t *testing.T) {
	reg := NewStaticRegistry(NewMemoryChannel("smtp/0", ChannelModern))
	reg.Add(NewMemoryChannel("smtp-legacy/0", ChannelLegacy))

	channels := reg.Channels()
	if len(channels) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(channels))
	}
	if channels[1].Kind() != ChannelLegacy {
		t.Errorf("expected second channel legacy, got %s", channels[1].Kind())
	}
}

func TestStaticRegistry_ChannelsSnapshot(t *testing.T) {
	reg := NewStaticRegistry(NewMemoryChannel("smtp/0", ChannelModern))
	channels := reg.Channels()
	reg.Add(NewMemoryChannel("smtp/1", ChannelModern))
	if len(channels) != 1 {
		t.Errorf("expected snapshot unaffected by later Add, got %d channels", len(channels))
	}
}
