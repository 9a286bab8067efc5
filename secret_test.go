package integrator

import (
	"context"
	"strings"
	"testing"
)

func TestMemorySecretStore_PutAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySecretStore()

	id, err := store.Put(ctx, "hunter2")
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if !strings.HasPrefix(id, "secret:") {
		t.Errorf("expected secret: prefix, got %q", id)
	}

	value, ok := store.Get(id)
	if !ok {
		t.Fatal("expected stored secret to resolve")
	}
	if value != "hunter2" {
		t.Errorf("expected hunter2, got %q", value)
	}
}

func TestMemorySecretStore_ReusesReferenceForUnchangedValue(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySecretStore()

	first, err := store.Put(ctx, "hunter2")
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	second, err := store.Put(ctx, "hunter2")
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if first != second {
		t.Errorf("expected reference reuse, got %q then %q", first, second)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 stored secret, got %d", store.Len())
	}
}

func TestMemorySecretStore_DistinctValuesDistinctReferences(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySecretStore()

	first, _ := store.Put(ctx, "hunter2")
	second, _ := store.Put(ctx, "hunter3")
	if first == second {
		t.Errorf("expected distinct references, both %q", first)
	}
	if store.Len() != 2 {
		t.Errorf("expected 2 stored secrets, got %d", store.Len())
	}
}

func TestMemorySecretStore_GetUnknown(t *testing.T) {
	store := NewMemorySecretStore()
	if _, ok := store.Get("secret:nope"); ok {
		t.Error("expected unknown reference to miss")
	}
}
