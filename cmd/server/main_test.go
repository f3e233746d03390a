package main

import (
	"context"
	"testing"

	"github.com/questhub/questhub/internal/content"
	"github.com/questhub/questhub/internal/persist"
	"github.com/questhub/questhub/internal/platform/config"
)

func TestBuildGenerator(t *testing.T) {
	gen := buildGenerator(config.AIConfig{})
	if _, ok := gen.(*content.DemoGenerator); !ok {
		t.Errorf("buildGenerator(no key) = %T, want demo generator", gen)
	}

	gen = buildGenerator(config.AIConfig{GoogleAPIKey: "AIza-test", Model: "gemini-2.5-flash"})
	if _, ok := gen.(*content.FallbackGenerator); !ok {
		t.Errorf("buildGenerator(key) = %T, want fallback-wrapped generator", gen)
	}
}

func TestBuildStorage_MemoryAndFile(t *testing.T) {
	ctx := context.Background()

	store, events, cleanup, err := buildStorage(ctx, config.StorageConfig{Backend: config.BackendMemory})
	if err != nil {
		t.Fatalf("buildStorage(memory) error = %v", err)
	}
	defer cleanup()
	if store == nil || events == nil {
		t.Fatal("memory backend returned nil store or events")
	}

	store, _, cleanup, err = buildStorage(ctx, config.StorageConfig{
		Backend: config.BackendFile,
		FileDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("buildStorage(file) error = %v", err)
	}
	defer cleanup()
	if err := store.Put(ctx, "k", []byte("v")); err != nil {
		t.Errorf("file store Put() error = %v", err)
	}
}

func TestBuildStorage_Unknown(t *testing.T) {
	_, _, _, err := buildStorage(context.Background(), config.StorageConfig{Backend: "sqlite"})
	if err == nil {
		t.Fatal("buildStorage(sqlite) should fail")
	}
}

func TestRestoreOrSeed(t *testing.T) {
	ctx := context.Background()
	adapter := persist.NewAdapter(persist.NewMemoryStore())

	// Empty store seeds from the embedded curriculum.
	data, err := restoreOrSeed(ctx, adapter, false)
	if err != nil {
		t.Fatalf("restoreOrSeed() error = %v", err)
	}
	if len(data.Years) < persist.MinViableYears {
		t.Fatalf("seeded years = %d, want at least %d", len(data.Years), persist.MinViableYears)
	}
	if len(data.Quests) == 0 {
		t.Fatal("seeded state has no quests")
	}

	// The seed was persisted, so a second call restores it.
	restored, err := restoreOrSeed(ctx, adapter, false)
	if err != nil {
		t.Fatalf("restoreOrSeed() second call error = %v", err)
	}
	if len(restored.Quests) != len(data.Quests) {
		t.Errorf("restored quests = %d, want %d", len(restored.Quests), len(data.Quests))
	}
	if restored.Years[0].ID != data.Years[0].ID {
		t.Error("restore produced different ids than the stored seed")
	}

	// Reset ignores the stored blob and reseeds fresh ids.
	reseeded, err := restoreOrSeed(ctx, adapter, true)
	if err != nil {
		t.Fatalf("restoreOrSeed(reset) error = %v", err)
	}
	if reseeded.Years[0].ID == data.Years[0].ID {
		t.Error("reset did not produce a fresh seed")
	}
}

func TestRestoreOrSeed_CorruptBlob(t *testing.T) {
	ctx := context.Background()
	blobs := persist.NewMemoryStore()
	blobs.Put(ctx, persist.DefaultStateKey, []byte("{broken"))
	adapter := persist.NewAdapter(blobs)

	data, err := restoreOrSeed(ctx, adapter, false)
	if err != nil {
		t.Fatalf("restoreOrSeed() error = %v, corrupt blob must reseed", err)
	}
	if len(data.Quests) == 0 {
		t.Fatal("reseed produced no quests")
	}

	// The corrupt blob was replaced by the fresh seed.
	if _, err := adapter.Load(ctx); err != nil {
		t.Errorf("Load() after reseed error = %v", err)
	}
}
