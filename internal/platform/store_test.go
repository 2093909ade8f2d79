package platform

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmylchreest/plexus/pkg/plugin"
)

func newTestStore(t *testing.T, root string, now *time.Time) *Store {
	t.Helper()
	cfg := NewBuilder().
		WithHome(root).
		WithPluginDirectories(filepath.Join(root, "plugins")).
		WithScanInterval(3600).
		Build()
	scanner := NewScanner(cfg, WithBuiltins(coreBuiltin()), WithClock(func() time.Time { return *now }))
	return NewStore(cfg, scanner, nil)
}

func TestStoreLoadScansWithoutCache(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, filepath.Join(root, "plugins", "plexus-api"), plugin.Manifest{
		Name: "api", Type: plugin.TypeCategory, Commands: []string{"add"},
	})
	now := fixedNow
	store := newTestStore(t, root, &now)

	p, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(p.Plugins) != 2 {
		t.Fatalf("expected core and api, got %v", labels(p.Plugins))
	}

	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatalf("cache not written: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("cache mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestStoreLoadUsesFreshCache(t *testing.T) {
	root := t.TempDir()
	now := fixedNow
	store := newTestStore(t, root, &now)

	if _, err := store.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	// A plugin installed after the scan stays invisible until the cache expires.
	writePlugin(t, filepath.Join(root, "plugins", "plexus-late"), plugin.Manifest{
		Name: "late", Type: plugin.TypeUtil, Commands: []string{"run"},
	})

	now = fixedNow.Add(time.Minute)
	p, err := store.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(PluginsWithName(p, "late")) != 0 {
		t.Error("fresh cache should not be rescanned")
	}

	now = fixedNow.Add(2 * time.Hour)
	p, err = store.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(PluginsWithName(p, "late")) != 1 {
		t.Error("expired cache should be rescanned")
	}
}

func TestStoreLoadCorruptCache(t *testing.T) {
	root := t.TempDir()
	now := fixedNow
	store := newTestStore(t, root, &now)

	if err := os.WriteFile(store.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(PluginsWithName(p, plugin.CoreName)) != 1 {
		t.Error("expected a rescanned platform with the core plugin")
	}
}

func TestStoreRescanInPlace(t *testing.T) {
	root := t.TempDir()
	now := fixedNow
	store := newTestStore(t, root, &now)

	p, err := store.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	held := p

	writePlugin(t, filepath.Join(root, "plugins", "plexus-api"), plugin.Manifest{
		Name: "api", Type: plugin.TypeCategory, Commands: []string{"add"},
	})
	if err := store.Rescan(context.Background(), p); err != nil {
		t.Fatalf("Rescan() error = %v", err)
	}
	if len(PluginsWithName(held, "api")) != 1 {
		t.Error("rescan should be visible through existing references")
	}
}

func TestStoreAddRemoveLocation(t *testing.T) {
	root := t.TempDir()
	now := fixedNow
	store := newTestStore(t, root, &now)
	ctx := context.Background()

	p, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}

	dev := writePlugin(t, filepath.Join(root, "dev", "notify"), plugin.Manifest{
		Name: "notify", Type: plugin.TypeUtil, EventHandlers: []plugin.Event{plugin.EventPreInit},
	})

	if err := store.AddLocation(ctx, p, dev); err != nil {
		t.Fatalf("AddLocation() error = %v", err)
	}
	if len(PluginsWithEventHandler(p, plugin.EventPreInit)) != 1 {
		t.Fatalf("expected notify to be registered, got %v", labels(p.Plugins))
	}

	reloaded, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(reloaded.UserAddedLocations) != 1 {
		t.Errorf("user-added location not persisted: %v", reloaded.UserAddedLocations)
	}

	if err := store.RemoveLocation(ctx, p, dev); err != nil {
		t.Fatalf("RemoveLocation() error = %v", err)
	}
	if len(PluginsWithName(p, "notify")) != 0 {
		t.Error("notify should be gone after removal")
	}
	if err := store.RemoveLocation(ctx, p, dev); err == nil {
		t.Error("expected error removing an unknown location")
	}
	if err := store.AddLocation(ctx, p, t.TempDir()); err == nil {
		t.Error("expected error adding a directory without a manifest")
	}
}
