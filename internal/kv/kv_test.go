// Package kv tests covering all three store implementations.
package kv

import (
	"os"
	"path/filepath"
	"testing"
)

// storeFactories builds each Store implementation against a temp dir.
func storeFactories(t *testing.T) map[string]Store {
	t.Helper()

	fileStore, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	sqliteStore, err := OpenSQLiteStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { sqliteStore.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fileStore,
		"sqlite": sqliteStore,
	}
}

// TestStore_setGetRemove exercises the Store contract on every backend.
func TestStore_setGetRemove(t *testing.T) {
	for name, store := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			// Missing key reads as absent, not an error
			_, found, err := store.Get("sync.pending_mutations")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if found {
				t.Error("expected missing key to be absent")
			}

			if err := store.Set("sync.pending_mutations", `[{"id":"a"}]`); err != nil {
				t.Fatalf("Set failed: %v", err)
			}

			value, found, err := store.Get("sync.pending_mutations")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if !found {
				t.Fatal("expected key to exist after Set")
			}
			if value != `[{"id":"a"}]` {
				t.Errorf("value = %q, want the stored blob", value)
			}

			// Overwrite replaces
			if err := store.Set("sync.pending_mutations", `[]`); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			value, _, _ = store.Get("sync.pending_mutations")
			if value != `[]` {
				t.Errorf("value after overwrite = %q, want []", value)
			}

			if err := store.Remove("sync.pending_mutations"); err != nil {
				t.Fatalf("Remove failed: %v", err)
			}
			_, found, _ = store.Get("sync.pending_mutations")
			if found {
				t.Error("expected key to be gone after Remove")
			}

			// Removing a missing key is a no-op
			if err := store.Remove("sync.pending_mutations"); err != nil {
				t.Errorf("Remove of missing key failed: %v", err)
			}
		})
	}
}

// TestFileStore_persistsAcrossReopen verifies restart durability.
func TestFileStore_persistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	first, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	if err := first.Set("k", "v"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	second, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore reopen failed: %v", err)
	}

	value, found, err := second.Get("k")
	if err != nil || !found {
		t.Fatalf("Get after reopen = (%v, %v), want value", found, err)
	}
	if value != "v" {
		t.Errorf("value = %q, want v", value)
	}
}

// TestFileStore_noTempLeftovers verifies atomic writes leave no temp files.
func TestFileStore_noTempLeftovers(t *testing.T) {
	dir := t.TempDir()

	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		if err := store.Set("k", "v"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("data dir has %v, want only the committed file", names)
	}
}

// TestFileStore_keyFlattening verifies path-like keys cannot escape the dir.
func TestFileStore_keyFlattening(t *testing.T) {
	dir := t.TempDir()

	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	if err := store.Set("../escape", "v"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "__escape.json")); err != nil {
		t.Errorf("flattened file missing: %v", err)
	}
}

// TestSQLiteStore_persistsAcrossReopen verifies restart durability.
func TestSQLiteStore_persistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	first, err := OpenSQLiteStore(dir)
	if err != nil {
		t.Fatalf("OpenSQLiteStore failed: %v", err)
	}
	if err := first.Set("k", "v"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second, err := OpenSQLiteStore(dir)
	if err != nil {
		t.Fatalf("OpenSQLiteStore reopen failed: %v", err)
	}
	defer second.Close()

	value, found, err := second.Get("k")
	if err != nil || !found {
		t.Fatalf("Get after reopen = (%v, %v), want value", found, err)
	}
	if value != "v" {
		t.Errorf("value = %q, want v", value)
	}
}
