package storage

import (
	"os"
	"testing"
)

// providerSuite runs the same behavioral checks against any Provider
// implementation.
func providerSuite(t *testing.T, p Provider) {
	t.Helper()

	if err := p.Set("tensors/a/chunk-0", []byte("hello")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := p.Set("tensors/a/chunk-1", []byte("world")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := p.Set("tensors/b/chunk-0", []byte("other")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := p.Get("tensors/a/chunk-0")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("Get: got %q, want %q", got, "hello")
	}

	keys, err := p.ListPrefix("tensors/a/")
	if err != nil {
		t.Fatalf("ListPrefix: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("ListPrefix: got %d keys, want 2: %v", len(keys), keys)
	}

	if err := p.Delete("tensors/a/chunk-0"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := p.Get("tensors/a/chunk-0"); !IsNotFound(err) {
		t.Errorf("Get after Delete: expected not-found, got %v", err)
	}
}

// TestMemoryProviderBehavior tests MemoryProvider against the shared
// Provider contract.
func TestMemoryProviderBehavior(t *testing.T) {
	providerSuite(t, NewMemoryProvider())
}

// TestLocalProviderBehavior tests LocalProvider against the shared
// Provider contract, rooted at a fresh temp directory.
func TestLocalProviderBehavior(t *testing.T) {
	dir, err := os.MkdirTemp("", "chunkstore-local-*")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	defer os.RemoveAll(dir)

	p, err := NewLocalProvider(dir)
	if err != nil {
		t.Fatalf("NewLocalProvider: %v", err)
	}
	providerSuite(t, p)
}

// TestLocalProviderSetIsAtomic tests that Set leaves no temp file behind
// once it completes.
func TestLocalProviderSetIsAtomic(t *testing.T) {
	dir, err := os.MkdirTemp("", "chunkstore-local-*")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	defer os.RemoveAll(dir)

	p, err := NewLocalProvider(dir)
	if err != nil {
		t.Fatalf("NewLocalProvider: %v", err)
	}
	if err := p.Set("chunk-0", []byte("data")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "chunk-0" {
		t.Errorf("directory contents: got %v, want exactly [chunk-0]", entries)
	}
}
