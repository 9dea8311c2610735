package storage

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/oklog/ulid/v2"
)

// LocalProvider is an on-disk Provider rooted at a directory, grounded on
// block.go's ULID-named directories and atomic os.Rename writes: a key maps
// to a file under root the way a block ULID maps to its meta.json/chunks/
// directory pair.
type LocalProvider struct {
	root string
}

// NewLocalProvider creates a LocalProvider rooted at dir, creating it if
// it doesn't already exist.
func NewLocalProvider(dir string) (*LocalProvider, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &StorageError{Kind: ErrKindIO, Key: dir, Cause: err}
	}
	return &LocalProvider{root: dir}, nil
}

func (p *LocalProvider) path(key string) string {
	return filepath.Join(p.root, filepath.FromSlash(key))
}

func (p *LocalProvider) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(p.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &StorageError{Kind: ErrKindNotFound, Key: key, Cause: err}
		}
		return nil, &StorageError{Kind: ErrKindIO, Key: key, Cause: err}
	}
	return data, nil
}

// Set writes data under key, staging it in a ULID-named temp file in the
// same directory and os.Rename-ing it into place so a reader never observes
// a partial write, the same atomicity block.go's WriteMeta relies on.
func (p *LocalProvider) Set(key string, data []byte) error {
	dst := p.path(key)
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &StorageError{Kind: ErrKindIO, Key: key, Cause: err}
	}

	id := ulid.MustNew(ulid.Now(), rand.Reader)
	tmp := filepath.Join(dir, "."+id.String()+".tmp")
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return &StorageError{Kind: ErrKindIO, Key: key, Cause: err}
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return &StorageError{Kind: ErrKindIO, Key: key, Cause: err}
	}
	return nil
}

func (p *LocalProvider) Delete(key string) error {
	if err := os.Remove(p.path(key)); err != nil {
		if os.IsNotExist(err) {
			return &StorageError{Kind: ErrKindNotFound, Key: key, Cause: err}
		}
		return &StorageError{Kind: ErrKindIO, Key: key, Cause: err}
	}
	return nil
}

func (p *LocalProvider) ListPrefix(prefix string) ([]string, error) {
	var keys []string
	err := filepath.Walk(p.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(p.root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(filepath.Base(key), ".") {
			return nil
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, &StorageError{Kind: ErrKindIO, Key: prefix, Cause: err}
	}
	sort.Strings(keys)
	return keys, nil
}
