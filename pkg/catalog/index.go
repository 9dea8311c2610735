// Package catalog gives cmd/chunkstore a realistic write/read path: a
// tensor-name -> chunk-id index and a small LRU in front of it. Neither is
// part of the core chunk subsystem (pkg/chunk never imports this package).
package catalog

import (
	"fmt"
	"sort"
	"sync"

	"github.com/RoaringBitmap/roaring"
)

// Index maps tensor name to the set of chunk ids that belong to it,
// grounded on pkg/index's label-name -> posting-list inverted index:
// same sync.RWMutex-over-map-of-bitmaps shape, repurposed from
// "label value -> series ids" to "tensor name -> chunk ids".
type Index struct {
	mu     sync.RWMutex
	byName map[string]*roaring.Bitmap
}

// NewIndex creates an empty Index.
func NewIndex() *Index {
	return &Index{byName: make(map[string]*roaring.Bitmap)}
}

// Add records that chunkID belongs to tensor name.
func (idx *Index) Add(name string, chunkID uint32) error {
	if name == "" {
		return fmt.Errorf("catalog: tensor name cannot be empty")
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()

	bm, ok := idx.byName[name]
	if !ok {
		bm = roaring.New()
		idx.byName[name] = bm
	}
	bm.Add(chunkID)
	return nil
}

// Remove drops chunkID from tensor name's set, if present.
func (idx *Index) Remove(name string, chunkID uint32) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if bm, ok := idx.byName[name]; ok {
		bm.Remove(chunkID)
	}
}

// ChunkIDs returns every chunk id registered under name, in ascending order.
func (idx *Index) ChunkIDs(name string) []uint32 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	bm, ok := idx.byName[name]
	if !ok {
		return nil
	}
	return bm.ToArray()
}

// TensorNames returns every tensor name currently indexed, sorted.
func (idx *Index) TensorNames() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	names := make([]string, 0, len(idx.byName))
	for name := range idx.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns how many chunk ids are registered under name.
func (idx *Index) Count(name string) uint64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	bm, ok := idx.byName[name]
	if !ok {
		return 0
	}
	return bm.GetCardinality()
}
