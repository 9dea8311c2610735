package main

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/shashuat/chunkstore/pkg/catalog"
	"github.com/shashuat/chunkstore/pkg/chunk"
	"github.com/shashuat/chunkstore/pkg/compression"
	"github.com/shashuat/chunkstore/pkg/meta"
	"github.com/shashuat/chunkstore/pkg/observability"
	"github.com/shashuat/chunkstore/pkg/storage"
)

// chunkBytesCache fronts repeated chunk loads within one CLI invocation
// (read against several samples of the same chunk, for instance) with a
// small in-process LRU.
var chunkBytesCache = catalog.NewLRU(32)

// loadChunkBytes fetches a chunk's wire bytes, serving from chunkBytesCache
// when possible and recording the hit/miss on metrics.
func loadChunkBytes(p storage.Provider, tensor string, id uint32, metrics *observability.Metrics) ([]byte, error) {
	key := chunkKey(tensor, id)
	if buf, ok := chunkBytesCache.Get(key); ok {
		metrics.RecordCacheHit()
		return buf, nil
	}
	metrics.RecordCacheMiss()
	buf, err := p.Get(key)
	if err != nil {
		return nil, err
	}
	chunkBytesCache.Put(key, buf)
	metrics.SetCacheSize(int64(chunkBytesCache.Len()))
	return buf, nil
}

// Default chunk size budget for the CLI's write path. The core itself has
// no built-in default -- every caller supplies its own, per section 2.
const (
	defaultMinChunkSize = 16 * 1024
	defaultMaxChunkSize = 16 * 1024 * 1024
)

func metaKey(tensor string) string {
	return tensor + "/meta.json"
}

func chunkKey(tensor string, id uint32) string {
	return fmt.Sprintf("%s/chunks/%010d", tensor, id)
}

// listChunkIDs returns every chunk id currently stored for tensor, sorted
// ascending.
func listChunkIDs(p storage.Provider, tensor string) ([]uint32, error) {
	keys, err := p.ListPrefix(tensor + "/chunks/")
	if err != nil {
		return nil, err
	}
	ids := make([]uint32, 0, len(keys))
	for _, k := range keys {
		base := k[strings.LastIndex(k, "/")+1:]
		n, err := strconv.ParseUint(base, 10, 32)
		if err != nil {
			continue
		}
		ids = append(ids, uint32(n))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func loadMeta(p storage.Provider, tensor string) (*meta.TensorMeta, error) {
	data, err := p.Get(metaKey(tensor))
	if err != nil {
		return nil, err
	}
	return meta.FromJSON(data)
}

func saveMeta(p storage.Provider, tensor string, tm *meta.TensorMeta) error {
	data, err := tm.ToJSON()
	if err != nil {
		return err
	}
	return p.Set(metaKey(tensor), data)
}

// openChunk constructs the BaseChunk variant that matches tm's compression
// settings and loads buf into it (frombuffer if buf is non-empty, a fresh
// chunk otherwise), mirroring the chunk_type dispatch the Python engine
// does off of (sample_compression, chunk_compression).
func openChunk(buf []byte, minChunkSize, maxChunkSize int, tm *meta.TensorMeta, registry chunk.Registry, logger *slog.Logger) (chunk.BaseChunk, error) {
	switch {
	case tm.ChunkCompression != "":
		return chunk.ChunkCompressedChunkFromBuffer(buf, minChunkSize, maxChunkSize, tm, registry, logger)
	case tm.SampleCompression != "":
		return chunk.SampleCompressedChunkFromBuffer(buf, minChunkSize, maxChunkSize, tm, registry, logger)
	default:
		return chunk.UncompressedChunkFromBuffer(buf, minChunkSize, maxChunkSize, tm, registry, logger)
	}
}

func newRegistry() chunk.Registry {
	return compression.NewRegistry()
}

func newLogger() *slog.Logger {
	return observability.NewLogger(observability.LogLevelWarn, false)
}
