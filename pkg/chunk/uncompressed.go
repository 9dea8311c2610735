package chunk

import (
	"fmt"
	"log/slog"

	"github.com/shashuat/chunkstore/pkg/meta"
)

// UncompressedChunk stores the raw concatenation of per-sample bytes, no
// compression at all.
type UncompressedChunk struct {
	linearChunk
}

// NewUncompressedChunk creates a Fresh, empty chunk. tm.SampleCompression
// and tm.ChunkCompression must both be empty.
func NewUncompressedChunk(minChunkSize, maxChunkSize int, tm *meta.TensorMeta, registry Registry, logger *slog.Logger) (*UncompressedChunk, error) {
	if tm.SampleCompression != "" || tm.ChunkCompression != "" {
		return nil, fmt.Errorf("chunk: UncompressedChunk requires no compression, got sample=%q chunk=%q", tm.SampleCompression, tm.ChunkCompression)
	}
	return &UncompressedChunk{linearChunk{s: newState(minChunkSize, maxChunkSize, tm, registry, logger)}}, nil
}

// UncompressedChunkFromBuffer parses a Sealed chunk from a wire buffer
// (frombuffer in section 4.5's lifecycle). The first mutating call
// transitions it to Open via prepareForWrite.
func UncompressedChunkFromBuffer(buf []byte, minChunkSize, maxChunkSize int, tm *meta.TensorMeta, registry Registry, logger *slog.Logger) (*UncompressedChunk, error) {
	if len(buf) == 0 {
		return NewUncompressedChunk(minChunkSize, maxChunkSize, tm, registry, logger)
	}
	version, shapes, bpos, data, err := DeserializeChunk(buf)
	if err != nil {
		return nil, err
	}
	s := fromState(version, shapes, bpos, data, minChunkSize, maxChunkSize, tm, registry, logger)
	return &UncompressedChunk{linearChunk{s: s}}, nil
}

// Copy round-trips the chunk through ToBytes/frombuffer, used as a
// defensive clone.
func (c *UncompressedChunk) Copy() (BaseChunk, error) {
	buf, err := c.ToBytes()
	if err != nil {
		return nil, err
	}
	return UncompressedChunkFromBuffer(buf, c.s.MinChunkSize, c.s.MaxChunkSize, c.s.Meta.Clone(), c.s.Registry, c.s.Logger)
}
