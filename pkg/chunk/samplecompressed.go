package chunk

import (
	"fmt"
	"log/slog"

	"github.com/shashuat/chunkstore/pkg/meta"
)

// SampleCompressedChunk independently compresses each sample; the
// byte-positions encoder still marks the boundaries of the *compressed*
// bytes. Reads decompress one sample at a time.
type SampleCompressedChunk struct {
	linearChunk
}

// NewSampleCompressedChunk creates a Fresh, empty chunk. tm.SampleCompression
// must name a byte codec; tm.ChunkCompression must be empty (chunk-wide
// compression is the ChunkCompressedChunk variant).
func NewSampleCompressedChunk(minChunkSize, maxChunkSize int, tm *meta.TensorMeta, registry Registry, logger *slog.Logger) (*SampleCompressedChunk, error) {
	if tm.SampleCompression == "" {
		return nil, fmt.Errorf("chunk: SampleCompressedChunk requires a non-empty sample compression")
	}
	if tm.ChunkCompression != "" {
		return nil, fmt.Errorf("chunk: SampleCompressedChunk requires no chunk compression, got %q", tm.ChunkCompression)
	}
	return &SampleCompressedChunk{linearChunk{s: newState(minChunkSize, maxChunkSize, tm, registry, logger)}}, nil
}

// SampleCompressedChunkFromBuffer parses a Sealed chunk from a wire buffer.
func SampleCompressedChunkFromBuffer(buf []byte, minChunkSize, maxChunkSize int, tm *meta.TensorMeta, registry Registry, logger *slog.Logger) (*SampleCompressedChunk, error) {
	if len(buf) == 0 {
		return NewSampleCompressedChunk(minChunkSize, maxChunkSize, tm, registry, logger)
	}
	version, shapes, bpos, data, err := DeserializeChunk(buf)
	if err != nil {
		return nil, err
	}
	s := fromState(version, shapes, bpos, data, minChunkSize, maxChunkSize, tm, registry, logger)
	return &SampleCompressedChunk{linearChunk{s: s}}, nil
}

// Copy round-trips the chunk through ToBytes/frombuffer.
func (c *SampleCompressedChunk) Copy() (BaseChunk, error) {
	buf, err := c.ToBytes()
	if err != nil {
		return nil, err
	}
	return SampleCompressedChunkFromBuffer(buf, c.s.MinChunkSize, c.s.MaxChunkSize, c.s.Meta.Clone(), c.s.Registry, c.s.Logger)
}
