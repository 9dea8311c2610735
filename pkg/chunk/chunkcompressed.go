package chunk

import (
	"fmt"
	"log/slog"

	"github.com/shashuat/chunkstore/pkg/meta"
)

// ChunkCompressedChunk compresses the whole data block as a single stream
// (byte compression) or as a single image (image compression), instead of
// compressing samples independently. It keeps a transient decompressed
// cache -- decompressed for byte compression holds the logical
// concatenation of raw sample bytes that SampleCompressedChunk would
// otherwise store compressed per-sample. Writes append to that cache and
// mark the compressed form (state.Data) stale; ToBytes recompresses lazily.
//
// Image compression never holds more than one sample (section 3): a second
// ExtendIfHasSpace signals rotation instead of appending, and tiling is
// refused rather than attempted, matching ChunkBudgetExceededError's doc
// comment.
type ChunkCompressedChunk struct {
	s *state

	decompressed []byte
	loaded       bool // whether decompressed reflects state.Data
	stale        bool // whether decompressed has bytes not yet folded into state.Data
}

// NewChunkCompressedChunk creates a Fresh, empty chunk. tm.ChunkCompression
// must name a codec; tm.SampleCompression must be empty (per-sample
// compression is the SampleCompressedChunk variant).
func NewChunkCompressedChunk(minChunkSize, maxChunkSize int, tm *meta.TensorMeta, registry Registry, logger *slog.Logger) (*ChunkCompressedChunk, error) {
	if tm.ChunkCompression == "" {
		return nil, fmt.Errorf("chunk: ChunkCompressedChunk requires a non-empty chunk compression")
	}
	if tm.SampleCompression != "" {
		return nil, fmt.Errorf("chunk: ChunkCompressedChunk requires no sample compression, got %q", tm.SampleCompression)
	}
	return &ChunkCompressedChunk{s: newState(minChunkSize, maxChunkSize, tm, registry, logger), loaded: true}, nil
}

// ChunkCompressedChunkFromBuffer parses a Sealed chunk from a wire buffer.
// The decompressed cache is left unloaded; it materializes lazily on the
// first read or write.
func ChunkCompressedChunkFromBuffer(buf []byte, minChunkSize, maxChunkSize int, tm *meta.TensorMeta, registry Registry, logger *slog.Logger) (*ChunkCompressedChunk, error) {
	if len(buf) == 0 {
		return NewChunkCompressedChunk(minChunkSize, maxChunkSize, tm, registry, logger)
	}
	version, shapes, bpos, data, err := DeserializeChunk(buf)
	if err != nil {
		return nil, err
	}
	s := fromState(version, shapes, bpos, data, minChunkSize, maxChunkSize, tm, registry, logger)
	return &ChunkCompressedChunk{s: s}, nil
}

func (c *ChunkCompressedChunk) isImage() bool {
	return c.s.Registry.Type(c.s.Meta.ChunkCompression) == CompressionImage
}

// ensureDecompressed materializes the decompressed cache from state.Data
// the first time it's needed.
func (c *ChunkCompressedChunk) ensureDecompressed() error {
	if c.loaded {
		return nil
	}
	if len(c.s.Data) == 0 {
		c.decompressed = nil
		c.loaded = true
		return nil
	}
	raw, err := c.s.Registry.Decompress(c.s.Data, c.s.Meta.ChunkCompression)
	if err != nil {
		return &CompressionError{Codec: c.s.Meta.ChunkCompression, Cause: err}
	}
	c.decompressed = raw
	c.loaded = true
	return nil
}

func (c *ChunkCompressedChunk) ExtendIfHasSpace(v Value) (AdmitResult, error) {
	if _, ok := v.(Tiles); ok {
		return AdmitResult{}, fmt.Errorf("chunk: ExtendIfHasSpace called with a Tiles value; call WriteTile against a sequence of chunks instead")
	}

	data, shape, err := c.s.Serializer.Serialize(v)
	if err != nil {
		return AdmitResult{}, err
	}

	if c.s.NumDims != 0 && len(shape) != c.s.NumDims {
		return AdmitResult{}, &InvalidSampleShapeError{ExpectedNdim: c.s.NumDims, GotShape: shape}
	}

	if c.isImage() {
		if c.s.numSamples() >= 1 {
			return AdmitResult{Admitted: 0}, nil
		}
		if len(data) > c.s.MaxChunkSize {
			return AdmitResult{}, &ChunkBudgetExceededError{NBytes: len(data), Max: c.s.MaxChunkSize}
		}
		if err := c.s.prepareForWrite(); err != nil {
			return AdmitResult{}, err
		}
		compressed, cerr := c.s.Registry.Compress(data, c.s.Meta.ChunkCompression)
		if cerr != nil {
			return AdmitResult{}, &CompressionError{Codec: c.s.Meta.ChunkCompression, Cause: cerr}
		}
		c.s.Data = compressed
		c.decompressed = data
		c.loaded = true
		c.stale = false
		c.s.registerSampleToHeaders(nil, shape)
		c.s.Meta.IncrementLength()
		c.s.Meta.UpdateShapeInterval(shape)
		if c.s.NumDims == 0 {
			c.s.NumDims = len(shape)
		}
		return AdmitResult{Admitted: 1}, nil
	}

	if err := c.ensureDecompressed(); err != nil {
		return AdmitResult{}, err
	}

	if len(data) > c.s.MaxChunkSize {
		seq, tileErr := NewTileSequence(data, shape, c.s.MaxChunkSize)
		if tileErr != nil {
			return AdmitResult{}, &ChunkBudgetExceededError{NBytes: len(data), Max: c.s.MaxChunkSize}
		}
		return AdmitResult{Tiles: seq}, nil
	}

	if c.s.numSamples() > 0 && len(c.decompressed)+len(data) >= c.s.MinChunkSize {
		return AdmitResult{Admitted: 0}, nil
	}

	if err := c.s.prepareForWrite(); err != nil {
		return AdmitResult{}, err
	}

	c.decompressed = append(c.decompressed, data...)
	c.stale = true
	n := len(data)
	c.s.registerInMetaAndHeaders(&n, shape)
	return AdmitResult{Admitted: 1}, nil
}

func (c *ChunkCompressedChunk) WriteTile(seq *TileSequence) error {
	if c.isImage() {
		return fmt.Errorf("chunk: tiling is not supported for image chunk compression")
	}
	if err := c.s.prepareForWrite(); err != nil {
		return err
	}
	if err := c.ensureDecompressed(); err != nil {
		return err
	}
	tile, tileShape, isFirstWrite, ok := seq.Next()
	if !ok {
		return fmt.Errorf("chunk: tile sequence exhausted")
	}
	c.decompressed = append(c.decompressed, tile...)
	c.stale = true
	c.s.writeTile(tile, tileShape, seq.SampleShape, isFirstWrite)
	return nil
}

func (c *ChunkCompressedChunk) ReadSample(i int64, cast bool, copyOut bool) (ReadResult, error) {
	if err := c.ensureDecompressed(); err != nil {
		return ReadResult{}, err
	}

	if c.isImage() {
		if i != 0 {
			return ReadResult{}, fmt.Errorf("chunk: sample index %d out of range", i)
		}
		shape, ok := c.s.Shapes.Get(i)
		if !ok {
			return ReadResult{}, fmt.Errorf("chunk: sample index %d out of range", i)
		}
		return decodeSample(c.decompressed, shape, c.s.Meta, cast, copyOut, false)
	}

	start, end, ok := c.s.BytePositions.Get(i)
	if !ok {
		return ReadResult{}, fmt.Errorf("chunk: sample index %d out of range", i)
	}
	shape, _ := c.s.Shapes.Get(i)
	raw := c.decompressed[start:end]
	return decodeSample(raw, shape, c.s.Meta, cast, copyOut, true)
}

func (c *ChunkCompressedChunk) UpdateSample(i int64, newBuffer []byte, newShape []int) error {
	if err := c.s.checkShapeForUpdate(i, newShape); err != nil {
		return err
	}
	if err := c.s.prepareForWrite(); err != nil {
		return err
	}
	if err := c.ensureDecompressed(); err != nil {
		return err
	}

	if c.isImage() {
		if i != 0 {
			return fmt.Errorf("chunk: sample index %d out of range", i)
		}
		compressed, err := c.s.Registry.Compress(newBuffer, c.s.Meta.ChunkCompression)
		if err != nil {
			return &CompressionError{Codec: c.s.Meta.ChunkCompression, Cause: err}
		}
		c.s.Data = compressed
		c.decompressed = newBuffer
		c.stale = false
		c.s.Shapes.Set(i, newShape)
		c.s.Meta.UpdateShapeInterval(newShape)
		return nil
	}

	oldStart, oldEnd, ok := c.s.BytePositions.Get(i)
	if !ok {
		return fmt.Errorf("chunk: sample index %d out of range", i)
	}
	left := c.decompressed[:oldStart]
	right := c.decompressed[oldEnd:]
	out := make([]byte, len(left)+len(newBuffer)+len(right))
	n := copy(out, left)
	n += copy(out[n:], newBuffer)
	copy(out[n:], right)
	c.decompressed = out
	c.stale = true

	nlen := len(newBuffer)
	c.s.updateInMetaAndHeaders(i, &nlen, newShape)
	return nil
}

// ToBytes recompresses the decompressed cache into state.Data when it is
// stale, then serializes the wire format.
func (c *ChunkCompressedChunk) ToBytes() ([]byte, error) {
	if c.stale {
		compressed, err := c.s.Registry.Compress(c.decompressed, c.s.Meta.ChunkCompression)
		if err != nil {
			return nil, &CompressionError{Codec: c.s.Meta.ChunkCompression, Cause: err}
		}
		c.s.Data = compressed
		c.stale = false
	}
	return SerializeChunk(c.s.Version, c.s.Shapes.Array(), c.s.BytePositions.Array(), c.s.Data), nil
}

// Copy round-trips the chunk through ToBytes/frombuffer.
func (c *ChunkCompressedChunk) Copy() (BaseChunk, error) {
	buf, err := c.ToBytes()
	if err != nil {
		return nil, err
	}
	return ChunkCompressedChunkFromBuffer(buf, c.s.MinChunkSize, c.s.MaxChunkSize, c.s.Meta.Clone(), c.s.Registry, c.s.Logger)
}

func (c *ChunkCompressedChunk) NumSamples() int64 { return c.s.numSamples() }

// NumDataBytes reports the logical (decompressed) byte count, materializing
// the decompressed cache on demand; it falls back to the compressed length
// if decompression fails, since this accessor has no error return.
func (c *ChunkCompressedChunk) NumDataBytes() int {
	if err := c.ensureDecompressed(); err != nil {
		return len(c.s.Data)
	}
	return len(c.decompressed)
}

// NBytes approximates section 4.7's infer_chunk_num_bytes against the
// current compressed form; when the decompressed cache is stale this is an
// estimate until the next ToBytes recompresses it.
func (c *ChunkCompressedChunk) NBytes() int { return c.s.nbytes() }
func (c *ChunkCompressedChunk) Version() string { return c.s.Version }
