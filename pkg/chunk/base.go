// Package chunk implements the chunk format and chunk-writer subsystem: the
// on-wire layout of a chunk, its two run-length encoders, the
// serialize/deserialize path for heterogeneous samples, sample admission,
// tiling of oversize samples, and in-place sample update.
//
// The object store, the higher-level dataset/tensor API, the LRU cache,
// and ML-framework adapters are external collaborators; this package only
// references the interfaces they expose (see pkg/storage and pkg/meta).
package chunk

import (
	"fmt"
	"log/slog"

	"github.com/shashuat/chunkstore/pkg/meta"
)

// CurrentVersion is the chunk format version new chunks are stamped with.
// Chunks tagged with an older version are upgraded by FastForward before
// any mutating operation (section 4.8).
const CurrentVersion = "2.0.0"

// state is the mutable core shared by every chunk variant: the encoders,
// the data block, and the borrowed TensorMeta. Per the "abstract chunk via
// capability set" design note, variants hold a *state and implement the
// public BaseChunk operations as methods that call into free functions
// operating on state -- there is no base-class method dispatch.
type state struct {
	Version string

	Shapes        *ShapeEncoder
	BytePositions *BytePositionsEncoder

	Data  []byte
	Owned bool // false until prepareForWrite materializes a borrowed view

	MinChunkSize int
	MaxChunkSize int

	Meta       *meta.TensorMeta
	Serializer *SampleSerializer
	Registry   Registry

	NumDims int // seeded from TensorMeta.Ndim(); 0 until the tensor's first sample fixes it

	Logger *slog.Logger
}

func newState(minChunkSize, maxChunkSize int, tm *meta.TensorMeta, registry Registry, logger *slog.Logger) *state {
	if registry == nil {
		registry = noopRegistry{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &state{
		Version:       CurrentVersion,
		Shapes:        NewShapeEncoder(),
		BytePositions: NewBytePositionsEncoder(),
		Data:          nil,
		Owned:         true,
		MinChunkSize:  minChunkSize,
		MaxChunkSize:  maxChunkSize,
		Meta:          tm,
		Serializer:    NewSampleSerializer(tm.Dtype, tm.Htype, tm.SampleCompression, registry),
		Registry:      registry,
		NumDims:       tm.Ndim(),
		Logger:        logger,
	}
}

// fromState reconstructs a chunk's shared state from a deserialized wire
// buffer (Sealed: data is a borrowed view, Owned is false).
func fromState(version string, shapes *ShapeEncoder, bytePositions *BytePositionsEncoder, data []byte, minChunkSize, maxChunkSize int, tm *meta.TensorMeta, registry Registry, logger *slog.Logger) *state {
	s := newState(minChunkSize, maxChunkSize, tm, registry, logger)
	s.Version = version
	s.Shapes = shapes
	s.BytePositions = bytePositions
	s.Data = data
	s.Owned = false
	return s
}

// numDataBytes is len(data) -- section 4.5's num_data_bytes.
func (s *state) numDataBytes() int {
	return len(s.Data)
}

// canFitSample applies the admission test of section 4.5 verbatim,
// including its strict inequality (see the Open Question in spec.md
// section 9: a chunk landing exactly at MinChunkSize is rejected, and that
// is preserved here rather than "fixed").
func (s *state) canFitSample(incomingNBytes int) bool {
	return s.numDataBytes()+incomingNBytes < s.MinChunkSize
}

// prepareForWrite is run before every mutating operation: it fast-forwards
// an older-format chunk to CurrentVersion, then materializes a borrowed
// data view into an owned, growable buffer.
func (s *state) prepareForWrite() error {
	if err := FastForward(s); err != nil {
		return err
	}
	if !s.Owned {
		s.Data = append([]byte(nil), s.Data...)
		s.Owned = true
	}
	return nil
}

// registerSampleToHeaders appends one sample's shape and (if applicable)
// byte length to the encoders. nbytes is nil for image-compressed samples
// whose boundaries come from the image container itself (section 3).
func (s *state) registerSampleToHeaders(nbytes *int, shape []int) {
	s.Shapes.RegisterSamples(shape, 1)
	if nbytes != nil {
		s.BytePositions.RegisterSamples(int64(*nbytes), 1)
	}
}

// registerInMetaAndHeaders is the common tail of every successful
// admission: header bookkeeping plus widening the shared TensorMeta.
func (s *state) registerInMetaAndHeaders(nbytes *int, shape []int) {
	s.registerSampleToHeaders(nbytes, shape)
	s.Meta.IncrementLength()
	s.Meta.UpdateShapeInterval(shape)
	if s.NumDims == 0 {
		s.NumDims = len(shape)
	}
}

// checkShapeForUpdate enforces that an in-place update does not change a
// sample's dimensionality.
func (s *state) checkShapeForUpdate(i int64, shape []int) error {
	existing, ok := s.Shapes.Get(i)
	if !ok {
		return fmt.Errorf("chunk: sample index %d out of range", i)
	}
	if len(existing) != len(shape) {
		return &InvalidSampleShapeError{ExpectedNdim: len(existing), GotShape: shape}
	}
	return nil
}

// updateInMetaAndHeaders is the common tail of every successful update.
func (s *state) updateInMetaAndHeaders(i int64, nbytes *int, shape []int) {
	if nbytes != nil {
		s.BytePositions.Set(i, int64(*nbytes))
	}
	s.Shapes.Set(i, shape)
	s.Meta.UpdateShapeInterval(shape)
}

// createBufferWithUpdatedData splices newSampleBytes over sample i's old
// byte range, preallocating the exact final buffer size so the splice
// never triggers quadratic growth (section 5).
func (s *state) createBufferWithUpdatedData(i int64, newSampleBytes []byte) ([]byte, error) {
	oldStart, oldEnd, ok := s.BytePositions.Get(i)
	if !ok {
		return nil, fmt.Errorf("chunk: sample index %d out of range", i)
	}
	left := s.Data[:oldStart]
	right := s.Data[oldEnd:]

	out := make([]byte, len(left)+len(newSampleBytes)+len(right))
	n := copy(out, left)
	n += copy(out[n:], newSampleBytes)
	copy(out[n:], right)
	return out, nil
}

// writeTile appends one tile's bytes, registering the tile's own shape in
// the encoders. It only widens TensorMeta and increments Length on the
// sequence's first tile (section 4.4): later tiles of the same sample
// belong to the same logical sample, not a new one.
func (s *state) writeTile(tileData []byte, tileShape []int, sampleShape []int, isFirstWrite bool) {
	n := len(tileData)
	s.registerSampleToHeaders(&n, tileShape)
	if isFirstWrite {
		s.Meta.IncrementLength()
		s.Meta.UpdateShapeInterval(sampleShape)
		if s.NumDims == 0 {
			s.NumDims = len(sampleShape)
		}
	}
}

// nbytes is section 4.7's infer_chunk_num_bytes, used by a cache to decide
// admission without materializing ToBytes.
func (s *state) nbytes() int {
	return InferChunkNumBytes(s.Version, s.Shapes.Array(), s.BytePositions.Array(), len(s.Data))
}

// numSamples is the number of samples the shape encoder has recorded.
func (s *state) numSamples() int64 {
	return s.Shapes.NumSamples()
}
