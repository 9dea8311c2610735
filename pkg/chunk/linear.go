package chunk

import (
	"fmt"

	"github.com/shashuat/chunkstore/pkg/meta"
)

// linearChunk is the shared implementation behind UncompressedChunk and
// SampleCompressedChunk: both lay sample bytes end-to-end in the data
// block and mark boundaries in the byte-positions encoder; they differ
// only in whether those per-sample byte ranges are independently
// compressed, which the serializer and this type already handle via
// state.Serializer/state.Registry and TensorMeta.SampleCompression.
type linearChunk struct {
	s *state
}

func (c *linearChunk) sampleCompression() string {
	return c.s.Meta.SampleCompression
}

func (c *linearChunk) ExtendIfHasSpace(v Value) (AdmitResult, error) {
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

	if len(data) > c.s.MaxChunkSize {
		seq, tileErr := NewTileSequence(data, shape, c.s.MaxChunkSize)
		if tileErr != nil {
			return AdmitResult{}, &ChunkBudgetExceededError{NBytes: len(data), Max: c.s.MaxChunkSize}
		}
		return AdmitResult{Tiles: seq}, nil
	}

	// An empty chunk admits any sample up to MaxChunkSize, even one larger
	// than MinChunkSize; rotating to another fresh chunk could not help.
	if c.s.numSamples() > 0 && !c.s.canFitSample(len(data)) {
		return AdmitResult{Admitted: 0}, nil
	}

	if err := c.s.prepareForWrite(); err != nil {
		return AdmitResult{}, err
	}

	c.s.Data = append(c.s.Data, data...)
	n := len(data)
	c.s.registerInMetaAndHeaders(&n, shape)

	c.s.Logger.Debug("sample admitted", "tensor_dtype", c.s.Meta.Dtype, "nbytes", n, "shape", shape)
	return AdmitResult{Admitted: 1}, nil
}

func (c *linearChunk) WriteTile(seq *TileSequence) error {
	if err := c.s.prepareForWrite(); err != nil {
		return err
	}
	tile, tileShape, isFirstWrite, ok := seq.Next()
	if !ok {
		return fmt.Errorf("chunk: tile sequence exhausted")
	}
	c.s.Data = append(c.s.Data, tile...)
	c.s.writeTile(tile, tileShape, seq.SampleShape, isFirstWrite)
	return nil
}

func (c *linearChunk) rawSampleBytes(i int64) ([]byte, []int, error) {
	start, end, ok := c.s.BytePositions.Get(i)
	if !ok {
		return nil, nil, fmt.Errorf("chunk: sample index %d out of range", i)
	}
	shape, _ := c.s.Shapes.Get(i)
	return c.s.Data[start:end], shape, nil
}

func (c *linearChunk) ReadSample(i int64, cast bool, copyOut bool) (ReadResult, error) {
	raw, shape, err := c.rawSampleBytes(i)
	if err != nil {
		return ReadResult{}, err
	}

	decompressed := raw
	borrowed := !copyOut
	if codec := c.sampleCompression(); codec != "" && c.s.Registry.Type(codec) == CompressionByte {
		decompressed, err = c.s.Registry.Decompress(raw, codec)
		if err != nil {
			return ReadResult{}, &CompressionError{Codec: codec, Cause: err}
		}
		borrowed = false // decompression always allocates fresh bytes
	}

	return decodeSample(decompressed, shape, c.s.Meta, cast, copyOut, borrowed)
}

// decodeSample turns an already-decompressed sample buffer into a tagged
// ReadResult according to the tensor's htype/dtype. borrowed reports
// whether data aliases storage the caller does not own (a fresh
// decompression always counts as unborrowed).
func decodeSample(data []byte, shape []int, tm *meta.TensorMeta, cast, copyOut, borrowed bool) (ReadResult, error) {
	switch tm.Htype {
	case meta.HtypeText:
		return ReadResult{Kind: ReadKindText, Shape: shape, Text: string(data)}, nil
	case meta.HtypeJSON, meta.HtypeList:
		out := data
		if !borrowed {
			out = append([]byte(nil), data...)
		}
		return ReadResult{Kind: ReadKindJSON, Shape: shape, Bytes: out}, nil
	default:
		if cast {
			count := product(shape)
			floats, err := decodeNumeric(data, tm.Dtype, count)
			if err != nil {
				return ReadResult{}, err
			}
			return ReadResult{Kind: ReadKindNumeric, Shape: shape, Floats: floats}, nil
		}
		out := data
		if copyOut {
			out = append([]byte(nil), data...)
		}
		return ReadResult{Kind: ReadKindBytes, Shape: shape, Bytes: out}, nil
	}
}

func (c *linearChunk) UpdateSample(i int64, newBuffer []byte, newShape []int) error {
	if err := c.s.checkShapeForUpdate(i, newShape); err != nil {
		return err
	}
	if err := c.s.prepareForWrite(); err != nil {
		return err
	}

	newData, err := c.s.createBufferWithUpdatedData(i, newBuffer)
	if err != nil {
		return err
	}

	n := len(newBuffer)
	c.s.Data = newData
	c.s.updateInMetaAndHeaders(i, &n, newShape)
	return nil
}

func (c *linearChunk) ToBytes() ([]byte, error) {
	return SerializeChunk(c.s.Version, c.s.Shapes.Array(), c.s.BytePositions.Array(), c.s.Data), nil
}

func (c *linearChunk) NumSamples() int64  { return c.s.numSamples() }
func (c *linearChunk) NumDataBytes() int  { return c.s.numDataBytes() }
func (c *linearChunk) NBytes() int        { return c.s.nbytes() }
func (c *linearChunk) Version() string    { return c.s.Version }

func product(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}
