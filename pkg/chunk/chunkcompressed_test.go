package chunk

import (
	"testing"

	"github.com/shashuat/chunkstore/pkg/meta"
)

// TestChunkCompressedChunkByteAppendRoundTrip tests that multiple samples
// appended to a whole-block-compressed chunk all read back correctly, even
// though the stored block is only decompressed lazily.
func TestChunkCompressedChunkByteAppendRoundTrip(t *testing.T) {
	tm := meta.New(meta.DtypeUint8, meta.HtypeGeneric, "", "xorcodec")
	c, err := NewChunkCompressedChunk(1000, 10000, tm, fakeRegistry{}, nil)
	if err != nil {
		t.Fatalf("NewChunkCompressedChunk: %v", err)
	}

	if _, err := c.ExtendIfHasSpace(Numeric{Shape: []int{2}, Values: []float64{1, 2}}); err != nil {
		t.Fatalf("append 0: %v", err)
	}
	if _, err := c.ExtendIfHasSpace(Numeric{Shape: []int{2}, Values: []float64{3, 4}}); err != nil {
		t.Fatalf("append 1: %v", err)
	}

	read0, err := c.ReadSample(0, true, true)
	if err != nil {
		t.Fatalf("ReadSample(0): %v", err)
	}
	for i, v := range []float64{1, 2} {
		if read0.Floats[i] != v {
			t.Errorf("sample 0 value %d: got %v, want %v", i, read0.Floats[i], v)
		}
	}

	read1, err := c.ReadSample(1, true, true)
	if err != nil {
		t.Fatalf("ReadSample(1): %v", err)
	}
	for i, v := range []float64{3, 4} {
		if read1.Floats[i] != v {
			t.Errorf("sample 1 value %d: got %v, want %v", i, read1.Floats[i], v)
		}
	}
}

// TestChunkCompressedChunkToBytesRecompressesOnce tests that ToBytes
// recompresses the decompressed cache after a write and that the resulting
// wire buffer round-trips through FromBuffer.
func TestChunkCompressedChunkToBytesRecompressesOnce(t *testing.T) {
	tm := meta.New(meta.DtypeUint8, meta.HtypeGeneric, "", "xorcodec")
	c, err := NewChunkCompressedChunk(1000, 10000, tm, fakeRegistry{}, nil)
	if err != nil {
		t.Fatalf("NewChunkCompressedChunk: %v", err)
	}
	if _, err := c.ExtendIfHasSpace(Numeric{Shape: []int{3}, Values: []float64{9, 8, 7}}); err != nil {
		t.Fatalf("append: %v", err)
	}

	buf, err := c.ToBytes()
	if err != nil {
		t.Fatalf("ToBytes: %v", err)
	}

	back, err := ChunkCompressedChunkFromBuffer(buf, 1000, 10000, tm.Clone(), fakeRegistry{}, nil)
	if err != nil {
		t.Fatalf("ChunkCompressedChunkFromBuffer: %v", err)
	}
	read, err := back.ReadSample(0, true, true)
	if err != nil {
		t.Fatalf("ReadSample after round-trip: %v", err)
	}
	for i, v := range []float64{9, 8, 7} {
		if read.Floats[i] != v {
			t.Errorf("value %d: got %v, want %v", i, read.Floats[i], v)
		}
	}
}

// TestChunkCompressedChunkImageHoldsOneSample tests that an image-compressed
// chunk admits exactly one sample and signals rotation (not an error) for a
// second one.
func TestChunkCompressedChunkImageHoldsOneSample(t *testing.T) {
	tm := meta.New(meta.DtypeUint8, meta.HtypeImage, "", "rawimg")
	c, err := NewChunkCompressedChunk(1000, 10000, tm, fakeRegistry{}, nil)
	if err != nil {
		t.Fatalf("NewChunkCompressedChunk: %v", err)
	}

	res, err := c.ExtendIfHasSpace(Bytes{Data: []byte{1, 2, 3, 4}})
	if err != nil {
		t.Fatalf("first ExtendIfHasSpace: %v", err)
	}
	if res.Admitted != 1 {
		t.Fatalf("first Admitted: got %d, want 1", res.Admitted)
	}

	res, err = c.ExtendIfHasSpace(Bytes{Data: []byte{5, 6, 7, 8}})
	if err != nil {
		t.Fatalf("second ExtendIfHasSpace: %v", err)
	}
	if res.Admitted != 0 {
		t.Errorf("second Admitted: got %d, want 0 (image chunks hold exactly one sample)", res.Admitted)
	}
	if c.NumSamples() != 1 {
		t.Errorf("NumSamples: got %d, want 1", c.NumSamples())
	}
}

// TestChunkCompressedChunkImageRejectsTiling tests that WriteTile refuses to
// operate on an image-compressed chunk, since tiling is disallowed for that
// variant.
func TestChunkCompressedChunkImageRejectsTiling(t *testing.T) {
	tm := meta.New(meta.DtypeUint8, meta.HtypeImage, "", "rawimg")
	c, err := NewChunkCompressedChunk(1000, 10000, tm, fakeRegistry{}, nil)
	if err != nil {
		t.Fatalf("NewChunkCompressedChunk: %v", err)
	}

	seq, err := NewTileSequence([]byte{1, 2, 3, 4}, []int{4}, 2)
	if err != nil {
		t.Fatalf("NewTileSequence: %v", err)
	}
	if err := c.WriteTile(seq); err == nil {
		t.Error("expected WriteTile to refuse an image-compressed chunk")
	}
}

// TestChunkCompressedChunkUpdateSample tests in-place update on the
// byte-compression branch.
func TestChunkCompressedChunkUpdateSample(t *testing.T) {
	tm := meta.New(meta.DtypeUint8, meta.HtypeGeneric, "", "xorcodec")
	c, err := NewChunkCompressedChunk(1000, 10000, tm, fakeRegistry{}, nil)
	if err != nil {
		t.Fatalf("NewChunkCompressedChunk: %v", err)
	}
	if _, err := c.ExtendIfHasSpace(Numeric{Shape: []int{2}, Values: []float64{1, 2}}); err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := c.UpdateSample(0, []byte{99, 98, 97}, []int{3}); err != nil {
		t.Fatalf("UpdateSample: %v", err)
	}

	read, err := c.ReadSample(0, false, true)
	if err != nil {
		t.Fatalf("ReadSample after update: %v", err)
	}
	want := []byte{99, 98, 97}
	for i, b := range want {
		if read.Bytes[i] != b {
			t.Errorf("byte %d: got %d, want %d", i, read.Bytes[i], b)
		}
	}
}
