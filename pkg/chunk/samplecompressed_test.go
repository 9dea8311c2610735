package chunk

import (
	"testing"

	"github.com/shashuat/chunkstore/pkg/meta"
)

// TestSampleCompressedChunkRoundTrip tests that a sample admitted under a
// byte codec decompresses back to its original values.
func TestSampleCompressedChunkRoundTrip(t *testing.T) {
	tm := meta.New(meta.DtypeUint8, meta.HtypeGeneric, "xorcodec", "")
	c, err := NewSampleCompressedChunk(1000, 10000, tm, fakeRegistry{}, nil)
	if err != nil {
		t.Fatalf("NewSampleCompressedChunk: %v", err)
	}

	values := []float64{10, 20, 30}
	res, err := c.ExtendIfHasSpace(Numeric{Shape: []int{3}, Values: values})
	if err != nil {
		t.Fatalf("ExtendIfHasSpace: %v", err)
	}
	if res.Admitted != 1 {
		t.Fatalf("Admitted: got %d, want 1", res.Admitted)
	}

	read, err := c.ReadSample(0, true, true)
	if err != nil {
		t.Fatalf("ReadSample: %v", err)
	}
	for i, v := range values {
		if read.Floats[i] != v {
			t.Errorf("value %d: got %v, want %v", i, read.Floats[i], v)
		}
	}
}

// TestNewSampleCompressedChunkRequiresSampleCompression tests that
// construction fails when the tensor declares no sample compression.
func TestNewSampleCompressedChunkRequiresSampleCompression(t *testing.T) {
	tm := meta.New(meta.DtypeUint8, meta.HtypeGeneric, "", "")
	if _, err := NewSampleCompressedChunk(1000, 10000, tm, fakeRegistry{}, nil); err == nil {
		t.Fatal("expected an error when SampleCompression is empty")
	}
}

// TestSampleCompressedChunkSerializeDeserializeRoundTrip tests that
// ToBytes/SampleCompressedChunkFromBuffer preserves the compressed sample.
func TestSampleCompressedChunkSerializeDeserializeRoundTrip(t *testing.T) {
	tm := meta.New(meta.DtypeUint8, meta.HtypeGeneric, "xorcodec", "")
	c, err := NewSampleCompressedChunk(1000, 10000, tm, fakeRegistry{}, nil)
	if err != nil {
		t.Fatalf("NewSampleCompressedChunk: %v", err)
	}
	if _, err := c.ExtendIfHasSpace(Numeric{Shape: []int{2}, Values: []float64{7, 8}}); err != nil {
		t.Fatalf("ExtendIfHasSpace: %v", err)
	}

	buf, err := c.ToBytes()
	if err != nil {
		t.Fatalf("ToBytes: %v", err)
	}

	back, err := SampleCompressedChunkFromBuffer(buf, 1000, 10000, tm.Clone(), fakeRegistry{}, nil)
	if err != nil {
		t.Fatalf("SampleCompressedChunkFromBuffer: %v", err)
	}

	read, err := back.ReadSample(0, true, true)
	if err != nil {
		t.Fatalf("ReadSample after round-trip: %v", err)
	}
	for i, v := range []float64{7, 8} {
		if read.Floats[i] != v {
			t.Errorf("value %d: got %v, want %v", i, read.Floats[i], v)
		}
	}
}
