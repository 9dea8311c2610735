package chunk

import (
	"testing"

	"github.com/shashuat/chunkstore/pkg/meta"
)

// TestFastForwardIsIdempotent tests that fast-forwarding a chunk already at
// CurrentVersion is a no-op.
func TestFastForwardIsIdempotent(t *testing.T) {
	tm := meta.New(meta.DtypeUint8, meta.HtypeGeneric, "", "")
	s := newState(1000, 10000, tm, nil, nil)

	if err := FastForward(s); err != nil {
		t.Fatalf("FastForward: %v", err)
	}
	if s.Version != CurrentVersion {
		t.Errorf("Version: got %q, want %q", s.Version, CurrentVersion)
	}
}

// TestFastForwardV1NormalizesEmptyShapes tests that a v1 chunk's
// zero-dimensional rows are widened to (1,) during fast-forward.
func TestFastForwardV1NormalizesEmptyShapes(t *testing.T) {
	tm := meta.New(meta.DtypeUint8, meta.HtypeGeneric, "", "")
	s := newState(1000, 10000, tm, nil, nil)
	s.Version = LegacyVersionV1
	s.Shapes.RegisterSamples([]int{}, 2)

	if err := FastForward(s); err != nil {
		t.Fatalf("FastForward: %v", err)
	}
	if s.Version != CurrentVersion {
		t.Errorf("Version after fast-forward: got %q, want %q", s.Version, CurrentVersion)
	}
	shape, ok := s.Shapes.Get(0)
	if !ok {
		t.Fatal("Get(0): not found")
	}
	if !shapeEqual(shape, []int{1}) {
		t.Errorf("shape after fast-forward: got %v, want [1]", shape)
	}
}

// TestFastForwardUnknownVersionFails tests that a version with no
// registered migration path fails loudly instead of silently skipping the
// upgrade.
func TestFastForwardUnknownVersionFails(t *testing.T) {
	tm := meta.New(meta.DtypeUint8, meta.HtypeGeneric, "", "")
	s := newState(1000, 10000, tm, nil, nil)
	s.Version = "0.0.1"

	if err := FastForward(s); err == nil {
		t.Fatal("expected an error for a version with no migration path")
	}
}

// TestPrepareForWriteFastForwardsBeforeMutating tests that the first
// mutating call against a legacy-versioned Sealed chunk upgrades it before
// materializing the owned buffer.
func TestPrepareForWriteFastForwardsBeforeMutating(t *testing.T) {
	tm := meta.New(meta.DtypeUint8, meta.HtypeGeneric, "", "")
	shapes := NewShapeEncoder()
	shapes.RegisterSamples([]int{}, 1)
	bpos := NewBytePositionsEncoder()
	bpos.RegisterSamples(1, 1)

	s := fromState(LegacyVersionV1, shapes, bpos, []byte{7}, 1000, 10000, tm, nil, nil)

	if err := s.prepareForWrite(); err != nil {
		t.Fatalf("prepareForWrite: %v", err)
	}
	if s.Version != CurrentVersion {
		t.Errorf("Version: got %q, want %q", s.Version, CurrentVersion)
	}
	if !s.Owned {
		t.Error("expected Owned to be true after prepareForWrite")
	}
	shape, _ := s.Shapes.Get(0)
	if !shapeEqual(shape, []int{1}) {
		t.Errorf("shape: got %v, want [1]", shape)
	}
}
