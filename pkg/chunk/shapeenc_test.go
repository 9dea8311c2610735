package chunk

import "testing"

// TestShapeEncoderRegisterCollapsesRuns tests that consecutive samples
// sharing a shape collapse into one run.
func TestShapeEncoderRegisterCollapsesRuns(t *testing.T) {
	e := NewShapeEncoder()
	e.RegisterSamples([]int{3, 3}, 5)
	e.RegisterSamples([]int{3, 3}, 5)

	if got := e.NumSamples(); got != 10 {
		t.Fatalf("NumSamples: got %d, want 10", got)
	}
	if len(e.rows) != 1 {
		t.Fatalf("expected a single collapsed row, got %d rows", len(e.rows))
	}
}

// TestShapeEncoderGet tests that Get returns the shape registered for any
// sample within a run, including run boundaries.
func TestShapeEncoderGet(t *testing.T) {
	e := NewShapeEncoder()
	e.RegisterSamples([]int{2, 2}, 3)
	e.RegisterSamples([]int{4, 4}, 2)

	tests := []struct {
		index int64
		want  []int
	}{
		{0, []int{2, 2}},
		{2, []int{2, 2}},
		{3, []int{4, 4}},
		{4, []int{4, 4}},
	}
	for _, tt := range tests {
		got, ok := e.Get(tt.index)
		if !ok {
			t.Fatalf("Get(%d): not found", tt.index)
		}
		if !shapeEqual(got, tt.want) {
			t.Errorf("Get(%d): got %v, want %v", tt.index, got, tt.want)
		}
	}

	if _, ok := e.Get(5); ok {
		t.Error("Get(5): expected out-of-range sample to fail")
	}
}

// TestShapeEncoderSetSplitsRun tests that overwriting a sample in the
// middle of a run splits it into three rows, and that a shape matching
// neighbors re-coalesces.
func TestShapeEncoderSetSplitsRun(t *testing.T) {
	e := NewShapeEncoder()
	e.RegisterSamples([]int{2, 2}, 5)

	if ok := e.Set(2, []int{9, 9}); !ok {
		t.Fatal("Set(2): expected success")
	}
	if len(e.rows) != 3 {
		t.Fatalf("expected 3 rows after split, got %d", len(e.rows))
	}

	got, _ := e.Get(2)
	if !shapeEqual(got, []int{9, 9}) {
		t.Errorf("Get(2) after Set: got %v, want [9 9]", got)
	}
	got, _ = e.Get(1)
	if !shapeEqual(got, []int{2, 2}) {
		t.Errorf("Get(1) after Set(2): got %v, want [2 2]", got)
	}
	got, _ = e.Get(3)
	if !shapeEqual(got, []int{2, 2}) {
		t.Errorf("Get(3) after Set(2): got %v, want [2 2]", got)
	}

	// Setting it back to the surrounding shape should re-coalesce to 1 row.
	if ok := e.Set(2, []int{2, 2}); !ok {
		t.Fatal("Set(2) revert: expected success")
	}
	if len(e.rows) != 1 {
		t.Errorf("expected re-coalesced single row, got %d", len(e.rows))
	}
}

// TestShapeEncoderArrayRoundTrip tests that Array/ShapeEncoderFromArray
// round-trips the encoder's runs exactly.
func TestShapeEncoderArrayRoundTrip(t *testing.T) {
	e := NewShapeEncoder()
	e.RegisterSamples([]int{1, 2}, 3)
	e.RegisterSamples([]int{1, 4}, 2)

	table := e.Array()
	back := ShapeEncoderFromArray(table)

	if back.NumSamples() != e.NumSamples() {
		t.Fatalf("NumSamples mismatch after round-trip: got %d, want %d", back.NumSamples(), e.NumSamples())
	}
	for i := int64(0); i < e.NumSamples(); i++ {
		want, _ := e.Get(i)
		got, _ := back.Get(i)
		if !shapeEqual(got, want) {
			t.Errorf("sample %d: got %v, want %v", i, got, want)
		}
	}
}

// TestShapeEncoderNormalizeEmptyShapes tests that a zero-dimensional run is
// widened to (1,).
func TestShapeEncoderNormalizeEmptyShapes(t *testing.T) {
	e := NewShapeEncoder()
	e.RegisterSamples([]int{}, 3)

	e.NormalizeEmptyShapes()

	got, _ := e.Get(0)
	if !shapeEqual(got, []int{1}) {
		t.Errorf("NormalizeEmptyShapes: got %v, want [1]", got)
	}
}
