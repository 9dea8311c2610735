package chunk

import "testing"

// TestBytePositionsEncoderCoverage tests that every registered sample's
// [start, end) range is contiguous and covers the whole data span with no
// gaps or overlaps.
func TestBytePositionsEncoderCoverage(t *testing.T) {
	e := NewBytePositionsEncoder()
	e.RegisterSamples(10, 3)
	e.RegisterSamples(20, 2)

	wantStart := int64(0)
	for i := int64(0); i < e.NumSamples(); i++ {
		start, end, ok := e.Get(i)
		if !ok {
			t.Fatalf("Get(%d): not found", i)
		}
		if start != wantStart {
			t.Errorf("sample %d: start got %d, want %d", i, start, wantStart)
		}
		wantStart = end
	}
	if e.NumDataBytes() != wantStart {
		t.Errorf("NumDataBytes: got %d, want %d", e.NumDataBytes(), wantStart)
	}
}

// TestBytePositionsEncoderSetShiftsSubsequent tests that changing one
// sample's length shifts every later sample's start by the delta.
func TestBytePositionsEncoderSetShiftsSubsequent(t *testing.T) {
	e := NewBytePositionsEncoder()
	e.RegisterSamples(10, 3) // samples 0,1,2 at [0,10) [10,20) [20,30)

	start1Before, _, _ := e.Get(1)
	start2Before, _, _ := e.Get(2)

	if ok := e.Set(1, 15); !ok {
		t.Fatal("Set(1, 15): expected success")
	}

	start1, end1, ok := e.Get(1)
	if !ok {
		t.Fatal("Get(1) after Set: not found")
	}
	if start1 != start1Before {
		t.Errorf("sample 1 start moved: got %d, want %d", start1, start1Before)
	}
	if end1-start1 != 15 {
		t.Errorf("sample 1 length: got %d, want 15", end1-start1)
	}

	start2, _, ok := e.Get(2)
	if !ok {
		t.Fatal("Get(2) after Set: not found")
	}
	delta := int64(15 - 10)
	if start2 != start2Before+delta {
		t.Errorf("sample 2 start: got %d, want %d", start2, start2Before+delta)
	}
}

// TestBytePositionsEncoderArrayRoundTrip tests that Array and
// BytePositionsEncoderFromArray round-trip every sample's byte range.
func TestBytePositionsEncoderArrayRoundTrip(t *testing.T) {
	e := NewBytePositionsEncoder()
	e.RegisterSamples(4, 2)
	e.RegisterSamples(8, 3)

	back := BytePositionsEncoderFromArray(e.Array())
	if back.NumSamples() != e.NumSamples() {
		t.Fatalf("NumSamples mismatch: got %d, want %d", back.NumSamples(), e.NumSamples())
	}
	for i := int64(0); i < e.NumSamples(); i++ {
		wantStart, wantEnd, _ := e.Get(i)
		gotStart, gotEnd, _ := back.Get(i)
		if gotStart != wantStart || gotEnd != wantEnd {
			t.Errorf("sample %d: got [%d,%d), want [%d,%d)", i, gotStart, gotEnd, wantStart, wantEnd)
		}
	}
}
