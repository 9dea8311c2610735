package chunk

import "sort"

// bytePosRow is one run of the BytePositionsEncoder: every sample in
// [prevRow.LastIndex+1, LastIndex] is NBytes long, with the first such
// sample starting at FirstStart; later samples in the run are arithmetic
// progressed from it.
type bytePosRow struct {
	NBytes     int64
	FirstStart int64
	LastIndex  int64
}

// BytePositionsEncoder run-length encodes each sample's (start, end) byte
// range within a chunk's data block.
type BytePositionsEncoder struct {
	rows []bytePosRow
}

// NewBytePositionsEncoder creates an empty encoder.
func NewBytePositionsEncoder() *BytePositionsEncoder {
	return &BytePositionsEncoder{}
}

// NumSamples reports how many samples have been registered.
func (e *BytePositionsEncoder) NumSamples() int64 {
	if len(e.rows) == 0 {
		return 0
	}
	return e.rows[len(e.rows)-1].LastIndex + 1
}

func (e *BytePositionsEncoder) numInRow(idx int) int64 {
	prev := int64(-1)
	if idx > 0 {
		prev = e.rows[idx-1].LastIndex
	}
	return e.rows[idx].LastIndex - prev
}

// NumDataBytes returns the total byte span covered so far, i.e. len(data)
// after every registered sample.
func (e *BytePositionsEncoder) NumDataBytes() int64 {
	if len(e.rows) == 0 {
		return 0
	}
	last := len(e.rows) - 1
	return e.rows[last].FirstStart + e.numInRow(last)*e.rows[last].NBytes
}

// RegisterSamples appends count samples of nbytes each, contiguous with
// whatever was registered before.
func (e *BytePositionsEncoder) RegisterSamples(nbytes int64, count int64) {
	if count <= 0 {
		return
	}
	if n := len(e.rows); n > 0 && e.rows[n-1].NBytes == nbytes {
		e.rows[n-1].LastIndex += count
		return
	}
	firstStart := e.NumDataBytes()
	prev := int64(-1)
	if n := len(e.rows); n > 0 {
		prev = e.rows[n-1].LastIndex
	}
	e.rows = append(e.rows, bytePosRow{NBytes: nbytes, FirstStart: firstStart, LastIndex: prev + count})
}

func (e *BytePositionsEncoder) rowIndex(i int64) (row int, prevLast int64, ok bool) {
	if i < 0 || i >= e.NumSamples() {
		return 0, 0, false
	}
	idx := sort.Search(len(e.rows), func(k int) bool { return e.rows[k].LastIndex >= i })
	prev := int64(-1)
	if idx > 0 {
		prev = e.rows[idx-1].LastIndex
	}
	return idx, prev, true
}

// Get returns the absolute [start, end) byte range for sample i.
func (e *BytePositionsEncoder) Get(i int64) (start, end int64, ok bool) {
	row, prevLast, ok := e.rowIndex(i)
	if !ok {
		return 0, 0, false
	}
	r := e.rows[row]
	offset := i - prevLast - 1
	start = r.FirstStart + offset*r.NBytes
	end = start + r.NBytes
	return start, end, true
}

// Set overwrites sample i's length to nbytes, splitting the owning run as
// ShapeEncoder.Set does, and shifting every subsequent row's FirstStart by
// the resulting delta so absolute byte positions stay consistent with a
// data block that just grew or shrank in place at i.
func (e *BytePositionsEncoder) Set(i int64, nbytes int64) bool {
	row, prevLast, ok := e.rowIndex(i)
	if !ok {
		return false
	}
	r := e.rows[row]
	if r.NBytes == nbytes {
		return true
	}
	oldStart, oldEnd, _ := e.Get(i)
	delta := nbytes - (oldEnd - oldStart)

	var replacement []bytePosRow
	if i > prevLast+1 {
		replacement = append(replacement, bytePosRow{NBytes: r.NBytes, FirstStart: r.FirstStart, LastIndex: i - 1})
	}
	replacement = append(replacement, bytePosRow{NBytes: nbytes, FirstStart: oldStart, LastIndex: i})
	if i < r.LastIndex {
		tailStart, _, _ := e.Get(i + 1)
		replacement = append(replacement, bytePosRow{NBytes: r.NBytes, FirstStart: tailStart + delta, LastIndex: r.LastIndex})
	}

	out := make([]bytePosRow, 0, len(e.rows)-1+len(replacement))
	out = append(out, e.rows[:row]...)
	out = append(out, replacement...)
	for _, tail := range e.rows[row+1:] {
		tail.FirstStart += delta
		out = append(out, tail)
	}
	e.rows = coalesceByteRows(out)
	return true
}

func coalesceByteRows(rows []bytePosRow) []bytePosRow {
	out := rows[:0:0]
	for _, r := range rows {
		if n := len(out); n > 0 {
			prev := &out[n-1]
			if prev.NBytes == r.NBytes {
				// Only coalesce if arithmetic progression actually holds,
				// i.e. r's first sample continues prev's run exactly.
				expectedStart := prev.FirstStart + (prev.LastIndex-prevLastIndexOf(out, n-2)) * prev.NBytes
				if expectedStart == r.FirstStart {
					prev.LastIndex = r.LastIndex
					continue
				}
			}
		}
		out = append(out, r)
	}
	return out
}

func prevLastIndexOf(rows []bytePosRow, idx int) int64 {
	if idx < 0 {
		return -1
	}
	return rows[idx].LastIndex
}

// Array returns the encoder's rows as a 2-D integer table: [nbytes,
// first_start, last_index] per run.
func (e *BytePositionsEncoder) Array() [][]int64 {
	out := make([][]int64, len(e.rows))
	for i, r := range e.rows {
		out[i] = []int64{r.NBytes, r.FirstStart, r.LastIndex}
	}
	return out
}

// BytePositionsEncoderFromArray reconstructs an encoder from a table
// produced by Array, as used when deserializing a chunk.
func BytePositionsEncoderFromArray(table [][]int64) *BytePositionsEncoder {
	e := &BytePositionsEncoder{rows: make([]bytePosRow, len(table))}
	for i, row := range table {
		e.rows[i] = bytePosRow{NBytes: row[0], FirstStart: row[1], LastIndex: row[2]}
	}
	return e
}
