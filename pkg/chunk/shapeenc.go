package chunk

import "sort"

// shapeRow is one run of the ShapeEncoder: every sample in
// [prevRow.LastIndex+1, LastIndex] (0-based, inclusive) has Shape.
type shapeRow struct {
	Shape     []int
	LastIndex int64
}

// ShapeEncoder run-length encodes a sequence of per-sample shapes. Rows are
// collapsed whenever consecutive samples share a shape, so a tensor of N
// identically-shaped samples costs one row rather than N.
type ShapeEncoder struct {
	rows []shapeRow
}

// NewShapeEncoder creates an empty encoder.
func NewShapeEncoder() *ShapeEncoder {
	return &ShapeEncoder{}
}

// NumSamples reports how many samples have been registered.
func (e *ShapeEncoder) NumSamples() int64 {
	if len(e.rows) == 0 {
		return 0
	}
	return e.rows[len(e.rows)-1].LastIndex + 1
}

func shapeEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// RegisterSamples appends count samples of shape. If the final existing run
// already carries shape, its span is simply extended; otherwise a new row
// is appended.
func (e *ShapeEncoder) RegisterSamples(shape []int, count int64) {
	if count <= 0 {
		return
	}
	if n := len(e.rows); n > 0 && shapeEqual(e.rows[n-1].Shape, shape) {
		e.rows[n-1].LastIndex += count
		return
	}
	prev := int64(-1)
	if n := len(e.rows); n > 0 {
		prev = e.rows[n-1].LastIndex
	}
	e.rows = append(e.rows, shapeRow{Shape: append([]int(nil), shape...), LastIndex: prev + count})
}

// rowIndex returns the index of the row covering sample i, and the
// cumulative count before that row (i.e. the absolute index of the last
// sample of the previous row, or -1).
func (e *ShapeEncoder) rowIndex(i int64) (row int, prevLast int64, ok bool) {
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

// Get returns the shape registered for sample i.
func (e *ShapeEncoder) Get(i int64) ([]int, bool) {
	row, _, ok := e.rowIndex(i)
	if !ok {
		return nil, false
	}
	return e.rows[row].Shape, true
}

// Set overwrites the shape at index i, splitting the owning run into up to
// three runs (the unchanged prefix, the single updated sample, and the
// unchanged suffix), then coalescing any newly-adjacent runs that ended up
// sharing a shape.
func (e *ShapeEncoder) Set(i int64, shape []int) bool {
	row, prevLast, ok := e.rowIndex(i)
	if !ok {
		return false
	}
	r := e.rows[row]
	if shapeEqual(r.Shape, shape) {
		return true
	}

	var replacement []shapeRow
	if i > prevLast+1 {
		replacement = append(replacement, shapeRow{Shape: r.Shape, LastIndex: i - 1})
	}
	replacement = append(replacement, shapeRow{Shape: append([]int(nil), shape...), LastIndex: i})
	if i < r.LastIndex {
		replacement = append(replacement, shapeRow{Shape: r.Shape, LastIndex: r.LastIndex})
	}

	out := make([]shapeRow, 0, len(e.rows)-1+len(replacement))
	out = append(out, e.rows[:row]...)
	out = append(out, replacement...)
	out = append(out, e.rows[row+1:]...)
	e.rows = coalesceShapeRows(out)
	return true
}

func coalesceShapeRows(rows []shapeRow) []shapeRow {
	out := rows[:0:0]
	for _, r := range rows {
		if n := len(out); n > 0 && shapeEqual(out[n-1].Shape, r.Shape) {
			out[n-1].LastIndex = r.LastIndex
			continue
		}
		out = append(out, r)
	}
	return out
}

// NormalizeEmptyShapes widens any zero-dimensional row to (1,). It exists
// for FastForward to upgrade chunks written before scalar shapes were
// normalized at serialization time (section 4.3).
func (e *ShapeEncoder) NormalizeEmptyShapes() {
	for i := range e.rows {
		if len(e.rows[i].Shape) == 0 {
			e.rows[i].Shape = []int{1}
		}
	}
}

// Array returns the encoder's rows as a 2-D integer table: one row per run,
// each row being the shape's dims followed by LastIndex. All rows share the
// tensor's dimensionality, so the table is rectangular.
func (e *ShapeEncoder) Array() [][]int64 {
	out := make([][]int64, len(e.rows))
	for i, r := range e.rows {
		row := make([]int64, len(r.Shape)+1)
		for j, d := range r.Shape {
			row[j] = int64(d)
		}
		row[len(r.Shape)] = r.LastIndex
		out[i] = row
	}
	return out
}

// ShapeEncoderFromArray reconstructs an encoder from the table Array
// produced, as used when deserializing a chunk (section 4.7).
func ShapeEncoderFromArray(table [][]int64) *ShapeEncoder {
	e := &ShapeEncoder{rows: make([]shapeRow, len(table))}
	for i, row := range table {
		shape := make([]int, len(row)-1)
		for j := range shape {
			shape[j] = int(row[j])
		}
		e.rows[i] = shapeRow{Shape: shape, LastIndex: row[len(row)-1]}
	}
	return e
}
