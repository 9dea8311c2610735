package chunk

// Value is the closed sum type of everything a caller may hand to a chunk
// for admission: a numeric array, a scalar, text, a JSON/list value, raw
// pre-serialized bytes, a pre-compressed image blob, or a lazy tile
// sequence produced when a sample didn't fit a single chunk. Each concrete
// type below is one arm; SampleSerializer switches on them explicitly
// rather than reflecting over an empty interface.
type Value interface {
	isValue()
}

// Bytes is a raw, pre-serialized buffer. Its shape is unknown to the
// serializer and is recorded as nil.
type Bytes struct {
	Data []byte
}

func (Bytes) isValue() {}

// Numeric is a dense array of elements in row-major order, cast to the
// tensor's declared dtype at serialization time.
type Numeric struct {
	Shape  []int
	Values []float64
}

func (Numeric) isValue() {}

// Scalar is a bare number or boolean; it normalizes to shape (1,) per
// section 4.3.
type Scalar struct {
	Value float64
}

func (Scalar) isValue() {}

// Text is a UTF-8 string sample, valid when the tensor's htype is "text".
type Text struct {
	Value string
}

func (Text) isValue() {}

// JSONOrList is an arbitrary JSON-encodable value, valid when the tensor's
// htype is "json" or "list".
type JSONOrList struct {
	Value any
}

func (JSONOrList) isValue() {}

// Prepared is an already-encoded image blob (e.g. produced by an upstream
// decoder) carrying its own known shape, mirroring Python's PreparedSample.
type Prepared struct {
	Data              []byte
	Shape             []int
	IsByteCompression bool
}

func (Prepared) isValue() {}

// Tiles is a handle to a lazy sequence of tile buffers produced by the
// Tiler when a sample is too large for one chunk. It carries no bytes of
// its own; the chunk writer pulls tiles from it one at a time via
// WriteTile.
type Tiles struct {
	Sequence *TileSequence
}

func (Tiles) isValue() {}
