package chunk

// AdmitResult is the outcome of ExtendIfHasSpace. Admitted is 1 if the
// sample was appended, 0 if the caller must rotate to a fresh chunk
// (section 4.5's admission-as-signal, not an error). Tiles is non-nil
// instead when the serialized sample alone exceeds MaxChunkSize and must
// be split across several chunks (section 4.4); the caller drives
// WriteTile against a sequence of fresh chunks in that case.
type AdmitResult struct {
	Admitted int
	Tiles    *TileSequence
}

// BaseChunk is the capability set every chunk variant implements: admit a
// sample if there's room, read a sample back, update one in place, and
// round-trip to/from the wire format. There is no shared base-class
// dispatch -- each variant is its own record over the same *state, per the
// "abstract chunk via capability set" design note.
type BaseChunk interface {
	ExtendIfHasSpace(v Value) (AdmitResult, error)
	ReadSample(i int64, cast bool, copyOut bool) (ReadResult, error)
	UpdateSample(i int64, newBuffer []byte, newShape []int) error
	WriteTile(seq *TileSequence) error
	ToBytes() ([]byte, error)
	Copy() (BaseChunk, error)
	NumSamples() int64
	NumDataBytes() int
	NBytes() int
	Version() string
}

// ReadResult is read_sample's tagged return: exactly one of Floats, Bytes,
// or Text is meaningful, selected by Kind.
type ReadResult struct {
	Kind  ReadKind
	Shape []int

	Floats []float64 // Kind == ReadKindNumeric
	Bytes  []byte     // Kind == ReadKindBytes or ReadKindJSON
	Text   string     // Kind == ReadKindText
}

// ReadKind tags which field of ReadResult is populated.
type ReadKind int

const (
	ReadKindBytes ReadKind = iota
	ReadKindNumeric
	ReadKindText
	ReadKindJSON
)
