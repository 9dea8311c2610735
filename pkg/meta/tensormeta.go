// Package meta holds the tensor-level descriptor that chunks widen as they
// admit samples: length, shape envelope, dtype/htype, and compression
// settings. It is the "TensorMeta" external collaborator referenced by the
// chunk subsystem (see pkg/chunk).
package meta

import (
	"encoding/json"
	"fmt"
)

// Dtype names the element type samples are cast to before storage.
type Dtype string

const (
	DtypeUint8   Dtype = "uint8"
	DtypeUint16  Dtype = "uint16"
	DtypeUint32  Dtype = "uint32"
	DtypeUint64  Dtype = "uint64"
	DtypeInt8    Dtype = "int8"
	DtypeInt16   Dtype = "int16"
	DtypeInt32   Dtype = "int32"
	DtypeInt64   Dtype = "int64"
	DtypeFloat32 Dtype = "float32"
	DtypeFloat64 Dtype = "float64"
	DtypeBool    Dtype = "bool"
)

// Htype is the high-level semantic type of a tensor.
type Htype string

const (
	HtypeGeneric    Htype = "generic"
	HtypeImage      Htype = "image"
	HtypeClassLabel Htype = "class_label"
	HtypeText       Htype = "text"
	HtypeJSON       Htype = "json"
	HtypeList       Htype = "list"
)

// MetaVersion is the current on-disk meta schema version, mirroring the
// BlockVersion field persisted alongside block/chunk data in the teacher
// repo's meta.json.
const MetaVersion = 1

// TensorMeta describes a tensor: its declared dtype/htype, optional
// compression, and the running length/shape envelope that chunks widen as
// samples are admitted. The core never locks this struct itself -- callers
// (the cache, in the full system) serialize access, as spec.md section 5
// requires.
type TensorMeta struct {
	Version int `json:"version"`

	Dtype Dtype `json:"dtype"`
	Htype Htype `json:"htype"`

	// SampleCompression is applied to each sample independently.
	SampleCompression string `json:"sample_compression,omitempty"`
	// ChunkCompression is applied to an entire chunk's data block.
	ChunkCompression string `json:"chunk_compression,omitempty"`

	Length   int64 `json:"length"`
	MinShape []int `json:"min_shape,omitempty"`
	MaxShape []int `json:"max_shape,omitempty"`
}

// New creates a TensorMeta with no samples admitted yet.
func New(dtype Dtype, htype Htype, sampleCompression, chunkCompression string) *TensorMeta {
	return &TensorMeta{
		Version:           MetaVersion,
		Dtype:             dtype,
		Htype:             htype,
		SampleCompression: sampleCompression,
		ChunkCompression:  chunkCompression,
	}
}

// Ndim reports the dimensionality recorded for the tensor, or 0 if no sample
// has been admitted yet.
func (m *TensorMeta) Ndim() int {
	return len(m.MaxShape)
}

// UpdateShapeInterval widens the min/max shape envelope to include shape.
// The first call seeds both envelopes. Every subsequent call must supply a
// shape with the same dimensionality -- the chunk subsystem is responsible
// for raising InvalidSampleShapeError before this is reached; this method
// panics on a dimensionality mismatch since that would indicate the caller
// skipped its own check.
func (m *TensorMeta) UpdateShapeInterval(shape []int) {
	if m.MinShape == nil && m.MaxShape == nil {
		m.MinShape = append([]int(nil), shape...)
		m.MaxShape = append([]int(nil), shape...)
		return
	}
	if len(shape) != len(m.MaxShape) {
		panic(fmt.Sprintf("meta: shape envelope dimensionality mismatch: have %d, got %d", len(m.MaxShape), len(shape)))
	}
	for i, d := range shape {
		if d < m.MinShape[i] {
			m.MinShape[i] = d
		}
		if d > m.MaxShape[i] {
			m.MaxShape[i] = d
		}
	}
}

// IncrementLength records one more admitted sample.
func (m *TensorMeta) IncrementLength() {
	m.Length++
}

// Clone returns a deep copy, useful for the round-trip defensive-clone
// pattern BaseChunk.Copy relies on.
func (m *TensorMeta) Clone() *TensorMeta {
	c := *m
	c.MinShape = append([]int(nil), m.MinShape...)
	c.MaxShape = append([]int(nil), m.MaxShape...)
	return &c
}

// ToJSON and FromJSON persist the meta the way block.go's BlockMeta is
// persisted as meta.json, keeping a Version field for future migrations.
func (m *TensorMeta) ToJSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// FromJSON parses a TensorMeta previously written by ToJSON.
func FromJSON(data []byte) (*TensorMeta, error) {
	var m TensorMeta
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("meta: parse: %w", err)
	}
	return &m, nil
}
