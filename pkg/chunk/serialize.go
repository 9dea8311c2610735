package chunk

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/shashuat/chunkstore/pkg/meta"
)

// SampleSerializer converts a heterogeneous Value into the (bytes, shape)
// pair a chunk can admit, under a tensor's declared dtype/htype and its
// optional per-sample compression. It is stateless except for the one-shot
// grayscale warning, matching the "no global state" design note: the flag
// lives on the serializer instance, not in a package variable.
type SampleSerializer struct {
	Dtype             meta.Dtype
	Htype             meta.Htype
	SampleCompression string
	Registry          Registry

	// GrayscaleToRGB mirrors hub.constants.CONVERT_GRAYSCALE: widen every
	// 2-D image shape to (H, W, 1).
	GrayscaleToRGB bool

	warnOnce sync.Once
	onWarn   func(string)
}

// NewSampleSerializer builds a serializer for one tensor. registry may be
// nil, in which case compression is a no-op passthrough (useful for tests
// that don't exercise codecs).
func NewSampleSerializer(dt meta.Dtype, ht meta.Htype, sampleCompression string, registry Registry) *SampleSerializer {
	if registry == nil {
		registry = noopRegistry{}
	}
	return &SampleSerializer{Dtype: dt, Htype: ht, SampleCompression: sampleCompression, Registry: registry}
}

// OnGrayscaleWarning registers a callback invoked the first (and only the
// first) time a 2-D image sample is widened to (H, W, 1).
func (s *SampleSerializer) OnGrayscaleWarning(f func(string)) {
	s.onWarn = f
}

func (s *SampleSerializer) isTextLike() bool {
	return s.Htype == meta.HtypeText || s.Htype == meta.HtypeJSON || s.Htype == meta.HtypeList
}

// Serialize dispatches on the Value's concrete type per section 4.3's
// table and returns the bytes to store plus the sample's logical shape.
// Tiles produces no bytes here -- the caller is expected to recognize
// a Tiles value and drive WriteTile per section 4.4 instead of calling Serialize.
func (s *SampleSerializer) Serialize(v Value) ([]byte, []int, error) {
	var data []byte
	var shape []int
	var err error

	switch sv := v.(type) {
	case Text:
		data, shape, err = s.serializeText(sv.Value)
	case JSONOrList:
		data, shape, err = s.serializeJSON(sv.Value)
	case Prepared:
		data, shape, err = s.serializePrepared(sv)
	case Bytes:
		data, shape = sv.Data, nil
	case Numeric:
		data, shape, err = s.serializeNumeric(sv.Shape, sv.Values)
	case Scalar:
		data, shape, err = s.serializeNumeric([]int{}, []float64{sv.Value})
	case Tiles:
		return nil, sv.Sequence.SampleShape, nil
	default:
		return nil, nil, &InvalidSampleTypeError{TypeName: fmt.Sprintf("%T", v)}
	}
	if err != nil {
		return nil, nil, err
	}
	return data, s.normalizeShape(shape), nil
}

func (s *SampleSerializer) serializeText(text string) ([]byte, []int, error) {
	raw := []byte(text)
	out, err := s.compress(raw)
	if err != nil {
		return nil, nil, err
	}
	return out, []int{len(text)}, nil
}

func (s *SampleSerializer) serializeJSON(v any) ([]byte, []int, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, nil, &InvalidSampleTypeError{TypeName: fmt.Sprintf("json: %v", err)}
	}
	out, err := s.compress(raw)
	if err != nil {
		return nil, nil, err
	}
	// One slot per top-level element for a list, one slot total otherwise.
	n := 1
	if arr, ok := v.([]any); ok {
		n = len(arr)
	}
	return out, []int{n}, nil
}

func (s *SampleSerializer) serializePrepared(p Prepared) ([]byte, []int, error) {
	shape := p.Shape
	if p.IsByteCompression {
		decoded, _, err := s.Registry.DecodeToArray(p.Data, s.SampleCompression)
		if err != nil {
			return nil, nil, &CompressionError{Codec: s.SampleCompression, Cause: err}
		}
		return decoded, s.convertToRGB(shape), nil
	}
	return p.Data, s.convertToRGB(shape), nil
}

func (s *SampleSerializer) serializeNumeric(shape []int, values []float64) ([]byte, []int, error) {
	raw, err := encodeNumeric(values, s.Dtype)
	if err != nil {
		return nil, nil, err
	}
	out, err := s.compress(raw)
	if err != nil {
		return nil, nil, err
	}
	return out, shape, nil
}

func (s *SampleSerializer) compress(raw []byte) ([]byte, error) {
	if s.SampleCompression == "" {
		return raw, nil
	}
	if s.Registry.Type(s.SampleCompression) != CompressionByte {
		return raw, nil
	}
	out, err := s.Registry.Compress(raw, s.SampleCompression)
	if err != nil {
		return nil, &CompressionError{Codec: s.SampleCompression, Cause: err}
	}
	return out, nil
}

// convertToRGB widens a 2-D (H, W) image shape to (H, W, 1) when
// GrayscaleToRGB is set and the tensor is image-like, firing the one-shot
// warning callback. The tensor's recorded dimensionality is not consulted.
func (s *SampleSerializer) convertToRGB(shape []int) []int {
	isImageLike := s.Htype == meta.HtypeImage || s.Registry.Type(s.SampleCompression) == CompressionImage
	if !s.GrayscaleToRGB || !isImageLike || len(shape) != 2 {
		return shape
	}
	s.warnOnce.Do(func() {
		if s.onWarn != nil {
			s.onWarn("grayscale images will be reshaped from (H, W) to (H, W, 1) to match tensor dimensions")
		}
	})
	return append(append([]int(nil), shape...), 1)
}

// normalizeShape widens an empty shape () to (1,) per section 4.3.
func (s *SampleSerializer) normalizeShape(shape []int) []int {
	if shape != nil && len(shape) == 0 {
		return []int{1}
	}
	return shape
}
