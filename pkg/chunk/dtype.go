package chunk

import (
	"encoding/binary"
	"math"

	"github.com/shashuat/chunkstore/pkg/meta"
)

// encodeNumeric casts each element of values to dt and packs them
// little-endian into a flat byte buffer, matching the codec's
// "all multi-byte integers little-endian" rule (section 4.7). It returns
// DTypeCastError if a cast would silently lose information the caller
// didn't ask for (a fractional value truncated to an integer dtype, or a
// value outside the target dtype's range).
func encodeNumeric(values []float64, dt meta.Dtype) ([]byte, error) {
	width, ok := dtypeWidth(dt)
	if !ok {
		return nil, &DTypeCastError{From: "float64", To: string(dt)}
	}
	buf := make([]byte, width*len(values))
	for i, v := range values {
		if err := putDtype(buf[i*width:(i+1)*width], v, dt); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func dtypeWidth(dt meta.Dtype) (int, bool) {
	switch dt {
	case meta.DtypeUint8, meta.DtypeInt8, meta.DtypeBool:
		return 1, true
	case meta.DtypeUint16, meta.DtypeInt16:
		return 2, true
	case meta.DtypeUint32, meta.DtypeInt32, meta.DtypeFloat32:
		return 4, true
	case meta.DtypeUint64, meta.DtypeInt64, meta.DtypeFloat64:
		return 8, true
	default:
		return 0, false
	}
}

func isIntegerDtype(dt meta.Dtype) bool {
	switch dt {
	case meta.DtypeUint8, meta.DtypeUint16, meta.DtypeUint32, meta.DtypeUint64,
		meta.DtypeInt8, meta.DtypeInt16, meta.DtypeInt32, meta.DtypeInt64, meta.DtypeBool:
		return true
	default:
		return false
	}
}

func dtypeRange(dt meta.Dtype) (lo, hi float64) {
	switch dt {
	case meta.DtypeUint8:
		return 0, math.MaxUint8
	case meta.DtypeUint16:
		return 0, math.MaxUint16
	case meta.DtypeUint32:
		return 0, math.MaxUint32
	case meta.DtypeUint64:
		return 0, math.MaxUint64
	case meta.DtypeInt8:
		return math.MinInt8, math.MaxInt8
	case meta.DtypeInt16:
		return math.MinInt16, math.MaxInt16
	case meta.DtypeInt32:
		return math.MinInt32, math.MaxInt32
	case meta.DtypeInt64:
		return math.MinInt64, math.MaxInt64
	case meta.DtypeBool:
		return 0, 1
	default:
		return math.Inf(-1), math.Inf(1)
	}
}

func putDtype(dst []byte, v float64, dt meta.Dtype) error {
	if isIntegerDtype(dt) {
		if v != math.Trunc(v) {
			return &DTypeCastError{From: "float64", To: string(dt)}
		}
		lo, hi := dtypeRange(dt)
		if v < lo || v > hi {
			return &DTypeCastError{From: "float64", To: string(dt)}
		}
	}
	switch dt {
	case meta.DtypeUint8, meta.DtypeBool:
		dst[0] = byte(uint8(v))
	case meta.DtypeInt8:
		dst[0] = byte(int8(v))
	case meta.DtypeUint16:
		binary.LittleEndian.PutUint16(dst, uint16(v))
	case meta.DtypeInt16:
		binary.LittleEndian.PutUint16(dst, uint16(int16(v)))
	case meta.DtypeUint32:
		binary.LittleEndian.PutUint32(dst, uint32(v))
	case meta.DtypeInt32:
		binary.LittleEndian.PutUint32(dst, uint32(int32(v)))
	case meta.DtypeFloat32:
		binary.LittleEndian.PutUint32(dst, math.Float32bits(float32(v)))
	case meta.DtypeUint64:
		binary.LittleEndian.PutUint64(dst, uint64(v))
	case meta.DtypeInt64:
		binary.LittleEndian.PutUint64(dst, uint64(int64(v)))
	case meta.DtypeFloat64:
		binary.LittleEndian.PutUint64(dst, math.Float64bits(v))
	default:
		return &DTypeCastError{From: "float64", To: string(dt)}
	}
	return nil
}

// decodeNumeric is the inverse of encodeNumeric: it unpacks count elements
// of dt from buf into float64s for the caller.
func decodeNumeric(buf []byte, dt meta.Dtype, count int) ([]float64, error) {
	width, ok := dtypeWidth(dt)
	if !ok {
		return nil, &DTypeCastError{From: string(dt), To: "float64"}
	}
	if len(buf) < width*count {
		return nil, &DTypeCastError{From: string(dt), To: "float64"}
	}
	out := make([]float64, count)
	for i := range out {
		chunk := buf[i*width : (i+1)*width]
		switch dt {
		case meta.DtypeUint8, meta.DtypeBool:
			out[i] = float64(chunk[0])
		case meta.DtypeInt8:
			out[i] = float64(int8(chunk[0]))
		case meta.DtypeUint16:
			out[i] = float64(binary.LittleEndian.Uint16(chunk))
		case meta.DtypeInt16:
			out[i] = float64(int16(binary.LittleEndian.Uint16(chunk)))
		case meta.DtypeUint32:
			out[i] = float64(binary.LittleEndian.Uint32(chunk))
		case meta.DtypeInt32:
			out[i] = float64(int32(binary.LittleEndian.Uint32(chunk)))
		case meta.DtypeFloat32:
			out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(chunk)))
		case meta.DtypeUint64:
			out[i] = float64(binary.LittleEndian.Uint64(chunk))
		case meta.DtypeInt64:
			out[i] = float64(int64(binary.LittleEndian.Uint64(chunk)))
		case meta.DtypeFloat64:
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(chunk))
		}
	}
	return out, nil
}
