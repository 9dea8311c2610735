package compression

import (
	"encoding/binary"
	"fmt"
)

// delta64Codec reinterprets a byte buffer as a sequence of little-endian
// int64 values and runs them through the Gorilla delta-of-delta encoder
// (timestamp.go). It suits integer tensors whose values are slowly
// increasing or decreasing -- indices, counters, sorted label ids -- the
// same shape of data the encoder was designed for, just without an actual
// wall-clock timestamp behind it.
type delta64Codec struct{}

func (delta64Codec) compress(data []byte) ([]byte, error) {
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("compression: delta64 requires a multiple of 8 bytes, got %d", len(data))
	}
	count := len(data) / 8
	enc := NewTimestampEncoder()
	for i := 0; i < count; i++ {
		v := int64(binary.LittleEndian.Uint64(data[i*8 : i*8+8]))
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
	}
	body := enc.Finish()
	out := make([]byte, 8+len(body))
	binary.LittleEndian.PutUint64(out[:8], uint64(count))
	copy(out[8:], body)
	return out, nil
}

func (delta64Codec) decompress(data []byte) ([]byte, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("compression: delta64 payload too short")
	}
	count := int(binary.LittleEndian.Uint64(data[:8]))
	dec := NewTimestampDecoder(data[8:])
	values, err := dec.DecodeAll(count)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8*count)
	for i, v := range values {
		binary.LittleEndian.PutUint64(out[i*8:i*8+8], uint64(v))
	}
	return out, nil
}
