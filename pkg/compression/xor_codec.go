package compression

import (
	"encoding/binary"
	"fmt"
	"math"
)

// xor64Codec reinterprets a byte buffer as a sequence of little-endian
// float64 values and runs them through the Gorilla XOR encoder/decoder
// (value.go). It only applies to buffers whose length is a multiple of 8;
// callers pick it for float32/float64 tensors where slowly-changing values
// are common (sensor readings, embeddings sampled close together in time).
type xor64Codec struct{}

func (xor64Codec) compress(data []byte) ([]byte, error) {
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("compression: xor64 requires a multiple of 8 bytes, got %d", len(data))
	}
	count := len(data) / 8
	enc := NewValueEncoder()
	for i := 0; i < count; i++ {
		bits := binary.LittleEndian.Uint64(data[i*8 : i*8+8])
		if err := enc.Encode(math.Float64frombits(bits)); err != nil {
			return nil, err
		}
	}
	body := enc.Finish()
	out := make([]byte, 8+len(body))
	binary.LittleEndian.PutUint64(out[:8], uint64(count))
	copy(out[8:], body)
	return out, nil
}

func (xor64Codec) decompress(data []byte) ([]byte, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("compression: xor64 payload too short")
	}
	count := int(binary.LittleEndian.Uint64(data[:8]))
	dec := NewValueDecoder(data[8:])
	values, err := dec.DecodeAll(count)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8*count)
	for i, v := range values {
		binary.LittleEndian.PutUint64(out[i*8:i*8+8], math.Float64bits(v))
	}
	return out, nil
}
