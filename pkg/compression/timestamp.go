package compression

import (
	"fmt"
	"io"
)

// TimestampEncoder implements delta-of-delta encoding for timestamps as described
// in Facebook's Gorilla paper. This achieves excellent compression for regularly-spaced
// time series data.
//
// Algorithm:
// - Store first timestamp as-is (64 bits)
// - Store first delta (difference from first timestamp)
// - For subsequent values, encode delta-of-delta using variable-length encoding:
//   - If delta-of-delta is 0: write 1 bit (0)
//   - If delta-of-delta fits in [-64, 63]: write 2 control bits (10) + 7 bits
//   - If delta-of-delta fits in [-256, 255]: write 3 control bits (110) + 9 bits
//   - If delta-of-delta fits in [-2048, 2047]: write 4 control bits (1110) + 12 bits
//   - Otherwise: write 4 control bits (1111) + 32 bits
type TimestampEncoder struct {
	bw         *BitWriter
	t0         int64 // First timestamp
	t1         int64 // Previous timestamp
	delta      int64 // Previous delta (difference between the last two timestamps)
	count      int   // Number of timestamps encoded
	headerSize int   // Size of header in bits
}

// NewTimestampEncoder creates a new timestamp encoder
func NewTimestampEncoder() *TimestampEncoder {
	return &TimestampEncoder{
		bw: NewBitWriter(128),
	}
}

// Encode encodes a timestamp using delta-of-delta compression
func (e *TimestampEncoder) Encode(t int64) error {
	if e.count == 0 {
		// First timestamp: store as-is (64 bits)
		e.t0 = t
		e.t1 = t
		e.count++
		e.bw.WriteBits(uint64(t), 64)
		return nil
	}

	if e.count == 1 {
		// Second timestamp: store delta (t - t0)
		e.delta = t - e.t1
		e.t1 = t
		e.count++

		// Store delta as signed 64-bit value
		e.bw.WriteBits(uint64(e.delta), 64)
		return nil
	}

	// Subsequent timestamps: delta-of-delta encoding
	delta := t - e.t1
	dod := delta - e.delta

	// Update state
	e.delta = delta
	e.t1 = t
	e.count++

	// Variable-length encoding based on delta-of-delta magnitude
	if dod == 0 {
		// Delta hasn't changed: 1 bit (0)
		e.bw.WriteBit(0)
		return nil
	}

	if dod >= -64 && dod <= 63 {
		// Small change: 2 control bits (10) + 7 bits
		e.bw.WriteBits(0b10, 2)
		e.bw.WriteBits(uint64(dod)&0x7F, 7)
		return nil
	}

	if dod >= -256 && dod <= 255 {
		// Medium change: 3 control bits (110) + 9 bits
		e.bw.WriteBits(0b110, 3)
		e.bw.WriteBits(uint64(dod)&0x1FF, 9)
		return nil
	}

	if dod >= -2048 && dod <= 2047 {
		// Large change: 4 control bits (1110) + 12 bits
		e.bw.WriteBits(0b1110, 4)
		e.bw.WriteBits(uint64(dod)&0xFFF, 12)
		return nil
	}

	// Very large change: 4 control bits (1111) + 32 bits
	e.bw.WriteBits(0b1111, 4)
	e.bw.WriteBits(uint64(dod)&0xFFFFFFFF, 32)
	return nil
}

// Finish finalizes the encoding and returns the compressed bytes
func (e *TimestampEncoder) Finish() []byte {
	return e.bw.Bytes()
}

// Count returns the number of timestamps encoded
func (e *TimestampEncoder) Count() int {
	return e.count
}

// BitsWritten returns the total bits written
func (e *TimestampEncoder) BitsWritten() int {
	return e.bw.BitLength()
}

// Reset clears the encoder so it can be reused for a new sequence.
func (e *TimestampEncoder) Reset() {
	e.bw.Reset()
	e.t0 = 0
	e.t1 = 0
	e.delta = 0
	e.count = 0
}

// TimestampDecoder implements delta-of-delta decoding for timestamps
type TimestampDecoder struct {
	br    *BitReader
	t0    int64 // First timestamp
	t1    int64 // Previous timestamp
	delta int64 // Previous delta
	count int   // Number of timestamps decoded
}

// NewTimestampDecoder creates a new timestamp decoder
func NewTimestampDecoder(data []byte) *TimestampDecoder {
	return &TimestampDecoder{
		br: NewBitReader(data),
	}
}

// Decode decodes the next timestamp
func (d *TimestampDecoder) Decode() (int64, error) {
	if d.count == 0 {
		// First timestamp: read 64 bits
		val, err := d.br.ReadBits(64)
		if err != nil {
			return 0, err
		}
		d.t0 = int64(val)
		d.t1 = d.t0
		d.count++
		return d.t0, nil
	}

	if d.count == 1 {
		// Second timestamp: read delta (64 bits)
		val, err := d.br.ReadBits(64)
		if err != nil {
			return 0, err
		}
		d.delta = int64(val)
		d.t1 = d.t0 + d.delta
		d.count++
		return d.t1, nil
	}

	// Subsequent timestamps: delta-of-delta decoding
	// Read control bits to determine encoding
	bit, err := d.br.ReadBit()
	if err != nil {
		return 0, err
	}

	var dod int64

	if bit == 0 {
		// Delta hasn't changed: dod = 0
		dod = 0
	} else {
		// Read more control bits
		bit2, err := d.br.ReadBit()
		if err != nil {
			return 0, err
		}

		if bit2 == 0 {
			// 10: read 7 bits
			val, err := d.br.ReadBits(7)
			if err != nil {
				return 0, err
			}
			dod = signExtend(val, 7)
		} else {
			// Read third control bit
			bit3, err := d.br.ReadBit()
			if err != nil {
				return 0, err
			}

			if bit3 == 0 {
				// 110: read 9 bits
				val, err := d.br.ReadBits(9)
				if err != nil {
					return 0, err
				}
				dod = signExtend(val, 9)
			} else {
				// Read fourth control bit
				bit4, err := d.br.ReadBit()
				if err != nil {
					return 0, err
				}

				if bit4 == 0 {
					// 1110: read 12 bits
					val, err := d.br.ReadBits(12)
					if err != nil {
						return 0, err
					}
					dod = signExtend(val, 12)
				} else {
					// 1111: read 32 bits
					val, err := d.br.ReadBits(32)
					if err != nil {
						return 0, err
					}
					// Sign extend from 32 bits
					dod = int64(int32(val))
				}
			}
		}
	}

	// Compute timestamp
	d.delta = d.delta + dod
	d.t1 = d.t1 + d.delta
	d.count++

	return d.t1, nil
}

// DecodeAll decodes all timestamps and returns them as a slice
func (d *TimestampDecoder) DecodeAll(count int) ([]int64, error) {
	timestamps := make([]int64, 0, count)

	for i := 0; i < count; i++ {
		t, err := d.Decode()
		if err != nil {
			if err == io.EOF && i == count {
				break
			}
			return nil, fmt.Errorf("failed to decode timestamp %d: %w", i, err)
		}
		timestamps = append(timestamps, t)
	}

	return timestamps, nil
}

// Count returns the number of timestamps decoded
func (d *TimestampDecoder) Count() int {
	return d.count
}

// Reset rebinds the decoder to a new buffer, discarding all state.
func (d *TimestampDecoder) Reset(data []byte) {
	d.br.Reset(data)
	d.t0 = 0
	d.t1 = 0
	d.delta = 0
	d.count = 0
}

// signExtend interprets the low n bits of val as a two's-complement signed
// integer and sign-extends it to int64.
func signExtend(val uint64, n uint8) int64 {
	v := int64(val)
	if v&(1<<(n-1)) != 0 {
		v -= 1 << n
	}
	return v
}
