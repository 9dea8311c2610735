package compression

import (
	"github.com/golang/snappy"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
)

// noneCodec is the passthrough byte codec (compression_type() == none).
type noneCodec struct{}

func (noneCodec) compress(data []byte) ([]byte, error)   { return data, nil }
func (noneCodec) decompress(data []byte) ([]byte, error) { return data, nil }

// snappyCodec wraps github.com/golang/snappy's block format.
type snappyCodec struct{}

func (snappyCodec) compress(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

func (snappyCodec) decompress(data []byte) ([]byte, error) {
	return snappy.Decode(nil, data)
}

// zstdCodec wraps github.com/klauspost/compress/zstd.
type zstdCodec struct{}

func (zstdCodec) compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func (zstdCodec) decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}

// s2Codec wraps github.com/klauspost/compress/s2, snappy's faster cousin.
type s2Codec struct{}

func (s2Codec) compress(data []byte) ([]byte, error) {
	return s2.Encode(nil, data), nil
}

func (s2Codec) decompress(data []byte) ([]byte, error) {
	return s2.Decode(nil, data)
}
