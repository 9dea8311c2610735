package compression

import (
	"fmt"

	"github.com/shashuat/chunkstore/pkg/chunk"
)

// Registry dispatches codec names to concrete implementations. It satisfies
// chunk.Registry structurally: the chunk package never imports this package,
// so the dependency runs one way, registry -> chunk, the same direction
// block.go's callers depend on pkg/storage rather than the reverse.
type Registry struct {
	byteCodecs  map[string]byteCodec
	imageCodecs map[string]imageCodec
}

type byteCodec interface {
	compress(data []byte) ([]byte, error)
	decompress(data []byte) ([]byte, error)
}

type imageCodec interface {
	compress(data []byte) ([]byte, error)
	decompress(data []byte) ([]byte, error)
	decodeToArray(data []byte) (pixels []byte, shape []int, err error)
}

// NewRegistry builds a Registry with every codec this package implements
// wired in under its canonical name.
func NewRegistry() *Registry {
	return &Registry{
		byteCodecs: map[string]byteCodec{
			"none":    noneCodec{},
			"snappy":  snappyCodec{},
			"zstd":    zstdCodec{},
			"s2":      s2Codec{},
			"xor64":   xor64Codec{},
			"delta64": delta64Codec{},
		},
		imageCodecs: map[string]imageCodec{
			"png":  pngCodec{},
			"jpeg": jpegCodec{},
		},
	}
}

func (r *Registry) Compress(data []byte, codec string) ([]byte, error) {
	if c, ok := r.byteCodecs[codec]; ok {
		return c.compress(data)
	}
	if c, ok := r.imageCodecs[codec]; ok {
		return c.compress(data)
	}
	return nil, fmt.Errorf("compression: unknown codec %q", codec)
}

func (r *Registry) Decompress(data []byte, codec string) ([]byte, error) {
	if c, ok := r.byteCodecs[codec]; ok {
		return c.decompress(data)
	}
	if c, ok := r.imageCodecs[codec]; ok {
		return c.decompress(data)
	}
	return nil, fmt.Errorf("compression: unknown codec %q", codec)
}

func (r *Registry) Type(codec string) chunk.CompressionKind {
	if codec == "" || codec == "none" {
		return chunk.CompressionNone
	}
	if _, ok := r.imageCodecs[codec]; ok {
		return chunk.CompressionImage
	}
	return chunk.CompressionByte
}

func (r *Registry) DecodeToArray(data []byte, codec string) ([]byte, []int, error) {
	c, ok := r.imageCodecs[codec]
	if !ok {
		return nil, nil, fmt.Errorf("compression: %q does not support decode_to_array", codec)
	}
	return c.decodeToArray(data)
}
