package compression

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
)

// pngCodec stores already-encoded PNG bytes as-is; "compress" here means
// "accept a pre-encoded image and hand it back", since the chunk subsystem
// treats a ChunkCompressedChunk's sole sample as an opaque image container
// (see pkg/chunk.ChunkCompressedChunk). decodeToArray is where the real work
// happens: decoding pixels into a flat buffer and shape.
type pngCodec struct{}

func (pngCodec) compress(data []byte) ([]byte, error) {
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("compression: not a valid png: %w", err)
	}
	return data, nil
}

func (pngCodec) decompress(data []byte) ([]byte, error) {
	return data, nil
}

func (pngCodec) decodeToArray(data []byte) ([]byte, []int, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}
	return flattenImage(img)
}

// jpegCodec mirrors pngCodec for JPEG-encoded samples.
type jpegCodec struct{}

func (jpegCodec) compress(data []byte) ([]byte, error) {
	if _, err := jpeg.Decode(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("compression: not a valid jpeg: %w", err)
	}
	return data, nil
}

func (jpegCodec) decompress(data []byte) ([]byte, error) {
	return data, nil
}

func (jpegCodec) decodeToArray(data []byte) ([]byte, []int, error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}
	return flattenImage(img)
}

// flattenImage unpacks an image.Image into row-major uint8 pixels with a
// (H, W, C) shape. image.Gray normalizes to a single channel per the
// grayscale normalization note; anything else flattens to 4-channel RGBA.
func flattenImage(img image.Image) ([]byte, []int, error) {
	bounds := img.Bounds()
	h, w := bounds.Dy(), bounds.Dx()

	if gray, ok := img.(*image.Gray); ok {
		out := make([]byte, h*w)
		for y := 0; y < h; y++ {
			copy(out[y*w:(y+1)*w], gray.Pix[y*gray.Stride:y*gray.Stride+w])
		}
		return out, []int{h, w, 1}, nil
	}

	out := make([]byte, h*w*4)
	idx := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			out[idx+0] = uint8(r >> 8)
			out[idx+1] = uint8(g >> 8)
			out[idx+2] = uint8(b >> 8)
			out[idx+3] = uint8(a >> 8)
			idx += 4
		}
	}
	return out, []int{h, w, 4}, nil
}
