package chunk

import "fmt"

// TileSequence is the finite, non-restartable sequence of tile buffers the
// Tiler produces when a serialized sample would exceed MaxChunkSize.
// Tiles are cut along the sample's leading axis so each tile's bytes fit
// one chunk; the chunk writer pulls one tile at a time via Next and feeds
// it to BaseChunk.WriteTile.
type TileSequence struct {
	SampleShape []int

	tiles  [][]byte
	shapes [][]int
	pos    int
}

// NewTileSequence splits data (logically shaped sampleShape, row-major)
// into tiles no larger than maxChunkSize bytes, tiling along axis 0. It
// requires sampleShape to have at least one dimension and data's length to
// divide evenly by sampleShape[0], and returns an error otherwise (a Bytes
// sample, whose shape is nil, is one such case).
func NewTileSequence(data []byte, sampleShape []int, maxChunkSize int) (*TileSequence, error) {
	if len(sampleShape) == 0 {
		return nil, fmt.Errorf("chunk: cannot tile a sample with no dimensions")
	}
	if maxChunkSize <= 0 {
		return nil, fmt.Errorf("chunk: invalid max chunk size %d", maxChunkSize)
	}
	d0 := sampleShape[0]
	if d0 <= 0 {
		return nil, fmt.Errorf("chunk: cannot tile a sample with leading dimension %d", d0)
	}
	if len(data)%d0 != 0 {
		return nil, fmt.Errorf("chunk: sample data of %d bytes does not divide evenly across leading dimension %d", len(data), d0)
	}
	rowBytes := len(data) / d0
	rowsPerTile := 1
	if rowBytes > 0 {
		rowsPerTile = maxChunkSize / rowBytes
		if rowsPerTile < 1 {
			rowsPerTile = 1
		}
	}

	seq := &TileSequence{SampleShape: sampleShape}
	for start := 0; start < d0; start += rowsPerTile {
		rows := rowsPerTile
		if start+rows > d0 {
			rows = d0 - start
		}
		tileShape := append([]int{rows}, sampleShape[1:]...)
		seq.shapes = append(seq.shapes, tileShape)
		seq.tiles = append(seq.tiles, data[start*rowBytes:(start+rows)*rowBytes])
	}
	return seq, nil
}

// Next returns the next tile's bytes and shape, whether it is the first
// tile of the sequence (the only tile whose admission should bump
// TensorMeta.Length and widen its shape envelope with SampleShape rather
// than the tile's own shape), and whether a tile was available at all.
func (t *TileSequence) Next() (tile []byte, tileShape []int, isFirstWrite bool, ok bool) {
	if t.pos >= len(t.tiles) {
		return nil, nil, false, false
	}
	tile, tileShape = t.tiles[t.pos], t.shapes[t.pos]
	isFirstWrite = t.pos == 0
	t.pos++
	return tile, tileShape, isFirstWrite, true
}

// Remaining reports how many tiles have not yet been consumed.
func (t *TileSequence) Remaining() int {
	return len(t.tiles) - t.pos
}

// NumTiles reports the total number of tiles in the sequence.
func (t *TileSequence) NumTiles() int {
	return len(t.tiles)
}
