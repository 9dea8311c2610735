package chunk

import (
	"encoding/binary"
	"fmt"
)

// Wire layout (section 4.7), all multi-byte integers little-endian:
//
//	version_len : u4
//	version      : utf-8[version_len]
//	shapes_meta  : u4 num_rows, u4 num_cols
//	shapes_data  : num_rows*num_cols int64s, little-endian
//	bpos_meta    : u4 num_rows, u4 num_cols (num_cols is 3, or 0 with no rows)
//	bpos_data    : num_rows*num_cols int64s, little-endian
//	data         : remaining bytes
const (
	arrayMetaSize = 8 // two u4s
	int64Size     = 8
)

func encodeArrayMeta(table [][]int64) []byte {
	meta := make([]byte, arrayMetaSize)
	cols := 0
	if len(table) > 0 {
		cols = len(table[0])
	}
	binary.LittleEndian.PutUint32(meta[0:4], uint32(len(table)))
	binary.LittleEndian.PutUint32(meta[4:8], uint32(cols))
	return meta
}

func encodeArrayData(table [][]int64) []byte {
	if len(table) == 0 {
		return nil
	}
	cols := len(table[0])
	out := make([]byte, len(table)*cols*int64Size)
	for i, row := range table {
		for j, v := range row {
			binary.LittleEndian.PutUint64(out[(i*cols+j)*int64Size:], uint64(v))
		}
	}
	return out
}

func decodeArray(meta, data []byte) ([][]int64, error) {
	if len(meta) < arrayMetaSize {
		return nil, fmt.Errorf("array meta truncated: have %d bytes, want %d", len(meta), arrayMetaSize)
	}
	rows := int(binary.LittleEndian.Uint32(meta[0:4]))
	cols := int(binary.LittleEndian.Uint32(meta[4:8]))
	want := rows * cols * int64Size
	if len(data) < want {
		return nil, fmt.Errorf("array data truncated: have %d bytes, want %d", len(data), want)
	}
	table := make([][]int64, rows)
	for i := range table {
		row := make([]int64, cols)
		for j := range row {
			row[j] = int64(binary.LittleEndian.Uint64(data[(i*cols+j)*int64Size:]))
		}
		table[i] = row
	}
	return table, nil
}

// SerializeChunk concatenates version, the two encoder tables, and the
// data block into one contiguous buffer.
func SerializeChunk(version string, shapesTable, bposTable [][]int64, data []byte) []byte {
	versionBytes := []byte(version)
	shapesMeta := encodeArrayMeta(shapesTable)
	shapesData := encodeArrayData(shapesTable)
	bposMeta := encodeArrayMeta(bposTable)
	bposData := encodeArrayData(bposTable)

	total := 4 + len(versionBytes) + len(shapesMeta) + len(shapesData) + len(bposMeta) + len(bposData) + len(data)
	out := make([]byte, total)

	off := 0
	binary.LittleEndian.PutUint32(out[off:], uint32(len(versionBytes)))
	off += 4
	off += copy(out[off:], versionBytes)
	off += copy(out[off:], shapesMeta)
	off += copy(out[off:], shapesData)
	off += copy(out[off:], bposMeta)
	off += copy(out[off:], bposData)
	copy(out[off:], data)

	return out
}

// DeserializeChunk parses a buffer written by SerializeChunk. The returned
// data block is a zero-copy view into buf; the caller must not mutate buf
// afterward (section 4.7). The encoder tables are always decoded into
// freshly allocated rows and never alias buf.
func DeserializeChunk(buf []byte) (version string, shapes *ShapeEncoder, bytePositions *BytePositionsEncoder, data []byte, err error) {
	return deserializeChunk(buf, false)
}

// DeserializeChunkCopy is DeserializeChunk with copy=true: every returned
// slice is an independent copy, safe to use after buf is reused or freed.
func DeserializeChunkCopy(buf []byte) (version string, shapes *ShapeEncoder, bytePositions *BytePositionsEncoder, data []byte, err error) {
	return deserializeChunk(buf, true)
}

func deserializeChunk(buf []byte, doCopy bool) (string, *ShapeEncoder, *BytePositionsEncoder, []byte, error) {
	off := 0
	if len(buf) < 4 {
		return "", nil, nil, nil, &ChunkFormatError{Offset: off, Cause: fmt.Errorf("buffer too short for version length")}
	}
	versionLen := int(binary.LittleEndian.Uint32(buf[0:4]))
	off += 4

	if len(buf) < off+versionLen {
		return "", nil, nil, nil, &ChunkFormatError{Offset: off, Cause: fmt.Errorf("buffer too short for version string")}
	}
	version := string(buf[off : off+versionLen])
	off += versionLen

	if len(buf) < off+arrayMetaSize {
		return version, nil, nil, nil, &ChunkFormatError{Version: version, Offset: off, Cause: fmt.Errorf("buffer too short for shapes meta")}
	}
	shapesMeta := buf[off : off+arrayMetaSize]
	off += arrayMetaSize
	shapesRows := int(binary.LittleEndian.Uint32(shapesMeta[0:4]))
	shapesCols := int(binary.LittleEndian.Uint32(shapesMeta[4:8]))
	shapesDataLen := shapesRows * shapesCols * int64Size

	if len(buf) < off+shapesDataLen {
		return version, nil, nil, nil, &ChunkFormatError{Version: version, Offset: off, Cause: fmt.Errorf("buffer too short for shapes data")}
	}
	shapesTable, err := decodeArray(shapesMeta, buf[off:off+shapesDataLen])
	if err != nil {
		return version, nil, nil, nil, &ChunkFormatError{Version: version, Offset: off, Cause: err}
	}
	off += shapesDataLen

	if len(buf) < off+arrayMetaSize {
		return version, nil, nil, nil, &ChunkFormatError{Version: version, Offset: off, Cause: fmt.Errorf("buffer too short for byte-positions meta")}
	}
	bposMeta := buf[off : off+arrayMetaSize]
	off += arrayMetaSize
	bposRows := int(binary.LittleEndian.Uint32(bposMeta[0:4]))
	bposCols := int(binary.LittleEndian.Uint32(bposMeta[4:8]))
	bposDataLen := bposRows * bposCols * int64Size

	if len(buf) < off+bposDataLen {
		return version, nil, nil, nil, &ChunkFormatError{Version: version, Offset: off, Cause: fmt.Errorf("buffer too short for byte-positions data")}
	}
	bposTable, err := decodeArray(bposMeta, buf[off:off+bposDataLen])
	if err != nil {
		return version, nil, nil, nil, &ChunkFormatError{Version: version, Offset: off, Cause: err}
	}
	off += bposDataLen

	data := buf[off:]
	if doCopy {
		data = append([]byte(nil), data...)
	}

	return version, ShapeEncoderFromArray(shapesTable), BytePositionsEncoderFromArray(bposTable), data, nil
}

// InferChunkNumBytes returns the exact length SerializeChunk would produce
// without materializing the bytes, used for cache admission (section 4.7).
func InferChunkNumBytes(version string, shapesTable, bposTable [][]int64, lenData int) int {
	shapesCols := 0
	if len(shapesTable) > 0 {
		shapesCols = len(shapesTable[0])
	}
	bposCols := 0
	if len(bposTable) > 0 {
		bposCols = len(bposTable[0])
	}
	return 4 + len(version) +
		arrayMetaSize + len(shapesTable)*shapesCols*int64Size +
		arrayMetaSize + len(bposTable)*bposCols*int64Size +
		lenData
}
