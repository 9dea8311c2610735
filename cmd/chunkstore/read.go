package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashuat/chunkstore/pkg/chunk"
	"github.com/shashuat/chunkstore/pkg/observability"
	"github.com/shashuat/chunkstore/pkg/storage"
)

var (
	readRoot         string
	readMinChunkSize int
	readMaxChunkSize int
)

var readCmd = &cobra.Command{
	Use:   "read [tensor-name] [chunk-id] [sample-index]",
	Short: "Look up one sample by chunk id and within-chunk index",
	Long: `Read loads the named chunk and prints the requested sample's shape
and decoded bytes/floats/text, depending on the tensor's htype.

Example:
  chunkstore read --root=/tmp/ds images 0 3`,
	Args: cobra.ExactArgs(3),
	RunE: runRead,
}

func init() {
	readCmd.Flags().StringVar(&readRoot, "root", "./chunkstore-data", "local storage root directory")
	readCmd.Flags().IntVar(&readMinChunkSize, "min-chunk-size", defaultMinChunkSize, "minimum chunk size in bytes (must match the tensor's write-time value)")
	readCmd.Flags().IntVar(&readMaxChunkSize, "max-chunk-size", defaultMaxChunkSize, "maximum chunk size in bytes (must match the tensor's write-time value)")
}

func runRead(cmd *cobra.Command, args []string) error {
	tensor := args[0]
	chunkID, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid chunk-id %q: %w", args[1], err)
	}
	sampleIndex, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid sample-index %q: %w", args[2], err)
	}

	provider, err := storage.NewLocalProvider(readRoot)
	if err != nil {
		return fmt.Errorf("open storage root: %w", err)
	}

	tm, err := loadMeta(provider, tensor)
	if err != nil {
		return fmt.Errorf("load meta for %s: %w", tensor, err)
	}

	logger := newLogger()
	metrics := observability.GetGlobalMetrics()

	buf, err := loadChunkBytes(provider, tensor, uint32(chunkID), metrics)
	if err != nil {
		return fmt.Errorf("load chunk %d: %w", chunkID, err)
	}

	c, err := openChunk(buf, readMinChunkSize, readMaxChunkSize, tm, newRegistry(), logger)
	if err != nil {
		return fmt.Errorf("open chunk %d: %w", chunkID, err)
	}

	readStart := time.Now()
	result, err := c.ReadSample(sampleIndex, true, true)
	if err != nil {
		metrics.RecordReadError()
		return fmt.Errorf("read sample %d of chunk %d: %w", sampleIndex, chunkID, err)
	}
	duration := time.Since(readStart)
	metrics.RecordRead(duration)
	observability.LogRead(logger, tensor, uint32(chunkID), sampleIndex, duration)

	fmt.Printf("tensor=%s chunk=%d sample=%d shape=%v\n", tensor, chunkID, sampleIndex, result.Shape)
	switch result.Kind {
	case chunk.ReadKindNumeric:
		fmt.Printf("kind=numeric values=%v\n", result.Floats)
	case chunk.ReadKindText:
		fmt.Printf("kind=text value=%q\n", result.Text)
	case chunk.ReadKindJSON:
		fmt.Printf("kind=json bytes=%s\n", result.Bytes)
	default:
		fmt.Printf("kind=bytes nbytes=%d\n", len(result.Bytes))
	}
	return nil
}
