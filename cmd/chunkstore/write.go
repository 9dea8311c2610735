package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashuat/chunkstore/pkg/chunk"
	"github.com/shashuat/chunkstore/pkg/meta"
	"github.com/shashuat/chunkstore/pkg/observability"
	"github.com/shashuat/chunkstore/pkg/storage"
)

var (
	writeRoot              string
	writeDtype             string
	writeHtype             string
	writeSampleCompression string
	writeChunkCompression  string
	writeMinChunkSize      int
	writeMaxChunkSize      int
)

var writeCmd = &cobra.Command{
	Use:   "write [tensor-name] [file]",
	Short: "Admit a file's bytes as one sample into a tensor's chunks",
	Long: `Write reads file whole and admits it as one sample of tensor-name,
creating the tensor (and its first chunk) on first use.

Examples:
  chunkstore write --root=/tmp/ds images photo.png --htype=image --sample-compression=png
  chunkstore write --root=/tmp/ds labels label.bin --dtype=int64`,
	Args: cobra.ExactArgs(2),
	RunE: runWrite,
}

func init() {
	writeCmd.Flags().StringVar(&writeRoot, "root", "./chunkstore-data", "local storage root directory")
	writeCmd.Flags().StringVar(&writeDtype, "dtype", string(meta.DtypeUint8), "tensor element dtype, for a new tensor")
	writeCmd.Flags().StringVar(&writeHtype, "htype", string(meta.HtypeGeneric), "tensor semantic type, for a new tensor")
	writeCmd.Flags().StringVar(&writeSampleCompression, "sample-compression", "", "per-sample codec name, for a new tensor")
	writeCmd.Flags().StringVar(&writeChunkCompression, "chunk-compression", "", "whole-chunk codec name, for a new tensor")
	writeCmd.Flags().IntVar(&writeMinChunkSize, "min-chunk-size", defaultMinChunkSize, "minimum chunk size in bytes, for a new tensor")
	writeCmd.Flags().IntVar(&writeMaxChunkSize, "max-chunk-size", defaultMaxChunkSize, "maximum chunk size in bytes, for a new tensor")
}

func runWrite(cmd *cobra.Command, args []string) error {
	tensor, path := args[0], args[1]

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	provider, err := storage.NewLocalProvider(writeRoot)
	if err != nil {
		return fmt.Errorf("open storage root: %w", err)
	}

	tm, err := loadMeta(provider, tensor)
	if err != nil {
		if !storage.IsNotFound(err) {
			return fmt.Errorf("load meta for %s: %w", tensor, err)
		}
		tm = meta.New(meta.Dtype(writeDtype), meta.Htype(writeHtype), writeSampleCompression, writeChunkCompression)
	}

	registry := newRegistry()
	logger := newLogger()
	metrics := observability.GetGlobalMetrics()

	ids, err := listChunkIDs(provider, tensor)
	if err != nil {
		return fmt.Errorf("list chunks for %s: %w", tensor, err)
	}

	var activeID uint32
	var buf []byte
	if len(ids) > 0 {
		activeID = ids[len(ids)-1]
		buf, err = provider.Get(chunkKey(tensor, activeID))
		if err != nil {
			return fmt.Errorf("load chunk %d: %w", activeID, err)
		}
	} else {
		activeID = 0
	}

	c, err := openChunk(buf, writeMinChunkSize, writeMaxChunkSize, tm, registry, logger)
	if err != nil {
		return fmt.Errorf("open chunk %d: %w", activeID, err)
	}

	admitStart := time.Now()
	result, err := c.ExtendIfHasSpace(chunk.Bytes{Data: content})
	if err != nil {
		metrics.RecordAdmitError()
		return fmt.Errorf("admit sample: %w", err)
	}

	if result.Tiles != nil {
		if err := writeTiledSample(provider, tensor, result.Tiles, &activeID, writeMinChunkSize, writeMaxChunkSize, tm, registry, metrics); err != nil {
			return err
		}
	} else if result.Admitted == 0 {
		// The active chunk is full: rotate to a fresh one and retry once.
		oldID := activeID
		activeID = nextChunkID(ids, activeID)
		metrics.RecordChunkRotated()
		observability.LogChunkRotated(logger, tensor, oldID, activeID)
		c, err = openChunk(nil, writeMinChunkSize, writeMaxChunkSize, tm, registry, logger)
		if err != nil {
			return fmt.Errorf("open chunk %d: %w", activeID, err)
		}
		admitStart = time.Now()
		result, err = c.ExtendIfHasSpace(chunk.Bytes{Data: content})
		if err != nil {
			metrics.RecordAdmitError()
			return fmt.Errorf("admit sample: %w", err)
		}
		if result.Admitted == 0 {
			metrics.RecordAdmitError()
			return fmt.Errorf("sample did not fit a fresh chunk (min_chunk_size=%d)", writeMinChunkSize)
		}
		metrics.RecordAdmitDuration(time.Since(admitStart))
		metrics.RecordSamplesAdmitted(1, int64(len(content)))
		observability.LogAdmit(logger, tensor, len(content), time.Since(admitStart))
		if err := persistChunk(provider, tensor, activeID, c, metrics, logger); err != nil {
			return err
		}
	} else {
		metrics.RecordAdmitDuration(time.Since(admitStart))
		metrics.RecordSamplesAdmitted(1, int64(len(content)))
		observability.LogAdmit(logger, tensor, len(content), time.Since(admitStart))
		if err := persistChunk(provider, tensor, activeID, c, metrics, logger); err != nil {
			return err
		}
	}

	if err := saveMeta(provider, tensor, tm); err != nil {
		return fmt.Errorf("save meta for %s: %w", tensor, err)
	}

	fmt.Printf("wrote sample %d of %q into chunk %d (%d bytes)\n", tm.Length-1, tensor, activeID, len(content))
	return nil
}

// writeTiledSample drains a Tiles sequence across a run of fresh chunks,
// one tile per chunk, per section 4.4's "caller drives WriteTile" contract.
func writeTiledSample(p storage.Provider, tensor string, seq *chunk.TileSequence, activeID *uint32, minChunkSize, maxChunkSize int, tm *meta.TensorMeta, registry chunk.Registry, metrics *observability.Metrics) error {
	for seq.Remaining() > 0 {
		*activeID = nextChunkID(nil, *activeID)
		c, err := openChunk(nil, minChunkSize, maxChunkSize, tm, registry, nil)
		if err != nil {
			return fmt.Errorf("open tile chunk %d: %w", *activeID, err)
		}
		if err := c.WriteTile(seq); err != nil {
			return fmt.Errorf("write tile into chunk %d: %w", *activeID, err)
		}
		metrics.RecordTileWritten()
		if err := persistChunk(p, tensor, *activeID, c, metrics, nil); err != nil {
			return err
		}
	}
	return nil
}

func nextChunkID(existing []uint32, active uint32) uint32 {
	next := active + 1
	for _, id := range existing {
		if id >= next {
			next = id + 1
		}
	}
	return next
}

func persistChunk(p storage.Provider, tensor string, id uint32, c chunk.BaseChunk, metrics *observability.Metrics, logger *slog.Logger) error {
	buf, err := c.ToBytes()
	if err != nil {
		return fmt.Errorf("serialize chunk %d: %w", id, err)
	}
	start := time.Now()
	if err := p.Set(chunkKey(tensor, id), buf); err != nil {
		metrics.RecordPersistError()
		return fmt.Errorf("persist chunk %d: %w", id, err)
	}
	duration := time.Since(start)
	metrics.RecordChunkPersisted(int64(len(buf)), duration)
	if logger != nil {
		observability.LogChunkPersisted(logger, tensor, id, len(buf), duration)
	}
	return nil
}
