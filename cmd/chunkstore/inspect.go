package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shashuat/chunkstore/pkg/catalog"
	"github.com/shashuat/chunkstore/pkg/chunk"
	"github.com/shashuat/chunkstore/pkg/storage"
)

var inspectRoot string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspect a tensor's meta and chunk layout",
}

var inspectMetaCmd = &cobra.Command{
	Use:   "meta [tensor-name]",
	Short: "Print a tensor's meta.json",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspectMeta,
}

var inspectChunkCmd = &cobra.Command{
	Use:   "chunk [tensor-name] [chunk-id]",
	Short: "Dump a chunk's version, shape/byte-position rows, and data length",
	Args:  cobra.ExactArgs(2),
	RunE:  runInspectChunk,
}

var inspectCatalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Rebuild and print the tensor-name -> chunk-id catalog for the storage root",
	Args:  cobra.NoArgs,
	RunE:  runInspectCatalog,
}

func init() {
	inspectCmd.PersistentFlags().StringVar(&inspectRoot, "root", "./chunkstore-data", "local storage root directory")
	inspectCmd.AddCommand(inspectMetaCmd)
	inspectCmd.AddCommand(inspectChunkCmd)
	inspectCmd.AddCommand(inspectCatalogCmd)
}

func runInspectMeta(cmd *cobra.Command, args []string) error {
	tensor := args[0]

	provider, err := storage.NewLocalProvider(inspectRoot)
	if err != nil {
		return fmt.Errorf("open storage root: %w", err)
	}

	tm, err := loadMeta(provider, tensor)
	if err != nil {
		return fmt.Errorf("load meta for %s: %w", tensor, err)
	}

	ids, err := listChunkIDs(provider, tensor)
	if err != nil {
		return fmt.Errorf("list chunks for %s: %w", tensor, err)
	}

	fmt.Printf("tensor:             %s\n", tensor)
	fmt.Printf("dtype:              %s\n", tm.Dtype)
	fmt.Printf("htype:              %s\n", tm.Htype)
	fmt.Printf("sample_compression: %s\n", orNone(tm.SampleCompression))
	fmt.Printf("chunk_compression:  %s\n", orNone(tm.ChunkCompression))
	fmt.Printf("length:             %d\n", tm.Length)
	fmt.Printf("min_shape:          %v\n", tm.MinShape)
	fmt.Printf("max_shape:          %v\n", tm.MaxShape)
	fmt.Printf("chunks:             %v\n", ids)
	return nil
}

func runInspectChunk(cmd *cobra.Command, args []string) error {
	tensor := args[0]
	chunkID, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid chunk-id %q: %w", args[1], err)
	}

	provider, err := storage.NewLocalProvider(inspectRoot)
	if err != nil {
		return fmt.Errorf("open storage root: %w", err)
	}

	buf, err := provider.Get(chunkKey(tensor, uint32(chunkID)))
	if err != nil {
		return fmt.Errorf("load chunk %d: %w", chunkID, err)
	}

	version, shapes, bpos, data, err := chunk.DeserializeChunk(buf)
	if err != nil {
		return fmt.Errorf("deserialize chunk %d: %w", chunkID, err)
	}

	fmt.Printf("chunk:        %s/%d\n", tensor, chunkID)
	fmt.Printf("version:      %s\n", version)
	fmt.Printf("nbytes:       %d (on disk %d)\n", len(data), len(buf))
	fmt.Printf("num_samples:  %d\n", shapes.NumSamples())
	fmt.Println("shape rows (shape dims..., last-index):")
	for _, row := range shapes.Array() {
		fmt.Printf("  %v\n", row)
	}
	fmt.Println("byte-position rows (nbytes, first-start, last-index):")
	for _, row := range bpos.Array() {
		fmt.Printf("  %v\n", row)
	}
	return nil
}

// runInspectCatalog walks every meta.json under the storage root and
// rebuilds a catalog.Index from the chunk ids it finds, the moral
// equivalent of a long-running process's in-memory catalog -- the CLI
// just builds a fresh one each invocation instead of keeping it resident.
func runInspectCatalog(cmd *cobra.Command, args []string) error {
	provider, err := storage.NewLocalProvider(inspectRoot)
	if err != nil {
		return fmt.Errorf("open storage root: %w", err)
	}

	keys, err := provider.ListPrefix("")
	if err != nil {
		return fmt.Errorf("list storage root: %w", err)
	}

	idx := catalog.NewIndex()
	for _, key := range keys {
		if !strings.HasSuffix(key, "/meta.json") {
			continue
		}
		tensor := strings.TrimSuffix(key, "/meta.json")
		ids, err := listChunkIDs(provider, tensor)
		if err != nil {
			return fmt.Errorf("list chunks for %s: %w", tensor, err)
		}
		for _, id := range ids {
			if err := idx.Add(tensor, id); err != nil {
				return err
			}
		}
	}

	for _, name := range idx.TensorNames() {
		fmt.Printf("%s: %v (count=%d)\n", name, idx.ChunkIDs(name), idx.Count(name))
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
