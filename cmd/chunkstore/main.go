package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "chunkstore",
	Short: "chunkstore - a tensor chunk storage toolkit",
	Long: `chunkstore admits array, scalar, text, and image samples into
fixed-budget chunks on local disk, the way a Hub-style dataset engine
packs samples into chunks between min_chunk_size and max_chunk_size.

This is a demonstration CLI over pkg/chunk, pkg/meta, pkg/compression,
pkg/storage, and pkg/catalog -- not a server.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

func init() {
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(inspectCmd)
}
