package observability

import (
	"fmt"
	"io"
	"runtime"
	"sort"
	"strings"
)

// WritePrometheusMetrics writes all metrics in Prometheus exposition format.
func WritePrometheusMetrics(w io.Writer, m *Metrics) error {
	snapshot := m.Snapshot()

	var sb strings.Builder

	// Admission path
	writeCounter(&sb, "chunkstore_samples_admitted_total", "Total number of samples admitted into chunks", snapshot.SamplesAdmittedTotal)
	writeCounter(&sb, "chunkstore_samples_admitted_bytes_total", "Total bytes of samples admitted", snapshot.SamplesAdmittedBytesTotal)
	writeCounter(&sb, "chunkstore_admit_errors_total", "Total number of admission errors", snapshot.AdmitErrorsTotal)
	writeHistogramStats(&sb, "chunkstore_admit_duration_seconds", "Sample admission duration", m.admitDurationSeconds)

	writeCounter(&sb, "chunkstore_tiles_written_total", "Total number of tiles written via WriteTile", snapshot.TilesWrittenTotal)
	writeCounter(&sb, "chunkstore_chunks_rotated_total", "Total number of chunk rotations (active chunk full)", snapshot.ChunksRotatedTotal)

	// Storage path
	writeCounter(&sb, "chunkstore_chunks_persisted_total", "Total number of chunks written to the storage provider", snapshot.ChunksPersistedTotal)
	writeCounter(&sb, "chunkstore_chunk_bytes_persisted_total", "Total on-disk bytes written to the storage provider", snapshot.ChunkBytesPersistedTotal)
	writeCounter(&sb, "chunkstore_persist_errors_total", "Total number of storage provider write failures", snapshot.PersistErrorsTotal)
	writeHistogramStats(&sb, "chunkstore_persist_duration_seconds", "Chunk persist duration", m.persistDurationSeconds)

	// Compression
	writeGaugeFloat(&sb, "chunkstore_compression_ratio", "Most recently observed raw/compressed byte ratio", snapshot.CompressionRatio)
	writeCounter(&sb, "chunkstore_compress_errors_total", "Total number of codec failures", snapshot.CompressErrorsTotal)

	// Read path
	writeCounter(&sb, "chunkstore_reads_total", "Total number of ReadSample calls", snapshot.ReadsTotal)
	writeCounter(&sb, "chunkstore_read_errors_total", "Total number of failed ReadSample calls", snapshot.ReadErrorsTotal)
	writeHistogramStats(&sb, "chunkstore_read_duration_seconds", "Sample read duration", m.readDurationSeconds)

	// Catalog cache
	writeCounter(&sb, "chunkstore_cache_hits_total", "Total number of catalog LRU cache hits", snapshot.CacheHitsTotal)
	writeCounter(&sb, "chunkstore_cache_misses_total", "Total number of catalog LRU cache misses", snapshot.CacheMissesTotal)
	writeGauge(&sb, "chunkstore_cache_size", "Current number of entries held in the catalog LRU", snapshot.CacheSize)

	// System/runtime metrics
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	writeGauge(&sb, "chunkstore_goroutines", "Number of goroutines", int64(runtime.NumGoroutine()))
	writeGauge(&sb, "chunkstore_memory_alloc_bytes", "Bytes allocated and still in use", int64(memStats.Alloc))
	writeGauge(&sb, "chunkstore_memory_sys_bytes", "Bytes obtained from system", int64(memStats.Sys))
	writeCounter(&sb, "chunkstore_gc_runs_total", "Total number of GC runs", int64(memStats.NumGC))
	writeHistogramStats(&sb, "chunkstore_gc_duration_seconds", "GC duration", m.gcDurationSeconds)

	_, err := w.Write([]byte(sb.String()))
	return err
}

func writeCounter(sb *strings.Builder, name, help string, value int64) {
	sb.WriteString(fmt.Sprintf("# HELP %s %s\n", name, help))
	sb.WriteString(fmt.Sprintf("# TYPE %s counter\n", name))
	sb.WriteString(fmt.Sprintf("%s %d\n", name, value))
	sb.WriteString("\n")
}

func writeGauge(sb *strings.Builder, name, help string, value int64) {
	sb.WriteString(fmt.Sprintf("# HELP %s %s\n", name, help))
	sb.WriteString(fmt.Sprintf("# TYPE %s gauge\n", name))
	sb.WriteString(fmt.Sprintf("%s %d\n", name, value))
	sb.WriteString("\n")
}

func writeGaugeFloat(sb *strings.Builder, name, help string, value float64) {
	sb.WriteString(fmt.Sprintf("# HELP %s %s\n", name, help))
	sb.WriteString(fmt.Sprintf("# TYPE %s gauge\n", name))
	sb.WriteString(fmt.Sprintf("%s %f\n", name, value))
	sb.WriteString("\n")
}

func writeHistogramStats(sb *strings.Builder, name, help string, hist *Histogram) {
	stats := hist.GetStats()

	sb.WriteString(fmt.Sprintf("# HELP %s %s\n", name, help))
	sb.WriteString(fmt.Sprintf("# TYPE %s summary\n", name))

	if stats.Count > 0 {
		sb.WriteString(fmt.Sprintf("%s{quantile=\"0.5\"} %f\n", name, stats.P50))
		sb.WriteString(fmt.Sprintf("%s{quantile=\"0.9\"} %f\n", name, stats.P90))
		sb.WriteString(fmt.Sprintf("%s{quantile=\"0.95\"} %f\n", name, stats.P95))
		sb.WriteString(fmt.Sprintf("%s{quantile=\"0.99\"} %f\n", name, stats.P99))
		sb.WriteString(fmt.Sprintf("%s_sum %f\n", name, stats.Sum))
		sb.WriteString(fmt.Sprintf("%s_count %d\n", name, stats.Count))
	} else {
		sb.WriteString(fmt.Sprintf("%s_sum 0\n", name))
		sb.WriteString(fmt.Sprintf("%s_count 0\n", name))
	}
	sb.WriteString("\n")
}

// GetMetricsSummary returns a human-readable summary of all metrics.
func GetMetricsSummary(m *Metrics) string {
	snapshot := m.Snapshot()
	var sb strings.Builder

	sb.WriteString("=== chunkstore Metrics Summary ===\n\n")

	sb.WriteString("Admission:\n")
	sb.WriteString(fmt.Sprintf("  Samples Admitted: %d (%.2f MB)\n",
		snapshot.SamplesAdmittedTotal,
		float64(snapshot.SamplesAdmittedBytesTotal)/(1024*1024)))
	sb.WriteString(fmt.Sprintf("  Admit Errors: %d\n", snapshot.AdmitErrorsTotal))
	sb.WriteString(fmt.Sprintf("  Tiles Written: %d\n", snapshot.TilesWrittenTotal))
	sb.WriteString(fmt.Sprintf("  Chunks Rotated: %d\n", snapshot.ChunksRotatedTotal))

	if admitStats := m.admitDurationSeconds.GetStats(); admitStats.Count > 0 {
		sb.WriteString(fmt.Sprintf("  Admit Latency: p50=%.3fms p95=%.3fms p99=%.3fms\n",
			admitStats.P50*1000, admitStats.P95*1000, admitStats.P99*1000))
	}

	sb.WriteString("\nStorage:\n")
	sb.WriteString(fmt.Sprintf("  Chunks Persisted: %d\n", snapshot.ChunksPersistedTotal))
	sb.WriteString(fmt.Sprintf("  Bytes Persisted: %.2f MB\n", float64(snapshot.ChunkBytesPersistedTotal)/(1024*1024)))
	sb.WriteString(fmt.Sprintf("  Persist Errors: %d\n", snapshot.PersistErrorsTotal))

	sb.WriteString("\nCompression:\n")
	sb.WriteString(fmt.Sprintf("  Ratio (raw/compressed): %.2fx\n", snapshot.CompressionRatio))
	sb.WriteString(fmt.Sprintf("  Codec Errors: %d\n", snapshot.CompressErrorsTotal))

	sb.WriteString("\nReads:\n")
	sb.WriteString(fmt.Sprintf("  Total Reads: %d\n", snapshot.ReadsTotal))
	sb.WriteString(fmt.Sprintf("  Errors: %d\n", snapshot.ReadErrorsTotal))

	if readStats := m.readDurationSeconds.GetStats(); readStats.Count > 0 {
		sb.WriteString(fmt.Sprintf("  Read Latency: p50=%.3fms p95=%.3fms p99=%.3fms\n",
			readStats.P50*1000, readStats.P95*1000, readStats.P99*1000))
	}

	sb.WriteString("\nCatalog Cache:\n")
	sb.WriteString(fmt.Sprintf("  Hits: %d  Misses: %d  Size: %d\n",
		snapshot.CacheHitsTotal, snapshot.CacheMissesTotal, snapshot.CacheSize))

	sb.WriteString("\nSystem:\n")
	sb.WriteString(fmt.Sprintf("  Goroutines: %d\n", snapshot.GoroutinesCount))
	sb.WriteString(fmt.Sprintf("  Memory Allocated: %.2f MB\n", float64(snapshot.MemoryAllocBytes)/(1024*1024)))

	return sb.String()
}

// MetricsList returns a sorted list of all available metric names.
func MetricsList() []string {
	metrics := []string{
		"chunkstore_samples_admitted_total",
		"chunkstore_samples_admitted_bytes_total",
		"chunkstore_admit_errors_total",
		"chunkstore_admit_duration_seconds",
		"chunkstore_tiles_written_total",
		"chunkstore_chunks_rotated_total",
		"chunkstore_chunks_persisted_total",
		"chunkstore_chunk_bytes_persisted_total",
		"chunkstore_persist_errors_total",
		"chunkstore_persist_duration_seconds",
		"chunkstore_compression_ratio",
		"chunkstore_compress_errors_total",
		"chunkstore_reads_total",
		"chunkstore_read_errors_total",
		"chunkstore_read_duration_seconds",
		"chunkstore_cache_hits_total",
		"chunkstore_cache_misses_total",
		"chunkstore_cache_size",
		"chunkstore_goroutines",
		"chunkstore_memory_alloc_bytes",
		"chunkstore_memory_sys_bytes",
		"chunkstore_gc_runs_total",
		"chunkstore_gc_duration_seconds",
	}
	sort.Strings(metrics)
	return metrics
}
