package observability

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects and exposes chunkstore operational metrics in
// Prometheus format: everything a write/read path through pkg/chunk,
// pkg/compression, pkg/storage, and pkg/catalog would want an operator to
// watch.
type Metrics struct {
	// Admission path (pkg/chunk.ExtendIfHasSpace / WriteTile)
	samplesAdmittedTotal      atomic.Int64
	samplesAdmittedBytesTotal atomic.Int64
	admitErrorsTotal          atomic.Int64
	admitDurationSeconds      *Histogram

	tilesWrittenTotal  atomic.Int64
	chunksRotatedTotal atomic.Int64

	// Storage path (pkg/storage.Provider)
	chunksPersistedTotal     atomic.Int64
	chunkBytesPersistedTotal atomic.Int64
	persistErrorsTotal       atomic.Int64
	persistDurationSeconds   *Histogram

	// Compression (pkg/compression.Registry)
	compressionRatioBits atomic.Uint64 // math.Float64bits of the last observed raw/compressed ratio
	compressErrorsTotal  atomic.Int64

	// Read path (pkg/chunk.ReadSample)
	readsTotal          atomic.Int64
	readErrorsTotal     atomic.Int64
	readDurationSeconds *Histogram

	// Catalog cache (pkg/catalog.LRU)
	cacheHitsTotal   atomic.Int64
	cacheMissesTotal atomic.Int64
	cacheSize        atomic.Int64

	// System metrics
	goroutinesCount   atomic.Int64
	memoryAllocBytes  atomic.Int64
	gcDurationSeconds *Histogram
}

var (
	globalMetrics     *Metrics
	globalMetricsOnce sync.Once
)

// GetGlobalMetrics returns the singleton metrics instance.
func GetGlobalMetrics() *Metrics {
	globalMetricsOnce.Do(func() {
		globalMetrics = NewMetrics()
	})
	return globalMetrics
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{
		admitDurationSeconds:   NewHistogram("admit_duration_seconds"),
		persistDurationSeconds: NewHistogram("persist_duration_seconds"),
		readDurationSeconds:    NewHistogram("read_duration_seconds"),
		gcDurationSeconds:      NewHistogram("gc_duration_seconds"),
	}
}

// RecordSamplesAdmitted records a successful ExtendIfHasSpace (or WriteTile)
// admission.
func (m *Metrics) RecordSamplesAdmitted(count int64, bytes int64) {
	m.samplesAdmittedTotal.Add(count)
	m.samplesAdmittedBytesTotal.Add(bytes)
}

// RecordAdmitError records a failed admission attempt.
func (m *Metrics) RecordAdmitError() {
	m.admitErrorsTotal.Add(1)
}

// RecordAdmitDuration records how long admission took.
func (m *Metrics) RecordAdmitDuration(d time.Duration) {
	m.admitDurationSeconds.Observe(d.Seconds())
}

// RecordTileWritten records one WriteTile call against a fresh chunk.
func (m *Metrics) RecordTileWritten() {
	m.tilesWrittenTotal.Add(1)
}

// RecordChunkRotated records that the active chunk was full and a new one
// was opened in its place.
func (m *Metrics) RecordChunkRotated() {
	m.chunksRotatedTotal.Add(1)
}

// RecordChunkPersisted records a successful Provider.Set of a chunk's bytes.
func (m *Metrics) RecordChunkPersisted(bytes int64, d time.Duration) {
	m.chunksPersistedTotal.Add(1)
	m.chunkBytesPersistedTotal.Add(bytes)
	m.persistDurationSeconds.Observe(d.Seconds())
}

// RecordPersistError records a failed Provider.Set.
func (m *Metrics) RecordPersistError() {
	m.persistErrorsTotal.Add(1)
}

// RecordCompressionRatio records raw/compressed for the most recent chunk
// or sample compression, as a gauge (not an average across the run).
func (m *Metrics) RecordCompressionRatio(rawBytes, compressedBytes int) {
	if compressedBytes <= 0 {
		return
	}
	ratio := float64(rawBytes) / float64(compressedBytes)
	m.compressionRatioBits.Store(math.Float64bits(ratio))
}

// RecordCompressError records a codec failure.
func (m *Metrics) RecordCompressError() {
	m.compressErrorsTotal.Add(1)
}

// RecordRead records a ReadSample call.
func (m *Metrics) RecordRead(d time.Duration) {
	m.readsTotal.Add(1)
	m.readDurationSeconds.Observe(d.Seconds())
}

// RecordReadError records a failed ReadSample call.
func (m *Metrics) RecordReadError() {
	m.readErrorsTotal.Add(1)
}

// RecordCacheHit and RecordCacheMiss track pkg/catalog.LRU's hit rate.
func (m *Metrics) RecordCacheHit()  { m.cacheHitsTotal.Add(1) }
func (m *Metrics) RecordCacheMiss() { m.cacheMissesTotal.Add(1) }

// SetCacheSize records the catalog LRU's current entry count.
func (m *Metrics) SetCacheSize(n int64) {
	m.cacheSize.Store(n)
}

// SetGoroutinesCount sets the current goroutine count.
func (m *Metrics) SetGoroutinesCount(count int64) {
	m.goroutinesCount.Store(count)
}

// SetMemoryAlloc sets the current memory allocation.
func (m *Metrics) SetMemoryAlloc(bytes int64) {
	m.memoryAllocBytes.Store(bytes)
}

// RecordGC records a garbage collection pause.
func (m *Metrics) RecordGC(d time.Duration) {
	m.gcDurationSeconds.Observe(d.Seconds())
}

// MetricsSnapshot is a point-in-time copy of every counter/gauge in Metrics.
type MetricsSnapshot struct {
	SamplesAdmittedTotal      int64
	SamplesAdmittedBytesTotal int64
	AdmitErrorsTotal          int64

	TilesWrittenTotal  int64
	ChunksRotatedTotal int64

	ChunksPersistedTotal     int64
	ChunkBytesPersistedTotal int64
	PersistErrorsTotal       int64

	CompressionRatio    float64
	CompressErrorsTotal int64

	ReadsTotal      int64
	ReadErrorsTotal int64

	CacheHitsTotal   int64
	CacheMissesTotal int64
	CacheSize        int64

	GoroutinesCount  int64
	MemoryAllocBytes int64
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	return &MetricsSnapshot{
		SamplesAdmittedTotal:      m.samplesAdmittedTotal.Load(),
		SamplesAdmittedBytesTotal: m.samplesAdmittedBytesTotal.Load(),
		AdmitErrorsTotal:          m.admitErrorsTotal.Load(),

		TilesWrittenTotal:  m.tilesWrittenTotal.Load(),
		ChunksRotatedTotal: m.chunksRotatedTotal.Load(),

		ChunksPersistedTotal:     m.chunksPersistedTotal.Load(),
		ChunkBytesPersistedTotal: m.chunkBytesPersistedTotal.Load(),
		PersistErrorsTotal:       m.persistErrorsTotal.Load(),

		CompressionRatio:    math.Float64frombits(m.compressionRatioBits.Load()),
		CompressErrorsTotal: m.compressErrorsTotal.Load(),

		ReadsTotal:      m.readsTotal.Load(),
		ReadErrorsTotal: m.readErrorsTotal.Load(),

		CacheHitsTotal:   m.cacheHitsTotal.Load(),
		CacheMissesTotal: m.cacheMissesTotal.Load(),
		CacheSize:        m.cacheSize.Load(),

		GoroutinesCount:  m.goroutinesCount.Load(),
		MemoryAllocBytes: m.memoryAllocBytes.Load(),
	}
}
