package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/itchan-dev/boardapi/internal/domain"
	"github.com/itchan-dev/boardapi/internal/logger"
	"github.com/itchan-dev/boardapi/internal/media"
)

var (
	gcFilesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "media_gc_files_deleted_total",
		Help: "Orphaned media files removed by the garbage collector",
	})
	gcBytesReclaimed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "media_gc_bytes_reclaimed_total",
		Help: "Bytes freed by the media garbage collector",
	})
	gcErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "media_gc_errors_total",
		Help: "Per-file errors seen by the media garbage collector",
	})
	gcLastRun = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "media_gc_last_run_timestamp_seconds",
		Help: "Unix time of the last completed media garbage collection",
	})
)

// MediaGarbageCollector removes stored files that no thread or reply points
// at. It covers crashes between storing an upload and inserting its row.
type MediaGarbageCollector struct {
	storage         GCStorage
	mediaStorage    GCMediaStorage
	safetyThreshold time.Duration

	mu               sync.Mutex
	lastCleanupStats CleanupStats
}

// CleanupStats tracks metrics from the last garbage collection run.
type CleanupStats struct {
	RunAt          time.Time
	FilesScanned   int
	OrphanedFiles  int
	FilesDeleted   int
	BytesReclaimed int64
	DurationMs     int64
	Errors         []string
}

type GCStorage interface {
	ReferencedMedia(ctx context.Context) ([]domain.Filename, error)
}

type GCMediaStorage interface {
	List(ctx context.Context, kind media.Kind) ([]media.FileInfo, error)
	Delete(ctx context.Context, kind media.Kind, name string) error
}

// NewMediaGarbageCollector creates a collector that never touches files
// younger than safetyThreshold, so uploads whose row is not committed yet
// survive.
func NewMediaGarbageCollector(storage GCStorage, mediaStorage GCMediaStorage, safetyThreshold time.Duration) *MediaGarbageCollector {
	return &MediaGarbageCollector{
		storage:         storage,
		mediaStorage:    mediaStorage,
		safetyThreshold: safetyThreshold,
	}
}

// StartBackgroundCleanup runs a cleanup every interval until ctx is done.
func (gc *MediaGarbageCollector) StartBackgroundCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	logger.Log.Info("started media garbage collector", "interval", interval, "safety_threshold", gc.safetyThreshold)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				stats, err := gc.RunCleanup(ctx)
				if err != nil {
					logger.Log.Error("media gc failed", "error", err)
					continue
				}
				logger.Log.Info("media gc completed",
					"scanned", stats.FilesScanned,
					"orphans", stats.OrphanedFiles,
					"deleted", stats.FilesDeleted,
					"bytes_reclaimed", stats.BytesReclaimed,
					"duration_ms", stats.DurationMs,
					"errors", len(stats.Errors),
				)
			case <-ctx.Done():
				logger.Log.Info("media garbage collector stopped")
				return
			}
		}
	}()
}

// RunCleanup executes a single garbage collection cycle.
func (gc *MediaGarbageCollector) RunCleanup(ctx context.Context) (CleanupStats, error) {
	startTime := time.Now()
	stats := CleanupStats{
		RunAt:  startTime,
		Errors: []string{},
	}

	// list files before references: a file stored and committed in between
	// is then seen as referenced, never as an orphan
	var files []media.FileInfo
	for _, kind := range media.Kinds {
		listed, err := gc.mediaStorage.List(ctx, kind)
		if err != nil {
			return stats, fmt.Errorf("failed to list %s: %w", kind, err)
		}
		files = append(files, listed...)
	}
	stats.FilesScanned = len(files)

	referenced, err := gc.storage.ReferencedMedia(ctx)
	if err != nil {
		return stats, err
	}
	referencedSet := make(map[domain.Filename]struct{}, len(referenced))
	for _, name := range referenced {
		referencedSet[name] = struct{}{}
	}

	for _, file := range files {
		if _, ok := referencedSet[file.Name]; ok {
			continue
		}
		if startTime.Sub(file.ModTime) < gc.safetyThreshold {
			continue
		}
		stats.OrphanedFiles++

		if err := gc.mediaStorage.Delete(ctx, file.Kind, file.Name); err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("delete error: %s/%s: %v", file.Kind, file.Name, err))
			gcErrors.Inc()
			continue
		}
		stats.FilesDeleted++
		stats.BytesReclaimed += file.Size
	}

	stats.DurationMs = time.Since(startTime).Milliseconds()
	gcFilesDeleted.Add(float64(stats.FilesDeleted))
	gcBytesReclaimed.Add(float64(stats.BytesReclaimed))
	gcLastRun.Set(float64(startTime.Unix()))

	gc.mu.Lock()
	gc.lastCleanupStats = stats
	gc.mu.Unlock()
	return stats, nil
}

func (gc *MediaGarbageCollector) LastCleanupStats() CleanupStats {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.lastCleanupStats
}
