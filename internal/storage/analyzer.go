package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"shadowcrawler/internal/classify"
	"shadowcrawler/internal/logging"
	"shadowcrawler/internal/metrics"
)

// Progress reports every 100 files processed and once on completion.
const progressInterval = 100

// Sizer reports the container-level byte size of a media file. A nil
// Sizer makes the analyzer fall back to filesystem sizes for videos.
type Sizer interface {
	ProbeSize(ctx context.Context, path string) (int64, error)
}

// Progress is a point-in-time snapshot of a storage analysis pass.
type Progress struct {
	CurrentPath    string `json:"currentPath"`
	FilesProcessed int64  `json:"filesProcessed"`
	TotalSize      int64  `json:"totalSize"`
	Complete       bool   `json:"complete"`
}

// Analyzer recursively sums file counts and byte sizes under a root
// directory, tracking video files separately, with a cache so repeat
// requests within the freshness window skip the walk.
type Analyzer struct {
	sizer Sizer
	cache *Cache

	mu        sync.Mutex
	observers []func(Progress)
}

// NewAnalyzer creates an Analyzer backed by cache. sizer may be nil.
func NewAnalyzer(sizer Sizer, cache *Cache) *Analyzer {
	return &Analyzer{sizer: sizer, cache: cache}
}

// Subscribe registers a callback invoked on every progress interval and
// once on completion. Callbacks run on the analyzing goroutine.
func (a *Analyzer) Subscribe(fn func(Progress)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.observers = append(a.observers, fn)
}

func (a *Analyzer) notify(p Progress) {
	a.mu.Lock()
	observers := a.observers
	a.mu.Unlock()
	for _, fn := range observers {
		fn(p)
	}
}

// Analyze returns storage stats for dir, serving a cached result when
// one fresh enough exists.
func (a *Analyzer) Analyze(ctx context.Context, dir string) (*Stats, error) {
	if cached := a.cache.Get(dir); cached != nil {
		logging.Debug("serving cached storage stats for %s", dir)
		return cached, nil
	}

	metrics.StorageAnalyzerRunsTotal.Inc()
	logging.Info("Analyzing storage under %s", dir)
	start := time.Now()

	stats := &Stats{DirectoryPath: dir}
	visited := map[string]bool{}
	if err := a.walk(ctx, dir, stats, visited); err != nil {
		return nil, err
	}

	stats.LastUpdated = time.Now().Unix()
	if err := a.cache.Put(*stats); err != nil {
		logging.Warn("failed to cache storage stats for %s: %v", dir, err)
	}

	a.notify(Progress{
		CurrentPath:    dir,
		FilesProcessed: stats.TotalFiles,
		TotalSize:      stats.TotalSize,
		Complete:       true,
	})

	logging.Info("Storage analysis of %s complete: %d files (%d video) totaling %d bytes in %s",
		dir, stats.TotalFiles, stats.VideoFiles, stats.TotalSize,
		time.Since(start).Round(time.Millisecond))
	return stats, nil
}

// walk recurses depth-first. The walk only fails for the top-level
// directory; unreadable subtrees contribute zero and are logged.
func (a *Analyzer) walk(ctx context.Context, dir string, stats *Stats, visited map[string]bool) error {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		resolved = dir
	}
	if visited[resolved] {
		logging.Warn("skipping already-visited directory (symlink cycle?): %s", dir)
		return nil
	}
	visited[resolved] = true

	entries, err := os.ReadDir(dir)
	if err != nil {
		if dir == stats.DirectoryPath {
			return err
		}
		logging.Warn("failed to read directory %s: %v", dir, err)
		return nil
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if err := a.walk(ctx, path, stats, visited); err != nil {
				return err
			}
			continue
		}

		isVideo := classify.IsVideo(entry.Name())
		size := a.fileSize(ctx, path, entry, isVideo)

		stats.TotalFiles++
		stats.TotalSize += size
		if isVideo {
			stats.VideoFiles++
			stats.VideoSize += size
		}
		metrics.StorageAnalyzerFilesScanned.Inc()

		if stats.TotalFiles%progressInterval == 0 {
			a.notify(Progress{
				CurrentPath:    path,
				FilesProcessed: stats.TotalFiles,
				TotalSize:      stats.TotalSize,
			})
		}
	}
	return nil
}

// fileSize prefers the probe-reported container size for videos, then
// the filesystem size. An undeterminable size contributes zero.
func (a *Analyzer) fileSize(ctx context.Context, path string, entry os.DirEntry, isVideo bool) int64 {
	if isVideo && a.sizer != nil {
		if size, err := a.sizer.ProbeSize(ctx, path); err == nil && size > 0 {
			return size
		}
	}

	info, err := entry.Info()
	if err != nil {
		logging.Warn("failed to determine size of %s: %v", path, err)
		return 0
	}
	return info.Size()
}
