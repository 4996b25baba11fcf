package crawler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"shadowcrawler/internal/catalog"
	"shadowcrawler/internal/classify"
	"shadowcrawler/internal/logging"
	"shadowcrawler/internal/metrics"
	"shadowcrawler/internal/probe"
)

// ErrCrawlRunning is returned when a crawl is requested while another
// crawl is already in progress.
var ErrCrawlRunning = errors.New("a crawl is already running")

// Extractor produces metadata for a single video file.
type Extractor interface {
	Extract(ctx context.Context, path string) (*probe.Result, error)
}

// Progress is a point-in-time snapshot of a crawl.
type Progress struct {
	Running      bool   `json:"running"`
	IndexedCount int64  `json:"indexedCount"`
	SkippedCount int64  `json:"skippedCount"`
	ErrorCount   int64  `json:"errorCount"`
	CurrentFile  string `json:"currentFile,omitempty"`
	Complete     bool   `json:"complete"`
	Lanes        int    `json:"lanes,omitempty"`
	StartedAt    int64  `json:"startedAt,omitempty"`
	FinishedAt   int64  `json:"finishedAt,omitempty"`
}

// Crawler walks a directory tree, extracts metadata for every video
// file, and upserts the resulting records into the catalog.
type Crawler struct {
	store     *catalog.Store
	extractor Extractor
	lanes     int

	mu        sync.Mutex
	progress  Progress
	observers []func(Progress)

	visitMu sync.Mutex
	visited map[string]bool
}

// New creates a Crawler writing to store. lanes controls how many
// concurrent traversal goroutines a crawl uses; values below 1 are
// treated as 1.
func New(store *catalog.Store, extractor Extractor, lanes int) *Crawler {
	if lanes < 1 {
		lanes = 1
	}
	return &Crawler{
		store:     store,
		extractor: extractor,
		lanes:     lanes,
	}
}

// Subscribe registers a callback invoked with a progress snapshot after
// every record write and once more when the crawl completes. Callbacks
// run on crawler goroutines and must not block.
func (c *Crawler) Subscribe(fn func(Progress)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// Snapshot returns the current progress state.
func (c *Crawler) Snapshot() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress
}

// SplitLanes assigns directories to lanes round-robin: dirs[i] goes to
// lane i mod lanes, preserving discovery order within each lane.
func SplitLanes(dirs []string, lanes int) [][]string {
	if lanes < 1 {
		lanes = 1
	}
	out := make([][]string, lanes)
	for i, dir := range dirs {
		out[i%lanes] = append(out[i%lanes], dir)
	}
	return out
}

// Crawl indexes every video file at or below root using the configured
// lane count and returns the number of records written. Only one crawl
// may run at a time.
func (c *Crawler) Crawl(ctx context.Context, root string) (int64, error) {
	return c.crawl(ctx, root, c.lanes)
}

// CrawlSequential indexes root on the calling goroutine with a single
// lane. Per-file semantics are identical to Crawl.
func (c *Crawler) CrawlSequential(ctx context.Context, root string) (int64, error) {
	return c.crawl(ctx, root, 1)
}

func (c *Crawler) crawl(ctx context.Context, root string, lanes int) (int64, error) {
	if err := c.start(lanes); err != nil {
		return 0, err
	}
	start := time.Now()

	metrics.CrawlerRunsTotal.Inc()
	metrics.CrawlerIsRunning.Set(1)
	metrics.CrawlerLanes.Set(float64(lanes))

	c.visitMu.Lock()
	c.visited = make(map[string]bool)
	c.visitMu.Unlock()
	c.markVisited(root)

	logging.Info("Starting crawl of %s with %d lane(s)", root, lanes)

	entries, err := os.ReadDir(root)
	if err != nil {
		c.finish(start)
		return 0, err
	}

	var files []os.DirEntry
	var subdirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			subdirs = append(subdirs, filepath.Join(root, entry.Name()))
		} else {
			files = append(files, entry)
		}
	}

	// Root-level files go first, before any lane starts.
	for _, entry := range files {
		if ctx.Err() != nil {
			break
		}
		c.processFile(ctx, root, entry)
	}

	assignments := SplitLanes(subdirs, lanes)

	var wg sync.WaitGroup
	for lane, dirs := range assignments {
		if len(dirs) == 0 {
			continue
		}
		wg.Add(1)
		go func(lane int, dirs []string) {
			defer wg.Done()
			for _, dir := range dirs {
				if ctx.Err() != nil {
					return
				}
				logging.Debug("lane %d: crawling %s", lane, dir)
				c.crawlDir(ctx, dir)
			}
		}(lane, dirs)
	}
	wg.Wait()

	total := c.finish(start)
	logging.Info("Crawl of %s complete: %d indexed, %d skipped, %d errors in %s",
		root, total.IndexedCount, total.SkippedCount, total.ErrorCount,
		time.Since(start).Round(time.Millisecond))

	return total.IndexedCount, ctx.Err()
}

// crawlDir processes one directory depth-first: files before
// subdirectories. Read failures abort only this subtree.
func (c *Crawler) crawlDir(ctx context.Context, dir string) {
	if !c.markVisited(dir) {
		logging.Warn("skipping already-visited directory (symlink cycle?): %s", dir)
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		logging.Warn("failed to read directory %s: %v", dir, err)
		c.countError()
		return
	}

	var subdirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			subdirs = append(subdirs, filepath.Join(dir, entry.Name()))
			continue
		}
		if ctx.Err() != nil {
			return
		}
		c.processFile(ctx, dir, entry)
	}

	for _, sub := range subdirs {
		if ctx.Err() != nil {
			return
		}
		c.crawlDir(ctx, sub)
	}
}

func (c *Crawler) processFile(ctx context.Context, dir string, entry os.DirEntry) {
	name := entry.Name()
	if !classify.IsVideo(name) {
		return
	}

	fullPath := filepath.Join(dir, name)
	info, err := entry.Info()
	if err != nil {
		logging.Warn("failed to stat %s: %v", fullPath, err)
		c.countError()
		return
	}

	existing, err := c.store.GetByPath(ctx, fullPath)
	if err != nil {
		logging.Warn("lookup failed for %s: %v", fullPath, err)
		c.countError()
		return
	}
	if existing != nil && existing.ModifiedDate == info.ModTime().Unix() {
		c.countSkipped()
		return
	}

	result, err := c.extractor.Extract(ctx, fullPath)
	if err != nil {
		if errors.Is(err, probe.ErrNoStream) {
			logging.Debug("no usable video stream in %s", fullPath)
		} else {
			logging.Warn("metadata extraction failed for %s: %v", fullPath, err)
			c.countError()
		}
		return
	}

	rec := buildRecord(filepath.Base(dir), fullPath, info, result)
	if err := c.store.Upsert(ctx, rec); err != nil {
		logging.Error("failed to store record for %s: %v", fullPath, err)
		c.countError()
		return
	}

	c.countIndexed(fullPath)
}

// markVisited resolves dir through any symlinks and records it. It
// returns false if the resolved path was seen before in this crawl.
func (c *Crawler) markVisited(dir string) bool {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		resolved = dir
	}

	c.visitMu.Lock()
	defer c.visitMu.Unlock()
	if c.visited[resolved] {
		return false
	}
	c.visited[resolved] = true
	return true
}

func (c *Crawler) start(lanes int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.progress.Running {
		return ErrCrawlRunning
	}
	c.progress = Progress{
		Running:   true,
		Lanes:     lanes,
		StartedAt: time.Now().Unix(),
	}
	return nil
}

func (c *Crawler) finish(start time.Time) Progress {
	c.mu.Lock()
	c.progress.Running = false
	c.progress.Complete = true
	c.progress.CurrentFile = ""
	c.progress.FinishedAt = time.Now().Unix()
	snapshot := c.progress
	observers := c.observers
	c.mu.Unlock()

	metrics.CrawlerIsRunning.Set(0)
	metrics.CrawlerLastRunTimestamp.Set(float64(snapshot.FinishedAt))
	metrics.CrawlerLastRunDuration.Set(time.Since(start).Seconds())

	for _, fn := range observers {
		fn(snapshot)
	}
	return snapshot
}

func (c *Crawler) countIndexed(file string) {
	metrics.CrawlerFilesIndexed.Inc()

	c.mu.Lock()
	c.progress.IndexedCount++
	c.progress.CurrentFile = file
	snapshot := c.progress
	observers := c.observers
	c.mu.Unlock()

	for _, fn := range observers {
		fn(snapshot)
	}
}

func (c *Crawler) countSkipped() {
	metrics.CrawlerFilesSkipped.Inc()
	c.mu.Lock()
	c.progress.SkippedCount++
	c.mu.Unlock()
}

func (c *Crawler) countError() {
	metrics.CrawlerErrors.Inc()
	c.mu.Lock()
	c.progress.ErrorCount++
	c.mu.Unlock()
}
