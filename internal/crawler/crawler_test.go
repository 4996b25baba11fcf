package crawler

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"shadowcrawler/internal/catalog"
	"shadowcrawler/internal/probe"
)

type fakeExtractor struct {
	mu       sync.Mutex
	noStream map[string]bool
	calls    int
}

func (f *fakeExtractor) Extract(_ context.Context, path string) (*probe.Result, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.noStream[filepath.Base(path)] {
		return nil, probe.ErrNoStream
	}

	duration := 120.5
	width := 1280
	height := 720
	fps := 30.0
	codec := "h264"
	return &probe.Result{
		Duration: &duration,
		Width:    &width,
		Height:   &height,
		FPS:      &fps,
		Codec:    &codec,
	}, nil
}

func (f *fakeExtractor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestStore(t *testing.T) *catalog.Store {
	t.Helper()

	store, err := catalog.New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return store
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte("fake video data"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func TestSplitLanes(t *testing.T) {
	t.Parallel()

	dirs := []string{"a", "b", "c", "d", "e"}
	lanes := SplitLanes(dirs, 2)

	if len(lanes) != 2 {
		t.Fatalf("got %d lanes, want 2", len(lanes))
	}
	want0 := []string{"a", "c", "e"}
	want1 := []string{"b", "d"}
	for i, d := range want0 {
		if lanes[0][i] != d {
			t.Errorf("lane 0[%d] = %q, want %q", i, lanes[0][i], d)
		}
	}
	for i, d := range want1 {
		if lanes[1][i] != d {
			t.Errorf("lane 1[%d] = %q, want %q", i, lanes[1][i], d)
		}
	}
}

func TestSplitLanesFairness(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 3, 7, 16} {
		for _, l := range []int{1, 2, 3, 5} {
			dirs := make([]string, n)
			for i := range dirs {
				dirs[i] = string(rune('a' + i))
			}
			lanes := SplitLanes(dirs, l)

			seen := make(map[string]bool)
			for _, lane := range lanes {
				if len(lane) < n/l || len(lane) > (n+l-1)/l {
					t.Errorf("n=%d l=%d: lane size %d outside [%d, %d]", n, l, len(lane), n/l, (n+l-1)/l)
				}
				for _, d := range lane {
					if seen[d] {
						t.Errorf("n=%d l=%d: %q assigned twice", n, l, d)
					}
					seen[d] = true
				}
			}
			if len(seen) != n {
				t.Errorf("n=%d l=%d: %d dirs assigned, want %d", n, l, len(seen), n)
			}
		}
	}
}

func TestSplitLanesClampsLaneCount(t *testing.T) {
	t.Parallel()

	lanes := SplitLanes([]string{"a", "b"}, 0)
	if len(lanes) != 1 {
		t.Fatalf("got %d lanes, want 1", len(lanes))
	}
	if len(lanes[0]) != 2 {
		t.Errorf("lane 0 has %d dirs, want 2", len(lanes[0]))
	}
}

func TestSanitizeID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		folder, file string
		want         string
	}{
		{"movies", "clip.mp4", "movies_clip_mp4"},
		{"my movies", "a b.mp4", "my_movies_a_b_mp4"},
		{"vidéos", "clip.mp4", "vid__os_clip_mp4"},
		{"folder-1", "clip_v2.mkv", "folder-1_clip_v2_mkv"},
	}

	for _, tt := range tests {
		if got := SanitizeID(tt.folder, tt.file); got != tt.want {
			t.Errorf("SanitizeID(%q, %q) = %q, want %q", tt.folder, tt.file, got, tt.want)
		}
	}
}

func TestCrawlIndexesTree(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "intro.mp4"))
	writeFile(t, filepath.Join(root, "notes.txt"))
	writeFile(t, filepath.Join(root, "Thumbs.db"))
	writeFile(t, filepath.Join(root, "shows", "pilot.mkv"))
	writeFile(t, filepath.Join(root, "shows", "season1", "ep1.mp4"))
	writeFile(t, filepath.Join(root, "movies", "feature.avi"))

	store := newTestStore(t)
	ext := &fakeExtractor{}
	c := New(store, ext, 2)

	count, err := c.Crawl(context.Background(), root)
	if err != nil {
		t.Fatalf("crawl failed: %v", err)
	}
	if count != 4 {
		t.Errorf("indexed %d records, want 4", count)
	}

	got, err := store.GetByPath(context.Background(), filepath.Join(root, "shows", "season1", "ep1.mp4"))
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil {
		t.Fatal("nested file not indexed")
	}
	if got.FolderName != "season1" {
		t.Errorf("folder name = %q, want season1", got.FolderName)
	}
	if got.Codec == nil || *got.Codec != "h264" {
		t.Errorf("codec = %v, want h264", got.Codec)
	}

	// Non-video files never reach the extractor.
	if ext.callCount() != 4 {
		t.Errorf("extractor called %d times, want 4", ext.callCount())
	}
}

func TestCrawlIdempotent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "one.mp4"))
	writeFile(t, filepath.Join(root, "b", "two.mp4"))

	store := newTestStore(t)
	ext := &fakeExtractor{}
	c := New(store, ext, 2)

	first, err := c.Crawl(context.Background(), root)
	if err != nil {
		t.Fatalf("first crawl failed: %v", err)
	}
	if first != 2 {
		t.Fatalf("first crawl indexed %d, want 2", first)
	}

	second, err := c.Crawl(context.Background(), root)
	if err != nil {
		t.Fatalf("second crawl failed: %v", err)
	}
	if second != 0 {
		t.Errorf("second crawl indexed %d, want 0 for unchanged tree", second)
	}

	snap := c.Snapshot()
	if snap.SkippedCount != 2 {
		t.Errorf("second crawl skipped %d, want 2", snap.SkippedCount)
	}
}

func TestCrawlNoStreamNotPersisted(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "good.mp4"))
	writeFile(t, filepath.Join(root, "corrupt.mp4"))

	store := newTestStore(t)
	ext := &fakeExtractor{noStream: map[string]bool{"corrupt.mp4": true}}
	c := New(store, ext, 1)

	count, err := c.Crawl(context.Background(), root)
	if err != nil {
		t.Fatalf("crawl failed: %v", err)
	}
	if count != 1 {
		t.Errorf("indexed %d, want 1", count)
	}

	got, err := store.GetByPath(context.Background(), filepath.Join(root, "corrupt.mp4"))
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Error("file with no video stream must not be persisted")
	}

	snap := c.Snapshot()
	if snap.ErrorCount != 0 {
		t.Errorf("no-stream files must not count as errors, got %d", snap.ErrorCount)
	}
}

func TestCrawlMissingRootFatal(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	c := New(store, &fakeExtractor{}, 1)

	_, err := c.Crawl(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatal("expected error for missing root directory")
	}
}

func TestCrawlProgressObservers(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "one.mp4"))
	writeFile(t, filepath.Join(root, "a", "two.mp4"))

	store := newTestStore(t)
	c := New(store, &fakeExtractor{}, 1)

	var mu sync.Mutex
	var updates []Progress
	var completes []Progress
	c.Subscribe(func(p Progress) {
		mu.Lock()
		defer mu.Unlock()
		if p.Complete {
			completes = append(completes, p)
		} else {
			updates = append(updates, p)
		}
	})
	var secondSawComplete bool
	c.Subscribe(func(p Progress) {
		mu.Lock()
		defer mu.Unlock()
		if p.Complete {
			secondSawComplete = true
		}
	})

	if _, err := c.Crawl(context.Background(), root); err != nil {
		t.Fatalf("crawl failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(updates) != 2 {
		t.Errorf("got %d incremental updates, want 2", len(updates))
	}
	if len(completes) != 1 {
		t.Fatalf("got %d completion signals, want 1", len(completes))
	}
	if completes[0].IndexedCount != 2 {
		t.Errorf("completion total = %d, want 2", completes[0].IndexedCount)
	}
	if !secondSawComplete {
		t.Error("second subscriber never saw completion")
	}
}

func TestCrawlRejectsConcurrentRun(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	c := New(store, &fakeExtractor{}, 1)

	if err := c.start(1); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	if _, err := c.Crawl(context.Background(), t.TempDir()); err != ErrCrawlRunning {
		t.Errorf("got %v, want ErrCrawlRunning", err)
	}
}

func TestBuildRecordFallbacks(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "clip.mp4")
	writeFile(t, path)

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}

	rec := buildRecord("root", path, info, &probe.Result{})
	if rec.CreationDate != info.ModTime().Unix() {
		t.Errorf("creation date = %d, want modification time %d", rec.CreationDate, info.ModTime().Unix())
	}
	if rec.FileSize != info.Size() {
		t.Errorf("file size = %d, want stat size %d", rec.FileSize, info.Size())
	}
	if rec.ID != "root_clip_mp4" {
		t.Errorf("id = %q, want root_clip_mp4", rec.ID)
	}
}
