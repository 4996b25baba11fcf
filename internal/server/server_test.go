package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"shadowcrawler/internal/catalog"
	"shadowcrawler/internal/crawler"
	"shadowcrawler/internal/probe"
	"shadowcrawler/internal/startup"
	"shadowcrawler/internal/storage"
)

type fakeExtractor struct{}

func (fakeExtractor) Extract(_ context.Context, _ string) (*probe.Result, error) {
	duration := 60.0
	codec := "h264"
	return &probe.Result{Duration: &duration, Codec: &codec}, nil
}

func newTestHandlers(t *testing.T) (*Handlers, *catalog.Store) {
	t.Helper()

	base := t.TempDir()
	store, err := catalog.New(context.Background(), filepath.Join(base, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	config := &startup.Config{
		MediaDir:       filepath.Join(base, "media"),
		StatsCachePath: filepath.Join(base, "stats.json"),
	}
	c := crawler.New(store, fakeExtractor{}, 2)
	a := storage.NewAnalyzer(nil, storage.NewCache(config.StatsCachePath))

	return New(store, c, a, config), store
}

func seedRecords(t *testing.T, store *catalog.Store, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		folder := fmt.Sprintf("folder%d", i%2)
		name := fmt.Sprintf("video%02d.mp4", i)
		rec := &catalog.VideoRecord{
			ID:           fmt.Sprintf("%s_video%02d_mp4", folder, i),
			FolderName:   folder,
			FullPath:     fmt.Sprintf("/media/%s/%s", folder, name),
			FileName:     name,
			FileSize:     int64(100 * (i + 1)),
			CreationDate: int64(1700000000 + i),
			ModifiedDate: int64(1700000000 + i),
			IndexedAt:    time.Now().Unix(),
		}
		if err := store.Upsert(context.Background(), rec); err != nil {
			t.Fatalf("seed upsert %d failed: %v", i, err)
		}
	}
}

func doRequest(t *testing.T, h *Handlers, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.Router(true).ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestListVideos(t *testing.T) {
	h, store := newTestHandlers(t)
	seedRecords(t, store, 3)

	w := doRequest(t, h, http.MethodGet, "/api/videos")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var records []catalog.VideoRecord
	if err := json.Unmarshal(w.Body.Bytes(), &records); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("got %d records, want 3", len(records))
	}
}

func TestListVideosPaginated(t *testing.T) {
	h, store := newTestHandlers(t)
	seedRecords(t, store, 45)

	w := doRequest(t, h, http.MethodGet, "/api/videos?page=1&pageSize=20")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var page catalog.Page
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(page.Items) != 20 {
		t.Errorf("got %d items, want 20", len(page.Items))
	}
	if !page.HasMore {
		t.Error("expected hasMore=true on first page of 45")
	}
	if page.TotalCount != 45 {
		t.Errorf("total = %d, want 45", page.TotalCount)
	}
}

func TestListVideosSorted(t *testing.T) {
	h, store := newTestHandlers(t)
	seedRecords(t, store, 5)

	w := doRequest(t, h, http.MethodGet, "/api/videos?sort=size&order=asc")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var records []catalog.VideoRecord
	if err := json.Unmarshal(w.Body.Bytes(), &records); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	for i := 1; i < len(records); i++ {
		if records[i-1].FileSize > records[i].FileSize {
			t.Errorf("size order violated at %d", i)
		}
	}
}

func TestGetVideo(t *testing.T) {
	h, store := newTestHandlers(t)
	seedRecords(t, store, 1)

	w := doRequest(t, h, http.MethodGet, "/api/video?path=/media/folder0/video00.mp4")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var rec catalog.VideoRecord
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if rec.FileName != "video00.mp4" {
		t.Errorf("file name = %q, want video00.mp4", rec.FileName)
	}
}

func TestGetVideoNotFound(t *testing.T) {
	h, _ := newTestHandlers(t)

	w := doRequest(t, h, http.MethodGet, "/api/video?path=/media/missing.mp4")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetVideoMissingParam(t *testing.T) {
	h, _ := newTestHandlers(t)

	w := doRequest(t, h, http.MethodGet, "/api/video")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSearchVideos(t *testing.T) {
	h, store := newTestHandlers(t)
	seedRecords(t, store, 12)

	w := doRequest(t, h, http.MethodGet, "/api/videos/search?q=video07")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var records []catalog.VideoRecord
	if err := json.Unmarshal(w.Body.Bytes(), &records); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].FileName != "video07.mp4" {
		t.Errorf("file name = %q, want video07.mp4", records[0].FileName)
	}
}

func TestSearchVideosMissingParam(t *testing.T) {
	h, _ := newTestHandlers(t)

	w := doRequest(t, h, http.MethodGet, "/api/videos/search")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestListFolders(t *testing.T) {
	h, store := newTestHandlers(t)
	seedRecords(t, store, 4)

	w := doRequest(t, h, http.MethodGet, "/api/folders")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var folders []string
	if err := json.Unmarshal(w.Body.Bytes(), &folders); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(folders) != 2 {
		t.Fatalf("got %d folders, want 2", len(folders))
	}
	if folders[0] != "folder0" || folders[1] != "folder1" {
		t.Errorf("folders = %v, want [folder0 folder1]", folders)
	}
}

func TestListFolderVideos(t *testing.T) {
	h, store := newTestHandlers(t)
	seedRecords(t, store, 6)

	w := doRequest(t, h, http.MethodGet, "/api/folders/folder1/videos")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var records []catalog.VideoRecord
	if err := json.Unmarshal(w.Body.Bytes(), &records); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	for _, rec := range records {
		if rec.FolderName != "folder1" {
			t.Errorf("record %s in folder %s, want folder1", rec.FileName, rec.FolderName)
		}
	}
}

func TestClearVideos(t *testing.T) {
	h, store := newTestHandlers(t)
	seedRecords(t, store, 3)

	w := doRequest(t, h, http.MethodDelete, "/api/videos")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d after clear, want 0", count)
	}
}

func TestCrawlProgressInitiallyIdle(t *testing.T) {
	h, _ := newTestHandlers(t)

	w := doRequest(t, h, http.MethodGet, "/api/crawl/progress")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var progress crawler.Progress
	if err := json.Unmarshal(w.Body.Bytes(), &progress); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if progress.Running {
		t.Error("expected crawler to be idle")
	}
}

func TestStorageStatsMissingDir(t *testing.T) {
	h, _ := newTestHandlers(t)

	// MediaDir in the test config is never created.
	w := doRequest(t, h, http.MethodGet, "/api/storage")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	h, _ := newTestHandlers(t)

	w := doRequest(t, h, http.MethodGet, "/healthz")
	if w.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", w.Code)
	}

	w = doRequest(t, h, http.MethodGet, "/readyz")
	if w.Code != http.StatusOK {
		t.Fatalf("readyz status = %d, want 200", w.Code)
	}

	var ready ReadinessResponse
	if err := json.Unmarshal(w.Body.Bytes(), &ready); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if ready.Status != "ready" {
		t.Errorf("status = %q, want ready", ready.Status)
	}
}

func TestVersion(t *testing.T) {
	h, _ := newTestHandlers(t)

	w := doRequest(t, h, http.MethodGet, "/api/version")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var info startup.BuildInfo
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if info.Version == "" {
		t.Error("version not populated")
	}
}

func TestMetricsRoute(t *testing.T) {
	h, _ := newTestHandlers(t)

	w := doRequest(t, h, http.MethodGet, "/metrics")
	if w.Code != http.StatusOK {
		t.Errorf("metrics status = %d, want 200", w.Code)
	}

	router := h.Router(false)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code == http.StatusOK {
		t.Error("metrics route should be absent when disabled")
	}
}
