package server

import (
	"context"
	"errors"
	"net/http"

	"shadowcrawler/internal/crawler"
	"shadowcrawler/internal/logging"
)

// StartCrawl kicks off a crawl of the media directory in the
// background. A crawl that is already running is not interrupted.
func (h *Handlers) StartCrawl(w http.ResponseWriter, r *http.Request) {
	if h.crawler.Snapshot().Running {
		writeJSONError(w, "a crawl is already running", http.StatusConflict)
		return
	}

	// The crawl outlives the request; it is stopped by process shutdown,
	// not by the client disconnecting.
	go func() {
		count, err := h.crawler.Crawl(context.Background(), h.mediaDir)
		if errors.Is(err, crawler.ErrCrawlRunning) {
			return
		}
		if err != nil {
			logging.Error("background crawl failed: %v", err)
			return
		}
		logging.Info("Background crawl finished with %d records", count)
	}()

	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, map[string]string{"status": "started"})
}

// CrawlProgress returns the current crawl progress snapshot.
func (h *Handlers) CrawlProgress(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.crawler.Snapshot())
}

// StorageStats analyzes the media directory, or the dir query parameter
// when present, serving cached results within the freshness window.
func (h *Handlers) StorageStats(w http.ResponseWriter, r *http.Request) {
	dir := r.URL.Query().Get("dir")
	if dir == "" {
		dir = h.mediaDir
	}

	stats, err := h.analyzer.Analyze(r.Context(), dir)
	if err != nil {
		logging.Error("storage analysis of %s failed: %v", dir, err)
		writeJSONError(w, "storage analysis failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, stats)
}
