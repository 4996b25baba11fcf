package server

import (
	"net/http"
	"runtime"

	"shadowcrawler/internal/logging"
	"shadowcrawler/internal/startup"
)

// LivenessCheck reports that the process is up.
func (h *Handlers) LivenessCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "alive"})
}

// ReadinessResponse contains the readiness check response
type ReadinessResponse struct {
	Status       string `json:"status"`
	Crawling     bool   `json:"crawling"`
	TotalVideos  int    `json:"totalVideos"`
	TotalFolders int    `json:"totalFolders"`
	GoVersion    string `json:"goVersion"`
	NumGoroutine int    `json:"numGoroutine"`
}

// ReadinessCheck reports readiness by verifying the catalog answers
// queries.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.CatalogStats(r.Context())
	if err != nil {
		logging.Error("readiness check failed: %v", err)
		writeJSONError(w, "catalog unavailable", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, ReadinessResponse{
		Status:       "ready",
		Crawling:     h.crawler.Snapshot().Running,
		TotalVideos:  stats.TotalVideos,
		TotalFolders: stats.TotalFolders,
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
	})
}

// Version returns build information.
func (h *Handlers) Version(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, startup.GetBuildInfo())
}
