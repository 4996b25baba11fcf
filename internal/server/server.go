package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shadowcrawler/internal/catalog"
	"shadowcrawler/internal/crawler"
	"shadowcrawler/internal/startup"
	"shadowcrawler/internal/storage"
)

type Handlers struct {
	store    *catalog.Store
	crawler  *crawler.Crawler
	analyzer *storage.Analyzer
	mediaDir string
}

func New(store *catalog.Store, c *crawler.Crawler, a *storage.Analyzer, config *startup.Config) *Handlers {
	return &Handlers{
		store:    store,
		crawler:  c,
		analyzer: a,
		mediaDir: config.MediaDir,
	}
}

// Router builds the full route table.
func (h *Handlers) Router(metricsEnabled bool) *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/videos", h.ListVideos).Methods(http.MethodGet).Name("ListVideos")
	api.HandleFunc("/videos", h.ClearVideos).Methods(http.MethodDelete).Name("ClearVideos")
	api.HandleFunc("/videos/search", h.SearchVideos).Methods(http.MethodGet).Name("SearchVideos")
	api.HandleFunc("/video", h.GetVideo).Methods(http.MethodGet).Name("GetVideo")
	api.HandleFunc("/folders", h.ListFolders).Methods(http.MethodGet).Name("ListFolders")
	api.HandleFunc("/folders/{name}/videos", h.ListFolderVideos).Methods(http.MethodGet).Name("ListFolderVideos")
	api.HandleFunc("/crawl", h.StartCrawl).Methods(http.MethodPost).Name("StartCrawl")
	api.HandleFunc("/crawl/progress", h.CrawlProgress).Methods(http.MethodGet).Name("CrawlProgress")
	api.HandleFunc("/storage", h.StorageStats).Methods(http.MethodGet).Name("StorageStats")
	api.HandleFunc("/version", h.Version).Methods(http.MethodGet).Name("Version")

	r.HandleFunc("/healthz", h.LivenessCheck).Methods(http.MethodGet).Name("Liveness")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet).Name("Readiness")

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet).Name("Metrics")
	}

	return r
}
