package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"shadowcrawler/internal/logging"
)

// ListVideos returns all records, or one page when a page parameter is
// supplied. Sorting is controlled by the sort and order parameters.
func (h *Handlers) ListVideos(w http.ResponseWriter, r *http.Request) {
	field, order := parseSortParams(r)

	if page, pageSize, paginated := parsePageParams(r); paginated {
		result, err := h.store.ListPage(r.Context(), field, order, page, pageSize)
		if err != nil {
			logging.Error("failed to list videos: %v", err)
			writeJSONError(w, "failed to list videos", http.StatusInternalServerError)
			return
		}
		writeJSON(w, result)
		return
	}

	records, err := h.store.List(r.Context(), field, order)
	if err != nil {
		logging.Error("failed to list videos: %v", err)
		writeJSONError(w, "failed to list videos", http.StatusInternalServerError)
		return
	}
	writeJSON(w, records)
}

// GetVideo returns the single record for the path query parameter.
func (h *Handlers) GetVideo(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSONError(w, "path parameter is required", http.StatusBadRequest)
		return
	}

	rec, err := h.store.GetByPath(r.Context(), path)
	if err != nil {
		logging.Error("failed to look up %s: %v", path, err)
		writeJSONError(w, "lookup failed", http.StatusInternalServerError)
		return
	}
	if rec == nil {
		writeJSONError(w, "video not found", http.StatusNotFound)
		return
	}
	writeJSON(w, rec)
}

// SearchVideos returns records matching the q parameter as a
// case-insensitive substring of file name, folder name, or codec.
func (h *Handlers) SearchVideos(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		writeJSONError(w, "q parameter is required", http.StatusBadRequest)
		return
	}

	field, order := parseSortParams(r)
	records, err := h.store.Search(r.Context(), term, field, order)
	if err != nil {
		logging.Error("search for %q failed: %v", term, err)
		writeJSONError(w, "search failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, records)
}

// ListFolders returns every distinct folder name in the catalog.
func (h *Handlers) ListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.store.DistinctFolders(r.Context())
	if err != nil {
		logging.Error("failed to list folders: %v", err)
		writeJSONError(w, "failed to list folders", http.StatusInternalServerError)
		return
	}
	writeJSON(w, folders)
}

// ListFolderVideos returns records in one folder, optionally paginated.
func (h *Handlers) ListFolderVideos(w http.ResponseWriter, r *http.Request) {
	folder := mux.Vars(r)["name"]
	field, order := parseSortParams(r)

	if page, pageSize, paginated := parsePageParams(r); paginated {
		result, err := h.store.ListFolderPage(r.Context(), folder, field, order, page, pageSize)
		if err != nil {
			logging.Error("failed to list folder %s: %v", folder, err)
			writeJSONError(w, "failed to list folder", http.StatusInternalServerError)
			return
		}
		writeJSON(w, result)
		return
	}

	records, err := h.store.ListByFolder(r.Context(), folder, field, order)
	if err != nil {
		logging.Error("failed to list folder %s: %v", folder, err)
		writeJSONError(w, "failed to list folder", http.StatusInternalServerError)
		return
	}
	writeJSON(w, records)
}

// ClearVideos removes every record from the catalog.
func (h *Handlers) ClearVideos(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		logging.Error("failed to clear catalog: %v", err)
		writeJSONError(w, "failed to clear catalog", http.StatusInternalServerError)
		return
	}
	logging.Info("Catalog cleared via API")
	writeJSON(w, map[string]string{"status": "cleared"})
}
