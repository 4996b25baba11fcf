package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"shadowcrawler/internal/catalog"
	"shadowcrawler/internal/logging"
)

// writeJSON encodes v as JSON and writes it to the response writer.
// Encoding errors are logged since the handler cannot recover from them.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		logging.Error("failed to encode JSON error response: %v", err)
	}
}

// parseSortParams maps the sort and order query parameters to catalog
// sort settings. Unknown values fall back to creation date descending.
func parseSortParams(r *http.Request) (catalog.SortField, catalog.SortOrder) {
	field := catalog.SortByCreated
	switch r.URL.Query().Get("sort") {
	case "modified":
		field = catalog.SortByModified
	case "name":
		field = catalog.SortByName
	case "size":
		field = catalog.SortBySize
	case "created", "":
	default:
		logging.Debug("unknown sort field %q, using created", r.URL.Query().Get("sort"))
	}

	order := catalog.SortDesc
	if r.URL.Query().Get("order") == "asc" {
		order = catalog.SortAsc
	}
	return field, order
}

// parsePageParams returns (page, pageSize, paginated). Pagination is
// requested by supplying a page parameter.
func parsePageParams(r *http.Request) (int, int, bool) {
	q := r.URL.Query()
	if q.Get("page") == "" {
		return 0, 0, false
	}

	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	pageSize := 50
	if raw := q.Get("pageSize"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			pageSize = parsed
		}
	}
	return page, pageSize, true
}
