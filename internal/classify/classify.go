package classify

import (
	"path/filepath"
	"strings"
)

// skipNames are OS and application metadata files that show up inside media
// folders. Matching is exact and case-sensitive.
var skipNames = map[string]struct{}{
	"Thumbs.db":    {},
	"thumbs.db":    {},
	".DS_Store":    {},
	"._.DS_Store":  {},
	"desktop.ini":  {},
	"ehthumbs.db":  {},
	".directory":   {},
	".nomedia":     {},
	"AlbumArt.jpg": {},
}

// videoExtensions is the set of container extensions treated as indexable
// video. Keys are lower-case and include the leading dot.
var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".avi":  {},
	".mov":  {},
	".mkv":  {},
	".webm": {},
	".flv":  {},
	".wmv":  {},
	".m4v":  {},
}

// IsVideo reports whether a file name should be indexed as a video.
// Skip-listed names are rejected first, then anything without an extension,
// then anything whose lower-cased extension is not a known video container.
func IsVideo(name string) bool {
	if _, skip := skipNames[name]; skip {
		return false
	}

	ext := filepath.Ext(name)
	if ext == "" {
		return false
	}

	_, ok := videoExtensions[strings.ToLower(ext)]
	return ok
}

// Extensions returns the recognized video container extensions.
// The result is a copy; callers may modify it freely.
func Extensions() []string {
	exts := make([]string, 0, len(videoExtensions))
	for ext := range videoExtensions {
		exts = append(exts, ext)
	}
	return exts
}
