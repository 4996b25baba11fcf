package classify

import "testing"

func TestIsVideo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fileName string
		want     bool
	}{
		{"lowercase mp4", "clip.mp4", true},
		{"uppercase extension", "clip.MP4", true},
		{"mixed case extension", "holiday.MkV", true},
		{"mov file", "IMG_0042.mov", true},
		{"webm file", "screen.webm", true},
		{"windows junk", "Thumbs.db", false},
		{"mac junk", ".DS_Store", false},
		{"desktop ini", "desktop.ini", false},
		{"no extension", "noext", false},
		{"text file", "movie.txt", false},
		{"image file", "poster.jpg", false},
		{"subtitle file", "movie.srt", false},
		{"dot only", "archive.", false},
		{"video name junk extension", "video.db", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IsVideo(tt.fileName); got != tt.want {
				t.Errorf("IsVideo(%q) = %v, want %v", tt.fileName, got, tt.want)
			}
		})
	}
}

// Skip-list matching is exact and case-sensitive: a name that differs from a
// junk entry only by case is classified on its extension like anything else.
func TestSkipListCaseSensitive(t *testing.T) {
	t.Parallel()

	if IsVideo("THUMBS.DB") {
		t.Error("THUMBS.DB has a non-video extension, should not be indexable")
	}
	if !IsVideo("Thumbs.mp4") {
		t.Error("Thumbs.mp4 is a video despite resembling a junk name")
	}
}

func TestExtensionsReturnsCopy(t *testing.T) {
	t.Parallel()

	exts := Extensions()
	if len(exts) == 0 {
		t.Fatal("Extensions() returned empty set")
	}

	seen := make(map[string]bool, len(exts))
	for _, ext := range exts {
		if ext[0] != '.' {
			t.Errorf("extension %q missing leading dot", ext)
		}
		if seen[ext] {
			t.Errorf("duplicate extension %q", ext)
		}
		seen[ext] = true
	}
	if !seen[".mp4"] || !seen[".mkv"] {
		t.Errorf("expected .mp4 and .mkv in %v", exts)
	}
}
