package crawler

import (
	"io/fs"
	"time"

	"shadowcrawler/internal/catalog"
	"shadowcrawler/internal/probe"
)

// SanitizeID builds a record identifier from the folder and file name,
// replacing every character outside [A-Za-z0-9_-] with an underscore.
func SanitizeID(folder, file string) string {
	raw := folder + "_" + file
	out := make([]byte, len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c >= 'a' && c <= 'z',
			c >= 'A' && c <= 'Z',
			c >= '0' && c <= '9',
			c == '_', c == '-':
			out[i] = c
		default:
			out[i] = '_'
		}
	}
	return string(out)
}

// buildRecord assembles a catalog record from the file's stat info and
// probe result. The creation date prefers the container's creation_time
// tag, then falls back to the filesystem modification time.
func buildRecord(folder, fullPath string, info fs.FileInfo, res *probe.Result) *catalog.VideoRecord {
	now := time.Now()
	modTime := info.ModTime()

	creation := modTime
	if res.CreationTime != nil {
		creation = *res.CreationTime
	}

	size := info.Size()
	if res.SizeBytes > 0 {
		size = res.SizeBytes
	}

	return &catalog.VideoRecord{
		ID:            SanitizeID(folder, info.Name()),
		FolderName:    folder,
		FullPath:      fullPath,
		FileName:      info.Name(),
		FileSize:      size,
		CreationDate:  creation.Unix(),
		ModifiedDate:  modTime.Unix(),
		Duration:      res.Duration,
		Width:         res.Width,
		Height:        res.Height,
		FPS:           res.FPS,
		Codec:         res.Codec,
		ThumbnailPath: res.ThumbnailPath,
		IndexedAt:     now.Unix(),
	}
}
