// Package probe extracts technical metadata from media files via ffprobe
// and renders preview thumbnails via ffmpeg. Tool failures degrade per file
// rather than aborting a crawl.
package probe
