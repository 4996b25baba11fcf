// Package storage computes per-directory file and byte totals, with
// video files tracked separately, and caches the results on disk for
// 24 hours.
package storage
