// Package classify decides whether a filesystem entry is an indexable video
// file, based on its name and extension.
package classify
