// Package crawler walks a media directory tree and feeds the catalog.
//
// A crawl lists the root once, indexes root-level files inline, then
// splits the top-level subdirectories round-robin across a fixed number
// of lanes. Each lane is one goroutine that traverses its assigned
// subtrees depth-first, files before subdirectories. Files whose stored
// modification time matches the filesystem are skipped, so repeat
// crawls over an unchanged tree write nothing.
package crawler
