// Shadowscan is a command-line companion to the shadowcrawler server.
//
// It crawls media directories into the shared SQLite catalog, analyzes
// storage usage, and prints catalog statistics:
//
//	shadowscan crawl /media --lanes 4
//	shadowscan storage /media --fresh
//	shadowscan stats
package main
