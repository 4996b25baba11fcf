package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"shadowcrawler/internal/catalog"
)

var (
	dbPath   string
	cacheDir string
	store    *catalog.Store
)

var rootCmd = &cobra.Command{
	Use:   "shadowscan",
	Short: "Index media directories into a video catalog",
	Long: `Shadowscan crawls directory trees of video files, extracts their
technical metadata with ffprobe, renders thumbnails with ffmpeg, and
writes the results into a SQLite catalog. It shares its database with
the shadowcrawler server, so catalogs built here are immediately
queryable over the API.`,
	SilenceUsage: true,
}

func init() {
	v := viper.New()
	v.SetDefault("database_dir", "/database")
	v.SetDefault("cache_dir", "/cache")
	v.AutomaticEnv()

	defaultDB := filepath.Join(v.GetString("database_dir"), "catalog.db")
	defaultCache := v.GetString("cache_dir")

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "Path to the catalog database")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache", defaultCache, "Cache directory for thumbnails and stats")
}

// openStore opens the catalog store; commands that need it call this in
// their Run function so flag defaults are resolved first.
func openStore() error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	var err error
	store, err = catalog.New(context.Background(), dbPath)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	return nil
}

func closeStore() {
	if store != nil {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close catalog: %v\n", err)
		}
	}
}

func Execute() {
	defer closeStore()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
