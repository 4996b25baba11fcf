package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"shadowcrawler/internal/catalog"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog statistics",
	Long:  `Display catalog database location, size, and aggregate record counts.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := openStore(); err != nil {
			return err
		}

		fileInfo, err := os.Stat(dbPath)
		if err != nil {
			return fmt.Errorf("cannot access catalog database: %w", err)
		}

		absPath, err := filepath.Abs(dbPath)
		if err != nil {
			absPath = dbPath
		}

		ctx := context.Background()
		stats, err := store.CatalogStats(ctx)
		if err != nil {
			return fmt.Errorf("failed to read catalog stats: %w", err)
		}

		fmt.Println("Catalog Statistics")
		fmt.Println("==================")
		fmt.Println()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Database Path:\t%s\n", absPath)
		fmt.Fprintf(w, "Database Size:\t%s\n", formatBytes(fileInfo.Size()))
		fmt.Fprintf(w, "Last Modified:\t%s\n", fileInfo.ModTime().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "\n")
		fmt.Fprintf(w, "Total Videos:\t%d\n", stats.TotalVideos)
		fmt.Fprintf(w, "Total Folders:\t%d\n", stats.TotalFolders)
		fmt.Fprintf(w, "Total Video Bytes:\t%s\n", formatBytes(stats.TotalBytes))
		if err := w.Flush(); err != nil {
			return err
		}

		folders, err := store.DistinctFolders(ctx)
		if err != nil {
			return fmt.Errorf("failed to list folders: %w", err)
		}
		if len(folders) == 0 {
			return nil
		}

		fmt.Println()
		fmt.Println("Folder Breakdown")
		fmt.Println("----------------")
		fmt.Println()

		w2 := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w2, "FOLDER\tVIDEOS\tSIZE")
		fmt.Fprintln(w2, "------\t------\t----")

		for _, folder := range folders {
			records, err := store.ListByFolder(ctx, folder, catalog.SortByName, catalog.SortAsc)
			if err != nil {
				return fmt.Errorf("failed to list folder %s: %w", folder, err)
			}
			var size int64
			for _, rec := range records {
				size += rec.FileSize
			}
			fmt.Fprintf(w2, "%s\t%d\t%s\n", folder, len(records), formatBytes(size))
		}
		return w2.Flush()
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
