package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"shadowcrawler/internal/probe"
	"shadowcrawler/internal/storage"
)

var storageCmd = &cobra.Command{
	Use:   "storage [path]",
	Short: "Analyze storage usage of a directory",
	Long: `Storage recursively sums file counts and byte sizes under the given
directory, tracking video files separately. Results are cached for 24
hours; pass --fresh to force a recomputation.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}

		cachePath := filepath.Join(cacheDir, "storage-stats.json")
		cache := storage.NewCache(cachePath)
		if fresh, _ := cmd.Flags().GetBool("fresh"); fresh {
			// A throwaway cache path forces a full recomputation while
			// still writing the shared cache afterwards.
			cache = storage.NewCache(filepath.Join(os.TempDir(), fmt.Sprintf("shadowscan-stats-%d.json", time.Now().UnixNano())))
		}

		var sizer storage.Sizer
		if probeSizes, _ := cmd.Flags().GetBool("probe-sizes"); probeSizes {
			sizer = probe.NewExtractor("")
		}

		analyzer := storage.NewAnalyzer(sizer, cache)
		analyzer.Subscribe(func(p storage.Progress) {
			if !p.Complete {
				fmt.Fprintf(os.Stderr, "\r%d files, %s", p.FilesProcessed, formatBytes(p.TotalSize))
			}
		})

		stats, err := analyzer.Analyze(context.Background(), dir)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
		fmt.Fprint(os.Stderr, "\r")

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Directory:\t%s\n", stats.DirectoryPath)
		fmt.Fprintf(w, "Total Files:\t%d\n", stats.TotalFiles)
		fmt.Fprintf(w, "Total Size:\t%s\n", formatBytes(stats.TotalSize))
		fmt.Fprintf(w, "Video Files:\t%d\n", stats.VideoFiles)
		fmt.Fprintf(w, "Video Size:\t%s\n", formatBytes(stats.VideoSize))
		fmt.Fprintf(w, "Last Updated:\t%s\n", time.Unix(stats.LastUpdated, 0).Format("2006-01-02 15:04:05"))
		return w.Flush()
	},
}

func init() {
	storageCmd.Flags().Bool("fresh", false, "Ignore the cached result")
	storageCmd.Flags().Bool("probe-sizes", false, "Use ffprobe container sizes for video files")

	rootCmd.AddCommand(storageCmd)
}
