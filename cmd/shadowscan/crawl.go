package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"shadowcrawler/internal/crawler"
	"shadowcrawler/internal/probe"
	"shadowcrawler/internal/workers"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl [path]",
	Short: "Crawl a directory tree into the catalog",
	Long: `Crawl walks the given directory, splits its top-level subdirectories
round-robin across concurrent lanes, and indexes every video file found.
Files whose modification time matches their stored record are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
		if _, err := os.Stat(root); err != nil {
			return fmt.Errorf("cannot access %s: %w", root, err)
		}

		if err := openStore(); err != nil {
			return err
		}

		lanes, _ := cmd.Flags().GetInt("lanes")
		if lanes < 1 {
			lanes = workers.Lanes(8)
		}
		sequential, _ := cmd.Flags().GetBool("sequential")

		thumbnailDir := filepath.Join(cacheDir, "thumbnails")
		if noThumbs, _ := cmd.Flags().GetBool("no-thumbnails"); noThumbs {
			thumbnailDir = ""
		}

		extractor := probe.NewExtractor(thumbnailDir)
		c := crawler.New(store, extractor, lanes)

		bar := progressbar.NewOptions64(
			-1,
			progressbar.OptionSetDescription("Indexing videos"),
			progressbar.OptionSetWidth(60),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprint(os.Stderr, "\n")
			}),
			progressbar.OptionSetRenderBlankState(true),
			progressbar.OptionThrottle(100*time.Millisecond),
		)
		defer func() { _ = bar.Close() }()

		c.Subscribe(func(p crawler.Progress) {
			if !p.Complete {
				_ = bar.Add(1)
			}
		})

		start := time.Now()
		var count int64
		if sequential {
			count, err = c.CrawlSequential(context.Background(), root)
		} else {
			count, err = c.Crawl(context.Background(), root)
		}
		if err != nil {
			return fmt.Errorf("crawl failed: %w", err)
		}
		_ = bar.Finish()

		snap := c.Snapshot()
		fmt.Printf("\nCrawl completed in %s\n", time.Since(start).Round(time.Millisecond))
		fmt.Printf("  Indexed: %d\n", count)
		fmt.Printf("  Skipped: %d (unchanged)\n", snap.SkippedCount)
		if snap.ErrorCount > 0 {
			fmt.Printf("  Errors:  %d (see log)\n", snap.ErrorCount)
		}
		return nil
	},
}

func init() {
	crawlCmd.Flags().Int("lanes", 0, "Number of concurrent lanes (0 = auto)")
	crawlCmd.Flags().Bool("sequential", false, "Crawl single-lane on the calling goroutine")
	crawlCmd.Flags().Bool("no-thumbnails", false, "Skip thumbnail generation")

	rootCmd.AddCommand(crawlCmd)
}
