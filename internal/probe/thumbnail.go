package probe

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"shadowcrawler/internal/logging"
	"shadowcrawler/internal/metrics"

	"github.com/disintegration/imaging"

	_ "image/png" // ffmpeg pipes PNG frames in the fallback path
)

const (
	// Seek offset into the stream for the preview frame.
	thumbnailOffsetSeconds = "10"

	thumbnailWidth  = 320
	thumbnailHeight = 180
)

// ThumbnailGenerator extracts one frame per video into a JPEG preview.
type ThumbnailGenerator struct {
	dir        string
	ffmpegPath string
}

// NewThumbnailGenerator creates a generator writing into dir. The directory
// is created lazily on first use; a missing ffmpeg binary disables
// generation (every Generate call returns empty).
func NewThumbnailGenerator(dir string) *ThumbnailGenerator {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		logging.Warn("ffmpeg not found in PATH, thumbnail generation disabled: %v", err)
		ffmpegPath = ""
	} else {
		logging.Debug("Using ffmpeg: %s", ffmpegPath)
	}

	return &ThumbnailGenerator{
		dir:        dir,
		ffmpegPath: ffmpegPath,
	}
}

// Generate renders a 320x180 JPEG for the frame 10 seconds into srcPath and
// returns its absolute path. Any failure returns the empty string; thumbnail
// loss is never fatal to indexing.
func (t *ThumbnailGenerator) Generate(ctx context.Context, srcPath string) string {
	if t.ffmpegPath == "" || t.dir == "" {
		return ""
	}

	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		logging.Warn("failed to create thumbnail directory %s: %v", t.dir, err)
		metrics.ThumbnailGenerationsTotal.WithLabelValues("error").Inc()
		return ""
	}

	outPath := filepath.Join(t.dir, ThumbnailName(srcPath))

	start := time.Now()
	defer func() {
		metrics.ThumbnailGenerationDuration.Observe(time.Since(start).Seconds())
	}()

	if err := t.renderToFile(ctx, srcPath, outPath); err == nil {
		metrics.ThumbnailGenerationsTotal.WithLabelValues("success").Inc()
		return outPath
	}

	// Some containers refuse direct scaled output; decode a piped frame
	// and resize it ourselves instead.
	if err := t.renderViaPipe(ctx, srcPath, outPath); err != nil {
		logging.Debug("thumbnail generation failed for %s: %v", srcPath, err)
		metrics.ThumbnailGenerationsTotal.WithLabelValues("error").Inc()
		return ""
	}

	metrics.ThumbnailGenerationsTotal.WithLabelValues("fallback").Inc()
	return outPath
}

// renderToFile asks ffmpeg to seek, grab one frame, scale, and write the
// JPEG directly.
func (t *ThumbnailGenerator) renderToFile(ctx context.Context, srcPath, outPath string) error {
	cmd := exec.CommandContext(ctx, t.ffmpegPath,
		"-ss", thumbnailOffsetSeconds,
		"-i", srcPath,
		"-vframes", "1",
		"-s", "320x180",
		"-y",
		outPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		logging.Debug("ffmpeg direct thumbnail failed for %s: %v, stderr: %s",
			srcPath, err, stderr.String())
		return err
	}
	return nil
}

// renderViaPipe pipes a single PNG frame to stdout, decodes it, fits it to
// the target box, and encodes the JPEG locally.
func (t *ThumbnailGenerator) renderViaPipe(ctx context.Context, srcPath, outPath string) error {
	cmd := exec.CommandContext(ctx, t.ffmpegPath,
		"-ss", thumbnailOffsetSeconds,
		"-i", srcPath,
		"-vframes", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		logging.Debug("ffmpeg piped thumbnail failed for %s: %v, stderr: %s",
			srcPath, err, stderr.String())
		return err
	}
	if stdout.Len() == 0 {
		return os.ErrInvalid
	}

	img, _, err := image.Decode(&stdout)
	if err != nil {
		return err
	}

	thumb := imaging.Fit(img, thumbnailWidth, thumbnailHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 80}); err != nil {
		return err
	}

	return os.WriteFile(outPath, buf.Bytes(), 0o644)
}

// ThumbnailName derives the preview file name for a source path: the base
// name with its extension stripped, plus ".jpg". A source without an
// extension keeps its full name. If the path has no usable base name, the
// whole path is flattened by replacing separators with underscores.
func ThumbnailName(srcPath string) string {
	base := filepath.Base(srcPath)
	if base == "." || base == string(filepath.Separator) || base == "" {
		flat := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(srcPath)
		return flat + ".jpg"
	}

	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base + ".jpg"
}
