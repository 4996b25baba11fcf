package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"shadowcrawler/internal/logging"
	"shadowcrawler/internal/metrics"
)

// ErrNoStream is returned when a file has no usable video stream. Tool
// absence, invocation failure, and malformed output all degrade to this
// error so a single corrupt file never halts a crawl.
var ErrNoStream = errors.New("no usable video stream")

// Result holds the technical metadata extracted from one media file.
// Nil pointer fields mean the value could not be determined.
type Result struct {
	Duration     *float64
	Width        *int
	Height       *int
	FPS          *float64
	Codec        *string
	SizeBytes    int64
	CreationTime *time.Time

	// ThumbnailPath is the absolute path of the generated preview image,
	// or empty if generation failed.
	ThumbnailPath string
}

// Extractor invokes ffprobe for metadata and ffmpeg for thumbnails.
type Extractor struct {
	ffprobePath string
	thumbs      *ThumbnailGenerator
}

// NewExtractor creates an Extractor writing thumbnails under thumbnailDir.
// A missing ffprobe binary is not an error here: extraction degrades per
// file instead, so a catalog-only deployment still starts.
func NewExtractor(thumbnailDir string) *Extractor {
	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		logging.Warn("ffprobe not found in PATH, metadata extraction disabled: %v", err)
		ffprobePath = ""
	} else {
		logging.Debug("Using ffprobe: %s", ffprobePath)
	}

	return &Extractor{
		ffprobePath: ffprobePath,
		thumbs:      NewThumbnailGenerator(thumbnailDir),
	}
}

// Thumbnails returns the extractor's thumbnail generator.
func (e *Extractor) Thumbnails() *ThumbnailGenerator {
	return e.thumbs
}

// Extract probes filePath and returns its metadata plus a thumbnail path.
// It returns ErrNoStream when the file has no video stream or the probe
// tool is unavailable or fails; thumbnail failures are absorbed.
func (e *Extractor) Extract(ctx context.Context, filePath string) (*Result, error) {
	out, err := e.run(ctx, filePath)
	if err != nil {
		return nil, err
	}

	result, err := parseProbeOutput(out)
	if err != nil {
		return nil, err
	}

	// Best effort: a record without a thumbnail is still a record.
	result.ThumbnailPath = e.thumbs.Generate(ctx, filePath)

	return result, nil
}

// ProbeSize returns the container size ffprobe reports for filePath.
func (e *Extractor) ProbeSize(ctx context.Context, filePath string) (int64, error) {
	out, err := e.run(ctx, filePath)
	if err != nil {
		return 0, err
	}

	var doc probeOutput
	if err := json.Unmarshal(out, &doc); err != nil {
		return 0, fmt.Errorf("malformed ffprobe output: %w", err)
	}

	size, err := strconv.ParseInt(doc.Format.Size, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe reported no usable size: %w", err)
	}
	return size, nil
}

// run invokes ffprobe requesting JSON container and stream info.
func (e *Extractor) run(ctx context.Context, filePath string) ([]byte, error) {
	if e.ffprobePath == "" {
		metrics.ProbeInvocationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("ffprobe unavailable: %w", ErrNoStream)
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, e.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	metrics.ProbeDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ProbeInvocationsTotal.WithLabelValues("error").Inc()
		logging.Debug("ffprobe failed for %s: %v, stderr: %s", filePath, err, stderr.String())
		return nil, fmt.Errorf("ffprobe failed for %s: %w", filePath, ErrNoStream)
	}

	return stdout.Bytes(), nil
}

// probeOutput mirrors the subset of ffprobe's JSON document the catalog
// needs. Numeric format fields arrive as strings.
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
		Size     string `json:"size"`
		Tags     struct {
			CreationTime string `json:"creation_time"`
		} `json:"tags"`
	} `json:"format"`
	Streams []probeStream `json:"streams"`
}

type probeStream struct {
	CodecType  string `json:"codec_type"`
	CodecName  string `json:"codec_name"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	RFrameRate string `json:"r_frame_rate"`
}

// parseProbeOutput decodes ffprobe JSON and maps the first video stream
// into a Result. Returns ErrNoStream if no stream has codec_type "video".
func parseProbeOutput(data []byte) (*Result, error) {
	var doc probeOutput
	if err := json.Unmarshal(data, &doc); err != nil {
		metrics.ProbeInvocationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("malformed ffprobe output: %w", ErrNoStream)
	}

	var video *probeStream
	for i := range doc.Streams {
		if doc.Streams[i].CodecType == "video" {
			video = &doc.Streams[i]
			break
		}
	}
	if video == nil {
		metrics.ProbeInvocationsTotal.WithLabelValues("no_stream").Inc()
		return nil, ErrNoStream
	}

	result := &Result{}

	if d, err := strconv.ParseFloat(doc.Format.Duration, 64); err == nil {
		result.Duration = &d
	}
	if s, err := strconv.ParseInt(doc.Format.Size, 10, 64); err == nil {
		result.SizeBytes = s
	}
	if t, err := time.Parse(time.RFC3339Nano, doc.Format.Tags.CreationTime); err == nil {
		result.CreationTime = &t
	}

	if video.Width > 0 {
		w := video.Width
		result.Width = &w
	}
	if video.Height > 0 {
		h := video.Height
		result.Height = &h
	}
	if fps := parseFrameRate(video.RFrameRate); fps != nil {
		result.FPS = fps
	}
	if video.CodecName != "" {
		codec := video.CodecName
		result.Codec = &codec
	}

	metrics.ProbeInvocationsTotal.WithLabelValues("success").Inc()
	return result, nil
}

// parseFrameRate parses a rational frame-rate string like "30000/1001".
// "0/0" and zero denominators yield nil.
func parseFrameRate(rate string) *float64 {
	num, den, found := strings.Cut(rate, "/")
	if !found {
		return nil
	}

	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return nil
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return nil
	}

	fps := n / d
	return &fps
}
