package media

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"os/exec"
)

// FFmpeg shells out to the ffmpeg binary for trim and clip operations.
type FFmpeg struct {
	Binary  string
	Timeout time.Duration
}

// NewFFmpeg builds an ffmpeg backend. An empty binary defaults to "ffmpeg"
// resolved from PATH.
func NewFFmpeg(binary string, timeout time.Duration) *FFmpeg {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	return &FFmpeg{Binary: binary, Timeout: timeout}
}

// Process writes the selected window of inputPath to outputPath.
func (f *FFmpeg) Process(ctx context.Context, inputPath, outputPath string, w Window) error {
	hasRange := w.Start != "" || w.End != ""
	if hasRange && w.Duration > 0 {
		return fmt.Errorf("ffmpeg: window has both trim range and duration")
	}
	if hasRange && (w.Start == "" || w.End == "") {
		return fmt.Errorf("ffmpeg: trim range needs both start and end")
	}
	if !hasRange && w.Duration <= 0 {
		return fmt.Errorf("ffmpeg: empty window")
	}

	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	args := []string{"-y", "-hide_banner", "-loglevel", "error"}
	if hasRange {
		// Input-side seeking, same as ffmpeg -ss/-to before -i.
		args = append(args, "-ss", w.Start, "-to", w.End)
	}
	args = append(args, "-i", inputPath)
	if w.Duration > 0 {
		args = append(args, "-t", strconv.FormatFloat(w.Duration.Seconds(), 'f', -1, 64))
	}
	args = append(args, outputPath)

	cmd := exec.CommandContext(ctx, f.Binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("ffmpeg timed out: %w", ctxErr)
		}
		return fmt.Errorf("ffmpeg: %w: %s", err, tailOf(stderr.String(), 200))
	}
	return nil
}
