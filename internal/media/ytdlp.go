package media

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/m3rciful/mediabot/core/logger"
)

// yt-dlp prints one line per progress tick when --newline is set:
//
//	[download]  42.3% of 3.37MiB at 1.05MiB/s ETA 00:02
var percentRe = regexp.MustCompile(`\[download\]\s+([0-9.]+)%`)

// YTDLP shells out to the yt-dlp binary for both retrieval and search.
type YTDLP struct {
	Binary  string
	Timeout time.Duration
}

// NewYTDLP builds a yt-dlp backend. An empty binary defaults to "yt-dlp"
// resolved from PATH.
func NewYTDLP(binary string, timeout time.Duration) *YTDLP {
	if strings.TrimSpace(binary) == "" {
		binary = "yt-dlp"
	}
	return &YTDLP{Binary: binary, Timeout: timeout}
}

// Fetch downloads the locator, extracts audio in the requested format, and
// writes it to outputPath. Progress percentages parsed from stdout are
// forwarded to onProgress.
func (y *YTDLP) Fetch(ctx context.Context, locator string, format AudioFormat, outputPath string, onProgress ProgressFunc) error {
	if y.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, y.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, y.Binary,
		"-f", "bestaudio/best",
		"--extract-audio",
		"--audio-format", string(format),
		"--audio-quality", "192K",
		"--newline",
		"-o", outputPath,
		locator,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("yt-dlp pipe: %w", err)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("yt-dlp start: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		if onProgress == nil {
			continue
		}
		if pct, ok := parsePercentLine(scanner.Text()); ok {
			onProgress(pct)
		}
	}

	if err := cmd.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("yt-dlp fetch timed out: %w", ctxErr)
		}
		return fmt.Errorf("yt-dlp fetch: %w: %s", err, tailOf(stderr.String(), 200))
	}

	logger.Info(ctx, "media", "fetch.done",
		slog.String("status", "ok"),
		slog.String("locator", logger.SanitizeLimit(locator, 128)),
		slog.String("format", string(format)),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}

// Search resolves a free-text query via yt-dlp's ytsearch pseudo-URL and
// returns up to limit (title, URL) pairs.
func (y *YTDLP) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}
	if y.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, y.Timeout)
		defer cancel()
	}

	target := fmt.Sprintf("ytsearch%d:%s", limit, query)
	cmd := exec.CommandContext(ctx, y.Binary,
		"--flat-playlist",
		"--print", "%(title)s\t%(url)s",
		target,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("yt-dlp search: %w: %s", err, tailOf(stderr.String(), 200))
	}

	var results []SearchResult
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		title, url, ok := strings.Cut(line, "\t")
		if !ok || url == "" {
			continue
		}
		results = append(results, SearchResult{Title: title, Locator: url})
		if len(results) == limit {
			break
		}
	}
	return results, nil
}

func parsePercentLine(line string) (float64, bool) {
	matches := percentRe.FindStringSubmatch(line)
	if len(matches) != 2 {
		return 0, false
	}
	pct, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, false
	}
	return pct, true
}

func tailOf(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max:]
}
