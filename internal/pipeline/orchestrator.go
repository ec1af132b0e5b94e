// Package pipeline drives one download cycle per completed session:
// fetch, optional trim, preview extraction, delivery, deferred cleanup.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/mediabot/core/logger"
	"github.com/m3rciful/mediabot/internal/media"
	"github.com/m3rciful/mediabot/internal/progress"
	"github.com/m3rciful/mediabot/internal/session"
)

// Cleaner defers file removal; satisfied by cleanup.Scheduler.
type Cleaner interface {
	Schedule(path string, delay time.Duration)
}

// Options tune one orchestrator instance.
type Options struct {
	// WorkDir is the root of the download working directory. Each run
	// works inside a per-user subdirectory so two users reusing the same
	// base filename never collide.
	WorkDir string
	// CleanupDelay is how long delivered files stay on disk.
	CleanupDelay time.Duration
	// PreviewLength is the length of the preview clip taken from
	// position zero of the canonical output.
	PreviewLength time.Duration
	// EditInterval throttles progress edits of the status message.
	EditInterval time.Duration
}

// Orchestrator runs completed sessions. It is the sole writer of a session
// while the session is in StageRunning.
type Orchestrator struct {
	sessions   *session.Store
	fetcher    media.Fetcher
	transcoder media.Transcoder
	gateway    Gateway
	cleaner    Cleaner
	opts       Options
}

// NewOrchestrator wires an orchestrator. Zero options fall back to a 30s
// cleanup delay and a 10s preview.
func NewOrchestrator(sessions *session.Store, fetcher media.Fetcher, transcoder media.Transcoder, gateway Gateway, cleaner Cleaner, opts Options) *Orchestrator {
	if opts.CleanupDelay <= 0 {
		opts.CleanupDelay = 30 * time.Second
	}
	if opts.PreviewLength <= 0 {
		opts.PreviewLength = 10 * time.Second
	}
	return &Orchestrator{
		sessions:   sessions,
		fetcher:    fetcher,
		transcoder: transcoder,
		gateway:    gateway,
		cleaner:    cleaner,
		opts:       opts,
	}
}

// Start launches a run on its own goroutine so dialogue handling for other
// users stays responsive.
func (o *Orchestrator) Start(userID int64, snap session.Session) {
	go o.Run(context.Background(), userID, snap)
}

// Run processes every locator of the snapshot in order, isolating
// per-locator failures, then resets the session back to the input stage.
func (o *Orchestrator) Run(ctx context.Context, userID int64, snap session.Session) {
	defer o.sessions.Reset(userID)

	ctx = logger.WithUpdateMeta(ctx, 0, userID, 0)

	status, err := o.gateway.SendText(userID, "🛠 Preparing download...")
	if err != nil {
		logger.Warn(ctx, "pipeline", "status.send.fail",
			slog.String("err", err.Error()),
		)
	}

	for i, locator := range snap.Locators {
		start := time.Now()
		jobCtx := logger.WithHandler(ctx, "job."+strconv.Itoa(i))
		if err := o.runJob(jobCtx, userID, status, snap, locator); err != nil {
			logger.Error(jobCtx, "pipeline", "job.fail",
				slog.String("status", "fail"),
				slog.String("locator", logger.SanitizeLimit(locator, 128)),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
				slog.Duration("duration", logger.Took(start)),
			)
			continue
		}
		logger.Info(jobCtx, "pipeline", "job.done",
			slog.String("status", "ok"),
			slog.String("locator", logger.SanitizeLimit(locator, 128)),
			slog.Duration("duration", logger.Took(start)),
		)
	}
}

// runJob performs fetch → trim → preview → delivery → deferred cleanup for
// one locator. It reports failures to the user itself and returns the
// underlying error for logging.
func (o *Orchestrator) runJob(ctx context.Context, userID int64, status Message, snap session.Session, locator string) error {
	base := strings.TrimSpace(snap.FilenameBase)
	if base == "" {
		base = uuid.NewString()
	}
	name := base + "." + string(snap.Format)

	dir := filepath.Join(o.opts.WorkDir, strconv.FormatInt(userID, 10))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		o.notify(userID, "❌ Could not prepare the working directory.")
		return fmt.Errorf("workdir: %w", err)
	}
	outputPath := filepath.Join(dir, name)

	reporter := progress.NewReporter(func(text string) error {
		return o.gateway.EditText(status, text)
	}, o.opts.EditInterval)

	if err := o.fetcher.Fetch(ctx, locator, snap.Format, outputPath, reporter.Update); err != nil {
		// yt-dlp may leave a partial file behind.
		_ = os.Remove(outputPath)
		o.notify(userID, "❌ Download failed for:\n"+locator)
		return fmt.Errorf("fetch: %w", err)
	}

	canonical := outputPath
	if snap.Trim != nil {
		trimmed := taggedPath(outputPath, "_trimmed")
		err := o.transcoder.Process(ctx, canonical, trimmed, media.Window{
			Start: snap.Trim.Start,
			End:   snap.Trim.End,
		})
		if err != nil {
			// Never deliver an untrimmed file silently.
			_ = os.Remove(canonical)
			o.notify(userID, "❌ Trimming failed; nothing was delivered for "+name)
			return fmt.Errorf("trim: %w", err)
		}
		// The pre-trim file is removed right away, not deferred.
		_ = os.Remove(canonical)
		canonical = trimmed
	}

	// Preview is best effort; a failure here must not block delivery.
	previewPath := taggedPath(canonical, "_preview")
	if err := o.transcoder.Process(ctx, canonical, previewPath, media.Window{Duration: o.opts.PreviewLength}); err != nil {
		logger.Warn(ctx, "pipeline", "preview.fail",
			slog.String("file", canonical),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	} else {
		if err := o.gateway.SendAudio(userID, previewPath, "🎧 Preview clip"); err != nil {
			logger.Warn(ctx, "pipeline", "preview.send.fail",
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
		}
		// The preview is fully disposable either way.
		_ = os.Remove(previewPath)
	}

	deliveryErr := o.gateway.SendAudio(userID, canonical, "✅ Done: "+name)
	if deliveryErr != nil {
		o.notify(userID, "❌ Sending the file failed. Please try again later.")
	}

	// Scheduled even when delivery failed so storage never leaks.
	o.cleaner.Schedule(canonical, o.opts.CleanupDelay)

	if deliveryErr != nil {
		return fmt.Errorf("deliver: %w", deliveryErr)
	}
	return nil
}

func (o *Orchestrator) notify(userID int64, text string) {
	if _, err := o.gateway.SendText(userID, text); err != nil {
		logger.Warn(context.Background(), "pipeline", "notify.fail",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
	}
}

// taggedPath inserts a tag before the extension: song.mp3 -> song_preview.mp3.
func taggedPath(path, tag string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + tag + ext
}
