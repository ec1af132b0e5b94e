// Package app assembles the bot: configuration, session store, dialogue
// handlers, media backends, pipeline, and Telegram wiring.
package app

import (
	"context"
	"fmt"
	"os"

	coretelegram "github.com/m3rciful/mediabot/core/telegram"
	"github.com/m3rciful/mediabot/core/telegram/router"
	tgsender "github.com/m3rciful/mediabot/core/telegram/sender"
	"github.com/m3rciful/mediabot/internal/cleanup"
	"github.com/m3rciful/mediabot/internal/dialog"
	"github.com/m3rciful/mediabot/internal/media"
	"github.com/m3rciful/mediabot/internal/pipeline"
	"github.com/m3rciful/mediabot/internal/session"
)

// App owns the long-lived components of the bot process.
type App struct {
	cfg      *Config
	sessions *session.Store
	cleaner  *cleanup.Scheduler
	gateway  *telegramGateway
	dialog   *dialog.Dialog

	dispatcher *tgsender.Dispatcher
}

// New builds the application from validated configuration.
func New(cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}
	if err := os.MkdirAll(cfg.Media.DownloadDir, 0o755); err != nil {
		return nil, fmt.Errorf("app: create download dir: %w", err)
	}

	sessions := session.NewStore()
	cleaner := cleanup.NewScheduler()
	gateway := &telegramGateway{}

	ytdlp := media.NewYTDLP(cfg.Media.YTDLPBinary, cfg.Media.FetchTimeout())
	ffmpeg := media.NewFFmpeg(cfg.Media.FFmpegBinary, cfg.Media.TranscodeTimeout())

	orchestrator := pipeline.NewOrchestrator(sessions, ytdlp, ffmpeg, gateway, cleaner, pipeline.Options{
		WorkDir:       cfg.Media.DownloadDir,
		CleanupDelay:  cfg.Media.CleanupDelay(),
		PreviewLength: cfg.Media.PreviewLength(),
		EditInterval:  cfg.Media.ProgressInterval(),
	})

	dlg := dialog.New(sessions, ytdlp, orchestrator, dialog.Options{
		SearchLimit: cfg.Media.SearchLimit,
	})

	return &App{
		cfg:      cfg,
		sessions: sessions,
		cleaner:  cleaner,
		gateway:  gateway,
		dialog:   dlg,
	}, nil
}

// TelegramRunOptions wires registry, routes, and lifecycle hooks for the
// core Telegram runtime.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	a.registerCommands(reg)

	// Idle users' text goes to the dialogue input step.
	reg.SetTextFallback(a.dialog.OnInput)

	if err := reg.RegisterCallback(dialog.CallbackPick, a.dialog.OnSearchPick); err != nil {
		return coretelegram.RunOptions{}, err
	}
	if err := reg.RegisterCallback(dialog.CallbackFormat, a.dialog.OnFormatPick); err != nil {
		return coretelegram.RunOptions{}, err
	}
	if err := reg.RegisterCallback(dialog.CallbackCancel, a.dialog.OnCancel); err != nil {
		return coretelegram.RunOptions{}, err
	}

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Core.Telegram.AdminID,
	})
	routes = append(routes, router.TextRoutes(a.dialog, reg, router.TextOptions{})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))

	return coretelegram.RunOptions{
		Config:      &a.cfg.Core,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(&a.cfg.Core, nil),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			a.gateway.Bind(rt.Bot)
			a.dispatcher = rt.Dispatcher
			return nil
		},
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			a.cleaner.Close()
			return nil
		},
	}, nil
}
