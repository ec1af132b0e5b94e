package app

import (
	"fmt"

	tele "gopkg.in/telebot.v4"

	coretelegram "github.com/m3rciful/mediabot/core/telegram"
	"github.com/m3rciful/mediabot/core/buildinfo"
	"github.com/m3rciful/mediabot/core/telegram/commands"
	tghelpers "github.com/m3rciful/mediabot/core/telegram/helpers"
)

func (a *App) registerCommands(reg *coretelegram.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.onStart,
		Description: "Start a new download",
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     a.onCancel,
		Description: "Abort the current dialogue",
	})
	reg.RegisterCommand("/status", commands.Command{
		Handler:     a.onStatus,
		Description: "Runtime status",
		AdminOnly:   true,
		Hidden:      true,
	})
}

func (a *App) onStart(c tele.Context) error {
	// A fresh /start abandons any half-finished dialogue, but never a
	// running download.
	a.dialog.Reset(c.Sender().ID)
	return tghelpers.SendText(c, "👋 Send a YouTube link or a search term to get started.")
}

func (a *App) onCancel(c tele.Context) error {
	if !a.dialog.Reset(c.Sender().ID) {
		return tghelpers.SendText(c, "⏳ A download is running; it cannot be cancelled.")
	}
	return tghelpers.SendText(c, "Cancelled. Send a link or search term to start over.")
}

func (a *App) onStatus(c tele.Context) error {
	var sendErrs uint64
	if a.dispatcher != nil {
		sendErrs = a.dispatcher.ErrorCount()
	}
	text := fmt.Sprintf(
		"version: %s (%s)\nactive sessions: %d\npending cleanups: %d\nsend errors: %d",
		buildinfo.Version, buildinfo.Commit,
		a.sessions.Active(),
		a.cleaner.Pending(),
		sendErrs,
	)
	return tghelpers.SendText(c, text)
}
