// Package dialog advances per-user sessions through the fixed sequence of
// choices: input, filename, format, optional trim. Routing is exhaustive
// by stage: each event type only acts in the stage that expects it.
package dialog

import (
	"log/slog"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/mediabot/core/logger"
	"github.com/m3rciful/mediabot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/mediabot/core/telegram/helpers"
	"github.com/m3rciful/mediabot/core/telegram/keyboard"
	"github.com/m3rciful/mediabot/internal/media"
	"github.com/m3rciful/mediabot/internal/session"
)

// Callback keys bound in the registry.
const (
	CallbackPick   = "pick"
	CallbackFormat = "format"
	CallbackCancel = "cancel"
)

const skipKeyword = "skip"

// Runner launches a pipeline run for a completed session.
type Runner interface {
	Start(userID int64, snap session.Session)
}

// Options tune dialogue behaviour.
type Options struct {
	// SearchLimit caps how many search results are offered; 0 means 5.
	SearchLimit int
}

// Dialog routes user events onto the session state machine.
type Dialog struct {
	sessions *session.Store
	searcher media.Searcher
	runner   Runner
	limit    int
}

// New wires a Dialog over the shared session store.
func New(sessions *session.Store, searcher media.Searcher, runner Runner, opts Options) *Dialog {
	limit := opts.SearchLimit
	if limit <= 0 {
		limit = 5
	}
	return &Dialog{
		sessions: sessions,
		searcher: searcher,
		runner:   runner,
		limit:    limit,
	}
}

// InProgress reports whether text events belong to an active dialogue.
// Implements the router FSM contract.
func (d *Dialog) InProgress(userID int64) bool {
	return d.sessions.InProgress(userID)
}

// ManagerHandler dispatches a text event to the handler of the user's
// current stage. Implements the router FSM contract.
func (d *Dialog) ManagerHandler(c tele.Context) error {
	userID := c.Sender().ID
	stage := d.sessions.Stage(userID)
	logger.Debug(tghelpers.BuildContext(c), "tg", "dialog.dispatch",
		slog.Int64("user_id", userID),
		slog.String("stage", string(stage)),
	)

	switch stage {
	case session.StageAwaitFilename:
		return d.onFilename(c)
	case session.StageAwaitFormat:
		// Format is answered by buttons; stray text here is out of order.
		return nil
	case session.StageAwaitTrim:
		return d.onTrim(c)
	case session.StageRunning:
		return tghelpers.SendText(c, "⏳ A download is already running. Please wait for it to finish.")
	default:
		return d.OnInput(c)
	}
}

// OnInput handles text while the session awaits its initial input: either
// a message carrying media links or a free-text search query.
func (d *Dialog) OnInput(c tele.Context) error {
	userID := c.Sender().ID
	text := strings.TrimSpace(c.Text())
	if text == "" {
		return nil
	}

	if media.ContainsMediaURL(text) {
		if locators := media.ExtractLocators(text); len(locators) > 0 {
			d.sessions.Update(userID, func(s *session.Session) {
				s.Locators = locators
				s.SearchResults = nil
				s.Stage = session.StageAwaitFilename
			})
			return d.askFilename(c)
		}
	}
	return d.onSearch(c, text)
}

func (d *Dialog) onSearch(c tele.Context, query string) error {
	ctx := tghelpers.BuildContext(c)
	results, err := d.searcher.Search(ctx, query, d.limit)
	if err != nil {
		logger.Warn(ctx, "tg", "search.fail",
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}
	if len(results) == 0 {
		return tghelpers.SendText(c, "🔍 No results found. Try different words or send a link.")
	}

	userID := c.Sender().ID
	d.sessions.Update(userID, func(s *session.Session) {
		s.SearchResults = results
	})

	buttons := make([]keyboard.InlineBtn, len(results))
	for i, r := range results {
		buttons[i] = keyboard.InlineBtn{
			Text:   r.Title,
			Unique: CallbackPick,
			Data:   itoa(i),
		}
	}
	return tghelpers.SendText(c, "🔍 Search results:", &tele.SendOptions{
		ReplyMarkup: keyboard.InlineButtons(buttons),
	})
}

// OnSearchPick handles selection of one search result. The selection sets
// locators to exactly that locator and advances straight to the filename
// prompt, skipping URL re-parsing.
func (d *Dialog) OnSearchPick(c tele.Context) error {
	userID := c.Sender().ID
	if d.sessions.Stage(userID) != session.StageAwaitInput {
		return nil
	}

	idx, err := callbacks.PayloadInt(c)
	snap := d.sessions.Get(userID)
	if err != nil || idx < 0 || idx >= len(snap.SearchResults) {
		return nil
	}
	locator := snap.SearchResults[idx].Locator

	d.sessions.Update(userID, func(s *session.Session) {
		s.Locators = []string{locator}
		s.SearchResults = nil
		s.Stage = session.StageAwaitFilename
	})

	_ = c.Edit("✅ Selected:\n" + locator)
	return d.askFilename(c)
}

func (d *Dialog) askFilename(c tele.Context) error {
	return tghelpers.SendText(c, "📛 Enter a file name (without extension):")
}

func (d *Dialog) onFilename(c tele.Context) error {
	userID := c.Sender().ID
	// An effectively empty name is allowed; the pipeline substitutes a
	// generated token.
	name := strings.TrimSpace(c.Text())
	d.sessions.Update(userID, func(s *session.Session) {
		s.FilenameBase = name
		s.Stage = session.StageAwaitFormat
	})

	row := make([]keyboard.InlineBtn, 0, len(media.Formats()))
	for _, f := range media.Formats() {
		row = append(row, keyboard.InlineBtn{
			Text:   strings.ToUpper(string(f)),
			Unique: CallbackFormat,
			Data:   string(f),
		})
	}
	markup := keyboard.InlineButtonsRows(row)
	return tghelpers.SendText(c, "🎵 Choose an audio format:", &tele.SendOptions{
		ReplyMarkup: markup,
	})
}

// OnFormatPick handles the format button press.
func (d *Dialog) OnFormatPick(c tele.Context) error {
	userID := c.Sender().ID
	if d.sessions.Stage(userID) != session.StageAwaitFormat {
		return nil
	}

	format, ok := media.ParseFormat(callbacks.CallbackPayload(c))
	if !ok {
		_ = c.Respond(&tele.CallbackResponse{Text: "Unknown format"})
		return nil
	}

	d.sessions.Update(userID, func(s *session.Session) {
		s.Format = format
		s.Stage = session.StageAwaitTrim
	})
	return tghelpers.EditOrSendMD(c, "⏱ Optional: send a range like `0:10-2:30`, or type `skip`.")
}

func (d *Dialog) onTrim(c tele.Context) error {
	userID := c.Sender().ID
	text := strings.TrimSpace(c.Text())

	var trim *session.TrimRange
	if !strings.EqualFold(text, skipKeyword) {
		parsed, err := parseTrimRange(text)
		if err != nil {
			// Re-prompt, no session mutation.
			return tghelpers.SendMD(c, "❌ Invalid range. Send something like `0:10-1:30`, or type `skip`.")
		}
		trim = parsed
	}

	var snap session.Session
	d.sessions.Update(userID, func(s *session.Session) {
		s.Trim = trim
		s.Stage = session.StageRunning
		snap = s.Snapshot()
	})

	d.runner.Start(userID, snap)
	return nil
}

// OnCancel aborts an in-dialogue session. A running pipeline is not
// interrupted; its completion resets the session anyway.
func (d *Dialog) OnCancel(c tele.Context) error {
	userID := c.Sender().ID
	if d.sessions.Stage(userID) == session.StageRunning {
		_ = c.Respond(&tele.CallbackResponse{Text: "Download already running"})
		return nil
	}
	d.sessions.Reset(userID)
	return tghelpers.EditOrSendMD(c, "Cancelled. Send a link or search term to start over.")
}

// Reset clears the user's dialogue unless a pipeline run owns it.
func (d *Dialog) Reset(userID int64) bool {
	if d.sessions.Stage(userID) == session.StageRunning {
		return false
	}
	d.sessions.Reset(userID)
	return true
}
