package dialog

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/mediabot/internal/media"
	"github.com/m3rciful/mediabot/internal/session"
)

// fakeCtx implements the slice of tele.Context the dialogue touches.
// Unimplemented methods panic via the embedded nil interface.
type fakeCtx struct {
	tele.Context
	user  *tele.User
	text  string
	cb    *tele.Callback
	store map[string]any

	sent    []string
	edited  []string
	markups []*tele.ReplyMarkup
}

func newFakeCtx(userID int64, text string) *fakeCtx {
	return &fakeCtx{
		user:  &tele.User{ID: userID},
		text:  text,
		store: map[string]any{},
	}
}

func newCallbackCtx(userID int64, data string) *fakeCtx {
	c := newFakeCtx(userID, "")
	c.cb = &tele.Callback{Data: data}
	return c
}

func (f *fakeCtx) Sender() *tele.User     { return f.user }
func (f *fakeCtx) Chat() *tele.Chat       { return &tele.Chat{ID: f.user.ID} }
func (f *fakeCtx) Update() tele.Update    { return tele.Update{} }
func (f *fakeCtx) Text() string           { return f.text }
func (f *fakeCtx) Callback() *tele.Callback { return f.cb }
func (f *fakeCtx) Get(key string) any     { return f.store[key] }
func (f *fakeCtx) Set(key string, v any)  { f.store[key] = v }

func (f *fakeCtx) Send(what any, opts ...any) error {
	if s, ok := what.(string); ok {
		f.sent = append(f.sent, s)
	}
	for _, o := range opts {
		if so, ok := o.(*tele.SendOptions); ok && so.ReplyMarkup != nil {
			f.markups = append(f.markups, so.ReplyMarkup)
		}
	}
	return nil
}

func (f *fakeCtx) Edit(what any, opts ...any) error {
	if s, ok := what.(string); ok {
		f.edited = append(f.edited, s)
	}
	return nil
}

func (f *fakeCtx) EditOrSend(what any, opts ...any) error { return f.Edit(what, opts...) }

func (f *fakeCtx) Respond(resp ...*tele.CallbackResponse) error { return nil }

type fakeSearcher struct {
	results []media.SearchResult
	err     error
	queries []string
	limits  []int
}

func (s *fakeSearcher) Search(ctx context.Context, query string, limit int) ([]media.SearchResult, error) {
	s.queries = append(s.queries, query)
	s.limits = append(s.limits, limit)
	return s.results, s.err
}

type fakeRunner struct {
	mu    sync.Mutex
	users []int64
	snaps []session.Session
}

func (r *fakeRunner) Start(userID int64, snap session.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, userID)
	r.snaps = append(r.snaps, snap)
}

func (r *fakeRunner) started() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

type env struct {
	store    *session.Store
	searcher *fakeSearcher
	runner   *fakeRunner
	dialog   *Dialog
}

func newEnv(results ...media.SearchResult) *env {
	e := &env{
		store:    session.NewStore(),
		searcher: &fakeSearcher{results: results},
		runner:   &fakeRunner{},
	}
	e.dialog = New(e.store, e.searcher, e.runner, Options{})
	return e
}

func TestInputWithLinksAdvancesToFilename(t *testing.T) {
	e := newEnv()
	c := newFakeCtx(7, "grab https://youtu.be/a and https://youtube.com/watch?v=b please")

	if err := e.dialog.OnInput(c); err != nil {
		t.Fatal(err)
	}

	snap := e.store.Get(7)
	want := []string{"https://youtu.be/a", "https://youtube.com/watch?v=b"}
	if !reflect.DeepEqual(snap.Locators, want) {
		t.Fatalf("locators = %v, want %v", snap.Locators, want)
	}
	if snap.Stage != session.StageAwaitFilename {
		t.Fatalf("stage = %s", snap.Stage)
	}
	if len(c.sent) != 1 || c.sent[0] != "📛 Enter a file name (without extension):" {
		t.Fatalf("sent = %v", c.sent)
	}
	if len(e.searcher.queries) != 0 {
		t.Fatal("search must not run for link input")
	}
}

func TestInputWithoutLinksRunsSearch(t *testing.T) {
	e := newEnv(
		media.SearchResult{Title: "First", Locator: "https://youtu.be/1"},
		media.SearchResult{Title: "Second", Locator: "https://youtu.be/2"},
	)
	c := newFakeCtx(7, "lofi beats")

	if err := e.dialog.OnInput(c); err != nil {
		t.Fatal(err)
	}

	if len(e.searcher.queries) != 1 || e.searcher.queries[0] != "lofi beats" {
		t.Fatalf("queries = %v", e.searcher.queries)
	}
	if e.searcher.limits[0] != 5 {
		t.Fatalf("limit = %d, want default 5", e.searcher.limits[0])
	}
	snap := e.store.Get(7)
	if snap.Stage != session.StageAwaitInput {
		t.Fatalf("stage = %s, must stay at input until a pick", snap.Stage)
	}
	if len(snap.SearchResults) != 2 {
		t.Fatalf("stored results = %d", len(snap.SearchResults))
	}
	if len(c.markups) != 1 {
		t.Fatalf("markups = %d, want one result keyboard", len(c.markups))
	}
}

func TestSearchWithoutResults(t *testing.T) {
	e := newEnv()
	e.searcher.err = errors.New("backend down")
	c := newFakeCtx(7, "qqqqq")

	if err := e.dialog.OnInput(c); err != nil {
		t.Fatal(err)
	}

	if len(c.sent) != 1 || c.sent[0] != "🔍 No results found. Try different words or send a link." {
		t.Fatalf("sent = %v", c.sent)
	}
	if e.store.InProgress(7) {
		t.Fatal("session must stay idle")
	}
}

func TestSearchPickSelectsSingleLocator(t *testing.T) {
	e := newEnv(
		media.SearchResult{Title: "First", Locator: "https://youtu.be/1"},
		media.SearchResult{Title: "Second", Locator: "https://youtu.be/2"},
		media.SearchResult{Title: "Third", Locator: "https://youtu.be/3"},
	)
	if err := e.dialog.OnInput(newFakeCtx(7, "lofi beats")); err != nil {
		t.Fatal(err)
	}

	c := newCallbackCtx(7, "pick|2")
	if err := e.dialog.OnSearchPick(c); err != nil {
		t.Fatal(err)
	}

	snap := e.store.Get(7)
	if !reflect.DeepEqual(snap.Locators, []string{"https://youtu.be/3"}) {
		t.Fatalf("locators = %v", snap.Locators)
	}
	if snap.Stage != session.StageAwaitFilename {
		t.Fatalf("stage = %s", snap.Stage)
	}
	if len(snap.SearchResults) != 0 {
		t.Fatal("results must be cleared after pick")
	}
	if len(c.edited) != 1 || c.edited[0] != "✅ Selected:\nhttps://youtu.be/3" {
		t.Fatalf("edited = %v", c.edited)
	}
}

func TestSearchPickOutOfRangeIgnored(t *testing.T) {
	e := newEnv(media.SearchResult{Title: "Only", Locator: "https://youtu.be/1"})
	if err := e.dialog.OnInput(newFakeCtx(7, "query")); err != nil {
		t.Fatal(err)
	}

	if err := e.dialog.OnSearchPick(newCallbackCtx(7, "pick|9")); err != nil {
		t.Fatal(err)
	}
	if e.store.Stage(7) != session.StageAwaitInput {
		t.Fatal("invalid pick must not advance the session")
	}
}

func TestFilenameAdvancesToFormat(t *testing.T) {
	e := newEnv()
	if err := e.dialog.OnInput(newFakeCtx(7, "https://youtu.be/a")); err != nil {
		t.Fatal(err)
	}

	c := newFakeCtx(7, "  mysong  ")
	if err := e.dialog.ManagerHandler(c); err != nil {
		t.Fatal(err)
	}

	snap := e.store.Get(7)
	if snap.FilenameBase != "mysong" {
		t.Fatalf("filename = %q", snap.FilenameBase)
	}
	if snap.Stage != session.StageAwaitFormat {
		t.Fatalf("stage = %s", snap.Stage)
	}
	if len(c.markups) != 1 {
		t.Fatal("format keyboard expected")
	}
}

func TestFormatPickAdvancesToTrim(t *testing.T) {
	e := newEnv()
	e.toFormatStage(t, 7)

	c := newCallbackCtx(7, "format|m4a")
	if err := e.dialog.OnFormatPick(c); err != nil {
		t.Fatal(err)
	}

	snap := e.store.Get(7)
	if snap.Format != media.FormatM4A {
		t.Fatalf("format = %s", snap.Format)
	}
	if snap.Stage != session.StageAwaitTrim {
		t.Fatalf("stage = %s", snap.Stage)
	}
}

func TestFormatPickWrongStageIgnored(t *testing.T) {
	e := newEnv()
	if err := e.dialog.OnFormatPick(newCallbackCtx(7, "format|mp3")); err != nil {
		t.Fatal(err)
	}
	if e.store.InProgress(7) {
		t.Fatal("pick outside the format stage must be a no-op")
	}
}

func TestUnknownFormatPayloadRejected(t *testing.T) {
	e := newEnv()
	e.toFormatStage(t, 7)

	if err := e.dialog.OnFormatPick(newCallbackCtx(7, "format|flac")); err != nil {
		t.Fatal(err)
	}
	if e.store.Stage(7) != session.StageAwaitFormat {
		t.Fatal("unknown format must not advance the session")
	}
}

func TestTrimSkipStartsRun(t *testing.T) {
	e := newEnv()
	e.toTrimStage(t, 7)

	if err := e.dialog.ManagerHandler(newFakeCtx(7, "SKIP")); err != nil {
		t.Fatal(err)
	}

	if e.runner.started() != 1 {
		t.Fatalf("runner starts = %d, want 1", e.runner.started())
	}
	snap := e.runner.snaps[0]
	if snap.Trim != nil {
		t.Fatalf("trim = %+v, want nil", snap.Trim)
	}
	if snap.Stage != session.StageRunning {
		t.Fatalf("snapshot stage = %s", snap.Stage)
	}
	if snap.FilenameBase != "mysong" || snap.Format != media.FormatMP3 {
		t.Fatalf("snapshot lost earlier choices: %+v", snap)
	}
}

func TestTrimRangeStartsRunVerbatim(t *testing.T) {
	e := newEnv()
	e.toTrimStage(t, 7)

	if err := e.dialog.ManagerHandler(newFakeCtx(7, "0:10-2:30")); err != nil {
		t.Fatal(err)
	}

	if e.runner.started() != 1 {
		t.Fatal("runner must start")
	}
	trim := e.runner.snaps[0].Trim
	if trim == nil || trim.Start != "0:10" || trim.End != "2:30" {
		t.Fatalf("trim = %+v", trim)
	}
}

func TestInvalidTrimRepromptsWithoutMutation(t *testing.T) {
	e := newEnv()
	e.toTrimStage(t, 7)

	c := newFakeCtx(7, "2:30-0:10")
	if err := e.dialog.ManagerHandler(c); err != nil {
		t.Fatal(err)
	}

	if e.runner.started() != 0 {
		t.Fatal("runner must not start on invalid input")
	}
	if e.store.Stage(7) != session.StageAwaitTrim {
		t.Fatalf("stage = %s, want unchanged trim stage", e.store.Stage(7))
	}
	if len(c.sent) != 1 {
		t.Fatalf("sent = %v, want one re-prompt", c.sent)
	}

	// The same user can answer again on the very next message.
	if err := e.dialog.ManagerHandler(newFakeCtx(7, "0:10-0:20")); err != nil {
		t.Fatal(err)
	}
	if e.runner.started() != 1 {
		t.Fatal("valid retry must start the runner")
	}
}

func TestTextDuringRunRefused(t *testing.T) {
	e := newEnv()
	e.store.Update(7, func(s *session.Session) { s.Stage = session.StageRunning })

	c := newFakeCtx(7, "another one https://youtu.be/x")
	if err := e.dialog.ManagerHandler(c); err != nil {
		t.Fatal(err)
	}

	if e.store.Stage(7) != session.StageRunning {
		t.Fatal("running session must not change")
	}
	if len(c.sent) != 1 || c.sent[0] != "⏳ A download is already running. Please wait for it to finish." {
		t.Fatalf("sent = %v", c.sent)
	}
}

func TestCancelMidDialogue(t *testing.T) {
	e := newEnv()
	e.toTrimStage(t, 7)

	if err := e.dialog.OnCancel(newCallbackCtx(7, "cancel|")); err != nil {
		t.Fatal(err)
	}
	if e.store.InProgress(7) {
		t.Fatal("cancel must reset the session")
	}
}

func TestCancelRefusedWhileRunning(t *testing.T) {
	e := newEnv()
	e.store.Update(7, func(s *session.Session) { s.Stage = session.StageRunning })

	if err := e.dialog.OnCancel(newCallbackCtx(7, "cancel|")); err != nil {
		t.Fatal(err)
	}
	if e.store.Stage(7) != session.StageRunning {
		t.Fatal("running session must survive cancel")
	}
	if e.dialog.Reset(7) {
		t.Fatal("Reset must refuse a running session")
	}
}

// toFormatStage walks a user to the format prompt through the public handlers.
func (e *env) toFormatStage(t *testing.T, userID int64) {
	t.Helper()
	if err := e.dialog.OnInput(newFakeCtx(userID, "https://youtu.be/a")); err != nil {
		t.Fatal(err)
	}
	if err := e.dialog.ManagerHandler(newFakeCtx(userID, "mysong")); err != nil {
		t.Fatal(err)
	}
}

func (e *env) toTrimStage(t *testing.T, userID int64) {
	t.Helper()
	e.toFormatStage(t, userID)
	if err := e.dialog.OnFormatPick(newCallbackCtx(userID, "format|mp3")); err != nil {
		t.Fatal(err)
	}
}
