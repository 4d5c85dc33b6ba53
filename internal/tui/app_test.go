package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jask/studydeck/internal/api"
	"github.com/jask/studydeck/internal/config"
	"github.com/jask/studydeck/internal/database/repository"
	"github.com/jask/studydeck/internal/events"
	"github.com/jask/studydeck/internal/location"
	"github.com/jask/studydeck/internal/palette"
	"github.com/jask/studydeck/internal/share"
	"github.com/jask/studydeck/internal/theme"
)

type fakeBackend struct {
	mu     sync.Mutex
	recent api.RecentItems
	err    error
	calls  int
}

func (b *fakeBackend) Recent(context.Context) (api.RecentItems, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	return b.recent, b.err
}

func (b *fakeBackend) Session(context.Context) (api.Session, error) {
	return api.Session{User: &api.User{ID: "u1", Username: "ana"}}, nil
}

type fakeIDs struct{ err error }

func (f fakeIDs) StudySetShareID(_ context.Context, id string) (string, error) { return "x" + id, f.err }
func (f fakeIDs) FolderShareID(_ context.Context, _, slug string) (string, error) {
	return "y" + slug, f.err
}

type memPrefs struct {
	mu     sync.Mutex
	values map[string]string
}

func (p *memPrefs) Get(_ context.Context, k string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.values[k]
	return v, ok, nil
}

func (p *memPrefs) Set(_ context.Context, k, v string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[k] = v
	return nil
}

type harness struct {
	app     *App
	nav     *location.History
	backend *fakeBackend
	prefs   *memPrefs
	opened  []string
	clip    string
}

func newHarness(t *testing.T, start string, ids fakeIDs) *harness {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := &harness{
		backend: &fakeBackend{recent: api.RecentItems{
			Sets: []api.RecentSet{
				{ID: "bio", Title: "Biology", ViewedAt: time.Now().Add(-time.Hour), User: &api.Author{Username: "ana"}},
				{ID: "chem", Title: "Chemistry", ViewedAt: time.Now().Add(-2 * time.Hour)},
			},
		}},
		prefs: &memPrefs{values: map[string]string{}},
	}
	nav, err := location.NewHistory(start, "https://decks.example", location.WithOpener(func(u string) error {
		h.opened = append(h.opened, u)
		return nil
	}))
	require.NoError(t, err)
	h.nav = nav

	menu := events.NewMenu(events.NewBus())
	sharer := share.New(ids, "https://decks.example", share.WithMenu(menu),
		share.WithClipboard(func(s string) error { h.clip = s; return nil }))

	cfg := config.Config{UI: config.UIConfig{PageSize: 6}}
	h.app = New(ctx, cfg, Repos{Prefs: h.prefs}, Services{
		Nav:   nav,
		API:   h.backend,
		Share: sharer,
		Theme: theme.NewStore(h.prefs, theme.Dark, nil),
		Menu:  menu,
	}, nil)
	t.Cleanup(h.app.Close)
	h.send(tea.WindowSizeMsg{Width: 100, Height: 40})
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	_, cmd := h.app.Update(msg)
	return cmd
}

// open opens the palette and delivers the recent-items fetch.
func (h *harness) open(t *testing.T) {
	t.Helper()
	h.send(tea.KeyMsg{Type: tea.KeyCtrlK})
	require.True(t, h.app.palette.IsOpen())
	msg := h.app.fetchRecent(h.app.palette.Generation())()
	h.send(msg)
	require.False(t, h.app.palette.Waiting())
}

func (h *harness) typeText(s string) {
	for _, r := range s {
		h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// run executes cmd and feeds back the messages the app owns.
func (h *harness) run(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			h.run(t, c)
		}
		return
	}
	switch msg.(type) {
	case actionDoneMsg:
		// The follow-up persists the route.
		h.run(t, h.send(msg))
	case recentMsg, recentErrMsg, sessionMsg, errMsg, statusMsg:
		h.send(msg)
	}
}

func (h *harness) drainBus(t *testing.T) {
	t.Helper()
	for {
		select {
		case msg := <-h.app.events:
			h.send(msg)
		default:
			return
		}
	}
}

func filteredNames(c *palette.Controller) []string {
	var out []string
	for _, e := range c.Filtered() {
		out = append(out, e.Name)
	}
	return out
}

func TestOpenShowsRecentThenFixedEntries(t *testing.T) {
	h := newHarness(t, "/home", fakeIDs{})
	h.open(t)

	names := filteredNames(h.app.palette)
	require.Equal(t, []string{"Biology", "Chemistry"}, names[:2])
	require.NotContains(t, names, "Home", "Home is hidden on /home")
	require.NotContains(t, names, "Copy Link")
	require.Contains(t, h.app.View(), "Biology")
	require.Contains(t, h.app.View(), "@ana")
}

func TestTypingFiltersAndEnterNavigates(t *testing.T) {
	h := newHarness(t, "/home", fakeIDs{})
	h.open(t)
	h.typeText("chem")
	require.Equal(t, []string{"Chemistry"}, filteredNames(h.app.palette))

	cmd := h.send(tea.KeyMsg{Type: tea.KeyEnter})
	require.False(t, h.app.palette.IsOpen(), "navigation closes immediately")
	h.run(t, cmd)
	require.Equal(t, "/chem", h.nav.Location())

	v, ok, _ := h.prefs.Get(context.Background(), repository.PrefLastRoute)
	require.True(t, ok)
	require.Equal(t, "/chem", v)
}

func TestModifierSubmitOpensBrowser(t *testing.T) {
	h := newHarness(t, "/home", fakeIDs{})
	h.open(t)
	h.typeText("biology")
	h.run(t, h.send(tea.KeyMsg{Type: tea.KeyEnter, Alt: true}))
	require.Equal(t, []string{"https://decks.example/bio"}, h.opened)
	require.Equal(t, "/home", h.nav.Location())
}

func TestReopenResetsQuery(t *testing.T) {
	h := newHarness(t, "/home", fakeIDs{})
	h.open(t)
	h.typeText("zzz")
	h.send(tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, h.app.palette.IsOpen())

	h.open(t)
	require.Equal(t, "", h.app.input.Value())
	require.Equal(t, "", h.app.palette.Query())
	require.Equal(t, 0, h.app.palette.Index())
}

func TestCopyLinkKeepsPaletteOpenUntilDone(t *testing.T) {
	h := newHarness(t, "/sets/bio", fakeIDs{})
	h.open(t)
	h.typeText("copy")
	require.Equal(t, []string{"Copy Link"}, filteredNames(h.app.palette))

	cmd := h.send(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, h.app.palette.IsOpen())
	sel, _ := h.app.palette.Selected()
	require.True(t, sel.Loading())

	h.run(t, cmd)
	require.False(t, h.app.palette.IsOpen())
	require.Equal(t, "https://decks.example/_xbio", h.clip)

	h.drainBus(t)
	require.Contains(t, h.app.status, "https://decks.example/_xbio")
}

func TestCopyLinkFailureShowsInlineError(t *testing.T) {
	h := newHarness(t, "/sets/bio", fakeIDs{err: errors.New("share service down")})
	h.open(t)
	h.typeText("copy")
	h.run(t, h.send(tea.KeyMsg{Type: tea.KeyEnter}))

	require.True(t, h.app.palette.IsOpen())
	sel, _ := h.app.palette.Selected()
	require.False(t, sel.Loading())
	require.Contains(t, h.app.View(), "share service down")
}

func TestCopyLinkFinishingAfterReopenKeepsPaletteOpen(t *testing.T) {
	h := newHarness(t, "/sets/bio", fakeIDs{})
	h.open(t)
	h.typeText("copy")
	cmd := h.send(tea.KeyMsg{Type: tea.KeyEnter})
	h.send(tea.KeyMsg{Type: tea.KeyEsc})
	h.open(t)

	h.run(t, cmd)
	require.True(t, h.app.palette.IsOpen(), "earlier copy closed the new session")
	require.Equal(t, "https://decks.example/_xbio", h.clip)
	require.Nil(t, h.app.palette.Err())
}

func TestCopyLinkFailureAfterReopenGoesToStatus(t *testing.T) {
	h := newHarness(t, "/sets/bio", fakeIDs{err: errors.New("share service down")})
	h.open(t)
	h.typeText("copy")
	cmd := h.send(tea.KeyMsg{Type: tea.KeyEnter})
	h.send(tea.KeyMsg{Type: tea.KeyEsc})
	h.open(t)

	h.run(t, cmd)
	require.True(t, h.app.palette.IsOpen())
	require.Nil(t, h.app.palette.Err())
	require.True(t, h.app.statusErr)
	require.Contains(t, h.app.status, "share service down")
}

func TestStaleRecentResultIgnored(t *testing.T) {
	h := newHarness(t, "/home", fakeIDs{})
	h.send(tea.KeyMsg{Type: tea.KeyCtrlK})
	stale := h.app.fetchRecent(h.app.palette.Generation())
	h.send(tea.KeyMsg{Type: tea.KeyEsc})

	h.send(stale())
	require.False(t, h.app.palette.IsOpen())

	h.send(tea.KeyMsg{Type: tea.KeyCtrlK})
	h.send(stale())
	require.True(t, h.app.palette.Waiting(), "old generation must not fill the new session")
}

func TestFetchFailureStaysLoading(t *testing.T) {
	h := newHarness(t, "/home", fakeIDs{})
	h.backend.err = errors.New("offline")
	h.send(tea.KeyMsg{Type: tea.KeyCtrlK})
	h.send(h.app.fetchRecent(h.app.palette.Generation())())
	require.True(t, h.app.palette.Waiting())
	require.Contains(t, h.app.View(), "Loading")
}

func TestImportEntryOpensDialog(t *testing.T) {
	h := newHarness(t, "/home", fakeIDs{})
	h.open(t)
	h.typeText("import")
	h.run(t, h.send(tea.KeyMsg{Type: tea.KeyEnter}))
	h.drainBus(t)

	require.Equal(t, dialogImport, h.app.dialog)
	require.Contains(t, h.app.View(), "Import From Quizlet")
	h.send(tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, dialogNone, h.app.dialog)
}

func TestToggleThemeSwitchesStyles(t *testing.T) {
	h := newHarness(t, "/home", fakeIDs{})
	h.open(t)
	h.typeText("toggle")
	h.run(t, h.send(tea.KeyMsg{Type: tea.KeyEnter}))
	require.Equal(t, theme.Light, h.app.mode)
	v, _, _ := h.prefs.Get(context.Background(), "theme")
	require.Equal(t, "light", v)
}

func TestPointerHoverAndClick(t *testing.T) {
	h := newHarness(t, "/home", fakeIDs{})
	h.open(t)
	x := h.app.paletteLeft() + 4

	// Second entry (Chemistry) starts two lines below Biology.
	h.send(tea.MouseMsg{X: x, Y: listTop + 2, Action: tea.MouseActionMotion})
	require.Equal(t, 1, h.app.palette.Index())

	// A keyboard move suppresses hover from a resting pointer.
	h.send(tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, 2, h.app.palette.Index())
	h.send(tea.MouseMsg{X: x, Y: listTop + 2, Action: tea.MouseActionMotion})
	require.Equal(t, 2, h.app.palette.Index(), "same position is not a move")

	h.send(tea.MouseMsg{X: x, Y: listTop, Action: tea.MouseActionMotion})
	require.Equal(t, 0, h.app.palette.Index())

	h.run(t, h.send(tea.MouseMsg{X: x, Y: listTop, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}))
	require.False(t, h.app.palette.IsOpen())
	require.Equal(t, "/bio", h.nav.Location())
}

func TestClickOutsideCloses(t *testing.T) {
	h := newHarness(t, "/home", fakeIDs{})
	h.open(t)
	h.send(tea.MouseMsg{X: 0, Y: 39, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	require.False(t, h.app.palette.IsOpen())
}

func TestNoResultsSuggests(t *testing.T) {
	h := newHarness(t, "/home", fakeIDs{})
	h.open(t)
	h.typeText("setings")
	view := h.app.View()
	require.Contains(t, view, "No results")
	require.True(t, strings.Contains(view, `Did you mean "Settings"?`))
}

func TestCloseDetachesSubscriptions(t *testing.T) {
	h := newHarness(t, "/home", fakeIDs{})
	menu := h.app.services.Menu
	require.Equal(t, 1, menu.LinkCopied.Subscribers())
	h.app.Close()
	require.Equal(t, 0, menu.LinkCopied.Subscribers())
}
