// Package tui is the Bubble Tea host for the command palette: a navbar, the
// current destination screen, dialogs opened through the menu topics and a
// footer with key help.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jask/studydeck/internal/api"
	"github.com/jask/studydeck/internal/config"
	"github.com/jask/studydeck/internal/database"
	"github.com/jask/studydeck/internal/database/repository"
	"github.com/jask/studydeck/internal/events"
	"github.com/jask/studydeck/internal/location"
	"github.com/jask/studydeck/internal/palette"
	"github.com/jask/studydeck/internal/theme"
)

// Navigator is the client history the app drives.
type Navigator interface {
	palette.Navigator
	Back() bool
}

// Backend is the subset of the API client the app calls.
type Backend interface {
	Recent(ctx context.Context) (api.RecentItems, error)
	Session(ctx context.Context) (api.Session, error)
}

// Sharer copies share links.
type Sharer interface {
	Copy(ctx context.Context, route location.Route) (string, error)
}

type Repos struct {
	// Recent receives each successful recent.get snapshot. Optional.
	Recent interface {
		Replace(ctx context.Context, items []repository.RecentItem) error
	}
	// Prefs persists the last route. Optional.
	Prefs interface {
		Set(ctx context.Context, key, value string) error
	}
}

type Services struct {
	Nav   Navigator
	API   Backend
	Share Sharer
	Theme *theme.Store
	Menu  *events.Menu
}

type dialogKind string

const (
	dialogNone         dialogKind = ""
	dialogImport       dialogKind = "import"
	dialogCreateFolder dialogKind = "createFolder"
	dialogChangelog    dialogKind = "changelog"
)

// App is the root model.
type App struct {
	ctx      context.Context
	cfg      config.Config
	repos    Repos
	services Services
	log      *zap.Logger
	keys     *KeyRegistry

	palette *palette.Controller
	input   textinput.Model
	spinner spinner.Model

	mode   theme.Mode
	styles theme.Styles

	width  int
	height int

	user       *api.User
	status     string
	statusErr  bool
	dialog     dialogKind
	dialogArg  string
	savedRoute string

	// Last pointer position, for hover after the list scrolls under it.
	pointerX, pointerY int
	hasPointer         bool

	events chan tea.Msg
	subs   events.Subscriptions
}

func New(ctx context.Context, cfg config.Config, repos Repos, services Services, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	if services.Theme == nil {
		services.Theme = theme.NewStore(nil, theme.Dark, log)
	}

	input := textinput.New()
	input.Prompt = "› "
	input.Placeholder = "Search or jump to…"
	input.CharLimit = 128
	input.Cursor.SetMode(cursor.CursorStatic)

	pageSize := cfg.UI.PageSize
	if pageSize <= 0 {
		pageSize = 6
	}

	a := &App{
		ctx:      ctx,
		cfg:      cfg,
		repos:    repos,
		services: services,
		log:      log,
		keys:     NewKeyRegistry(),
		palette:  palette.New(palette.WithViewportHeight(pageSize * 2)),
		input:    input,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		mode:     services.Theme.Mode(),
		events:   make(chan tea.Msg, 16),
	}
	a.styles = theme.NewStyles(a.mode)
	a.savedRoute = services.Nav.Location()
	a.subscribe()
	return a
}

func (a *App) subscribe() {
	m := a.services.Menu
	if m == nil {
		return
	}
	a.subs.Add(m.OpenImportDialog.Subscribe(func(events.Signal) {
		a.post(busMsg{topic: events.TopicOpenImportDialog})
	}))
	a.subs.Add(m.CreateFolder.Subscribe(func(setID string) {
		a.post(busMsg{topic: events.TopicCreateFolder, arg: setID})
	}))
	a.subs.Add(m.FolderWithSetCreated.Subscribe(func(setID string) {
		a.post(busMsg{topic: events.TopicFolderWithSetCreated, arg: setID})
	}))
	a.subs.Add(m.OpenChangelog.Subscribe(func(events.Signal) {
		a.post(busMsg{topic: events.TopicOpenChangelog})
	}))
	a.subs.Add(m.LinkCopied.Subscribe(func(url string) {
		a.post(busMsg{topic: events.TopicLinkCopied, arg: url})
	}))
}

// post hands a bus delivery to the update loop. Deliveries are dropped
// rather than blocking the emitting goroutine.
func (a *App) post(msg tea.Msg) {
	select {
	case a.events <- msg:
	default:
		a.log.Warn("dropping menu event", zap.Any("msg", msg))
	}
}

// Close detaches all bus subscriptions.
func (a *App) Close() { a.subs.Close() }

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadSession(), a.waitForEvent())
}

func (a *App) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-a.events:
			return msg
		case <-a.ctx.Done():
			return nil
		}
	}
}

func (a *App) loadSession() tea.Cmd {
	return func() tea.Msg {
		s, err := a.services.API.Session(a.ctx)
		if err != nil {
			if errors.Is(err, api.ErrUnauthorized) {
				return sessionMsg{}
			}
			return errMsg{err}
		}
		return sessionMsg{user: s.User}
	}
}

func (a *App) fetchRecent(gen uint64) tea.Cmd {
	return func() tea.Msg {
		items, err := a.services.API.Recent(a.ctx)
		if err != nil {
			return recentErrMsg{gen: gen, err: err}
		}
		if a.repos.Recent != nil {
			if err := a.repos.Recent.Replace(a.ctx, repository.SnapshotFromAPI(items, database.Now())); err != nil {
				a.log.Warn("cache recent items", zap.Error(err))
			}
		}
		return recentMsg{gen: gen, items: items}
	}
}

func (a *App) runInvocation(inv palette.Invocation) tea.Cmd {
	e := inv.Entry
	return func() tea.Msg {
		err := inv.Run(a.ctx)
		return actionDoneMsg{gen: inv.Generation, key: e.Key, name: e.Name, loadable: inv.KeepOpen, err: err}
	}
}

func (a *App) saveRoute() tea.Cmd {
	loc := a.services.Nav.Location()
	if a.repos.Prefs == nil || loc == a.savedRoute {
		return nil
	}
	a.savedRoute = loc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(a.ctx, 2*time.Second)
		defer cancel()
		if err := a.repos.Prefs.Set(ctx, repository.PrefLastRoute, loc); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (a *App) actions() palette.Actions {
	return palette.Actions{
		Nav:  a.services.Nav,
		Menu: a.services.Menu,
		CopyLink: func(ctx context.Context, r location.Route) error {
			if a.services.Share == nil {
				return errors.New("sharing is not configured")
			}
			_, err := a.services.Share.Copy(ctx, r)
			return err
		},
		ToggleTheme: func(ctx context.Context) error {
			_, err := a.services.Theme.Toggle(ctx)
			return err
		},
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.resize()
	case tea.KeyMsg:
		cmd = a.handleKey(m)
	case tea.MouseMsg:
		cmd = a.handleMouse(m)
	case sessionMsg:
		a.user = m.user
	case recentMsg:
		loc := a.services.Nav.Location()
		entries := palette.Build(palette.BuildInput{
			Recent:  m.items,
			Route:   location.Match(loc),
			User:    a.user,
			Theme:   a.services.Theme.Mode(),
			Actions: a.actions(),
		})
		if !a.palette.Accept(m.gen, entries, loc) {
			a.log.Debug("dropping stale recent items", zap.Uint64("gen", m.gen))
		}
	case recentErrMsg:
		a.log.Warn("recent items fetch failed", zap.Uint64("gen", m.gen), zap.Error(m.err))
	case actionDoneMsg:
		cmd = a.handleActionDone(m)
	case busMsg:
		a.handleBus(m)
		cmd = a.waitForEvent()
	case spinner.TickMsg:
		if a.spinning() {
			a.spinner, cmd = a.spinner.Update(m)
		}
	case statusMsg:
		a.setStatus(string(m), false)
	case errMsg:
		a.log.Error("ui error", zap.Error(m.error))
		a.setStatus("error: "+m.Error(), true)
	}

	a.syncTheme()
	if a.palette.IsOpen() {
		a.palette.Refresh(a.services.Nav.Location())
	}
	return a, cmd
}

func (a *App) handleKey(m tea.KeyMsg) tea.Cmd {
	switch {
	case a.palette.IsOpen():
		return a.handlePaletteKey(m)
	case a.dialog != dialogNone:
		return a.handleDialogKey(m)
	}
	b := a.keys.Lookup(m.String(), scopeGlobal)
	if b == nil {
		return nil
	}
	switch b.Action {
	case actionQuit:
		return tea.Sequence(a.saveRoute(), tea.Quit)
	case actionPalette:
		return a.openPalette()
	case actionBack:
		if !a.services.Nav.Back() {
			a.setStatus("already at the start of history", false)
		}
		return a.saveRoute()
	}
	return nil
}

func (a *App) openPalette() tea.Cmd {
	gen := a.palette.Open(a.services.Nav.Location())
	a.input.SetValue("")
	focus := a.input.Focus()
	a.log.Debug("palette opened", zap.Uint64("gen", gen))
	return tea.Batch(focus, a.fetchRecent(gen), a.spinner.Tick)
}

func (a *App) closePalette() {
	a.palette.Close()
	a.input.Blur()
}

func (a *App) handlePaletteKey(m tea.KeyMsg) tea.Cmd {
	if b := a.keys.LookupLocal(m.String(), scopePalette); b != nil {
		switch b.Action {
		case actionQuit:
			return tea.Quit
		case actionClose:
			a.closePalette()
			return nil
		case actionDown:
			a.palette.Down()
			a.pointerAtRest()
			return nil
		case actionUp:
			a.palette.Up()
			a.pointerAtRest()
			return nil
		case actionScrollDown:
			a.palette.Scroll(a.palette.Viewport().Height)
			a.pointerAtRest()
			return nil
		case actionScrollUp:
			a.palette.Scroll(-a.palette.Viewport().Height)
			a.pointerAtRest()
			return nil
		case actionSelect:
			inv, ok := a.palette.Submit(false)
			return a.invoke(inv, ok)
		case actionSelectNew:
			inv, ok := a.palette.Submit(true)
			return a.invoke(inv, ok)
		}
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(m)
	a.palette.SetQuery(a.input.Value(), a.services.Nav.Location())
	return cmd
}

func (a *App) invoke(inv palette.Invocation, ok bool) tea.Cmd {
	if !ok {
		return nil
	}
	a.log.Debug("palette invoke",
		zap.String("entry", inv.Entry.Key),
		zap.Bool("new_context", inv.NewContext),
	)
	if inv.KeepOpen {
		return tea.Batch(a.runInvocation(inv), a.spinner.Tick)
	}
	a.input.Blur()
	return a.runInvocation(inv)
}

func (a *App) handleActionDone(m actionDoneMsg) tea.Cmd {
	if m.loadable {
		current := a.palette.Complete(m.gen, m.key, m.err)
		if m.err != nil {
			a.log.Warn("palette action failed", zap.String("entry", m.key), zap.Error(m.err))
			if !current {
				a.setStatus(m.name+": "+m.err.Error(), true)
			}
		}
		if !a.palette.IsOpen() {
			a.input.Blur()
		}
	} else if m.err != nil {
		a.log.Warn("palette action failed", zap.String("entry", m.key), zap.Error(m.err))
		a.setStatus(m.name+": "+m.err.Error(), true)
	}
	return a.saveRoute()
}

func (a *App) handleDialogKey(m tea.KeyMsg) tea.Cmd {
	b := a.keys.LookupLocal(m.String(), scopeDialog)
	if b == nil {
		return nil
	}
	switch b.Action {
	case actionQuit:
		return tea.Sequence(a.saveRoute(), tea.Quit)
	case actionClose:
		a.dialog, a.dialogArg = dialogNone, ""
	case actionConfirm:
		if a.dialog == dialogCreateFolder && a.dialogArg != "" && a.services.Menu != nil {
			setID := a.dialogArg
			a.dialog, a.dialogArg = dialogNone, ""
			menu := a.services.Menu
			return func() tea.Msg {
				menu.FolderWithSetCreated.Emit(setID)
				return nil
			}
		}
		a.dialog, a.dialogArg = dialogNone, ""
	}
	return nil
}

func (a *App) handleBus(m busMsg) {
	switch m.topic {
	case events.TopicOpenImportDialog:
		a.dialog, a.dialogArg = dialogImport, ""
	case events.TopicCreateFolder:
		a.dialog, a.dialogArg = dialogCreateFolder, m.arg
	case events.TopicOpenChangelog:
		a.dialog, a.dialogArg = dialogChangelog, ""
	case events.TopicFolderWithSetCreated:
		a.setStatus("study set added to the new folder", false)
	case events.TopicLinkCopied:
		a.setStatus("copied "+m.arg, false)
	}
}

func (a *App) setStatus(s string, isErr bool) {
	a.status, a.statusErr = s, isErr
}

func (a *App) spinning() bool {
	if !a.palette.IsOpen() {
		return false
	}
	if a.palette.Waiting() {
		return true
	}
	for _, e := range a.palette.Filtered() {
		if e.Loading() {
			return true
		}
	}
	return false
}

func (a *App) syncTheme() {
	if m := a.services.Theme.Mode(); m != a.mode {
		a.mode = m
		a.styles = theme.NewStyles(m)
	}
}

func (a *App) resize() {
	pageSize := a.cfg.UI.PageSize
	if pageSize <= 0 {
		pageSize = 6
	}
	lines := pageSize * 2
	if a.height > 0 {
		// navbar, gap, borders, input, rule, error line, status and footer
		if avail := a.height - listTop - 5; avail < lines {
			lines = avail
		}
	}
	a.palette.SetViewportHeight(lines)
	a.input.Width = a.paletteWidth() - 8
}
