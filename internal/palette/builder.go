package palette

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jask/studydeck/internal/api"
	"github.com/jask/studydeck/internal/events"
	"github.com/jask/studydeck/internal/location"
	"github.com/jask/studydeck/internal/theme"
)

// Entry keys of the fixed entries.
const (
	KeyCopyLink     = "copy-link"
	KeyHome         = "home"
	KeyAdmin        = "admin"
	KeyProfile      = "profile"
	KeySettings     = "settings"
	KeyCreate       = "create"
	KeyImport       = "import"
	KeyCreateFolder = "create-folder"
	KeyChangelog    = "changelog"
	KeyToggleTheme  = "toggle-theme"
)

const (
	glyphSet          = "▤"
	glyphFolder       = "▦"
	glyphLink         = "⛓"
	glyphHome         = "⌂"
	glyphAdmin        = "◉"
	glyphProfile      = "☺"
	glyphSettings     = "⚙"
	glyphCreate       = "+"
	glyphImport       = "⇩"
	glyphCreateFolder = "⊞"
	glyphChangelog    = "✦"
)

// ErrNoFolderOwner is returned when opening a recent folder the service sent
// without an owner.
var ErrNoFolderOwner = errors.New("folder has no owner")

// Navigator is the location capability navigation entries use.
type Navigator interface {
	Location() string
	Push(path string) error
	OpenNew(path string) error
}

// Actions are the side effects entries may trigger when invoked.
type Actions struct {
	Nav  Navigator
	Menu *events.Menu
	// CopyLink copies the share link of a set or folder route.
	CopyLink    func(ctx context.Context, route location.Route) error
	ToggleTheme func(ctx context.Context) error
}

// BuildInput is everything the entry list is derived from.
type BuildInput struct {
	Recent api.RecentItems
	Route  location.Route
	// User is nil when signed out.
	User    *api.User
	Theme   theme.Mode
	Actions Actions
}

// Build derives the palette entries: recent items newest first, then the
// copy-link action on detail routes, then the fixed entries. It has no side
// effects; handlers only run when invoked.
func Build(in BuildInput) []*Entry {
	var recent []*Entry
	for _, s := range in.Recent.Sets {
		path := "/" + s.ID
		recent = append(recent, &Entry{
			Key:       "set:" + s.ID,
			Name:      s.Title,
			SearchKey: Normalize(s.Title),
			Glyph:     glyphSet,
			Entity: &Entity{
				ID: s.ID, Name: s.Title, Kind: EntitySet, Author: s.User, ViewedAt: s.ViewedAt,
			},
			Visible: notUnder(path),
			Invoke:  in.Actions.navigate(path),
		})
	}
	for _, f := range in.Recent.Folders {
		e := &Entry{
			Key:       "folder:" + f.ID,
			Name:      f.Title,
			SearchKey: Normalize(f.Title),
			Glyph:     glyphFolder,
			Entity:    &Entity{ID: f.ID, Name: f.Title, Kind: EntityFolder, ViewedAt: f.ViewedAt},
		}
		if f.User != nil && f.User.Username != "" {
			path := fmt.Sprintf("/@%s/folders/%s", f.User.Username, f.SlugOrID())
			e.Entity.Author = f.User
			e.Visible = notUnder(path)
			e.Invoke = in.Actions.navigate(path)
		} else {
			// Folder URLs are scoped by owner.
			title := f.Title
			e.Invoke = func(context.Context, bool) error {
				return fmt.Errorf("open folder %q: %w", title, ErrNoFolderOwner)
			}
		}
		recent = append(recent, e)
	}
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Entity.ViewedAt.After(recent[j].Entity.ViewedAt)
	})

	out := recent
	if in.Route.IsDetail() {
		what := "set"
		if in.Route.Kind == location.RouteFolder {
			what = "folder"
		}
		route := in.Route
		out = append(out, &Entry{
			Key:      KeyCopyLink,
			Name:     "Copy Link",
			Label:    "Copy the URL for this " + what,
			Glyph:    glyphLink,
			Loadable: true,
			Invoke: func(ctx context.Context, _ bool) error {
				if in.Actions.CopyLink == nil {
					return fmt.Errorf("copy link: not available")
				}
				return in.Actions.CopyLink(ctx, route)
			},
		})
	}

	out = append(out, in.Actions.link(KeyHome, "Home", "Navigate home", glyphHome, "/home"))
	if in.User != nil && in.User.Admin {
		out = append(out, in.Actions.link(KeyAdmin, "Admin", "Navigate to admin panel", glyphAdmin, "/admin"))
	}
	if in.User != nil && in.User.Username != "" {
		out = append(out, in.Actions.link(KeyProfile, "Profile", "Navigate to your profile", glyphProfile, "/@"+in.User.Username))
	}
	out = append(out,
		in.Actions.link(KeySettings, "Settings", "Navigate to settings", glyphSettings, "/settings"),
		in.Actions.link(KeyCreate, "Create Study Set", "Create a new study set", glyphCreate, "/create"),
		&Entry{
			Key:    KeyImport,
			Name:   "Import From Quizlet",
			Label:  "Import a study set from Quizlet.com",
			Glyph:  glyphImport,
			Invoke: in.Actions.emitSignal(func(m *events.Menu) *events.Topic[events.Signal] { return m.OpenImportDialog }),
		},
		&Entry{
			Key:   KeyCreateFolder,
			Name:  "Create Folder",
			Label: "Create a new folder",
			Glyph: glyphCreateFolder,
			Invoke: func(context.Context, bool) error {
				if in.Actions.Menu != nil {
					in.Actions.Menu.CreateFolder.Emit("")
				}
				return nil
			},
		},
		&Entry{
			Key:    KeyChangelog,
			Name:   "What's New",
			Label:  "See the latest changes",
			Glyph:  glyphChangelog,
			Invoke: in.Actions.emitSignal(func(m *events.Menu) *events.Topic[events.Signal] { return m.OpenChangelog }),
		},
		&Entry{
			Key:   KeyToggleTheme,
			Name:  "Toggle Theme",
			Label: "Switch to " + in.Theme.Toggle().String() + " mode",
			Glyph: in.Theme.ToggleGlyph(),
			Invoke: func(ctx context.Context, _ bool) error {
				if in.Actions.ToggleTheme == nil {
					return nil
				}
				return in.Actions.ToggleTheme(ctx)
			},
		},
	)
	return out
}

func (a Actions) link(key, name, label, glyph, path string) *Entry {
	return &Entry{
		Key:     key,
		Name:    name,
		Label:   label,
		Glyph:   glyph,
		Visible: notAt(path),
		Invoke:  a.navigate(path),
	}
}

func (a Actions) navigate(path string) func(context.Context, bool) error {
	return func(_ context.Context, newContext bool) error {
		if a.Nav == nil {
			return fmt.Errorf("navigate %s: no navigator", path)
		}
		if newContext {
			return a.Nav.OpenNew(path)
		}
		return a.Nav.Push(path)
	}
}

func (a Actions) emitSignal(topic func(*events.Menu) *events.Topic[events.Signal]) func(context.Context, bool) error {
	return func(context.Context, bool) error {
		if a.Menu != nil {
			topic(a.Menu).Emit(events.Signal{})
		}
		return nil
	}
}

func notAt(path string) func(string) bool {
	return func(loc string) bool { return loc != path }
}

func notUnder(path string) func(string) bool {
	return func(loc string) bool { return !strings.HasPrefix(loc, path) }
}
