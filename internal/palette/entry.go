package palette

import (
	"context"
	"time"

	"github.com/jask/studydeck/internal/api"
)

// EntityKind is the kind of recent item an entry points at.
type EntityKind string

const (
	EntitySet    EntityKind = "set"
	EntityFolder EntityKind = "folder"
)

// Entity is the recent item behind a dynamic entry.
type Entity struct {
	ID       string
	Name     string
	Kind     EntityKind
	Author   *api.Author
	ViewedAt time.Time
}

// Entry is one selectable palette row. Entries are immutable once built;
// only the controller flips the loading flag.
type Entry struct {
	// Key identifies the entry across rebuilds of the list.
	Key       string
	Name      string
	SearchKey string
	Label     string
	Glyph     string
	Entity    *Entity
	// Visible reports whether the entry applies at the given location. Nil
	// means always.
	Visible  func(location string) bool
	Invoke   func(ctx context.Context, newContext bool) error
	Loadable bool

	loading bool
}

// Loading reports whether a loadable entry's action is in flight.
func (e *Entry) Loading() bool { return e != nil && e.loading }

// Author returns the entity author, or nil.
func (e *Entry) Author() *api.Author {
	if e == nil || e.Entity == nil {
		return nil
	}
	return e.Entity.Author
}

func (e *Entry) visibleAt(location string) bool {
	return e.Visible == nil || e.Visible(location)
}

// Invocation is a submitted entry. Run executes its handler and belongs in a
// tea.Cmd.
type Invocation struct {
	Entry      *Entry
	NewContext bool
	// KeepOpen is set for loadable entries; the palette waits for Complete.
	KeepOpen bool
	// Generation is the palette session the entry was invoked in.
	Generation uint64
}

func (inv Invocation) Run(ctx context.Context) error {
	if inv.Entry == nil || inv.Entry.Invoke == nil {
		return nil
	}
	return inv.Entry.Invoke(ctx, inv.NewContext)
}
