// Package palette is the command palette: the candidate entries, the query,
// the selection and the scroll state. It holds no terminal state; the TUI
// feeds it keys, pointer rows and completion results and renders what it
// reports.
package palette

import (
	"github.com/agnivade/levenshtein"
)

// DefaultRowHeight gives an entry one line for its name and one for the
// author or label row when there is one.
func DefaultRowHeight(e *Entry) int {
	if e.Author() != nil || e.Label != "" {
		return 2
	}
	return 1
}

// Option configures a Controller.
type Option func(*Controller)

// WithRowHeight overrides how many lines an entry occupies.
func WithRowHeight(fn func(*Entry) int) Option {
	return func(c *Controller) { c.rowHeight = fn }
}

// WithViewportHeight sets the number of list lines shown at once.
func WithViewportHeight(lines int) Option {
	return func(c *Controller) { c.view.Height = lines }
}

// Controller is the palette state machine. It is not safe for concurrent use
// and belongs to the Bubble Tea Update loop.
type Controller struct {
	open       bool
	generation uint64

	entries  []*Entry
	filtered []*Entry
	query    string
	location string
	selected int

	// suppressPointer is set by keyboard moves so a row sliding under a
	// resting pointer does not steal the selection.
	suppressPointer bool

	err error

	rowHeight func(*Entry) int
	layout    Layout
	view      Viewport
}

func New(opts ...Option) *Controller {
	c := &Controller{rowHeight: DefaultRowHeight, view: Viewport{Height: 12}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open shows the palette with an empty query and the first entry selected.
// It returns the generation a recent-items fetch started now must carry.
func (c *Controller) Open(location string) uint64 {
	c.open = true
	c.generation++
	c.query = ""
	c.selected = 0
	c.suppressPointer = false
	c.err = nil
	c.view.Offset = 0
	c.rebuild(location, true)
	return c.generation
}

// Close hides the palette. Pending fetches for the current generation become
// stale.
func (c *Controller) Close() {
	if !c.open {
		return
	}
	c.open = false
	c.generation++
	c.err = nil
}

func (c *Controller) IsOpen() bool       { return c.open }
func (c *Controller) Generation() uint64 { return c.generation }
func (c *Controller) Query() string      { return c.query }
func (c *Controller) Index() int         { return c.selected }
func (c *Controller) Err() error         { return c.err }

// Waiting reports whether the palette is open but has no list yet.
func (c *Controller) Waiting() bool { return c.open && c.entries == nil }

// Filtered returns the visible entries in display order.
func (c *Controller) Filtered() []*Entry {
	return append([]*Entry(nil), c.filtered...)
}

// Selected returns the active entry.
func (c *Controller) Selected() (*Entry, bool) {
	if c.selected < 0 || c.selected >= len(c.filtered) {
		return nil, false
	}
	return c.filtered[c.selected], true
}

// Accept installs a fetched list if gen is still current. Results for a
// closed or reopened palette are dropped.
func (c *Controller) Accept(gen uint64, entries []*Entry, location string) bool {
	if !c.open || gen != c.generation {
		return false
	}
	c.SetEntries(entries, location)
	return true
}

// SetEntries replaces the list wholesale. Loading flags survive by key.
func (c *Controller) SetEntries(entries []*Entry, location string) {
	inFlight := make(map[string]bool)
	for _, e := range c.entries {
		if e.loading && e.Key != "" {
			inFlight[e.Key] = true
		}
	}
	if entries == nil {
		entries = []*Entry{}
	}
	c.entries = entries
	for _, e := range c.entries {
		if e != nil && inFlight[e.Key] {
			e.loading = true
		}
	}
	c.rebuild(location, false)
}

// SetQuery updates the query. A changed query selects the first match.
func (c *Controller) SetQuery(q, location string) {
	if q == c.query {
		c.rebuild(location, false)
		return
	}
	c.query = q
	c.err = nil
	c.rebuild(location, true)
}

// Refresh re-evaluates visibility against the live location.
func (c *Controller) Refresh(location string) {
	c.rebuild(location, false)
}

func (c *Controller) rebuild(location string, resetSelection bool) {
	c.location = location
	prev, was := len(c.filtered), c.selected
	c.filtered = Filter(c.entries, c.query, location)
	if resetSelection || len(c.filtered) != prev {
		c.selected = 0
	}
	if c.selected >= len(c.filtered) {
		c.selected = len(c.filtered) - 1
	}
	if c.selected < 0 {
		c.selected = 0
	}
	c.relayout()
	// A moved selection must stay on screen; an unchanged one leaves the
	// wheel position alone.
	if resetSelection || c.selected != was || len(c.filtered) != prev {
		if r, ok := c.layout.Row(c.selected); ok {
			c.view.Reveal(r)
		}
	}
}

func (c *Controller) relayout() {
	top := 0
	for i, e := range c.filtered {
		h := c.rowHeight(e)
		if h < 1 {
			h = 1
		}
		c.layout.Set(i, Row{Top: top, Height: h})
		top += h
	}
	c.layout.Prune(len(c.filtered))
	c.view.Clamp(c.layout.Total())
}

// Down selects the next entry, wrapping to the first.
func (c *Controller) Down() { c.step(1) }

// Up selects the previous entry, wrapping to the last.
func (c *Controller) Up() { c.step(-1) }

func (c *Controller) step(delta int) {
	n := len(c.filtered)
	if n == 0 {
		return
	}
	c.selected = ((c.selected+delta)%n + n) % n
	c.suppressPointer = true
	if r, ok := c.layout.Row(c.selected); ok {
		c.view.Reveal(r)
	}
}

// PointerEnter handles the pointer arriving over row i without moving, as
// when the list scrolls underneath it. It is ignored after a keyboard move.
func (c *Controller) PointerEnter(i int) bool {
	if c.suppressPointer || i < 0 || i >= len(c.filtered) {
		return false
	}
	c.selected = i
	return true
}

// PointerMove handles real pointer motion over row i.
func (c *Controller) PointerMove(i int) bool {
	c.suppressPointer = false
	if i < 0 || i >= len(c.filtered) {
		return false
	}
	c.selected = i
	return true
}

// PointerSuppressed reports whether hover selection is currently ignored.
func (c *Controller) PointerSuppressed() bool { return c.suppressPointer }

// Submit invokes the active entry.
func (c *Controller) Submit(newContext bool) (Invocation, bool) {
	return c.invoke(c.selected, newContext)
}

// Click selects and invokes row i.
func (c *Controller) Click(i int, newContext bool) (Invocation, bool) {
	if i < 0 || i >= len(c.filtered) {
		return Invocation{}, false
	}
	c.selected = i
	return c.invoke(i, newContext)
}

func (c *Controller) invoke(i int, newContext bool) (Invocation, bool) {
	if !c.open || i < 0 || i >= len(c.filtered) {
		return Invocation{}, false
	}
	e := c.filtered[i]
	if e.loading {
		return Invocation{}, false
	}
	inv := Invocation{Entry: e, NewContext: newContext, KeepOpen: e.Loadable, Generation: c.generation}
	if e.Loadable {
		e.loading = true
		c.err = nil
		return inv, true
	}
	c.Close()
	return inv, true
}

// Complete reports that the loadable entry with key, invoked in session gen,
// finished. Success closes the palette; failure clears the spinner and keeps
// the error for display. A completion from an earlier session only clears
// the spinner and reports false.
func (c *Controller) Complete(gen uint64, key string, err error) bool {
	for _, e := range c.entries {
		if e.Key == key {
			e.loading = false
		}
	}
	if !c.open || gen != c.generation {
		return false
	}
	if err != nil {
		c.err = err
		return true
	}
	c.Close()
	return true
}

// Suggest offers the closest visible entry name when nothing matches.
func (c *Controller) Suggest() (string, bool) {
	q := Normalize(c.query)
	if q == "" || len(c.filtered) > 0 {
		return "", false
	}
	limit := len([]rune(q)) / 3
	if limit < 2 {
		limit = 2
	}
	best, bestDist := "", limit+1
	for _, e := range c.entries {
		if !e.visibleAt(c.location) {
			continue
		}
		if d := levenshtein.ComputeDistance(q, Normalize(e.Name)); d < bestDist {
			best, bestDist = e.Name, d
		}
	}
	return best, best != ""
}

// Layout exposes the row registry for rendering and hit testing.
func (c *Controller) Layout() *Layout { return &c.layout }

func (c *Controller) Viewport() Viewport { return c.view }

func (c *Controller) SetViewportHeight(lines int) {
	if lines < 1 {
		lines = 1
	}
	c.view.Height = lines
	c.view.Clamp(c.layout.Total())
	if r, ok := c.layout.Row(c.selected); ok {
		c.view.Reveal(r)
	}
}

// Scroll moves the viewport by delta lines, as the mouse wheel does.
func (c *Controller) Scroll(delta int) {
	c.view.Offset += delta
	c.view.Clamp(c.layout.Total())
}

// RowAt maps a line within the viewport to a filtered index.
func (c *Controller) RowAt(line int) (int, bool) {
	if line < 0 || line >= c.view.Height {
		return 0, false
	}
	return c.layout.At(c.view.Offset + line)
}

// Window returns the half-open index range of rows intersecting the
// viewport.
func (c *Controller) Window() (int, int) {
	start, end := -1, 0
	for i := 0; i < c.layout.Len(); i++ {
		r, _ := c.layout.Row(i)
		if r.Bottom() <= c.view.Offset || r.Top >= c.view.Offset+c.view.Height {
			continue
		}
		if start < 0 {
			start = i
		}
		end = i + 1
	}
	if start < 0 {
		return 0, 0
	}
	return start, end
}
