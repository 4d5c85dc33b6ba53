// Package location is the client-side history. The command palette asks it
// for the live current path on every refresh instead of caching one.
package location

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/browser"
)

// History is an in-memory navigation stack. It is safe for concurrent use
// because navigation actions run inside tea.Cmd goroutines.
type History struct {
	mu        sync.RWMutex
	stack     []string
	publicURL string
	open      func(url string) error
}

// Option configures a History.
type Option func(*History)

// WithOpener replaces the system browser opener used by OpenNew.
func WithOpener(open func(url string) error) Option {
	return func(h *History) { h.open = open }
}

// NewHistory starts at start, which must be an absolute path.
func NewHistory(start, publicURL string, opts ...Option) (*History, error) {
	if !strings.HasPrefix(start, "/") {
		return nil, fmt.Errorf("location: start %q is not absolute", start)
	}
	h := &History{
		stack:     []string{cleanPath(start)},
		publicURL: strings.TrimRight(publicURL, "/"),
		open:      browser.OpenURL,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Location returns the current path.
func (h *History) Location() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.stack[len(h.stack)-1]
}

// Route returns the matched current route.
func (h *History) Route() Route {
	return Match(h.Location())
}

// Push navigates in place.
func (h *History) Push(path string) error {
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("location: push %q: path is not absolute", path)
	}
	path = cleanPath(path)
	h.mu.Lock()
	if h.stack[len(h.stack)-1] == path {
		h.mu.Unlock()
		return nil
	}
	h.stack = append(h.stack, path)
	h.mu.Unlock()
	return nil
}

// Back pops one entry. It reports false at the start of history.
func (h *History) Back() bool {
	h.mu.Lock()
	if len(h.stack) == 1 {
		h.mu.Unlock()
		return false
	}
	h.stack = h.stack[:len(h.stack)-1]
	h.mu.Unlock()
	return true
}

// Depth is the number of entries in the stack.
func (h *History) Depth() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.stack)
}

// URL returns the public URL for path.
func (h *History) URL(path string) string {
	return h.publicURL + cleanPath(path)
}

// OpenNew opens path in a new browsing context; the current location does
// not change.
func (h *History) OpenNew(path string) error {
	url := h.URL(path)
	if err := h.open(url); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return nil
}
