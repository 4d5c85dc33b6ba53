package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type Action string

type Binding struct {
	Action Action
	Keys   []string
	Help   string
	Scopes []string
}

// KeyRegistry maps key names to actions per scope. The palette scope is
// looked up without falling back to global so typed letters reach the query.
type KeyRegistry struct {
	bindingsByScope map[string][]*Binding
	indexByScope    map[string]map[string]*Binding
}

const (
	scopeGlobal  = "global"
	scopePalette = "palette"
	scopeDialog  = "dialog"
)

const (
	actionQuit       Action = "quit"
	actionPalette    Action = "palette"
	actionBack       Action = "back"
	actionNavigate   Action = "navigate"
	actionDown       Action = "down"
	actionUp         Action = "up"
	actionSelect     Action = "select"
	actionSelectNew  Action = "select_new"
	actionClose      Action = "close"
	actionConfirm    Action = "confirm"
	actionScrollDown Action = "scroll_down"
	actionScrollUp   Action = "scroll_up"
)

func NewKeyRegistry() *KeyRegistry {
	r := &KeyRegistry{
		bindingsByScope: make(map[string][]*Binding),
		indexByScope:    make(map[string]map[string]*Binding),
	}

	reg := func(scope string, action Action, keys []string, help string) {
		r.Register(Binding{Action: action, Keys: keys, Help: help, Scopes: []string{scope}})
	}

	reg(scopeGlobal, actionPalette, []string{"ctrl+k"}, "commands")
	reg(scopeGlobal, actionBack, []string{"b", "backspace"}, "back")
	reg(scopeGlobal, actionQuit, []string{"q", "ctrl+c"}, "quit")

	// The first key of each binding is what the footer shows; "↑/↓" is a
	// display-only name.
	reg(scopePalette, actionNavigate, []string{"↑/↓"}, "navigate")
	reg(scopePalette, actionDown, []string{"tab", "down", "ctrl+n"}, "next")
	reg(scopePalette, actionUp, []string{"shift+tab", "up", "ctrl+p"}, "prev")
	reg(scopePalette, actionSelect, []string{"enter"}, "open")
	reg(scopePalette, actionSelectNew, []string{"alt+enter", "ctrl+o"}, "open in browser")
	reg(scopePalette, actionScrollDown, []string{"pgdown"}, "")
	reg(scopePalette, actionScrollUp, []string{"pgup"}, "")
	reg(scopePalette, actionClose, []string{"esc"}, "close")
	reg(scopePalette, actionQuit, []string{"ctrl+c"}, "")

	reg(scopeDialog, actionConfirm, []string{"enter"}, "confirm")
	reg(scopeDialog, actionClose, []string{"esc"}, "dismiss")
	reg(scopeDialog, actionQuit, []string{"ctrl+c"}, "")

	return r
}

func (r *KeyRegistry) Register(b Binding) {
	if r == nil {
		return
	}
	for _, scope := range b.Scopes {
		scope = strings.TrimSpace(scope)
		if scope == "" || len(b.Keys) == 0 {
			continue
		}
		if _, ok := r.indexByScope[scope]; !ok {
			r.indexByScope[scope] = make(map[string]*Binding)
		}
		normKeys := normalizeKeyList(b.Keys)
		if len(normKeys) == 0 || r.scopeHasAnyKey(scope, normKeys) {
			continue
		}

		copyBinding := b
		copyBinding.Keys = normKeys
		copyBinding.Scopes = []string{scope}
		r.bindingsByScope[scope] = append(r.bindingsByScope[scope], &copyBinding)
		for _, k := range copyBinding.Keys {
			r.indexByScope[scope][k] = &copyBinding
		}
	}
}

func (r *KeyRegistry) BindingsForScope(scope string) []Binding {
	if r == nil {
		return nil
	}
	items := r.bindingsByScope[scope]
	out := make([]Binding, 0, len(items))
	for _, b := range items {
		out = append(out, *b)
	}
	return out
}

// Lookup resolves keyName in scope, then in the global scope.
func (r *KeyRegistry) Lookup(keyName, scope string) *Binding {
	if r == nil || keyName == "" {
		return nil
	}
	keyName = normalizeKeyName(keyName)
	if b := r.lookupInScope(keyName, scope); b != nil {
		return b
	}
	if scope != scopeGlobal {
		return r.lookupInScope(keyName, scopeGlobal)
	}
	return nil
}

// LookupLocal resolves keyName in scope only.
func (r *KeyRegistry) LookupLocal(keyName, scope string) *Binding {
	if r == nil || keyName == "" {
		return nil
	}
	return r.lookupInScope(normalizeKeyName(keyName), scope)
}

// HelpBindings returns footer bindings for scope, skipping those without help.
func (r *KeyRegistry) HelpBindings(scope string) []key.Binding {
	items := r.BindingsForScope(scope)
	out := make([]key.Binding, 0, len(items))
	for _, b := range items {
		if len(b.Keys) == 0 || b.Help == "" {
			continue
		}
		out = append(out, key.NewBinding(key.WithKeys(b.Keys...), key.WithHelp(b.Keys[0], b.Help)))
	}
	return out
}

func (r *KeyRegistry) lookupInScope(keyName, scope string) *Binding {
	lookup, ok := r.indexByScope[scope]
	if !ok {
		return nil
	}
	return lookup[keyName]
}

func (r *KeyRegistry) scopeHasAnyKey(scope string, keys []string) bool {
	lookup := r.indexByScope[scope]
	for _, k := range keys {
		if _, exists := lookup[k]; exists {
			return true
		}
	}
	return false
}

func normalizeKeyList(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]bool)
	for _, k := range keys {
		n := normalizeKeyName(k)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func normalizeKeyName(k string) string {
	if k == " " {
		return "space"
	}
	trimmed := strings.TrimSpace(k)
	if trimmed == "" {
		return ""
	}
	s := strings.ToLower(trimmed)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "control+", "ctrl+")
	s = strings.ReplaceAll(s, "option+", "alt+")
	s = strings.ReplaceAll(s, "return", "enter")
	return s
}
