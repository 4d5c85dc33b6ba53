package tui

import "github.com/jask/studydeck/internal/api"

type sessionMsg struct{ user *api.User }

// recentMsg carries a recent.get result for the palette generation that
// requested it.
type recentMsg struct {
	gen   uint64
	items api.RecentItems
}

type recentErrMsg struct {
	gen uint64
	err error
}

// actionDoneMsg reports a palette handler returning.
type actionDoneMsg struct {
	gen      uint64
	key      string
	name     string
	loadable bool
	err      error
}

// busMsg is a menu topic delivered from a bus subscription.
type busMsg struct {
	topic string
	arg   string
}

type statusMsg string

type errMsg struct{ error }
