package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	// paletteTop is the screen line of the palette's top border.
	paletteTop = 2
	// listTop is the first list line: below the border, input and rule.
	listTop = paletteTop + 3

	paletteMaxWidth = 64
	paletteMinWidth = 28
)

func (a *App) paletteWidth() int {
	w := paletteMaxWidth
	if a.width > 0 && a.width-4 < w {
		w = a.width - 4
	}
	if w < paletteMinWidth {
		w = paletteMinWidth
	}
	return w
}

func (a *App) paletteLeft() int {
	if a.width <= 0 {
		return 0
	}
	left := (a.width - a.paletteWidth()) / 2
	if left < 0 {
		left = 0
	}
	return left
}

// rowAt maps a screen cell to a filtered palette index.
func (a *App) rowAt(x, y int) (int, bool) {
	left := a.paletteLeft()
	if x < left+1 || x >= left+a.paletteWidth()-1 {
		return 0, false
	}
	return a.palette.RowAt(y - listTop)
}

func (a *App) insidePalette(x, y int) bool {
	left := a.paletteLeft()
	height := lipgloss.Height(a.renderPalette())
	return x >= left && x < left+a.paletteWidth() && y >= paletteTop && y < paletteTop+height
}

// pointerAtRest re-evaluates hover for a pointer that did not move while the
// list moved under it.
func (a *App) pointerAtRest() {
	if !a.hasPointer {
		return
	}
	if i, ok := a.rowAt(a.pointerX, a.pointerY); ok {
		a.palette.PointerEnter(i)
	}
}

func (a *App) handleMouse(m tea.MouseMsg) tea.Cmd {
	if !a.palette.IsOpen() {
		return nil
	}
	switch {
	case m.Action == tea.MouseActionMotion:
		moved := !a.hasPointer || m.X != a.pointerX || m.Y != a.pointerY
		a.pointerX, a.pointerY, a.hasPointer = m.X, m.Y, true
		if !moved {
			return nil
		}
		if i, ok := a.rowAt(m.X, m.Y); ok {
			a.palette.PointerMove(i)
		}
	case m.Button == tea.MouseButtonWheelDown:
		a.palette.Scroll(1)
		a.pointerAtRest()
	case m.Button == tea.MouseButtonWheelUp:
		a.palette.Scroll(-1)
		a.pointerAtRest()
	case m.Action == tea.MouseActionPress && m.Button == tea.MouseButtonLeft:
		if i, ok := a.rowAt(m.X, m.Y); ok {
			inv, ok := a.palette.Click(i, m.Ctrl)
			return a.invoke(inv, ok)
		}
		if !a.insidePalette(m.X, m.Y) {
			a.closePalette()
		}
	}
	return nil
}
