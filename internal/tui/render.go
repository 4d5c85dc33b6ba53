package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/jask/studydeck/internal/location"
	"github.com/jask/studydeck/internal/palette"
)

const appName = "studydeck"

func (a *App) View() string {
	base := a.renderNavbar() + "\n\n" + a.renderScreen()

	scope := scopeGlobal
	switch {
	case a.palette.IsOpen():
		scope = scopePalette
	case a.dialog != dialogNone:
		scope = scopeDialog
	}
	view := a.placeWithFooter(base, a.renderStatus(), a.renderFooter(a.keys.HelpBindings(scope)))

	height := a.height
	if height == 0 {
		height = lipgloss.Height(view) + 40
	}
	switch {
	case a.palette.IsOpen():
		view = stamp(view, a.renderPalette(), a.paletteLeft(), paletteTop, a.width, height)
	case a.dialog != dialogNone:
		dlg := a.renderDialog()
		x := 0
		if a.width > 0 {
			x = max(0, (a.width-lipgloss.Width(dlg))/2)
		}
		view = stamp(view, dlg, x, paletteTop+1, a.width, height)
	}
	return view
}

func (a *App) renderNavbar() string {
	who := "signed out"
	if a.user != nil {
		who = "@" + a.user.Username
	}
	content := a.styles.NavbarBrand.Render(appName) +
		a.styles.Route.Render("  "+a.services.Nav.Location()+"  ·  "+who+"  ·  ctrl+k")
	if a.width == 0 {
		return a.styles.Navbar.Render(content)
	}
	return a.styles.Navbar.Width(a.width).Render(content)
}

func (a *App) renderScreen() string {
	r := location.Match(a.services.Nav.Location())
	var title, body string
	switch r.Kind {
	case location.RouteHome:
		title, body = "Home", "Your recent study sets and folders are one ctrl+k away."
	case location.RouteStudySet:
		title, body = "Study set", "Set "+r.SetID
	case location.RouteFolder:
		title, body = "Folder", fmt.Sprintf("%s by @%s", r.Slug, r.Username)
	case location.RouteProfile:
		title, body = "Profile", "@"+r.Username
	case location.RouteSettings:
		title, body = "Settings", "Theme: "+a.mode.String()
	case location.RouteCreate:
		title, body = "Create Study Set", "Start a new study set."
	case location.RouteAdmin:
		title, body = "Admin", "Admin panel"
	default:
		title, body = "Page", r.Path
	}
	return "  " + a.styles.Title.Render(title) + "\n  " + a.styles.Subtitle.Render(body)
}

func (a *App) renderPalette() string {
	inner := a.paletteWidth() - 4
	lines := []string{
		a.input.View(),
		a.styles.Scroll.Render(strings.Repeat("─", inner)),
	}

	switch {
	case a.palette.Waiting():
		lines = append(lines, a.spinner.View()+" "+a.styles.Empty.Render("Loading…"))
	case len(a.palette.Filtered()) == 0:
		lines = append(lines, a.styles.Empty.Render("No results"))
		if s, ok := a.palette.Suggest(); ok {
			lines = append(lines, a.styles.Subtitle.Render(truncate(fmt.Sprintf("Did you mean %q?", s), inner)))
		}
	default:
		lines = append(lines, a.renderList(inner)...)
	}
	if err := a.palette.Err(); err != nil {
		lines = append(lines, a.styles.Error.Render(truncate("✗ "+err.Error(), inner)))
	}
	return a.styles.Palette.Width(a.paletteWidth() - 2).Render(strings.Join(lines, "\n"))
}

func (a *App) renderList(width int) []string {
	filtered := a.palette.Filtered()
	layout := a.palette.Layout()
	view := a.palette.Viewport()
	start, end := a.palette.Window()

	var out []string
	for i := start; i < end; i++ {
		row, _ := layout.Row(i)
		for j, line := range a.renderEntry(filtered[i], i == a.palette.Index(), width) {
			n := row.Top + j
			if n < view.Offset || n >= view.Offset+view.Height {
				continue
			}
			out = append(out, line)
		}
	}
	return out
}

func (a *App) renderEntry(e *palette.Entry, active bool, width int) []string {
	marker, glyphStyle, nameStyle := "  ", a.styles.Glyph, a.styles.Name
	if active {
		marker, glyphStyle, nameStyle = a.styles.Marker.Render("›")+" ", a.styles.GlyphActive, a.styles.NameActive
	}
	glyph := glyphStyle.Render(e.Glyph)
	if e.Loading() {
		glyph = a.spinner.View()
	}
	lines := []string{truncate(marker+glyph+" "+nameStyle.Render(e.Name), width)}

	var sub string
	if author := e.Author(); author != nil {
		sub = "@" + author.Username
		if !e.Entity.ViewedAt.IsZero() {
			sub += " · viewed " + humanize.Time(e.Entity.ViewedAt)
		}
	} else if e.Label != "" {
		sub = e.Label
	}
	if sub != "" {
		lines = append(lines, truncate("    "+a.styles.Subtitle.Render(sub), width))
	}
	return lines
}

func (a *App) renderDialog() string {
	var title, body string
	switch a.dialog {
	case dialogImport:
		title = "Import From Quizlet"
		body = "Paste a Quizlet set URL on the web app to import it.\n" + a.cfg.API.PublicURL + "/import"
	case dialogCreateFolder:
		title = "Create Folder"
		body = "Folders group study sets under your profile."
		if a.dialogArg != "" {
			body += "\nThe new folder will include set " + a.dialogArg + "."
		}
	case dialogChangelog:
		title = "What's New"
		body = "• Command palette with recent sets and folders\n• Copy share links from any set or folder"
	}
	help := a.styles.HelpKey.Render("enter") + " " + a.styles.HelpDesc.Render("confirm") + "  " +
		a.styles.HelpKey.Render("esc") + " " + a.styles.HelpDesc.Render("dismiss")
	return a.styles.Dialog.Render(a.styles.Title.Render(title) + "\n\n" + body + "\n\n" + help)
}

func (a *App) renderStatus() string {
	style := a.styles.Status
	if a.statusErr {
		style = a.styles.StatusErr
	}
	flat := strings.ReplaceAll(a.status, "\n", " ")
	if a.width == 0 {
		return style.Render(flat)
	}
	return style.Width(a.width).Render(truncate(flat, a.width-4))
}

func (a *App) renderFooter(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, a.styles.HelpKey.Render(h.Key)+" "+a.styles.HelpDesc.Render(h.Desc))
	}
	content := strings.Join(parts, "  ")
	if a.width == 0 {
		return a.styles.Footer.Render(content)
	}
	return a.styles.Footer.Width(a.width).Render(content)
}

func (a *App) placeWithFooter(body, statusLine, footer string) string {
	if a.height == 0 {
		return body + "\n\n" + statusLine + "\n" + footer
	}
	contentHeight := a.height - 2
	if contentHeight < 1 {
		contentHeight = 1
	}
	if lipgloss.Height(body) >= contentHeight {
		return body + "\n" + statusLine + "\n" + footer
	}
	main := lipgloss.Place(a.width, contentHeight, lipgloss.Left, lipgloss.Top, body)
	return main + "\n" + statusLine + "\n" + footer
}

// stamp draws box over base with its top-left cell at column x, line y.
// Lines of box at or below height are dropped.
func stamp(base, box string, x, y, width, height int) string {
	rows := strings.Split(base, "\n")
	boxW := lipgloss.Width(box)
	right := max(width, x+boxW)
	for i, seg := range strings.Split(box, "\n") {
		n := y + i
		if n < 0 || n >= height {
			continue
		}
		for len(rows) <= n {
			rows = append(rows, "")
		}
		under := fill(rows[n], right)
		rows[n] = fill(ansi.Cut(under, 0, x), x) + fill(seg, boxW) + ansi.Cut(under, x+boxW, right)
	}
	return strings.Join(rows, "\n")
}

// fill pads s with spaces to width cells.
func fill(s string, width int) string {
	if gap := width - ansi.StringWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}
