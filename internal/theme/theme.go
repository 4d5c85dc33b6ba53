// Package theme holds the two color modes and the lipgloss styles built from
// them.
package theme

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Mode is the color mode.
type Mode int

const (
	Dark Mode = iota
	Light
)

func (m Mode) String() string {
	if m == Light {
		return "light"
	}
	return "dark"
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == Light {
		return Dark
	}
	return Light
}

// ToggleGlyph is shown on the toggle entry: a sun while dark, a moon while
// light.
func (m Mode) ToggleGlyph() string {
	if m == Light {
		return "☾"
	}
	return "☀"
}

// ParseMode accepts "dark" or "light".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dark":
		return Dark, nil
	case "light":
		return Light, nil
	}
	return Dark, fmt.Errorf("theme: unknown mode %q", s)
}

// Palette is a Catppuccin flavor reduced to the roles the app uses.
// https://catppuccin.com/palette
type Palette struct {
	Accent   lipgloss.Color
	Brand    lipgloss.Color
	Error    lipgloss.Color
	Success  lipgloss.Color
	Text     lipgloss.Color
	Subtext1 lipgloss.Color
	Subtext0 lipgloss.Color
	Overlay1 lipgloss.Color
	Overlay0 lipgloss.Color
	Surface1 lipgloss.Color
	Surface0 lipgloss.Color
	Base     lipgloss.Color
	Mantle   lipgloss.Color
}

var (
	mocha = Palette{
		Accent:   "#b4befe", // lavender
		Brand:    "#cba6f7", // mauve
		Error:    "#f38ba8",
		Success:  "#a6e3a1",
		Text:     "#cdd6f4",
		Subtext1: "#bac2de",
		Subtext0: "#a6adc8",
		Overlay1: "#7f849c",
		Overlay0: "#6c7086",
		Surface1: "#45475a",
		Surface0: "#313244",
		Base:     "#1e1e2e",
		Mantle:   "#181825",
	}
	latte = Palette{
		Accent:   "#7287fd",
		Brand:    "#8839ef",
		Error:    "#d20f39",
		Success:  "#40a02b",
		Text:     "#4c4f69",
		Subtext1: "#5c5f77",
		Subtext0: "#6c6f85",
		Overlay1: "#8c8fa1",
		Overlay0: "#9ca0b0",
		Surface1: "#bcc0cc",
		Surface0: "#ccd0da",
		Base:     "#eff1f5",
		Mantle:   "#e6e9ef",
	}
)

// PaletteFor returns the colors for m.
func PaletteFor(m Mode) Palette {
	if m == Light {
		return latte
	}
	return mocha
}

// Styles are the rendered roles of the TUI.
type Styles struct {
	Navbar      lipgloss.Style
	NavbarBrand lipgloss.Style
	Route       lipgloss.Style

	Palette     lipgloss.Style
	Input       lipgloss.Style
	Name        lipgloss.Style
	NameActive  lipgloss.Style
	Glyph       lipgloss.Style
	GlyphActive lipgloss.Style
	Subtitle    lipgloss.Style
	Marker      lipgloss.Style
	Empty       lipgloss.Style
	Error       lipgloss.Style
	Scroll      lipgloss.Style

	Dialog lipgloss.Style
	Title  lipgloss.Style

	Status    lipgloss.Style
	StatusErr lipgloss.Style
	Footer    lipgloss.Style
	HelpKey   lipgloss.Style
	HelpDesc  lipgloss.Style
}

// NewStyles builds the style set for m.
func NewStyles(m Mode) Styles {
	p := PaletteFor(m)
	return Styles{
		Navbar: lipgloss.NewStyle().
			Foreground(p.Text).
			Background(p.Mantle).
			Padding(0, 2),
		NavbarBrand: lipgloss.NewStyle().
			Foreground(p.Brand).
			Background(p.Mantle).
			Bold(true),
		Route: lipgloss.NewStyle().
			Foreground(p.Subtext0).
			Background(p.Mantle),

		Palette: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Accent).
			Padding(0, 1),
		Input:       lipgloss.NewStyle().Foreground(p.Text),
		Name:        lipgloss.NewStyle().Foreground(p.Subtext1),
		NameActive:  lipgloss.NewStyle().Foreground(p.Text).Bold(true),
		Glyph:       lipgloss.NewStyle().Foreground(p.Overlay1),
		GlyphActive: lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		Subtitle:    lipgloss.NewStyle().Foreground(p.Subtext0),
		Marker:      lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		Empty:       lipgloss.NewStyle().Foreground(p.Overlay0).Italic(true),
		Error:       lipgloss.NewStyle().Foreground(p.Error),
		Scroll:      lipgloss.NewStyle().Foreground(p.Overlay1),

		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Brand).
			Padding(1, 2),
		Title: lipgloss.NewStyle().Foreground(p.Brand).Bold(true),

		Status: lipgloss.NewStyle().
			Foreground(p.Subtext1).
			Background(p.Surface0).
			Padding(0, 2),
		StatusErr: lipgloss.NewStyle().
			Foreground(p.Error).
			Background(p.Surface0).
			Padding(0, 2),
		Footer: lipgloss.NewStyle().
			Foreground(p.Subtext0).
			Background(p.Mantle).
			Padding(0, 2),
		HelpKey:  lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		HelpDesc: lipgloss.NewStyle().Foreground(p.Subtext0),
	}
}
