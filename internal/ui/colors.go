package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262", "#FF7CCB")

// Palette is a simple stylesheet built with named [lipgloss.Style] fields.
type Palette struct {
	title    lipgloss.Style
	active   lipgloss.Style
	cursor   lipgloss.Style
	err      lipgloss.Style
	warn     lipgloss.Style
	help     lipgloss.Style
	muted    lipgloss.Style
	liked    lipgloss.Style
	readout  lipgloss.Style
	gradient [2]string
}

// NewPalette builds the palette from title, ok, error, warning, help and accent colors.
func NewPalette(t, s, e, w, h, a string) *Palette {
	return &Palette{
		title:    NewBold(t).MarginBottom(1),
		active:   NewBold(s),
		cursor:   NewBold(t),
		err:      NewBold(e),
		warn:     NewStyle(w),
		help:     NewEm(h),
		muted:    NewStyle(h).Strikethrough(true),
		liked:    NewStyle(a),
		readout:  NewStyle(h),
		gradient: [2]string{a, t},
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
