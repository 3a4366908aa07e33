// Package styles holds the palette and lipgloss styles shared by the
// threshold picker and the cluster editor.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// CardWidth is the inner width of one cluster cell in the grid layout.
const CardWidth = 24

// Palette names the colours the editor draws with.
type Palette struct {
	Accent    lipgloss.Color // titles, focus, the slider knob
	Highlight lipgloss.Color // cluster names
	Text      lipgloss.Color
	Dim       lipgloss.Color // counts, hints, the slider track
	Residual  lipgloss.Color // the unclustered group
	Ok        lipgloss.Color
	Caution   lipgloss.Color
	Fault     lipgloss.Color
	Frame     lipgloss.Color
	Bar       lipgloss.Color // status bar background
}

// DefaultPalette returns the dark palette.
func DefaultPalette() *Palette {
	return &Palette{
		Accent:    lipgloss.Color("#7C3AED"),
		Highlight: lipgloss.Color("#06B6D4"),
		Text:      lipgloss.Color("#CDD6F4"),
		Dim:       lipgloss.Color("#6C7086"),
		Residual:  lipgloss.Color("#FAB387"),
		Ok:        lipgloss.Color("#A6E3A1"),
		Caution:   lipgloss.Color("#F9E2AF"),
		Fault:     lipgloss.Color("#F38BA8"),
		Frame:     lipgloss.Color("#45475A"),
		Bar:       lipgloss.Color("#181825"),
	}
}

// Styles is the set of styles derived from a palette.
type Styles struct {
	palette *Palette

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style

	// InputField frames the name prompt.
	InputField lipgloss.Style
	StatusBar  lipgloss.Style

	// Marked renders the check box of a selected image.
	Marked lipgloss.Style

	// Card and FocusedCard frame a cluster in the grid layout.
	Card        lipgloss.Style
	FocusedCard lipgloss.Style

	// Residual renders the name of the unclustered group.
	Residual lipgloss.Style

	// SliderTrack and SliderKnob draw the threshold slider.
	SliderTrack lipgloss.Style
	SliderKnob  lipgloss.Style
}

// NewStyles derives styles from p, or from the default palette when p is nil.
func NewStyles(p *Palette) *Styles {
	if p == nil {
		p = DefaultPalette()
	}

	fg := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}
	card := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(c).
			Padding(0, 1).
			Width(CardWidth)
	}

	return &Styles{
		palette: p,

		Title:    fg(p.Accent).Bold(true),
		Subtitle: fg(p.Highlight).Bold(true),
		Normal:   fg(p.Text),
		Muted:    fg(p.Dim),
		Selected: fg(p.Text).Background(p.Accent).Bold(true),
		Error:    fg(p.Fault),
		Success:  fg(p.Ok),
		Warning:  fg(p.Caution),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(p.Frame).
			Padding(0, 1),
		StatusBar: fg(p.Dim).Background(p.Bar).Padding(0, 1),

		Marked: fg(p.Ok).Bold(true),

		Card:        card(p.Frame),
		FocusedCard: card(p.Accent),

		Residual: fg(p.Residual).Italic(true),

		SliderTrack: fg(p.Dim),
		SliderKnob:  fg(p.Accent).Bold(true),
	}
}

// DefaultStyles returns styles for the default palette.
func DefaultStyles() *Styles {
	return NewStyles(DefaultPalette())
}

// Palette returns the palette the styles were derived from.
func (s *Styles) Palette() *Palette {
	return s.palette
}
