// Package status renders the one-line bar at the bottom of the editor.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/simclust/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/simclust/internal/adapters/driving/tui/styles"
)

// State is what the application is busy with.
type State string

const (
	StateReady     State = "ready"
	StateLoading   State = "loading"
	StateComputing State = "computing"
	StateSaving    State = "saving"
	StateError     State = "error"
	StateHelp      State = "help"
)

// busyLabels are shown in place of the summary while work is in flight.
var busyLabels = map[State]string{
	StateLoading:   "Loading...",
	StateComputing: "Computing...",
	StateSaving:    "Saving...",
}

// Bar shows progress or a clustering summary on the left and key hints on
// the right. It has no behaviour of its own; the app pushes state into it.
type Bar struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	hints  []key.Binding
	width  int

	state    State
	message  string
	clusters int
	images   int
	dirty    bool
}

// NewBar returns a ready bar 80 columns wide. Nil arguments take defaults.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{styles: s, keymap: km, state: StateReady, width: 80}
}

// View renders the bar at its full width.
func (b *Bar) View() string {
	left, right := b.status(), b.keyHints()
	gap := max(1, b.width-lipgloss.Width(left)-lipgloss.Width(right))
	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (b *Bar) status() string {
	if label, busy := busyLabels[b.state]; busy {
		return b.styles.Muted.Render(label)
	}

	switch {
	case b.state == StateError && b.message != "":
		return b.styles.Error.Render("Error: " + b.message)
	case b.state == StateError:
		return b.styles.Error.Render("Error")
	case b.state == StateHelp:
		return b.styles.Normal.Render("Help")
	case b.message != "":
		return b.styles.Success.Render(b.message)
	case b.clusters == 0 && b.images == 0:
		return b.styles.Muted.Render("Ready")
	}

	summary := fmt.Sprintf("%d clusters · %d images", b.clusters, b.images)
	if b.dirty {
		return b.styles.Warning.Render(summary + " · unsaved")
	}
	return b.styles.Normal.Render(summary)
}

func (b *Bar) keyHints() string {
	bindings := b.hints
	if len(bindings) == 0 {
		bindings = b.keymap.ShortHelp()
	}
	parts := make([]string, len(bindings))
	for i, kb := range bindings {
		parts[i] = kb.Help().Key + ": " + kb.Help().Desc
	}
	return b.styles.Muted.Render(strings.Join(parts, " | "))
}

// SetState switches what the bar reports.
func (b *Bar) SetState(state State) { b.state = state }

// State returns what the bar reports.
func (b *Bar) State() State { return b.state }

// SetMessage sets a one-off message, shown in place of the summary.
func (b *Bar) SetMessage(message string) { b.message = message }

// SetError shows err until the state changes.
func (b *Bar) SetError(err error) {
	b.state = StateError
	b.message = err.Error()
}

// SetCounts sets the cluster and image totals for the summary.
func (b *Bar) SetCounts(clusters, images int) {
	b.clusters, b.images = clusters, images
}

// SetDirty flags unsaved edits.
func (b *Bar) SetDirty(dirty bool) { b.dirty = dirty }

// SetHints replaces the key hints. Nil restores the global ones.
func (b *Bar) SetHints(bindings []key.Binding) { b.hints = bindings }

// SetWidth sets the rendered width.
func (b *Bar) SetWidth(width int) { b.width = width }

// Clear forgets the message, counts and dirty flag and returns to ready.
func (b *Bar) Clear() {
	b.state = StateReady
	b.message = ""
	b.clusters, b.images = 0, 0
	b.dirty = false
}
