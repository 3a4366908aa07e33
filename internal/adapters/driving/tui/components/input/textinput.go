// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/simclust/internal/adapters/driving/tui/styles"
)

// NameInput wraps a bubbles textinput for editing a cluster name.
type NameInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	label     string
	width     int
}

// NewNameInput creates a new name input component with the given label.
func NewNameInput(s *styles.Styles, label string) *NameInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Cluster name..."
	ti.CharLimit = 128
	ti.Width = 40

	return &NameInput{
		textinput: ti,
		styles:    s,
		label:     label,
		width:     50,
	}
}

// Init initialises the name input.
func (n *NameInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (n *NameInput) Update(msg tea.Msg) (*NameInput, tea.Cmd) {
	var cmd tea.Cmd
	n.textinput, cmd = n.textinput.Update(msg)
	return n, cmd
}

// View renders the name input.
func (n *NameInput) View() string {
	label := n.styles.Title.Render(n.label + " ")
	field := n.styles.InputField.Render(n.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// Value returns the current input value.
func (n *NameInput) Value() string {
	return n.textinput.Value()
}

// SetValue sets the input value and moves the cursor to its end.
func (n *NameInput) SetValue(value string) {
	n.textinput.SetValue(value)
	n.textinput.CursorEnd()
}

// Focus sets focus on the input.
func (n *NameInput) Focus() tea.Cmd {
	return n.textinput.Focus()
}

// Blur removes focus from the input.
func (n *NameInput) Blur() {
	n.textinput.Blur()
}

// Focused returns whether the input is focused.
func (n *NameInput) Focused() bool {
	return n.textinput.Focused()
}

// SetWidth sets the width of the input.
func (n *NameInput) SetWidth(width int) {
	n.width = width
	// Account for label and padding
	inputWidth := width - len(n.label) - 6
	if inputWidth < 20 {
		inputWidth = 20
	}
	n.textinput.Width = inputWidth
}

// Width returns the current width.
func (n *NameInput) Width() int {
	return n.width
}

// Reset clears the input.
func (n *NameInput) Reset() {
	n.textinput.Reset()
}
