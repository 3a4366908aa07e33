// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help toggles the help view.
	Help key.Binding

	// Back closes the focused cluster or cancels a pending choice.
	Back key.Binding

	// Up navigates up in a list.
	Up key.Binding

	// Down navigates down in a list.
	Down key.Binding

	// Lower decreases the threshold by a fine step.
	Lower key.Binding

	// Raise increases the threshold by a fine step.
	Raise key.Binding

	// LowerCoarse decreases the threshold by a coarse step.
	LowerCoarse key.Binding

	// RaiseCoarse increases the threshold by a coarse step.
	RaiseCoarse key.Binding

	// Select accepts the threshold, focuses a cluster or picks a target.
	Select key.Binding

	// Edit toggles edit mode.
	Edit key.Binding

	// Sort cycles the cluster order.
	Sort key.Binding

	// Display toggles between grid and rows.
	Display key.Binding

	// Rename renames the cluster under the cursor.
	Rename key.Binding

	// Merge merges the cluster under the cursor into another.
	Merge key.Binding

	// Toggle adds or removes the image under the cursor from the selection.
	Toggle key.Binding

	// SelectAll selects every image of the focused cluster.
	SelectAll key.Binding

	// ClearSelection empties the selection.
	ClearSelection key.Binding

	// Invert inverts the selection.
	Invert key.Binding

	// Move moves the selected images to another cluster.
	Move key.Binding

	// Save persists the clustering.
	Save key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Lower: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "-0.01"),
		),
		Raise: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "+0.01"),
		),
		LowerCoarse: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "-0.05"),
		),
		RaiseCoarse: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "+0.05"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit mode"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort"),
		),
		Display: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "layout"),
		),
		Rename: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rename"),
		),
		Merge: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "merge"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle"),
		),
		SelectAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "all"),
		),
		ClearSelection: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear"),
		),
		Invert: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "invert"),
		),
		Move: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "move"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
	}
}

// ShortHelp returns a short list of keybindings for the help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// ThresholdHelp returns keybindings for the threshold view.
func (k *KeyMap) ThresholdHelp() []key.Binding {
	return []key.Binding{k.Lower, k.Raise, k.LowerCoarse, k.RaiseCoarse, k.Select, k.Quit}
}

// OverviewHelp returns keybindings for the cluster overview.
func (k *KeyMap) OverviewHelp() []key.Binding {
	return []key.Binding{k.Select, k.Edit, k.Rename, k.Merge, k.Sort, k.Display, k.Save, k.Quit}
}

// FocusHelp returns keybindings for a focused cluster.
func (k *KeyMap) FocusHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.SelectAll, k.ClearSelection, k.Invert, k.Move, k.Back}
}

// PickerHelp returns keybindings for the target cluster picker.
func (k *KeyMap) PickerHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Back}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		k.ThresholdHelp(),
		k.OverviewHelp(),
		k.FocusHelp(),
		{k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
