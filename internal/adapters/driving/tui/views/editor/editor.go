// Package editor provides the cluster editor view for the TUI.
//
// The view holds no clustering state of its own: every change goes through
// the EditorSession and the view re-reads the session afterwards. Cursor
// positions are the only thing it keeps.
package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/simclust/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/simclust/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/simclust/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/simclust/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/simclust/internal/core/domain"
	"github.com/custodia-labs/simclust/internal/core/ports/driving"
)

const (
	// cardWidth is the rendered width of a grid card, border included.
	cardWidth  = styles.CardWidth + 2
	cardHeight = 7
	previewLen = 3
)

// target is one entry of the target cluster picker.
type target struct {
	id    int
	label string
}

// View is the cluster editor.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	session driving.EditorSession

	clusters      []domain.Cluster
	residualID    int
	hasResidual   bool
	clusterCursor int
	imageCursor   int
	pickerCursor  int

	rename   *input.NameInput
	renaming bool
	renameID int

	quitArmed bool
	notice    string
	err       error

	width  int
	height int
}

// NewView creates a new editor view over a session.
func NewView(s *styles.Styles, km *keymap.KeyMap, session driving.EditorSession) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	v := &View{
		styles:  s,
		keymap:  km,
		session: session,
		rename:  input.NewNameInput(s, "Rename:"),
		width:   80,
		height:  24,
	}
	v.refresh()
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the editor view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.renaming {
			return v.handleRenameKey(msg)
		}
		if v.session.State().Pending != nil {
			return v.handlePickerKey(msg)
		}
		return v.handleKeyMsg(msg)
	}
	return v, nil
}

//nolint:gocyclo // one case per binding
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if !key.Matches(msg, v.keymap.Quit) {
		v.quitArmed = false
	}
	v.notice = ""
	st := v.session.State()
	focusedID, focused := st.Focused()

	switch {
	case key.Matches(msg, v.keymap.Quit):
		if v.session.Dirty() && !v.quitArmed {
			v.quitArmed = true
			v.notice = "Unsaved changes: press q again to quit or ctrl+s to save"
			return v, nil
		}
		return v, func() tea.Msg { return messages.Quit{} }

	case key.Matches(msg, v.keymap.Save):
		return v, v.save()

	case key.Matches(msg, v.keymap.Up):
		v.moveVertical(-1)
	case key.Matches(msg, v.keymap.Down):
		v.moveVertical(1)
	case key.Matches(msg, v.keymap.Lower):
		v.moveHorizontal(-1)
	case key.Matches(msg, v.keymap.Raise):
		v.moveHorizontal(1)

	case key.Matches(msg, v.keymap.Select):
		if !focused && len(v.clusters) > 0 {
			id := v.clusters[v.clusterCursor].ID
			if v.dispatch(domain.ViewFocus{ClusterID: &id}) {
				v.imageCursor = 0
			}
		}

	case key.Matches(msg, v.keymap.Back):
		if focused && v.dispatch(domain.ViewFocus{}) {
			v.cursorTo(focusedID)
		}

	case key.Matches(msg, v.keymap.Edit):
		if st.Editing {
			v.dispatch(domain.ViewEndEdit{})
		} else {
			v.dispatch(domain.ViewEdit{})
		}
		if focused {
			v.cursorTo(focusedID)
		}

	case key.Matches(msg, v.keymap.Sort):
		current, ok := v.currentCluster()
		v.dispatch(domain.ViewSort{Mode: st.Sort.Next()})
		if ok {
			v.cursorTo(current.ID)
		}

	case key.Matches(msg, v.keymap.Display):
		next := domain.DisplayRows
		if st.Display == domain.DisplayRows {
			next = domain.DisplayGrid
		}
		v.dispatch(domain.ViewDisplay{Mode: next})

	case key.Matches(msg, v.keymap.Rename):
		if c, ok := v.currentCluster(); ok && v.requireEditing() {
			return v, v.startRename(c)
		}

	case key.Matches(msg, v.keymap.Merge):
		if c, ok := v.currentCluster(); ok && v.requireEditing() {
			id := c.ID
			if v.dispatch(domain.ClusterAsk{ExcludedID: &id, For: domain.ActionClusterMerge}) {
				v.pickerCursor = 0
			}
		}

	default:
		if focused {
			v.handleSelectionKey(msg, focusedID)
		}
	}
	return v, nil
}

// handleSelectionKey handles the keys that only apply inside a focused cluster.
func (v *View) handleSelectionKey(msg tea.KeyMsg, focusedID int) {
	st := v.session.State()
	cluster, ok := st.Content.Get(focusedID)
	if !ok {
		return
	}

	switch {
	case key.Matches(msg, v.keymap.Toggle):
		if len(cluster.Images) == 0 || !v.requireEditing() {
			return
		}
		h := cluster.Images[v.imageCursor].Handle
		v.dispatch(domain.SelectionChange{Images: []domain.ImageHandle{h}, Selected: !st.Selection.Has(h)})
		v.moveVertical(1)

	case key.Matches(msg, v.keymap.SelectAll):
		if v.requireEditing() {
			v.dispatch(domain.SelectionAll{})
		}
	case key.Matches(msg, v.keymap.ClearSelection):
		if v.requireEditing() {
			v.dispatch(domain.SelectionClear{})
		}
	case key.Matches(msg, v.keymap.Invert):
		if v.requireEditing() {
			v.dispatch(domain.SelectionInvert{})
		}

	case key.Matches(msg, v.keymap.Move):
		if !v.requireEditing() {
			return
		}
		if st.Selection.Len() == 0 {
			v.notice = "Select images to move first"
			return
		}
		id := focusedID
		if v.dispatch(domain.ClusterAsk{ExcludedID: &id, For: domain.ActionSelectionMove}) {
			v.pickerCursor = 0
		}
	}
}

func (v *View) handlePickerKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	pending := *v.session.State().Pending
	targets := v.targets()

	switch {
	case key.Matches(msg, v.keymap.Up):
		v.pickerCursor = clampIndex(v.pickerCursor-1, len(targets))
	case key.Matches(msg, v.keymap.Down):
		v.pickerCursor = clampIndex(v.pickerCursor+1, len(targets))

	case key.Matches(msg, v.keymap.Select):
		if len(targets) == 0 {
			return v, nil
		}
		targetID := targets[v.pickerCursor].id
		excluded := pending.ExcludedClusterID
		switch pending.Action {
		case domain.ActionClusterMerge:
			if v.dispatch(domain.ClusterMerge{IntoID: targetID, FromID: excluded}) {
				v.imageCursor = 0
				v.notice = "Merged"
			}
		case domain.ActionSelectionMove:
			if v.dispatch(domain.SelectionMove{TargetID: &targetID, Other: &excluded}) {
				v.cursorTo(excluded)
				v.notice = "Moved"
			}
		}

	case key.Matches(msg, v.keymap.Back):
		if pending.Action == domain.ActionSelectionMove {
			v.dispatch(domain.SelectionMove{})
		} else {
			v.dispatch(domain.ClusterAsk{For: pending.Action})
		}
	}
	return v, nil
}

func (v *View) handleRenameKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		name := strings.TrimSpace(v.rename.Value())
		v.stopRename()
		if name != "" {
			v.dispatch(domain.ClusterRename{ClusterID: v.renameID, Name: name})
			v.cursorTo(v.renameID)
		}
		return v, nil
	case tea.KeyEsc:
		v.stopRename()
		return v, nil
	}

	var cmd tea.Cmd
	v.rename, cmd = v.rename.Update(msg)
	return v, cmd
}

func (v *View) startRename(c domain.Cluster) tea.Cmd {
	v.renaming = true
	v.renameID = c.ID
	v.rename.SetValue(c.Name)
	return v.rename.Focus()
}

func (v *View) stopRename() {
	v.renaming = false
	v.rename.Blur()
	v.rename.Reset()
}

// save persists the session synchronously; the session is only touched from
// the Bubbletea goroutine.
func (v *View) save() tea.Cmd {
	err := v.session.Save(context.Background())
	if err != nil {
		v.err = err
	} else {
		v.err = nil
		v.notice = "Saved"
	}
	return func() tea.Msg { return messages.SessionSaved{Err: err} }
}

// dispatch applies an action and reports whether it was accepted.
func (v *View) dispatch(action domain.Action) bool {
	if err := v.session.Dispatch(action); err != nil {
		v.err = err
		return false
	}
	v.err = nil
	v.refresh()
	return true
}

func (v *View) requireEditing() bool {
	if v.session.State().Editing {
		return true
	}
	v.notice = "Press e to enter edit mode"
	return false
}

// refresh re-reads the clusters from the session and clamps the cursors.
func (v *View) refresh() {
	v.clusters = v.session.Clusters()
	if residual, ok := v.session.State().Content.Residual(); ok {
		v.residualID, v.hasResidual = residual.ID, true
	} else {
		v.hasResidual = false
	}
	v.clusterCursor = clampIndex(v.clusterCursor, len(v.clusters))
	if c, ok := v.focusedCluster(); ok {
		v.imageCursor = clampIndex(v.imageCursor, len(c.Images))
	}
	v.pickerCursor = clampIndex(v.pickerCursor, len(v.targets()))
}

// cursorTo moves the cluster cursor onto the cluster with the given id.
func (v *View) cursorTo(id int) {
	for i := range v.clusters {
		if v.clusters[i].ID == id {
			v.clusterCursor = i
			return
		}
	}
}

func (v *View) columns() int {
	cols := v.width / cardWidth
	if cols < 1 {
		return 1
	}
	return cols
}

func (v *View) gridMode() bool {
	st := v.session.State()
	return st.FocusedCluster == nil && st.Display == domain.DisplayGrid
}

func (v *View) moveVertical(delta int) {
	if c, ok := v.focusedCluster(); ok {
		v.imageCursor = clampIndex(v.imageCursor+delta, len(c.Images))
		return
	}
	if v.gridMode() {
		delta *= v.columns()
	}
	v.clusterCursor = clampIndex(v.clusterCursor+delta, len(v.clusters))
}

func (v *View) moveHorizontal(delta int) {
	if v.gridMode() {
		v.clusterCursor = clampIndex(v.clusterCursor+delta, len(v.clusters))
	}
}

func (v *View) focusedCluster() (domain.Cluster, bool) {
	st := v.session.State()
	id, ok := st.Focused()
	if !ok {
		return domain.Cluster{}, false
	}
	return st.Content.Get(id)
}

// currentCluster returns the focused cluster, or the one under the cursor.
func (v *View) currentCluster() (domain.Cluster, bool) {
	if c, ok := v.focusedCluster(); ok {
		return c, true
	}
	if len(v.clusters) == 0 {
		return domain.Cluster{}, false
	}
	return v.clusters[v.clusterCursor], true
}

// targets lists the clusters the open choice may pick. A move cannot target
// the residual group, since its id doubles as the new-cluster marker.
func (v *View) targets() []target {
	pending := v.session.State().Pending
	if pending == nil {
		return nil
	}
	isMove := pending.Action == domain.ActionSelectionMove

	out := make([]target, 0, len(v.clusters)+1)
	for _, c := range v.clusters {
		if c.ID == pending.ExcludedClusterID || (isMove && c.ID == domain.UnclusteredID) {
			continue
		}
		out = append(out, target{id: c.ID, label: fmt.Sprintf("%s (%d)", c.Name, len(c.Images))})
	}
	if isMove {
		out = append(out, target{id: domain.NewClusterID, label: "New cluster"})
	}
	return out
}

// View renders the editor.
func (v *View) View() string {
	var b strings.Builder
	st := v.session.State()

	b.WriteString(v.renderHeader(st))
	b.WriteString("\n\n")

	switch {
	case st.Pending != nil:
		b.WriteString(v.renderPicker(st))
	case st.FocusedCluster != nil:
		b.WriteString(v.renderFocused(st))
	case st.Display == domain.DisplayRows:
		b.WriteString(v.renderRows())
	default:
		b.WriteString(v.renderGrid())
	}

	if v.renaming {
		b.WriteString("\n")
		b.WriteString(v.rename.View())
	}

	b.WriteString("\n")
	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %v", v.err)))
	case v.notice != "":
		b.WriteString(v.styles.Warning.Render(v.notice))
	}

	return b.String()
}

func (v *View) renderHeader(st domain.EditorState) string {
	mode := v.styles.Muted.Render("[view]")
	if st.Editing {
		mode = v.styles.Success.Render("[edit]")
	}
	return fmt.Sprintf("%s %s %s",
		v.styles.Title.Render("Clusters"),
		mode,
		v.styles.Muted.Render(fmt.Sprintf("sort: %s · layout: %s", st.Sort, st.Display)),
	)
}

func (v *View) renderGrid() string {
	if len(v.clusters) == 0 {
		return v.styles.Muted.Render("No clusters")
	}
	cols := v.columns()
	rows := (len(v.clusters) + cols - 1) / cols
	first, last := window(v.clusterCursor/cols, rows, max(1, (v.height-6)/cardHeight))

	lines := make([]string, 0, last-first)
	for r := first; r < last; r++ {
		cards := make([]string, 0, cols)
		for c := 0; c < cols; c++ {
			i := r*cols + c
			if i >= len(v.clusters) {
				break
			}
			cards = append(cards, v.renderCard(i))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// nameStyle picks the style for a cluster's name; the unclustered group
// stands apart from real clusters.
func (v *View) nameStyle(c *domain.Cluster) lipgloss.Style {
	if v.hasResidual && c.ID == v.residualID {
		return v.styles.Residual
	}
	return v.styles.Subtitle
}

func (v *View) renderCard(i int) string {
	c := &v.clusters[i]
	inner := cardWidth - 4

	var b strings.Builder
	b.WriteString(v.nameStyle(c).Render(truncate(c.Name, inner)))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("#%d · %d images", c.ID, len(c.Images))))
	for j := 0; j < previewLen; j++ {
		b.WriteString("\n")
		if j < len(c.Images) {
			b.WriteString(truncate(c.Images[j].DisplayName(), inner))
		}
	}

	style := v.styles.Card
	if i == v.clusterCursor {
		style = v.styles.FocusedCard
	}
	return style.Render(b.String())
}

func (v *View) renderRows() string {
	if len(v.clusters) == 0 {
		return v.styles.Muted.Render("No clusters")
	}
	first, last := window(v.clusterCursor, len(v.clusters), max(3, v.height-6))

	var b strings.Builder
	for i := first; i < last; i++ {
		c := &v.clusters[i]
		names := make([]string, 0, previewLen)
		for j := 0; j < len(c.Images) && j < previewLen; j++ {
			names = append(names, c.Images[j].DisplayName())
		}
		if len(c.Images) > previewLen {
			names = append(names, "…")
		}
		line := fmt.Sprintf("%-24s %4d  %s", truncate(c.Name, 24), len(c.Images), strings.Join(names, ", "))
		if i == v.clusterCursor {
			b.WriteString(v.styles.Selected.Render("› " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (v *View) renderFocused(st domain.EditorState) string {
	c, ok := v.focusedCluster()
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(v.nameStyle(&c).Render(fmt.Sprintf("%s (#%d)", c.Name, c.ID)))
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  %d images · %d selected", len(c.Images), st.Selection.Len())))
	b.WriteString("\n")

	first, last := window(v.imageCursor, len(c.Images), max(3, v.height-8))
	for i := first; i < last; i++ {
		img := &c.Images[i]
		mark := "[ ]"
		if st.Selection.Has(img.Handle) {
			mark = v.styles.Marked.Render("[x]")
		}
		cursor := "  "
		if i == v.imageCursor {
			cursor = "› "
		}
		b.WriteString(fmt.Sprintf("%s%s %s%s\n", cursor, mark, img.DisplayName(), v.styles.Muted.Render(imageDetail(img))))
	}
	return b.String()
}

func (v *View) renderPicker(st domain.EditorState) string {
	var b strings.Builder

	excluded, _ := st.Content.Get(st.Pending.ExcludedClusterID)
	if st.Pending.Action == domain.ActionSelectionMove {
		b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("Move %d images from %s to:", st.Selection.Len(), excluded.Name)))
	} else {
		b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("Merge %s into:", excluded.Name)))
	}
	b.WriteString("\n")

	targets := v.targets()
	first, last := window(v.pickerCursor, len(targets), max(3, v.height-8))
	for i := first; i < last; i++ {
		if i == v.pickerCursor {
			b.WriteString(v.styles.Selected.Render("› " + targets[i].label))
		} else {
			b.WriteString("  " + targets[i].label)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// imageDetail summarises where an image comes from and how it matched.
func imageDetail(img *domain.Image) string {
	var parts []string
	if img.Document != nil && img.Document.Name != "" {
		parts = append(parts, img.Document.Name)
	}
	if img.Distance != nil {
		parts = append(parts, fmt.Sprintf("%.3f", *img.Distance))
	}
	if img.Transposition != "" && img.Transposition != domain.TranspositionNone {
		parts = append(parts, string(img.Transposition))
	}
	if len(parts) == 0 {
		return ""
	}
	return "  " + strings.Join(parts, " · ")
}

// window returns the [first, last) range of n items to show so that cursor
// stays visible within size rows.
func window(cursor, n, size int) (first, last int) {
	if n <= size {
		return 0, n
	}
	first = cursor - size/2
	if first < 0 {
		first = 0
	}
	if first+size > n {
		first = n - size
	}
	return first, first + size
}

func clampIndex(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		return 0
	}
	return i
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Hints returns the keybindings to show in the status bar.
func (v *View) Hints() []key.Binding {
	st := v.session.State()
	switch {
	case st.Pending != nil:
		return v.keymap.PickerHelp()
	case st.FocusedCluster != nil:
		return v.keymap.FocusHelp()
	default:
		return v.keymap.OverviewHelp()
	}
}

// Capturing reports whether the view is consuming raw keystrokes.
func (v *View) Capturing() bool {
	return v.renaming
}

// Counts returns the cluster and image totals.
func (v *View) Counts() (clusters, images int) {
	content := v.session.State().Content
	return content.Len(), content.ImageCount()
}

// Dirty reports whether the session has unsaved changes.
func (v *View) Dirty() bool {
	return v.session.Dirty()
}

// CursorCluster returns the id of the cluster under the cursor.
func (v *View) CursorCluster() (int, bool) {
	c, ok := v.currentCluster()
	return c.ID, ok
}

// Notice returns the last informational message.
func (v *View) Notice() string {
	return v.notice
}

// Err returns the last rejected action's error.
func (v *View) Err() error {
	return v.err
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.rename.SetWidth(width)
}
