package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/custodia-labs/simclust/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/simclust/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/simclust/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/simclust/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/simclust/internal/adapters/driving/tui/views/editor"
	"github.com/custodia-labs/simclust/internal/adapters/driving/tui/views/threshold"
	"github.com/custodia-labs/simclust/internal/core/domain"
	"github.com/custodia-labs/simclust/internal/core/ports/driving"
	"github.com/custodia-labs/simclust/internal/logger"
)

// Start selects what the app opens.
type Start struct {
	// Path is a similarity file to cluster. The user picks a threshold and
	// the accepted clustering is saved before editing begins.
	Path string

	// ClusteringID is a saved clustering to open directly in the editor.
	ClusteringID string

	// Name names the clustering saved from Path. Defaults to the file name.
	Name string

	// Threshold is the initial threshold for Path. Nil uses the settings.
	Threshold *float64

	// Editing opens the editor in edit mode.
	Editing bool
}

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// start is what the app was asked to open.
	start Start

	styles *styles.Styles
	keymap *keymap.KeyMap

	// thresholdView picks the threshold for a similarity file.
	thresholdView *threshold.View

	// editorView edits an open session. Nil until a session is open.
	editorView *editor.View

	// session is the open editing session, closed when the app exits.
	session driving.EditorSession

	statusBar *status.Bar

	// currentView tracks which view is active.
	currentView messages.ViewType

	// previousView is restored when help is closed.
	previousView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports, start Start) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	if start.Path == "" && start.ClusteringID == "" {
		return nil, fmt.Errorf("creating app: %w", ErrNothingToOpen)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	initial := domain.DefaultThreshold
	if start.Threshold != nil {
		initial = *start.Threshold
	} else if ports.Settings != nil {
		if settings, err := ports.Settings.Get(); err == nil {
			initial = settings.Clustering.Threshold
		}
	}

	currentView := messages.ViewThreshold
	if start.ClusteringID != "" {
		currentView = messages.ViewEditor
	}

	return &App{
		ports:         ports,
		ctx:           context.Background(),
		start:         start,
		styles:        s,
		keymap:        km,
		thresholdView: threshold.NewView(s, km, ports.Clustering, initial),
		statusBar:     status.NewBar(s, km),
		currentView:   currentView,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	a.statusBar.SetState(status.StateLoading)

	var load tea.Cmd
	if a.start.ClusteringID != "" {
		load = a.openSession(a.start.ClusteringID)
	} else {
		load = a.loadSimilarity(a.start.Path)
	}

	return tea.Batch(
		tea.SetWindowTitle("simclust"),
		load,
	)
}

// loadSimilarity returns a command that reads a similarity file.
func (a *App) loadSimilarity(path string) tea.Cmd {
	ctx, svc := a.ctx, a.ports.Clustering
	return func() tea.Msg {
		data, err := svc.Load(ctx, path)
		if err != nil {
			return messages.SimilarityLoaded{Path: path, Err: err}
		}
		return messages.SimilarityLoaded{Path: path, Data: data, Stats: svc.Stats(data)}
	}
}

// saveAccepted returns a command that persists an accepted clustering and
// opens it for editing.
func (a *App) saveAccepted(msg messages.ThresholdAccepted) tea.Cmd {
	saved := domain.SavedClustering{
		ID:        uuid.New().String(),
		Name:      a.clusteringName(msg.Threshold),
		Threshold: msg.Threshold,
		Content:   msg.Content,
	}
	ctx, library, sessions, editing := a.ctx, a.ports.Library, a.ports.Sessions, a.start.Editing
	return func() tea.Msg {
		if err := library.Add(ctx, saved); err != nil {
			return messages.SessionOpened{Err: fmt.Errorf("saving clustering: %w", err)}
		}
		logger.Info("saved clustering %s at threshold %.3f", saved.ID, saved.Threshold)
		session, err := sessions.Open(ctx, saved.ID, editing)
		return messages.SessionOpened{Session: session, Err: err}
	}
}

// openSession returns a command that opens a saved clustering.
func (a *App) openSession(id string) tea.Cmd {
	ctx, sessions, editing := a.ctx, a.ports.Sessions, a.start.Editing
	return func() tea.Msg {
		session, err := sessions.Open(ctx, id, editing)
		return messages.SessionOpened{Session: session, Err: err}
	}
}

func (a *App) clusteringName(t float64) string {
	if a.start.Name != "" {
		return a.start.Name
	}
	base := filepath.Base(a.start.Path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s @ %.3f", base, t)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocyclo // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case messages.SimilarityLoaded:
		if msg.Err != nil {
			a.setError(msg.Err)
			return a, nil
		}
		a.statusBar.SetState(status.StateComputing)
		return a, a.thresholdView.SetData(msg.Path, msg.Data, msg.Stats)

	case messages.ClusteringComputed:
		a.thresholdView, cmd = a.thresholdView.Update(msg)
		if err := a.thresholdView.Err(); err != nil {
			a.setError(err)
		} else if !a.thresholdView.Computing() {
			a.statusBar.SetState(status.StateReady)
			content, _ := a.thresholdView.Content()
			a.statusBar.SetCounts(content.Len(), content.ImageCount())
		}
		return a, cmd

	case messages.ThresholdAccepted:
		a.statusBar.SetState(status.StateSaving)
		return a, a.saveAccepted(msg)

	case messages.SessionOpened:
		if msg.Err != nil {
			a.setError(msg.Err)
			return a, nil
		}
		a.closeSession()
		a.session = msg.Session
		a.editorView = editor.NewView(a.styles, a.keymap, msg.Session)
		a.editorView.SetDimensions(a.width, a.viewHeight())
		a.currentView = messages.ViewEditor
		a.statusBar.Clear()
		a.syncStatus()
		return a, nil

	case messages.SessionSaved:
		if msg.Err != nil {
			a.setError(msg.Err)
		} else {
			a.statusBar.SetState(status.StateReady)
			a.syncStatus()
		}
		return a, nil

	case messages.ErrorOccurred:
		a.setError(msg.Err)
		return a, nil

	case messages.Quit:
		a.closeSession()
		return a, tea.Quit
	}

	return a, cmd
}

func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// Global quit with ctrl+c
	if msg.String() == "ctrl+c" {
		a.closeSession()
		return a, tea.Quit
	}

	capturing := a.editorView != nil && a.editorView.Capturing()
	if !capturing && msg.String() == "?" {
		if a.currentView == messages.ViewHelp {
			a.currentView = a.previousView
			a.statusBar.SetState(status.StateReady)
		} else {
			a.previousView = a.currentView
			a.currentView = messages.ViewHelp
			a.statusBar.SetState(status.StateHelp)
		}
		return a, nil
	}

	switch a.currentView {
	case messages.ViewHelp:
		if msg.Type == tea.KeyEsc {
			a.currentView = a.previousView
			a.statusBar.SetState(status.StateReady)
		}
		return a, nil

	case messages.ViewThreshold:
		if msg.String() == "q" {
			return a, tea.Quit
		}
		a.thresholdView, cmd = a.thresholdView.Update(msg)
		if a.thresholdView.Computing() {
			a.statusBar.SetState(status.StateComputing)
		}
		return a, cmd

	case messages.ViewEditor:
		if a.editorView == nil {
			if msg.String() == "q" {
				return a, tea.Quit
			}
			return a, nil
		}
		a.editorView, cmd = a.editorView.Update(msg)
		a.syncStatus()
		return a, cmd
	}

	return a, nil
}

// syncStatus copies the editor's state into the status bar.
func (a *App) syncStatus() {
	if a.editorView == nil {
		return
	}
	clusters, images := a.editorView.Counts()
	a.statusBar.SetCounts(clusters, images)
	a.statusBar.SetDirty(a.editorView.Dirty())
	if err := a.editorView.Err(); err != nil {
		a.statusBar.SetError(err)
		return
	}
	if a.statusBar.State() == status.StateError || a.statusBar.State() == status.StateLoading {
		a.statusBar.SetState(status.StateReady)
	}
	a.statusBar.SetMessage("")
}

func (a *App) setError(err error) {
	a.err = err
	a.statusBar.SetError(err)
}

// closeSession releases the open session's lock.
func (a *App) closeSession() {
	if a.session == nil {
		return
	}
	if err := a.session.Close(); err != nil {
		logger.Warn("closing session: %v", err)
	}
	a.session = nil
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewHelp:
		body = a.viewHelp()
	case messages.ViewEditor:
		if a.editorView == nil {
			body = a.styles.Muted.Render("Opening clustering...")
		} else {
			body = a.editorView.View()
		}
	default:
		body = a.thresholdView.View()
	}

	switch {
	case a.currentView == messages.ViewThreshold:
		a.statusBar.SetHints(a.thresholdView.Hints())
	case a.currentView == messages.ViewEditor && a.editorView != nil:
		a.statusBar.SetHints(a.editorView.Hints())
	default:
		a.statusBar.SetHints(nil)
	}

	return body + "\n" + a.statusBar.View()
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Threshold:
  ←/h →/l     Lower or raise by 0.01
  [ ]         Lower or raise by 0.05
  enter       Accept and open the editor

Clusters:
  ↑↓←→ hjkl   Move the cursor
  enter       Open the cluster
  e           Toggle edit mode
  r           Rename
  m           Merge into another cluster
  s           Cycle sort order
  d           Toggle grid or rows
  ctrl+s      Save

Open cluster:
  space       Select the image
  a / c / i   Select all, clear, invert
  v           Move the selection
  esc         Back to all clusters

General:
  ?           Toggle help
  q           Quit
  ctrl+c      Quit without saving

[esc] back`
}

// viewHeight is the height available to views above the status bar.
func (a *App) viewHeight() int {
	if a.height > 1 {
		return a.height - 1
	}
	return a.height
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	a.closeSession()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Session returns the open editing session, if any.
func (a *App) Session() driving.EditorSession {
	return a.session
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.statusBar.SetWidth(width)
	a.thresholdView.SetDimensions(width, a.viewHeight())
	if a.editorView != nil {
		a.editorView.SetDimensions(width, a.viewHeight())
	}
}
