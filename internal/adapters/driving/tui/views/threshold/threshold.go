// Package threshold provides the threshold picker view for the TUI.
// Moving the threshold recomputes the clusters in the background; the user
// accepts a threshold once the clusters look right.
package threshold

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/simclust/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/simclust/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/simclust/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/simclust/internal/core/domain"
	"github.com/custodia-labs/simclust/internal/core/ports/driving"
)

const (
	fineStep    = 0.01
	coarseStep  = 0.05
	sliderWidth = 40
	topClusters = 8
)

// View is the threshold picker.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	clustering driving.ClusteringService

	path      string
	data      *domain.SimilarityData
	stats     domain.SimilarityStats
	threshold float64

	content   domain.ClusteringContent
	computed  bool
	computing bool
	err       error

	width  int
	height int
}

// NewView creates a new threshold view starting at the given threshold.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	clustering driving.ClusteringService,
	threshold float64,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:     s,
		keymap:     km,
		clustering: clustering,
		threshold:  round(threshold),
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// SetData installs loaded similarity data and starts the first computation.
func (v *View) SetData(path string, data *domain.SimilarityData, stats domain.SimilarityStats) tea.Cmd {
	v.path = path
	v.data = data
	v.stats = stats
	v.threshold = v.clamp(v.threshold)
	return v.compute()
}

// Update handles messages for the threshold view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.ClusteringComputed:
		// Results for a threshold the user has since moved away from are dropped.
		if !sameThreshold(msg.Threshold, v.threshold) {
			return v, nil
		}
		v.computing = false
		v.err = msg.Err
		if msg.Err == nil {
			v.content = msg.Content
			v.computed = true
		}
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.data == nil {
		return v, nil
	}

	switch {
	case key.Matches(msg, v.keymap.Lower):
		return v, v.move(-fineStep)
	case key.Matches(msg, v.keymap.Raise):
		return v, v.move(fineStep)
	case key.Matches(msg, v.keymap.LowerCoarse):
		return v, v.move(-coarseStep)
	case key.Matches(msg, v.keymap.RaiseCoarse):
		return v, v.move(coarseStep)
	case key.Matches(msg, v.keymap.Select):
		if v.computing || !v.computed {
			return v, nil
		}
		accepted := messages.ThresholdAccepted{Threshold: v.threshold, Content: v.content}
		return v, func() tea.Msg { return accepted }
	}
	return v, nil
}

// move shifts the threshold by delta and recomputes if it changed.
func (v *View) move(delta float64) tea.Cmd {
	next := v.clamp(v.threshold + delta)
	if sameThreshold(next, v.threshold) {
		return nil
	}
	v.threshold = next
	return v.compute()
}

// compute returns a command clustering the data at the current threshold.
func (v *View) compute() tea.Cmd {
	if v.clustering == nil || v.data == nil {
		return nil
	}
	v.computing = true
	data, threshold, svc := v.data, v.threshold, v.clustering
	return func() tea.Msg {
		content, err := svc.Compute(data, threshold, domain.MaterializeOptions{})
		return messages.ClusteringComputed{Threshold: threshold, Content: content, Err: err}
	}
}

// bounds returns the range the threshold may take: [0, 1] widened to cover
// every observed score.
func (v *View) bounds() (lo, hi float64) {
	lo, hi = 0, 1
	if v.stats.Count > 0 {
		lo = math.Min(lo, v.stats.Min)
		hi = math.Max(hi, v.stats.Max)
	}
	return lo, hi
}

func (v *View) clamp(t float64) float64 {
	lo, hi := v.bounds()
	return round(math.Max(lo, math.Min(hi, t)))
}

func round(t float64) float64 {
	return math.Round(t*1000) / 1000
}

func sameThreshold(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// View renders the threshold view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Choose a similarity threshold"))
	b.WriteString("\n")
	if v.path != "" {
		b.WriteString(v.styles.Muted.Render(v.path))
	}
	b.WriteString("\n\n")

	if v.data == nil {
		b.WriteString(v.styles.Muted.Render("Loading similarity data..."))
		return b.String()
	}

	b.WriteString(v.renderSlider())
	b.WriteString("\n")
	b.WriteString(v.renderStats())
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %v", v.err)))
	case !v.computed:
		b.WriteString(v.styles.Muted.Render("Computing clusters..."))
	default:
		b.WriteString(v.renderSummary())
	}

	return b.String()
}

func (v *View) renderSlider() string {
	lo, hi := v.bounds()
	pos := 0
	if hi > lo {
		pos = int(math.Round((v.threshold - lo) / (hi - lo) * float64(sliderWidth-1)))
	}
	bar := v.styles.SliderTrack.Render(strings.Repeat("─", pos)) +
		v.styles.SliderKnob.Render("●") +
		v.styles.SliderTrack.Render(strings.Repeat("─", sliderWidth-1-pos))

	label := fmt.Sprintf(" %.3f", v.threshold)
	if v.computing {
		label += " …"
	}
	return fmt.Sprintf("%s %s %s%s",
		v.styles.Muted.Render(fmt.Sprintf("%.2f", lo)),
		bar,
		v.styles.Muted.Render(fmt.Sprintf("%.2f", hi)),
		v.styles.Subtitle.Render(label),
	)
}

func (v *View) renderStats() string {
	if v.stats.Count == 0 {
		return v.styles.Muted.Render("no similarity scores")
	}
	return v.styles.Muted.Render(fmt.Sprintf(
		"%d scores · min %.3f · mean %.3f ± %.3f · max %.3f",
		v.stats.Count, v.stats.Min, v.stats.Mean, v.stats.StdDev, v.stats.Max,
	))
}

func (v *View) renderSummary() string {
	var b strings.Builder

	clusters := make([]domain.Cluster, 0, v.content.Len())
	residual, hasResidual := v.content.Residual()
	unclustered := 0
	if hasResidual {
		unclustered = len(residual.Images)
	}
	for _, c := range v.content.Clusters {
		if hasResidual && c.ID == residual.ID {
			continue
		}
		clusters = append(clusters, c)
	}
	sort.Slice(clusters, func(i, j int) bool {
		if len(clusters[i].Images) != len(clusters[j].Images) {
			return len(clusters[i].Images) > len(clusters[j].Images)
		}
		return clusters[i].ID < clusters[j].ID
	})

	b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("%d clusters", len(clusters))))
	b.WriteString(v.styles.Muted.Render(" · "))
	b.WriteString(v.styles.Residual.Render(fmt.Sprintf("%d unclustered images", unclustered)))
	b.WriteString("\n")

	for i, c := range clusters {
		if i == topClusters {
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  … %d more", len(clusters)-topClusters)))
			b.WriteString("\n")
			break
		}
		b.WriteString(fmt.Sprintf("  %-20s %s\n", c.Name,
			v.styles.Muted.Render(fmt.Sprintf("%d images", len(c.Images)))))
	}
	return b.String()
}

// Hints returns the keybindings to show in the status bar.
func (v *View) Hints() []key.Binding {
	return v.keymap.ThresholdHelp()
}

// Threshold returns the current threshold.
func (v *View) Threshold() float64 {
	return v.threshold
}

// Content returns the clusters computed at the current threshold.
func (v *View) Content() (domain.ClusteringContent, bool) {
	return v.content, v.computed
}

// Computing reports whether a computation is in flight.
func (v *View) Computing() bool {
	return v.computing
}

// Err returns the last computation error.
func (v *View) Err() error {
	return v.err
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}
