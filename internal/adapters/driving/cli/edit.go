package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/simclust/internal/adapters/driving/tui"
)

var (
	editName     string
	editReadOnly bool
)

var editCmd = &cobra.Command{
	Use:   "edit <file|id>",
	Short: "Launch the interactive editor",
	Long: `Launch the interactive terminal editor.

Given a similarity file, pick a threshold first: the clusters update as
the threshold moves, and enter saves the clustering and opens it for
editing. Given the id of a saved clustering, open it directly.

Controls:
  ←/h, →/l - Lower / raise the threshold ([ and ] in larger steps)
  ↑/k, ↓/j - Move between clusters or images
  Enter    - Accept threshold / open cluster
  e        - Toggle edit mode
  m, v     - Merge cluster / move selected images
  ctrl+s   - Save
  ?        - Toggle help
  q        - Quit`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().Float64P("threshold", "t", 0, "initial threshold for a similarity file (default from settings)")
	editCmd.Flags().StringVarP(&editName, "name", "n", "", "name of the clustering saved from a similarity file")
	editCmd.Flags().BoolVar(&editReadOnly, "view", false, "open in view mode instead of edit mode")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("editor panic: %v", r)
		}
	}()

	start, err := editStart(cmd, args[0])
	if err != nil {
		return err
	}

	ports := tui.NewPorts(clusteringService, libraryService, sessionService)
	ports.Settings = settingsService

	app, err := tui.NewApp(ports, start)
	if err != nil {
		return fmt.Errorf("failed to create editor: %w", err)
	}
	app.WithContext(cmd.Context())

	if err := app.Run(); err != nil {
		return fmt.Errorf("editor error: %w", err)
	}
	if err := app.Err(); err != nil {
		return err
	}
	return nil
}

// editStart decides whether target names a similarity file or a saved
// clustering. An existing file wins.
func editStart(cmd *cobra.Command, target string) (tui.Start, error) {
	start := tui.Start{
		Name:    editName,
		Editing: !editReadOnly,
	}

	info, statErr := os.Stat(target)
	if statErr != nil || info.IsDir() {
		start.ClusteringID = target
		return start, nil
	}

	start.Path = target
	if cmd.Flags().Changed("threshold") {
		t, err := cmd.Flags().GetFloat64("threshold")
		if err != nil {
			return tui.Start{}, err
		}
		start.Threshold = &t
	}
	return start, nil
}
