// Package cli provides the simclust command line interface.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/simclust/internal/core/domain"
	"github.com/custodia-labs/simclust/internal/core/ports/driving"
	"github.com/custodia-labs/simclust/internal/logger"
)

// version is set at build time.
var version = "dev"

// Services wired in by the composition root.
var (
	clusteringService driving.ClusteringService
	libraryService    driving.LibraryService
	sessionService    driving.SessionService
	settingsService   driving.SettingsService
	exportService     driving.ExportService
	watchService      driving.WatchService
)

var (
	errClusteringNotConfigured = errors.New("clustering service not configured")
	errLibraryNotConfigured    = errors.New("library service not configured")
	errSessionNotConfigured    = errors.New("session service not configured")
	errSettingsNotConfigured   = errors.New("settings service not configured")
	errExportNotConfigured     = errors.New("export service not configured")
	errWatchNotConfigured      = errors.New("watch service not configured")
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "simclust",
	Short: "Cluster images by visual similarity",
	Long: `simclust groups the images of a similarity file into clusters.

Two images are linked when their similarity meets a threshold; every
connected group of images becomes a cluster. Saved clusterings can be
renamed, merged and reorganised by hand, then exported.

Start with:
  simclust cluster stats matches.json      # pick a threshold
  simclust edit matches.json               # scrub the threshold, then edit`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug output to stderr")
}

// Services holds the driving ports used by the commands.
type Services struct {
	Clustering driving.ClusteringService
	Library    driving.LibraryService
	Sessions   driving.SessionService
	Settings   driving.SettingsService
	Export     driving.ExportService
	Watch      driving.WatchService
}

// SetServices wires the driving ports into the commands.
func SetServices(s Services) {
	clusteringService = s.Clustering
	libraryService = s.Library
	sessionService = s.Sessions
	settingsService = s.Settings
	exportService = s.Export
	watchService = s.Watch
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx available to every command.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// defaultThreshold returns the configured threshold, falling back to the
// built-in default when settings are unavailable.
func defaultThreshold() float64 {
	if settingsService == nil {
		return domain.DefaultThreshold
	}
	settings, err := settingsService.Get()
	if err != nil {
		logger.Warn("reading settings: %v", err)
		return domain.DefaultThreshold
	}
	return settings.Clustering.Threshold
}

// defaultSort returns the configured cluster order.
func defaultSort() domain.SortMode {
	if settingsService == nil {
		return domain.SortBySize
	}
	settings, err := settingsService.Get()
	if err != nil {
		return domain.SortBySize
	}
	return settings.Editor.Sort
}

// thresholdFlag returns the --threshold value when given, else the default.
func thresholdFlag(cmd *cobra.Command) (float64, error) {
	if !cmd.Flags().Changed("threshold") {
		return defaultThreshold(), nil
	}
	return cmd.Flags().GetFloat64("threshold")
}
