package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/simclust/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change the default threshold, the editor's cluster order and
layout, and where clusterings are stored.

Keys:
  clustering.threshold  minimum similarity linking two images
  editor.sort           size, id or name
  editor.display        grid or rows
  storage.data_dir      directory of the clustering database`,
	Args: cobra.NoArgs,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsReset,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsResetCmd)
	rootCmd.AddCommand(settingsCmd)
}

// setting is one key and its display value.
type setting struct {
	key   string
	value string
}

// settingList flattens settings into their config keys, in display order.
func settingList(s *domain.AppSettings) []setting {
	dataDir := s.Storage.DataDir
	if dataDir == "" {
		dataDir = "(default)"
	}
	return []setting{
		{"clustering.threshold", strconv.FormatFloat(s.Clustering.Threshold, 'f', -1, 64)},
		{"editor.sort", s.Editor.Sort.String()},
		{"editor.display", s.Editor.Display.String()},
		{"storage.data_dir", dataDir},
	}
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	for _, s := range settingList(settings) {
		cmd.Printf("  %-22s %s\n", s.key, s.value)
	}
	return nil
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	for _, s := range settingList(settings) {
		if s.key == args[0] {
			fmt.Fprintln(cmd.OutOrStdout(), s.value)
			return nil
		}
	}
	return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, args[0])
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("%s set to %s\n", args[0], args[1])
	return nil
}

func runSettingsReset(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	defaults := settingsService.GetDefaults()
	if err := settingsService.Save(&defaults); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Println("Settings restored to defaults.")
	return nil
}
