package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/simclust/internal/core/domain"
)

var (
	previewJSON   bool
	previewSort   string
	saveName      string
	showSort      string
	exportFormat  string
	exportOutput  string
	exportSort    string
	watchTable    bool
	stdoutIsATerm = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }
)

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Compute and manage clusterings",
	Long: `Compute clusterings from similarity files and manage the saved ones.

A similarity file is JSON or YAML holding the image index and the
[source, query, similarity] score triples computed for it.`,
}

var clusterPreviewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Cluster a similarity file and print the clusters",
	Long: `Cluster a similarity file at a threshold and print one row per cluster.
Nothing is saved. Use --json to print the clustering in its file format.`,
	Args: cobra.ExactArgs(1),
	RunE: runClusterPreview,
}

var clusterStatsCmd = &cobra.Command{
	Use:   "stats <file>",
	Short: "Summarise the similarity scores of a file",
	Long: `Print the range and spread of the similarity scores in a file.
Thresholds between the minimum and maximum change the clustering.`,
	Args: cobra.ExactArgs(1),
	RunE: runClusterStats,
}

var clusterSaveCmd = &cobra.Command{
	Use:   "save <file>",
	Short: "Cluster a similarity file and save the result",
	Long: `Cluster a similarity file and save the clustering for editing.
The id of the new clustering is printed on the last line.`,
	Args: cobra.ExactArgs(1),
	RunE: runClusterSave,
}

var clusterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved clusterings",
	Args:  cobra.NoArgs,
	RunE:  runClusterList,
}

var clusterShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the clusters of a saved clustering",
	Args:  cobra.ExactArgs(1),
	RunE:  runClusterShow,
}

var clusterDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved clustering",
	Args:  cobra.ExactArgs(1),
	RunE:  runClusterDelete,
}

var clusterRenameCmd = &cobra.Command{
	Use:   "rename <id> <cluster-id> <name>",
	Short: "Rename one cluster of a saved clustering",
	Args:  cobra.MinimumNArgs(3),
	RunE:  runClusterRename,
}

var clusterMergeCmd = &cobra.Command{
	Use:   "merge <id> <into-cluster-id> <from-cluster-id>",
	Short: "Merge one cluster of a saved clustering into another",
	Long: `Move every image of the "from" cluster into the "into" cluster and
remove the "from" cluster. Distances and transpositions of the moved
images are cleared.`,
	Args: cobra.ExactArgs(3),
	RunE: runClusterMerge,
}

var clusterExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a saved clustering",
	Long: `Export a saved clustering as csv (one row per image), table (one row
per cluster) or json (the clustering file format).

Without --format, a terminal gets a table and anything else gets csv.`,
	Args: cobra.ExactArgs(1),
	RunE: runClusterExport,
}

var clusterWatchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Re-cluster a similarity file whenever it changes",
	Long: `Cluster a similarity file, then cluster it again each time it is
written. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runClusterWatch,
}

func init() {
	clusterPreviewCmd.Flags().Float64P("threshold", "t", domain.DefaultThreshold, "minimum similarity linking two images")
	clusterPreviewCmd.Flags().BoolVar(&previewJSON, "json", false, "print the clustering as JSON")
	clusterPreviewCmd.Flags().StringVar(&previewSort, "sort", "", "cluster order: size, id or name")

	clusterSaveCmd.Flags().Float64P("threshold", "t", domain.DefaultThreshold, "minimum similarity linking two images")
	clusterSaveCmd.Flags().StringVarP(&saveName, "name", "n", "", "clustering name (default: file name and threshold)")

	clusterShowCmd.Flags().StringVar(&showSort, "sort", "", "cluster order: size, id or name")

	clusterExportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "csv, table or json")
	clusterExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to a file instead of stdout")
	clusterExportCmd.Flags().StringVar(&exportSort, "sort", "", "cluster order: size, id or name")

	clusterWatchCmd.Flags().Float64P("threshold", "t", domain.DefaultThreshold, "minimum similarity linking two images")
	clusterWatchCmd.Flags().BoolVar(&watchTable, "table", false, "print every cluster after each run")

	clusterCmd.AddCommand(clusterPreviewCmd)
	clusterCmd.AddCommand(clusterStatsCmd)
	clusterCmd.AddCommand(clusterSaveCmd)
	clusterCmd.AddCommand(clusterListCmd)
	clusterCmd.AddCommand(clusterShowCmd)
	clusterCmd.AddCommand(clusterDeleteCmd)
	clusterCmd.AddCommand(clusterRenameCmd)
	clusterCmd.AddCommand(clusterMergeCmd)
	clusterCmd.AddCommand(clusterExportCmd)
	clusterCmd.AddCommand(clusterWatchCmd)
	rootCmd.AddCommand(clusterCmd)
}

func runClusterPreview(cmd *cobra.Command, args []string) error {
	if exportService == nil {
		return errExportNotConfigured
	}
	sortMode, err := sortFlag(previewSort)
	if err != nil {
		return err
	}

	content, threshold, err := computeFile(cmd, args[0])
	if err != nil {
		return err
	}

	if previewJSON {
		return exportService.Export(cmd.OutOrStdout(), content, domain.ExportJSON, sortMode)
	}

	cmd.Printf("Threshold %.3f\n", threshold)
	return exportService.Export(cmd.OutOrStdout(), content, domain.ExportTable, sortMode)
}

func runClusterStats(cmd *cobra.Command, args []string) error {
	if clusteringService == nil {
		return errClusteringNotConfigured
	}

	data, err := clusteringService.Load(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("loading %s: %w", args[0], err)
	}
	stats := clusteringService.Stats(data)

	cmd.Printf("Images:    %d\n", len(data.Index.Images))
	cmd.Printf("Documents: %d\n", len(data.Index.Sources))
	cmd.Printf("Scores:    %d\n", stats.Count)
	if stats.Count == 0 {
		cmd.Println("No similarity scores; every image will be unclustered.")
		return nil
	}
	cmd.Printf("Min:       %.3f\n", stats.Min)
	cmd.Printf("Max:       %.3f\n", stats.Max)
	cmd.Printf("Mean:      %.3f\n", stats.Mean)
	cmd.Printf("Std dev:   %.3f\n", stats.StdDev)
	return nil
}

func runClusterSave(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errLibraryNotConfigured
	}

	content, threshold, err := computeFile(cmd, args[0])
	if err != nil {
		return err
	}

	name := strings.TrimSpace(saveName)
	if name == "" {
		name = defaultClusteringName(args[0], threshold)
	}

	saved := domain.SavedClustering{
		ID:        uuid.New().String(),
		Name:      name,
		Threshold: threshold,
		Content:   content,
	}
	if err := libraryService.Add(cmd.Context(), saved); err != nil {
		return fmt.Errorf("saving clustering: %w", err)
	}

	cmd.Printf("Saved %q: %d clusters, %d images\n", name, content.Len(), content.ImageCount())
	fmt.Fprintln(cmd.OutOrStdout(), saved.ID)
	return nil
}

func runClusterList(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errLibraryNotConfigured
	}

	saved, err := libraryService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing clusterings: %w", err)
	}
	if len(saved) == 0 {
		cmd.Println("No saved clusterings.")
		return nil
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"ID", "Name", "Threshold", "Clusters", "Images", "Updated"})
	for i := range saved {
		c := &saved[i]
		tw.AppendRow(table.Row{
			c.ID,
			c.Name,
			fmt.Sprintf("%.3f", c.Threshold),
			c.Content.Len(),
			c.Content.ImageCount(),
			formatTime(c.UpdatedAt),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), tw.Render())
	return nil
}

func runClusterShow(cmd *cobra.Command, args []string) error {
	if exportService == nil {
		return errExportNotConfigured
	}
	sortMode, err := sortFlag(showSort)
	if err != nil {
		return err
	}

	saved, err := getClustering(cmd, args[0])
	if err != nil {
		return err
	}

	cmd.Println(saved.Name)
	cmd.Printf("ID:        %s\n", saved.ID)
	cmd.Printf("Threshold: %.3f\n", saved.Threshold)
	cmd.Printf("Updated:   %s\n", formatTime(saved.UpdatedAt))
	return exportService.Export(cmd.OutOrStdout(), saved.Content, domain.ExportTable, sortMode)
}

func runClusterDelete(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errLibraryNotConfigured
	}

	if err := libraryService.Remove(cmd.Context(), args[0]); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("clustering %s not found", args[0])
		}
		return fmt.Errorf("deleting clustering: %w", err)
	}
	cmd.Printf("Deleted clustering %s\n", args[0])
	return nil
}

func runClusterRename(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errLibraryNotConfigured
	}

	clusterID, err := parseClusterID(args[1])
	if err != nil {
		return err
	}
	name := strings.TrimSpace(strings.Join(args[2:], " "))

	if _, err := libraryService.Apply(cmd.Context(), args[0], domain.ClusterRename{ClusterID: clusterID, Name: name}); err != nil {
		return fmt.Errorf("renaming cluster %d: %w", clusterID, err)
	}
	cmd.Printf("Renamed cluster %d to %q\n", clusterID, name)
	return nil
}

func runClusterMerge(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errLibraryNotConfigured
	}

	into, err := parseClusterID(args[1])
	if err != nil {
		return err
	}
	from, err := parseClusterID(args[2])
	if err != nil {
		return err
	}

	saved, err := libraryService.Apply(cmd.Context(), args[0], domain.ClusterMerge{IntoID: into, FromID: from})
	if err != nil {
		return fmt.Errorf("merging cluster %d into %d: %w", from, into, err)
	}

	merged, _ := saved.Content.Get(into)
	cmd.Printf("Merged cluster %d into %d (%d images)\n", from, into, len(merged.Images))
	return nil
}

func runClusterExport(cmd *cobra.Command, args []string) error {
	if exportService == nil {
		return errExportNotConfigured
	}
	format, err := resolveExportFormat(exportFormat, exportOutput, stdoutIsATerm)
	if err != nil {
		return err
	}
	sortMode, err := sortFlag(exportSort)
	if err != nil {
		return err
	}

	saved, err := getClustering(cmd, args[0])
	if err != nil {
		return err
	}

	if exportOutput == "" {
		return exportService.Export(cmd.OutOrStdout(), saved.Content, format, sortMode)
	}

	f, err := os.Create(exportOutput)
	if err != nil {
		return fmt.Errorf("creating %s: %w", exportOutput, err)
	}
	if err := exportService.Export(f, saved.Content, format, sortMode); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", exportOutput, err)
	}
	cmd.Printf("Exported %d clusters to %s\n", saved.Content.Len(), exportOutput)
	return nil
}

func runClusterWatch(cmd *cobra.Command, args []string) error {
	if watchService == nil {
		return errWatchNotConfigured
	}
	if watchTable && exportService == nil {
		return errExportNotConfigured
	}
	threshold, err := thresholdFlag(cmd)
	if err != nil {
		return err
	}

	updates, err := watchService.Watch(cmd.Context(), args[0], threshold)
	if err != nil {
		return fmt.Errorf("watching %s: %w", args[0], err)
	}

	cmd.Printf("Watching %s at threshold %.3f (Ctrl+C to stop)\n", args[0], threshold)
	for rec := range updates {
		stamp := time.Now().Format("15:04:05")
		if rec.Err != nil {
			cmd.PrintErrf("[%s] %v\n", stamp, rec.Err)
			continue
		}
		cmd.Printf("[%s] %s\n", stamp, summarizeContent(rec.Content))
		if watchTable {
			if err := exportService.Export(cmd.OutOrStdout(), rec.Content, domain.ExportTable, defaultSort()); err != nil {
				return err
			}
		}
	}
	return nil
}

// computeFile loads a similarity file and clusters it at the threshold
// given by the command's --threshold flag.
func computeFile(cmd *cobra.Command, path string) (domain.ClusteringContent, float64, error) {
	if clusteringService == nil {
		return domain.ClusteringContent{}, 0, errClusteringNotConfigured
	}
	threshold, err := thresholdFlag(cmd)
	if err != nil {
		return domain.ClusteringContent{}, 0, err
	}

	data, err := clusteringService.Load(cmd.Context(), path)
	if err != nil {
		return domain.ClusteringContent{}, 0, fmt.Errorf("loading %s: %w", path, err)
	}
	content, err := clusteringService.Compute(data, threshold, domain.MaterializeOptions{})
	if err != nil {
		return domain.ClusteringContent{}, 0, fmt.Errorf("clustering at %.3f: %w", threshold, err)
	}
	return content, threshold, nil
}

func getClustering(cmd *cobra.Command, id string) (*domain.SavedClustering, error) {
	if libraryService == nil {
		return nil, errLibraryNotConfigured
	}
	saved, err := libraryService.Get(cmd.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("clustering %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting clustering: %w", err)
	}
	return saved, nil
}

// defaultClusteringName names a clustering after its file and threshold.
func defaultClusteringName(path string, threshold float64) string {
	base := filepath.Base(path)
	return fmt.Sprintf("%s @ %.3f", strings.TrimSuffix(base, filepath.Ext(base)), threshold)
}

func parseClusterID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: cluster id %q", domain.ErrInvalidInput, s)
	}
	return id, nil
}

// sortFlag parses a --sort value. Empty uses the configured order.
func sortFlag(value string) (domain.SortMode, error) {
	if value == "" {
		return defaultSort(), nil
	}
	return domain.ParseSortMode(value)
}

// resolveExportFormat picks the export format. An explicit format wins;
// otherwise a terminal gets a table and files or pipes get csv.
func resolveExportFormat(value, output string, isTerminal func() bool) (domain.ExportFormat, error) {
	if value != "" {
		return domain.ParseExportFormat(value)
	}
	switch strings.ToLower(filepath.Ext(output)) {
	case ".json":
		return domain.ExportJSON, nil
	case ".csv":
		return domain.ExportCSV, nil
	}
	if output == "" && isTerminal() {
		return domain.ExportTable, nil
	}
	return domain.ExportCSV, nil
}

// summarizeContent describes a clustering in one line.
func summarizeContent(content domain.ClusteringContent) string {
	clusters := content.Len()
	unclustered := 0
	if residual, ok := content.Residual(); ok {
		clusters--
		unclustered = len(residual.Images)
	}
	return fmt.Sprintf("%d clusters, %d images (%d unclustered)", clusters, content.ImageCount(), unclustered)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
