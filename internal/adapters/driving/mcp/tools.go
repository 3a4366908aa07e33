package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/simclust/internal/core/domain"
)

// ComputeInput is the input schema for the compute_clusters tool.
type ComputeInput struct {
	Path          string   `json:"path" jsonschema:"path to a JSON or YAML similarity file"`
	Threshold     *float64 `json:"threshold,omitempty" jsonschema:"minimum similarity for two images to be linked (default from settings)"`
	IncludeImages bool     `json:"include_images,omitempty" jsonschema:"list the image ids of every cluster"`
}

// ComputeOutput is the output schema for the compute_clusters tool.
type ComputeOutput struct {
	Threshold    float64         `json:"threshold"`
	ClusterCount int             `json:"cluster_count"`
	ImageCount   int             `json:"image_count"`
	Unclustered  int             `json:"unclustered"`
	Clusters     []ClusterOutput `json:"clusters"`
}

// ClusterOutput represents a single cluster.
type ClusterOutput struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Size     int      `json:"size"`
	ImageIDs []string `json:"image_ids,omitempty"`
}

// StatsInput is the input schema for the similarity_stats tool.
type StatsInput struct {
	Path string `json:"path" jsonschema:"path to a JSON or YAML similarity file"`
}

// StatsOutput is the output schema for the similarity_stats tool.
type StatsOutput struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// ListClusteringsInput is the input schema for the list_clusterings tool.
type ListClusteringsInput struct{}

// ListClusteringsOutput is the output schema for the list_clusterings tool.
type ListClusteringsOutput struct {
	Clusterings []ClusteringSummary `json:"clusterings"`
	Count       int                 `json:"count"`
}

// ClusteringSummary describes a saved clustering without its images.
type ClusteringSummary struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Threshold float64 `json:"threshold"`
	Clusters  int     `json:"clusters"`
	Images    int     `json:"images"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// GetClusteringInput is the input schema for the get_clustering tool.
type GetClusteringInput struct {
	ID            string `json:"id" jsonschema:"the saved clustering id"`
	IncludeImages bool   `json:"include_images,omitempty" jsonschema:"list the image ids of every cluster"`
}

// GetClusteringOutput is the output schema for the get_clustering tool.
type GetClusteringOutput struct {
	Clustering ClusteringSummary `json:"clustering"`
	Clusters   []ClusterOutput   `json:"clusters"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "compute_clusters",
		Description: "Cluster the images of a similarity file at a similarity threshold",
	}, s.handleComputeClusters)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "similarity_stats",
		Description: "Summarise the similarity scores of a similarity file to help choose a threshold",
	}, s.handleSimilarityStats)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_clusterings",
		Description: "List saved clusterings",
	}, s.handleListClusterings)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_clustering",
		Description: "Show the clusters of a saved clustering",
	}, s.handleGetClustering)
}

// handleComputeClusters handles the compute_clusters tool invocation.
func (s *Server) handleComputeClusters(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ComputeInput,
) (*mcp.CallToolResult, ComputeOutput, error) {
	threshold := s.defaultThreshold()
	if input.Threshold != nil {
		threshold = *input.Threshold
	}

	data, err := s.ports.Clustering.Load(ctx, input.Path)
	if err != nil {
		return nil, ComputeOutput{}, err
	}

	content, err := s.ports.Clustering.Compute(data, threshold, domain.MaterializeOptions{})
	if err != nil {
		return nil, ComputeOutput{}, err
	}

	output := ComputeOutput{
		Threshold:    threshold,
		ClusterCount: content.Len(),
		ImageCount:   content.ImageCount(),
		Clusters:     clusterOutputs(content, input.IncludeImages),
	}
	if unclustered, ok := content.Residual(); ok {
		output.Unclustered = len(unclustered.Images)
	}

	return nil, output, nil
}

// handleSimilarityStats handles the similarity_stats tool invocation.
func (s *Server) handleSimilarityStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	data, err := s.ports.Clustering.Load(ctx, input.Path)
	if err != nil {
		return nil, StatsOutput{}, err
	}

	stats := s.ports.Clustering.Stats(data)
	return nil, StatsOutput{
		Count:  stats.Count,
		Min:    stats.Min,
		Max:    stats.Max,
		Mean:   stats.Mean,
		StdDev: stats.StdDev,
	}, nil
}

// handleListClusterings handles the list_clusterings tool invocation.
func (s *Server) handleListClusterings(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListClusteringsInput,
) (*mcp.CallToolResult, ListClusteringsOutput, error) {
	if s.ports.Library == nil {
		return nil, ListClusteringsOutput{}, ErrMissingLibraryService
	}

	saved, err := s.ports.Library.List(ctx)
	if err != nil {
		return nil, ListClusteringsOutput{}, err
	}

	output := ListClusteringsOutput{
		Clusterings: make([]ClusteringSummary, len(saved)),
		Count:       len(saved),
	}
	for i := range saved {
		output.Clusterings[i] = summarize(&saved[i])
	}

	return nil, output, nil
}

// handleGetClustering handles the get_clustering tool invocation.
func (s *Server) handleGetClustering(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetClusteringInput,
) (*mcp.CallToolResult, GetClusteringOutput, error) {
	if s.ports.Library == nil {
		return nil, GetClusteringOutput{}, ErrMissingLibraryService
	}

	saved, err := s.ports.Library.Get(ctx, input.ID)
	if err != nil {
		return nil, GetClusteringOutput{}, fmt.Errorf("getting clustering %s: %w", input.ID, err)
	}

	return nil, GetClusteringOutput{
		Clustering: summarize(saved),
		Clusters:   clusterOutputs(saved.Content, input.IncludeImages),
	}, nil
}

func (s *Server) defaultThreshold() float64 {
	if s.ports.Settings == nil {
		return domain.DefaultThreshold
	}
	settings, err := s.ports.Settings.Get()
	if err != nil {
		return domain.DefaultThreshold
	}
	return settings.Clustering.Threshold
}

// clusterOutputs lists clusters by ascending id, so the residual group
// comes first.
func clusterOutputs(content domain.ClusteringContent, includeImages bool) []ClusterOutput {
	ids := content.IDs()
	out := make([]ClusterOutput, len(ids))
	for i, id := range ids {
		cluster := content.Clusters[id]
		out[i] = ClusterOutput{
			ID:   cluster.ID,
			Name: cluster.Name,
			Size: len(cluster.Images),
		}
		if includeImages {
			imageIDs := make([]string, len(cluster.Images))
			for j := range cluster.Images {
				imageIDs[j] = cluster.Images[j].ID
			}
			out[i].ImageIDs = imageIDs
		}
	}
	return out
}

func summarize(c *domain.SavedClustering) ClusteringSummary {
	return ClusteringSummary{
		ID:        c.ID,
		Name:      c.Name,
		Threshold: c.Threshold,
		Clusters:  c.Content.Len(),
		Images:    c.Content.ImageCount(),
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
