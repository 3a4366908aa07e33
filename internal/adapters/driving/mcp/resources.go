package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/simclust/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for simclust resources.
	uriScheme = "simclust://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing saved clusterings.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "clusterings",
		Name:        "clusterings",
		Description: "List of all saved clusterings",
		MIMEType:    "application/json",
	}, s.handleClusteringsResource)

	// Template for a single clustering.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "clusterings/{clusteringId}",
		Name:        "clustering",
		Description: "Clusters and image ids of a saved clustering",
		MIMEType:    "application/json",
	}, s.handleClusteringResource)
}

// handleClusteringsResource returns a summary of every saved clustering.
func (s *Server) handleClusteringsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Library == nil {
		return jsonResult(req.Params.URI, "[]"), nil
	}

	saved, err := s.ports.Library.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing clusterings: %w", err)
	}

	infos := make([]ClusteringSummary, len(saved))
	for i := range saved {
		infos[i] = summarize(&saved[i])
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling clusterings: %w", err)
	}

	return jsonResult(req.Params.URI, string(data)), nil
}

// handleClusteringResource returns one clustering with its image ids.
func (s *Server) handleClusteringResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Library == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract clusteringId from URI: simclust://clusterings/{clusteringId}
	id := extractClusteringID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	saved, err := s.ports.Library.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting clustering: %w", err)
	}

	data, err := json.MarshalIndent(GetClusteringOutput{
		Clustering: summarize(saved),
		Clusters:   clusterOutputs(saved.Content, true),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling clustering: %w", err)
	}

	return jsonResult(req.Params.URI, string(data)), nil
}

func jsonResult(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		}},
	}
}

// extractClusteringID extracts the id from a URI like simclust://clusterings/{clusteringId}.
func extractClusteringID(uri string) string {
	const prefix = uriScheme + "clusterings/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
