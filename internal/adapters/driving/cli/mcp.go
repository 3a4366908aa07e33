package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/simclust/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol integration",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve clusterings to MCP clients",
	Long: `Expose simclust to AI assistants over the Model Context Protocol.

Tools: compute_clusters, similarity_stats, list_clusterings, get_clustering.
Resources: simclust://clusterings and simclust://clusterings/{id}.

The server speaks JSON-RPC on stdin/stdout unless --port is given, in which
case it serves streamable HTTP on that port.

Client configuration:
  {
    "mcpServers": {
      "simclust": {"command": "/path/to/simclust", "args": ["mcp", "serve"]}
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "serve HTTP on this port instead of stdio")
	mcpServeCmd.Flags().String("host", "localhost", "interface to bind when serving HTTP")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

// mcpAddr returns the HTTP listen address, or "" for stdio.
func mcpAddr(cmd *cobra.Command) (string, error) {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return "", err
	}
	if port == 0 {
		return "", nil
	}
	if port < 0 || port > 65535 {
		return "", fmt.Errorf("port %d out of range", port)
	}
	host, err := cmd.Flags().GetString("host")
	if err != nil {
		return "", err
	}
	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	addr, err := mcpAddr(cmd)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Clustering: clusteringService,
		Library:    libraryService,
		Settings:   settingsService,
	}, version)
	if err != nil {
		return err
	}

	if addr != "" {
		cmd.PrintErrf("MCP server listening on http://%s/\n", addr)
	}
	return server.Serve(cmd.Context(), addr)
}
