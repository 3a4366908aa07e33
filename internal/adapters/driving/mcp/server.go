package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/simclust/internal/logger"
)

const instructions = `simclust groups images by pairwise visual similarity.
Use compute_clusters on a similarity file to preview clusters at a threshold,
similarity_stats to pick a threshold, and list_clusterings / get_clustering to
read clusterings a user has saved and edited.`

// shutdownGrace bounds how long in-flight HTTP requests may run after the
// context is cancelled.
const shutdownGrace = 5 * time.Second

// Server exposes the clustering and library ports as MCP tools and resources.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer builds a server reporting version to clients. An empty version
// reads as "dev".
func NewServer(ports *Ports, version string) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	if version == "" {
		version = "dev"
	}

	s := &Server{
		ports: ports,
		server: mcp.NewServer(
			&mcp.Implementation{Name: "simclust", Version: version},
			&mcp.ServerOptions{Instructions: instructions},
		),
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Serve answers requests until ctx is cancelled: over stdio when addr is
// empty, otherwise as streamable HTTP on addr.
func (s *Server) Serve(ctx context.Context, addr string) error {
	if addr == "" {
		logger.Debug("mcp: serving over stdio")
		return s.server.Run(ctx, &mcp.StdioTransport{})
	}
	return s.serveHTTP(ctx, addr)
}

// Handler returns the streamable HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)
}

func (s *Server) serveHTTP(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("mcp: shutdown: %v", err)
		}
	}()

	logger.Debug("mcp: serving over HTTP on %s", addr)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		<-stopped
		return nil
	}
	return err
}
