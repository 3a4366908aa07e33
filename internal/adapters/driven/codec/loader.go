package codec

import (
	"context"
	"fmt"
	"os"

	"github.com/custodia-labs/simclust/internal/core/domain"
	"github.com/custodia-labs/simclust/internal/core/ports/driven"
)

// Ensure FileLoader implements the interface.
var _ driven.SimilarityLoader = (*FileLoader)(nil)

// FileLoader reads similarity files from the local filesystem.
type FileLoader struct{}

// NewFileLoader creates a new similarity file loader.
func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

// Load reads and decodes the similarity file at path. The format follows
// the file extension.
func (l *FileLoader) Load(ctx context.Context, path string) (*domain.SimilarityData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open similarity file: %w", err)
	}
	defer f.Close()

	return DecodeSimilarity(f, FormatFromPath(path))
}
