package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/simclust/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/simclust/internal/core/domain"
	"github.com/custodia-labs/simclust/internal/core/ports/driven"
)

// Store is a SQLite-based storage that provides access to the metadata
// store interfaces through wrapper types.
type Store struct {
	db    *sql.DB
	path  string
	codec driven.ClusteringCodec
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.simclust/data/clusterings.db.
// Clustering content is persisted in the codec's wire form.
func NewStore(dataDir string, codec driven.ClusteringCodec) (*Store, error) {
	if codec == nil {
		return nil, fmt.Errorf("%w: clustering codec is required", domain.ErrInvalidInput)
	}
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".simclust", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "clusterings.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:    db,
		path:  dbPath,
		codec: codec,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ClusteringStore returns a ClusteringStore interface backed by this store.
func (s *Store) ClusteringStore() driven.ClusteringStore {
	return &clusteringStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Clustering Store ====================

// clusteringStore implements driven.ClusteringStore.
type clusteringStore struct {
	store *Store
}

var _ driven.ClusteringStore = (*clusteringStore)(nil)

// Save stores or updates a clustering. created_at is kept from the first save.
func (s *clusteringStore) Save(ctx context.Context, clustering domain.SavedClustering) error {
	payload, err := s.store.codec.Encode(clustering.Content)
	if err != nil {
		return fmt.Errorf("encoding content: %w", err)
	}

	now := time.Now().UTC()
	if clustering.CreatedAt.IsZero() {
		clustering.CreatedAt = now
	}
	clustering.UpdatedAt = now

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO clusterings (id, name, threshold, cluster_count, image_count, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			threshold = excluded.threshold,
			cluster_count = excluded.cluster_count,
			image_count = excluded.image_count,
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, clustering.ID, clustering.Name, clustering.Threshold,
		clustering.Content.Len(), clustering.Content.ImageCount(), string(payload),
		clustering.CreatedAt.UTC(), clustering.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving clustering: %w", err)
	}
	return nil
}

// Get retrieves a clustering by ID.
func (s *clusteringStore) Get(ctx context.Context, id string) (*domain.SavedClustering, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, threshold, payload, created_at, updated_at
		FROM clusterings WHERE id = ?
	`, id)

	clustering, err := s.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return clustering, nil
}

// Delete removes a clustering.
func (s *clusteringStore) Delete(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM clusterings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting clustering: %w", err)
	}
	return nil
}

// List returns all clusterings, oldest first.
func (s *clusteringStore) List(ctx context.Context) ([]domain.SavedClustering, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, threshold, payload, created_at, updated_at
		FROM clusterings
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying clusterings: %w", err)
	}
	defer rows.Close()

	var clusterings []domain.SavedClustering //nolint:prealloc // size unknown from query
	for rows.Next() {
		clustering, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		clusterings = append(clusterings, *clustering)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating clusterings: %w", err)
	}
	return clusterings, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (s *clusteringStore) scan(row rowScanner) (*domain.SavedClustering, error) {
	var clustering domain.SavedClustering
	var payload string
	var createdAt, updatedAt sql.NullTime
	if err := row.Scan(&clustering.ID, &clustering.Name, &clustering.Threshold,
		&payload, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning clustering: %w", err)
	}

	content, err := s.store.codec.Decode([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("decoding clustering %s: %w", clustering.ID, err)
	}
	clustering.Content = content

	if createdAt.Valid {
		clustering.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		clustering.UpdatedAt = updatedAt.Time
	}
	return &clustering, nil
}
