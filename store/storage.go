package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

// ErrCollectionNotFound is returned for any operation against a collection
// id that does not exist (never created, or already deleted).
var ErrCollectionNotFound = errors.New("collection not found")

// VectorStore owns one isolated collection of embedded chunks per session.
// Implementations must be safe for concurrent use; collections are fully
// independent of each other.
type VectorStore interface {
	// CreateCollection provisions an empty collection under a fresh id.
	CreateCollection(ctx context.Context) (uuid.UUID, error)

	// DeleteCollection removes the collection and all its chunks. Deleting
	// an unknown id returns ErrCollectionNotFound.
	DeleteCollection(ctx context.Context, id uuid.UUID) error

	// AddChunks appends records to the collection. texts, embeddings and
	// sources must have equal length; empty input is a no-op.
	AddChunks(ctx context.Context, id uuid.UUID, texts []string, embeddings [][]float32, sources []string) error

	// SearchCollection returns up to limit chunk texts ordered
	// nearest-first by cosine distance. An existing but empty collection
	// yields an empty slice, not an error.
	SearchCollection(ctx context.Context, id uuid.UUID, embedding []float32, limit int) ([]string, error)
}

type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgresStore(ctx context.Context, connStr string, logger *zap.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{
		pool:   pool,
		logger: logger,
	}, nil
}

func (p *PostgresStore) CreateCollection(ctx context.Context) (uuid.UUID, error) {
	id := uuid.New()
	_, err := p.pool.Exec(ctx,
		"INSERT INTO collections (id, created_at) VALUES ($1, now())", id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create collection: %w", err)
	}
	p.logger.Info("collection created", zap.String("collection_id", id.String()))
	return id, nil
}

func (p *PostgresStore) DeleteCollection(ctx context.Context, id uuid.UUID) error {
	tag, err := p.pool.Exec(ctx, "DELETE FROM collections WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete collection %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCollectionNotFound
	}
	p.logger.Info("collection deleted", zap.String("collection_id", id.String()))
	return nil
}

func (p *PostgresStore) AddChunks(ctx context.Context, id uuid.UUID, texts []string, embeddings [][]float32, sources []string) error {
	if len(texts) == 0 {
		return nil
	}
	if len(texts) != len(embeddings) || len(texts) != len(sources) {
		return fmt.Errorf("mismatched batch: %d texts, %d embeddings, %d sources",
			len(texts), len(embeddings), len(sources))
	}
	if err := p.collectionExists(ctx, id); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for i, text := range texts {
		batch.Queue(
			"INSERT INTO chunks (id, collection_id, position, content, source, embedding) VALUES ($1, $2, $3, $4, $5, $6)",
			uuid.New(), id, i, text, sources[i], pgvector.NewVector(embeddings[i]),
		)
	}
	if err := p.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("add %d chunks to %s: %w", len(texts), id, err)
	}
	return nil
}

// SearchCollection runs the existence check and the similarity query as one
// statement, so a collection swept away between a registry lookup and the
// search still surfaces as ErrCollectionNotFound instead of an empty result.
func (p *PostgresStore) SearchCollection(ctx context.Context, id uuid.UUID, embedding []float32, limit int) ([]string, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT hit.content
		FROM collections col
		LEFT JOIN LATERAL (
			SELECT content
			FROM chunks
			WHERE collection_id = col.id
			ORDER BY embedding <=> $2
			LIMIT $3
		) hit ON true
		WHERE col.id = $1`,
		id, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("search collection %s: %w", id, err)
	}
	return collectSearchHits(rows)
}

// collectSearchHits folds the lateral-join rows: no rows means the collection
// itself is gone, a single NULL row means it exists but holds no chunks.
func collectSearchHits(rows pgx.Rows) ([]string, error) {
	defer rows.Close()

	found := false
	texts := []string{}
	for rows.Next() {
		found = true
		var content *string
		if err := rows.Scan(&content); err != nil {
			return nil, err
		}
		if content != nil {
			texts = append(texts, *content)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrCollectionNotFound
	}
	return texts, nil
}

func (p *PostgresStore) collectionExists(ctx context.Context, id uuid.UUID) error {
	var exists bool
	err := p.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM collections WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", id, err)
	}
	if !exists {
		return ErrCollectionNotFound
	}
	return nil
}

func (p *PostgresStore) createTables(ctx context.Context) error {
	query := `
	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS collections (
		id UUID PRIMARY KEY,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL
	);

	CREATE TABLE IF NOT EXISTS chunks (
		id UUID PRIMARY KEY,
		collection_id UUID NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
		position INT NOT NULL,
		content TEXT NOT NULL,
		source TEXT,
		embedding vector(768)
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_collection_id ON chunks(collection_id);
	CREATE INDEX IF NOT EXISTS idx_chunks_embedding ON chunks USING ivfflat (embedding vector_cosine_ops)
	WITH (lists = 100);
	`
	_, err := p.pool.Exec(ctx, query)
	return err
}

func (p *PostgresStore) Init(ctx context.Context) error {
	return p.createTables(ctx)
}

func (p *PostgresStore) Close() {
	if p.pool != nil {
		p.pool.Close()
		p.logger.Info("postgres connection pool closed")
	}
}
