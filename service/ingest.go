package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"docqa/store"
	"docqa/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Ingest turns extracted document text into a populated session collection.
// The session id is only handed out once every batch has landed; any
// failure tears the session down completely, so a caller never sees a
// partially ingested session as success.
func (s *Service) Ingest(ctx context.Context, text, filename string) (string, error) {
	id, err := s.store.CreateCollection(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrStorage, err)
	}
	s.registry.Register(id)

	if strings.TrimSpace(text) == "" {
		s.teardown(ctx, id)
		return "", types.ErrInvalidDocument
	}

	chunks := s.splitter.Split(text)
	for start := 0; start < len(chunks); start += s.batchSize {
		end := min(start+s.batchSize, len(chunks))
		if err := s.ingestBatch(ctx, id, chunks[start:end], filename); err != nil {
			s.teardown(ctx, id)
			return "", fmt.Errorf("%w: batch %d: %w", types.ErrIngestionFailed, start/s.batchSize, err)
		}
	}

	s.logger.Info("document ingested",
		zap.String("session_id", id.String()),
		zap.String("source", filename),
		zap.Int("chunks", len(chunks)))
	return id.String(), nil
}

func (s *Service) ingestBatch(ctx context.Context, id uuid.UUID, batch []string, filename string) error {
	bctx, cancel := context.WithTimeout(ctx, s.batchTimeout)
	defer cancel()

	embeddings, err := s.embedder.EmbedBatch(bctx, batch)
	if err != nil {
		return err
	}

	sources := make([]string, len(batch))
	for i := range sources {
		sources[i] = filename
	}
	if err := s.store.AddChunks(bctx, id, batch, embeddings, sources); err != nil {
		return fmt.Errorf("%w: %v", types.ErrStorage, err)
	}
	return nil
}

// teardown removes a half-built session: collection first, registry entry
// always, so no orphaned entry survives an ingestion failure. Cleanup
// failures are logged and swallowed; the original error reaches the caller.
func (s *Service) teardown(ctx context.Context, id uuid.UUID) {
	cleanupCtx := context.WithoutCancel(ctx)
	if err := s.store.DeleteCollection(cleanupCtx, id); err != nil && !errors.Is(err, store.ErrCollectionNotFound) {
		s.logger.Warn("failed to clean up collection of aborted ingestion",
			zap.String("session_id", id.String()),
			zap.Error(err))
	}
	s.registry.Remove(id)
}
