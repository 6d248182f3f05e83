// Package service holds the session lifecycle core: the ingestion pipeline
// that turns extracted text into an isolated, expiring vector collection,
// and the query pipeline that answers questions against it.
package service

import (
	"docqa/chunker"
	"docqa/config"
	"docqa/model"
	"docqa/session"
	"docqa/store"
	"time"

	"go.uber.org/zap"
)

type Service struct {
	store     store.VectorStore
	embedder  model.Embedder
	generator model.Generator
	registry  *session.Registry
	splitter  *chunker.Splitter
	logger    *zap.Logger

	batchSize    int
	topK         int
	tokenBudget  int
	batchTimeout time.Duration
}

func New(cfg *config.Config, st store.VectorStore, embedder model.Embedder, generator model.Generator, registry *session.Registry, logger *zap.Logger) *Service {
	return &Service{
		store:        st,
		embedder:     embedder,
		generator:    generator,
		registry:     registry,
		splitter:     chunker.New(cfg.ChunkSize, cfg.ChunkOverlap),
		logger:       logger,
		batchSize:    cfg.BatchSize,
		topK:         cfg.TopK,
		tokenBudget:  cfg.TokenBudget,
		batchTimeout: cfg.ProviderTimeout,
	}
}
