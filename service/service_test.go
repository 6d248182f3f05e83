package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"docqa/chunker"
	"docqa/config"
	"docqa/model"
	"docqa/session"
	"docqa/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// fakeStore is an in-memory stand-in for the Postgres collection store. It
// honors the same NotFound contract.
type fakeStore struct {
	mu          sync.Mutex
	collections map[uuid.UUID][]storedChunk
	deleted     []uuid.UUID

	createErr error
	addErr    func(batch int) error
	addCalls  int
	deleteErr error
}

type storedChunk struct {
	text   string
	vector []float32
	source string
}

func newFakeStore() *fakeStore {
	return &fakeStore{collections: make(map[uuid.UUID][]storedChunk)}
}

func (f *fakeStore) CreateCollection(ctx context.Context) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return uuid.Nil, f.createErr
	}
	id := uuid.New()
	f.collections[id] = []storedChunk{}
	return id, nil
}

func (f *fakeStore) DeleteCollection(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.collections[id]; !ok {
		return store.ErrCollectionNotFound
	}
	delete(f.collections, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeStore) AddChunks(ctx context.Context, id uuid.UUID, texts []string, embeddings [][]float32, sources []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCalls++
	if f.addErr != nil {
		if err := f.addErr(f.addCalls); err != nil {
			return err
		}
	}
	records, ok := f.collections[id]
	if !ok {
		return store.ErrCollectionNotFound
	}
	if len(texts) != len(embeddings) || len(texts) != len(sources) {
		return fmt.Errorf("mismatched batch lengths")
	}
	for i := range texts {
		records = append(records, storedChunk{text: texts[i], vector: embeddings[i], source: sources[i]})
	}
	f.collections[id] = records
	return nil
}

func (f *fakeStore) SearchCollection(ctx context.Context, id uuid.UUID, embedding []float32, limit int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	records, ok := f.collections[id]
	if !ok {
		return nil, store.ErrCollectionNotFound
	}
	texts := []string{}
	for i, rec := range records {
		if i >= limit {
			break
		}
		texts = append(texts, rec.text)
	}
	return texts, nil
}

func (f *fakeStore) chunkCount(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.collections[id])
}

// fakeEmbedder returns one deterministic vector per input text.
type fakeEmbedder struct {
	mu      sync.Mutex
	batches [][]string
	err     func(call int) error
	calls   int
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		if err := f.err(f.calls); err != nil {
			return nil, err
		}
	}
	f.batches = append(f.batches, append([]string(nil), texts...))
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = []float32{float32(len(text)), 0.5, 0.25}
	}
	return vectors, nil
}

// fakeGenerator streams canned fragments and records whether it was called.
type fakeGenerator struct {
	mu        sync.Mutex
	fragments []string
	streamErr error
	prompts   []string
}

func (f *fakeGenerator) Stream(ctx context.Context, prompt string) (<-chan model.StreamToken, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	streamErr := f.streamErr
	fragments := f.fragments
	f.mu.Unlock()

	out := make(chan model.StreamToken, len(fragments)+1)
	for _, frag := range fragments {
		out <- model.StreamToken{Text: frag}
	}
	if streamErr != nil {
		out <- model.StreamToken{Err: streamErr}
	}
	close(out)
	return out, nil
}

func (f *fakeGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return strings.Join(f.fragments, ""), nil
}

func (f *fakeGenerator) promptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type fixture struct {
	svc       *Service
	store     *fakeStore
	embedder  *fakeEmbedder
	generator *fakeGenerator
	registry  *session.Registry
}

func newFixture(opts ...func(*config.Config)) *fixture {
	cfg := config.Load()
	cfg.ChunkSize = chunker.DefaultChunkSize
	cfg.ChunkOverlap = chunker.DefaultOverlap
	for _, opt := range opts {
		opt(cfg)
	}

	st := newFakeStore()
	embedder := &fakeEmbedder{}
	generator := &fakeGenerator{fragments: []string{"Bananas ", "are ", "yellow."}}
	registry := session.NewRegistry()

	return &fixture{
		svc:       New(cfg, st, embedder, generator, registry, zap.NewNop()),
		store:     st,
		embedder:  embedder,
		generator: generator,
		registry:  registry,
	}
}
