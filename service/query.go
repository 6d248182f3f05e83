package service

import (
	"context"
	"errors"
	"fmt"

	"docqa/model"
	"docqa/store"
	"docqa/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NoContextAnswer is emitted when retrieval comes back empty. The
// generation backend is not invoked in that case.
const NoContextAnswer = "I could not find any relevant information in the document to answer your question."

// Answer couples the streamed fragments with the retrieved chunk texts.
// Contexts is complete before the stream starts, so callers can ship it as
// response metadata even if generation fails partway.
type Answer struct {
	Contexts []string
	Stream   <-chan model.StreamToken
}

func (s *Service) Query(ctx context.Context, sessionID, question string, history []types.ChatMessage) (*Answer, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, types.ErrSessionNotFound
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, []string{question})
	if err != nil {
		return nil, err
	}

	contexts, err := s.store.SearchCollection(ctx, id, embeddings[0], s.topK)
	if err != nil {
		if errors.Is(err, store.ErrCollectionNotFound) {
			return nil, types.ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", types.ErrStorage, err)
	}

	if len(contexts) == 0 {
		out := make(chan model.StreamToken, 1)
		out <- model.StreamToken{Text: NoContextAnswer}
		close(out)
		return &Answer{Contexts: []string{}, Stream: out}, nil
	}

	prompt := model.BuildPrompt(question, contexts, history, s.tokenBudget)
	stream, err := s.generator.Stream(ctx, prompt)
	if err != nil {
		return nil, err
	}

	s.logger.Info("query answered from context",
		zap.String("session_id", sessionID),
		zap.Int("retrieved_chunks", len(contexts)),
		zap.Int("prompt_tokens", model.CountTokens(prompt)))
	return &Answer{Contexts: contexts, Stream: stream}, nil
}
