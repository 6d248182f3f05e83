package types

import "errors"

// Domain error taxonomy. Handlers map these onto HTTP statuses, the core
// only ever wraps them with fmt.Errorf("...: %w", ...).
var (
	ErrInvalidDocument = errors.New("document is empty or contains no readable text")

	ErrParse = errors.New("failed to extract text from document")

	// ErrSessionNotFound covers expired, swept and never-created sessions
	// alike. The caller has to re-ingest the document.
	ErrSessionNotFound = errors.New("session not found or expired")

	ErrProvider = errors.New("model provider request failed")

	ErrStorage = errors.New("vector store operation failed")

	ErrIngestionFailed = errors.New("document ingestion failed")

	ErrEmptyConversation = errors.New("conversation history is empty")

	ErrSummarizationFailed = errors.New("failed to summarize conversation")

	ErrRenderFailed = errors.New("failed to render summary document")
)
