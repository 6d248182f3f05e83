// Package export turns a finished conversation into a downloadable PDF
// summary: the generation backend writes the summary as Markdown, which is
// rendered locally.
package export

import (
	"context"
	"fmt"
	"strings"

	"docqa/model"
	"docqa/types"

	"go.uber.org/zap"
)

type Exporter struct {
	generator model.Generator
	logger    *zap.Logger
}

func New(generator model.Generator, logger *zap.Logger) *Exporter {
	return &Exporter{generator: generator, logger: logger}
}

// Summary produces the PDF bytes for the given conversation history.
func (e *Exporter) Summary(ctx context.Context, history []types.ChatMessage) ([]byte, error) {
	if len(history) == 0 {
		return nil, types.ErrEmptyConversation
	}

	markdown, err := e.generator.Complete(ctx, summaryPrompt(history))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrSummarizationFailed, err)
	}
	if strings.TrimSpace(markdown) == "" {
		return nil, fmt.Errorf("%w: backend returned an empty summary", types.ErrSummarizationFailed)
	}

	pdfBytes, err := renderMarkdown(markdown)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrRenderFailed, err)
	}

	e.logger.Info("conversation summary exported",
		zap.Int("messages", len(history)),
		zap.Int("pdf_bytes", len(pdfBytes)))
	return pdfBytes, nil
}

func summaryPrompt(history []types.ChatMessage) string {
	var sb strings.Builder
	sb.WriteString("Summarize the following conversation about a document as concise Markdown. ")
	sb.WriteString("Use '# Conversation Summary' as the title, '##' headings per topic and bullet points for key facts. ")
	sb.WriteString("Output only the Markdown.\n\nCONVERSATION:\n")
	for _, msg := range history {
		if msg.Sender == types.SenderAssistant {
			sb.WriteString("Assistant: ")
		} else {
			sb.WriteString("User: ")
		}
		sb.WriteString(msg.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}
