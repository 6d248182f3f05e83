package model

import (
	"strings"
	"sync"

	"docqa/types"

	"github.com/pkoukk/tiktoken-go"
)

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
	encErr  error
)

// CountTokens measures text against the cl100k vocabulary. When the
// encoding cannot be loaded it falls back to a bytes/4 estimate, which is
// close enough for budget trimming.
func CountTokens(text string) int {
	encOnce.Do(func() {
		enc, encErr = tiktoken.EncodingForModel("gpt-3.5-turbo")
	})
	if encErr != nil {
		return len(text) / 4
	}
	return len(enc.Encode(text, nil, nil))
}

// BuildPrompt assembles the generation prompt from the retrieved context,
// the conversation so far and the question. History is trimmed oldest-first
// and context chunks are dropped from the far end until the whole prompt
// fits the token budget; the question itself is never cut.
func BuildPrompt(question string, contextChunks []string, history []types.ChatMessage, tokenBudget int) string {
	for {
		prompt := renderPrompt(question, contextChunks, history)
		if tokenBudget <= 0 || CountTokens(prompt) <= tokenBudget {
			return prompt
		}
		if len(history) > 0 {
			history = history[1:]
			continue
		}
		if len(contextChunks) > 1 {
			contextChunks = contextChunks[:len(contextChunks)-1]
			continue
		}
		return prompt
	}
}

func renderPrompt(question string, contextChunks []string, history []types.ChatMessage) string {
	var sb strings.Builder

	sb.WriteString("CONTEXT:\n")
	sb.WriteString(strings.Join(contextChunks, "\n---\n"))
	sb.WriteString("\n\n")

	if len(history) > 0 {
		sb.WriteString("CONVERSATION SO FAR:\n")
		for _, msg := range history {
			switch msg.Sender {
			case types.SenderAssistant:
				sb.WriteString("Assistant: ")
			default:
				sb.WriteString("User: ")
			}
			sb.WriteString(msg.Text)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("QUESTION:\n")
	sb.WriteString(question)
	sb.WriteString("\n\nANSWER:")
	return sb.String()
}
