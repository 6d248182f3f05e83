package model

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"docqa/types"
)

// StreamToken is one fragment of a streamed answer. A token carrying a
// non-nil Err is terminal; the channel is closed right after it.
type StreamToken struct {
	Text string
	Err  error
}

// Generator produces natural-language output from a prompt. Stream returns
// fragments as the backend emits them; cancelling ctx abandons the
// underlying request.
type Generator interface {
	Stream(ctx context.Context, prompt string) (<-chan StreamToken, error)
	Complete(ctx context.Context, prompt string) (string, error)
}

// OllamaGenerator talks to the Ollama /api/generate endpoint. Streamed
// responses arrive as JSON lines, one object per fragment.
type OllamaGenerator struct {
	apiURL  string
	model   string
	timeout time.Duration
	client  *http.Client
}

type generateRequest struct {
	Model  string `json:"model"`
	System string `json:"system"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

const systemPrompt = `You are a helpful assistant that answers questions about an uploaded document.
Answer based only on the provided context. If the answer is not in the context, clearly state that the information is not available in the provided text.
Explain the answer in simple, clear terms. Do not add introductions like 'Of course!' or 'Here's the answer:'.`

func NewOllamaGenerator(apiURL, model string, timeout time.Duration) *OllamaGenerator {
	// No overall client timeout: a streamed answer may legitimately take
	// longer than any single-request budget. The timeout applies to
	// non-streaming completions only; streams are bounded by ctx.
	return &OllamaGenerator{
		apiURL:  apiURL,
		model:   model,
		timeout: timeout,
		client:  &http.Client{Timeout: 0},
	}
}

func (g *OllamaGenerator) Stream(ctx context.Context, prompt string) (<-chan StreamToken, error) {
	resp, err := g.send(ctx, prompt, true)
	if err != nil {
		return nil, err
	}

	out := make(chan StreamToken)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		decoder := json.NewDecoder(resp.Body)
		for {
			var genResp generateResponse
			if err := decoder.Decode(&genResp); err != nil {
				if errors.Is(err, io.EOF) {
					return
				}
				if ctx.Err() != nil {
					// Caller went away, nobody is reading anymore.
					return
				}
				select {
				case out <- StreamToken{Err: fmt.Errorf("%w: generate: decode stream: %v", types.ErrProvider, err)}:
				case <-ctx.Done():
				}
				return
			}

			if genResp.Response != "" {
				select {
				case out <- StreamToken{Text: genResp.Response}:
				case <-ctx.Done():
					return
				}
			}
			if genResp.Done {
				return
			}
		}
	}()
	return out, nil
}

func (g *OllamaGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.send(ctx, prompt, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("%w: generate: decode response: %v", types.ErrProvider, err)
	}
	return genResp.Response, nil
}

func (g *OllamaGenerator) send(ctx context.Context, prompt string, stream bool) (*http.Response, error) {
	body, err := json.Marshal(generateRequest{
		Model:  g.model,
		System: systemPrompt,
		Prompt: prompt,
		Stream: stream,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: generate: %v", types.ErrProvider, err)
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("%w: generate: status %d, body: %s", types.ErrProvider, resp.StatusCode, string(respBody))
	}
	return resp, nil
}
