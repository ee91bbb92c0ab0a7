// Package ollama implements pkg/textgen's Generator against Ollama's chat API
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wayfarerhq/wayfarer/pkg/textgen"
)

const (
	// DefaultModel is the default chat model.
	DefaultModel = "llama3.1"

	// DefaultBaseURL is the default Ollama API URL.
	DefaultBaseURL = "http://localhost:11434"

	// DefaultTimeout bounds a single generation request.
	DefaultTimeout = 2 * time.Minute
)

// Generator wraps Ollama's non-streaming chat API.
type Generator struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// GeneratorConfig holds configuration for the Ollama generator.
type GeneratorConfig struct {
	// BaseURL is the Ollama API URL. Defaults to DefaultBaseURL if empty.
	BaseURL string

	// Model is the chat model to use. Defaults to DefaultModel if empty.
	Model string

	// Timeout bounds each request. Defaults to DefaultTimeout.
	Timeout time.Duration
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error"`
}

// NewGenerator creates a new generator using Ollama's chat API.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Generator{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Generate returns the model's text response for the given prompt.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	request := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Stream: false,
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("%w: marshaling request: %v", textgen.ErrGeneration, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %v", textgen.ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: sending request: %v", textgen.ErrGeneration, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: ollama returned status %d: %s", textgen.ErrGeneration, resp.StatusCode, string(body))
	}

	var response chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", textgen.ErrGeneration, err)
	}
	if response.Error != "" {
		return "", fmt.Errorf("%w: ollama error: %s", textgen.ErrGeneration, response.Error)
	}

	return response.Message.Content, nil
}

// Close releases resources held by the generator.
func (g *Generator) Close() error {
	// HTTP client doesn't require explicit cleanup
	return nil
}

var _ textgen.Generator = (*Generator)(nil)
