// Package openai implements pkg/textgen's Generator against any
// OpenAI-compatible chat completions endpoint.
package openai

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
	// DefaultBaseURL is the OpenAI API URL.
	DefaultBaseURL = "https://api.openai.com"

	// DefaultModel is the default chat model.
	DefaultModel = "gpt-4o-mini"

	// DefaultTimeout bounds a single generation request.
	DefaultTimeout = 2 * time.Minute
)

// Generator wraps the /v1/chat/completions API.
type Generator struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
}

// GeneratorConfig holds configuration for the OpenAI-compatible generator.
type GeneratorConfig struct {
	// BaseURL is the API root. Defaults to DefaultBaseURL if empty.
	BaseURL string

	// Model is the chat model to use. Defaults to DefaultModel if empty.
	Model string

	// APIKey is sent as a bearer token when non-empty.
	APIKey string

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
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewGenerator creates a new OpenAI-compatible generator.
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
		apiKey:  cfg.APIKey,
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
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("%w: marshaling request: %v", textgen.ErrGeneration, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %v", textgen.ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: sending request: %v", textgen.ErrGeneration, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: upstream returned status %d: %s", textgen.ErrGeneration, resp.StatusCode, string(body))
	}

	var response chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", textgen.ErrGeneration, err)
	}
	if response.Error != nil {
		return "", fmt.Errorf("%w: upstream error: %s", textgen.ErrGeneration, response.Error.Message)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", textgen.ErrGeneration)
	}

	return response.Choices[0].Message.Content, nil
}

// Close releases resources held by the generator.
func (g *Generator) Close() error {
	return nil
}

var _ textgen.Generator = (*Generator)(nil)
