package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
)

const (
	maxRetries     = 3
	initialBackoff = time.Second
	maxPromptChars = 30000
)

var (
	ErrGenerationFailed  = errors.New("failed to generate content")
	ErrGeneratorDisabled = errors.New("generator is disabled")
)

// Generator produces free text from a system instruction and a user prompt.
// Output is untrusted: callers must parse and validate anything structured.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// GeminiGenerator implements Generator on top of the Gemini API client.
type GeminiGenerator struct {
	client      *genai.Client
	modelName   string
	temperature float32
	timeout     time.Duration
}

// GeminiOption is a functional option for GeminiGenerator
type GeminiOption func(*GeminiGenerator)

// WithModel sets the model name
func WithModel(name string) GeminiOption {
	return func(g *GeminiGenerator) {
		g.modelName = name
	}
}

// WithTemperature sets the sampling temperature
func WithTemperature(t float32) GeminiOption {
	return func(g *GeminiGenerator) {
		g.temperature = t
	}
}

// WithTimeout bounds each generation call
func WithTimeout(d time.Duration) GeminiOption {
	return func(g *GeminiGenerator) {
		g.timeout = d
	}
}

// NewGeminiGenerator creates a generator over an initialized Gemini client.
func NewGeminiGenerator(client *genai.Client, opts ...GeminiOption) *GeminiGenerator {
	g := &GeminiGenerator{
		client:      client,
		modelName:   "gemini-2.0-flash",
		temperature: 0.2,
		timeout:     30 * time.Second,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate implements Generator with bounded retry and doubling backoff.
func (g *GeminiGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if g.client == nil {
		return "", errors.New("gemini client not set")
	}

	model := g.client.GenerativeModel(g.modelName)
	model.SetTemperature(g.temperature)
	if systemPrompt != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}

	// Truncate prompt if too long to avoid context limits
	prompt := userPrompt
	if len(prompt) > maxPromptChars {
		prompt = prompt[:maxPromptChars] + "\n\n[Content truncated due to length...]"
		log.Printf("Warning: Prompt too long (%d chars), truncating to %d chars", len(userPrompt), maxPromptChars)
	}

	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		resp, err := model.GenerateContent(callCtx, genai.Text(prompt))
		cancel()
		if err != nil {
			if attempt == maxRetries-1 {
				return "", fmt.Errorf("failed to generate content after %d attempts: %w", maxRetries, err)
			}
			continue
		}

		text := extractText(resp)
		if text != "" {
			return text, nil
		}

		if attempt == maxRetries-1 {
			return "", ErrGenerationFailed
		}
	}

	return "", ErrGenerationFailed
}

// extractText flattens all text parts of all candidates.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				builder.WriteString(string(text))
			}
		}
	}
	return strings.TrimSpace(builder.String())
}

// DisabledGenerator always reports the generator as unavailable. It is used
// when the deployment runs without a language model; callers fall back to
// their deterministic templates.
type DisabledGenerator struct{}

// Generate implements Generator
func (DisabledGenerator) Generate(context.Context, string, string) (string, error) {
	return "", ErrGeneratorDisabled
}
