package ai

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"google.golang.org/genai"
)

// retryDelay hint embedded in Gemini 429 responses, e.g. "retryDelay":"7s"
var retryDelayRegex = regexp.MustCompile(`"retryDelay"\s*:\s*"(\d+)s"`)

type geminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini text-generation client.
func NewGeminiClient(ctx context.Context, apiKey, model string) (Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &geminiClient{client: client, model: model}, nil
}

func (c *geminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	temperature := float32(0.7)
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return "", classifyError(err)
	}
	if resp == nil {
		return "", fmt.Errorf("no response generated")
	}

	text := cleanMarkdown(resp.Text())
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}
	return text, nil
}

// classifyError turns Gemini throttling responses into RateLimitError so
// the retry policy can honor the advertised delay.
func classifyError(err error) error {
	msg := err.Error()
	if m := retryDelayRegex.FindStringSubmatch(msg); m != nil {
		seconds, convErr := strconv.Atoi(m[1])
		if convErr == nil {
			return &RateLimitError{Delay: time.Duration(seconds) * time.Second, Err: err}
		}
	}
	if strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(msg, "429") {
		// throttled without an explicit hint; a conservative default
		return &RateLimitError{Delay: 30 * time.Second, Err: err}
	}
	return fmt.Errorf("failed to generate text: %w", err)
}
