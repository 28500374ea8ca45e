package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const defaultGroqBaseURL = "https://api.groq.com"

// DefaultModels is the fallback order tried for each generation call.
var DefaultModels = []string{
	"llama-3.3-70b-versatile",
	"llama-3.1-8b-instant",
	"gemma2-9b-it",
	"llama3-70b-8192",
	"llama3-8b-8192",
}

const systemPrompt = "You are an expert technology writer specialized in " +
	"producing practical, engaging, SEO-optimized articles. You write in a " +
	"conversational but authoritative tone, as if explaining to a curious friend."

// Client calls the Groq OpenAI-compatible chat-completions endpoint.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	models  []string
	log     *slog.Logger
}

// NewClient creates a generation client. An empty model list uses
// DefaultModels; an empty base URL targets the Groq API.
func NewClient(apiKey, baseURL string, models []string, timeout time.Duration, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultGroqBaseURL
	}
	if len(models) == 0 {
		models = DefaultModels
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
		models:  models,
		log:     log,
	}
}

// Generate builds the article prompt and tries each model in order until one
// returns a parseable draft. When all models fail it returns a
// *GenerationError wrapping the last failure.
func (c *Client) Generate(ctx context.Context, req Request) (*Draft, error) {
	prompt := buildPrompt(req)

	var lastErr error
	for _, model := range c.models {
		c.log.Debug("trying generation model", "model", model)

		raw, err := c.callModel(ctx, model, prompt)
		if err != nil {
			lastErr = err
			c.log.Warn("model call failed", "model", model, "error", err)
			continue
		}

		draft, err := parseDraft(raw)
		if err != nil {
			lastErr = err
			c.log.Warn("model output rejected", "model", model, "error", err)
			continue
		}

		c.log.Info("article draft generated", "model", model, "title", draft.Title)
		return draft, nil
	}

	return nil, &GenerationError{Models: len(c.models), LastErr: lastErr}
}

func buildPrompt(req Request) string {
	desc := ""
	if req.Description != "" {
		desc = "Description: " + req.Description + "\n"
	}

	return fmt.Sprintf(`Write an SEO-optimized article based on this technology trend:

Title: %s
Category: %s
Source: %s
%s
Requirements:
1. TITLE: an engaging, SEO-optimized title (50-60 characters) built around a long-tail keyword, with a practical or emotional hook. Must not be empty.
2. META: a compelling meta description (140-160 characters) containing the main keyword. Must not be empty.
3. CONTENT: an 800-1200 word article in markdown with:
   - An introduction (100-150 words) opening with a striking question, statistic, or anecdote, explaining the trend in simple terms and promising value.
   - A body (600-900 words) using 3-5 H2 headings with secondary keywords, a clear explanation of the trend, practical use cases, a hypothetical example, and a numbered or bulleted list.
   - A conclusion (100-150 words) summarizing key points with a call to action, ending with a question to invite comments.
4. SEO: main keyword used 3-5 times naturally, 2-3 related long-tail keywords, short readable paragraphs of 2-3 sentences.
5. Originality: do not copy existing content; offer a unique angle.

Respond in EXACTLY this format:
TITLE: [optimized title]
META: [meta description]
KEYWORDS: [keyword1, keyword2, keyword3, keyword4, keyword5]
CONTENT:
[full article in markdown with ## and ###]

IMPORTANT: keep the exact format for the parser. Title, meta description, and content must not be empty.`,
		req.Topic, req.Category, req.Source, desc)
}

func (c *Client) callModel(ctx context.Context, model, prompt string) (string, error) {
	payload := map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		"max_tokens":  2048,
		"temperature": 0.7,
		"top_p":       0.9,
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/openai/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call %s: %w", model, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp map[string]any
		json.NewDecoder(resp.Body).Decode(&errResp)
		return "", fmt.Errorf("%s status %d: %v", model, resp.StatusCode, errResp)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode %s response: %w", model, err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%s: no choices returned", model)
	}
	return result.Choices[0].Message.Content, nil
}
