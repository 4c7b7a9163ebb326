// Package openai generates post drafts through an OpenAI-compatible
// chat-completions endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"trendpress/internal/domain"
	"trendpress/internal/ports"
)

const maxResponseBytes = 1 << 20

const systemPrompt = `You are a lifestyle-and-tech influencer writing short social posts.
Style: an eye-catching title, short energetic paragraphs with emoji, and a
closing block of 3-5 topical hashtags.
Respond with a single JSON object with fields "title" (string), "body"
(string) and "tags" (array of hashtag strings starting with '#'). No other
text.`

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

type Client struct {
	cfg    Config
	client *http.Client
}

var _ ports.Generator = (*Client)(nil)

func NewClient(cfg Config, client *http.Client) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("generator base url is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("generator model is required")
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &Client{cfg: cfg, client: client}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type generatedPayload struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags"`
}

func (c *Client) Generate(ctx context.Context, trend domain.Trend) (ports.GeneratedPost, error) {
	userPrompt := fmt.Sprintf("Write a post about this trending topic: %s (seen on %s).", trend.Title, trend.Source)

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.9,
		TopP:        0.7,
	})
	if err != nil {
		return ports.GeneratedPost{}, fmt.Errorf("encode chat request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return ports.GeneratedPost{}, fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return ports.GeneratedPost{}, fmt.Errorf("call chat endpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return ports.GeneratedPost{}, fmt.Errorf("chat endpoint returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&parsed); err != nil {
		return ports.GeneratedPost{}, fmt.Errorf("decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return ports.GeneratedPost{}, errors.New("chat response has no choices")
	}

	payload, err := decodePayload(parsed.Choices[0].Message.Content)
	if err != nil {
		return ports.GeneratedPost{}, err
	}

	return ports.GeneratedPost{
		Title: payload.Title,
		Body:  payload.Body,
		Tags:  payload.Tags,
	}, nil
}

// Models wrap JSON answers in markdown fences often enough that stripping
// them here is cheaper than fighting it with prompts.
func decodePayload(raw string) (generatedPayload, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var payload generatedPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return generatedPayload{}, fmt.Errorf("decode generated payload: %w", err)
	}
	if payload.Title == "" || payload.Body == "" {
		return generatedPayload{}, errors.New("generated payload missing title or body")
	}
	return payload, nil
}
