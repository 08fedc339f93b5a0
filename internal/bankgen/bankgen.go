// Package bankgen drafts question banks with an OpenAI-compatible chat model.
package bankgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pavelanni/spacequiz/internal/bank"
	"github.com/pavelanni/spacequiz/internal/bankgen/prompts"
	"github.com/pavelanni/spacequiz/internal/model"
)

// Request describes the bank to draft.
type Request struct {
	ID          string
	Topic       string
	Language    string
	Choice      int
	TrueFalse   int
	MultiSelect bool
}

// Result holds a generated bank both in file form and validated.
type Result struct {
	File bank.File
	Bank model.Bank
	Raw  string
}

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api   *openai.Client
	model string
	style prompts.Style
}

// New creates a generation client. An unknown style is rejected.
func New(baseURL, apiKey, modelName, style string) (*Client, error) {
	if !prompts.IsValidStyle(style) {
		return nil, fmt.Errorf("invalid prompt style %q", style)
	}
	if err := prompts.Load(prompts.Templates); err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(config),
		model: modelName,
		style: prompts.Style(style),
	}, nil
}

// Ping checks that the endpoint answers a model listing.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// Generate asks the model for a bank and validates what comes back.
// A response that parses but fails validation returns the Result together
// with a *bank.ValidationError so callers can show the raw draft.
func (c *Client) Generate(ctx context.Context, req Request) (*Result, error) {
	if req.Choice < 0 || req.TrueFalse < 0 || req.Choice+req.TrueFalse == 0 {
		return nil, errors.New("request at least one question")
	}
	if req.ID == "" {
		return nil, errors.New("bank id is required")
	}

	systemPrompt, err := prompts.BuildGeneratePrompt(c.style, prompts.GenerateData{
		Topic:       req.Topic,
		Language:    req.Language,
		Choice:      req.Choice,
		TrueFalse:   req.TrueFalse,
		MultiSelect: req.MultiSelect,
	})
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Write the question bank now."},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("LLM returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	slog.Debug("LLM response", "raw", raw)

	var f bank.File
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return nil, fmt.Errorf("parse LLM response: %w (raw: %s)", err, raw)
	}
	if f.Name == "" {
		f.Name = req.Topic
	}

	result := &Result{File: f, Raw: raw}
	b, err := bank.Normalize(req.ID, f)
	if err != nil {
		return result, err
	}
	result.Bank = b
	slog.Info("generated bank", "id", req.ID, "choice", len(b.Choice), "true_false", len(b.TrueFalse))
	return result, nil
}
