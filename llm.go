package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"
const defaultOpenAIModel = "gpt-4o-mini"

// LLMClassifier implements Classifier on top of the configured provider.
// Every call classifies a single item so one malformed response or timeout
// degrades only that item.
type LLMClassifier struct {
	provider     string
	model        string
	anthropicKey string
	openaiKey    string
}

// NewLLMClassifier returns the delegated classifier for cfg, or nil when no
// provider is configured (heuristic-only mode).
func NewLLMClassifier(cfg Config) *LLMClassifier {
	if !cfg.AIEnabled() {
		return nil
	}
	model := cfg.LLMModel
	if model == "" {
		if cfg.LLMProvider == "openai" {
			model = defaultOpenAIModel
		} else {
			model = defaultAnthropicModel
		}
	}
	return &LLMClassifier{
		provider:     cfg.LLMProvider,
		model:        model,
		anthropicKey: cfg.AnthropicAPIKey,
		openaiKey:    cfg.OpenAIAPIKey,
	}
}

func (c *LLMClassifier) Classify(ctx context.Context, item WorkItem) (Decision, error) {
	systemPrompt, userPrompt := buildClassifyPrompts(item)

	var responseText string
	var err error
	switch c.provider {
	case "openai":
		responseText, err = callOpenAI(ctx, c.openaiKey, c.model, systemPrompt, userPrompt)
	default:
		responseText, err = callAnthropic(ctx, c.anthropicKey, c.model, systemPrompt, userPrompt)
	}
	if err != nil {
		return Decision{}, err
	}
	return parseClassifyResponse(responseText)
}

func buildClassifyPrompts(item WorkItem) (string, string) {
	var categoryLines strings.Builder
	for _, name := range CategoryOrder {
		categoryLines.WriteString("- " + name + "\n")
	}

	systemPrompt := fmt.Sprintf(`You are a bug triage expert. Classify one bug report.
Choose exactly one category from:
%s
If none fit, use "Uncategorized".
Also judge:
- actionable: true if someone could understand the problem and take concrete steps to fix it
- bot_author: true if the creator name looks like an automated system or bot account rather than a real person

Respond with JSON only (no markdown):
{"category": "BSoD/Crashes", "actionable": true, "bot_author": false}`, categoryLines.String())

	userPrompt := fmt.Sprintf("Title: %q\nDescription: %q\nCreated by: %q",
		strings.TrimSpace(item.Title), strings.TrimSpace(item.Description), strings.TrimSpace(item.CreatedBy))
	return systemPrompt, userPrompt
}

func parseClassifyResponse(responseText string) (Decision, error) {
	responseText = strings.TrimSpace(responseText)
	responseText = strings.TrimPrefix(responseText, "```json")
	responseText = strings.TrimPrefix(responseText, "```")
	responseText = strings.TrimSuffix(responseText, "```")
	responseText = strings.TrimSpace(responseText)

	var parsed struct {
		Category   string `json:"category"`
		Actionable bool   `json:"actionable"`
		BotAuthor  bool   `json:"bot_author"`
	}
	if err := json.Unmarshal([]byte(responseText), &parsed); err != nil {
		return Decision{}, fmt.Errorf("parsing classify response: %w (response: %s)", err, responseText)
	}
	return Decision{
		Category:   strings.TrimSpace(parsed.Category),
		Actionable: parsed.Actionable,
		BotAuthor:  parsed.BotAuthor,
	}, nil
}

// --- Anthropic ---

func callAnthropic(ctx context.Context, apiKey, model, systemPrompt, userPrompt string) (string, error) {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 256,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt, CacheControl: anthropic.NewCacheControlEphemeralParam()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		log.Printf("llm anthropic error: %v", err)
		return "", fmt.Errorf("Anthropic API error: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in Anthropic response")
}

// --- OpenAI ---

type openAIRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func callOpenAI(ctx context.Context, apiKey, model, systemPrompt, userPrompt string) (string, error) {
	reqBody := openAIRequest{
		Model: model,
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", "https://api.openai.com/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Printf("llm openai error: %v", err)
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var openAIResp openAIResponse
	if err := json.Unmarshal(respBody, &openAIResp); err != nil {
		return "", fmt.Errorf("parsing OpenAI response: %w", err)
	}

	if openAIResp.Error != nil {
		log.Printf("llm openai api error: %s", openAIResp.Error.Message)
		return "", fmt.Errorf("OpenAI API error: %s", openAIResp.Error.Message)
	}
	if len(openAIResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenAI response")
	}
	return openAIResp.Choices[0].Message.Content, nil
}
