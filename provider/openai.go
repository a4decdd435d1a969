package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ZaguanLabs/subtrans"
)

// OpenAIProvider translates batches through an OpenAI chat model. Slower
// and costlier than a dedicated translation API, but noticeably better on
// idiomatic spoken dialogue.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  // OpenAI API key
	Model       string  // Model to use (default: "gpt-4o-mini")
	Temperature float32 // Temperature for generation (default: 0.3)
	BaseURL     string  // Custom base URL (optional)
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

// TranslateBatch translates a batch of subtitle lines in one completion.
func (p *OpenAIProvider) TranslateBatch(ctx context.Context, texts []string, targetLang string) ([]Result, error) {
	if len(texts) == 0 {
		return []Result{}, nil
	}

	payload, _ := json.Marshal(texts)

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.systemPrompt(targetLang)},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, &subtrans.ProviderError{
			Code:    subtrans.CodeNetworkFailure,
			Message: "no response from model",
		}
	}

	translations, perr := parseTranslations(resp.Choices[0].Message.Content, len(texts))
	if perr != nil {
		return nil, perr
	}

	return okResults(translations), nil
}

func (p *OpenAIProvider) systemPrompt(targetLang string) string {
	targetName := subtrans.GetLanguageName(targetLang)

	return fmt.Sprintf(`You are an expert subtitle translator. Translate each line into natural, idiomatic %s as spoken dialogue.

- Keep each translation a single line suitable for a subtitle.
- Never translate proper names, numbers, or placeholders.
- Preserve the tone of the original line.

Return a valid JSON object with a single key "translations" containing an array of strings in the exact same order as the input array. Do NOT wrap in Markdown code blocks.`, targetName)
}

// parseTranslations extracts the translations array from the model output.
func parseTranslations(content string, expectedCount int) ([]string, *subtrans.ProviderError) {
	var parsed struct {
		Translations []string `json:"translations"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil || parsed.Translations == nil {
		return nil, &subtrans.ProviderError{
			Code:    subtrans.CodeUnknown,
			Message: "invalid response format from model",
		}
	}
	if len(parsed.Translations) != expectedCount {
		return nil, &subtrans.ProviderError{
			Code:    subtrans.CodeUnknown,
			Message: "model returned wrong line count",
			Cause:   &subtrans.CountMismatchError{Expected: expectedCount, Got: len(parsed.Translations)},
		}
	}
	return parsed.Translations, nil
}

// classifyOpenAIError maps go-openai errors onto the engine's taxonomy.
func classifyOpenAIError(err error) *subtrans.ProviderError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusUnauthorized:
			return &subtrans.ProviderError{Code: subtrans.CodeUnauthorized, Message: apiErr.Message, Cause: err}
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			if strings.Contains(apiErr.Type, "insufficient_quota") {
				return &subtrans.ProviderError{Code: subtrans.CodeQuotaExceeded, Message: apiErr.Message, Cause: err}
			}
			return &subtrans.ProviderError{Code: subtrans.CodeRateLimited, Message: apiErr.Message, Cause: err}
		case apiErr.HTTPStatusCode >= 500:
			return &subtrans.ProviderError{Code: subtrans.CodeNetworkFailure, Message: apiErr.Message, Cause: err}
		default:
			return &subtrans.ProviderError{Code: subtrans.CodeUnknown, Message: apiErr.Message, Cause: err}
		}
	}
	return &subtrans.ProviderError{Code: subtrans.CodeNetworkFailure, Message: "OpenAI API call failed", Cause: err}
}

// Verify OpenAIProvider implements Provider
var _ Provider = (*OpenAIProvider)(nil)
