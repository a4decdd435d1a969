package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ZaguanLabs/subtrans"
)

// MicrosoftProvider translates through the Microsoft Translator REST API
// (api.cognitive.microsofttranslator.com, v3.0). The free tier's generous
// character quota makes it the product's default remote back-end.
type MicrosoftProvider struct {
	apiKey  string
	region  string
	baseURL string
	client  *http.Client
}

// MicrosoftConfig holds configuration for the Microsoft Translator provider.
type MicrosoftConfig struct {
	APIKey  string        // Azure Translator subscription key
	Region  string        // Azure region (default: "global")
	BaseURL string        // Endpoint override, mainly for tests
	Timeout time.Duration // HTTP client timeout (default: 10s)
}

// microsoftLanguageCodes maps engine language codes to the codes the
// Translator API expects.
var microsoftLanguageCodes = map[string]string{
	"zh":    "zh-Hans",
	"zh-CN": "zh-Hans",
	"zh-TW": "zh-Hant",
}

// NewMicrosoftProvider creates a new Microsoft Translator provider.
func NewMicrosoftProvider(cfg MicrosoftConfig) *MicrosoftProvider {
	region := cfg.Region
	if region == "" {
		region = "global"
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.cognitive.microsofttranslator.com"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &MicrosoftProvider{
		apiKey:  cfg.APIKey,
		region:  region,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type microsoftItem struct {
	Text string `json:"text"`
}

type microsoftTranslation struct {
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

type microsoftError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// TranslateBatch translates texts in a single API request.
func (p *MicrosoftProvider) TranslateBatch(ctx context.Context, texts []string, targetLang string) ([]Result, error) {
	if len(texts) == 0 {
		return []Result{}, nil
	}

	body := make([]microsoftItem, len(texts))
	for i, text := range texts {
		body[i].Text = text
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &subtrans.ProviderError{Code: subtrans.CodeUnknown, Message: "encoding request", Cause: err}
	}

	url := fmt.Sprintf("%s/translate?api-version=3.0&to=%s", p.baseURL, p.languageCode(targetLang))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &subtrans.ProviderError{Code: subtrans.CodeUnknown, Message: "building request", Cause: err}
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", p.apiKey)
	req.Header.Set("Ocp-Apim-Subscription-Region", p.region)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-ClientTraceId", uuid.NewString())
	req.Header.Set("User-Agent", subtrans.UserAgent())

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &subtrans.ProviderError{Code: subtrans.CodeNetworkFailure, Message: "calling translator endpoint", Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &subtrans.ProviderError{Code: subtrans.CodeNetworkFailure, Message: "reading response", Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, p.classifyStatus(resp.StatusCode, data)
	}

	var parsed []microsoftTranslation
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, &subtrans.ProviderError{Code: subtrans.CodeUnknown, Message: "decoding response", Cause: err}
	}
	if len(parsed) != len(texts) {
		return nil, &subtrans.ProviderError{
			Code:    subtrans.CodeUnknown,
			Message: "unexpected response shape",
			Cause:   &subtrans.CountMismatchError{Expected: len(texts), Got: len(parsed)},
		}
	}

	results := make([]Result, len(texts))
	for i, item := range parsed {
		if len(item.Translations) == 0 {
			results[i] = Result{Err: &subtrans.ProviderError{
				Code:    subtrans.CodeUnknown,
				Message: "no translation returned for item",
			}}
			continue
		}
		results[i] = Result{Text: item.Translations[0].Text}
	}
	return results, nil
}

// classifyStatus maps an HTTP error response onto the engine's taxonomy.
func (p *MicrosoftProvider) classifyStatus(status int, body []byte) *subtrans.ProviderError {
	var apiErr microsoftError
	_ = json.Unmarshal(body, &apiErr)
	message := apiErr.Error.Message
	if message == "" {
		message = strings.TrimSpace(string(body))
	}

	switch {
	case status == http.StatusUnauthorized:
		return &subtrans.ProviderError{Code: subtrans.CodeUnauthorized, Message: message}
	case status == http.StatusForbidden:
		// 403000/403001 are quota exhaustion; other 403s are key problems.
		if apiErr.Error.Code == 403000 || apiErr.Error.Code == 403001 {
			return &subtrans.ProviderError{Code: subtrans.CodeQuotaExceeded, Message: message}
		}
		return &subtrans.ProviderError{Code: subtrans.CodeUnauthorized, Message: message}
	case status == http.StatusTooManyRequests:
		return &subtrans.ProviderError{Code: subtrans.CodeRateLimited, Message: message}
	case status == http.StatusBadRequest && apiErr.Error.Code == 400036:
		return &subtrans.ProviderError{Code: subtrans.CodeUnsupportedLanguage, Message: message}
	case status >= 500:
		return &subtrans.ProviderError{Code: subtrans.CodeNetworkFailure, Message: message}
	default:
		return &subtrans.ProviderError{Code: subtrans.CodeUnknown, Message: fmt.Sprintf("status %d: %s", status, message)}
	}
}

// languageCode converts an engine language code to the Translator API form.
func (p *MicrosoftProvider) languageCode(lang string) string {
	normalized := subtrans.NormalizeLanguage(lang)
	if code, ok := microsoftLanguageCodes[normalized]; ok {
		return code
	}
	return normalized
}

// Verify MicrosoftProvider implements Provider
var _ Provider = (*MicrosoftProvider)(nil)
