package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/ZaguanLabs/subtrans"
)

// defaultLibreMirrors are public LibreTranslate instances tried in order.
var defaultLibreMirrors = []string{
	"https://libretranslate.de/translate",
	"https://translate.argosopentech.com/translate",
}

// LibreProvider translates through public LibreTranslate mirrors. The API
// takes one text per request, so a batch fans out into sequential calls;
// a mirror that stops answering is rotated out for the rest of the batch.
type LibreProvider struct {
	mirrors []string
	client  *http.Client

	mu      sync.Mutex
	current int
}

// LibreConfig holds configuration for the LibreTranslate provider.
type LibreConfig struct {
	Mirrors []string      // Mirror URLs (default: public instances)
	Timeout time.Duration // Per-request timeout (default: 5s)
}

// NewLibreProvider creates a new LibreTranslate provider.
func NewLibreProvider(cfg LibreConfig) *LibreProvider {
	mirrors := cfg.Mirrors
	if len(mirrors) == 0 {
		mirrors = defaultLibreMirrors
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &LibreProvider{
		mirrors: mirrors,
		client:  &http.Client{Timeout: timeout},
	}
}

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
}

type libreResponse struct {
	TranslatedText string `json:"translatedText"`
}

// TranslateBatch translates each text individually, rotating mirrors on
// failure. Items that fail on every mirror carry a per-item error; the
// batch itself only aborts on context cancellation.
func (p *LibreProvider) TranslateBatch(ctx context.Context, texts []string, targetLang string) ([]Result, error) {
	if len(texts) == 0 {
		return []Result{}, nil
	}

	results := make([]Result, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, &subtrans.ProviderError{Code: subtrans.CodeNetworkFailure, Message: "batch interrupted", Cause: err}
		}

		translated, perr := p.translateOne(ctx, text, targetLang)
		if perr != nil {
			results[i] = Result{Err: perr}
			continue
		}
		results[i] = Result{Text: translated}
	}
	return results, nil
}

// translateOne tries each mirror once, starting from the last one that worked.
func (p *LibreProvider) translateOne(ctx context.Context, text, targetLang string) (string, *subtrans.ProviderError) {
	var lastErr *subtrans.ProviderError

	for attempt := 0; attempt < len(p.mirrors); attempt++ {
		mirror := p.currentMirror()

		translated, perr := p.post(ctx, mirror, text, targetLang)
		if perr == nil {
			return translated, nil
		}
		lastErr = perr
		p.rotateMirror()
	}

	return "", lastErr
}

func (p *LibreProvider) post(ctx context.Context, mirror, text, targetLang string) (string, *subtrans.ProviderError) {
	payload, _ := json.Marshal(libreRequest{
		Q:      text,
		Source: "auto",
		Target: subtrans.NormalizeLanguage(targetLang),
		Format: "text",
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, mirror, bytes.NewReader(payload))
	if err != nil {
		return "", &subtrans.ProviderError{Code: subtrans.CodeUnknown, Message: "building request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", subtrans.UserAgent())

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &subtrans.ProviderError{Code: subtrans.CodeNetworkFailure, Message: "calling mirror", Cause: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var parsed libreResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return "", &subtrans.ProviderError{Code: subtrans.CodeUnknown, Message: "decoding response", Cause: err}
		}
		return parsed.TranslatedText, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", &subtrans.ProviderError{Code: subtrans.CodeRateLimited, Message: "mirror throttled request"}
	case resp.StatusCode == http.StatusBadRequest:
		return "", &subtrans.ProviderError{Code: subtrans.CodeUnsupportedLanguage, Message: "mirror rejected request"}
	default:
		return "", &subtrans.ProviderError{Code: subtrans.CodeNetworkFailure, Message: resp.Status}
	}
}

func (p *LibreProvider) currentMirror() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mirrors[p.current]
}

func (p *LibreProvider) rotateMirror() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = (p.current + 1) % len(p.mirrors)
}

// Verify LibreProvider implements Provider
var _ Provider = (*LibreProvider)(nil)
