package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sudmegaphone/backend/internal/config"
	"github.com/sudmegaphone/backend/internal/retry"
)

// Gateway routes recognition calls to the configured default provider and
// falls back once when it fails. Each provider call goes through the
// bounded retry policy; provider-reported processing errors are not
// retried because the same image will fail identically.
type Gateway struct {
	providers       map[string]Provider
	defaultProvider string
	fallback        string
	maxRetries      int
}

func NewGateway(cfg config.OCRConfig) *Gateway {
	g := &Gateway{
		providers:       make(map[string]Provider),
		defaultProvider: cfg.DefaultProvider,
		fallback:        cfg.FallbackProvider,
		maxRetries:      cfg.MaxRetries,
	}

	if cfg.OCRSpaceKey != "" {
		g.providers["ocrspace"] = NewOCRSpaceProvider(cfg.OCRSpaceKey, cfg.Language, cfg.Engine, WithTimeout(cfg.Timeout))
	}
	if cfg.OpenAIKey != "" {
		g.providers["openai"] = NewOpenAIProvider(cfg.OpenAIKey)
	}
	if cfg.AnthropicKey != "" {
		g.providers["anthropic"] = NewAnthropicProvider(cfg.AnthropicKey)
	}

	return g
}

// Register adds or replaces a provider, used by tests.
func (g *Gateway) Register(p Provider) {
	g.providers[p.Name()] = p
}

func (g *Gateway) Provider(name string) (Provider, error) {
	p, ok := g.providers[name]
	if !ok {
		return nil, fmt.Errorf("ocr provider %q not configured", name)
	}
	return p, nil
}

func (g *Gateway) Recognize(ctx context.Context, image []byte, mimeType string) (string, error) {
	text, err := g.recognizeWithRetry(ctx, g.defaultProvider, image, mimeType)
	if err != nil && g.fallback != "" && g.fallback != g.defaultProvider {
		slog.Warn("primary ocr provider failed, trying fallback",
			"primary", g.defaultProvider,
			"fallback", g.fallback,
			"error", err,
		)
		return g.recognizeWithRetry(ctx, g.fallback, image, mimeType)
	}
	return text, err
}

func (g *Gateway) recognizeWithRetry(ctx context.Context, providerName string, image []byte, mimeType string) (string, error) {
	p, err := g.Provider(providerName)
	if err != nil {
		return "", err
	}

	var text string
	attempts := g.maxRetries + 1
	err = retry.Do(ctx, attempts, 500*time.Millisecond, func(ctx context.Context) error {
		var callErr error
		text, callErr = p.Recognize(ctx, image, mimeType)
		if errors.Is(callErr, ErrProvider) {
			return retry.Permanent(callErr)
		}
		return callErr
	})
	if err != nil {
		return "", fmt.Errorf("provider %s: %w", providerName, err)
	}
	return text, nil
}
