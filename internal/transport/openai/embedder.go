// Package openai provides text and image embedders backed by an
// OpenAI-compatible embeddings API serving a CLIP-family model
// (e.g. Infinity). Both modalities share one client and one wire format;
// images travel base64-encoded in the input field.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/roomcraft/reco/internal/domain"
	"github.com/roomcraft/reco/internal/metrics"
)

// Config holds the embedding provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	TextModel  string
	ImageModel string
	Dimensions int
	Provider   string
}

// Client wraps an OpenAI-compatible endpoint with per-modality models.
type Client struct {
	api        *openai.Client
	textModel  openai.EmbeddingModel
	imageModel openai.EmbeddingModel
	dimensions int
	provider   string
}

// NewClient creates an embedding client. ImageModel falls back to
// TextModel, which is the common case for CLIP deployments.
func NewClient(cfg *Config) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	imageModel := cfg.ImageModel
	if imageModel == "" {
		imageModel = cfg.TextModel
	}
	return &Client{
		api:        openai.NewClientWithConfig(clientCfg),
		textModel:  openai.EmbeddingModel(cfg.TextModel),
		imageModel: openai.EmbeddingModel(imageModel),
		dimensions: cfg.Dimensions,
		provider:   cfg.Provider,
	}
}

// EmbedText vectorizes preference text.
func (c *Client) EmbedText(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	return c.embed(ctx, text, c.textModel, "text")
}

// EmbedImage vectorizes a photo. The raw bytes are base64-encoded and
// submitted as a regular input string; CLIP servers detect the payload
// kind themselves.
func (c *Client) EmbedImage(ctx context.Context, image []byte) (domain.EmbeddingResult, error) {
	return c.embed(ctx, encodeImage(image), c.imageModel, "image")
}

func (c *Client) embed(ctx context.Context, input string, model openai.EmbeddingModel, modality string) (domain.EmbeddingResult, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{input},
		Model:          model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if c.dimensions > 0 {
		req.Dimensions = c.dimensions
	}

	start := time.Now()
	resp, err := c.api.CreateEmbeddings(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(c.provider, string(model), modality, "error").Inc()
		return domain.EmbeddingResult{}, parseAPIError(err)
	}
	if len(resp.Data) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(c.provider, string(model), modality, "error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(c.provider, string(model), modality, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(c.provider, string(model), modality).Observe(duration.Seconds())

	return domain.EmbeddingResult{
		Embedding:    resp.Data[0].Embedding,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrEmbeddingProviderError for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrEmbeddingProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("embedding API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("embedding API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("embedding API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("embedding request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
