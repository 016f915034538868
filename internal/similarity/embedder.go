package similarity

import (
	"context"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/KohlJary/project-cass-sub004/pkg/errors"
	"github.com/KohlJary/project-cass-sub004/pkg/logger"
)

// Embedder turns text into a vector. The embedding model itself is an
// external capability; the engine only consumes it.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// OpenAIEmbedder calls an OpenAI-compatible embeddings endpoint
type OpenAIEmbedder struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewOpenAIEmbedder creates an embedder against an OpenAI-compatible
// endpoint (the local LiteLLM proxy in the default deployment)
func NewOpenAIEmbedder(baseURL, apiKey, model string, timeout time.Duration) *OpenAIEmbedder {
	// Proxies accept a dummy key when none is configured
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL + "/v1"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &OpenAIEmbedder{
		client:  openai.NewClientWithConfig(config),
		model:   model,
		timeout: timeout,
		logger:  logger.Get(),
	}
}

// Embed requests a vector for the given text, retrying transient
// failures with linear backoff. Every call is timeout-bounded so a hung
// provider cannot block the caller indefinitely.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.model),
	}

	maxRetries := 3
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			e.logger.Warn("Retrying embedding request",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		reqCtx, cancel := context.WithTimeout(ctx, e.timeout)
		resp, err := e.client.CreateEmbeddings(reqCtx, req)
		cancel()
		if err != nil {
			lastErr = err
			continue
		}
		if len(resp.Data) == 0 {
			lastErr = errors.NewEmbeddingFailed(e.model, attempt+1, nil)
			continue
		}
		return resp.Data[0].Embedding, nil
	}

	return nil, errors.NewEmbeddingFailed(e.model, maxRetries, lastErr)
}
