package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/habiliai/spoar/errors"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

type (
	// Embedder interface for generating embeddings
	Embedder interface {
		Embed(ctx context.Context, texts ...string) ([][]float32, error)
	}

	// EmbeddingError reports that a vector could not be computed at all, as
	// opposed to a query that simply found nothing.
	EmbeddingError struct {
		Err error
	}

	OpenAIEmbedder struct {
		client    *openai.Client
		model     string
		maxTokens int
	}

	// CachedEmbedder memoizes another Embedder by input text.
	CachedEmbedder struct {
		embedder Embedder
		cache    *lru.Cache[string, []float32]
	}
)

var (
	_ Embedder = (*OpenAIEmbedder)(nil)
	_ Embedder = (*CachedEmbedder)(nil)
)

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}

func (e *EmbeddingError) Is(target error) bool {
	return target == errors.ErrEmbedding
}

// NewOpenAIEmbedder builds an embedder on the OpenAI embeddings API. An
// empty baseURL uses the default endpoint.
func NewOpenAIEmbedder(apiKey, baseURL, model string) *OpenAIEmbedder {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)

	return &OpenAIEmbedder{
		client:    &client,
		model:     model,
		maxTokens: maxEmbeddingTokens,
	}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, texts ...string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	inputs := make([]string, len(texts))
	for i, text := range texts {
		inputs[i] = truncateTokens(text, e.maxTokens)
	}

	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: inputs,
		},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create embeddings with %s", e.model)
	}
	if len(resp.Data) != len(texts) {
		return nil, errors.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	embeddings := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(embeddings) {
			return nil, errors.Errorf("embedding index %d out of range", d.Index)
		}
		embeddings[d.Index] = toFloat32(d.Embedding)
	}

	return embeddings, nil
}

func NewCachedEmbedder(embedder Embedder, size int) (*CachedEmbedder, error) {
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create embedding cache")
	}

	return &CachedEmbedder{
		embedder: embedder,
		cache:    cache,
	}, nil
}

func (e *CachedEmbedder) Embed(ctx context.Context, texts ...string) ([][]float32, error) {
	result := make([][]float32, len(texts))

	var missing []string
	var missingIdx []int
	for i, text := range texts {
		if v, ok := e.cache.Get(text); ok {
			result[i] = v
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) == 0 {
		return result, nil
	}

	embeddings, err := e.embedder.Embed(ctx, missing...)
	if err != nil {
		return nil, err
	}
	if len(embeddings) != len(missing) {
		return nil, errors.Errorf("expected %d embeddings, got %d", len(missing), len(embeddings))
	}

	for j, vec := range embeddings {
		result[missingIdx[j]] = vec
		e.cache.Add(missing[j], vec)
	}

	return result, nil
}

// prepareEmbeddingText flattens newlines, which degrade embedding quality.
func prepareEmbeddingText(text string) string {
	return strings.ReplaceAll(text, "\n", " ")
}
