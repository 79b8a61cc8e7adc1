package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/recipefinder/backend/config"
	"github.com/pageza/recipefinder/backend/internal/logger"
)

var (
	// ErrEmptyInput is returned when Embed is called with blank text
	ErrEmptyInput = errors.New("embedding: input text is empty")
	// ErrNoEmbedding is returned when a provider answers without a vector
	ErrNoEmbedding = errors.New("embedding: no embedding in response")
	// ErrDimensionMismatch is returned when a provider returns the wrong length
	ErrDimensionMismatch = errors.New("embedding: dimension mismatch")
)

// Embedder turns text into a fixed-length vector. An error or an empty
// vector both mean the embedding is unavailable.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Name() string
}

// NewEmbedder builds the embedder selected by cfg. When rdb is non-nil the
// embedder is wrapped in a redis cache.
func NewEmbedder(cfg config.EmbeddingConfig, rdb *redis.Client, log *zap.Logger) (Embedder, error) {
	var e Embedder
	switch cfg.Provider {
	case "", "hash":
		e = NewHashEmbedder(cfg.Dimension)
	case "openai":
		e = NewOpenAIEmbedder(cfg.APIKey, cfg.Model, cfg.Dimension, cfg.Timeout)
	case "http":
		e = NewHTTPEmbedder(cfg.URL, cfg.Dimension, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", cfg.Provider)
	}
	if rdb != nil && cfg.CacheTTL > 0 {
		e = NewCachedEmbedder(e, rdb, cfg.CacheTTL, log)
	}
	return e, nil
}

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

// HashEmbedder is a local embedder that hashes word and word-pair tokens
// into a fixed number of buckets and L2-normalizes the result. Texts that
// share ingredients get a high cosine similarity.
type HashEmbedder struct {
	dimension int
}

// NewHashEmbedder creates a HashEmbedder producing vectors of dimension
func NewHashEmbedder(dimension int) *HashEmbedder {
	if dimension <= 0 {
		dimension = 384
	}
	return &HashEmbedder{dimension: dimension}
}

func (e *HashEmbedder) Name() string { return "hash" }

// Embed implements Embedder
func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	vec := make([]float64, e.dimension)
	for _, phrase := range strings.Split(strings.ToLower(text), ",") {
		tokens := tokenPattern.FindAllString(phrase, -1)
		for i, tok := range tokens {
			e.add(vec, tok, 1)
			if i > 0 {
				e.add(vec, tokens[i-1]+" "+tok, 0.5)
			}
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return nil, ErrNoEmbedding
	}
	norm = math.Sqrt(norm)

	out := make([]float32, e.dimension)
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out, nil
}

func (e *HashEmbedder) add(vec []float64, token string, weight float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(token))
	sum := h.Sum64()
	idx := int(sum % uint64(e.dimension))
	// The top bit picks the sign so collisions tend to cancel out
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[idx] += weight
}

// OpenAIEmbedder calls the OpenAI embeddings API with reduced dimensions
type OpenAIEmbedder struct {
	sdk        openaisdk.Client
	model      openaisdk.EmbeddingModel
	dimensions int
	timeout    time.Duration
}

// NewOpenAIEmbedder creates an OpenAI embeddings client
func NewOpenAIEmbedder(apiKey, model string, dimensions int, timeout time.Duration, opts ...option.RequestOption) *OpenAIEmbedder {
	m := openaisdk.EmbeddingModel(model)
	if model == "" {
		m = openaisdk.EmbeddingModelTextEmbedding3Small
	}
	reqOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAIEmbedder{
		sdk:        openaisdk.NewClient(reqOpts...),
		model:      m,
		dimensions: dimensions,
		timeout:    timeout,
	}
}

func (e *OpenAIEmbedder) Name() string { return "openai" }

// Embed implements Embedder
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	resp, err := e.sdk.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfString: param.NewOpt(text),
		},
		Model:      e.model,
		Dimensions: param.NewOpt(int64(e.dimensions)),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, ErrNoEmbedding
	}

	emb := resp.Data[0].Embedding
	if len(emb) != e.dimensions {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(emb), e.dimensions)
	}
	out := make([]float32, len(emb))
	for i := range emb {
		out[i] = float32(emb[i])
	}
	return out, nil
}

// HTTPEmbedder calls a self-hosted text-embeddings-inference server
type HTTPEmbedder struct {
	client    *resty.Client
	dimension int
}

// NewHTTPEmbedder creates an embedder for the server at baseURL
func NewHTTPEmbedder(baseURL string, dimension int, timeout time.Duration) *HTTPEmbedder {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &HTTPEmbedder{client: client, dimension: dimension}
}

func (e *HTTPEmbedder) Name() string { return "http" }

// Embed implements Embedder
func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}

	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"inputs":    text,
			"normalize": true,
		}).
		Post("/embed")
	if err != nil {
		return nil, fmt.Errorf("failed to send request to embedding server: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("embedding server returned %d: %s", resp.StatusCode(), resp.String())
	}

	var result [][]float32
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse embedding response: %w", err)
	}
	if len(result) == 0 || len(result[0]) == 0 {
		return nil, ErrNoEmbedding
	}
	if len(result[0]) != e.dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(result[0]), e.dimension)
	}
	return result[0], nil
}

// CachedEmbedder stores vectors in redis keyed by a hash of the text.
// Cache failures are logged and fall through to the wrapped embedder.
type CachedEmbedder struct {
	next Embedder
	rdb  redis.Cmdable
	ttl  time.Duration
	log  *zap.Logger
}

// NewCachedEmbedder wraps next with a redis cache
func NewCachedEmbedder(next Embedder, rdb redis.Cmdable, ttl time.Duration, log *zap.Logger) *CachedEmbedder {
	return &CachedEmbedder{next: next, rdb: rdb, ttl: ttl, log: logger.OrNop(log)}
}

func (e *CachedEmbedder) Name() string { return e.next.Name() }

func (e *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(text))))
	return "embedding:" + e.next.Name() + ":" + hex.EncodeToString(sum[:])
}

// Embed implements Embedder
func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := e.key(text)

	raw, err := e.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var vec []float32
		if jerr := json.Unmarshal(raw, &vec); jerr == nil && len(vec) > 0 {
			return vec, nil
		}
	case !errors.Is(err, redis.Nil):
		e.log.Warn("Embedding cache read failed", zap.Error(err))
	}

	vec, err := e.next.Embed(ctx, text)
	if err != nil || len(vec) == 0 {
		return vec, err
	}

	if data, jerr := json.Marshal(vec); jerr == nil {
		if serr := e.rdb.Set(ctx, key, data, e.ttl).Err(); serr != nil {
			e.log.Warn("Embedding cache write failed", zap.Error(serr))
		}
	}
	return vec, nil
}
