package embedder

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ItsSpirax/Mumbai-Travel-Assistant/internal/vector"
)

// OpenAI implements Embedder against any OpenAI-compatible embedding
// endpoint. In deployment this is a TEI container serving
// sentence-transformers/all-MiniLM-L6-v2, but the cloud API works too.
type OpenAI struct {
	baseURL string
	apiKey  string
	model   string
	timeout time.Duration

	initOnce sync.Once
	client   *openai.Client

	mu         sync.Mutex
	dimensions int
}

// NewOpenAI creates an embedder for the given endpoint and model. The
// underlying client is built lazily on first use; construction itself
// never fails.
func NewOpenAI(baseURL, apiKey, model string) *OpenAI {
	return &OpenAI{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		timeout:    30 * time.Second,
		dimensions: 384, // all-MiniLM-L6-v2 default, corrected on first call
	}
}

func (o *OpenAI) init() *openai.Client {
	o.initOnce.Do(func() {
		apiKey := o.apiKey
		if apiKey == "" {
			apiKey = "unused" // local TEI/LocalAI endpoints ignore the key
		}
		cfg := openai.DefaultConfig(apiKey)
		if o.baseURL != "" {
			cfg.BaseURL = o.baseURL
		}
		cfg.HTTPClient = &http.Client{Timeout: o.timeout}
		o.client = openai.NewClientWithConfig(cfg)
	})
	return o.client
}

// Encode embeds a batch of texts. Every returned vector is L2-normalized.
func (o *OpenAI) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrNoInput
	}

	client := o.init()

	resp, err := client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(o.model),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding API call failed: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding API returned %d vectors for %d texts", len(resp.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for _, data := range resp.Data {
		if data.Index < 0 || data.Index >= len(out) {
			return nil, fmt.Errorf("embedding API returned out-of-range index %d", data.Index)
		}
		out[data.Index] = vector.Normalize(data.Embedding)
	}

	if len(out[0]) > 0 {
		o.mu.Lock()
		o.dimensions = len(out[0])
		o.mu.Unlock()
	}

	return out, nil
}

// EncodeOne embeds a single text.
func (o *OpenAI) EncodeOne(ctx context.Context, text string) ([]float32, error) {
	vecs, err := o.Encode(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// Dimensions returns the embedding dimensionality, learned from the
// first successful call.
func (o *OpenAI) Dimensions() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dimensions
}

// Model returns the model identifier.
func (o *OpenAI) Model() string {
	return o.model
}
