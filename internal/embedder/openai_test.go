package embedder

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

type embeddingsResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func newEmbeddingServer(t *testing.T, vectors ...[]float32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var resp embeddingsResponse
		for i, v := range vectors {
			resp.Data = append(resp.Data, struct {
				Index     int       `json:"index"`
				Embedding []float32 `json:"embedding"`
			}{Index: i, Embedding: v})
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestOpenAI_Encode(t *testing.T) {
	server := newEmbeddingServer(t, []float32{3, 4}, []float32{0, 2})
	defer server.Close()

	emb := NewOpenAI(server.URL, "", "all-MiniLM-L6-v2")
	vecs, err := emb.Encode(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if len(vecs) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vecs))
	}

	// Vectors must come back L2-normalized.
	for i, v := range vecs {
		var sum float64
		for _, x := range v {
			sum += float64(x) * float64(x)
		}
		if math.Abs(sum-1.0) > 1e-6 {
			t.Errorf("vector %d not normalized: squared norm %f", i, sum)
		}
	}

	if emb.Dimensions() != 2 {
		t.Errorf("expected dimensions 2 after first call, got %d", emb.Dimensions())
	}
}

func TestOpenAI_EncodeEmptyInput(t *testing.T) {
	emb := NewOpenAI("http://unused", "", "all-MiniLM-L6-v2")
	_, err := emb.Encode(context.Background(), nil)
	if !errors.Is(err, ErrNoInput) {
		t.Errorf("expected ErrNoInput, got %v", err)
	}
}

func TestOpenAI_EncodeCountMismatch(t *testing.T) {
	server := newEmbeddingServer(t, []float32{1, 0})
	defer server.Close()

	emb := NewOpenAI(server.URL, "", "all-MiniLM-L6-v2")
	_, err := emb.Encode(context.Background(), []string{"a", "b"})
	if err == nil {
		t.Fatal("expected error for vector count mismatch")
	}
}

func TestOpenAI_EncodeOne(t *testing.T) {
	server := newEmbeddingServer(t, []float32{1, 0, 0})
	defer server.Close()

	emb := NewOpenAI(server.URL, "", "all-MiniLM-L6-v2")
	v, err := emb.EncodeOne(context.Background(), "query")
	if err != nil {
		t.Fatalf("EncodeOne failed: %v", err)
	}
	if len(v) != 3 {
		t.Errorf("expected 3 dimensions, got %d", len(v))
	}
}

func TestOpenAI_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	emb := NewOpenAI(server.URL, "", "all-MiniLM-L6-v2")
	_, err := emb.Encode(context.Background(), []string{"a"})
	if err == nil {
		t.Fatal("expected error from failing server")
	}
}
