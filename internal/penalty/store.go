package penalty

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/ItsSpirax/Mumbai-Travel-Assistant/internal/embedcache"
	"github.com/ItsSpirax/Mumbai-Travel-Assistant/internal/embedder"
	"github.com/ItsSpirax/Mumbai-Travel-Assistant/internal/vector"
)

// EmbeddingCache is the warm-start cache consulted during warmup.
// Implementations are best-effort; the store maps every error to a miss.
type EmbeddingCache interface {
	Read(ctx context.Context, key string, dim int) (*embedcache.Entry, error)
	Write(ctx context.Context, key string, texts []string, matrix [][]float32) error
}

// Store owns the penalty corpus and its embedding matrix for the
// process lifetime. Warmup transitions Uninitialized -> Loading ->
// Ready exactly once per attempt; concurrent callers coalesce onto a
// single in-flight attempt and all observe its outcome.
type Store struct {
	embedder embedder.Embedder
	cache    EmbeddingCache // nil when no cache is configured
	dataDir  string
	logger   *slog.Logger

	mu      sync.Mutex
	records []Record
	texts   []string
	matrix  [][]float32
	ready   bool
	attempt *attempt
}

// attempt is one in-flight warmup computation. err is set before done
// is closed, so waiters may read it after the channel fires.
type attempt struct {
	done chan struct{}
	err  error
}

// NewStore creates a Store. cache may be nil to run without warm-start
// caching; logger nil defaults to slog.Default().
func NewStore(emb embedder.Embedder, cache EmbeddingCache, dataDir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		embedder: emb,
		cache:    cache,
		dataDir:  dataDir,
		logger:   logger,
	}
}

// EnsureReady blocks until the store is Ready, coalescing concurrent
// callers onto one computation. force recomputes embeddings even from
// Ready, bypassing the cache read but still refreshing the cache. A
// caller whose context expires stops waiting, but the shared attempt
// runs to completion for the other waiters.
func (s *Store) EnsureReady(ctx context.Context, force bool) error {
	for {
		s.mu.Lock()
		if s.ready && !force {
			s.mu.Unlock()
			return nil
		}
		if a := s.attempt; a != nil {
			s.mu.Unlock()
			select {
			case <-a.done:
			case <-ctx.Done():
				return ctx.Err()
			}
			if !force {
				return a.err
			}
			// Forced callers run their own attempt once the current
			// one settles.
			continue
		}

		a := &attempt{done: make(chan struct{})}
		s.attempt = a
		if force {
			s.ready = false
		}
		s.mu.Unlock()

		// The computation is detached from the caller's deadline so a
		// timed-out waiter cannot abort it for everyone else.
		go s.runAttempt(context.WithoutCancel(ctx), a, force)

		select {
		case <-a.done:
			return a.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Ready reports whether the store currently holds a published matrix.
func (s *Store) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

func (s *Store) runAttempt(ctx context.Context, a *attempt, force bool) {
	err := s.load(ctx, force)

	a.err = err
	s.mu.Lock()
	if err == nil {
		s.ready = true
	}
	s.attempt = nil
	s.mu.Unlock()
	close(a.done)
}

func (s *Store) load(ctx context.Context, force bool) error {
	texts, err := s.ensureRecords()
	if err != nil {
		return err
	}

	key := embedcache.Key(s.embedder.Model())

	if !force && s.cache != nil {
		entry, err := s.cache.Read(ctx, key, s.embedder.Dimensions())
		switch {
		case err != nil:
			s.logger.Warn("embedding cache read failed, recomputing", "key", key, "error", err)
		case textsEqual(entry.Texts, texts):
			s.publish(entry.Matrix)
			s.logger.Info("adopted cached penalty embeddings", "records", len(texts))
			return nil
		default:
			s.logger.Warn("cached corpus does not match live corpus, recomputing",
				"cached", len(entry.Texts), "live", len(texts))
		}
	}

	matrix, err := s.embedder.Encode(ctx, texts)
	if err != nil {
		return fmt.Errorf("%w: encoding corpus: %v", ErrInitialization, err)
	}
	s.publish(matrix)
	s.logger.Info("computed penalty embeddings", "records", len(texts), "dimensions", s.embedder.Dimensions())

	if s.cache != nil {
		if err := s.cache.Write(ctx, key, texts, matrix); err != nil {
			s.logger.Warn("embedding cache write failed", "key", key, "error", err)
		}
	}
	return nil
}

// ensureRecords parses the datasets once and returns the corpus texts.
func (s *Store) ensureRecords() ([]string, error) {
	s.mu.Lock()
	if s.records != nil {
		texts := s.texts
		s.mu.Unlock()
		return texts, nil
	}
	s.mu.Unlock()

	records, err := LoadRecords(s.dataDir)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(records))
	for i, rec := range records {
		texts[i] = rec.SearchableText()
	}

	s.mu.Lock()
	s.records = records
	s.texts = texts
	s.mu.Unlock()
	return texts, nil
}

// publish swaps in a fully-built matrix. Rows are never mutated after
// publication, so readers taking a snapshot under the lock are safe.
func (s *Store) publish(matrix [][]float32) {
	s.mu.Lock()
	s.matrix = matrix
	s.mu.Unlock()
}

func textsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Match is one ranked search hit.
type Match struct {
	Code        string   `json:"code,omitempty"`
	Description string   `json:"description"`
	Penalty     string   `json:"penalty,omitempty"`
	Category    Category `json:"category"`
	Similarity  float64  `json:"similarity"`
}

// Result is the full response of a semantic search.
type Result struct {
	Query           string  `json:"query"`
	Category        string  `json:"category"`
	Matched         int     `json:"matched"`
	TotalCandidates int     `json:"total_candidates"`
	Results         []Match `json:"results"`
	Notes           string  `json:"notes,omitempty"`
}

// Search encodes query, ranks the (optionally category-filtered)
// corpus by cosine similarity and returns the top topK matches.
// category "" searches everything; "railway" includes railway-other.
func (s *Store) Search(ctx context.Context, query string, topK int, category string) (*Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query cannot be empty", ErrInvalidInput)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be greater than zero", ErrInvalidInput)
	}
	normalized, err := normalizeCategory(category)
	if err != nil {
		return nil, err
	}

	if err := s.EnsureReady(ctx, false); err != nil {
		return nil, err
	}

	s.mu.Lock()
	records, matrix := s.records, s.matrix
	s.mu.Unlock()

	indices := selectIndices(records, normalized)

	appliedCategory := normalized
	if appliedCategory == "" {
		appliedCategory = "all"
	}

	if len(indices) == 0 {
		return &Result{
			Query:    query,
			Category: appliedCategory,
			Results:  []Match{},
			Notes:    "No penalty entries available for the requested category.",
		}, nil
	}

	queryVec, err := s.embedder.EncodeOne(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("encoding query failed: %w", err)
	}

	scores := make([]float64, len(indices))
	for i, idx := range indices {
		scores[i] = vector.Dot(matrix[idx], queryVec)
	}

	top := vector.TopK(scores, topK)
	matches := make([]Match, 0, len(top))
	for _, pos := range top {
		rec := records[indices[pos]]
		matches = append(matches, Match{
			Code:        rec.Code,
			Description: rec.Description,
			Penalty:     rec.Penalty,
			Category:    rec.Category,
			Similarity:  math.Round(scores[pos]*10000) / 10000,
		})
	}

	return &Result{
		Query:           query,
		Category:        appliedCategory,
		Matched:         len(matches),
		TotalCandidates: len(indices),
		Results:         matches,
	}, nil
}

// normalizeCategory validates the requested category filter. "railway"
// is accepted as a superset of railway and railway-other.
func normalizeCategory(category string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(category))
	if normalized == "" {
		return "", nil
	}
	if !Category(normalized).Valid() {
		return "", fmt.Errorf("%w: category must be traffic, railway, or railway-other", ErrInvalidInput)
	}
	return normalized, nil
}

func selectIndices(records []Record, category string) []int {
	indices := make([]int, 0, len(records))
	for i, rec := range records {
		switch category {
		case "":
			indices = append(indices, i)
		case string(CategoryRailway):
			if rec.Category == CategoryRailway || rec.Category == CategoryRailwayOther {
				indices = append(indices, i)
			}
		default:
			if rec.Category == Category(category) {
				indices = append(indices, i)
			}
		}
	}
	return indices
}
