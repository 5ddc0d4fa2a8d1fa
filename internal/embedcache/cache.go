// Package embedcache persists the penalty embedding matrix in Redis so
// a restarted process can skip recomputing embeddings. The cache is a
// warm-start shortcut only: every failure is reported as a typed *Error
// that the caller maps to a miss, never to a crash.
//
// A logical cache key owns two paired Redis keys written in one
// pipeline with a shared TTL:
//
//	values:<key>      JSON array of the corpus texts, in order
//	embeddings:<key>  row-major little-endian float32 matrix bytes
package embedcache

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL is the expiry applied to both halves of an entry.
const TTL = 24 * time.Hour

// Error describes a failed cache operation. Callers treat any *Error as
// a cache miss; the Op label exists for logging.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("embedcache %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Key derives the cache key for a model. The literal version tag must
// be bumped on any schema change so stale entries never match.
func Key(model string) string {
	return fmt.Sprintf("penalty_records::%s::v1", model)
}

// Entry is a cached corpus and its embedding matrix.
type Entry struct {
	Texts  []string
	Matrix [][]float32
}

// Cache reads and writes embedding entries in Redis.
type Cache struct {
	client *redis.Client
}

// New creates a Cache on top of an established Redis client.
func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Write stores texts and matrix under key with a 24h TTL. Both keys go
// through one pipeline so a reader never observes one without the other.
func (c *Cache) Write(ctx context.Context, key string, texts []string, matrix [][]float32) error {
	valuesJSON, err := json.Marshal(texts)
	if err != nil {
		return &Error{Op: "write", Err: err}
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, "values:"+key, valuesJSON, TTL)
	pipe.Set(ctx, "embeddings:"+key, encodeMatrix(matrix), TTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return &Error{Op: "write", Err: err}
	}
	return nil
}

// Read fetches the entry under key and reshapes the matrix bytes using
// the cached text count and the live model dimensionality dim. Missing
// keys, corrupt payloads and shape mismatches all return an *Error.
func (c *Cache) Read(ctx context.Context, key string, dim int) (*Entry, error) {
	pipe := c.client.Pipeline()
	valuesCmd := pipe.Get(ctx, "values:"+key)
	matrixCmd := pipe.Get(ctx, "embeddings:"+key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, &Error{Op: "read", Err: err}
	}

	var texts []string
	if err := json.Unmarshal([]byte(valuesCmd.Val()), &texts); err != nil {
		return nil, &Error{Op: "read", Err: fmt.Errorf("corrupt values payload: %w", err)}
	}

	matrix, err := decodeMatrix([]byte(matrixCmd.Val()), len(texts), dim)
	if err != nil {
		return nil, &Error{Op: "read", Err: err}
	}

	return &Entry{Texts: texts, Matrix: matrix}, nil
}

func encodeMatrix(matrix [][]float32) []byte {
	var total int
	for _, row := range matrix {
		total += len(row)
	}
	buf := make([]byte, 0, total*4)
	var scratch [4]byte
	for _, row := range matrix {
		for _, x := range row {
			binary.LittleEndian.PutUint32(scratch[:], math.Float32bits(x))
			buf = append(buf, scratch[:]...)
		}
	}
	return buf
}

func decodeMatrix(data []byte, rows, dim int) ([][]float32, error) {
	if rows <= 0 || dim <= 0 {
		return nil, fmt.Errorf("invalid matrix shape (%d, %d)", rows, dim)
	}
	if len(data) != rows*dim*4 {
		return nil, fmt.Errorf("matrix payload is %d bytes, expected %d for shape (%d, %d)", len(data), rows*dim*4, rows, dim)
	}
	matrix := make([][]float32, rows)
	for i := range matrix {
		row := make([]float32, dim)
		base := i * dim * 4
		for j := range row {
			bits := binary.LittleEndian.Uint32(data[base+j*4:])
			row[j] = math.Float32frombits(bits)
		}
		matrix[i] = row
	}
	return matrix, nil
}
