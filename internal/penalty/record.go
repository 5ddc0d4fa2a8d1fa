// Package penalty implements semantic search over Mumbai traffic and
// railway penalty regulations: dataset parsing, embedding lifecycle
// with a Redis warm-start cache, and top-k cosine similarity ranking.
package penalty

import (
	"fmt"
	"strings"
)

// Category partitions penalty records for filtered search
type Category string

const (
	CategoryTraffic      Category = "traffic"
	CategoryRailway      Category = "railway"
	CategoryRailwayOther Category = "railway-other"
)

// Valid returns true if the Category is a known canonical category
func (c Category) Valid() bool {
	switch c {
	case CategoryTraffic, CategoryRailway, CategoryRailwayOther:
		return true
	}
	return false
}

// Validate returns an error if the Category is invalid
func (c Category) Validate() error {
	if !c.Valid() {
		return fmt.Errorf("invalid category %q: must be traffic, railway, or railway-other", c)
	}
	return nil
}

// Record is a single parsed penalty regulation. Records are immutable
// after parsing; their position in the parsed list is the index space
// of the embedding matrix.
type Record struct {
	Code        string   `json:"code,omitempty"`
	Description string   `json:"description"`
	Penalty     string   `json:"penalty,omitempty"`
	Category    Category `json:"category"`
}

// SearchableText is the exact string fed to the encoder. Its identity
// across the whole corpus gates cache validity, so the format must not
// change without bumping the cache schema version.
func (r Record) SearchableText() string {
	parts := make([]string, 0, 4)
	for _, part := range []string{string(r.Category), r.Code, r.Description} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if r.Penalty != "" {
		parts = append(parts, "Penalty: "+r.Penalty)
	}
	return strings.Join(parts, " | ")
}
