// Package cache provides the result cache keyed by the fingerprint of
// (kind, resolved config, inputs). The cache memoizes successful node
// results only and is volatile: it is not part of the durable state.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dagflow-io/dagflow/pkg/models"
)

// ResultCache stores successful node results under fingerprint keys.
type ResultCache interface {
	// Get returns the stored result if present and not expired. A hit
	// increments the hit counter; a miss, the miss counter.
	Get(ctx context.Context, key string) (*models.NodeResult, bool)

	// Put stores a result with absolute expiry now + ttl. Failed results are
	// never stored.
	Put(ctx context.Context, key string, result *models.NodeResult, ttl time.Duration)

	// Stats returns cumulative hit/miss counters.
	Stats() Stats
}

// Stats holds cache counters.
type Stats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Entries int    `json:"entries"`
}

// Fingerprint derives the cache key for a node invocation: the sha256 of the
// canonical JSON of [kind, resolved config, inputs]. encoding/json sorts map
// keys, which gives the canonical form.
func Fingerprint(kind string, config map[string]any, inputs map[string]any) (string, error) {
	payload, err := json.Marshal([3]any{kind, config, inputs})
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint node invocation: %w", err)
	}

	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
