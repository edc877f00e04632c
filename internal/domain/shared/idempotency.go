package shared

import (
	"context"
	"time"
)

// DefaultIdempotencyTTL is how long a completed response stays replayable.
const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotentResponse is a completed response kept for replay.
type IdempotentResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// IdempotencyStore remembers requests by client-supplied key so a retried
// submission replays the first response instead of creating a second record.
type IdempotencyStore interface {
	// Claim reserves key for an in-flight request. It returns false when the
	// key is already claimed or completed.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Load returns the completed response for key, or nil when the key is
	// unknown or still in flight.
	Load(ctx context.Context, key string) (*IdempotentResponse, error)

	// Complete stores the response under a claimed key.
	Complete(ctx context.Context, key string, resp IdempotentResponse, ttl time.Duration) error

	// Release drops the key so the request can be retried.
	Release(ctx context.Context, key string) error
}
