package ports

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrIdempotencyConflict indicates the same key was used with a different payload.
var ErrIdempotencyConflict = errors.New("idempotency conflict")

// IdempotencyRecord ties a client-supplied checkout key to the sale it created.
type IdempotencyRecord struct {
	TenantID    uuid.UUID
	Key         string
	RequestHash string
	SaleID      uuid.UUID
	CreatedAt   time.Time
}

// IdempotencyStore persists checkout keys so retries can be replayed safely.
type IdempotencyStore interface {
	// Get returns the stored record for the key, or nil when unknown.
	Get(ctx context.Context, tenantID uuid.UUID, key string) (*IdempotencyRecord, error)
	// Save persists a new record. A key that already exists yields
	// ErrIdempotencyConflict when the hash differs and ErrTransactionFailed when
	// it matches, since the original request is still committing.
	Save(ctx context.Context, record IdempotencyRecord) error
}
