package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/ports"
	"github.com/Apurer/go-gin-shop-server/internal/platform/memdb"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

type idempotencyKey struct {
	tenantID uuid.UUID
	key      string
}

// IdempotencyStore keeps checkout keys per tenant.
type IdempotencyStore struct {
	db      *memdb.DB
	records *memdb.Table[idempotencyKey, ports.IdempotencyRecord]
}

func NewIdempotencyStore(db *memdb.DB) *IdempotencyStore {
	return &IdempotencyStore{
		db:      db,
		records: memdb.NewTable[idempotencyKey, ports.IdempotencyRecord](db, nil),
	}
}

func (s *IdempotencyStore) Get(ctx context.Context, tenantID uuid.UUID, key string) (*ports.IdempotencyRecord, error) {
	var record *ports.IdempotencyRecord
	err := s.db.View(ctx, func(ctx context.Context) error {
		if found, ok := s.records.Get(idempotencyKey{tenantID: tenantID, key: key}); ok {
			record = &found
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, record ports.IdempotencyRecord) error {
	return s.db.Update(ctx, func(ctx context.Context) error {
		k := idempotencyKey{tenantID: record.TenantID, key: record.Key}
		if existing, ok := s.records.Get(k); ok {
			if existing.RequestHash != record.RequestHash {
				return ports.ErrIdempotencyConflict
			}
			return ports.ErrTransactionFailed
		}
		s.records.Put(k, record)
		return nil
	})
}
