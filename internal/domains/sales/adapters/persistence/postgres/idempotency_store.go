package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/ports"
	platformpostgres "github.com/Apurer/go-gin-shop-server/internal/platform/postgres"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore persists checkout keys in PostgreSQL.
type IdempotencyStore struct {
	db *gorm.DB
}

func NewIdempotencyStore(db *gorm.DB) *IdempotencyStore {
	return &IdempotencyStore{db: db}
}

type idempotencyRecord struct {
	TenantID    uuid.UUID `gorm:"primaryKey;type:uuid;column:tenant_id"`
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128"`
	SaleID      uuid.UUID `gorm:"type:uuid;column:sale_id"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (idempotencyRecord) TableName() string { return "sale_idempotency_keys" }

// Get loads a record by key, returning nil when absent.
func (s *IdempotencyStore) Get(ctx context.Context, tenantID uuid.UUID, key string) (*ports.IdempotencyRecord, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record idempotencyRecord
	if err := s.db.WithContext(ctx).First(&record, "tenant_id = ? AND key = ?", tenantID, key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return record.toPort(), nil
}

// Save inserts the record inside a savepoint so a duplicate key leaves the
// surrounding transaction usable for the follow-up lookup.
func (s *IdempotencyStore) Save(ctx context.Context, record ports.IdempotencyRecord) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	dbRecord := idempotencyRecord{
		TenantID:    record.TenantID,
		Key:         record.Key,
		RequestHash: record.RequestHash,
		SaleID:      record.SaleID,
		CreatedAt:   record.CreatedAt,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&dbRecord).Error
	})
	if err == nil {
		return nil
	}
	if !platformpostgres.IsUniqueViolation(err) {
		return err
	}
	existing, getErr := s.Get(ctx, record.TenantID, record.Key)
	if getErr != nil {
		return getErr
	}
	if existing != nil && existing.RequestHash != record.RequestHash {
		return ports.ErrIdempotencyConflict
	}
	return ports.ErrTransactionFailed
}

func (s *IdempotencyStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres idempotency store not configured")
	}
	return nil
}

func (r idempotencyRecord) toPort() *ports.IdempotencyRecord {
	return &ports.IdempotencyRecord{
		TenantID:    r.TenantID,
		Key:         r.Key,
		RequestHash: r.RequestHash,
		SaleID:      r.SaleID,
		CreatedAt:   r.CreatedAt,
	}
}
