package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-shop-server/internal/domains/customers/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/customers/ports"
	platformpostgres "github.com/Apurer/go-gin-shop-server/internal/platform/postgres"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists customers and credit entries in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type customerRecord struct {
	ID            uuid.UUID       `gorm:"primaryKey;type:uuid;column:id"`
	TenantID      uuid.UUID       `gorm:"type:uuid;column:tenant_id"`
	Name          string          `gorm:"column:name"`
	Phone         string          `gorm:"column:phone"`
	Email         string          `gorm:"column:email"`
	Address       string          `gorm:"column:address"`
	CreditBalance decimal.Decimal `gorm:"column:credit_balance;type:numeric(14,2)"`
	CreatedBy     uuid.UUID       `gorm:"type:uuid;column:created_by"`
	CreatedAt     time.Time       `gorm:"column:created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at"`
}

func (customerRecord) TableName() string { return "customers" }

type creditEntryRecord struct {
	ID           uuid.UUID       `gorm:"primaryKey;type:uuid;column:id"`
	TenantID     uuid.UUID       `gorm:"type:uuid;column:tenant_id"`
	CustomerID   uuid.UUID       `gorm:"type:uuid;column:customer_id"`
	Delta        decimal.Decimal `gorm:"column:delta;type:numeric(14,2)"`
	BalanceAfter decimal.Decimal `gorm:"column:balance_after;type:numeric(14,2)"`
	Reason       string          `gorm:"column:reason"`
	SaleID       *uuid.UUID      `gorm:"type:uuid;column:sale_id"`
	ActorID      uuid.UUID       `gorm:"type:uuid;column:actor_id"`
	CreatedAt    time.Time       `gorm:"column:created_at"`
}

func (creditEntryRecord) TableName() string { return "credit_entries" }

func (r *Repository) Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, errors.New("customer is nil")
	}
	record := toRecord(customer)
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.CreditBalance = decimal.Zero
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) Update(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, errors.New("customer is nil")
	}
	result := r.db.WithContext(ctx).
		Model(&customerRecord{}).
		Where("id = ? AND tenant_id = ?", customer.ID, customer.TenantID).
		Updates(map[string]any{
			"name":       customer.Name,
			"phone":      customer.Phone,
			"email":      customer.Email,
			"address":    customer.Address,
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, customer.TenantID, customer.ID)
}

func (r *Repository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Customer, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record customerRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) List(ctx context.Context, filter ports.CustomerFilter) ([]*domain.Customer, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Model(&customerRecord{}).Where("tenant_id = ?", filter.TenantID)
	if filter.Search != "" {
		pattern := platformpostgres.ContainsPattern(filter.Search)
		query = query.Where(`(name ILIKE ? ESCAPE '\' OR email ILIKE ? ESCAPE '\' OR address ILIKE ? ESCAPE '\' OR phone ILIKE ? ESCAPE '\')`, pattern, pattern, pattern, pattern)
	}
	query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: !filter.OldestFirst})
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	var records []customerRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	customers := make([]*domain.Customer, 0, len(records))
	for i := range records {
		customers = append(customers, records[i].toDomain())
	}
	return customers, nil
}

// Delete locks the row so a concurrent credit sale cannot slip in between the
// balance check and the delete.
func (r *Repository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record customerRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&record, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ports.ErrNotFound
			}
			return err
		}
		if err := record.toDomain().EnsureDeletable(); err != nil {
			return err
		}
		return tx.Delete(&customerRecord{}, "id = ? AND tenant_id = ?", id, tenantID).Error
	})
}

// AdjustCredit applies a relative balance change and appends the ledger entry.
func (r *Repository) AdjustCredit(ctx context.Context, adj domain.CreditAdjustment) (*domain.CreditEntry, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if err := adj.Validate(); err != nil {
		return nil, err
	}
	var entry domain.CreditEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&customerRecord{}).
			Where("id = ? AND tenant_id = ?", adj.CustomerID, adj.TenantID).
			Updates(map[string]any{
				"credit_balance": gorm.Expr("credit_balance + ?", adj.Delta),
				"updated_at":     gorm.Expr("NOW()"),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ports.ErrNotFound
		}
		var balance decimal.Decimal
		if err := tx.Model(&customerRecord{}).
			Select("credit_balance").
			Where("id = ? AND tenant_id = ?", adj.CustomerID, adj.TenantID).
			Scan(&balance).Error; err != nil {
			return err
		}
		entry = domain.NewCreditEntry(adj, balance, time.Now().UTC())
		record := toEntryRecord(entry)
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *Repository) ListCreditEntries(ctx context.Context, tenantID, customerID uuid.UUID) ([]*domain.CreditEntry, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []creditEntryRecord
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	entries := make([]*domain.CreditEntry, 0, len(records))
	for i := range records {
		entries = append(entries, records[i].toDomain())
	}
	return entries, nil
}

func (r *Repository) LedgerTotals(ctx context.Context, tenantID uuid.UUID) ([]domain.LedgerTotal, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var rows []struct {
		CustomerID uuid.UUID
		Balance    decimal.Decimal
		EntrySum   decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Table("customers AS c").
		Select("c.id AS customer_id, c.credit_balance AS balance, COALESCE(SUM(e.delta), 0) AS entry_sum").
		Joins("LEFT JOIN credit_entries AS e ON e.customer_id = c.id AND e.tenant_id = c.tenant_id").
		Where("c.tenant_id = ?", tenantID).
		Group("c.id, c.credit_balance").
		Order("c.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	totals := make([]domain.LedgerTotal, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, domain.LedgerTotal{CustomerID: row.CustomerID, Balance: row.Balance, EntrySum: row.EntrySum})
	}
	return totals, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres customer repository not configured")
	}
	return nil
}

func toRecord(c *domain.Customer) customerRecord {
	return customerRecord{
		ID:            c.ID,
		TenantID:      c.TenantID,
		Name:          c.Name,
		Phone:         c.Phone,
		Email:         c.Email,
		Address:       c.Address,
		CreditBalance: c.CreditBalance,
		CreatedBy:     c.CreatedBy,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func (r customerRecord) toDomain() *domain.Customer {
	return &domain.Customer{
		ID:            r.ID,
		TenantID:      r.TenantID,
		Name:          r.Name,
		Phone:         r.Phone,
		Email:         r.Email,
		Address:       r.Address,
		CreditBalance: r.CreditBalance,
		CreatedBy:     r.CreatedBy,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func toEntryRecord(e domain.CreditEntry) creditEntryRecord {
	return creditEntryRecord{
		ID:           e.ID,
		TenantID:     e.TenantID,
		CustomerID:   e.CustomerID,
		Delta:        e.Delta,
		BalanceAfter: e.BalanceAfter,
		Reason:       string(e.Reason),
		SaleID:       e.SaleID,
		ActorID:      e.ActorID,
		CreatedAt:    e.CreatedAt,
	}
}

func (r creditEntryRecord) toDomain() *domain.CreditEntry {
	return &domain.CreditEntry{
		ID:           r.ID,
		TenantID:     r.TenantID,
		CustomerID:   r.CustomerID,
		Delta:        r.Delta,
		BalanceAfter: r.BalanceAfter,
		Reason:       domain.CreditReason(r.Reason),
		SaleID:       r.SaleID,
		ActorID:      r.ActorID,
		CreatedAt:    r.CreatedAt,
	}
}
