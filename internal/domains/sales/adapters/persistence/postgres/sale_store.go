package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/ports"
	platformpostgres "github.com/Apurer/go-gin-shop-server/internal/platform/postgres"
)

var _ ports.SaleStore = (*SaleStore)(nil)

// SaleStore persists sale headers and their lines.
type SaleStore struct {
	db *gorm.DB
}

func NewSaleStore(db *gorm.DB) *SaleStore {
	return &SaleStore{db: db}
}

type saleRecord struct {
	ID             uuid.UUID       `gorm:"primaryKey;type:uuid;column:id"`
	TenantID       uuid.UUID       `gorm:"type:uuid;column:tenant_id"`
	CreatedBy      uuid.UUID       `gorm:"type:uuid;column:created_by"`
	CustomerID     *uuid.UUID      `gorm:"type:uuid;column:customer_id"`
	WalkInLabel    string          `gorm:"column:walk_in_label"`
	Subtotal       decimal.Decimal `gorm:"column:subtotal;type:numeric(14,2)"`
	Discount       decimal.Decimal `gorm:"column:discount;type:numeric(14,2)"`
	Total          decimal.Decimal `gorm:"column:total;type:numeric(14,2)"`
	PaymentType    string          `gorm:"column:payment_type"`
	Status         string          `gorm:"column:status"`
	IdempotencyKey *string         `gorm:"column:idempotency_key"`
	CreatedAt      time.Time       `gorm:"column:created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at"`
	VoidedAt       *time.Time      `gorm:"column:voided_at"`
	VoidedBy       *uuid.UUID      `gorm:"type:uuid;column:voided_by"`
	VoidReason     string          `gorm:"column:void_reason"`
}

func (saleRecord) TableName() string { return "sales" }

type saleLineRecord struct {
	SaleID          uuid.UUID       `gorm:"primaryKey;type:uuid;column:sale_id"`
	Position        int             `gorm:"primaryKey;column:position"`
	ItemID          uuid.UUID       `gorm:"type:uuid;column:item_id"`
	ItemName        string          `gorm:"column:item_name"`
	Quantity        int             `gorm:"column:quantity"`
	UnitPriceAtSale decimal.Decimal `gorm:"column:unit_price_at_sale;type:numeric(14,2)"`
}

func (saleLineRecord) TableName() string { return "sale_lines" }

func (s *SaleStore) Insert(ctx context.Context, sale *domain.Sale) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if sale == nil {
		return errors.New("sale is nil")
	}
	record := toSaleRecord(sale)
	lines := toLineRecords(sale)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		return tx.Create(&lines).Error
	})
}

// Update rewrites the header and replaces the lines.
func (s *SaleStore) Update(ctx context.Context, sale *domain.Sale) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if sale == nil {
		return errors.New("sale is nil")
	}
	lines := toLineRecords(sale)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&saleRecord{}).
			Where("id = ? AND tenant_id = ?", sale.ID, sale.TenantID).
			Updates(map[string]any{
				"subtotal":     sale.Subtotal,
				"discount":     sale.Discount,
				"total":        sale.Total,
				"payment_type": string(sale.PaymentType),
				"status":       string(sale.Status),
				"updated_at":   sale.UpdatedAt,
				"voided_at":    sale.VoidedAt,
				"voided_by":    sale.VoidedBy,
				"void_reason":  sale.VoidReason,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ports.ErrSaleNotFound
		}
		if err := tx.Where("sale_id = ?", sale.ID).Delete(&saleLineRecord{}).Error; err != nil {
			return err
		}
		return tx.Create(&lines).Error
	})
}

func (s *SaleStore) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Sale, error) {
	return s.get(ctx, s.db.WithContext(ctx), tenantID, id)
}

// GetForUpdate takes a row lock on the sale header.
func (s *SaleStore) GetForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*domain.Sale, error) {
	return s.get(ctx, s.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), tenantID, id)
}

func (s *SaleStore) get(ctx context.Context, query *gorm.DB, tenantID, id uuid.UUID) (*domain.Sale, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record saleRecord
	if err := query.First(&record, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrSaleNotFound
		}
		return nil, err
	}
	sales, err := s.attachLines(ctx, []saleRecord{record})
	if err != nil {
		return nil, err
	}
	return sales[0], nil
}

func (s *SaleStore) List(ctx context.Context, filter ports.SaleFilter) ([]*domain.Sale, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	query := s.db.WithContext(ctx).Model(&saleRecord{}).Where("tenant_id = ?", filter.TenantID)
	if !filter.IncludeVoided {
		query = query.Where("status = ?", string(domain.StatusCompleted))
	}
	if len(filter.PaymentTypes) > 0 {
		tenders := make([]string, 0, len(filter.PaymentTypes))
		for _, p := range filter.PaymentTypes {
			tenders = append(tenders, string(p))
		}
		query = query.Where("payment_type = ANY(?)", pq.Array(tenders))
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Search != "" {
		query = query.Where(`walk_in_label ILIKE ? ESCAPE '\'`, platformpostgres.ContainsPattern(filter.Search))
	}
	query = query.
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: !filter.OldestFirst}).
		Order("id")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	var records []saleRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return s.attachLines(ctx, records)
}

func (s *SaleStore) CreditTotals(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var rows []struct {
		CustomerID uuid.UUID
		Total      decimal.Decimal
	}
	err := s.db.WithContext(ctx).
		Model(&saleRecord{}).
		Select("customer_id, COALESCE(SUM(total), 0) AS total").
		Where("tenant_id = ? AND status = ? AND payment_type = ? AND customer_id IS NOT NULL",
			tenantID, string(domain.StatusCompleted), string(domain.PaymentCredit)).
		Group("customer_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	totals := make(map[uuid.UUID]decimal.Decimal, len(rows))
	for _, row := range rows {
		totals[row.CustomerID] = row.Total
	}
	return totals, nil
}

func (s *SaleStore) attachLines(ctx context.Context, records []saleRecord) ([]*domain.Sale, error) {
	sales := make([]*domain.Sale, 0, len(records))
	if len(records) == 0 {
		return sales, nil
	}
	ids := make([]uuid.UUID, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	var lines []saleLineRecord
	if err := s.db.WithContext(ctx).
		Where("sale_id IN ?", ids).
		Order("sale_id, position").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	bySale := make(map[uuid.UUID][]domain.Line, len(records))
	for _, l := range lines {
		bySale[l.SaleID] = append(bySale[l.SaleID], domain.Line{
			ItemID:          l.ItemID,
			ItemName:        l.ItemName,
			Quantity:        l.Quantity,
			UnitPriceAtSale: l.UnitPriceAtSale,
		})
	}
	for i := range records {
		sales = append(sales, records[i].toDomain(bySale[records[i].ID]))
	}
	return sales, nil
}

func (s *SaleStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres sale store not configured")
	}
	return nil
}

func toSaleRecord(sale *domain.Sale) saleRecord {
	record := saleRecord{
		ID:          sale.ID,
		TenantID:    sale.TenantID,
		CreatedBy:   sale.CreatedBy,
		CustomerID:  sale.CustomerID,
		WalkInLabel: sale.WalkInLabel,
		Subtotal:    sale.Subtotal,
		Discount:    sale.Discount,
		Total:       sale.Total,
		PaymentType: string(sale.PaymentType),
		Status:      string(sale.Status),
		CreatedAt:   sale.CreatedAt,
		UpdatedAt:   sale.UpdatedAt,
		VoidedAt:    sale.VoidedAt,
		VoidedBy:    sale.VoidedBy,
		VoidReason:  sale.VoidReason,
	}
	if sale.IdempotencyKey != "" {
		key := sale.IdempotencyKey
		record.IdempotencyKey = &key
	}
	return record
}

func toLineRecords(sale *domain.Sale) []saleLineRecord {
	lines := make([]saleLineRecord, 0, len(sale.Lines))
	for i, l := range sale.Lines {
		lines = append(lines, saleLineRecord{
			SaleID:          sale.ID,
			Position:        i,
			ItemID:          l.ItemID,
			ItemName:        l.ItemName,
			Quantity:        l.Quantity,
			UnitPriceAtSale: l.UnitPriceAtSale,
		})
	}
	return lines
}

func (r saleRecord) toDomain(lines []domain.Line) *domain.Sale {
	sale := &domain.Sale{
		ID:          r.ID,
		TenantID:    r.TenantID,
		CreatedBy:   r.CreatedBy,
		CustomerID:  r.CustomerID,
		WalkInLabel: r.WalkInLabel,
		Lines:       lines,
		Subtotal:    r.Subtotal,
		Discount:    r.Discount,
		Total:       r.Total,
		PaymentType: domain.PaymentType(r.PaymentType),
		Status:      domain.Status(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		VoidedAt:    r.VoidedAt,
		VoidedBy:    r.VoidedBy,
		VoidReason:  r.VoidReason,
	}
	if r.IdempotencyKey != nil {
		sale.IdempotencyKey = *r.IdempotencyKey
	}
	return sale
}
