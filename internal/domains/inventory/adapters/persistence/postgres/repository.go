package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-shop-server/internal/domains/inventory/domain"
	"github.com/Apurer/go-gin-shop-server/internal/domains/inventory/ports"
	platformpostgres "github.com/Apurer/go-gin-shop-server/internal/platform/postgres"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists items and stock movements in PostgreSQL using GORM.
// Passing a transaction handle makes every call join that transaction.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle
// and schema (see platform/migrations).
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type itemRecord struct {
	ID               uuid.UUID       `gorm:"primaryKey;type:uuid;column:id"`
	TenantID         uuid.UUID       `gorm:"type:uuid;column:tenant_id"`
	Name             string          `gorm:"column:name"`
	Category         string          `gorm:"column:category"`
	UnitPrice        decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2)"`
	StockQuantity    int             `gorm:"column:stock_quantity"`
	RestockThreshold int             `gorm:"column:restock_threshold"`
	SKU              *string         `gorm:"column:sku"`
	CreatedBy        uuid.UUID       `gorm:"type:uuid;column:created_by"`
	CreatedAt        time.Time       `gorm:"column:created_at"`
	UpdatedAt        time.Time       `gorm:"column:updated_at"`
}

func (itemRecord) TableName() string { return "items" }

type movementRecord struct {
	ID           uuid.UUID  `gorm:"primaryKey;type:uuid;column:id"`
	TenantID     uuid.UUID  `gorm:"type:uuid;column:tenant_id"`
	ItemID       uuid.UUID  `gorm:"type:uuid;column:item_id"`
	Delta        int        `gorm:"column:delta"`
	BalanceAfter int        `gorm:"column:balance_after"`
	Reason       string     `gorm:"column:reason"`
	SaleID       *uuid.UUID `gorm:"type:uuid;column:sale_id"`
	ActorID      uuid.UUID  `gorm:"type:uuid;column:actor_id"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
}

func (movementRecord) TableName() string { return "stock_movements" }

// Create inserts the item and its opening movement in one transaction.
func (r *Repository) Create(ctx context.Context, item *domain.Item, actorID uuid.UUID) (*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errors.New("item is nil")
	}
	record := toItemRecord(item)
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			if platformpostgres.IsUniqueViolation(err) {
				return ports.ErrDuplicateSKU
			}
			return err
		}
		if record.StockQuantity <= 0 {
			return nil
		}
		opening := domain.NewMovement(domain.StockAdjustment{
			TenantID: record.TenantID,
			ItemID:   record.ID,
			Delta:    record.StockQuantity,
			Reason:   domain.ReasonOpening,
			ActorID:  actorID,
		}, record.StockQuantity, record.CreatedAt)
		movement := toMovementRecord(opening)
		return tx.Create(&movement).Error
	})
	if err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

// Update writes descriptive columns only; stock_quantity is owned by AdjustStock.
func (r *Repository) Update(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errors.New("item is nil")
	}
	result := r.db.WithContext(ctx).
		Model(&itemRecord{}).
		Where("id = ? AND tenant_id = ?", item.ID, item.TenantID).
		Updates(map[string]any{
			"name":              item.Name,
			"category":          item.Category,
			"unit_price":        item.UnitPrice,
			"restock_threshold": item.RestockThreshold,
			"sku":               item.SKU,
			"updated_at":        gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		if platformpostgres.IsUniqueViolation(result.Error) {
			return nil, ports.ErrDuplicateSKU
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, item.TenantID, item.ID)
}

func (r *Repository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record itemRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) List(ctx context.Context, filter ports.ItemFilter) ([]*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Model(&itemRecord{}).Where("tenant_id = ?", filter.TenantID)
	if filter.Search != "" {
		pattern := platformpostgres.ContainsPattern(filter.Search)
		query = query.Where(`(name ILIKE ? ESCAPE '\' OR sku ILIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if filter.Category != "" {
		query = query.Where("LOWER(category) = LOWER(?)", filter.Category)
	}
	if filter.Level != nil {
		switch *filter.Level {
		case domain.StockLevelOut:
			query = query.Where("stock_quantity <= 0")
		case domain.StockLevelLow:
			query = query.Where("stock_quantity > 0 AND stock_quantity <= restock_threshold")
		case domain.StockLevelOK:
			query = query.Where("stock_quantity > restock_threshold")
		}
	}
	query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: filter.Sort != ports.SortOldest})
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	var records []itemRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	items := make([]*domain.Item, 0, len(records))
	for i := range records {
		items = append(items, records[i].toDomain())
	}
	return items, nil
}

func (r *Repository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&itemRecord{}, "id = ? AND tenant_id = ?", id, tenantID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// AdjustStock issues a relative, guarded UPDATE. Under READ COMMITTED a
// concurrent writer on the same row is waited for and the guard re-evaluated,
// so two sales can never both take the last unit.
func (r *Repository) AdjustStock(ctx context.Context, adj domain.StockAdjustment) (*domain.StockMovement, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if err := adj.Validate(); err != nil {
		return nil, err
	}
	var movement domain.StockMovement
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&itemRecord{}).
			Where("id = ? AND tenant_id = ? AND stock_quantity + ? >= 0", adj.ItemID, adj.TenantID, adj.Delta).
			Updates(map[string]any{
				"stock_quantity": gorm.Expr("stock_quantity + ?", adj.Delta),
				"updated_at":     gorm.Expr("NOW()"),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&itemRecord{}).Where("id = ? AND tenant_id = ?", adj.ItemID, adj.TenantID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ports.ErrNotFound
			}
			return ports.ErrInsufficientStock
		}
		// The row stays locked by this transaction, so the read sees our own write.
		var balance int
		if err := tx.Model(&itemRecord{}).
			Select("stock_quantity").
			Where("id = ? AND tenant_id = ?", adj.ItemID, adj.TenantID).
			Scan(&balance).Error; err != nil {
			return err
		}
		movement = domain.NewMovement(adj, balance, time.Now().UTC())
		record := toMovementRecord(movement)
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &movement, nil
}

func (r *Repository) ListMovements(ctx context.Context, tenantID, itemID uuid.UUID) ([]*domain.StockMovement, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []movementRecord
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND item_id = ?", tenantID, itemID).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	movements := make([]*domain.StockMovement, 0, len(records))
	for i := range records {
		movements = append(movements, records[i].toDomain())
	}
	return movements, nil
}

func (r *Repository) LedgerTotals(ctx context.Context, tenantID uuid.UUID) ([]domain.LedgerTotal, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var rows []struct {
		ItemID        uuid.UUID
		StockQuantity int
		MovementSum   int
	}
	err := r.db.WithContext(ctx).
		Table("items AS i").
		Select("i.id AS item_id, i.stock_quantity AS stock_quantity, COALESCE(SUM(m.delta), 0) AS movement_sum").
		Joins("LEFT JOIN stock_movements AS m ON m.item_id = i.id AND m.tenant_id = i.tenant_id").
		Where("i.tenant_id = ?", tenantID).
		Group("i.id, i.stock_quantity").
		Order("i.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	totals := make([]domain.LedgerTotal, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, domain.LedgerTotal{ItemID: row.ItemID, StockQuantity: row.StockQuantity, MovementSum: row.MovementSum})
	}
	return totals, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres item repository not configured")
	}
	return nil
}

func toItemRecord(item *domain.Item) itemRecord {
	return itemRecord{
		ID:               item.ID,
		TenantID:         item.TenantID,
		Name:             item.Name,
		Category:         item.Category,
		UnitPrice:        item.UnitPrice,
		StockQuantity:    item.StockQuantity,
		RestockThreshold: item.RestockThreshold,
		SKU:              item.SKU,
		CreatedBy:        item.CreatedBy,
		CreatedAt:        item.CreatedAt,
		UpdatedAt:        item.UpdatedAt,
	}
}

func (r itemRecord) toDomain() *domain.Item {
	return &domain.Item{
		ID:               r.ID,
		TenantID:         r.TenantID,
		Name:             r.Name,
		Category:         r.Category,
		UnitPrice:        r.UnitPrice,
		StockQuantity:    r.StockQuantity,
		RestockThreshold: r.RestockThreshold,
		SKU:              r.SKU,
		CreatedBy:        r.CreatedBy,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func toMovementRecord(m domain.StockMovement) movementRecord {
	return movementRecord{
		ID:           m.ID,
		TenantID:     m.TenantID,
		ItemID:       m.ItemID,
		Delta:        m.Delta,
		BalanceAfter: m.BalanceAfter,
		Reason:       string(m.Reason),
		SaleID:       m.SaleID,
		ActorID:      m.ActorID,
		CreatedAt:    m.CreatedAt,
	}
}

func (r movementRecord) toDomain() *domain.StockMovement {
	return &domain.StockMovement{
		ID:           r.ID,
		TenantID:     r.TenantID,
		ItemID:       r.ItemID,
		Delta:        r.Delta,
		BalanceAfter: r.BalanceAfter,
		Reason:       domain.MovementReason(r.Reason),
		SaleID:       r.SaleID,
		ActorID:      r.ActorID,
		CreatedAt:    r.CreatedAt,
	}
}
