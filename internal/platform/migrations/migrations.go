package migrations

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for every bounded context. Adapters never migrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	if err := db.AutoMigrate(
		&itemRecord{},
		&stockMovementRecord{},
		&customerRecord{},
		&creditEntryRecord{},
		&saleRecord{},
		&saleLineRecord{},
		&saleIdempotencyRecord{},
		&reconciliationRunRecord{},
	); err != nil {
		return err
	}
	return db.Exec(createItemSKUIndex).Error
}

// Item schema mirrors the inventory Postgres adapter. SKUs are unique per
// tenant, case-insensitively, when present.
type itemRecord struct {
	ID               uuid.UUID       `gorm:"primaryKey;type:uuid;column:id"`
	TenantID         uuid.UUID       `gorm:"type:uuid;column:tenant_id;not null;index:idx_items_tenant_created,priority:1"`
	Name             string          `gorm:"column:name;not null"`
	Category         string          `gorm:"column:category"`
	UnitPrice        decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2);not null;check:chk_items_price_non_negative,unit_price >= 0"`
	StockQuantity    int             `gorm:"column:stock_quantity;not null;check:chk_items_stock_non_negative,stock_quantity >= 0"`
	RestockThreshold int             `gorm:"column:restock_threshold;not null"`
	SKU              *string         `gorm:"column:sku"`
	CreatedBy        uuid.UUID       `gorm:"type:uuid;column:created_by"`
	CreatedAt        time.Time       `gorm:"column:created_at;index:idx_items_tenant_created,priority:2"`
	UpdatedAt        time.Time       `gorm:"column:updated_at"`
}

func (itemRecord) TableName() string { return "items" }

type stockMovementRecord struct {
	ID           uuid.UUID  `gorm:"primaryKey;type:uuid;column:id"`
	TenantID     uuid.UUID  `gorm:"type:uuid;column:tenant_id;not null;index:idx_stock_movements_tenant_item,priority:1"`
	ItemID       uuid.UUID  `gorm:"type:uuid;column:item_id;not null;index:idx_stock_movements_tenant_item,priority:2"`
	Delta        int        `gorm:"column:delta;not null"`
	BalanceAfter int        `gorm:"column:balance_after;not null"`
	Reason       string     `gorm:"column:reason;type:varchar(32);not null"`
	SaleID       *uuid.UUID `gorm:"type:uuid;column:sale_id;index"`
	ActorID      uuid.UUID  `gorm:"type:uuid;column:actor_id"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
}

func (stockMovementRecord) TableName() string { return "stock_movements" }

// Customer schema mirrors the customers Postgres adapter.
type customerRecord struct {
	ID            uuid.UUID       `gorm:"primaryKey;type:uuid;column:id"`
	TenantID      uuid.UUID       `gorm:"type:uuid;column:tenant_id;not null;index:idx_customers_tenant_created,priority:1"`
	Name          string          `gorm:"column:name;not null"`
	Phone         string          `gorm:"column:phone"`
	Email         string          `gorm:"column:email"`
	Address       string          `gorm:"column:address"`
	CreditBalance decimal.Decimal `gorm:"column:credit_balance;type:numeric(14,2);not null;default:0"`
	CreatedBy     uuid.UUID       `gorm:"type:uuid;column:created_by"`
	CreatedAt     time.Time       `gorm:"column:created_at;index:idx_customers_tenant_created,priority:2"`
	UpdatedAt     time.Time       `gorm:"column:updated_at"`
}

func (customerRecord) TableName() string { return "customers" }

type creditEntryRecord struct {
	ID           uuid.UUID       `gorm:"primaryKey;type:uuid;column:id"`
	TenantID     uuid.UUID       `gorm:"type:uuid;column:tenant_id;not null;index:idx_credit_entries_tenant_customer,priority:1"`
	CustomerID   uuid.UUID       `gorm:"type:uuid;column:customer_id;not null;index:idx_credit_entries_tenant_customer,priority:2"`
	Delta        decimal.Decimal `gorm:"column:delta;type:numeric(14,2);not null"`
	BalanceAfter decimal.Decimal `gorm:"column:balance_after;type:numeric(14,2);not null"`
	Reason       string          `gorm:"column:reason;type:varchar(32);not null"`
	SaleID       *uuid.UUID      `gorm:"type:uuid;column:sale_id;index"`
	ActorID      uuid.UUID       `gorm:"type:uuid;column:actor_id"`
	CreatedAt    time.Time       `gorm:"column:created_at"`
}

func (creditEntryRecord) TableName() string { return "credit_entries" }

// Sale schema mirrors the sales Postgres adapter.
type saleRecord struct {
	ID             uuid.UUID       `gorm:"primaryKey;type:uuid;column:id"`
	TenantID       uuid.UUID       `gorm:"type:uuid;column:tenant_id;not null;index:idx_sales_tenant_created,priority:1"`
	CreatedBy      uuid.UUID       `gorm:"type:uuid;column:created_by"`
	CustomerID     *uuid.UUID      `gorm:"type:uuid;column:customer_id;index"`
	WalkInLabel    string          `gorm:"column:walk_in_label"`
	Subtotal       decimal.Decimal `gorm:"column:subtotal;type:numeric(14,2);not null"`
	Discount       decimal.Decimal `gorm:"column:discount;type:numeric(14,2);not null;check:chk_sales_discount,discount >= 0 AND discount <= subtotal"`
	Total          decimal.Decimal `gorm:"column:total;type:numeric(14,2);not null"`
	PaymentType    string          `gorm:"column:payment_type;type:varchar(16);not null"`
	Status         string          `gorm:"column:status;type:varchar(16);not null"`
	IdempotencyKey *string         `gorm:"column:idempotency_key;size:255"`
	CreatedAt      time.Time       `gorm:"column:created_at;index:idx_sales_tenant_created,priority:2"`
	UpdatedAt      time.Time       `gorm:"column:updated_at"`
	VoidedAt       *time.Time      `gorm:"column:voided_at"`
	VoidedBy       *uuid.UUID      `gorm:"type:uuid;column:voided_by"`
	VoidReason     string          `gorm:"column:void_reason"`
}

func (saleRecord) TableName() string { return "sales" }

type saleLineRecord struct {
	SaleID          uuid.UUID       `gorm:"primaryKey;type:uuid;column:sale_id"`
	Position        int             `gorm:"primaryKey;column:position"`
	ItemID          uuid.UUID       `gorm:"type:uuid;column:item_id;not null;index"`
	ItemName        string          `gorm:"column:item_name"`
	Quantity        int             `gorm:"column:quantity;not null;check:chk_sale_lines_quantity,quantity > 0"`
	UnitPriceAtSale decimal.Decimal `gorm:"column:unit_price_at_sale;type:numeric(14,2);not null"`
}

func (saleLineRecord) TableName() string { return "sale_lines" }

type saleIdempotencyRecord struct {
	TenantID    uuid.UUID `gorm:"primaryKey;type:uuid;column:tenant_id"`
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128"`
	SaleID      uuid.UUID `gorm:"type:uuid;column:sale_id"`
	CreatedAt   time.Time `gorm:"column:created_at;index"`
}

func (saleIdempotencyRecord) TableName() string { return "sale_idempotency_keys" }

// Reconciliation run schema mirrors the reconciliation report store.
type reconciliationRunRecord struct {
	ID               uuid.UUID      `gorm:"primaryKey;type:uuid;column:id"`
	TenantID         uuid.UUID      `gorm:"type:uuid;column:tenant_id;not null;index:idx_reconciliation_runs_tenant_generated,priority:1"`
	GeneratedAt      time.Time      `gorm:"column:generated_at;index:idx_reconciliation_runs_tenant_generated,priority:2"`
	ItemsChecked     int            `gorm:"column:items_checked"`
	CustomersChecked int            `gorm:"column:customers_checked"`
	Checks           pq.StringArray `gorm:"column:checks;type:text[]"`
	Findings         []byte         `gorm:"column:findings;type:jsonb"`
}

func (reconciliationRunRecord) TableName() string { return "reconciliation_runs" }

// The partial unique index on SKU needs an expression, which struct tags cannot express.
const createItemSKUIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_items_tenant_sku ON items (tenant_id, LOWER(sku)) WHERE sku IS NOT NULL`
