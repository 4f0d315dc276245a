package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/application/types"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/ports"
)

var _ ports.ReportStore = (*ReportStore)(nil)

// ReportStore persists reconciliation runs. Findings are stored as JSON and the
// failed check names as a text array for filtering.
type ReportStore struct {
	db *gorm.DB
}

func NewReportStore(db *gorm.DB) *ReportStore {
	return &ReportStore{db: db}
}

type reconciliationRunRecord struct {
	ID               uuid.UUID       `gorm:"primaryKey;type:uuid;column:id"`
	TenantID         uuid.UUID       `gorm:"type:uuid;column:tenant_id"`
	GeneratedAt      time.Time       `gorm:"column:generated_at"`
	ItemsChecked     int             `gorm:"column:items_checked"`
	CustomersChecked int             `gorm:"column:customers_checked"`
	Checks           pq.StringArray  `gorm:"column:checks;type:text[]"`
	Findings         []types.Finding `gorm:"column:findings;type:jsonb;serializer:json"`
}

func (reconciliationRunRecord) TableName() string { return "reconciliation_runs" }

func (s *ReportStore) Save(ctx context.Context, report *types.ReconciliationReport) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if report == nil {
		return errors.New("report is nil")
	}
	checks := report.FailedChecks()
	if checks == nil {
		checks = []string{}
	}
	record := reconciliationRunRecord{
		ID:               report.ID,
		TenantID:         report.TenantID,
		GeneratedAt:      report.GeneratedAt,
		ItemsChecked:     report.ItemsChecked,
		CustomersChecked: report.CustomersChecked,
		Checks:           pq.StringArray(checks),
		Findings:         report.Findings,
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
		report.ID = record.ID
	}
	// A retried save of the same run is a no-op.
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error
}

func (s *ReportStore) List(ctx context.Context, tenantID uuid.UUID, limit int) ([]*types.ReconciliationReport, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	query := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("generated_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var records []reconciliationRunRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	reports := make([]*types.ReconciliationReport, 0, len(records))
	for _, r := range records {
		findings := r.Findings
		if findings == nil {
			findings = []types.Finding{}
		}
		reports = append(reports, &types.ReconciliationReport{
			ID:               r.ID,
			TenantID:         r.TenantID,
			GeneratedAt:      r.GeneratedAt,
			ItemsChecked:     r.ItemsChecked,
			CustomersChecked: r.CustomersChecked,
			Findings:         findings,
		})
	}
	return reports, nil
}

func (s *ReportStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres report store not configured")
	}
	return nil
}
