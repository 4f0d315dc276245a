package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/application/types"
	"github.com/Apurer/go-gin-shop-server/internal/domains/sales/ports"
	"github.com/Apurer/go-gin-shop-server/internal/platform/memdb"
)

var _ ports.ReportStore = (*ReportStore)(nil)

// ReportStore keeps reconciliation reports in a memdb log.
type ReportStore struct {
	db      *memdb.DB
	reports *memdb.Log[types.ReconciliationReport]
}

func NewReportStore(db *memdb.DB) *ReportStore {
	if db == nil {
		db = memdb.New()
	}
	return &ReportStore{db: db, reports: memdb.NewLog[types.ReconciliationReport](db)}
}

func (s *ReportStore) Save(ctx context.Context, report *types.ReconciliationReport) error {
	stored := *report
	stored.Findings = append([]types.Finding{}, report.Findings...)
	return s.db.Update(ctx, func(ctx context.Context) error {
		seen := false
		s.reports.Scan(func(r types.ReconciliationReport) bool {
			seen = r.ID == stored.ID
			return !seen
		})
		if !seen {
			s.reports.Append(stored)
		}
		return nil
	})
}

func (s *ReportStore) List(ctx context.Context, tenantID uuid.UUID, limit int) ([]*types.ReconciliationReport, error) {
	var list []*types.ReconciliationReport
	err := s.db.View(ctx, func(ctx context.Context) error {
		s.reports.Scan(func(r types.ReconciliationReport) bool {
			if r.TenantID == tenantID {
				r.Findings = append([]types.Finding{}, r.Findings...)
				list = append(list, &r)
			}
			return true
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].GeneratedAt.After(list[j].GeneratedAt) })
	return paginate(list, limit, 0), nil
}
