package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/neomorfeo/rentiq/internal/domain"
)

const chartMonths = 6

// DashboardService builds the administrator overview, optionally through a
// short-lived cache.
type DashboardService struct {
	store  domain.Store
	cache  domain.Cache
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewDashboardService creates a service. cache may be nil.
func NewDashboardService(store domain.Store, cache domain.Cache, ttl time.Duration, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		store:  store,
		cache:  cache,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger,
	}
}

// Get returns the overview for the current month.
func (s *DashboardService) Get(ctx context.Context) (domain.Dashboard, error) {
	now := s.now()
	key := fmt.Sprintf("dashboard:%04d-%02d", now.Year(), int(now.Month()))

	if s.cache != nil {
		raw, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("reading dashboard cache", zap.Error(err))
		}
		var d domain.Dashboard
		if ok && json.Unmarshal(raw, &d) == nil {
			return d, nil
		}
	}

	d, err := s.build(ctx, now)
	if err != nil {
		return domain.Dashboard{}, err
	}

	if s.cache != nil {
		raw, _ := json.Marshal(d)
		if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
			s.logger.Warn("writing dashboard cache", zap.Error(err))
		}
	}
	return d, nil
}

func (s *DashboardService) build(ctx context.Context, now time.Time) (domain.Dashboard, error) {
	stats := s.store.Stats()

	counts, err := stats.Counts(ctx)
	if err != nil {
		return domain.Dashboard{}, err
	}
	d := domain.Dashboard{Counts: counts}

	year, month := now.Year(), int(now.Month())
	if d.RevenueThisMonth, err = stats.InvoiceSum(ctx, domain.InvoicePaid, year, month); err != nil {
		return domain.Dashboard{}, err
	}
	if d.DebtThisMonth, err = stats.InvoiceSum(ctx, domain.InvoiceUnpaid, year, month); err != nil {
		return domain.Dashboard{}, err
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	for i := chartMonths - 1; i >= 0; i-- {
		m := first.AddDate(0, -i, 0)
		revenue, err := stats.InvoiceSum(ctx, domain.InvoicePaid, m.Year(), int(m.Month()))
		if err != nil {
			return domain.Dashboard{}, err
		}
		d.Chart = append(d.Chart, domain.MonthRevenue{Year: m.Year(), Month: int(m.Month()), Revenue: revenue})
	}
	return d, nil
}
