package application

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Apurer/petshop-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/petshop-orders-api/internal/domains/orders/ports"
)

// TotalRevenue sums every non-cancelled order ever placed.
func (s *Service) TotalRevenue(ctx context.Context) (float64, error) {
	return s.repo.SumRevenue(ctx, ports.RevenueWindow{})
}

// MonthlyRevenue returns exactly twelve entries for year, January first, with
// zero for months that had no sales. Concurrent callers for the same year share
// one computation. The shared work ignores any single caller's cancellation;
// each caller stops waiting when its own ctx is done.
func (s *Service) MonthlyRevenue(ctx context.Context, year int) ([]domain.MonthlyRevenue, error) {
	shared := context.WithoutCancel(ctx)
	ch := s.revenue.DoChan(strconv.Itoa(year), func() (any, error) {
		return s.monthlyRevenue(shared, year)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	months := res.Val.([]domain.MonthlyRevenue)
	out := make([]domain.MonthlyRevenue, len(months))
	copy(out, months)
	return out, nil
}

func (s *Service) monthlyRevenue(ctx context.Context, year int) ([]domain.MonthlyRevenue, error) {
	months := make([]domain.MonthlyRevenue, 12)
	g, gctx := errgroup.WithContext(ctx)
	for i := range months {
		month := time.Month(i + 1)
		months[i].Month = month
		g.Go(func() error {
			from, to := domain.MonthBounds(year, month)
			sales, err := s.repo.SumRevenue(gctx, ports.RevenueWindow{From: from, To: to})
			if err != nil {
				return err
			}
			months[month-1].Sales = sales
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return months, nil
}

// MonthOverMonth compares the local calendar month containing now with the one before it.
func (s *Service) MonthOverMonth(ctx context.Context, now time.Time) (domain.RevenueChange, error) {
	local := now.In(time.Local)
	curFrom, curTo := domain.MonthBounds(local.Year(), local.Month())
	prevFrom := curFrom.AddDate(0, -1, 0)

	var current, previous float64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.repo.SumRevenue(gctx, ports.RevenueWindow{From: curFrom, To: curTo})
		return err
	})
	g.Go(func() error {
		var err error
		previous, err = s.repo.SumRevenue(gctx, ports.RevenueWindow{From: prevFrom, To: curFrom})
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.RevenueChange{}, err
	}
	return domain.NewRevenueChange(current, previous), nil
}

// Stats gathers the admin dashboard figures.
func (s *Service) Stats(ctx context.Context, now time.Time) (domain.OrderStats, error) {
	stats := domain.OrderStats{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := s.repo.CountByStatus(gctx)
		if err != nil {
			return err
		}
		byStatus := make(map[domain.Status]int64, len(domain.AllStatuses()))
		for _, status := range domain.AllStatuses() {
			byStatus[status] = counts[status]
			stats.Total += counts[status]
		}
		stats.ByStatus = byStatus
		return nil
	})
	g.Go(func() error {
		revenue, err := s.TotalRevenue(gctx)
		stats.Revenue = revenue
		return err
	})
	g.Go(func() error {
		change, err := s.MonthOverMonth(gctx, now)
		stats.Change = change
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.OrderStats{}, err
	}
	return stats, nil
}
