package service

import (
	"context"
	"fmt"
	"time"

	"sales-admin/internal/domain"
	"sales-admin/internal/repository"
)

// TopRankingSize is the length of each dashboard ranking
const TopRankingSize = 10

// StatisticsService computes the dashboard rollup
type StatisticsService interface {
	GetStatistics(ctx context.Context) (*domain.OrderStatistics, error)
}

type statisticsService struct {
	statsRepo repository.StatisticsRepository
	location  *time.Location
	now       func() time.Time
}

// NewStatisticsService creates a StatisticsService whose day and month
// boundaries follow loc
func NewStatisticsService(statsRepo repository.StatisticsRepository, loc *time.Location, now func() time.Time) StatisticsService {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &statisticsService{statsRepo: statsRepo, location: loc, now: now}
}

// Period starts relative to now: local midnight, a rolling seven days, and the
// first of the calendar month
func periodStarts(now time.Time, loc *time.Location) (today, week, month time.Time) {
	local := now.In(loc)
	today = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	week = now.Add(-7 * 24 * time.Hour)
	month = time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	return today, week, month
}

func (s *statisticsService) GetStatistics(ctx context.Context) (*domain.OrderStatistics, error) {
	today, week, month := periodStarts(s.now(), s.location)

	stats := &domain.OrderStatistics{}
	var err error

	if stats.TotalOrders, stats.TotalSalesAmount, err = s.statsRepo.Summary(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to get overall totals: %w", err)
	}
	if stats.TotalOrdersToday, stats.TotalSalesAmountToday, err = s.statsRepo.Summary(ctx, &today); err != nil {
		return nil, fmt.Errorf("failed to get today's totals: %w", err)
	}
	if stats.TotalOrdersThisWeek, stats.TotalSalesAmountThisWeek, err = s.statsRepo.Summary(ctx, &week); err != nil {
		return nil, fmt.Errorf("failed to get weekly totals: %w", err)
	}
	if stats.TotalOrdersThisMonth, stats.TotalSalesAmountThisMonth, err = s.statsRepo.Summary(ctx, &month); err != nil {
		return nil, fmt.Errorf("failed to get monthly totals: %w", err)
	}

	if stats.TopSellingProducts, err = s.statsRepo.TopProducts(ctx, TopRankingSize); err != nil {
		return nil, fmt.Errorf("failed to rank products: %w", err)
	}
	if stats.TopCustomers, err = s.statsRepo.TopCustomers(ctx, TopRankingSize); err != nil {
		return nil, fmt.Errorf("failed to rank customers: %w", err)
	}
	if stats.TopSalesUsers, err = s.statsRepo.TopSalesUsers(ctx, TopRankingSize); err != nil {
		return nil, fmt.Errorf("failed to rank sales users: %w", err)
	}

	return stats, nil
}
