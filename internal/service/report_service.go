package service

import (
	"context"
	stderrors "errors"

	"go.uber.org/zap"

	"github.com/cisnerospos/posgw/internal/backend"
	"github.com/cisnerospos/posgw/internal/domain"
)

// ErrInvalidPeriod is returned for report periods other than
// daily/weekly/monthly
var ErrInvalidPeriod = stderrors.New("report period must be daily, weekly or monthly")

// SalesSource lists persisted sales. Satisfied by the backend client.
type SalesSource interface {
	ListSales(ctx context.Context, token string, filter *backend.SalesFilter) ([]domain.SaleRecord, error)
}

// SalesSummary is the report derived client-side from a sales listing:
// total revenue, units sold, and the average sale amount.
type SalesSummary struct {
	TotalSales  domain.Cents
	TotalUnits  int
	AverageSale domain.Cents
	SaleCount   int
	Sales       []domain.SaleRecord
}

type reportService struct {
	source SalesSource
	logger *zap.Logger
}

// NewReportService creates a new report service
func NewReportService(source SalesSource, logger *zap.Logger) *reportService {
	return &reportService{
		source: source,
		logger: logger,
	}
}

// SalesReport fetches sales for the filter and aggregates them
func (s *reportService) SalesReport(ctx context.Context, token string, filter backend.SalesFilter) (*SalesSummary, error) {
	if filter.Period != "" && !filter.Period.IsValid() {
		return nil, ErrInvalidPeriod
	}

	sales, err := s.source.ListSales(ctx, token, &filter)
	if err != nil {
		return nil, err
	}

	summary := &SalesSummary{
		SaleCount: len(sales),
		Sales:     sales,
	}
	for _, sale := range sales {
		summary.TotalSales += sale.Total
		for _, item := range sale.Items {
			summary.TotalUnits += item.Quantity
		}
	}
	if summary.SaleCount > 0 {
		// Rounded to the nearest cent.
		n := int64(summary.TotalSales)
		c := int64(summary.SaleCount)
		summary.AverageSale = domain.Cents((n + c/2) / c)
	}

	return summary, nil
}
