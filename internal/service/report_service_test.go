package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cisnerospos/posgw/internal/backend"
	"github.com/cisnerospos/posgw/internal/domain"
)

type stubSales struct {
	sales     []domain.SaleRecord
	err       error
	gotFilter *backend.SalesFilter
}

func (s *stubSales) ListSales(ctx context.Context, token string, filter *backend.SalesFilter) ([]domain.SaleRecord, error) {
	s.gotFilter = filter
	return s.sales, s.err
}

func TestSalesReport(t *testing.T) {
	source := &stubSales{sales: []domain.SaleRecord{
		{ID: "s1", Total: 7500, Items: []domain.SaleItem{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 1},
		}},
		{ID: "s2", Total: 2000, Items: []domain.SaleItem{
			{ProductID: "p1", Quantity: 1},
		}},
	}}
	svc := NewReportService(source, zap.NewNop())

	summary, err := svc.SalesReport(context.Background(), "tok", backend.SalesFilter{
		StartDate: "2026-07-29",
		EndDate:   "2026-08-29",
		Period:    domain.ReportPeriodDaily,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.Cents(9500), summary.TotalSales)
	assert.Equal(t, 4, summary.TotalUnits)
	assert.Equal(t, 2, summary.SaleCount)
	assert.Equal(t, domain.Cents(4750), summary.AverageSale)
	require.NotNil(t, source.gotFilter)
	assert.Equal(t, "2026-07-29", source.gotFilter.StartDate)
}

func TestSalesReport_Empty(t *testing.T) {
	svc := NewReportService(&stubSales{}, zap.NewNop())

	summary, err := svc.SalesReport(context.Background(), "tok", backend.SalesFilter{})

	require.NoError(t, err)
	assert.Equal(t, domain.Cents(0), summary.TotalSales)
	assert.Equal(t, 0, summary.TotalUnits)
	assert.Equal(t, domain.Cents(0), summary.AverageSale)
}

func TestSalesReport_AverageRounding(t *testing.T) {
	source := &stubSales{sales: []domain.SaleRecord{
		{ID: "s1", Total: 100},
		{ID: "s2", Total: 101},
		{ID: "s3", Total: 101},
	}}
	svc := NewReportService(source, zap.NewNop())

	summary, err := svc.SalesReport(context.Background(), "tok", backend.SalesFilter{})

	require.NoError(t, err)
	// 302 / 3 rounds to 101 cents.
	assert.Equal(t, domain.Cents(101), summary.AverageSale)
}

func TestSalesReport_InvalidPeriod(t *testing.T) {
	svc := NewReportService(&stubSales{}, zap.NewNop())

	_, err := svc.SalesReport(context.Background(), "tok", backend.SalesFilter{Period: "hourly"})

	assert.ErrorIs(t, err, ErrInvalidPeriod)
}
