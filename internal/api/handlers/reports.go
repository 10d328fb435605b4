package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cisnerospos/posgw/internal/api/middleware"
	"github.com/cisnerospos/posgw/internal/backend"
	"github.com/cisnerospos/posgw/internal/domain"
	"github.com/cisnerospos/posgw/internal/service"
)

// ReportService aggregates past sales into a summary
type ReportService interface {
	SalesReport(ctx context.Context, token string, filter backend.SalesFilter) (*service.SalesSummary, error)
}

// SalesReportResponse is the aggregated sales report
type SalesReportResponse struct {
	TotalSales  domain.Cents     `json:"total_sales"`
	TotalUnits  int              `json:"total_units"`
	AverageSale domain.Cents     `json:"average_sale"`
	SaleCount   int              `json:"sale_count"`
	Sales       []TicketResponse `json:"sales"`
}

// HandleSalesReport handles GET /v1/reports/sales. Accepts start_date,
// end_date (YYYY-MM-DD) and period (daily|weekly|monthly) query params.
func HandleSalesReport(reports ReportService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		filter := backend.SalesFilter{
			StartDate: c.Query("start_date"),
			EndDate:   c.Query("end_date"),
			Period:    domain.ReportPeriod(c.Query("period")),
		}

		summary, err := reports.SalesReport(c.Request.Context(), sess.BackendToken, filter)
		if err != nil {
			respondError(c, err)
			return
		}

		resp := SalesReportResponse{
			TotalSales:  summary.TotalSales,
			TotalUnits:  summary.TotalUnits,
			AverageSale: summary.AverageSale,
			SaleCount:   summary.SaleCount,
			Sales:       make([]TicketResponse, 0, len(summary.Sales)),
		}
		for _, sale := range summary.Sales {
			resp.Sales = append(resp.Sales, toTicketResponse(sale))
		}
		c.JSON(http.StatusOK, resp)
	}
}
