package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cisnerospos/posgw/internal/api/middleware"
	"github.com/cisnerospos/posgw/internal/backend"
	"github.com/cisnerospos/posgw/internal/domain"
)

// InventoryRequest is the create/update payload for a stock count
type InventoryRequest struct {
	ProductID    string `json:"product_id" binding:"required"`
	CountedStock int    `json:"counted_stock"`
	Observations string `json:"observations"`
}

// InventoryResponse is a stock count as served by the gateway
type InventoryResponse struct {
	ID           string `json:"id"`
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name,omitempty"`
	CountedStock int    `json:"counted_stock"`
	Observations string `json:"observations,omitempty"`
	Date         string `json:"date,omitempty"`
}

func toInventoryResponse(r domain.InventoryRecord) InventoryResponse {
	resp := InventoryResponse{
		ID:           r.ID,
		ProductID:    r.ProductID,
		ProductName:  r.ProductName,
		CountedStock: r.CountedStock,
		Observations: r.Observations,
	}
	if !r.Date.IsZero() {
		resp.Date = r.Date.Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}

// HandleListInventory handles GET /v1/inventory
func HandleListInventory(client *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		records, err := client.ListInventory(c.Request.Context(), sess.BackendToken)
		if err != nil {
			respondError(c, err)
			return
		}

		out := make([]InventoryResponse, 0, len(records))
		for _, r := range records {
			out = append(out, toInventoryResponse(r))
		}
		c.JSON(http.StatusOK, out)
	}
}

// HandleCreateInventory handles POST /v1/inventory
func HandleCreateInventory(client *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req InventoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}
		if req.CountedStock < 0 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "counted stock must be non-negative"})
			return
		}

		record, err := client.CreateInventory(c.Request.Context(), sess.BackendToken, backend.InventoryInput{
			Producto:         req.ProductID,
			ExistenciaFisica: req.CountedStock,
			Observaciones:    req.Observations,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		// Counting adjusts stock upstream; the snapshot is stale now.
		if err := sess.RefreshCatalog(c.Request.Context(), client); err != nil {
			logger.Warn("Failed to refresh catalog after inventory count", zap.Error(err))
		}

		c.JSON(http.StatusCreated, toInventoryResponse(*record))
	}
}

// HandleUpdateInventory handles PUT /v1/inventory/:id
func HandleUpdateInventory(client *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req InventoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		record, err := client.UpdateInventory(c.Request.Context(), sess.BackendToken, c.Param("id"), backend.InventoryInput{
			Producto:         req.ProductID,
			ExistenciaFisica: req.CountedStock,
			Observaciones:    req.Observations,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		if err := sess.RefreshCatalog(c.Request.Context(), client); err != nil {
			logger.Warn("Failed to refresh catalog after inventory update", zap.Error(err))
		}

		c.JSON(http.StatusOK, toInventoryResponse(*record))
	}
}

// HandleClearInventory handles DELETE /v1/inventory/clear, wiping every
// count record upstream
func HandleClearInventory(client *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if err := client.ClearInventory(c.Request.Context(), sess.BackendToken); err != nil {
			respondError(c, err)
			return
		}

		logger.Info("Inventory counts cleared", zap.String("username", sess.User.Username))
		c.Status(http.StatusNoContent)
	}
}

// HandleInventoryReport handles GET /v1/inventory/report, passing the
// backend-generated PDF through
func HandleInventoryReport(client *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		pdf, err := client.InventoryReportPDF(c.Request.Context(), sess.BackendToken)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Header("Content-Disposition", `attachment; filename="inventario.pdf"`)
		c.Data(http.StatusOK, "application/pdf", pdf)
	}
}
