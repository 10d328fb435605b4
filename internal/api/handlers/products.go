package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cisnerospos/posgw/internal/api/middleware"
	"github.com/cisnerospos/posgw/internal/backend"
	"github.com/cisnerospos/posgw/internal/domain"
)

// ProductRequest is the create/update payload for a catalog entry
type ProductRequest struct {
	Name  string       `json:"name" binding:"required"`
	Price domain.Cents `json:"price"`
	Stock int          `json:"stock"`
}

// HandleListProducts handles GET /v1/products. A fresh snapshot is
// fetched on every listing; ?q= filters by name substring.
func HandleListProducts(client *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if err := sess.RefreshCatalog(c.Request.Context(), client); err != nil {
			respondError(c, err)
			return
		}

		products := sess.FilterProducts(c.Query("q"))
		out := make([]ProductResponse, 0, len(products))
		for _, p := range products {
			out = append(out, toProductResponse(p))
		}
		c.JSON(http.StatusOK, out)
	}
}

// HandleCreateProduct handles POST /v1/products
func HandleCreateProduct(client *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req ProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}
		if req.Price < 0 || req.Stock < 0 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "price and stock must be non-negative"})
			return
		}

		product, err := client.CreateProduct(c.Request.Context(), sess.BackendToken, backend.ProductInput{
			Nombre:   req.Name,
			Precio:   req.Price,
			Cantidad: req.Stock,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		// The catalog changed upstream; invalidate the session snapshot.
		if err := sess.RefreshCatalog(c.Request.Context(), client); err != nil {
			logger.Warn("Failed to refresh catalog after create", zap.Error(err))
		}

		c.JSON(http.StatusCreated, toProductResponse(*product))
	}
}

// HandleUpdateProduct handles PUT /v1/products/:id
func HandleUpdateProduct(client *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req ProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}
		if req.Price < 0 || req.Stock < 0 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "price and stock must be non-negative"})
			return
		}

		product, err := client.UpdateProduct(c.Request.Context(), sess.BackendToken, c.Param("id"), backend.ProductInput{
			Nombre:   req.Name,
			Precio:   req.Price,
			Cantidad: req.Stock,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		if err := sess.RefreshCatalog(c.Request.Context(), client); err != nil {
			logger.Warn("Failed to refresh catalog after update", zap.Error(err))
		}

		c.JSON(http.StatusOK, toProductResponse(*product))
	}
}

// HandleDeleteProduct handles DELETE /v1/products/:id
func HandleDeleteProduct(client *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if err := client.DeleteProduct(c.Request.Context(), sess.BackendToken, c.Param("id")); err != nil {
			respondError(c, err)
			return
		}

		// Drop any cart line referencing the deleted product.
		sess.RemoveProduct(c.Param("id"))

		if err := sess.RefreshCatalog(c.Request.Context(), client); err != nil {
			logger.Warn("Failed to refresh catalog after delete", zap.Error(err))
		}

		c.Status(http.StatusNoContent)
	}
}
