package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cisnerospos/posgw/internal/api/middleware"
	"github.com/cisnerospos/posgw/internal/backend"
)

// AddCartItemRequest adds one unit of a product to the session cart
type AddCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

// UpdateCartItemRequest replaces a cart line's quantity. The cart itself
// validates the value so zero gets a proper error, not a binding failure.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// HandleGetCart handles GET /v1/cart
func HandleGetCart(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		lines, total := sess.CartView()
		c.JSON(http.StatusOK, toCartResponse(lines, total))
	}
}

// HandleAddCartItem handles POST /v1/cart/items. The catalog snapshot is
// refreshed first so the stock check runs against the freshest data the
// gateway can get.
func HandleAddCartItem(client *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req AddCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		if err := sess.RefreshCatalog(c.Request.Context(), client); err != nil {
			respondError(c, err)
			return
		}

		if err := sess.AddProduct(req.ProductID); err != nil {
			respondError(c, err)
			return
		}

		lines, total := sess.CartView()
		c.JSON(http.StatusOK, toCartResponse(lines, total))
	}
}

// HandleUpdateCartItem handles PUT /v1/cart/items/:productId
func HandleUpdateCartItem(client *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req UpdateCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		if err := sess.RefreshCatalog(c.Request.Context(), client); err != nil {
			respondError(c, err)
			return
		}

		if err := sess.SetQuantity(c.Param("productId"), req.Quantity); err != nil {
			respondError(c, err)
			return
		}

		lines, total := sess.CartView()
		c.JSON(http.StatusOK, toCartResponse(lines, total))
	}
}

// HandleRemoveCartItem handles DELETE /v1/cart/items/:productId
func HandleRemoveCartItem(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		sess.RemoveProduct(c.Param("productId"))

		lines, total := sess.CartView()
		c.JSON(http.StatusOK, toCartResponse(lines, total))
	}
}

// HandleClearCart handles DELETE /v1/cart (explicit cancel)
func HandleClearCart(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		sess.ClearCart()
		c.Status(http.StatusNoContent)
	}
}
