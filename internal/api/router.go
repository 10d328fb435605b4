package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cisnerospos/posgw/internal/api/handlers"
	"github.com/cisnerospos/posgw/internal/api/middleware"
	"github.com/cisnerospos/posgw/internal/auth"
	"github.com/cisnerospos/posgw/internal/backend"
	"github.com/cisnerospos/posgw/internal/config"
	"github.com/cisnerospos/posgw/internal/repository"
	"github.com/cisnerospos/posgw/internal/session"
)

// Deps bundles everything the routes need
type Deps struct {
	Config    *config.Config
	Client    *backend.Client
	Sessions  *session.Registry
	Tokens    *auth.TokenService
	Repos     *repository.Repositories
	Checkouts handlers.CheckoutService
	Reports   handlers.ReportService
	Logger    *zap.Logger
}

// NewRouter creates and configures the Gin router
func NewRouter(deps Deps) *gin.Engine {
	if deps.Config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(deps.Logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := router.Group("/v1")
	{
		v1.POST("/auth/login", handlers.HandleLogin(deps.Client, deps.Sessions, deps.Tokens, deps.Logger))
		v1.POST("/auth/register", handlers.HandleRegister(deps.Client, deps.Sessions, deps.Tokens, deps.Logger))

		// Everything past the login wall requires a session token
		authed := v1.Group("")
		authed.Use(middleware.AuthMiddleware(deps.Tokens, deps.Sessions, deps.Logger))
		{
			authed.POST("/auth/logout", handlers.HandleLogout(deps.Sessions, deps.Logger))

			authed.GET("/products", handlers.HandleListProducts(deps.Client, deps.Logger))
			authed.POST("/products", handlers.HandleCreateProduct(deps.Client, deps.Logger))
			authed.PUT("/products/:id", handlers.HandleUpdateProduct(deps.Client, deps.Logger))
			authed.DELETE("/products/:id", handlers.HandleDeleteProduct(deps.Client, deps.Logger))

			authed.GET("/cart", handlers.HandleGetCart(deps.Logger))
			authed.POST("/cart/items", handlers.HandleAddCartItem(deps.Client, deps.Logger))
			authed.PUT("/cart/items/:productId", handlers.HandleUpdateCartItem(deps.Client, deps.Logger))
			authed.DELETE("/cart/items/:productId", handlers.HandleRemoveCartItem(deps.Logger))
			authed.DELETE("/cart", handlers.HandleClearCart(deps.Logger))

			authed.GET("/inventory", handlers.HandleListInventory(deps.Client, deps.Logger))
			authed.POST("/inventory", handlers.HandleCreateInventory(deps.Client, deps.Logger))
			authed.PUT("/inventory/:id", handlers.HandleUpdateInventory(deps.Client, deps.Logger))
			authed.DELETE("/inventory/clear", handlers.HandleClearInventory(deps.Client, deps.Logger))
			authed.GET("/inventory/report", handlers.HandleInventoryReport(deps.Client, deps.Logger))

			authed.GET("/tickets", handlers.HandleListTickets(deps.Client, deps.Logger))
			authed.GET("/tickets/:id", handlers.HandleGetTicket(deps.Client, deps.Logger))
			authed.GET("/tickets/:id/pdf", handlers.HandleTicketPDF(deps.Client, deps.Logger))

			authed.GET("/reports/sales", handlers.HandleSalesReport(deps.Reports, deps.Logger))
			authed.GET("/checkout/journal", handlers.HandleCheckoutJournal(deps.Repos, deps.Logger))

			authed.GET("/users", handlers.HandleListUsers(deps.Client, deps.Logger))
			authed.POST("/users", handlers.HandleCreateUser(deps.Client, deps.Logger))
			authed.PUT("/users/:id", handlers.HandleUpdateUser(deps.Client, deps.Logger))
			authed.DELETE("/users/:id", handlers.HandleDeleteUser(deps.Client, deps.Logger))

			// Checkout additionally identifies the physical terminal
			checkout := authed.Group("")
			checkout.Use(middleware.TerminalMiddleware(deps.Repos, deps.Logger))
			{
				checkout.POST("/checkout", handlers.HandleCheckout(deps.Checkouts, deps.Client, deps.Logger))
			}
		}
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
