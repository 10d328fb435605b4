package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cisnerospos/posgw/internal/api/middleware"
	"github.com/cisnerospos/posgw/internal/backend"
)

// HandleListTickets handles GET /v1/tickets
func HandleListTickets(client *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		sales, err := client.ListTickets(c.Request.Context(), sess.BackendToken)
		if err != nil {
			respondError(c, err)
			return
		}

		tickets := make([]TicketResponse, 0, len(sales))
		for _, sale := range sales {
			tickets = append(tickets, toTicketResponse(sale))
		}
		c.JSON(http.StatusOK, gin.H{"tickets": tickets, "count": len(tickets)})
	}
}

// HandleGetTicket handles GET /v1/tickets/:id
func HandleGetTicket(client *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		sale, err := client.GetTicket(c.Request.Context(), sess.BackendToken, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, toTicketResponse(*sale))
	}
}

// HandleTicketPDF handles GET /v1/tickets/:id/pdf. The backend renders
// the ticket PDF; the gateway redirects the browser to it.
func HandleTicketPDF(client *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		sale, err := client.GetTicket(c.Request.Context(), sess.BackendToken, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		c.Redirect(http.StatusFound, client.TicketPDFURL(sale))
	}
}
