package routes

import (
	"net/http"
	"time"

	"staybridge/handlers"
	"staybridge/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterFlowRoutes registers the booking flow endpoints. Every route
// requires an authenticated caller; ownership is enforced in the service.
func RegisterFlowRoutes(r *gin.Engine) {
	flows := r.Group("/api/flows")
	{
		flows.Use(middleware.AuthMiddleware())
		flows.POST("", handlers.StartFlow)
		flows.GET("", handlers.ListFlows)
		flows.GET("/:id", handlers.GetFlow)
		flows.GET("/:id/booking", handlers.GetBookingDetails)

		flows.POST("/:id/select", handlers.SelectOffer)
		flows.POST("/:id/block", handlers.BlockRoom)
		flows.POST("/:id/save", handlers.SaveBooking)
		flows.POST("/:id/price", handlers.PriceFlow)
		flows.POST("/:id/preauth", handlers.PreauthFlow)
		flows.POST("/:id/confirm", handlers.ConfirmFlow)
		flows.POST("/:id/cancel-quote", handlers.CancelQuoteFlow)
		flows.POST("/:id/cancel", handlers.CancelFlow)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Staybridge"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware())

	RegisterHealthRoute(r)
	RegisterFlowRoutes(r)
}
