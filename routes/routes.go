package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"roamly/handlers"
	"roamly/middleware"
	"roamly/utils"
)

// RegisterCheckoutRoutes registers the cart checkout endpoint.
func RegisterCheckoutRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/checkout")
	{
		api.POST("", hb.Checkout.Checkout)
	}
}

// RegisterBookingRoutes registers booking lookup and lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.GET("", hb.Booking.List)
		api.GET("/:id", hb.Booking.Get)
		api.POST("/:id/cancel", hb.Booking.Cancel)
		api.POST("/:id/no-show", hb.Booking.NoShow)
		api.POST("/:id/review", hb.Booking.AttachReview)
		api.POST("/:id/messages", hb.Booking.AppendCommunication)
	}
}

// RegisterPaymentRoutes registers the gateway webhook endpoint.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/payments")
	{
		api.POST("/webhook", hb.Webhook.Handle)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.Health)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(utils.ErrorHandler())
	r.Use(middleware.RateLimitMiddleware())

	RegisterHealthRoute(r)
	RegisterCheckoutRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
}
