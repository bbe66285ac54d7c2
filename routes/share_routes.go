package routes

import (
	handlers "github.com/theia-io/drivebetter-sub000/internal/handlers/shared"
	"github.com/theia-io/drivebetter-sub000/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupShareRoutes wires the share distribution and claim endpoints.
func SetupShareRoutes(r *gin.RouterGroup, shareHandler *handlers.ShareHandler, jwtSecret string, limiter *middleware.RateLimiter) {
	// Dispatcher-side share management
	rides := r.Group("/rides")
	rides.Use(middleware.AuthRequired(jwtSecret), middleware.DispatcherRequired())
	{
		rides.POST("/:id/shares", shareHandler.CreateShare)
		rides.GET("/:id/shares", shareHandler.ListRideShares)
		rides.DELETE("/:id/shares", shareHandler.RevokeRideShares)
	}

	// Driver-side resolution and claiming
	shares := r.Group("/shares")
	shares.Use(middleware.AuthRequired(jwtSecret), middleware.DriverRequired())
	{
		shares.GET("/:id", shareHandler.ResolveShare)
		shares.GET("/token/:token", shareHandler.ResolveShareByToken)
		shares.POST("/:id/claim", limiter.Limit("claim"), shareHandler.ClaimShare)
	}
}
