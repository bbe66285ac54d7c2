package routes

import (
	handlers "github.com/theia-io/drivebetter-sub000/internal/handlers/shared"
	"github.com/theia-io/drivebetter-sub000/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRideRoutes wires the ride endpoints that belong to the
// distribution core: the driver interest queue and the unassigned list.
func SetupRideRoutes(r *gin.RouterGroup, rideHandler *handlers.RideHandler, jwtSecret string, limiter *middleware.RateLimiter) {
	rides := r.Group("/rides")
	rides.Use(middleware.AuthRequired(jwtSecret), middleware.DriverRequired())
	{
		rides.POST("/:id/claim", limiter.Limit("queue_claim"), rideHandler.QueueClaim)
		rides.GET("/unassigned", rideHandler.ListUnassignedRides)
	}
}
