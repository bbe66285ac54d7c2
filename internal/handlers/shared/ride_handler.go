package handlers

import (
	"github.com/theia-io/drivebetter-sub000/internal/models"
	"github.com/theia-io/drivebetter-sub000/internal/services"
	"github.com/theia-io/drivebetter-sub000/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideHandler struct {
	claimService services.ClaimService
	rideService  services.RideService
}

func NewRideHandler(claimService services.ClaimService, rideService services.RideService) *RideHandler {
	return &RideHandler{
		claimService: claimService,
		rideService:  rideService,
	}
}

// QueueClaim appends the calling driver to the ride's interest queue and
// returns its 1-based position. The queue records interest for dispatcher
// visibility; it does not assign the ride.
func (h *RideHandler) QueueClaim(c *gin.Context) {
	rideID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ride ID")
		return
	}

	driverID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	result, err := h.claimService.QueueClaim(c.Request.Context(), rideID, driverID)
	if err != nil {
		respondShareError(c, err)
		return
	}

	utils.SuccessResponse(c, "Added to ride queue", map[string]interface{}{
		"ok":             true,
		"queue_position": result.QueuePosition,
	})
}

// ListUnassignedRides lists rides still waiting for a driver
func (h *RideHandler) ListUnassignedRides(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	rides, total, err := h.rideService.ListByStatus(c.Request.Context(), models.RideStatusUnassigned, params)
	if err != nil {
		respondShareError(c, err)
		return
	}

	meta := &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	}

	utils.SuccessResponseWithMeta(c, "Rides retrieved successfully", map[string]interface{}{
		"rides": rides,
	}, meta)
}
