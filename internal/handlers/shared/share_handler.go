package handlers

import (
	"errors"
	"net/http"

	"github.com/theia-io/drivebetter-sub000/internal/services"
	"github.com/theia-io/drivebetter-sub000/internal/utils"
	"github.com/theia-io/drivebetter-sub000/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ShareHandler struct {
	shareService services.ShareService
	claimService services.ClaimService
}

func NewShareHandler(shareService services.ShareService, claimService services.ClaimService) *ShareHandler {
	return &ShareHandler{
		shareService: shareService,
		claimService: claimService,
	}
}

// CreateShare publishes a ride to a candidate pool
func (h *ShareHandler) CreateShare(c *gin.Context) {
	rideID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ride ID")
		return
	}

	var request validators.ShareCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	actorID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	summary, err := h.shareService.Create(c.Request.Context(), rideID, actorID, &request)
	if err != nil {
		respondShareError(c, err)
		return
	}

	utils.CreatedResponse(c, "Share created successfully", summary)
}

// ListRideShares returns the ride's active shares, newest first
func (h *ShareHandler) ListRideShares(c *gin.Context) {
	rideID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ride ID")
		return
	}

	summaries, err := h.shareService.ListActive(c.Request.Context(), rideID)
	if err != nil {
		respondShareError(c, err)
		return
	}

	if len(summaries) == 0 {
		utils.NotFoundResponse(c, "Active shares")
		return
	}

	utils.SuccessResponse(c, "Active shares retrieved successfully", map[string]interface{}{
		"shares": summaries,
	})
}

// RevokeRideShares revokes every active share for the ride. Revoking a
// ride with no active shares is a successful no-op.
func (h *ShareHandler) RevokeRideShares(c *gin.Context) {
	rideID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ride ID")
		return
	}

	count, err := h.shareService.RevokeAll(c.Request.Context(), rideID)
	if err != nil {
		respondShareError(c, err)
		return
	}

	utils.SuccessResponse(c, "Shares revoked", map[string]interface{}{
		"status":  "revoked",
		"revoked": count,
	})
}

// ResolveShare returns the share metadata plus a sanitized ride view to
// an authorized driver
func (h *ShareHandler) ResolveShare(c *gin.Context) {
	shareID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid share ID")
		return
	}

	driverID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	resolution, err := h.shareService.Resolve(c.Request.Context(), shareID, driverID)
	if err != nil {
		respondShareError(c, err)
		return
	}

	utils.SuccessResponse(c, "Share resolved successfully", resolution)
}

// ResolveShareByToken resolves a share through its access URL token
func (h *ShareHandler) ResolveShareByToken(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		utils.BadRequestResponse(c, "Invalid share token")
		return
	}

	driverID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	resolution, err := h.shareService.ResolveByToken(c.Request.Context(), token, driverID)
	if err != nil {
		respondShareError(c, err)
		return
	}

	utils.SuccessResponse(c, "Share resolved successfully", resolution)
}

// ClaimShare attempts to assign the shared ride to the calling driver
func (h *ShareHandler) ClaimShare(c *gin.Context) {
	shareID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid share ID")
		return
	}

	driverID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	result, err := h.claimService.Claim(c.Request.Context(), shareID, driverID)
	if err != nil {
		respondShareError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride claimed successfully", map[string]interface{}{
		"status":             "claimed",
		"ride_id":            result.RideID,
		"assigned_driver_id": result.AssignedDriverID,
	})
}

func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		return primitive.NilObjectID, false
	}

	id, ok := value.(primitive.ObjectID)
	return id, ok
}

// respondShareError maps the service error taxonomy onto HTTP responses.
func respondShareError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrShareNotFound):
		utils.NotFoundResponse(c, "Share")
	case errors.Is(err, services.ErrRideNotFound):
		utils.NotFoundResponse(c, "Ride")
	case errors.Is(err, services.ErrAccessDenied):
		utils.ForbiddenResponse(c)
	case errors.Is(err, services.ErrRideCompleted),
		errors.Is(err, services.ErrRideAlreadyAssigned),
		errors.Is(err, services.ErrMaxClaimsReached):
		utils.ConflictResponse(c, err.Error())
	case errors.Is(err, services.ErrInvalidShareTarget),
		errors.Is(err, services.ErrUnknownGroups),
		errors.Is(err, services.ErrUnknownDrivers),
		errors.Is(err, services.ErrInvalidDriver):
		utils.BadRequestResponse(c, err.Error())
	default:
		utils.ErrorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process share request")
	}
}
