package interfaces

import (
	"context"
	"time"

	"github.com/theia-io/drivebetter-sub000/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ShareRepository interface {
	Create(ctx context.Context, share *models.RideShare) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.RideShare, error)
	GetByToken(ctx context.Context, token string) (*models.RideShare, error)
	GetActiveByRide(ctx context.Context, rideID primitive.ObjectID) ([]*models.RideShare, error)

	// MarkExpired transitions an active share to expired. The boolean
	// reports whether this call performed the transition; false with nil
	// error means the share was already out of the active state.
	MarkExpired(ctx context.Context, id primitive.ObjectID) (bool, error)

	// Close transitions an active share to closed (claim budget spent).
	Close(ctx context.Context, id primitive.ObjectID) (bool, error)

	// IncrementClaims bumps claims_count by one and returns the new count.
	IncrementClaims(ctx context.Context, id primitive.ObjectID) (int, error)

	// RevokeActiveByRide transitions every active share for the ride to
	// revoked, stamping revoked_at, and returns how many were transitioned.
	RevokeActiveByRide(ctx context.Context, rideID primitive.ObjectID, revokedAt time.Time) (int64, error)
}
