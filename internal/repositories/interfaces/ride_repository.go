package interfaces

import (
	"context"

	"github.com/theia-io/drivebetter-sub000/internal/models"
	"github.com/theia-io/drivebetter-sub000/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, ride *models.Ride) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	// Status operations
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.RideStatus) error

	// ClaimAssign atomically assigns the ride to driverID, but only while
	// the ride has no assigned driver and is not in a terminal status. The
	// boolean reports whether this call won the assignment; a false result
	// with nil error means another writer got there first (or the ride
	// closed). This is the single conditional-update gate all share claims
	// go through.
	ClaimAssign(ctx context.Context, rideID, driverID primitive.ObjectID) (*models.Ride, bool, error)

	// Queue operations
	AddToQueue(ctx context.Context, rideID, driverID primitive.ObjectID) (int, error)
	MergeQueue(ctx context.Context, rideID primitive.ObjectID, driverIDs []primitive.ObjectID) error

	// Search and filtering
	GetByStatus(ctx context.Context, status models.RideStatus, params *utils.PaginationParams) ([]*models.Ride, int64, error)
	GetByDriver(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Ride, int64, error)
}
