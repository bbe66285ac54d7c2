package interfaces

import (
	"context"

	"github.com/theia-io/drivebetter-sub000/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)

	// FindDriverIDs returns the subset of ids that reference an existing
	// user carrying the driver capability.
	FindDriverIDs(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error)
}
