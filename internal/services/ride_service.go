package services

import (
	"context"

	"github.com/theia-io/drivebetter-sub000/internal/models"
	"github.com/theia-io/drivebetter-sub000/internal/repositories/interfaces"
	"github.com/theia-io/drivebetter-sub000/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RideService covers the ride reads the distribution subsystem needs;
// full ride CRUD lives with the dispatch endpoints outside this core.
type RideService interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error)
	ListByStatus(ctx context.Context, status models.RideStatus, params *utils.PaginationParams) ([]*models.Ride, int64, error)
}

type rideService struct {
	rideRepo interfaces.RideRepository
}

func NewRideService(rideRepo interfaces.RideRepository) RideService {
	return &rideService{
		rideRepo: rideRepo,
	}
}

func (s *rideService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	ride, err := s.rideRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrRideNotFound)
	}
	return ride, nil
}

func (s *rideService) ListByStatus(ctx context.Context, status models.RideStatus, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	return s.rideRepo.GetByStatus(ctx, status, params)
}
