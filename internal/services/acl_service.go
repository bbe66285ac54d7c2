package services

import (
	"context"
	"fmt"

	"github.com/theia-io/drivebetter-sub000/internal/models"
	"github.com/theia-io/drivebetter-sub000/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ACLService decides whether a driver may view or claim the ride behind a
// share. The check runs against current ground truth on every access (read
// and claim) and is deliberately uncached: group membership and target
// lists can change between calls.
type ACLService interface {
	CanAccess(ctx context.Context, share *models.RideShare, driverID primitive.ObjectID) (bool, error)
}

type aclService struct {
	groupRepo interfaces.GroupRepository
}

func NewACLService(groupRepo interfaces.GroupRepository) ACLService {
	return &aclService{
		groupRepo: groupRepo,
	}
}

func (s *aclService) CanAccess(ctx context.Context, share *models.RideShare, driverID primitive.ObjectID) (bool, error) {
	switch share.Visibility {
	case models.ShareVisibilityPublic:
		return true, nil

	case models.ShareVisibilityDrivers:
		return share.ContainsDriver(driverID), nil

	case models.ShareVisibilityGroups:
		if len(share.GroupIDs) == 0 {
			return false, nil
		}
		count, err := s.groupRepo.CountMemberships(ctx, share.GroupIDs, driverID)
		if err != nil {
			return false, fmt.Errorf("failed to evaluate group access: %w", err)
		}
		return count > 0, nil

	default:
		return false, fmt.Errorf("unknown share visibility %q", share.Visibility)
	}
}
