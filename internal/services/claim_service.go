package services

import (
	"context"
	"errors"

	"github.com/theia-io/drivebetter-sub000/internal/repositories/interfaces"
	"github.com/theia-io/drivebetter-sub000/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClaimService resolves racing claims for a shared ride. Mutual exclusion
// of the successful outcome comes entirely from the conditional update in
// RideRepository.ClaimAssign; no in-process locking is involved, and no
// ordering among claimants is promised.
type ClaimService interface {
	Claim(ctx context.Context, shareID, driverID primitive.ObjectID) (*ClaimResult, error)
	QueueClaim(ctx context.Context, rideID, driverID primitive.ObjectID) (*QueueClaimResult, error)
}

type ClaimResult struct {
	RideID           primitive.ObjectID `json:"ride_id"`
	AssignedDriverID primitive.ObjectID `json:"assigned_driver_id"`
}

type QueueClaimResult struct {
	RideID        primitive.ObjectID `json:"ride_id"`
	QueuePosition int                `json:"queue_position"`
}

type claimService struct {
	shareRepo interfaces.ShareRepository
	rideRepo  interfaces.RideRepository
	userRepo  interfaces.UserRepository
	acl       ACLService
	logger    *logger.Logger
}

func NewClaimService(
	shareRepo interfaces.ShareRepository,
	rideRepo interfaces.RideRepository,
	userRepo interfaces.UserRepository,
	acl ACLService,
	log *logger.Logger,
) ClaimService {
	return &claimService{
		shareRepo: shareRepo,
		rideRepo:  rideRepo,
		userRepo:  userRepo,
		acl:       acl,
		logger:    log,
	}
}

// Claim runs the full claim sequence. Steps before the conditional ride
// update are pure validation with no partial effects; the conditional
// update is the single irreversible mutation; the claims-count bookkeeping
// after it is best effort and self-healing via the budget check on the
// next attempt.
func (s *claimService) Claim(ctx context.Context, shareID, driverID primitive.ObjectID) (*ClaimResult, error) {
	share, err := s.shareRepo.GetByID(ctx, shareID)
	if err != nil {
		return nil, mapNotFound(err, ErrShareNotFound)
	}

	if err := resolveShareStatus(ctx, s.shareRepo, share, s.logger); err != nil {
		return nil, err
	}

	allowed, err := s.acl.CanAccess(ctx, share, driverID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrAccessDenied
	}

	// Budget check. A share whose counter already reached the cap is
	// closed here; the counter may lag one claim behind when step-6
	// bookkeeping of a previous claim failed, which this check repairs.
	if share.MaxClaims != nil && share.ClaimsCount >= *share.MaxClaims {
		if _, err := s.shareRepo.Close(ctx, share.ID); err != nil {
			s.logger.WithShareID(share.ID).WithError(err).Warn("failed to close exhausted share")
		}
		return nil, ErrMaxClaimsReached
	}

	// The point of no return: exactly one concurrent claimant's
	// conditional update matches.
	ride, won, err := s.rideRepo.ClaimAssign(ctx, share.RideID, driverID)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, ErrRideAlreadyAssigned
	}

	// Bookkeeping after the ride committed. Failure here leaves the ride
	// correctly assigned; only counter/closing lag, caught on the next
	// claim's budget check.
	newCount, err := s.shareRepo.IncrementClaims(ctx, share.ID)
	if err != nil {
		s.logger.WithShareID(share.ID).WithError(err).Warn("ride assigned but claims count not incremented")
	} else if share.MaxClaims != nil && newCount >= *share.MaxClaims {
		if _, err := s.shareRepo.Close(ctx, share.ID); err != nil {
			s.logger.WithShareID(share.ID).WithError(err).Warn("failed to close share at claim budget")
		}
	}

	s.logger.WithRideID(ride.ID).WithShareID(share.ID).WithDriverID(driverID).Info("ride claimed")

	return &ClaimResult{
		RideID:           ride.ID,
		AssignedDriverID: driverID,
	}, nil
}

// QueueClaim appends the driver to the ride's interest queue without
// assigning anything. The add is an idempotent set-add, so there is no
// race hazard and repeated calls return the same position.
func (s *claimService) QueueClaim(ctx context.Context, rideID, driverID primitive.ObjectID) (*QueueClaimResult, error) {
	user, err := s.userRepo.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrInvalidDriver
		}
		return nil, err
	}
	if !user.IsDriver() {
		return nil, ErrInvalidDriver
	}

	if _, err := s.rideRepo.GetByID(ctx, rideID); err != nil {
		return nil, mapNotFound(err, ErrRideNotFound)
	}

	position, err := s.rideRepo.AddToQueue(ctx, rideID, driverID)
	if err != nil {
		return nil, err
	}

	return &QueueClaimResult{
		RideID:        rideID,
		QueuePosition: position,
	}, nil
}
