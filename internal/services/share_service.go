package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theia-io/drivebetter-sub000/internal/models"
	"github.com/theia-io/drivebetter-sub000/internal/repositories/interfaces"
	"github.com/theia-io/drivebetter-sub000/internal/utils"
	"github.com/theia-io/drivebetter-sub000/internal/validators"
	"github.com/theia-io/drivebetter-sub000/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ShareService manages the distribution-record lifecycle: creation with
// target validation, active listing, revocation, and driver-facing
// resolution. The claim path itself lives in ClaimService.
type ShareService interface {
	Create(ctx context.Context, rideID, actorID primitive.ObjectID, req *validators.ShareCreateRequest) (*models.ShareSummary, error)
	ListActive(ctx context.Context, rideID primitive.ObjectID) ([]*models.ShareSummary, error)
	RevokeAll(ctx context.Context, rideID primitive.ObjectID) (int64, error)
	Resolve(ctx context.Context, shareID, driverID primitive.ObjectID) (*ShareResolution, error)
	ResolveByToken(ctx context.Context, token string, driverID primitive.ObjectID) (*ShareResolution, error)
}

// ShareResolution is what an authorized driver sees when opening a share:
// the share metadata plus a sanitized ride view.
type ShareResolution struct {
	Share *models.ShareSummary `json:"share"`
	Ride  *models.RideView     `json:"ride"`
}

type shareService struct {
	shareRepo    interfaces.ShareRepository
	rideRepo     interfaces.RideRepository
	groupRepo    interfaces.GroupRepository
	userRepo     interfaces.UserRepository
	acl          ACLService
	notification NotificationService
	baseURL      string
	logger       *logger.Logger
}

func NewShareService(
	shareRepo interfaces.ShareRepository,
	rideRepo interfaces.RideRepository,
	groupRepo interfaces.GroupRepository,
	userRepo interfaces.UserRepository,
	acl ACLService,
	notification NotificationService,
	baseURL string,
	log *logger.Logger,
) ShareService {
	return &shareService{
		shareRepo:    shareRepo,
		rideRepo:     rideRepo,
		groupRepo:    groupRepo,
		userRepo:     userRepo,
		acl:          acl,
		notification: notification,
		baseURL:      strings.TrimRight(baseURL, "/"),
		logger:       log,
	}
}

func (s *shareService) Create(ctx context.Context, rideID, actorID primitive.ObjectID, req *validators.ShareCreateRequest) (*models.ShareSummary, error) {
	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, mapNotFound(err, ErrRideNotFound)
	}
	if ride.IsTerminal() {
		return nil, ErrRideCompleted
	}

	if err := validators.ValidateShareCreate(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidShareTarget, err.Error())
	}

	switch models.ShareVisibility(req.Visibility) {
	case models.ShareVisibilityGroups:
		if err := s.checkGroupsExist(ctx, req.GroupIDs); err != nil {
			return nil, err
		}
	case models.ShareVisibilityDrivers:
		if err := s.checkDriversExist(ctx, req.DriverIDs); err != nil {
			return nil, err
		}
	}

	token := utils.GenerateRandomString(utils.ShareTokenLength)
	share := &models.RideShare{
		RideID:      rideID,
		CreatedBy:   actorID,
		Visibility:  models.ShareVisibility(req.Visibility),
		GroupIDs:    req.GroupIDs,
		DriverIDs:   req.DriverIDs,
		ShareToken:  token,
		ShareURL:    fmt.Sprintf("%s/shares/token/%s", s.baseURL, token),
		Status:      models.ShareStatusActive,
		ExpiresAt:   req.ExpiresAt,
		MaxClaims:   req.MaxClaims,
		ClaimsCount: 0,
		SyncQueue:   req.SyncQueue,
		RevokedAt:   nil,
	}

	if err := s.shareRepo.Create(ctx, share); err != nil {
		return nil, err
	}

	// Targeted drivers are also merged into the ride queue so dispatchers
	// see them as interested parties. Merging (rather than overwriting)
	// keeps drivers from earlier shares in the queue.
	if share.SyncQueue && share.Visibility == models.ShareVisibilityDrivers {
		if err := s.rideRepo.MergeQueue(ctx, rideID, share.DriverIDs); err != nil {
			s.logger.WithRideID(rideID).WithError(err).Warn("failed to sync share targets into ride queue")
		}
	}

	s.notification.NotifyShareCreated(ctx, share)

	s.logger.WithRideID(rideID).WithShareID(share.ID).WithFields(map[string]interface{}{
		"visibility": share.Visibility,
		"actor_id":   actorID.Hex(),
	}).Info("ride share created")

	return share.Summary(), nil
}

func (s *shareService) ListActive(ctx context.Context, rideID primitive.ObjectID) ([]*models.ShareSummary, error) {
	shares, err := s.shareRepo.GetActiveByRide(ctx, rideID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	summaries := make([]*models.ShareSummary, 0, len(shares))
	for _, share := range shares {
		// Listing reconciles expiry lazily; a share whose deadline passed
		// is persisted as expired and dropped from the result.
		if share.IsExpired(now) {
			if _, err := s.shareRepo.MarkExpired(ctx, share.ID); err != nil {
				s.logger.WithShareID(share.ID).WithError(err).Warn("failed to persist share expiry")
			}
			continue
		}
		summaries = append(summaries, share.Summary())
	}

	return summaries, nil
}

func (s *shareService) RevokeAll(ctx context.Context, rideID primitive.ObjectID) (int64, error) {
	count, err := s.shareRepo.RevokeActiveByRide(ctx, rideID, time.Now())
	if err != nil {
		return 0, err
	}

	if count > 0 {
		s.logger.WithRideID(rideID).Infof("revoked %d active share(s)", count)
	}

	return count, nil
}

func (s *shareService) Resolve(ctx context.Context, shareID, driverID primitive.ObjectID) (*ShareResolution, error) {
	share, err := s.shareRepo.GetByID(ctx, shareID)
	if err != nil {
		return nil, mapNotFound(err, ErrShareNotFound)
	}

	return s.resolve(ctx, share, driverID)
}

func (s *shareService) ResolveByToken(ctx context.Context, token string, driverID primitive.ObjectID) (*ShareResolution, error) {
	share, err := s.shareRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, mapNotFound(err, ErrShareNotFound)
	}

	return s.resolve(ctx, share, driverID)
}

func (s *shareService) resolve(ctx context.Context, share *models.RideShare, driverID primitive.ObjectID) (*ShareResolution, error) {
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

	ride, err := s.rideRepo.GetByID(ctx, share.RideID)
	if err != nil {
		return nil, mapNotFound(err, ErrRideNotFound)
	}

	return &ShareResolution{
		Share: share.Summary(),
		Ride:  ride.View(),
	}, nil
}

func (s *shareService) checkGroupsExist(ctx context.Context, ids []primitive.ObjectID) error {
	found, err := s.groupRepo.FindExistingIDs(ctx, ids)
	if err != nil {
		return err
	}
	if missing := missingIDs(ids, found); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrUnknownGroups, joinIDs(missing))
	}
	return nil
}

func (s *shareService) checkDriversExist(ctx context.Context, ids []primitive.ObjectID) error {
	found, err := s.userRepo.FindDriverIDs(ctx, ids)
	if err != nil {
		return err
	}
	if missing := missingIDs(ids, found); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrUnknownDrivers, joinIDs(missing))
	}
	return nil
}

// resolveShareStatus applies access-time expiry and the uniform absent
// treatment of non-active shares. Every read and claim goes through this
// before touching anything else.
func resolveShareStatus(ctx context.Context, repo interfaces.ShareRepository, share *models.RideShare, log *logger.Logger) error {
	if share.Status == models.ShareStatusActive && share.IsExpired(time.Now()) {
		if _, err := repo.MarkExpired(ctx, share.ID); err != nil {
			log.WithShareID(share.ID).WithError(err).Warn("failed to persist share expiry")
		}
		share.Status = models.ShareStatusExpired
	}

	if share.Status != models.ShareStatusActive {
		return ErrShareNotFound
	}

	return nil
}

func missingIDs(wanted, found []primitive.ObjectID) []primitive.ObjectID {
	present := make(map[primitive.ObjectID]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}

	var missing []primitive.ObjectID
	for _, id := range wanted {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func joinIDs(ids []primitive.ObjectID) string {
	hex := make([]string, len(ids))
	for i, id := range ids {
		hex[i] = id.Hex()
	}
	return strings.Join(hex, ", ")
}
