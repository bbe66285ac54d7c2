package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/theia-io/drivebetter-sub000/internal/models"
	"github.com/theia-io/drivebetter-sub000/internal/repositories/interfaces"
	"github.com/theia-io/drivebetter-sub000/internal/utils"
	"github.com/theia-io/drivebetter-sub000/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errFakeNotFound = fmt.Errorf("record %w", interfaces.ErrNotFound)

func newTestLogger() *logger.Logger {
	log, _ := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: "text"})
	log.SetOutput(io.Discard)
	return log
}

// fakeRideRepo mirrors the conditional-update semantics of the Mongo
// implementation under a mutex so claim races behave the same way.
type fakeRideRepo struct {
	mu    sync.Mutex
	rides map[primitive.ObjectID]*models.Ride
	// getErr, when set, makes reads fail as if the store were unreachable.
	getErr error
}

func newFakeRideRepo() *fakeRideRepo {
	return &fakeRideRepo{rides: make(map[primitive.ObjectID]*models.Ride)}
}

func (r *fakeRideRepo) Create(ctx context.Context, ride *models.Ride) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ride.ID.IsZero() {
		ride.ID = primitive.NewObjectID()
	}
	ride.CreatedAt = time.Now()
	r.rides[ride.ID] = ride
	return nil
}

func (r *fakeRideRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	ride, ok := r.rides[id]
	if !ok {
		return nil, errFakeNotFound
	}
	copied := *ride
	return &copied, nil
}

func (r *fakeRideRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return nil
}

func (r *fakeRideRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.RideStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ride, ok := r.rides[id]
	if !ok {
		return errFakeNotFound
	}
	ride.Status = status
	return nil
}

func (r *fakeRideRepo) ClaimAssign(ctx context.Context, rideID, driverID primitive.ObjectID) (*models.Ride, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ride, ok := r.rides[rideID]
	if !ok {
		return nil, false, nil
	}
	if ride.AssignedDriverID != nil || ride.IsTerminal() {
		return nil, false, nil
	}
	now := time.Now()
	ride.AssignedDriverID = &driverID
	ride.Status = models.RideStatusAssigned
	ride.AssignedAt = &now
	ride.UpdatedAt = now
	if !containsID(ride.Queue, driverID) {
		ride.Queue = append(ride.Queue, driverID)
	}
	copied := *ride
	return &copied, true, nil
}

func (r *fakeRideRepo) AddToQueue(ctx context.Context, rideID, driverID primitive.ObjectID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ride, ok := r.rides[rideID]
	if !ok {
		return 0, errFakeNotFound
	}
	for i, id := range ride.Queue {
		if id == driverID {
			return i + 1, nil
		}
	}
	ride.Queue = append(ride.Queue, driverID)
	return len(ride.Queue), nil
}

func (r *fakeRideRepo) MergeQueue(ctx context.Context, rideID primitive.ObjectID, driverIDs []primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ride, ok := r.rides[rideID]
	if !ok {
		return errFakeNotFound
	}
	for _, id := range driverIDs {
		if !containsID(ride.Queue, id) {
			ride.Queue = append(ride.Queue, id)
		}
	}
	return nil
}

func (r *fakeRideRepo) GetByStatus(ctx context.Context, status models.RideStatus, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Ride
	for _, ride := range r.rides {
		if ride.Status == status {
			copied := *ride
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeRideRepo) GetByDriver(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Ride
	for _, ride := range r.rides {
		if ride.AssignedDriverID != nil && *ride.AssignedDriverID == driverID {
			copied := *ride
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

type fakeShareRepo struct {
	mu     sync.Mutex
	shares map[primitive.ObjectID]*models.RideShare
	getErr error
}

func newFakeShareRepo() *fakeShareRepo {
	return &fakeShareRepo{shares: make(map[primitive.ObjectID]*models.RideShare)}
}

func (r *fakeShareRepo) Create(ctx context.Context, share *models.RideShare) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if share.ID.IsZero() {
		share.ID = primitive.NewObjectID()
	}
	share.CreatedAt = time.Now()
	share.UpdatedAt = share.CreatedAt
	r.shares[share.ID] = share
	return nil
}

func (r *fakeShareRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.RideShare, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	share, ok := r.shares[id]
	if !ok {
		return nil, errFakeNotFound
	}
	copied := *share
	return &copied, nil
}

func (r *fakeShareRepo) GetByToken(ctx context.Context, token string) (*models.RideShare, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	for _, share := range r.shares {
		if share.ShareToken == token {
			copied := *share
			return &copied, nil
		}
	}
	return nil, errFakeNotFound
}

func (r *fakeShareRepo) GetActiveByRide(ctx context.Context, rideID primitive.ObjectID) ([]*models.RideShare, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.RideShare
	for _, share := range r.shares {
		if share.RideID == rideID && share.Status == models.ShareStatusActive {
			copied := *share
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeShareRepo) MarkExpired(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return r.transition(id, models.ShareStatusExpired, nil)
}

func (r *fakeShareRepo) Close(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return r.transition(id, models.ShareStatusClosed, nil)
}

func (r *fakeShareRepo) transition(id primitive.ObjectID, to models.ShareStatus, revokedAt *time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	share, ok := r.shares[id]
	if !ok || share.Status != models.ShareStatusActive {
		return false, nil
	}
	share.Status = to
	share.RevokedAt = revokedAt
	share.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeShareRepo) IncrementClaims(ctx context.Context, id primitive.ObjectID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	share, ok := r.shares[id]
	if !ok {
		return 0, errFakeNotFound
	}
	share.ClaimsCount++
	return share.ClaimsCount, nil
}

func (r *fakeShareRepo) RevokeActiveByRide(ctx context.Context, rideID primitive.ObjectID, revokedAt time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, share := range r.shares {
		if share.RideID == rideID && share.Status == models.ShareStatusActive {
			share.Status = models.ShareStatusRevoked
			share.RevokedAt = &revokedAt
			share.UpdatedAt = time.Now()
			count++
		}
	}
	return count, nil
}

// fakeGroupRepo holds group existence and membership as plain sets.
type fakeGroupRepo struct {
	mu      sync.Mutex
	groups  map[primitive.ObjectID]struct{}
	members map[primitive.ObjectID]map[primitive.ObjectID]struct{}
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{
		groups:  make(map[primitive.ObjectID]struct{}),
		members: make(map[primitive.ObjectID]map[primitive.ObjectID]struct{}),
	}
}

func (r *fakeGroupRepo) addGroup(id primitive.ObjectID, memberIDs ...primitive.ObjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[id] = struct{}{}
	if r.members[id] == nil {
		r.members[id] = make(map[primitive.ObjectID]struct{})
	}
	for _, m := range memberIDs {
		r.members[id][m] = struct{}{}
	}
}

func (r *fakeGroupRepo) FindExistingIDs(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []primitive.ObjectID
	for _, id := range ids {
		if _, ok := r.groups[id]; ok {
			found = append(found, id)
		}
	}
	return found, nil
}

func (r *fakeGroupRepo) CountMemberships(ctx context.Context, groupIDs []primitive.ObjectID, userID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, gid := range groupIDs {
		if _, ok := r.members[gid][userID]; ok {
			count++
		}
	}
	return count, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *fakeUserRepo) addUser(userType models.UserType, roles ...models.UserType) primitive.ObjectID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := primitive.NewObjectID()
	r.users[id] = &models.User{ID: id, UserType: userType, Roles: roles}
	return id
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, errFakeNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) FindDriverIDs(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []primitive.ObjectID
	for _, id := range ids {
		if user, ok := r.users[id]; ok && user.IsDriver() {
			found = append(found, id)
		}
	}
	return found, nil
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
