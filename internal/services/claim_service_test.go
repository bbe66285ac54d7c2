package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/theia-io/drivebetter-sub000/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type claimFixture struct {
	rides  *fakeRideRepo
	shares *fakeShareRepo
	groups *fakeGroupRepo
	users  *fakeUserRepo
	claims ClaimService
}

func newClaimFixture(t *testing.T) *claimFixture {
	t.Helper()
	rides := newFakeRideRepo()
	shares := newFakeShareRepo()
	groups := newFakeGroupRepo()
	users := newFakeUserRepo()
	log := newTestLogger()
	acl := NewACLService(groups)
	return &claimFixture{
		rides:  rides,
		shares: shares,
		groups: groups,
		users:  users,
		claims: NewClaimService(shares, rides, users, acl, log),
	}
}

func (f *claimFixture) addRide(t *testing.T, status models.RideStatus) *models.Ride {
	t.Helper()
	ride := &models.Ride{
		CreatedByID:    primitive.NewObjectID(),
		Status:         status,
		PickupAddress:  "12 Main St",
		DropoffAddress: "34 Oak Ave",
	}
	if err := f.rides.Create(context.Background(), ride); err != nil {
		t.Fatalf("create ride: %v", err)
	}
	return ride
}

func (f *claimFixture) addShare(t *testing.T, rideID primitive.ObjectID, mutate func(*models.RideShare)) *models.RideShare {
	t.Helper()
	share := &models.RideShare{
		RideID:     rideID,
		CreatedBy:  primitive.NewObjectID(),
		Visibility: models.ShareVisibilityPublic,
		ShareToken: primitive.NewObjectID().Hex(),
		Status:     models.ShareStatusActive,
	}
	if mutate != nil {
		mutate(share)
	}
	if err := f.shares.Create(context.Background(), share); err != nil {
		t.Fatalf("create share: %v", err)
	}
	return share
}

func TestClaimAssignsRideToCaller(t *testing.T) {
	f := newClaimFixture(t)
	ride := f.addRide(t, models.RideStatusUnassigned)
	share := f.addShare(t, ride.ID, nil)
	driverID := f.users.addUser(models.UserTypeDriver)

	result, err := f.claims.Claim(context.Background(), share.ID, driverID)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if result.RideID != ride.ID {
		t.Errorf("result.RideID = %s, want %s", result.RideID.Hex(), ride.ID.Hex())
	}
	if result.AssignedDriverID != driverID {
		t.Errorf("result.AssignedDriverID = %s, want %s", result.AssignedDriverID.Hex(), driverID.Hex())
	}

	stored, err := f.rides.GetByID(context.Background(), ride.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != models.RideStatusAssigned {
		t.Errorf("ride status = %s, want %s", stored.Status, models.RideStatusAssigned)
	}
	if stored.AssignedDriverID == nil || *stored.AssignedDriverID != driverID {
		t.Error("ride not assigned to claiming driver")
	}
	if !containsID(stored.Queue, driverID) {
		t.Error("claiming driver not recorded in ride queue")
	}
}

func TestClaimExactlyOneWinner(t *testing.T) {
	f := newClaimFixture(t)
	ride := f.addRide(t, models.RideStatusUnassigned)
	share := f.addShare(t, ride.ID, nil)

	const claimants = 32
	drivers := make([]primitive.ObjectID, claimants)
	for i := range drivers {
		drivers[i] = f.users.addUser(models.UserTypeDriver)
	}

	var wg sync.WaitGroup
	errs := make([]error, claimants)
	start := make(chan struct{})

	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.claims.Claim(context.Background(), share.ID, drivers[i])
		}(i)
	}
	close(start)
	wg.Wait()

	var winners int
	for i, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, ErrRideAlreadyAssigned):
		default:
			t.Errorf("claimant %d: unexpected error %v", i, err)
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}

	stored, err := f.rides.GetByID(context.Background(), ride.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.AssignedDriverID == nil {
		t.Fatal("ride left unassigned after winning claim")
	}
}

func TestClaimSecondAttemptConflicts(t *testing.T) {
	f := newClaimFixture(t)
	ride := f.addRide(t, models.RideStatusUnassigned)
	share := f.addShare(t, ride.ID, nil)
	first := f.users.addUser(models.UserTypeDriver)
	second := f.users.addUser(models.UserTypeDriver)

	if _, err := f.claims.Claim(context.Background(), share.ID, first); err != nil {
		t.Fatalf("first Claim: %v", err)
	}
	if _, err := f.claims.Claim(context.Background(), share.ID, second); !errors.Is(err, ErrRideAlreadyAssigned) {
		t.Fatalf("second Claim error = %v, want ErrRideAlreadyAssigned", err)
	}

	stored, _ := f.rides.GetByID(context.Background(), ride.ID)
	if *stored.AssignedDriverID != first {
		t.Error("losing claim overwrote the original assignment")
	}
}

func TestClaimTerminalRideConflicts(t *testing.T) {
	f := newClaimFixture(t)
	ride := f.addRide(t, models.RideStatusClear)
	share := f.addShare(t, ride.ID, nil)
	driverID := f.users.addUser(models.UserTypeDriver)

	if _, err := f.claims.Claim(context.Background(), share.ID, driverID); !errors.Is(err, ErrRideAlreadyAssigned) {
		t.Fatalf("error = %v, want ErrRideAlreadyAssigned", err)
	}
}

func TestClaimUnknownShare(t *testing.T) {
	f := newClaimFixture(t)
	driverID := f.users.addUser(models.UserTypeDriver)

	if _, err := f.claims.Claim(context.Background(), primitive.NewObjectID(), driverID); !errors.Is(err, ErrShareNotFound) {
		t.Fatalf("error = %v, want ErrShareNotFound", err)
	}
}

func TestClaimExpiredSharePersistsExpiry(t *testing.T) {
	f := newClaimFixture(t)
	ride := f.addRide(t, models.RideStatusUnassigned)
	past := time.Now().Add(-time.Hour)
	share := f.addShare(t, ride.ID, func(s *models.RideShare) {
		s.ExpiresAt = &past
	})
	driverID := f.users.addUser(models.UserTypeDriver)

	if _, err := f.claims.Claim(context.Background(), share.ID, driverID); !errors.Is(err, ErrShareNotFound) {
		t.Fatalf("error = %v, want ErrShareNotFound", err)
	}

	stored, _ := f.shares.GetByID(context.Background(), share.ID)
	if stored.Status != models.ShareStatusExpired {
		t.Errorf("share status = %s, want %s", stored.Status, models.ShareStatusExpired)
	}

	// Repeat access stays indistinguishable from absence.
	if _, err := f.claims.Claim(context.Background(), share.ID, driverID); !errors.Is(err, ErrShareNotFound) {
		t.Fatalf("repeat error = %v, want ErrShareNotFound", err)
	}
}

func TestClaimRevokedShare(t *testing.T) {
	f := newClaimFixture(t)
	ride := f.addRide(t, models.RideStatusUnassigned)
	now := time.Now()
	share := f.addShare(t, ride.ID, func(s *models.RideShare) {
		s.Status = models.ShareStatusRevoked
		s.RevokedAt = &now
	})
	driverID := f.users.addUser(models.UserTypeDriver)

	if _, err := f.claims.Claim(context.Background(), share.ID, driverID); !errors.Is(err, ErrShareNotFound) {
		t.Fatalf("error = %v, want ErrShareNotFound", err)
	}
}

func TestClaimDriverListACL(t *testing.T) {
	f := newClaimFixture(t)
	ride := f.addRide(t, models.RideStatusUnassigned)
	allowed := f.users.addUser(models.UserTypeDriver)
	outsider := f.users.addUser(models.UserTypeDriver)
	share := f.addShare(t, ride.ID, func(s *models.RideShare) {
		s.Visibility = models.ShareVisibilityDrivers
		s.DriverIDs = []primitive.ObjectID{allowed}
	})

	if _, err := f.claims.Claim(context.Background(), share.ID, outsider); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("outsider error = %v, want ErrAccessDenied", err)
	}
	if _, err := f.claims.Claim(context.Background(), share.ID, allowed); err != nil {
		t.Fatalf("allowed driver Claim: %v", err)
	}
}

func TestClaimGroupACL(t *testing.T) {
	f := newClaimFixture(t)
	ride := f.addRide(t, models.RideStatusUnassigned)
	member := f.users.addUser(models.UserTypeDriver)
	outsider := f.users.addUser(models.UserTypeDriver)
	groupID := primitive.NewObjectID()
	f.groups.addGroup(groupID, member)
	share := f.addShare(t, ride.ID, func(s *models.RideShare) {
		s.Visibility = models.ShareVisibilityGroups
		s.GroupIDs = []primitive.ObjectID{groupID}
	})

	if _, err := f.claims.Claim(context.Background(), share.ID, outsider); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("outsider error = %v, want ErrAccessDenied", err)
	}
	if _, err := f.claims.Claim(context.Background(), share.ID, member); err != nil {
		t.Fatalf("member Claim: %v", err)
	}
}

func TestClaimBudgetExhaustedClosesShare(t *testing.T) {
	f := newClaimFixture(t)
	ride := f.addRide(t, models.RideStatusUnassigned)
	max := 2
	share := f.addShare(t, ride.ID, func(s *models.RideShare) {
		s.MaxClaims = &max
		s.ClaimsCount = 2
	})
	driverID := f.users.addUser(models.UserTypeDriver)

	if _, err := f.claims.Claim(context.Background(), share.ID, driverID); !errors.Is(err, ErrMaxClaimsReached) {
		t.Fatalf("error = %v, want ErrMaxClaimsReached", err)
	}

	stored, _ := f.shares.GetByID(context.Background(), share.ID)
	if stored.Status != models.ShareStatusClosed {
		t.Errorf("share status = %s, want %s", stored.Status, models.ShareStatusClosed)
	}
}

func TestClaimClosesShareWhenBudgetSpent(t *testing.T) {
	f := newClaimFixture(t)
	ride := f.addRide(t, models.RideStatusUnassigned)
	max := 1
	share := f.addShare(t, ride.ID, func(s *models.RideShare) {
		s.MaxClaims = &max
	})
	driverID := f.users.addUser(models.UserTypeDriver)

	if _, err := f.claims.Claim(context.Background(), share.ID, driverID); err != nil {
		t.Fatalf("Claim: %v", err)
	}

	stored, _ := f.shares.GetByID(context.Background(), share.ID)
	if stored.ClaimsCount != 1 {
		t.Errorf("claims count = %d, want 1", stored.ClaimsCount)
	}
	if stored.Status != models.ShareStatusClosed {
		t.Errorf("share status = %s, want %s", stored.Status, models.ShareStatusClosed)
	}
}

func TestQueueClaimAppendsOnce(t *testing.T) {
	f := newClaimFixture(t)
	ride := f.addRide(t, models.RideStatusUnassigned)
	first := f.users.addUser(models.UserTypeDriver)
	second := f.users.addUser(models.UserTypeDispatcher, models.UserTypeDriver)

	result, err := f.claims.QueueClaim(context.Background(), ride.ID, first)
	if err != nil {
		t.Fatalf("QueueClaim: %v", err)
	}
	if result.QueuePosition != 1 {
		t.Errorf("position = %d, want 1", result.QueuePosition)
	}

	// Repeating is a no-op returning the same position.
	result, err = f.claims.QueueClaim(context.Background(), ride.ID, first)
	if err != nil {
		t.Fatalf("repeat QueueClaim: %v", err)
	}
	if result.QueuePosition != 1 {
		t.Errorf("repeat position = %d, want 1", result.QueuePosition)
	}

	// A dispatcher with the driver role queues like any driver.
	result, err = f.claims.QueueClaim(context.Background(), ride.ID, second)
	if err != nil {
		t.Fatalf("dual-role QueueClaim: %v", err)
	}
	if result.QueuePosition != 2 {
		t.Errorf("second position = %d, want 2", result.QueuePosition)
	}
}

func TestQueueClaimRejectsNonDrivers(t *testing.T) {
	f := newClaimFixture(t)
	ride := f.addRide(t, models.RideStatusUnassigned)
	dispatcher := f.users.addUser(models.UserTypeDispatcher)

	if _, err := f.claims.QueueClaim(context.Background(), ride.ID, dispatcher); !errors.Is(err, ErrInvalidDriver) {
		t.Fatalf("dispatcher error = %v, want ErrInvalidDriver", err)
	}
	if _, err := f.claims.QueueClaim(context.Background(), ride.ID, primitive.NewObjectID()); !errors.Is(err, ErrInvalidDriver) {
		t.Fatalf("unknown user error = %v, want ErrInvalidDriver", err)
	}
}

func TestClaimStoreFailureIsNotAbsence(t *testing.T) {
	f := newClaimFixture(t)
	ride := f.addRide(t, models.RideStatusUnassigned)
	share := f.addShare(t, ride.ID, nil)
	driverID := f.users.addUser(models.UserTypeDriver)

	storeErr := errors.New("connection reset")
	f.shares.getErr = storeErr

	_, err := f.claims.Claim(context.Background(), share.ID, driverID)
	if !errors.Is(err, storeErr) {
		t.Fatalf("error = %v, want the store failure passed through", err)
	}
	if errors.Is(err, ErrShareNotFound) {
		t.Fatal("store failure reported as a missing share")
	}
}

func TestQueueClaimUnknownRide(t *testing.T) {
	f := newClaimFixture(t)
	driverID := f.users.addUser(models.UserTypeDriver)

	if _, err := f.claims.QueueClaim(context.Background(), primitive.NewObjectID(), driverID); !errors.Is(err, ErrRideNotFound) {
		t.Fatalf("error = %v, want ErrRideNotFound", err)
	}
}
