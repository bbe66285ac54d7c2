package models

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRideShareIsExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	unbounded := &RideShare{}
	if unbounded.IsExpired(now) {
		t.Error("share without a deadline must never expire")
	}

	expired := &RideShare{ExpiresAt: &past}
	if !expired.IsExpired(now) {
		t.Error("share past its deadline must be expired")
	}

	live := &RideShare{ExpiresAt: &future}
	if live.IsExpired(now) {
		t.Error("share before its deadline must not be expired")
	}
}

func TestRideShareRemainingClaims(t *testing.T) {
	unbounded := &RideShare{ClaimsCount: 5}
	if unbounded.RemainingClaims() != nil {
		t.Error("unbounded share must report nil remaining claims")
	}

	max := 3
	share := &RideShare{MaxClaims: &max, ClaimsCount: 1}
	if got := share.RemainingClaims(); got == nil || *got != 2 {
		t.Errorf("remaining = %v, want 2", got)
	}

	// The counter can overshoot the cap when bookkeeping lagged; remaining
	// clamps at zero.
	share.ClaimsCount = 4
	if got := share.RemainingClaims(); got == nil || *got != 0 {
		t.Errorf("overspent remaining = %v, want 0", got)
	}
}

func TestRideShareContainsDriver(t *testing.T) {
	target := primitive.NewObjectID()
	share := &RideShare{DriverIDs: []primitive.ObjectID{primitive.NewObjectID(), target}}

	if !share.ContainsDriver(target) {
		t.Error("targeted driver not found in share")
	}
	if share.ContainsDriver(primitive.NewObjectID()) {
		t.Error("untargeted driver reported as contained")
	}
}

func TestRideIsTerminal(t *testing.T) {
	for _, status := range []RideStatus{
		RideStatusUnassigned,
		RideStatusAssigned,
		RideStatusOnMyWay,
		RideStatusOnLocation,
		RideStatusPOB,
	} {
		ride := &Ride{Status: status}
		if ride.IsTerminal() {
			t.Errorf("status %s reported terminal", status)
		}
	}

	cleared := &Ride{Status: RideStatusClear}
	if !cleared.IsTerminal() {
		t.Error("cleared ride must be terminal")
	}
}

func TestRideViewOmitsPassengerContact(t *testing.T) {
	ride := &Ride{
		ID:             primitive.NewObjectID(),
		RideNumber:     "R-1001",
		Status:         RideStatusUnassigned,
		PickupAddress:  "12 Main St",
		DropoffAddress: "34 Oak Ave",
		PassengerName:  "Pat",
		PassengerPhone: "+15550100",
		Notes:          "2 bags",
	}

	view := ride.View()
	if view.ID != ride.ID || view.RideNumber != ride.RideNumber {
		t.Error("view lost ride identity fields")
	}
	if view.PickupAddress != ride.PickupAddress || view.DropoffAddress != ride.DropoffAddress {
		t.Error("view lost route fields")
	}
	if view.Notes != ride.Notes {
		t.Error("view lost notes")
	}
}
