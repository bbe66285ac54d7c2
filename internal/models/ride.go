package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideStatus string

const (
	RideStatusUnassigned RideStatus = "unassigned"
	RideStatusAssigned   RideStatus = "assigned"
	RideStatusOnMyWay    RideStatus = "on_my_way"
	RideStatusOnLocation RideStatus = "on_location"
	RideStatusPOB        RideStatus = "pob"
	RideStatusClear      RideStatus = "clear"
)

// TerminalRideStatuses are statuses from which a ride can never be
// (re)assigned through a share claim.
var TerminalRideStatuses = []RideStatus{RideStatusClear}

type Ride struct {
	ID               primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	RideNumber       string              `json:"ride_number" bson:"ride_number"`
	CreatedByID      primitive.ObjectID  `json:"created_by_id" bson:"created_by_id" validate:"required"`
	Status           RideStatus          `json:"status" bson:"status" default:"unassigned"`
	AssignedDriverID *primitive.ObjectID `json:"assigned_driver_id" bson:"assigned_driver_id"`
	// Queue holds drivers that claimed or were added to this ride, in
	// insertion order. Position records interest history, not assignment
	// priority.
	Queue          []primitive.ObjectID `json:"queue" bson:"queue"`
	PickupAddress  string               `json:"pickup_address" bson:"pickup_address"`
	DropoffAddress string               `json:"dropoff_address" bson:"dropoff_address"`
	ScheduledTime  *time.Time           `json:"scheduled_time" bson:"scheduled_time"`
	PassengerName  string               `json:"passenger_name" bson:"passenger_name"`
	PassengerPhone string               `json:"passenger_phone" bson:"passenger_phone"`
	Notes          string               `json:"notes" bson:"notes"`
	AssignedAt     *time.Time           `json:"assigned_at" bson:"assigned_at"`
	ClearedAt      *time.Time           `json:"cleared_at" bson:"cleared_at"`
	CreatedAt      time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at" bson:"updated_at"`
}

// IsTerminal reports whether the ride is completed for sharing purposes.
func (r *Ride) IsTerminal() bool {
	for _, s := range TerminalRideStatuses {
		if r.Status == s {
			return true
		}
	}
	return false
}

// RideView is the sanitized ride representation returned to drivers
// resolving a share. Passenger contact details are withheld until the
// ride is actually claimed.
type RideView struct {
	ID             primitive.ObjectID `json:"id"`
	RideNumber     string             `json:"ride_number"`
	Status         RideStatus         `json:"status"`
	PickupAddress  string             `json:"pickup_address"`
	DropoffAddress string             `json:"dropoff_address"`
	ScheduledTime  *time.Time         `json:"scheduled_time"`
	Notes          string             `json:"notes"`
}

func (r *Ride) View() *RideView {
	return &RideView{
		ID:             r.ID,
		RideNumber:     r.RideNumber,
		Status:         r.Status,
		PickupAddress:  r.PickupAddress,
		DropoffAddress: r.DropoffAddress,
		ScheduledTime:  r.ScheduledTime,
		Notes:          r.Notes,
	}
}
