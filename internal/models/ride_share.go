package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ShareStatus string
type ShareVisibility string

const (
	ShareStatusActive  ShareStatus = "active"
	ShareStatusExpired ShareStatus = "expired"
	ShareStatusRevoked ShareStatus = "revoked"
	ShareStatusClosed  ShareStatus = "closed"

	ShareVisibilityPublic  ShareVisibility = "public"
	ShareVisibilityGroups  ShareVisibility = "groups"
	ShareVisibilityDrivers ShareVisibility = "drivers"
)

// RideShare is a distribution record controlling who may view and claim a
// ride. Status transitions active -> expired | revoked | closed; all three
// are terminal. Shares are never deleted, claim history is retained.
type RideShare struct {
	ID         primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	RideID     primitive.ObjectID   `json:"ride_id" bson:"ride_id" validate:"required"`
	CreatedBy  primitive.ObjectID   `json:"created_by" bson:"created_by" validate:"required"`
	Visibility ShareVisibility      `json:"visibility" bson:"visibility" validate:"required"`
	GroupIDs   []primitive.ObjectID `json:"group_ids" bson:"group_ids"`
	DriverIDs  []primitive.ObjectID `json:"driver_ids" bson:"driver_ids"`
	ShareToken string               `json:"share_token" bson:"share_token" validate:"required"`
	ShareURL   string               `json:"share_url" bson:"share_url" validate:"required"`
	Status     ShareStatus          `json:"status" bson:"status" default:"active"`
	ExpiresAt  *time.Time           `json:"expires_at" bson:"expires_at"`
	// MaxClaims caps successful claims; nil means unbounded.
	MaxClaims   *int       `json:"max_claims" bson:"max_claims"`
	ClaimsCount int        `json:"claims_count" bson:"claims_count" default:"0"`
	SyncQueue   bool       `json:"sync_queue" bson:"sync_queue" default:"false"`
	RevokedAt   *time.Time `json:"revoked_at" bson:"revoked_at"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
}

// IsExpired reports whether a time-bounded share's deadline has passed.
// Expiry is observed lazily at access time, never swept in the background.
func (s *RideShare) IsExpired(now time.Time) bool {
	return s.ExpiresAt != nil && now.After(*s.ExpiresAt)
}

// RemainingClaims returns the number of successful claims still allowed,
// or nil when the share is unbounded.
func (s *RideShare) RemainingClaims() *int {
	if s.MaxClaims == nil {
		return nil
	}
	remaining := *s.MaxClaims - s.ClaimsCount
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}

func (s *RideShare) ContainsDriver(driverID primitive.ObjectID) bool {
	for _, id := range s.DriverIDs {
		if id == driverID {
			return true
		}
	}
	return false
}

// ShareSummary is the caller-facing projection returned by share
// creation and listing.
type ShareSummary struct {
	ID          primitive.ObjectID `json:"id"`
	RideID      primitive.ObjectID `json:"ride_id"`
	Visibility  ShareVisibility    `json:"visibility"`
	ShareURL    string             `json:"share_url"`
	Status      ShareStatus        `json:"status"`
	ExpiresAt   *time.Time         `json:"expires_at"`
	MaxClaims   *int               `json:"max_claims"`
	ClaimsCount int                `json:"claims_count"`
	Remaining   *int               `json:"remaining_claims"`
	CreatedAt   time.Time          `json:"created_at"`
}

func (s *RideShare) Summary() *ShareSummary {
	return &ShareSummary{
		ID:          s.ID,
		RideID:      s.RideID,
		Visibility:  s.Visibility,
		ShareURL:    s.ShareURL,
		Status:      s.Status,
		ExpiresAt:   s.ExpiresAt,
		MaxClaims:   s.MaxClaims,
		ClaimsCount: s.ClaimsCount,
		Remaining:   s.RemainingClaims(),
		CreatedAt:   s.CreatedAt,
	}
}
