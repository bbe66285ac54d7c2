package validators

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ShareCreateRequest struct {
	Visibility string               `json:"visibility" validate:"required,oneof=public groups drivers"`
	GroupIDs   []primitive.ObjectID `json:"group_ids" validate:"omitempty,max=50"`
	DriverIDs  []primitive.ObjectID `json:"driver_ids" validate:"omitempty,max=100"`
	ExpiresAt  *time.Time           `json:"expires_at"`
	MaxClaims  *int                 `json:"max_claims" validate:"omitempty,min=1"`
	SyncQueue  bool                 `json:"sync_queue"`
}

// ValidateShareCreate checks field shapes plus the visibility/target
// pairing invariant: groups visibility requires group IDs and nothing
// else, drivers requires driver IDs and nothing else, public requires
// neither.
func ValidateShareCreate(req *ShareCreateRequest) error {
	if errs := ValidateStruct(req); len(errs) > 0 {
		return errs
	}

	switch req.Visibility {
	case "public":
		if len(req.GroupIDs) > 0 || len(req.DriverIDs) > 0 {
			return errors.New("public shares must not carry group or driver targets")
		}
	case "groups":
		if len(req.GroupIDs) == 0 {
			return errors.New("groups visibility requires at least one group id")
		}
		if len(req.DriverIDs) > 0 {
			return errors.New("groups visibility must not carry driver targets")
		}
	case "drivers":
		if len(req.DriverIDs) == 0 {
			return errors.New("drivers visibility requires at least one driver id")
		}
		if len(req.GroupIDs) > 0 {
			return errors.New("drivers visibility must not carry group targets")
		}
	}

	if req.SyncQueue && req.Visibility != "drivers" {
		return errors.New("sync_queue is only valid with drivers visibility")
	}

	return nil
}
