package services

import (
	"errors"

	"github.com/theia-io/drivebetter-sub000/internal/repositories/interfaces"
)

// Error taxonomy for the share and claim paths. Handlers map these onto
// HTTP status codes; everything else bubbles up as a 500.
//
// Expired, revoked and closed shares all surface ErrShareNotFound so a
// driver probing a dead share link cannot distinguish it from one that
// never existed.
var (
	ErrRideNotFound  = errors.New("ride not found")
	ErrShareNotFound = errors.New("share not found")

	// Conflict family.
	ErrRideCompleted       = errors.New("ride already completed")
	ErrRideAlreadyAssigned = errors.New("ride already assigned or closed")
	ErrMaxClaimsReached    = errors.New("max claims reached")

	// Forbidden: the ACL check rejected the driver.
	ErrAccessDenied = errors.New("access to this share is not allowed")

	// InvalidArgument family.
	ErrInvalidShareTarget = errors.New("share visibility does not match its target lists")
	ErrUnknownGroups      = errors.New("one or more group ids do not exist")
	ErrUnknownDrivers     = errors.New("one or more driver ids do not exist or are not drivers")
	ErrInvalidDriver      = errors.New("invalid driver id")
)

// mapNotFound translates a repository absence into the given sentinel.
// Infrastructure errors pass through untouched so they surface as 500s,
// not as 404s.
func mapNotFound(err, sentinel error) error {
	if errors.Is(err, interfaces.ErrNotFound) {
		return sentinel
	}
	return err
}
