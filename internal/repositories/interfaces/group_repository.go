package interfaces

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type GroupRepository interface {
	// FindExistingIDs returns the subset of ids that reference an existing,
	// non-archived group. Used to report unresolved IDs at share creation.
	FindExistingIDs(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error)

	// CountMemberships returns how many of the given groups the user is a
	// member of. Looked up fresh on every ACL evaluation.
	CountMemberships(ctx context.Context, groupIDs []primitive.ObjectID, userID primitive.ObjectID) (int64, error)
}
