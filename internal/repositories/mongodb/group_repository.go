package mongodb

import (
	"context"
	"fmt"

	"github.com/theia-io/drivebetter-sub000/internal/models"
	"github.com/theia-io/drivebetter-sub000/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type groupRepository struct {
	groups      *mongo.Collection
	memberships *mongo.Collection
}

func NewGroupRepository(db *mongo.Database) interfaces.GroupRepository {
	return &groupRepository{
		groups:      db.Collection("groups"),
		memberships: db.Collection("group_memberships"),
	}
}

func (r *groupRepository) FindExistingIDs(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error) {
	filter := bson.M{
		"_id":    bson.M{"$in": ids},
		"status": bson.M{"$ne": models.GroupStatusArchived},
	}

	cursor, err := r.groups.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to find groups: %w", err)
	}
	defer cursor.Close(ctx)

	var found []primitive.ObjectID
	for cursor.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode group: %w", err)
		}
		found = append(found, doc.ID)
	}

	return found, nil
}

func (r *groupRepository) CountMemberships(ctx context.Context, groupIDs []primitive.ObjectID, userID primitive.ObjectID) (int64, error) {
	filter := bson.M{
		"group_id": bson.M{"$in": groupIDs},
		"user_id":  userID,
	}

	count, err := r.memberships.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count group memberships: %w", err)
	}

	return count, nil
}
