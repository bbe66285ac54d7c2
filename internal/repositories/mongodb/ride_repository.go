package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/theia-io/drivebetter-sub000/internal/models"
	"github.com/theia-io/drivebetter-sub000/internal/repositories/interfaces"
	"github.com/theia-io/drivebetter-sub000/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type rideRepository struct {
	collection *mongo.Collection
}

func NewRideRepository(db *mongo.Database) interfaces.RideRepository {
	return &rideRepository{
		collection: db.Collection("rides"),
	}
}

// Basic CRUD operations
func (r *rideRepository) Create(ctx context.Context, ride *models.Ride) error {
	ride.ID = primitive.NewObjectID()
	ride.CreatedAt = time.Now()
	ride.UpdatedAt = ride.CreatedAt
	if ride.Status == "" {
		ride.Status = models.RideStatusUnassigned
	}

	_, err := r.collection.InsertOne(ctx, ride)
	if err != nil {
		return fmt.Errorf("failed to create ride: %w", err)
	}

	return nil
}

func (r *rideRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	var ride models.Ride
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ride)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("ride %w", interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}

	return &ride, nil
}

func (r *rideRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update ride: %w", err)
	}

	return nil
}

// Status operations
func (r *rideRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.RideStatus) error {
	updates := map[string]interface{}{
		"status": status,
	}

	switch status {
	case models.RideStatusAssigned:
		updates["assigned_at"] = time.Now()
	case models.RideStatusClear:
		updates["cleared_at"] = time.Now()
	}

	return r.Update(ctx, id, updates)
}

// ClaimAssign is the single point where a share claim mutates the ride. The
// filter guards on "no driver yet, not terminal", so when N claimants race,
// Mongo commits exactly one of the conditional updates; everyone else gets
// no match. The winner is also recorded in the ride queue in the same
// document update.
func (r *rideRepository) ClaimAssign(ctx context.Context, rideID, driverID primitive.ObjectID) (*models.Ride, bool, error) {
	now := time.Now()

	filter := bson.M{
		"_id":                rideID,
		"assigned_driver_id": nil,
		"status":             bson.M{"$nin": models.TerminalRideStatuses},
	}
	update := bson.M{
		"$set": bson.M{
			"assigned_driver_id": driverID,
			"status":             models.RideStatusAssigned,
			"assigned_at":        now,
			"updated_at":         now,
		},
		"$addToSet": bson.M{"queue": driverID},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var ride models.Ride
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&ride)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			// Ride missing, already assigned, or terminal. The caller
			// distinguishes via a plain read.
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to claim ride: %w", err)
	}

	return &ride, true, nil
}

// Queue operations
func (r *rideRepository) AddToQueue(ctx context.Context, rideID, driverID primitive.ObjectID) (int, error) {
	update := bson.M{
		"$addToSet": bson.M{"queue": driverID},
		"$set":      bson.M{"updated_at": time.Now()},
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"queue": 1})

	var result struct {
		Queue []primitive.ObjectID `bson:"queue"`
	}
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": rideID}, update, opts).Decode(&result)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, fmt.Errorf("ride %w", interfaces.ErrNotFound)
		}
		return 0, fmt.Errorf("failed to add driver to queue: %w", err)
	}

	for i, id := range result.Queue {
		if id == driverID {
			return i + 1, nil
		}
	}

	return len(result.Queue), nil
}

// MergeQueue appends the given drivers to the ride queue, skipping drivers
// already present and preserving existing order.
func (r *rideRepository) MergeQueue(ctx context.Context, rideID primitive.ObjectID, driverIDs []primitive.ObjectID) error {
	update := bson.M{
		"$addToSet": bson.M{"queue": bson.M{"$each": driverIDs}},
		"$set":      bson.M{"updated_at": time.Now()},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": rideID}, update)
	if err != nil {
		return fmt.Errorf("failed to merge ride queue: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("ride %w", interfaces.ErrNotFound)
	}

	return nil
}

// Search and filtering
func (r *rideRepository) GetByStatus(ctx context.Context, status models.RideStatus, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	filter := bson.M{"status": status}
	return r.findRidesWithFilter(ctx, filter, params)
}

func (r *rideRepository) GetByDriver(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	filter := bson.M{"assigned_driver_id": driverID}
	return r.findRidesWithFilter(ctx, filter, params)
}

// Helper methods
func (r *rideRepository) findRidesWithFilter(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Ride, int64, error) {
	if params.Search != "" {
		searchFields := []string{"ride_number", "pickup_address", "dropoff_address"}
		searchFilter := params.GetSearchFilter(searchFields)
		if len(searchFilter) > 0 {
			filter = bson.M{
				"$and": []bson.M{filter, searchFilter},
			}
		}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count rides: %w", err)
	}

	opts := params.GetSortOptions()
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find rides: %w", err)
	}
	defer cursor.Close(ctx)

	var rides []*models.Ride
	for cursor.Next(ctx) {
		var ride models.Ride
		if err := cursor.Decode(&ride); err != nil {
			return nil, 0, fmt.Errorf("failed to decode ride: %w", err)
		}
		rides = append(rides, &ride)
	}

	return rides, total, nil
}
