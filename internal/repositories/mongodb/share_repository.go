package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/theia-io/drivebetter-sub000/internal/models"
	"github.com/theia-io/drivebetter-sub000/internal/repositories/interfaces"
	"github.com/theia-io/drivebetter-sub000/pkg/cache"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const shareTokenCacheTTL = 24 * time.Hour

type shareRepository struct {
	collection *mongo.Collection
	cache      *cache.RedisCache
}

// NewShareRepository creates a Mongo-backed share store. The cache is
// optional and only holds the immutable token-to-ID binding; share status
// is always read from Mongo so expiry and revocation are never served
// stale.
func NewShareRepository(db *mongo.Database, cache *cache.RedisCache) interfaces.ShareRepository {
	return &shareRepository{
		collection: db.Collection("ride_shares"),
		cache:      cache,
	}
}

func (r *shareRepository) Create(ctx context.Context, share *models.RideShare) error {
	share.ID = primitive.NewObjectID()
	share.CreatedAt = time.Now()
	share.UpdatedAt = share.CreatedAt

	_, err := r.collection.InsertOne(ctx, share)
	if err != nil {
		return fmt.Errorf("failed to create share: %w", err)
	}

	if r.cache != nil && share.ShareToken != "" {
		r.cache.Set(ctx, tokenCacheKey(share.ShareToken), share.ID.Hex(), shareTokenCacheTTL)
	}

	return nil
}

func (r *shareRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.RideShare, error) {
	var share models.RideShare
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&share)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("share %w", interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get share: %w", err)
	}

	return &share, nil
}

func (r *shareRepository) GetByToken(ctx context.Context, token string) (*models.RideShare, error) {
	// The token->ID binding never changes once written, so a cache hit is
	// safe; the share document itself is still fetched from Mongo.
	if r.cache != nil {
		var hex string
		if err := r.cache.Get(ctx, tokenCacheKey(token), &hex); err == nil {
			if id, err := primitive.ObjectIDFromHex(hex); err == nil {
				return r.GetByID(ctx, id)
			}
		}
	}

	var share models.RideShare
	err := r.collection.FindOne(ctx, bson.M{"share_token": token}).Decode(&share)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("share %w", interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get share by token: %w", err)
	}

	if r.cache != nil {
		r.cache.Set(ctx, tokenCacheKey(token), share.ID.Hex(), shareTokenCacheTTL)
	}

	return &share, nil
}

func (r *shareRepository) GetActiveByRide(ctx context.Context, rideID primitive.ObjectID) ([]*models.RideShare, error) {
	filter := bson.M{
		"ride_id": rideID,
		"status":  models.ShareStatusActive,
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find active shares: %w", err)
	}
	defer cursor.Close(ctx)

	var shares []*models.RideShare
	for cursor.Next(ctx) {
		var share models.RideShare
		if err := cursor.Decode(&share); err != nil {
			return nil, fmt.Errorf("failed to decode share: %w", err)
		}
		shares = append(shares, &share)
	}

	return shares, nil
}

// MarkExpired flips an active share to expired. The status guard in the
// filter makes repeated observation of the same expired share a no-op.
func (r *shareRepository) MarkExpired(ctx context.Context, id primitive.ObjectID) (bool, error) {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": models.ShareStatusActive},
		bson.M{"$set": bson.M{
			"status":     models.ShareStatusExpired,
			"updated_at": time.Now(),
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark share expired: %w", err)
	}

	return result.ModifiedCount > 0, nil
}

func (r *shareRepository) Close(ctx context.Context, id primitive.ObjectID) (bool, error) {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": models.ShareStatusActive},
		bson.M{"$set": bson.M{
			"status":     models.ShareStatusClosed,
			"updated_at": time.Now(),
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to close share: %w", err)
	}

	return result.ModifiedCount > 0, nil
}

func (r *shareRepository) IncrementClaims(ctx context.Context, id primitive.ObjectID) (int, error) {
	update := bson.M{
		"$inc": bson.M{"claims_count": 1},
		"$set": bson.M{"updated_at": time.Now()},
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"claims_count": 1})

	var result struct {
		ClaimsCount int `bson:"claims_count"`
	}
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&result)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, fmt.Errorf("share %w", interfaces.ErrNotFound)
		}
		return 0, fmt.Errorf("failed to increment claims count: %w", err)
	}

	return result.ClaimsCount, nil
}

func (r *shareRepository) RevokeActiveByRide(ctx context.Context, rideID primitive.ObjectID, revokedAt time.Time) (int64, error) {
	result, err := r.collection.UpdateMany(
		ctx,
		bson.M{"ride_id": rideID, "status": models.ShareStatusActive},
		bson.M{"$set": bson.M{
			"status":     models.ShareStatusRevoked,
			"revoked_at": revokedAt,
			"updated_at": time.Now(),
		}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke shares: %w", err)
	}

	return result.ModifiedCount, nil
}

func tokenCacheKey(token string) string {
	return fmt.Sprintf("share_token:%s", token)
}
