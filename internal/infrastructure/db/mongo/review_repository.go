package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/peerrent/rental-system/internal/core/domain"
	"github.com/peerrent/rental-system/internal/core/ports"
)

const reviewsCollection = "reviews"

type ReviewRepository struct {
	coll *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{coll: db.Collection(reviewsCollection)}
}

func (r *ReviewRepository) Insert(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	review.ID = primitive.NewObjectID().Hex()
	if _, err := r.coll.InsertOne(ctx, review); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrReviewExists
		}
		return nil, fmt.Errorf("insert review: %w", err)
	}
	return review, nil
}

func (r *ReviewRepository) FindByID(ctx context.Context, id string) (*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var review domain.Review
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&review); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, fmt.Errorf("find review: %w", err)
	}
	return &review, nil
}

func (r *ReviewRepository) ListByItem(ctx context.Context, itemID string) ([]*domain.Review, error) {
	return r.list(ctx, bson.M{"item_id": itemID})
}

func (r *ReviewRepository) ListByAuthor(ctx context.Context, authorID string) ([]*domain.Review, error) {
	return r.list(ctx, bson.M{"author_id": authorID})
}

func (r *ReviewRepository) list(ctx context.Context, filter bson.M) ([]*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var reviews []*domain.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	return reviews, nil
}

func (r *ReviewRepository) Update(ctx context.Context, id string, upd ports.UpdateReviewInput) (*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{}
	if upd.Rating != nil {
		set["rating"] = *upd.Rating
	}
	if upd.Text != nil {
		set["text"] = *upd.Text
	}
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	var review domain.Review
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, fmt.Errorf("update review: %w", err)
	}
	return &review, nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

// AverageForItem computes the mean rating and count for an item's reviews.
func (r *ReviewRepository) AverageForItem(ctx context.Context, itemID string) (float64, int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"item_id": itemID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"avg":   bson.M{"$avg": "$rating"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, fmt.Errorf("aggregate item rating: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Avg   float64 `bson:"avg"`
		Count int     `bson:"count"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, 0, fmt.Errorf("decode item rating: %w", err)
	}
	if len(results) == 0 {
		return 0, 0, nil
	}
	return results[0].Avg, results[0].Count, nil
}

// EnsureIndexes creates the one-review-per-(author, item) unique index and the
// listing indexes.
func (r *ReviewRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "author_id", Value: 1}, {Key: "item_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "item_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
