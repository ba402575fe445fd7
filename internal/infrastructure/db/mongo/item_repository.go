package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/peerrent/rental-system/internal/core/domain"
	"github.com/peerrent/rental-system/internal/core/ports"
)

const itemsCollection = "items"

type ItemRepository struct {
	coll *mongo.Collection
}

func NewItemRepository(db *mongo.Database) *ItemRepository {
	return &ItemRepository{coll: db.Collection(itemsCollection)}
}

func (r *ItemRepository) Create(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	item.ID = primitive.NewObjectID().Hex()
	if _, err := r.coll.InsertOne(ctx, item); err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	return item, nil
}

func (r *ItemRepository) FindByID(ctx context.Context, id string) (*domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var item domain.Item
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("find item: %w", err)
	}
	return &item, nil
}

// listQuery builds the Find filter for item listings. The search term is a
// literal substring match, so regex metacharacters are escaped before it
// reaches the $regex operator.
func listQuery(filter ports.ListItemsFilter) bson.M {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Search != "" {
		query["title"] = bson.M{"$regex": regexp.QuoteMeta(filter.Search), "$options": "i"}
	}
	if filter.MinPrice != nil || filter.MaxPrice != nil {
		rate := bson.M{}
		if filter.MinPrice != nil {
			rate["$gte"] = *filter.MinPrice
		}
		if filter.MaxPrice != nil {
			rate["$lte"] = *filter.MaxPrice
		}
		query["daily_rate"] = rate
	}
	return query
}

func (r *ItemRepository) List(ctx context.Context, filter ports.ListItemsFilter) ([]*domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, listQuery(filter), options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer cursor.Close(ctx)

	var items []*domain.Item
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	return items, nil
}

func (r *ItemRepository) Update(ctx context.Context, id string, upd ports.UpdateItemInput) (*domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Category != nil {
		set["category"] = *upd.Category
	}
	if upd.Images != nil {
		set["images"] = *upd.Images
	}
	if upd.DailyRate != nil {
		set["daily_rate"] = *upd.DailyRate
	}
	if upd.DepositAmount != nil {
		set["deposit_amount"] = *upd.DepositAmount
	}
	if upd.Condition != nil {
		set["condition"] = *upd.Condition
	}
	if upd.Location != nil {
		set["location"] = *upd.Location
	}
	if upd.Available != nil {
		set["available"] = *upd.Available
	}
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	var item domain.Item
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("update item: %w", err)
	}
	return &item, nil
}

func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *ItemRepository) UpdateRating(ctx context.Context, id string, rating float64, count int) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"rating": rating, "rating_count": count}})
	return err
}

// AverageRatingForOwner computes the mean rating across the owner's items
// that have at least one review.
func (r *ItemRepository) AverageRatingForOwner(ctx context.Context, ownerID string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"owner_id": ownerID, "rating": bson.M{"$gt": 0}}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "avg": bson.M{"$avg": "$rating"}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("aggregate owner rating: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Avg float64 `bson:"avg"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("decode owner rating: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Avg, nil
}

// EnsureIndexes creates the query indexes used by catalog filtering.
func (r *ItemRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		{Keys: bson.D{{Key: "daily_rate", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
