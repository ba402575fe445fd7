package ports

import (
	"context"

	"github.com/peerrent/rental-system/internal/core/domain"
)

// ListItemsFilter carries the public catalog query parameters.
type ListItemsFilter struct {
	Category string   // optional: exact category match
	Search   string   // optional: case-insensitive partial match on title
	MinPrice *float64 // optional: daily_rate >= MinPrice
	MaxPrice *float64 // optional: daily_rate <= MaxPrice
}

// CreateItemInput carries all data needed to list a new item.
type CreateItemInput struct {
	Title         string
	Description   string
	Category      string
	Images        []string
	DailyRate     float64
	DepositAmount float64
	Condition     domain.ItemCondition
	Location      string
}

// UpdateItemInput carries the mutable listing fields; nil means leave unchanged.
type UpdateItemInput struct {
	Title         *string
	Description   *string
	Category      *string
	Images        *[]string
	DailyRate     *float64
	DepositAmount *float64
	Condition     *domain.ItemCondition
	Location      *string
	Available     *bool
}

// OwnerSummary is the owner view embedded in an item detail.
type OwnerSummary struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Rating float64 `json:"rating"`
}

// ItemDetail is a single item with its owner expanded.
type ItemDetail struct {
	Item  *domain.Item `json:"item"`
	Owner OwnerSummary `json:"owner"`
}

// ItemRepository defines persistence operations for catalog items.
type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) (*domain.Item, error)
	FindByID(ctx context.Context, id string) (*domain.Item, error)
	List(ctx context.Context, filter ListItemsFilter) ([]*domain.Item, error)
	Update(ctx context.Context, id string, upd UpdateItemInput) (*domain.Item, error)
	Delete(ctx context.Context, id string) error
	// UpdateRating writes the recomputed aggregate rating and review count
	// for an item.
	UpdateRating(ctx context.Context, id string, rating float64, count int) error
	// AverageRatingForOwner returns the mean rating across a vendor's rated items.
	AverageRatingForOwner(ctx context.Context, ownerID string) (float64, error)
}

// ItemService defines use-case operations for the catalog.
type ItemService interface {
	Create(ctx context.Context, ownerID string, input CreateItemInput) (*domain.Item, error)
	Get(ctx context.Context, id string) (*ItemDetail, error)
	List(ctx context.Context, filter ListItemsFilter) ([]*domain.Item, error)
	// Update and Delete enforce ownership: callers mutate only their own
	// listings unless they hold the admin role.
	Update(ctx context.Context, id, callerID, callerRole string, input UpdateItemInput) (*domain.Item, error)
	Delete(ctx context.Context, id, callerID, callerRole string) error
}
