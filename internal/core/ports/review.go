package ports

import (
	"context"

	"github.com/peerrent/rental-system/internal/core/domain"
)

// CreateReviewInput carries the data for a new review.
type CreateReviewInput struct {
	ItemID string
	Rating int
	Text   string
}

// UpdateReviewInput carries the mutable review fields; nil means leave unchanged.
type UpdateReviewInput struct {
	Rating *int
	Text   *string
}

// ReviewView is a review with display names expanded for list responses.
type ReviewView struct {
	Review     *domain.Review `json:"review"`
	AuthorName string         `json:"author_name,omitempty"`
	ItemTitle  string         `json:"item_title,omitempty"`
}

// ReviewRepository defines persistence operations for reviews.
type ReviewRepository interface {
	Insert(ctx context.Context, r *domain.Review) (*domain.Review, error)
	FindByID(ctx context.Context, id string) (*domain.Review, error)
	// ListByItem returns an item's reviews, newest first.
	ListByItem(ctx context.Context, itemID string) ([]*domain.Review, error)
	// ListByAuthor returns a user's reviews, newest first.
	ListByAuthor(ctx context.Context, authorID string) ([]*domain.Review, error)
	Update(ctx context.Context, id string, upd UpdateReviewInput) (*domain.Review, error)
	Delete(ctx context.Context, id string) error
	// AverageForItem returns the mean rating and review count for an item.
	AverageForItem(ctx context.Context, itemID string) (float64, int, error)
}

// ReviewService defines the review use cases. Every write recomputes the
// subject item's aggregate rating and its owner's rolling average.
type ReviewService interface {
	Create(ctx context.Context, authorID string, input CreateReviewInput) (*domain.Review, error)
	ListForItem(ctx context.Context, itemID string) ([]*ReviewView, error)
	ListForUser(ctx context.Context, userID string) ([]*ReviewView, error)
	Update(ctx context.Context, id, callerID string, input UpdateReviewInput) (*domain.Review, error)
	Delete(ctx context.Context, id, callerID string) error
}
