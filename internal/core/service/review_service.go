package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/peerrent/rental-system/internal/core/domain"
	"github.com/peerrent/rental-system/internal/core/ports"
)

// ReviewService implements review CRUD and keeps the aggregate ratings fresh:
// every write recomputes the reviewed item's mean rating and, from the item
// ratings, the owning vendor's rolling average.
type ReviewService struct {
	reviews ports.ReviewRepository
	items   ports.ItemRepository
	users   ports.UserRepository
	logger  zerolog.Logger
}

func NewReviewService(reviews ports.ReviewRepository, items ports.ItemRepository, users ports.UserRepository, logger zerolog.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, items: items, users: users, logger: logger}
}

func (s *ReviewService) Create(ctx context.Context, authorID string, input ports.CreateReviewInput) (*domain.Review, error) {
	item, err := s.items.FindByID(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}

	review := &domain.Review{
		ItemID:    item.ID,
		AuthorID:  authorID,
		Rating:    input.Rating,
		Text:      input.Text,
		CreatedAt: time.Now().UTC(),
	}

	created, err := s.reviews.Insert(ctx, review)
	if err != nil {
		return nil, err
	}

	s.recomputeRatings(ctx, item.ID, item.OwnerID)
	s.logger.Info().Str("review_id", created.ID).Str("item_id", item.ID).Msg("review created")
	return created, nil
}

func (s *ReviewService) ListForItem(ctx context.Context, itemID string) ([]*ports.ReviewView, error) {
	reviews, err := s.reviews.ListByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	views := make([]*ports.ReviewView, 0, len(reviews))
	for _, r := range reviews {
		view := &ports.ReviewView{Review: r}
		if author, err := s.users.FindByID(ctx, r.AuthorID); err == nil {
			view.AuthorName = author.Name
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *ReviewService) ListForUser(ctx context.Context, userID string) ([]*ports.ReviewView, error) {
	reviews, err := s.reviews.ListByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]*ports.ReviewView, 0, len(reviews))
	for _, r := range reviews {
		view := &ports.ReviewView{Review: r}
		if item, err := s.items.FindByID(ctx, r.ItemID); err == nil {
			view.ItemTitle = item.Title
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *ReviewService) Update(ctx context.Context, id, callerID string, input ports.UpdateReviewInput) (*domain.Review, error) {
	existing, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.AuthorID != callerID {
		return nil, domain.ErrForbidden
	}

	updated, err := s.reviews.Update(ctx, id, input)
	if err != nil {
		return nil, err
	}

	s.recomputeForItem(ctx, updated.ItemID)
	return updated, nil
}

func (s *ReviewService) Delete(ctx context.Context, id, callerID string) error {
	existing, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.AuthorID != callerID {
		return domain.ErrForbidden
	}

	if err := s.reviews.Delete(ctx, id); err != nil {
		return err
	}

	s.recomputeForItem(ctx, existing.ItemID)
	return nil
}

func (s *ReviewService) recomputeForItem(ctx context.Context, itemID string) {
	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		s.logger.Warn().Err(err).Str("item_id", itemID).Msg("rating recompute skipped")
		return
	}
	s.recomputeRatings(ctx, item.ID, item.OwnerID)
}

// recomputeRatings writes back the item's rating average and count, then the
// owner's average over their rated items. Failures are logged, not surfaced:
// the review write already succeeded and aggregates are derived data.
func (s *ReviewService) recomputeRatings(ctx context.Context, itemID, ownerID string) {
	avg, count, err := s.reviews.AverageForItem(ctx, itemID)
	if err != nil {
		s.logger.Warn().Err(err).Str("item_id", itemID).Msg("item rating recompute failed")
		return
	}
	if err := s.items.UpdateRating(ctx, itemID, avg, count); err != nil {
		s.logger.Warn().Err(err).Str("item_id", itemID).Msg("item rating write failed")
		return
	}

	ownerAvg, err := s.items.AverageRatingForOwner(ctx, ownerID)
	if err != nil {
		s.logger.Warn().Err(err).Str("owner_id", ownerID).Msg("owner rating recompute failed")
		return
	}
	if err := s.users.UpdateRating(ctx, ownerID, ownerAvg); err != nil {
		s.logger.Warn().Err(err).Str("owner_id", ownerID).Msg("owner rating write failed")
	}
}
