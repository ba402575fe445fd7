package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/peerrent/rental-system/internal/core/domain"
	"github.com/peerrent/rental-system/internal/core/ports"
)

// CatalogService implements the item catalog use cases.
type CatalogService struct {
	items  ports.ItemRepository
	users  ports.UserRepository
	logger zerolog.Logger
}

func NewCatalogService(items ports.ItemRepository, users ports.UserRepository, logger zerolog.Logger) *CatalogService {
	return &CatalogService{items: items, users: users, logger: logger}
}

func (s *CatalogService) Create(ctx context.Context, ownerID string, input ports.CreateItemInput) (*domain.Item, error) {
	condition := input.Condition
	if condition == "" {
		condition = domain.ConditionGood
	}
	if !domain.ValidCondition(condition) {
		return nil, domain.ErrInvalidCondition
	}

	item := &domain.Item{
		Title:         input.Title,
		Description:   input.Description,
		Category:      input.Category,
		Images:        input.Images,
		DailyRate:     input.DailyRate,
		DepositAmount: input.DepositAmount,
		OwnerID:       ownerID,
		Available:     true,
		Condition:     condition,
		Location:      input.Location,
		CreatedAt:     time.Now().UTC(),
	}

	created, err := s.items.Create(ctx, item)
	if err != nil {
		s.logger.Error().Err(err).Str("owner_id", ownerID).Msg("failed to create item")
		return nil, err
	}

	s.logger.Info().Str("item_id", created.ID).Str("owner_id", ownerID).Msg("item listed")
	return created, nil
}

// Get returns an item with its owner expanded. Owner lookup failures degrade
// to an empty summary rather than failing the read.
func (s *CatalogService) Get(ctx context.Context, id string) (*ports.ItemDetail, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &ports.ItemDetail{Item: item}
	if owner, err := s.users.FindByID(ctx, item.OwnerID); err == nil {
		detail.Owner = ports.OwnerSummary{
			ID:     owner.ID,
			Name:   owner.Name,
			Email:  owner.Email,
			Rating: owner.Rating,
		}
	}
	return detail, nil
}

func (s *CatalogService) List(ctx context.Context, filter ports.ListItemsFilter) ([]*domain.Item, error) {
	return s.items.List(ctx, filter)
}

func (s *CatalogService) Update(ctx context.Context, id, callerID, callerRole string, input ports.UpdateItemInput) (*domain.Item, error) {
	if err := s.authorize(ctx, id, callerID, callerRole); err != nil {
		return nil, err
	}
	if input.Condition != nil && !domain.ValidCondition(*input.Condition) {
		return nil, domain.ErrInvalidCondition
	}
	return s.items.Update(ctx, id, input)
}

func (s *CatalogService) Delete(ctx context.Context, id, callerID, callerRole string) error {
	if err := s.authorize(ctx, id, callerID, callerRole); err != nil {
		return err
	}
	if err := s.items.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("item_id", id).Str("user_id", callerID).Msg("item removed")
	return nil
}

// authorize resolves the item and enforces the ownership rule: only the
// listing vendor, or an admin, may mutate it.
func (s *CatalogService) authorize(ctx context.Context, itemID, callerID, callerRole string) error {
	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return err
	}
	if callerRole != domain.RoleAdmin && item.OwnerID != callerID {
		return domain.ErrForbidden
	}
	return nil
}
