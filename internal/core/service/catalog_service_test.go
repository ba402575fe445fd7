package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/peerrent/rental-system/internal/core/domain"
	"github.com/peerrent/rental-system/internal/core/ports"
)

func TestCatalogService_Create_Defaults(t *testing.T) {
	var stored *domain.Item
	items := &stubItemRepo{
		createFn: func(ctx context.Context, item *domain.Item) (*domain.Item, error) {
			stored = item
			created := *item
			created.ID = "item_1"
			return &created, nil
		},
	}
	svc := NewCatalogService(items, &stubUserRepo{}, zerolog.Nop())

	item, err := svc.Create(context.Background(), "owner_1", ports.CreateItemInput{
		Title: "Pressure washer", Category: "tools", DailyRate: 35,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if item.ID != "item_1" {
		t.Errorf("unexpected id %q", item.ID)
	}
	if stored.Condition != domain.ConditionGood {
		t.Errorf("expected default condition good, got %s", stored.Condition)
	}
	if !stored.Available {
		t.Error("new listings must start available")
	}
	if stored.OwnerID != "owner_1" {
		t.Errorf("owner not recorded: %q", stored.OwnerID)
	}
}

func TestCatalogService_Create_InvalidCondition(t *testing.T) {
	items := &stubItemRepo{
		createFn: func(ctx context.Context, item *domain.Item) (*domain.Item, error) {
			t.Fatal("create should not be called")
			return nil, nil
		},
	}
	svc := NewCatalogService(items, &stubUserRepo{}, zerolog.Nop())

	_, err := svc.Create(context.Background(), "owner_1", ports.CreateItemInput{
		Title: "Bike", Condition: domain.ItemCondition("mint"),
	})
	if !errors.Is(err, domain.ErrInvalidCondition) {
		t.Fatalf("expected ErrInvalidCondition, got %v", err)
	}
}

func TestCatalogService_Get_ExpandsOwner(t *testing.T) {
	items := &stubItemRepo{
		findByIDFn: func(ctx context.Context, id string) (*domain.Item, error) {
			return &domain.Item{ID: id, Title: "Kayak", OwnerID: "owner_1"}, nil
		},
	}
	users := &stubUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*domain.User, error) {
			return &domain.User{ID: id, Name: "Grace", Email: "grace@example.com", Rating: 4.5}, nil
		},
	}
	svc := NewCatalogService(items, users, zerolog.Nop())

	detail, err := svc.Get(context.Background(), "item_1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if detail.Owner.Name != "Grace" || detail.Owner.Rating != 4.5 {
		t.Errorf("owner not expanded: %+v", detail.Owner)
	}
}

func TestCatalogService_Get_OwnerLookupDegrades(t *testing.T) {
	items := &stubItemRepo{
		findByIDFn: func(ctx context.Context, id string) (*domain.Item, error) {
			return &domain.Item{ID: id, OwnerID: "gone"}, nil
		},
	}
	users := &stubUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	svc := NewCatalogService(items, users, zerolog.Nop())

	detail, err := svc.Get(context.Background(), "item_1")
	if err != nil {
		t.Fatalf("get should tolerate a missing owner: %v", err)
	}
	if detail.Owner.ID != "" {
		t.Errorf("expected empty owner summary, got %+v", detail.Owner)
	}
}

func TestCatalogService_Update_Ownership(t *testing.T) {
	items := &stubItemRepo{
		findByIDFn: func(ctx context.Context, id string) (*domain.Item, error) {
			return &domain.Item{ID: id, OwnerID: "owner_1"}, nil
		},
		updateFn: func(ctx context.Context, id string, upd ports.UpdateItemInput) (*domain.Item, error) {
			return &domain.Item{ID: id, OwnerID: "owner_1"}, nil
		},
	}
	svc := NewCatalogService(items, &stubUserRepo{}, zerolog.Nop())

	if _, err := svc.Update(context.Background(), "item_1", "owner_1", domain.RoleVendor, ports.UpdateItemInput{}); err != nil {
		t.Errorf("owner should update own listing: %v", err)
	}
	if _, err := svc.Update(context.Background(), "item_1", "intruder", domain.RoleVendor, ports.UpdateItemInput{}); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-owner, got %v", err)
	}
	if _, err := svc.Update(context.Background(), "item_1", "someone", domain.RoleAdmin, ports.UpdateItemInput{}); err != nil {
		t.Errorf("admin should update any listing: %v", err)
	}
}

func TestCatalogService_Delete_Ownership(t *testing.T) {
	deleted := false
	items := &stubItemRepo{
		findByIDFn: func(ctx context.Context, id string) (*domain.Item, error) {
			return &domain.Item{ID: id, OwnerID: "owner_1"}, nil
		},
		deleteFn: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
	}
	svc := NewCatalogService(items, &stubUserRepo{}, zerolog.Nop())

	if err := svc.Delete(context.Background(), "item_1", "intruder", domain.RoleRenter); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if deleted {
		t.Fatal("delete must not run for a forbidden caller")
	}
	if err := svc.Delete(context.Background(), "item_1", "owner_1", domain.RoleVendor); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if !deleted {
		t.Fatal("delete did not reach the repository")
	}
}
