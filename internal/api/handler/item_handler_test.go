package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/peerrent/rental-system/internal/core/domain"
	"github.com/peerrent/rental-system/internal/core/ports"
)

type stubItemService struct {
	createFn func(ctx context.Context, ownerID string, input ports.CreateItemInput) (*domain.Item, error)
	getFn    func(ctx context.Context, id string) (*ports.ItemDetail, error)
	listFn   func(ctx context.Context, filter ports.ListItemsFilter) ([]*domain.Item, error)
	updateFn func(ctx context.Context, id, callerID, callerRole string, input ports.UpdateItemInput) (*domain.Item, error)
	deleteFn func(ctx context.Context, id, callerID, callerRole string) error
}

func (s *stubItemService) Create(ctx context.Context, ownerID string, input ports.CreateItemInput) (*domain.Item, error) {
	return s.createFn(ctx, ownerID, input)
}

func (s *stubItemService) Get(ctx context.Context, id string) (*ports.ItemDetail, error) {
	return s.getFn(ctx, id)
}

func (s *stubItemService) List(ctx context.Context, filter ports.ListItemsFilter) ([]*domain.Item, error) {
	return s.listFn(ctx, filter)
}

func (s *stubItemService) Update(ctx context.Context, id, callerID, callerRole string, input ports.UpdateItemInput) (*domain.Item, error) {
	return s.updateFn(ctx, id, callerID, callerRole, input)
}

func (s *stubItemService) Delete(ctx context.Context, id, callerID, callerRole string) error {
	return s.deleteFn(ctx, id, callerID, callerRole)
}

func TestItemHandler_List_ParsesFilters(t *testing.T) {
	var got ports.ListItemsFilter
	items := &stubItemService{
		listFn: func(ctx context.Context, filter ports.ListItemsFilter) ([]*domain.Item, error) {
			got = filter
			return []*domain.Item{{ID: "item_1", Title: "Drill"}}, nil
		},
	}
	handler := NewItemHandler(items, &stubBookingService{})

	c, rec := newTestContext(http.MethodGet, "/api/items?category=tools&search=drill&minPrice=10&maxPrice=50", "")

	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.Category != "tools" || got.Search != "drill" {
		t.Errorf("filters not passed: %+v", got)
	}
	if got.MinPrice == nil || *got.MinPrice != 10 || got.MaxPrice == nil || *got.MaxPrice != 50 {
		t.Errorf("price bounds not parsed: %+v", got)
	}
}

func TestItemHandler_List_BadPrice(t *testing.T) {
	items := &stubItemService{
		listFn: func(ctx context.Context, filter ports.ListItemsFilter) ([]*domain.Item, error) {
			t.Fatal("should not be called")
			return nil, nil
		},
	}
	handler := NewItemHandler(items, &stubBookingService{})

	c, _ := newTestContext(http.MethodGet, "/api/items?minPrice=cheap", "")

	err := handler.List(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestItemHandler_Create(t *testing.T) {
	items := &stubItemService{
		createFn: func(ctx context.Context, ownerID string, input ports.CreateItemInput) (*domain.Item, error) {
			if ownerID != "owner_1" {
				t.Fatalf("unexpected owner %q", ownerID)
			}
			if input.Title != "Kayak" || input.DailyRate != 40 {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &domain.Item{ID: "item_1", Title: input.Title, OwnerID: ownerID, Available: true}, nil
		},
	}
	handler := NewItemHandler(items, &stubBookingService{})

	c, rec := newTestContext(http.MethodPost, "/api/items",
		`{"title":"Kayak","category":"outdoors","daily_rate":40,"deposit_amount":100}`)
	c.Set("user_id", "owner_1")
	c.Set("role", "vendor")

	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestItemHandler_Get_NotFoundPropagates(t *testing.T) {
	items := &stubItemService{
		getFn: func(ctx context.Context, id string) (*ports.ItemDetail, error) {
			return nil, domain.ErrItemNotFound
		},
	}
	handler := NewItemHandler(items, &stubBookingService{})

	c, _ := newTestContext(http.MethodGet, "/api/items/ghost", "")
	c.SetParamNames("id")
	c.SetParamValues("ghost")

	if err := handler.Get(c); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound to propagate, got %v", err)
	}
}

func TestItemHandler_Availability(t *testing.T) {
	bookings := &stubBookingService{
		availabilityFn: func(ctx context.Context, itemID string, start, end time.Time) (*ports.Availability, error) {
			if itemID != "item_1" {
				t.Fatalf("unexpected item %q", itemID)
			}
			if !start.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
				t.Fatalf("start not parsed: %v", start)
			}
			return &ports.Availability{Available: true, Bookings: []*domain.Booking{}}, nil
		},
	}
	handler := NewItemHandler(&stubItemService{}, bookings)

	c, rec := newTestContext(http.MethodGet, "/api/items/item_1/availability?startDate=2026-01-01&endDate=2026-01-04", "")
	c.SetParamNames("id")
	c.SetParamValues("item_1")

	if err := handler.Availability(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["available"] != true {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestItemHandler_Availability_BadDates(t *testing.T) {
	handler := NewItemHandler(&stubItemService{}, &stubBookingService{})

	c, _ := newTestContext(http.MethodGet, "/api/items/item_1/availability?startDate=soon&endDate=2026-01-04", "")
	c.SetParamNames("id")
	c.SetParamValues("item_1")

	err := handler.Availability(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}
