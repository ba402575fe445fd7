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

type stubBookingService struct {
	createFn       func(ctx context.Context, input ports.CreateBookingInput) (*ports.BookingView, error)
	listFn         func(ctx context.Context, renterID string) ([]*ports.BookingView, error)
	getFn          func(ctx context.Context, id, callerID, callerRole string) (*ports.BookingView, error)
	transitionFn   func(ctx context.Context, id, callerID string, next domain.BookingStatus) (*domain.Booking, error)
	cancelFn       func(ctx context.Context, id, callerID string) (*domain.Booking, error)
	availabilityFn func(ctx context.Context, itemID string, start, end time.Time) (*ports.Availability, error)
}

func (s *stubBookingService) Create(ctx context.Context, input ports.CreateBookingInput) (*ports.BookingView, error) {
	return s.createFn(ctx, input)
}

func (s *stubBookingService) ListForRenter(ctx context.Context, renterID string) ([]*ports.BookingView, error) {
	return s.listFn(ctx, renterID)
}

func (s *stubBookingService) Get(ctx context.Context, id, callerID, callerRole string) (*ports.BookingView, error) {
	return s.getFn(ctx, id, callerID, callerRole)
}

func (s *stubBookingService) Transition(ctx context.Context, id, callerID string, next domain.BookingStatus) (*domain.Booking, error) {
	return s.transitionFn(ctx, id, callerID, next)
}

func (s *stubBookingService) Cancel(ctx context.Context, id, callerID string) (*domain.Booking, error) {
	return s.cancelFn(ctx, id, callerID)
}

func (s *stubBookingService) CheckAvailability(ctx context.Context, itemID string, start, end time.Time) (*ports.Availability, error) {
	return s.availabilityFn(ctx, itemID, start, end)
}

func TestBookingHandler_Create_Success(t *testing.T) {
	stub := &stubBookingService{
		createFn: func(ctx context.Context, input ports.CreateBookingInput) (*ports.BookingView, error) {
			if input.RenterID != "renter_1" || input.ItemID != "item_1" {
				t.Fatalf("unexpected input: %+v", input)
			}
			if !input.StartDate.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
				t.Fatalf("start date not parsed: %v", input.StartDate)
			}
			return &ports.BookingView{
				Booking: &domain.Booking{ID: "b1", Status: domain.BookingConfirmed, TotalDays: 3, RentalCost: 60},
			}, nil
		},
	}
	handler := NewBookingHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/api/bookings",
		`{"item_id":"item_1","start_date":"2026-01-01","end_date":"2026-01-04","payment_method_id":"pm_card"}`)
	c.Set("user_id", "renter_1")
	c.Set("role", "renter")

	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	booking, ok := resp["booking"].(map[string]any)
	if !ok || booking["status"] != "confirmed" {
		t.Fatalf("unexpected booking payload: %+v", resp)
	}
}

func TestBookingHandler_Create_BadDate(t *testing.T) {
	stub := &stubBookingService{
		createFn: func(ctx context.Context, input ports.CreateBookingInput) (*ports.BookingView, error) {
			t.Fatal("should not be called")
			return nil, nil
		},
	}
	handler := NewBookingHandler(stub)

	c, _ := newTestContext(http.MethodPost, "/api/bookings",
		`{"item_id":"item_1","start_date":"yesterday","end_date":"2026-01-04","payment_method_id":"pm_card"}`)
	c.Set("user_id", "renter_1")

	err := handler.Create(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestBookingHandler_Create_ConflictPropagates(t *testing.T) {
	stub := &stubBookingService{
		createFn: func(ctx context.Context, input ports.CreateBookingInput) (*ports.BookingView, error) {
			return nil, domain.ErrDatesUnavailable
		},
	}
	handler := NewBookingHandler(stub)

	c, _ := newTestContext(http.MethodPost, "/api/bookings",
		`{"item_id":"item_1","start_date":"2026-01-01","end_date":"2026-01-04","payment_method_id":"pm_card"}`)
	c.Set("user_id", "renter_1")

	if err := handler.Create(c); !errors.Is(err, domain.ErrDatesUnavailable) {
		t.Fatalf("expected ErrDatesUnavailable to propagate, got %v", err)
	}
}

func TestBookingHandler_Create_RequiresClaims(t *testing.T) {
	handler := NewBookingHandler(&stubBookingService{})

	c, _ := newTestContext(http.MethodPost, "/api/bookings",
		`{"item_id":"item_1","start_date":"2026-01-01","end_date":"2026-01-04","payment_method_id":"pm_card"}`)

	err := handler.Create(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestBookingHandler_Update_Transition(t *testing.T) {
	stub := &stubBookingService{
		transitionFn: func(ctx context.Context, id, callerID string, next domain.BookingStatus) (*domain.Booking, error) {
			if id != "b1" || callerID != "owner_1" || next != domain.BookingActive {
				t.Fatalf("unexpected args: %s %s %s", id, callerID, next)
			}
			return &domain.Booking{ID: id, Status: next}, nil
		},
	}
	handler := NewBookingHandler(stub)

	c, rec := newTestContext(http.MethodPut, "/api/bookings/b1", `{"status":"active"}`)
	c.SetParamNames("id")
	c.SetParamValues("b1")
	c.Set("user_id", "owner_1")

	if err := handler.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestBookingHandler_Update_RejectsUnknownStatus(t *testing.T) {
	stub := &stubBookingService{
		transitionFn: func(ctx context.Context, id, callerID string, next domain.BookingStatus) (*domain.Booking, error) {
			t.Fatal("should not be called")
			return nil, nil
		},
	}
	handler := NewBookingHandler(stub)

	c, _ := newTestContext(http.MethodPut, "/api/bookings/b1", `{"status":"teleported"}`)
	c.SetParamNames("id")
	c.SetParamValues("b1")
	c.Set("user_id", "owner_1")

	err := handler.Update(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 HTTPError, got %v", err)
	}
}

func TestBookingHandler_Cancel(t *testing.T) {
	stub := &stubBookingService{
		cancelFn: func(ctx context.Context, id, callerID string) (*domain.Booking, error) {
			return &domain.Booking{ID: id, Status: domain.BookingCancelled, PaymentStatus: domain.PaymentRefunded}, nil
		},
	}
	handler := NewBookingHandler(stub)

	c, rec := newTestContext(http.MethodDelete, "/api/bookings/b1", "")
	c.SetParamNames("id")
	c.SetParamValues("b1")
	c.Set("user_id", "renter_1")

	if err := handler.Cancel(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["status"] != "cancelled" || resp["payment_status"] != "refunded" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}
