package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/peerrent/rental-system/internal/core/domain"
	"github.com/peerrent/rental-system/internal/core/ports"
)

type stubBookingRepo struct {
	insertFn          func(ctx context.Context, b *domain.Booking) error
	findByIDFn        func(ctx context.Context, id string) (*domain.Booking, error)
	listByRenterFn    func(ctx context.Context, renterID string) ([]*domain.Booking, error)
	findOverlappingFn func(ctx context.Context, itemID string, start, end time.Time) ([]*domain.Booking, error)
	updateFn          func(ctx context.Context, b *domain.Booking) error
	lockDatesFn       func(ctx context.Context, itemID, bookingID string, dates []time.Time) error
	releaseDatesFn    func(ctx context.Context, bookingID string) error
}

func (s *stubBookingRepo) Insert(ctx context.Context, b *domain.Booking) error {
	return s.insertFn(ctx, b)
}

func (s *stubBookingRepo) FindByID(ctx context.Context, id string) (*domain.Booking, error) {
	return s.findByIDFn(ctx, id)
}

func (s *stubBookingRepo) ListByRenter(ctx context.Context, renterID string) ([]*domain.Booking, error) {
	return s.listByRenterFn(ctx, renterID)
}

func (s *stubBookingRepo) FindOverlapping(ctx context.Context, itemID string, start, end time.Time) ([]*domain.Booking, error) {
	return s.findOverlappingFn(ctx, itemID, start, end)
}

func (s *stubBookingRepo) Update(ctx context.Context, b *domain.Booking) error {
	return s.updateFn(ctx, b)
}

func (s *stubBookingRepo) LockDates(ctx context.Context, itemID, bookingID string, dates []time.Time) error {
	return s.lockDatesFn(ctx, itemID, bookingID, dates)
}

func (s *stubBookingRepo) ReleaseDates(ctx context.Context, bookingID string) error {
	return s.releaseDatesFn(ctx, bookingID)
}

type stubItemRepo struct {
	createFn       func(ctx context.Context, item *domain.Item) (*domain.Item, error)
	findByIDFn     func(ctx context.Context, id string) (*domain.Item, error)
	listFn         func(ctx context.Context, filter ports.ListItemsFilter) ([]*domain.Item, error)
	updateFn       func(ctx context.Context, id string, upd ports.UpdateItemInput) (*domain.Item, error)
	deleteFn       func(ctx context.Context, id string) error
	updateRatingFn func(ctx context.Context, id string, rating float64, count int) error
	ownerAvgFn     func(ctx context.Context, ownerID string) (float64, error)
}

func (s *stubItemRepo) Create(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	return s.createFn(ctx, item)
}

func (s *stubItemRepo) FindByID(ctx context.Context, id string) (*domain.Item, error) {
	return s.findByIDFn(ctx, id)
}

func (s *stubItemRepo) List(ctx context.Context, filter ports.ListItemsFilter) ([]*domain.Item, error) {
	return s.listFn(ctx, filter)
}

func (s *stubItemRepo) Update(ctx context.Context, id string, upd ports.UpdateItemInput) (*domain.Item, error) {
	return s.updateFn(ctx, id, upd)
}

func (s *stubItemRepo) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *stubItemRepo) UpdateRating(ctx context.Context, id string, rating float64, count int) error {
	return s.updateRatingFn(ctx, id, rating, count)
}

func (s *stubItemRepo) AverageRatingForOwner(ctx context.Context, ownerID string) (float64, error) {
	return s.ownerAvgFn(ctx, ownerID)
}

type stubPayments struct {
	chargeFn func(ctx context.Context, input ports.ChargeInput) (*ports.Charge, error)
	refundFn func(ctx context.Context, providerRef string, amountCents int64) error
}

func (s *stubPayments) Charge(ctx context.Context, input ports.ChargeInput) (*ports.Charge, error) {
	return s.chargeFn(ctx, input)
}

func (s *stubPayments) Refund(ctx context.Context, providerRef string, amountCents int64) error {
	return s.refundFn(ctx, providerRef, amountCents)
}

type stubNotifier struct {
	events []ports.BookingEvent
}

func (s *stubNotifier) NotifyBookingChanged(ctx context.Context, room string, event ports.BookingEvent) error {
	s.events = append(s.events, event)
	return nil
}

func day(d int) time.Time {
	return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC)
}

func availableItem() *domain.Item {
	return &domain.Item{ID: "item_1", Title: "Cordless drill", OwnerID: "owner_1", DailyRate: 20, DepositAmount: 50, Available: true}
}

func bookingFixtures() (*stubBookingRepo, *stubItemRepo, *stubPayments, *stubNotifier) {
	bookings := &stubBookingRepo{
		insertFn: func(ctx context.Context, b *domain.Booking) error { return nil },
		findOverlappingFn: func(ctx context.Context, itemID string, start, end time.Time) ([]*domain.Booking, error) {
			return nil, nil
		},
		lockDatesFn: func(ctx context.Context, itemID, bookingID string, dates []time.Time) error {
			return nil
		},
		releaseDatesFn: func(ctx context.Context, bookingID string) error { return nil },
		updateFn:       func(ctx context.Context, b *domain.Booking) error { return nil },
	}
	items := &stubItemRepo{
		findByIDFn: func(ctx context.Context, id string) (*domain.Item, error) {
			return availableItem(), nil
		},
	}
	payments := &stubPayments{
		chargeFn: func(ctx context.Context, input ports.ChargeInput) (*ports.Charge, error) {
			return &ports.Charge{ProviderRef: "pi_123", Status: "succeeded"}, nil
		},
		refundFn: func(ctx context.Context, providerRef string, amountCents int64) error { return nil },
	}
	return bookings, items, payments, &stubNotifier{}
}

func TestBookingService_Create_Success(t *testing.T) {
	bookings, items, payments, notifier := bookingFixtures()

	var charged ports.ChargeInput
	payments.chargeFn = func(ctx context.Context, input ports.ChargeInput) (*ports.Charge, error) {
		charged = input
		return &ports.Charge{ProviderRef: "pi_123", Status: "succeeded"}, nil
	}
	var inserted *domain.Booking
	bookings.insertFn = func(ctx context.Context, b *domain.Booking) error {
		inserted = b
		return nil
	}

	svc := NewBookingService(bookings, items, payments, notifier, zerolog.Nop())

	view, err := svc.Create(context.Background(), ports.CreateBookingInput{
		ItemID:          "item_1",
		RenterID:        "renter_1",
		StartDate:       day(1),
		EndDate:         day(4),
		PaymentMethodID: "pm_card",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	b := view.Booking
	if b.TotalDays != 3 || b.RentalCost != 60 {
		t.Errorf("expected 3 days at 60 total, got %d days at %v", b.TotalDays, b.RentalCost)
	}
	if b.Status != domain.BookingConfirmed || b.PaymentStatus != domain.PaymentPaid {
		t.Errorf("expected confirmed+paid, got %s/%s", b.Status, b.PaymentStatus)
	}
	if b.PaymentRef != "pi_123" {
		t.Errorf("payment ref not recorded: %q", b.PaymentRef)
	}
	if charged.AmountCents != 6000 {
		t.Errorf("expected charge of 6000 cents, got %d", charged.AmountCents)
	}
	if charged.IdempotencyKey != b.ID {
		t.Error("idempotency key should be the booking id")
	}
	if inserted == nil {
		t.Fatal("booking not persisted")
	}
	if len(notifier.events) != 1 || notifier.events[0].Status != string(domain.BookingConfirmed) {
		t.Errorf("expected one confirmed event, got %v", notifier.events)
	}
}

func TestBookingService_Create_InvalidRange(t *testing.T) {
	bookings, items, payments, notifier := bookingFixtures()
	svc := NewBookingService(bookings, items, payments, notifier, zerolog.Nop())

	_, err := svc.Create(context.Background(), ports.CreateBookingInput{
		ItemID: "item_1", RenterID: "renter_1", StartDate: day(4), EndDate: day(1),
	})
	if !errors.Is(err, domain.ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestBookingService_Create_Conflict(t *testing.T) {
	bookings, items, payments, notifier := bookingFixtures()
	bookings.findOverlappingFn = func(ctx context.Context, itemID string, start, end time.Time) ([]*domain.Booking, error) {
		return []*domain.Booking{{ID: "other", Status: domain.BookingConfirmed, StartDate: day(2), EndDate: day(5)}}, nil
	}
	payments.chargeFn = func(ctx context.Context, input ports.ChargeInput) (*ports.Charge, error) {
		t.Fatal("no charge should run for a conflicting range")
		return nil, nil
	}
	svc := NewBookingService(bookings, items, payments, notifier, zerolog.Nop())

	_, err := svc.Create(context.Background(), ports.CreateBookingInput{
		ItemID: "item_1", RenterID: "renter_1", StartDate: day(1), EndDate: day(4),
	})
	if !errors.Is(err, domain.ErrDatesUnavailable) {
		t.Fatalf("expected ErrDatesUnavailable, got %v", err)
	}
}

func TestBookingService_Create_LockRace(t *testing.T) {
	bookings, items, payments, notifier := bookingFixtures()
	bookings.lockDatesFn = func(ctx context.Context, itemID, bookingID string, dates []time.Time) error {
		return domain.ErrDatesUnavailable
	}
	payments.chargeFn = func(ctx context.Context, input ports.ChargeInput) (*ports.Charge, error) {
		t.Fatal("no charge should run when the locks are taken")
		return nil, nil
	}
	svc := NewBookingService(bookings, items, payments, notifier, zerolog.Nop())

	_, err := svc.Create(context.Background(), ports.CreateBookingInput{
		ItemID: "item_1", RenterID: "renter_1", StartDate: day(1), EndDate: day(4),
	})
	if !errors.Is(err, domain.ErrDatesUnavailable) {
		t.Fatalf("expected ErrDatesUnavailable, got %v", err)
	}
}

func TestBookingService_Create_ChargeFails(t *testing.T) {
	bookings, items, payments, notifier := bookingFixtures()

	released := false
	bookings.releaseDatesFn = func(ctx context.Context, bookingID string) error {
		released = true
		return nil
	}
	bookings.insertFn = func(ctx context.Context, b *domain.Booking) error {
		t.Fatal("no booking may be written after a failed charge")
		return nil
	}
	payments.chargeFn = func(ctx context.Context, input ports.ChargeInput) (*ports.Charge, error) {
		return nil, errors.New("card declined")
	}
	svc := NewBookingService(bookings, items, payments, notifier, zerolog.Nop())

	_, err := svc.Create(context.Background(), ports.CreateBookingInput{
		ItemID: "item_1", RenterID: "renter_1", StartDate: day(1), EndDate: day(4), PaymentMethodID: "pm_card",
	})
	if !errors.Is(err, domain.ErrPaymentFailed) {
		t.Fatalf("expected ErrPaymentFailed, got %v", err)
	}
	if !released {
		t.Error("date locks must be released after a failed charge")
	}
}

func TestBookingService_Create_InsertFailsRefunds(t *testing.T) {
	bookings, items, payments, notifier := bookingFixtures()

	bookings.insertFn = func(ctx context.Context, b *domain.Booking) error {
		return errors.New("write failed")
	}
	refunded := false
	payments.refundFn = func(ctx context.Context, providerRef string, amountCents int64) error {
		if providerRef != "pi_123" || amountCents != 6000 {
			t.Errorf("unexpected refund: %s %d", providerRef, amountCents)
		}
		refunded = true
		return nil
	}
	svc := NewBookingService(bookings, items, payments, notifier, zerolog.Nop())

	_, err := svc.Create(context.Background(), ports.CreateBookingInput{
		ItemID: "item_1", RenterID: "renter_1", StartDate: day(1), EndDate: day(4),
	})
	if err == nil {
		t.Fatal("expected error when the write fails")
	}
	if !refunded {
		t.Error("a successful charge must be refunded when the booking write fails")
	}
}

func TestBookingService_Get_Authorization(t *testing.T) {
	bookings, items, payments, notifier := bookingFixtures()
	bookings.findByIDFn = func(ctx context.Context, id string) (*domain.Booking, error) {
		return &domain.Booking{ID: id, ItemID: "item_1", RenterID: "renter_1", OwnerID: "owner_1"}, nil
	}
	svc := NewBookingService(bookings, items, payments, notifier, zerolog.Nop())

	for _, caller := range []struct {
		id, role string
		allowed  bool
	}{
		{"renter_1", domain.RoleRenter, true},
		{"owner_1", domain.RoleVendor, true},
		{"someone_else", domain.RoleRenter, false},
		{"someone_else", domain.RoleAdmin, true},
	} {
		_, err := svc.Get(context.Background(), "b1", caller.id, caller.role)
		if caller.allowed && err != nil {
			t.Errorf("caller %s/%s should read the booking: %v", caller.id, caller.role, err)
		}
		if !caller.allowed && !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("caller %s/%s should be forbidden, got %v", caller.id, caller.role, err)
		}
	}
}

func TestBookingService_Transition_SetsTimestamps(t *testing.T) {
	bookings, items, payments, notifier := bookingFixtures()
	state := &domain.Booking{ID: "b1", ItemID: "item_1", RenterID: "renter_1", OwnerID: "owner_1", Status: domain.BookingConfirmed}
	bookings.findByIDFn = func(ctx context.Context, id string) (*domain.Booking, error) {
		copied := *state
		return &copied, nil
	}
	bookings.updateFn = func(ctx context.Context, b *domain.Booking) error {
		state = b
		return nil
	}
	svc := NewBookingService(bookings, items, payments, notifier, zerolog.Nop())

	b, err := svc.Transition(context.Background(), "b1", "owner_1", domain.BookingActive)
	if err != nil {
		t.Fatalf("pickup transition failed: %v", err)
	}
	if b.Status != domain.BookingActive || b.PickupTime == nil {
		t.Errorf("expected active with pickup time, got %s %v", b.Status, b.PickupTime)
	}

	b, err = svc.Transition(context.Background(), "b1", "renter_1", domain.BookingCompleted)
	if err != nil {
		t.Fatalf("return transition failed: %v", err)
	}
	if b.Status != domain.BookingCompleted || b.ReturnTime == nil {
		t.Errorf("expected completed with return time, got %s %v", b.Status, b.ReturnTime)
	}
}

func TestBookingService_Transition_Invalid(t *testing.T) {
	bookings, items, payments, notifier := bookingFixtures()
	bookings.findByIDFn = func(ctx context.Context, id string) (*domain.Booking, error) {
		return &domain.Booking{ID: id, RenterID: "renter_1", OwnerID: "owner_1", Status: domain.BookingCompleted}, nil
	}
	svc := NewBookingService(bookings, items, payments, notifier, zerolog.Nop())

	if _, err := svc.Transition(context.Background(), "b1", "renter_1", domain.BookingActive); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestBookingService_Cancel_RefundsPaidBooking(t *testing.T) {
	bookings, items, payments, notifier := bookingFixtures()
	bookings.findByIDFn = func(ctx context.Context, id string) (*domain.Booking, error) {
		return &domain.Booking{
			ID: id, ItemID: "item_1", RenterID: "renter_1", OwnerID: "owner_1",
			Status: domain.BookingConfirmed, PaymentStatus: domain.PaymentPaid,
			PaymentRef: "pi_123", RentalCost: 60,
		}, nil
	}
	refunded := false
	payments.refundFn = func(ctx context.Context, providerRef string, amountCents int64) error {
		if providerRef != "pi_123" || amountCents != 6000 {
			t.Errorf("unexpected refund: %s %d", providerRef, amountCents)
		}
		refunded = true
		return nil
	}
	released := false
	bookings.releaseDatesFn = func(ctx context.Context, bookingID string) error {
		released = true
		return nil
	}
	svc := NewBookingService(bookings, items, payments, notifier, zerolog.Nop())

	b, err := svc.Cancel(context.Background(), "b1", "renter_1")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if b.Status != domain.BookingCancelled || b.PaymentStatus != domain.PaymentRefunded {
		t.Errorf("expected cancelled+refunded, got %s/%s", b.Status, b.PaymentStatus)
	}
	if !refunded || !released {
		t.Error("cancel must refund the charge and release the date locks")
	}
}

func TestBookingService_Cancel_RefundFailureKeepsBooking(t *testing.T) {
	bookings, items, payments, notifier := bookingFixtures()
	bookings.findByIDFn = func(ctx context.Context, id string) (*domain.Booking, error) {
		return &domain.Booking{
			ID: id, RenterID: "renter_1", OwnerID: "owner_1",
			Status: domain.BookingConfirmed, PaymentStatus: domain.PaymentPaid,
			PaymentRef: "pi_123", RentalCost: 60,
		}, nil
	}
	payments.refundFn = func(ctx context.Context, providerRef string, amountCents int64) error {
		return errors.New("provider down")
	}
	bookings.updateFn = func(ctx context.Context, b *domain.Booking) error {
		t.Fatal("state must not change when the refund fails")
		return nil
	}
	svc := NewBookingService(bookings, items, payments, notifier, zerolog.Nop())

	if _, err := svc.Cancel(context.Background(), "b1", "renter_1"); !errors.Is(err, domain.ErrPaymentFailed) {
		t.Fatalf("expected ErrPaymentFailed, got %v", err)
	}
}

func TestBookingService_Cancel_ActiveRejected(t *testing.T) {
	bookings, items, payments, notifier := bookingFixtures()
	bookings.findByIDFn = func(ctx context.Context, id string) (*domain.Booking, error) {
		return &domain.Booking{ID: id, RenterID: "renter_1", OwnerID: "owner_1", Status: domain.BookingActive}, nil
	}
	svc := NewBookingService(bookings, items, payments, notifier, zerolog.Nop())

	if _, err := svc.Cancel(context.Background(), "b1", "renter_1"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for an active rental, got %v", err)
	}
}

func TestBookingService_CheckAvailability(t *testing.T) {
	bookings, items, payments, notifier := bookingFixtures()
	conflict := &domain.Booking{ID: "other", Status: domain.BookingConfirmed, StartDate: day(2), EndDate: day(5)}
	bookings.findOverlappingFn = func(ctx context.Context, itemID string, start, end time.Time) ([]*domain.Booking, error) {
		return []*domain.Booking{conflict}, nil
	}
	svc := NewBookingService(bookings, items, payments, notifier, zerolog.Nop())

	avail, err := svc.CheckAvailability(context.Background(), "item_1", day(1), day(4))
	if err != nil {
		t.Fatalf("availability check failed: %v", err)
	}
	if avail.Available || len(avail.Bookings) != 1 {
		t.Errorf("expected unavailable with one conflict, got %+v", avail)
	}

	bookings.findOverlappingFn = func(ctx context.Context, itemID string, start, end time.Time) ([]*domain.Booking, error) {
		return nil, nil
	}
	avail, err = svc.CheckAvailability(context.Background(), "item_1", day(1), day(4))
	if err != nil {
		t.Fatalf("availability check failed: %v", err)
	}
	if !avail.Available {
		t.Error("expected available when no conflicts exist")
	}

	if _, err := svc.CheckAvailability(context.Background(), "item_1", day(4), day(1)); !errors.Is(err, domain.ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestBookingService_CheckAvailability_IgnoresNonBlocking(t *testing.T) {
	bookings, items, payments, notifier := bookingFixtures()
	bookings.findOverlappingFn = func(ctx context.Context, itemID string, start, end time.Time) ([]*domain.Booking, error) {
		return []*domain.Booking{
			{ID: "cancelled", Status: domain.BookingCancelled, StartDate: day(1), EndDate: day(4)},
			{ID: "elsewhere", Status: domain.BookingConfirmed, StartDate: day(10), EndDate: day(12)},
			{ID: "adjacent", Status: domain.BookingActive, StartDate: day(4), EndDate: day(6)},
		}, nil
	}
	svc := NewBookingService(bookings, items, payments, notifier, zerolog.Nop())

	avail, err := svc.CheckAvailability(context.Background(), "item_1", day(1), day(4))
	if err != nil {
		t.Fatalf("availability check failed: %v", err)
	}
	if !avail.Available || len(avail.Bookings) != 0 {
		t.Errorf("cancelled and non-overlapping bookings should not block, got %+v", avail)
	}
}
