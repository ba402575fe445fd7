package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/peerrent/rental-system/internal/api/metrics"
	"github.com/peerrent/rental-system/internal/core/domain"
	"github.com/peerrent/rental-system/internal/core/ports"
)

const chargeCurrency = "usd"

// BookingService coordinates the conflict check, the payment capture, and the
// booking write. The order matters: dates are locked first (atomically, via
// the per-day unique index), the charge runs second, and the booking document
// is persisted last, so a failed charge never leaves a booking behind.
type BookingService struct {
	bookings ports.BookingRepository
	items    ports.ItemRepository
	payments ports.PaymentProcessor
	notifier ports.Notifier
	logger   zerolog.Logger
}

func NewBookingService(
	bookings ports.BookingRepository,
	items ports.ItemRepository,
	payments ports.PaymentProcessor,
	notifier ports.Notifier,
	logger zerolog.Logger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		items:    items,
		payments: payments,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *BookingService) Create(ctx context.Context, input ports.CreateBookingInput) (*ports.BookingView, error) {
	if !input.EndDate.After(input.StartDate) {
		return nil, domain.ErrInvalidDateRange
	}

	item, err := s.items.FindByID(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}
	if !item.Available {
		return nil, domain.ErrDatesUnavailable
	}

	// Fast-path conflict check. The day locks below are what actually close
	// the race; this read just avoids charging a card for an obvious conflict.
	existing, err := s.bookings.FindOverlapping(ctx, item.ID, input.StartDate, input.EndDate)
	if err != nil {
		return nil, fmt.Errorf("availability check: %w", err)
	}
	if len(blockingConflicts(existing, input.StartDate, input.EndDate)) > 0 {
		metrics.BookingConflictsTotal.Inc()
		return nil, domain.ErrDatesUnavailable
	}

	days := domain.RentalDays(input.StartDate, input.EndDate)
	cost := item.DailyRate * float64(days)

	booking := &domain.Booking{
		ID:            uuid.NewString(),
		ItemID:        item.ID,
		RenterID:      input.RenterID,
		OwnerID:       item.OwnerID,
		StartDate:     input.StartDate.UTC(),
		EndDate:       input.EndDate.UTC(),
		TotalDays:     days,
		RentalCost:    cost,
		DepositAmount: item.DepositAmount,
		Status:        domain.BookingPending,
		PaymentStatus: domain.PaymentUnpaid,
		Notes:         input.Notes,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.bookings.LockDates(ctx, item.ID, booking.ID, domain.BookedDates(input.StartDate, input.EndDate)); err != nil {
		if err == domain.ErrDatesUnavailable {
			metrics.BookingConflictsTotal.Inc()
		}
		return nil, err
	}

	charge, err := s.payments.Charge(ctx, ports.ChargeInput{
		AmountCents:     toCents(cost),
		Currency:        chargeCurrency,
		PaymentMethodID: input.PaymentMethodID,
		Description:     fmt.Sprintf("Rental of %s for %d day(s)", item.Title, days),
		IdempotencyKey:  booking.ID,
	})
	if err != nil {
		s.releaseLocks(ctx, booking.ID)
		metrics.PaymentFailuresTotal.Inc()
		s.logger.Warn().Err(err).
			Str("item_id", item.ID).
			Str("renter_id", input.RenterID).
			Msg("payment capture failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrPaymentFailed, err)
	}

	booking.Status = domain.BookingConfirmed
	booking.PaymentStatus = domain.PaymentPaid
	booking.PaymentRef = charge.ProviderRef

	if err := s.bookings.Insert(ctx, booking); err != nil {
		// The charge went through but the write failed: reverse the charge so
		// the renter is not billed for a booking that does not exist.
		if refundErr := s.payments.Refund(ctx, charge.ProviderRef, toCents(cost)); refundErr != nil {
			s.logger.Error().Err(refundErr).
				Str("payment_ref", charge.ProviderRef).
				Msg("refund after failed booking write also failed; manual reconciliation required")
		}
		s.releaseLocks(ctx, booking.ID)
		return nil, fmt.Errorf("persist booking: %w", err)
	}

	metrics.BookingsCreatedTotal.Inc()
	s.logger.Info().
		Str("booking_id", booking.ID).
		Str("item_id", item.ID).
		Str("renter_id", input.RenterID).
		Int("days", days).
		Float64("cost", cost).
		Msg("booking confirmed")

	s.notify(ctx, booking)
	return &ports.BookingView{Booking: booking, Item: item}, nil
}

// ListForRenter returns the renter's bookings newest first, each with its item
// expanded. A dangling item reference leaves the Item field nil.
func (s *BookingService) ListForRenter(ctx context.Context, renterID string) ([]*ports.BookingView, error) {
	bookings, err := s.bookings.ListByRenter(ctx, renterID)
	if err != nil {
		return nil, err
	}

	views := make([]*ports.BookingView, 0, len(bookings))
	for _, b := range bookings {
		view := &ports.BookingView{Booking: b}
		if item, err := s.items.FindByID(ctx, b.ItemID); err == nil {
			view.Item = item
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *BookingService) Get(ctx context.Context, id, callerID, callerRole string) (*ports.BookingView, error) {
	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if callerRole != domain.RoleAdmin && booking.RenterID != callerID && booking.OwnerID != callerID {
		return nil, domain.ErrForbidden
	}

	view := &ports.BookingView{Booking: booking}
	if item, err := s.items.FindByID(ctx, booking.ItemID); err == nil {
		view.Item = item
	}
	return view, nil
}

func (s *BookingService) Transition(ctx context.Context, id, callerID string, next domain.BookingStatus) (*domain.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.RenterID != callerID && booking.OwnerID != callerID {
		return nil, domain.ErrForbidden
	}
	if next == domain.BookingCancelled {
		return s.cancel(ctx, booking, callerID)
	}
	if !booking.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, booking.Status, next)
	}

	now := time.Now().UTC()
	switch next {
	case domain.BookingActive:
		booking.PickupTime = &now
	case domain.BookingCompleted:
		booking.ReturnTime = &now
	}
	booking.Status = next

	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, err
	}
	if next.Terminal() {
		s.releaseLocks(ctx, booking.ID)
	}

	s.logger.Info().Str("booking_id", id).Str("status", string(next)).Msg("booking transitioned")
	s.notify(ctx, booking)
	return booking, nil
}

func (s *BookingService) Cancel(ctx context.Context, id, callerID string) (*domain.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.RenterID != callerID && booking.OwnerID != callerID {
		return nil, domain.ErrForbidden
	}
	return s.cancel(ctx, booking, callerID)
}

func (s *BookingService) cancel(ctx context.Context, booking *domain.Booking, callerID string) (*domain.Booking, error) {
	if !booking.Status.CanTransitionTo(domain.BookingCancelled) {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, booking.Status, domain.BookingCancelled)
	}

	// Refund before flipping state: if the refund fails the booking stays
	// confirmed and the caller can retry.
	if booking.PaymentStatus == domain.PaymentPaid && booking.PaymentRef != "" {
		if err := s.payments.Refund(ctx, booking.PaymentRef, toCents(booking.RentalCost)); err != nil {
			s.logger.Error().Err(err).Str("booking_id", booking.ID).Msg("refund failed")
			return nil, fmt.Errorf("%w: refund: %v", domain.ErrPaymentFailed, err)
		}
		booking.PaymentStatus = domain.PaymentRefunded
	}

	booking.Status = domain.BookingCancelled
	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, err
	}
	s.releaseLocks(ctx, booking.ID)

	metrics.BookingsCancelledTotal.Inc()
	s.logger.Info().Str("booking_id", booking.ID).Str("user_id", callerID).Msg("booking cancelled")
	s.notify(ctx, booking)
	return booking, nil
}

func (s *BookingService) CheckAvailability(ctx context.Context, itemID string, start, end time.Time) (*ports.Availability, error) {
	if !end.After(start) {
		return nil, domain.ErrInvalidDateRange
	}
	if _, err := s.items.FindByID(ctx, itemID); err != nil {
		return nil, err
	}

	existing, err := s.bookings.FindOverlapping(ctx, itemID, start, end)
	if err != nil {
		return nil, err
	}
	conflicts := blockingConflicts(existing, start, end)
	return &ports.Availability{Available: len(conflicts) == 0, Bookings: conflicts}, nil
}

// blockingConflicts keeps only bookings that actually reserve dates in the
// requested range: confirmed or active, and overlapping under the half-open
// interval test. The repository query already filters like this, but the
// service does not rely on that.
func blockingConflicts(bookings []*domain.Booking, start, end time.Time) []*domain.Booking {
	conflicts := make([]*domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Status.Blocking() && domain.Overlaps(b.StartDate, b.EndDate, start, end) {
			conflicts = append(conflicts, b)
		}
	}
	return conflicts
}

// notify publishes a booking-changed event to the item's room. Best effort.
func (s *BookingService) notify(ctx context.Context, b *domain.Booking) {
	if s.notifier == nil {
		return
	}
	event := ports.BookingEvent{
		BookingID: b.ID,
		ItemID:    b.ItemID,
		Status:    string(b.Status),
	}
	if err := s.notifier.NotifyBookingChanged(ctx, b.ItemID, event); err != nil {
		s.logger.Warn().Err(err).Str("booking_id", b.ID).Msg("failed to publish booking event")
	}
}

func (s *BookingService) releaseLocks(ctx context.Context, bookingID string) {
	if err := s.bookings.ReleaseDates(ctx, bookingID); err != nil {
		s.logger.Warn().Err(err).Str("booking_id", bookingID).Msg("failed to release date locks")
	}
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
