package ports

import (
	"context"
	"time"

	"github.com/peerrent/rental-system/internal/core/domain"
)

// CreateBookingInput carries all data needed to request a booking.
type CreateBookingInput struct {
	ItemID          string
	RenterID        string
	StartDate       time.Time
	EndDate         time.Time
	PaymentMethodID string
	Notes           string
}

// BookingView is a booking with its item expanded (read-side composition).
type BookingView struct {
	Booking *domain.Booking `json:"booking"`
	Item    *domain.Item    `json:"item,omitempty"`
}

// Availability is the result of a read-only date range check.
type Availability struct {
	Available bool              `json:"available"`
	Bookings  []*domain.Booking `json:"bookings"`
}

// BookingRepository defines persistence operations for bookings. LockDates and
// ReleaseDates manage per-day reservation documents guarded by a unique
// (item_id, date) index; they make the conflict-check-and-insert atomic.
type BookingRepository interface {
	Insert(ctx context.Context, b *domain.Booking) error
	FindByID(ctx context.Context, id string) (*domain.Booking, error)
	// ListByRenter returns the renter's bookings, newest first.
	ListByRenter(ctx context.Context, renterID string) ([]*domain.Booking, error)
	// FindOverlapping returns bookings for itemID whose status blocks dates and
	// whose [start_date, end_date) interval overlaps [start, end).
	FindOverlapping(ctx context.Context, itemID string, start, end time.Time) ([]*domain.Booking, error)
	Update(ctx context.Context, b *domain.Booking) error
	// LockDates reserves each date for the booking, failing with
	// domain.ErrDatesUnavailable when any date is already held. On failure no
	// locks remain for bookingID.
	LockDates(ctx context.Context, itemID, bookingID string, dates []time.Time) error
	// ReleaseDates removes every date lock held by bookingID.
	ReleaseDates(ctx context.Context, bookingID string) error
}

// BookingService defines the booking use cases.
type BookingService interface {
	// Create runs the conflict check, charges the renter's payment method, and
	// persists a confirmed booking. No booking exists after a failed charge.
	Create(ctx context.Context, input CreateBookingInput) (*BookingView, error)
	// ListForRenter returns the caller's bookings, newest first, items expanded.
	ListForRenter(ctx context.Context, renterID string) ([]*BookingView, error)
	// Get returns one booking; only the renter, the owner, or an admin may read it.
	Get(ctx context.Context, id, callerID, callerRole string) (*BookingView, error)
	// Transition advances the lifecycle (confirmed→active on pickup,
	// active→completed on return), validating against the state machine.
	Transition(ctx context.Context, id, callerID string, next domain.BookingStatus) (*domain.Booking, error)
	// Cancel moves a pending or confirmed booking to cancelled, refunding the
	// charge when one was captured.
	Cancel(ctx context.Context, id, callerID string) (*domain.Booking, error)
	CheckAvailability(ctx context.Context, itemID string, start, end time.Time) (*Availability, error)
}
