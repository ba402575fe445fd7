package ports

import "context"

// BookingEvent is the payload broadcast to a room after a booking mutation.
type BookingEvent struct {
	BookingID string `json:"booking_id"`
	ItemID    string `json:"item_id"`
	Status    string `json:"status"`
}

// Notifier fans a booking-changed event out to every subscriber of a room.
// Delivery is best effort: no persistence, no replay.
type Notifier interface {
	NotifyBookingChanged(ctx context.Context, room string, event BookingEvent) error
}
