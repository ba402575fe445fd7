package domain

import (
	"errors"
	"math"
	"time"
)

// BookingStatus represents the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingActive    BookingStatus = "active"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// PaymentStatus tracks the money side of a booking.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// validTransitions defines the allowed state machine transitions.
var validTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingActive, BookingCancelled},
	BookingActive:    {BookingCompleted},
}

var ErrBookingNotFound = errors.New("booking not found")
var ErrInvalidTransition = errors.New("invalid status transition")
var ErrDatesUnavailable = errors.New("item not available for selected dates")
var ErrInvalidDateRange = errors.New("end date must be after start date")
var ErrPaymentFailed = errors.New("payment failed")

// CanTransitionTo reports whether a transition from the current status to next
// is valid.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s BookingStatus) Terminal() bool {
	return len(validTransitions[s]) == 0
}

// Booking reserves an item for a renter over the half-open interval
// [StartDate, EndDate).
type Booking struct {
	ID            string        `json:"id" bson:"_id,omitempty"`
	ItemID        string        `json:"item_id" bson:"item_id"`
	RenterID      string        `json:"renter_id" bson:"renter_id"`
	OwnerID       string        `json:"owner_id" bson:"owner_id"`
	StartDate     time.Time     `json:"start_date" bson:"start_date"`
	EndDate       time.Time     `json:"end_date" bson:"end_date"`
	TotalDays     int           `json:"total_days" bson:"total_days"`
	RentalCost    float64       `json:"rental_cost" bson:"rental_cost"`
	DepositAmount float64       `json:"deposit_amount" bson:"deposit_amount"`
	Status        BookingStatus `json:"status" bson:"status"`
	PaymentStatus PaymentStatus `json:"payment_status" bson:"payment_status"`
	PaymentRef    string        `json:"payment_ref,omitempty" bson:"payment_ref,omitempty"`
	PickupTime    *time.Time    `json:"pickup_time,omitempty" bson:"pickup_time,omitempty"`
	ReturnTime    *time.Time    `json:"return_time,omitempty" bson:"return_time,omitempty"`
	Notes         string        `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt     time.Time     `json:"created_at" bson:"created_at"`
}

// Blocking reports whether a booking in this status reserves its dates.
func (s BookingStatus) Blocking() bool {
	return s == BookingConfirmed || s == BookingActive
}

// Overlaps applies the half-open interval test: [aStart, aEnd) and
// [bStart, bEnd) overlap iff aStart < bEnd and aEnd > bStart.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// RentalDays returns ceil((end-start)/24h), with a minimum of one day.
func RentalDays(start, end time.Time) int {
	days := int(math.Ceil(end.Sub(start).Hours() / 24))
	if days < 1 {
		days = 1
	}
	return days
}

// BookedDates enumerates the UTC calendar dates touched by [start, end),
// one entry per reserved day. The set is a superset of what the interval
// overlap test blocks: any date the range crosses, even partially, is
// reserved whole, so rentals are granted on calendar-day granularity.
func BookedDates(start, end time.Time) []time.Time {
	first := truncateDay(start)
	last := truncateDay(end)
	if end.UTC().After(last) {
		last = last.AddDate(0, 0, 1)
	}
	if !last.After(first) {
		last = first.AddDate(0, 0, 1)
	}
	dates := make([]time.Time, 0, RentalDays(start, end))
	for d := first; d.Before(last); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
