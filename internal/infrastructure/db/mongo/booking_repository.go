package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/peerrent/rental-system/internal/core/domain"
)

const (
	bookingsCollection    = "bookings"
	bookingDaysCollection = "booking_days"
)

// BookingRepository persists bookings and their per-day reservation locks.
//
// The booking_days collection holds one document per (item, calendar date) a
// blocking booking covers, guarded by a unique compound index. Inserting the
// day documents is therefore an atomic check-and-insert: of two concurrent
// requests for overlapping ranges, exactly one wins the index and the other
// gets a duplicate key error. This closes the read-then-write race the
// overlap query alone would have.
type BookingRepository struct {
	bookings *mongo.Collection
	days     *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{
		bookings: db.Collection(bookingsCollection),
		days:     db.Collection(bookingDaysCollection),
	}
}

type dayLock struct {
	ItemID    string    `bson:"item_id"`
	Date      time.Time `bson:"date"`
	BookingID string    `bson:"booking_id"`
}

func (r *BookingRepository) Insert(ctx context.Context, b *domain.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.bookings.InsertOne(ctx, b); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id string) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var b domain.Booking
	if err := r.bookings.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return &b, nil
}

func (r *BookingRepository) ListByRenter(ctx context.Context, renterID string) ([]*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.bookings.Find(ctx,
		bson.M{"renter_id": renterID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*domain.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}
	return bookings, nil
}

// FindOverlapping applies the half-open interval test in the query itself:
// existing.start < requested.end AND existing.end > requested.start, limited
// to statuses that block dates (confirmed, active).
func (r *BookingRepository) FindOverlapping(ctx context.Context, itemID string, start, end time.Time) ([]*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"item_id":    itemID,
		"status":     bson.M{"$in": []domain.BookingStatus{domain.BookingConfirmed, domain.BookingActive}},
		"start_date": bson.M{"$lt": end.UTC()},
		"end_date":   bson.M{"$gt": start.UTC()},
	}

	cursor, err := r.bookings.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find overlapping bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*domain.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("decode overlapping bookings: %w", err)
	}
	return bookings, nil
}

func (r *BookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"status":         b.Status,
		"payment_status": b.PaymentStatus,
	}
	if b.PickupTime != nil {
		set["pickup_time"] = b.PickupTime
	}
	if b.ReturnTime != nil {
		set["return_time"] = b.ReturnTime
	}

	res, err := r.bookings.UpdateOne(ctx, bson.M{"_id": b.ID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

// LockDates inserts one lock document per date with an ordered InsertMany.
// A duplicate key error means another booking already holds one of the dates;
// any locks inserted before the collision are rolled back so the operation is
// all-or-nothing for this booking.
func (r *BookingRepository) LockDates(ctx context.Context, itemID, bookingID string, dates []time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	docs := make([]interface{}, 0, len(dates))
	for _, d := range dates {
		docs = append(docs, dayLock{ItemID: itemID, Date: d.UTC(), BookingID: bookingID})
	}

	_, err := r.days.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if _, delErr := r.days.DeleteMany(ctx, bson.M{"booking_id": bookingID}); delErr != nil {
				return fmt.Errorf("roll back date locks: %w", delErr)
			}
			return domain.ErrDatesUnavailable
		}
		return fmt.Errorf("lock dates: %w", err)
	}
	return nil
}

func (r *BookingRepository) ReleaseDates(ctx context.Context, bookingID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.days.DeleteMany(ctx, bson.M{"booking_id": bookingID}); err != nil {
		return fmt.Errorf("release dates: %w", err)
	}
	return nil
}

// EnsureIndexes creates the booking query indexes and the unique day-lock
// index the conflict guarantee depends on.
func (r *BookingRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	bookingIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "item_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "renter_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	if _, err := r.bookings.Indexes().CreateMany(ctx, bookingIndexes); err != nil {
		return err
	}

	dayIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "item_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "booking_id", Value: 1}}},
	}
	_, err := r.days.Indexes().CreateMany(ctx, dayIndexes)
	return err
}
