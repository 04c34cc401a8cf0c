package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "github.com/phanendrananabala-lab/hotel-room-booking-system/internal/bookings/errors"
	"github.com/phanendrananabala-lab/hotel-room-booking-system/pkg/config"
	"github.com/phanendrananabala-lab/hotel-room-booking-system/pkg/model"
)

const (
	CollectionName = "Bookings"
)

// BookingRepository is the store adapter for booking records. Bookings
// are never physically removed; deletion is a tombstone flip. Scans have
// no ordering guarantee.
type BookingRepository interface {
	Insert(ctx context.Context, booking *model.Booking) error
	// FindByID looks up a booking by id with no deleted filter: callers
	// that must not see tombstones use the FindActive variants.
	FindByID(ctx context.Context, bookingID string) (*model.Booking, error)
	FindActiveByRoom(ctx context.Context, roomID string) ([]*model.Booking, error)
	FindActiveByUser(ctx context.Context, userID string) ([]*model.Booking, error)
	FindActiveByRoomAndUser(ctx context.Context, roomID, userID string) ([]*model.Booking, error)
	UpdateDates(ctx context.Context, bookingID, checkInDate, checkOutDate string) error
	MarkDeleted(ctx context.Context, bookingID string) error
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

// withTimeout bounds a single store operation, respecting any tighter
// deadline already on the context.
func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingRepository) Insert(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, bookingID string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var booking model.Booking
	err := r.collection.FindOne(ctx, bson.M{"_id": bookingID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindActiveByRoom(ctx context.Context, roomID string) ([]*model.Booking, error) {
	return r.findActive(ctx, bson.M{"roomId": roomID})
}

func (r *mongoBookingRepository) FindActiveByUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	return r.findActive(ctx, bson.M{"userId": userID})
}

func (r *mongoBookingRepository) FindActiveByRoomAndUser(ctx context.Context, roomID, userID string) ([]*model.Booking, error) {
	return r.findActive(ctx, bson.M{"roomId": roomID, "userId": userID})
}

func (r *mongoBookingRepository) findActive(ctx context.Context, filter bson.M) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter["deleted"] = false

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

// UpdateDates writes only the two date fields. roomId, userId and the
// deleted flag are untouched.
func (r *mongoBookingRepository) UpdateDates(ctx context.Context, bookingID, checkInDate, checkOutDate string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"checkInDate":  checkInDate,
			"checkOutDate": checkOutDate,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": bookingID}, update)
	if err != nil {
		return fmt.Errorf("failed to update booking dates: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingserrors.ErrNotFound
	}

	return nil
}

// MarkDeleted flips the tombstone flag via a targeted field update. It
// matches tombstoned records too, so repeating it succeeds.
func (r *mongoBookingRepository) MarkDeleted(ctx context.Context, bookingID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"deleted": true}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": bookingID}, update)
	if err != nil {
		return fmt.Errorf("failed to soft-delete booking: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingserrors.ErrNotFound
	}

	return nil
}
