package service

import (
	"context"
	"fmt"
	"time"

	"github.com/phanendrananabala-lab/hotel-room-booking-system/internal/bookings/repository"
	"github.com/phanendrananabala-lab/hotel-room-booking-system/pkg/logger"
)

// ConflictDetector decides whether a requested stay collides with an
// existing active booking. The candidate set is scoped by both roomId and
// userId: two different users may hold overlapping bookings on the same
// room.
type ConflictDetector struct {
	repo   repository.BookingRepository
	logger *logger.Logger
}

func NewConflictDetector(repo repository.BookingRepository, log *logger.Logger) *ConflictDetector {
	return &ConflictDetector{
		repo:   repo,
		logger: log,
	}
}

// HasConflict reports whether [newCheckIn, newCheckOut) collides with any
// active booking for (roomID, userID). excludeID skips a single booking id
// (the booking being updated); pass "" on create.
//
// A store failure or an unparseable stored date is an error, never a
// silent "no conflict".
func (d *ConflictDetector) HasConflict(ctx context.Context, roomID, userID string, newCheckIn, newCheckOut time.Time, excludeID string) (bool, error) {
	existing, err := d.repo.FindActiveByRoomAndUser(ctx, roomID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to fetch candidate bookings: %w", err)
	}

	for _, booking := range existing {
		if excludeID != "" && booking.BookingID == excludeID {
			continue
		}

		existingCheckIn, existingCheckOut, err := booking.Stay()
		if err != nil {
			return false, fmt.Errorf("stored booking %s has malformed dates: %w", booking.BookingID, err)
		}

		if rangesConflict(newCheckIn, newCheckOut, existingCheckIn, existingCheckOut) {
			d.logger.Info("Booking conflict detected",
				"room_id", roomID,
				"user_id", userID,
				"conflicting_booking_id", booking.BookingID,
			)
			return true, nil
		}
	}

	return false, nil
}

// rangesConflict is the overlap predicate. Stays are half-open
// (checkOut day is free for a new checkIn), except that sharing either
// endpoint exactly always counts as a conflict.
func rangesConflict(newCheckIn, newCheckOut, existingCheckIn, existingCheckOut time.Time) bool {
	if newCheckIn.Before(existingCheckOut) && newCheckOut.After(existingCheckIn) {
		return true
	}
	return newCheckIn.Equal(existingCheckIn) || newCheckOut.Equal(existingCheckOut)
}
