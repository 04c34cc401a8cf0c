package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "github.com/phanendrananabala-lab/hotel-room-booking-system/internal/bookings/errors"
	"github.com/phanendrananabala-lab/hotel-room-booking-system/internal/bookings/repository"
	bookingvalidator "github.com/phanendrananabala-lab/hotel-room-booking-system/internal/bookings/validator"
	"github.com/phanendrananabala-lab/hotel-room-booking-system/pkg/config"
	apperrors "github.com/phanendrananabala-lab/hotel-room-booking-system/pkg/errors"
	"github.com/phanendrananabala-lab/hotel-room-booking-system/pkg/logger"
	"github.com/phanendrananabala-lab/hotel-room-booking-system/pkg/model"
)

const (
	MsgRoomAlreadyBooked = "Room already booked for this period by this user"
	MsgNoBookingForID    = "No booking found with the given bookingid"
	MsgNoBookingsForRoom = "No bookings found for the given roomid"
	MsgNoBookingsForUser = "No bookings found for the given userid"
	MsgLockContention    = "Room is currently being booked by another request. Please try again."
)

// EventPublisher emits booking lifecycle events. Implementations are best
// effort: they must never fail the request.
type EventPublisher interface {
	BookingCreated(ctx context.Context, booking *model.Booking)
	BookingUpdated(ctx context.Context, booking *model.Booking)
	BookingDeleted(ctx context.Context, booking *model.Booking)
}

type BookingService interface {
	Create(ctx context.Context, booking *model.Booking) (string, error)
	Update(ctx context.Context, bookingID string, update *model.BookingUpdate) error
	Delete(ctx context.Context, bookingID string) error
	FindByRoom(ctx context.Context, roomID string) ([]*model.Booking, error)
	FindByUser(ctx context.Context, userID string) ([]*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.BookingLockRepository
	detector  *ConflictDetector
	validator *bookingvalidator.BookingValidator
	publisher EventPublisher
	cfg       *config.Config
	logger    *logger.Logger
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.BookingLockRepository,
	detector *ConflictDetector,
	validator *bookingvalidator.BookingValidator,
	publisher EventPublisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		detector:  detector,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		logger:    cfg.Log,
	}
}

func (s *bookingService) Create(ctx context.Context, booking *model.Booking) (string, error) {
	if err := s.validator.Validate(booking); err != nil {
		return "", apperrors.InvalidInput(err.Error())
	}

	checkIn, checkOut, err := booking.Stay()
	if err != nil {
		return "", apperrors.InvalidInput(err.Error())
	}

	if s.cfg.SlotLockEnabled {
		release, err := s.acquireSlotLock(ctx, booking.RoomID)
		if err != nil {
			return "", err
		}
		defer release()
	}

	conflict, err := s.detector.HasConflict(ctx, booking.RoomID, booking.UserID, checkIn, checkOut, "")
	if err != nil {
		return "", apperrors.Unavailable("Error fetching bookings from database", err)
	}
	if conflict {
		return "", apperrors.Conflict(MsgRoomAlreadyBooked)
	}

	booking.BookingID = uuid.New().String()
	booking.Deleted = false

	if err := s.repo.Insert(ctx, booking); err != nil {
		return "", apperrors.Unavailable("Failed to create booking", err)
	}

	s.logger.Info("Booking created",
		"booking_id", booking.BookingID,
		"room_id", booking.RoomID,
		"user_id", booking.UserID,
	)
	s.publisher.BookingCreated(ctx, booking)

	return booking.BookingID, nil
}

func (s *bookingService) Update(ctx context.Context, bookingID string, update *model.BookingUpdate) error {
	existing, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFound(MsgNoBookingForID)
		}
		return apperrors.Unavailable("Failed to fetch booking", err)
	}

	if err := s.validator.ValidateUpdate(update); err != nil {
		return apperrors.InvalidInput(err.Error())
	}

	checkIn, err := model.ParseDate(update.CheckInDate)
	if err != nil {
		return apperrors.InvalidInput("Invalid checkInDate")
	}
	checkOut, err := model.ParseDate(update.CheckOutDate)
	if err != nil {
		return apperrors.InvalidInput("Invalid checkOutDate")
	}

	if s.cfg.ConflictRecheckOnUpdate {
		conflict, err := s.detector.HasConflict(ctx, existing.RoomID, existing.UserID, checkIn, checkOut, existing.BookingID)
		if err != nil {
			return apperrors.Unavailable("Error fetching bookings from database", err)
		}
		if conflict {
			return apperrors.Conflict(MsgRoomAlreadyBooked)
		}
	}

	if err := s.repo.UpdateDates(ctx, bookingID, update.CheckInDate, update.CheckOutDate); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFound(MsgNoBookingForID)
		}
		return apperrors.Unavailable("Failed to update booking", err)
	}

	existing.CheckInDate = update.CheckInDate
	existing.CheckOutDate = update.CheckOutDate

	s.logger.Info("Booking updated",
		"booking_id", bookingID,
		"check_in_date", update.CheckInDate,
		"check_out_date", update.CheckOutDate,
	)
	s.publisher.BookingUpdated(ctx, existing)

	return nil
}

func (s *bookingService) Delete(ctx context.Context, bookingID string) error {
	// Lookup has no deleted filter, so deleting an already-deleted
	// booking finds it and succeeds again.
	existing, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFound(MsgNoBookingForID)
		}
		return apperrors.Unavailable("Failed to fetch booking", err)
	}

	if err := s.repo.MarkDeleted(ctx, bookingID); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFound(MsgNoBookingForID)
		}
		return apperrors.Unavailable("Failed to delete booking", err)
	}

	existing.Deleted = true

	s.logger.Info("Booking soft-deleted", "booking_id", bookingID)
	s.publisher.BookingDeleted(ctx, existing)

	return nil
}

func (s *bookingService) FindByRoom(ctx context.Context, roomID string) ([]*model.Booking, error) {
	bookings, err := s.repo.FindActiveByRoom(ctx, roomID)
	if err != nil {
		return nil, apperrors.Unavailable("Error fetching bookings from database", err)
	}
	if len(bookings) == 0 {
		return nil, apperrors.NotFound(MsgNoBookingsForRoom)
	}
	return bookings, nil
}

func (s *bookingService) FindByUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	bookings, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Unavailable("Error fetching bookings from database", err)
	}
	if len(bookings) == 0 {
		return nil, apperrors.NotFound(MsgNoBookingsForUser)
	}
	return bookings, nil
}

// acquireSlotLock serializes concurrent creates on the same room. The
// returned release func is safe to defer; the TTL index reaps locks left
// behind by a crashed process.
func (s *bookingService) acquireSlotLock(ctx context.Context, roomID string) (func(), error) {
	lock := &model.BookingLock{
		ID:        fmt.Sprintf("booking_lock_%s", roomID),
		ExpiresAt: time.Now().Add(s.cfg.SlotLockTTL),
	}

	if _, err := s.lockRepo.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Conflict(MsgLockContention)
		}
		return nil, apperrors.Unavailable("Failed to acquire booking lock", err)
	}

	release := func() {
		if err := s.lockRepo.Delete(context.WithoutCancel(ctx), lock.ID); err != nil {
			s.logger.Warn("Failed to release booking lock",
				"lock_id", lock.ID,
				"error", err,
			)
		}
	}

	return release, nil
}
