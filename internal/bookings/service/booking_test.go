package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "github.com/phanendrananabala-lab/hotel-room-booking-system/internal/bookings/errors"
	bookingvalidator "github.com/phanendrananabala-lab/hotel-room-booking-system/internal/bookings/validator"
	"github.com/phanendrananabala-lab/hotel-room-booking-system/pkg/config"
	apperrors "github.com/phanendrananabala-lab/hotel-room-booking-system/pkg/errors"
	"github.com/phanendrananabala-lab/hotel-room-booking-system/pkg/logger"
	"github.com/phanendrananabala-lab/hotel-room-booking-system/pkg/model"
)

type mockBookingRepository struct {
	insertFn                  func(ctx context.Context, booking *model.Booking) error
	findByIDFn                func(ctx context.Context, bookingID string) (*model.Booking, error)
	findActiveByRoomFn        func(ctx context.Context, roomID string) ([]*model.Booking, error)
	findActiveByUserFn        func(ctx context.Context, userID string) ([]*model.Booking, error)
	findActiveByRoomAndUserFn func(ctx context.Context, roomID, userID string) ([]*model.Booking, error)
	updateDatesFn             func(ctx context.Context, bookingID, checkInDate, checkOutDate string) error
	markDeletedFn             func(ctx context.Context, bookingID string) error
}

func (m *mockBookingRepository) Insert(ctx context.Context, booking *model.Booking) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, booking)
	}
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, bookingID string) (*model.Booking, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, bookingID)
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepository) FindActiveByRoom(ctx context.Context, roomID string) ([]*model.Booking, error) {
	if m.findActiveByRoomFn != nil {
		return m.findActiveByRoomFn(ctx, roomID)
	}
	return nil, nil
}

func (m *mockBookingRepository) FindActiveByUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	if m.findActiveByUserFn != nil {
		return m.findActiveByUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockBookingRepository) FindActiveByRoomAndUser(ctx context.Context, roomID, userID string) ([]*model.Booking, error) {
	if m.findActiveByRoomAndUserFn != nil {
		return m.findActiveByRoomAndUserFn(ctx, roomID, userID)
	}
	return nil, nil
}

func (m *mockBookingRepository) UpdateDates(ctx context.Context, bookingID, checkInDate, checkOutDate string) error {
	if m.updateDatesFn != nil {
		return m.updateDatesFn(ctx, bookingID, checkInDate, checkOutDate)
	}
	return nil
}

func (m *mockBookingRepository) MarkDeleted(ctx context.Context, bookingID string) error {
	if m.markDeletedFn != nil {
		return m.markDeletedFn(ctx, bookingID)
	}
	return nil
}

type mockLockRepository struct {
	createFn func(ctx context.Context, lock *model.BookingLock) (*model.BookingLock, error)
	deleteFn func(ctx context.Context, lockID string) error
}

func (m *mockLockRepository) Create(ctx context.Context, lock *model.BookingLock) (*model.BookingLock, error) {
	if m.createFn != nil {
		return m.createFn(ctx, lock)
	}
	return lock, nil
}

func (m *mockLockRepository) Delete(ctx context.Context, lockID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, lockID)
	}
	return nil
}

type recordingPublisher struct {
	created []*model.Booking
	updated []*model.Booking
	deleted []*model.Booking
}

func (p *recordingPublisher) BookingCreated(_ context.Context, b *model.Booking) {
	p.created = append(p.created, b)
}

func (p *recordingPublisher) BookingUpdated(_ context.Context, b *model.Booking) {
	p.updated = append(p.updated, b)
}

func (p *recordingPublisher) BookingDeleted(_ context.Context, b *model.Booking) {
	p.deleted = append(p.deleted, b)
}

type serviceFixture struct {
	repo      *mockBookingRepository
	lockRepo  *mockLockRepository
	publisher *recordingPublisher
	cfg       *config.Config
	service   BookingService
}

func newFixture(t *testing.T, repo *mockBookingRepository, opts ...func(*config.Config)) *serviceFixture {
	t.Helper()

	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.JSON, Output: io.Discard, Service: "test"})
	cfg := &config.Config{
		SlotLockTTL: 10 * time.Second,
		Log:         log,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	lockRepo := &mockLockRepository{}
	publisher := &recordingPublisher{}
	detector := NewConflictDetector(repo, log)
	validator := bookingvalidator.NewBookingValidator(log)

	return &serviceFixture{
		repo:      repo,
		lockRepo:  lockRepo,
		publisher: publisher,
		cfg:       cfg,
		service:   NewBookingService(repo, lockRepo, detector, validator, publisher, cfg),
	}
}

func newBookingPayload() *model.Booking {
	return &model.Booking{
		RoomID:       "R1",
		UserID:       "U1",
		CheckInDate:  "2024-03-01",
		CheckOutDate: "2024-03-05",
	}
}

func assertAppError(t *testing.T, err error, wantCode string, wantStatus int) *apperrors.AppError {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	if !apperrors.IsAppError(err) {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != wantCode {
		t.Errorf("expected code %s, got %s", wantCode, appErr.Code)
	}
	if appErr.StatusCode() != wantStatus {
		t.Errorf("expected status %d, got %d", wantStatus, appErr.StatusCode())
	}
	return appErr
}

func TestCreateSuccess(t *testing.T) {
	var inserted *model.Booking
	repo := &mockBookingRepository{
		insertFn: func(ctx context.Context, booking *model.Booking) error {
			inserted = booking
			return nil
		},
	}
	f := newFixture(t, repo)

	bookingID, err := f.service.Create(context.Background(), newBookingPayload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bookingID == "" {
		t.Error("expected a generated bookingId")
	}
	if inserted == nil {
		t.Fatal("expected the booking to be inserted")
	}
	if inserted.BookingID != bookingID {
		t.Errorf("inserted id %q does not match returned id %q", inserted.BookingID, bookingID)
	}
	if inserted.Deleted {
		t.Error("new bookings must be inserted with deleted=false")
	}
	if len(f.publisher.created) != 1 {
		t.Errorf("expected one created event, got %d", len(f.publisher.created))
	}
}

func TestCreateValidationFailure(t *testing.T) {
	repo := &mockBookingRepository{
		findActiveByRoomAndUserFn: func(ctx context.Context, roomID, userID string) ([]*model.Booking, error) {
			t.Error("conflict check must not run for an invalid payload")
			return nil, nil
		},
	}
	f := newFixture(t, repo)

	payload := newBookingPayload()
	payload.RoomID = ""

	_, err := f.service.Create(context.Background(), payload)
	appErr := assertAppError(t, err, apperrors.CodeInvalidInput, http.StatusBadRequest)
	if appErr.Message != "Missing roomId" {
		t.Errorf("expected %q, got %q", "Missing roomId", appErr.Message)
	}
}

func TestCreateConflict(t *testing.T) {
	repo := &mockBookingRepository{
		findActiveByRoomAndUserFn: func(ctx context.Context, roomID, userID string) ([]*model.Booking, error) {
			return []*model.Booking{
				{BookingID: "b-1", RoomID: roomID, UserID: userID, CheckInDate: "2024-03-03", CheckOutDate: "2024-03-08"},
			}, nil
		},
		insertFn: func(ctx context.Context, booking *model.Booking) error {
			t.Error("a conflicting booking must not be inserted")
			return nil
		},
	}
	f := newFixture(t, repo)

	_, err := f.service.Create(context.Background(), newBookingPayload())
	appErr := assertAppError(t, err, apperrors.CodeConflict, http.StatusBadRequest)
	if appErr.Message != MsgRoomAlreadyBooked {
		t.Errorf("expected %q, got %q", MsgRoomAlreadyBooked, appErr.Message)
	}
	if len(f.publisher.created) != 0 {
		t.Error("no event may be published for a rejected booking")
	}
}

func TestCreateSharedEndpointConflicts(t *testing.T) {
	existing := &model.Booking{BookingID: "b-1", RoomID: "R1", UserID: "U1", CheckInDate: "2024-03-01", CheckOutDate: "2024-03-05"}
	repo := &mockBookingRepository{
		findActiveByRoomAndUserFn: func(ctx context.Context, roomID, userID string) ([]*model.Booking, error) {
			return []*model.Booking{existing}, nil
		},
	}
	f := newFixture(t, repo)

	tests := []struct {
		name                      string
		checkInDate, checkOutDate string
	}{
		{name: "same checkIn", checkInDate: "2024-03-01", checkOutDate: "2024-03-02"},
		{name: "same checkOut", checkInDate: "2024-03-04", checkOutDate: "2024-03-05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := newBookingPayload()
			payload.CheckInDate = tt.checkInDate
			payload.CheckOutDate = tt.checkOutDate

			_, err := f.service.Create(context.Background(), payload)
			assertAppError(t, err, apperrors.CodeConflict, http.StatusBadRequest)
		})
	}
}

func TestCreateDifferentUserSameRoomSucceeds(t *testing.T) {
	// The candidate scan is scoped by roomId AND userId: another user's
	// overlapping booking on the same room is never a candidate.
	repo := &mockBookingRepository{
		findActiveByRoomAndUserFn: func(ctx context.Context, roomID, userID string) ([]*model.Booking, error) {
			if userID == "U2" {
				return nil, nil
			}
			return []*model.Booking{
				{BookingID: "b-1", RoomID: roomID, UserID: "U1", CheckInDate: "2024-03-01", CheckOutDate: "2024-03-05"},
			}, nil
		},
	}
	f := newFixture(t, repo)

	payload := newBookingPayload()
	payload.UserID = "U2"

	if _, err := f.service.Create(context.Background(), payload); err != nil {
		t.Fatalf("expected a different user to book the same room and period, got %v", err)
	}
}

func TestCreateSoftDeletedBookingNotACandidate(t *testing.T) {
	// The repository only returns active bookings; the fixture mirrors
	// that by filtering tombstones out of the candidate set.
	repo := &mockBookingRepository{
		findActiveByRoomAndUserFn: func(ctx context.Context, roomID, userID string) ([]*model.Booking, error) {
			return nil, nil
		},
	}
	f := newFixture(t, repo)

	if _, err := f.service.Create(context.Background(), newBookingPayload()); err != nil {
		t.Fatalf("expected a deleted booking's period to be bookable again, got %v", err)
	}
}

func TestCreateAllowsInvertedDateRange(t *testing.T) {
	// checkIn after checkOut is accepted; the order of the two dates is
	// not validated anywhere.
	f := newFixture(t, &mockBookingRepository{})

	payload := newBookingPayload()
	payload.CheckInDate = "2024-03-10"
	payload.CheckOutDate = "2024-03-01"

	if _, err := f.service.Create(context.Background(), payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateStoreFailureDuringConflictCheck(t *testing.T) {
	repo := &mockBookingRepository{
		findActiveByRoomAndUserFn: func(ctx context.Context, roomID, userID string) ([]*model.Booking, error) {
			return nil, errors.New("connection reset")
		},
		insertFn: func(ctx context.Context, booking *model.Booking) error {
			t.Error("insert must not run when the conflict check failed")
			return nil
		},
	}
	f := newFixture(t, repo)

	_, err := f.service.Create(context.Background(), newBookingPayload())
	assertAppError(t, err, apperrors.CodeUnavailable, http.StatusInternalServerError)
}

func TestCreateInsertFailure(t *testing.T) {
	repo := &mockBookingRepository{
		insertFn: func(ctx context.Context, booking *model.Booking) error {
			return errors.New("write concern error")
		},
	}
	f := newFixture(t, repo)

	_, err := f.service.Create(context.Background(), newBookingPayload())
	assertAppError(t, err, apperrors.CodeUnavailable, http.StatusInternalServerError)
	if len(f.publisher.created) != 0 {
		t.Error("no event may be published for a failed insert")
	}
}

func TestCreateWithSlotLock(t *testing.T) {
	f := newFixture(t, &mockBookingRepository{}, func(cfg *config.Config) {
		cfg.SlotLockEnabled = true
	})

	var createdLock *model.BookingLock
	var released string
	f.lockRepo.createFn = func(ctx context.Context, lock *model.BookingLock) (*model.BookingLock, error) {
		createdLock = lock
		return lock, nil
	}
	f.lockRepo.deleteFn = func(ctx context.Context, lockID string) error {
		released = lockID
		return nil
	}

	if _, err := f.service.Create(context.Background(), newBookingPayload()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if createdLock == nil {
		t.Fatal("expected a lock to be acquired")
	}
	if createdLock.ID != "booking_lock_R1" {
		t.Errorf("expected lock id booking_lock_R1, got %q", createdLock.ID)
	}
	if released != createdLock.ID {
		t.Errorf("expected lock %q to be released, got %q", createdLock.ID, released)
	}
}

func TestCreateSlotLockContention(t *testing.T) {
	f := newFixture(t, &mockBookingRepository{
		findActiveByRoomAndUserFn: func(ctx context.Context, roomID, userID string) ([]*model.Booking, error) {
			t.Error("conflict check must not run while the room is locked elsewhere")
			return nil, nil
		},
	}, func(cfg *config.Config) {
		cfg.SlotLockEnabled = true
	})

	f.lockRepo.createFn = func(ctx context.Context, lock *model.BookingLock) (*model.BookingLock, error) {
		return nil, mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
	}

	_, err := f.service.Create(context.Background(), newBookingPayload())
	appErr := assertAppError(t, err, apperrors.CodeConflict, http.StatusBadRequest)
	if appErr.Message != MsgLockContention {
		t.Errorf("expected %q, got %q", MsgLockContention, appErr.Message)
	}
}

func TestUpdateSuccess(t *testing.T) {
	var gotCheckIn, gotCheckOut string
	repo := &mockBookingRepository{
		findByIDFn: func(ctx context.Context, bookingID string) (*model.Booking, error) {
			return &model.Booking{BookingID: bookingID, RoomID: "R1", UserID: "U1", CheckInDate: "2024-03-01", CheckOutDate: "2024-03-05"}, nil
		},
		updateDatesFn: func(ctx context.Context, bookingID, checkInDate, checkOutDate string) error {
			gotCheckIn, gotCheckOut = checkInDate, checkOutDate
			return nil
		},
	}
	f := newFixture(t, repo)

	update := &model.BookingUpdate{
		RoomID:       "ignored-room",
		UserID:       "ignored-user",
		CheckInDate:  "2024-04-01",
		CheckOutDate: "2024-04-03",
	}

	if err := f.service.Update(context.Background(), "b-1", update); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotCheckIn != "2024-04-01" || gotCheckOut != "2024-04-03" {
		t.Errorf("expected only the dates to be written, got %q/%q", gotCheckIn, gotCheckOut)
	}
	if len(f.publisher.updated) != 1 {
		t.Errorf("expected one updated event, got %d", len(f.publisher.updated))
	}
}

func TestUpdateNotFound(t *testing.T) {
	f := newFixture(t, &mockBookingRepository{
		findByIDFn: func(ctx context.Context, bookingID string) (*model.Booking, error) {
			return nil, bookingserrors.ErrNotFound
		},
	})

	err := f.service.Update(context.Background(), "missing", &model.BookingUpdate{CheckInDate: "2024-04-01", CheckOutDate: "2024-04-03"})
	appErr := assertAppError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
	if appErr.Message != MsgNoBookingForID {
		t.Errorf("expected %q, got %q", MsgNoBookingForID, appErr.Message)
	}
}

func TestUpdateSkipsConflictCheckByDefault(t *testing.T) {
	// Moving a booking onto another user's dates or even the same user's
	// other booking is accepted unless the re-check flag is on.
	repo := &mockBookingRepository{
		findByIDFn: func(ctx context.Context, bookingID string) (*model.Booking, error) {
			return &model.Booking{BookingID: bookingID, RoomID: "R1", UserID: "U1", CheckInDate: "2024-03-01", CheckOutDate: "2024-03-05"}, nil
		},
		findActiveByRoomAndUserFn: func(ctx context.Context, roomID, userID string) ([]*model.Booking, error) {
			t.Error("the baseline update must not run the conflict check")
			return nil, nil
		},
	}
	f := newFixture(t, repo)

	err := f.service.Update(context.Background(), "b-1", &model.BookingUpdate{CheckInDate: "2024-04-01", CheckOutDate: "2024-04-03"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpdateConflictRecheck(t *testing.T) {
	target := &model.Booking{BookingID: "b-1", RoomID: "R1", UserID: "U1", CheckInDate: "2024-03-01", CheckOutDate: "2024-03-05"}
	other := &model.Booking{BookingID: "b-2", RoomID: "R1", UserID: "U1", CheckInDate: "2024-04-01", CheckOutDate: "2024-04-05"}

	repo := &mockBookingRepository{
		findByIDFn: func(ctx context.Context, bookingID string) (*model.Booking, error) {
			return target, nil
		},
		findActiveByRoomAndUserFn: func(ctx context.Context, roomID, userID string) ([]*model.Booking, error) {
			return []*model.Booking{target, other}, nil
		},
	}
	f := newFixture(t, repo, func(cfg *config.Config) {
		cfg.ConflictRecheckOnUpdate = true
	})

	// Overlapping the other booking is rejected.
	err := f.service.Update(context.Background(), "b-1", &model.BookingUpdate{CheckInDate: "2024-04-02", CheckOutDate: "2024-04-06"})
	assertAppError(t, err, apperrors.CodeConflict, http.StatusBadRequest)

	// Overlapping only itself is fine: the booking under update is
	// excluded from the candidate set.
	err = f.service.Update(context.Background(), "b-1", &model.BookingUpdate{CheckInDate: "2024-03-02", CheckOutDate: "2024-03-06"})
	if err != nil {
		t.Fatalf("expected the booking to move within its own range, got %v", err)
	}
}

func TestDeleteSuccess(t *testing.T) {
	var deletedID string
	repo := &mockBookingRepository{
		findByIDFn: func(ctx context.Context, bookingID string) (*model.Booking, error) {
			return &model.Booking{BookingID: bookingID, RoomID: "R1", UserID: "U1", CheckInDate: "2024-03-01", CheckOutDate: "2024-03-05"}, nil
		},
		markDeletedFn: func(ctx context.Context, bookingID string) error {
			deletedID = bookingID
			return nil
		},
	}
	f := newFixture(t, repo)

	if err := f.service.Delete(context.Background(), "b-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deletedID != "b-1" {
		t.Errorf("expected b-1 to be tombstoned, got %q", deletedID)
	}
	if len(f.publisher.deleted) != 1 {
		t.Errorf("expected one deleted event, got %d", len(f.publisher.deleted))
	}
}

func TestDeleteNotFound(t *testing.T) {
	f := newFixture(t, &mockBookingRepository{})

	err := f.service.Delete(context.Background(), "missing")
	assertAppError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
}

func TestDeleteAlreadyDeletedSucceeds(t *testing.T) {
	// The pre-delete lookup has no deleted filter, so a second delete
	// finds the tombstoned record and succeeds again.
	repo := &mockBookingRepository{
		findByIDFn: func(ctx context.Context, bookingID string) (*model.Booking, error) {
			return &model.Booking{BookingID: bookingID, RoomID: "R1", UserID: "U1", CheckInDate: "2024-03-01", CheckOutDate: "2024-03-05", Deleted: true}, nil
		},
	}
	f := newFixture(t, repo)

	if err := f.service.Delete(context.Background(), "b-1"); err != nil {
		t.Fatalf("expected repeated delete to succeed, got %v", err)
	}
}

func TestFindByRoom(t *testing.T) {
	t.Run("returns active bookings", func(t *testing.T) {
		f := newFixture(t, &mockBookingRepository{
			findActiveByRoomFn: func(ctx context.Context, roomID string) ([]*model.Booking, error) {
				return []*model.Booking{
					{BookingID: "b-1", RoomID: roomID, UserID: "U1", CheckInDate: "2024-03-01", CheckOutDate: "2024-03-05"},
				}, nil
			},
		})

		bookings, err := f.service.FindByRoom(context.Background(), "R1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(bookings) != 1 {
			t.Errorf("expected 1 booking, got %d", len(bookings))
		}
	})

	t.Run("empty result is not found", func(t *testing.T) {
		f := newFixture(t, &mockBookingRepository{})

		_, err := f.service.FindByRoom(context.Background(), "empty-room")
		appErr := assertAppError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
		if appErr.Message != MsgNoBookingsForRoom {
			t.Errorf("expected %q, got %q", MsgNoBookingsForRoom, appErr.Message)
		}
	})

	t.Run("store failure is unavailable", func(t *testing.T) {
		f := newFixture(t, &mockBookingRepository{
			findActiveByRoomFn: func(ctx context.Context, roomID string) ([]*model.Booking, error) {
				return nil, errors.New("connection reset")
			},
		})

		_, err := f.service.FindByRoom(context.Background(), "R1")
		assertAppError(t, err, apperrors.CodeUnavailable, http.StatusInternalServerError)
	})
}

func TestFindByUser(t *testing.T) {
	t.Run("empty result is not found", func(t *testing.T) {
		f := newFixture(t, &mockBookingRepository{})

		_, err := f.service.FindByUser(context.Background(), "nobody")
		appErr := assertAppError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
		if appErr.Message != MsgNoBookingsForUser {
			t.Errorf("expected %q, got %q", MsgNoBookingsForUser, appErr.Message)
		}
	})

	t.Run("returns active bookings", func(t *testing.T) {
		f := newFixture(t, &mockBookingRepository{
			findActiveByUserFn: func(ctx context.Context, userID string) ([]*model.Booking, error) {
				return []*model.Booking{
					{BookingID: "b-1", RoomID: "R1", UserID: userID, CheckInDate: "2024-03-01", CheckOutDate: "2024-03-05"},
					{BookingID: "b-2", RoomID: "R2", UserID: userID, CheckInDate: "2024-04-01", CheckOutDate: "2024-04-05"},
				}, nil
			},
		})

		bookings, err := f.service.FindByUser(context.Background(), "U1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(bookings) != 2 {
			t.Errorf("expected 2 bookings, got %d", len(bookings))
		}
	})
}
