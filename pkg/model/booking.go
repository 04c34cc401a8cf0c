package model

import "time"

// DateLayout is the calendar-date format bookings are stored with. Dates
// carry no time-of-day component.
const DateLayout = "2006-01-02"

// Booking is the persisted reservation record. BookingID is assigned by
// the service at creation time and is never client-supplied. RoomID and
// UserID are immutable after creation; only the two dates may change.
type Booking struct {
	BookingID    string `json:"bookingId,omitempty" bson:"_id,omitempty"`
	RoomID       string `json:"roomId" bson:"roomId" validate:"required"`
	UserID       string `json:"userId" bson:"userId" validate:"required"`
	CheckInDate  string `json:"checkInDate" bson:"checkInDate" validate:"required,datetime=2006-01-02"`
	CheckOutDate string `json:"checkOutDate" bson:"checkOutDate" validate:"required,datetime=2006-01-02"`
	Deleted      bool   `json:"deleted" bson:"deleted"`
}

// BookingUpdate carries a date change for an existing booking. roomId and
// userId are accepted on the wire but never applied.
type BookingUpdate struct {
	RoomID       string `json:"roomId,omitempty" validate:"-"`
	UserID       string `json:"userId,omitempty" validate:"-"`
	CheckInDate  string `json:"checkInDate" validate:"required,datetime=2006-01-02"`
	CheckOutDate string `json:"checkOutDate" validate:"required,datetime=2006-01-02"`
}

func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

// Stay returns the parsed check-in and check-out dates.
func (b *Booking) Stay() (checkIn, checkOut time.Time, err error) {
	checkIn, err = ParseDate(b.CheckInDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	checkOut, err = ParseDate(b.CheckOutDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return checkIn, checkOut, nil
}
