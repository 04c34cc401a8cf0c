package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phanendrananabala-lab/hotel-room-booking-system/pkg/logger"
	"github.com/phanendrananabala-lab/hotel-room-booking-system/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return v.Message
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()

	// Report fields by their json names so messages match the wire payload
	// ("Missing roomId", not "Missing RoomID").
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

// Validate runs the structural checks in field order and reports only the
// first failure. Date fields must parse as calendar dates; the relative
// order of checkInDate and checkOutDate is not checked.
func (v *BookingValidator) Validate(booking *model.Booking) error {
	if booking == nil {
		return ValidationError{Field: "booking", Message: "Booking payload is missing"}
	}

	if err := v.validate.Struct(booking); err != nil {
		return v.firstFailure(err)
	}

	return nil
}

// ValidateUpdate checks only the date fields. roomId and userId in the
// payload are accepted and ignored upstream.
func (v *BookingValidator) ValidateUpdate(update *model.BookingUpdate) error {
	if update == nil {
		return ValidationError{Field: "booking", Message: "Booking payload is missing"}
	}

	if err := v.validate.Struct(update); err != nil {
		return v.firstFailure(err)
	}

	return nil
}

func (v *BookingValidator) firstFailure(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return err
	}

	first := validationErrs[0]

	var message string
	switch first.Tag() {
	case "required":
		message = fmt.Sprintf("Missing %s", first.Field())
	case "datetime":
		message = fmt.Sprintf("Invalid %s", first.Field())
	default:
		message = first.Error()
	}

	return ValidationError{
		Field:   first.Field(),
		Message: message,
	}
}
