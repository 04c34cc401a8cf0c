package events

import (
	"context"

	"github.com/phanendrananabala-lab/hotel-room-booking-system/pkg/kafka"
	"github.com/phanendrananabala-lab/hotel-room-booking-system/pkg/logger"
	"github.com/phanendrananabala-lab/hotel-room-booking-system/pkg/model"
)

const (
	EventBookingCreated = "booking.created"
	EventBookingUpdated = "booking.updated"
	EventBookingDeleted = "booking.deleted"

	eventSource = "bookings-service"
)

// KafkaPublisher emits booking lifecycle events keyed by roomId so events
// for the same room stay ordered within a partition. Publishing is best
// effort: failures are logged and never surfaced to the caller.
type KafkaPublisher struct {
	producer *kafka.Producer
	logger   *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		logger:   log,
	}
}

func (p *KafkaPublisher) BookingCreated(ctx context.Context, booking *model.Booking) {
	p.publish(ctx, EventBookingCreated, booking)
}

func (p *KafkaPublisher) BookingUpdated(ctx context.Context, booking *model.Booking) {
	p.publish(ctx, EventBookingUpdated, booking)
}

func (p *KafkaPublisher) BookingDeleted(ctx context.Context, booking *model.Booking) {
	p.publish(ctx, EventBookingDeleted, booking)
}

func (p *KafkaPublisher) publish(ctx context.Context, eventType string, booking *model.Booking) {
	msg := kafka.NewMessage().
		WithKey(booking.RoomID).
		WithValue(booking).
		WithEventType(eventType).
		WithSource(eventSource).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.logger.Error("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.BookingID,
			"error", err,
		)
		return
	}

	p.logger.Debug("Booking event published",
		"event_type", eventType,
		"booking_id", booking.BookingID,
	)
}

// NoopPublisher is used when Kafka is disabled.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (NoopPublisher) BookingCreated(context.Context, *model.Booking) {}
func (NoopPublisher) BookingUpdated(context.Context, *model.Booking) {}
func (NoopPublisher) BookingDeleted(context.Context, *model.Booking) {}
