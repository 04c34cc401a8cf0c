package main

import (
	"github.com/phanendrananabala-lab/hotel-room-booking-system/internal/bookings/events"
	"github.com/phanendrananabala-lab/hotel-room-booking-system/internal/bookings/handler"
	"github.com/phanendrananabala-lab/hotel-room-booking-system/internal/bookings/repository"
	"github.com/phanendrananabala-lab/hotel-room-booking-system/internal/bookings/service"
	"github.com/phanendrananabala-lab/hotel-room-booking-system/internal/bookings/validator"
	"github.com/phanendrananabala-lab/hotel-room-booking-system/pkg/app"
	"github.com/phanendrananabala-lab/hotel-room-booking-system/pkg/config"
	"github.com/phanendrananabala-lab/hotel-room-booking-system/pkg/kafka"
	kafkaconfig "github.com/phanendrananabala-lab/hotel-room-booking-system/pkg/kafka/config"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Bookings service")

	serverApp := app.NewApplication(cfg)
	bookingService := initServices(cfg, serverApp)
	serverApp.SetApp(handler.NewBookingHandler(bookingService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config, serverApp *app.Application) service.BookingService {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	lockRepo := repository.NewBookingLockRepository(cfg)
	detector := service.NewConflictDetector(bookingRepo, cfg.Log)

	bookingService := service.NewBookingService(
		bookingRepo,
		lockRepo,
		detector,
		bookingValidator,
		initPublisher(cfg, serverApp),
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}

func initPublisher(cfg *config.Config, serverApp *app.Application) service.EventPublisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
		return events.NewNoopPublisher()
	}

	kafkaCfg, err := kafkaconfig.Load()
	if err != nil {
		cfg.Log.Fatal("Failed to load Kafka configuration", "error", err)
	}

	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	serverApp.RegisterOnShutdown(func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	})

	cfg.Log.Info("Kafka booking event publisher initialized", "topic", cfg.KafkaTopic)
	return events.NewKafkaPublisher(producer, cfg.Log)
}
