package main

import (
	availabilityhandler "reservd/internal/availability/handler"
	availabilityservice "reservd/internal/availability/service"
	calendarsrepo "reservd/internal/calendars/repository"
	calendarsservice "reservd/internal/calendars/service"
	calendarsvalidator "reservd/internal/calendars/validator"
	"reservd/internal/events"
	"reservd/internal/locks"
	"reservd/internal/reservations/handler"
	"reservd/internal/reservations/repository"
	"reservd/internal/reservations/service"
	"reservd/internal/reservations/validator"
	resourcesrepo "reservd/internal/resources/repository"
	"reservd/pkg/app"
	"reservd/pkg/config"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting Reservations service")
	cfg.SetMongo()
	if cfg.LockBackend == config.LockBackendPostgres {
		cfg.SetPostgres()
	}

	ledger, err := repository.New(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize booking ledger", "error", err)
	}

	locker, err := locks.New(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize slot locker", "error", err)
	}

	publisher, err := events.New(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize event publisher", "error", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	}()

	resourceRepo := resourcesrepo.NewMongoResourceRepository(cfg)
	calendarService := calendarsservice.NewCalendarService(
		calendarsrepo.NewMongoOverrideRepository(cfg),
		resourceRepo,
		calendarsvalidator.NewOverrideValidator(cfg.Log),
		cfg,
	)

	reservationService := service.NewReservationService(
		ledger,
		resourceRepo,
		calendarService,
		locker,
		publisher,
		validator.NewReservationValidator(cfg.Log),
		cfg,
	)

	availabilityService := availabilityservice.NewAvailabilityService(
		resourceRepo,
		ledger,
		calendarService,
		cfg,
	)

	cfg.Log.Info("Reservation services initialized",
		"database", cfg.MongoDatabaseName,
		"ledger_backend", cfg.LedgerBackend,
		"lock_backend", cfg.LockBackend,
		"events_backend", cfg.EventsBackend,
	)

	serverApp := app.NewApplication(cfg)
	serverApp.AddWorker(service.NewWorker(ledger, cfg))
	serverApp.SetApp(
		handler.NewReservationHandler(reservationService, cfg.Log),
		availabilityhandler.NewAvailabilityHandler(availabilityService, cfg.Log),
	)
	serverApp.Run()
}
