package main

import (
	calendarshandler "reservd/internal/calendars/handler"
	calendarsrepo "reservd/internal/calendars/repository"
	calendarsservice "reservd/internal/calendars/service"
	calendarsvalidator "reservd/internal/calendars/validator"
	"reservd/internal/resources/handler"
	"reservd/internal/resources/repository"
	"reservd/internal/resources/service"
	"reservd/internal/resources/validator"
	"reservd/pkg/app"
	"reservd/pkg/config"
)

const ServiceName = "resources"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting Resources service")
	cfg.SetMongo()

	resourceService, calendarService := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewResourceHandler(resourceService, cfg.Log),
		calendarshandler.NewCalendarHandler(calendarService, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config) (service.ResourceService, calendarsservice.CalendarService) {
	resourceRepo := repository.NewMongoResourceRepository(cfg)
	resourceService := service.NewResourceService(
		resourceRepo,
		validator.NewResourceValidator(cfg.Log),
		cfg,
	)

	calendarService := calendarsservice.NewCalendarService(
		calendarsrepo.NewMongoOverrideRepository(cfg),
		resourceRepo,
		calendarsvalidator.NewOverrideValidator(cfg.Log),
		cfg,
	)

	cfg.Log.Info("Resource services initialized", "database", cfg.MongoDatabaseName)
	return resourceService, calendarService
}
