package service

import (
	"context"
	"errors"
	"time"

	calendarservice "reservd/internal/calendars/service"
	reservationsrepo "reservd/internal/reservations/repository"
	resourceserrors "reservd/internal/resources/errors"
	resourcesrepo "reservd/internal/resources/repository"
	"reservd/pkg/config"
	apperrors "reservd/pkg/errors"
	"reservd/pkg/model"
	"reservd/pkg/timegrid"
)

// AvailabilityService answers "which slots are open" for one resource on
// one date. Reads take no locks; a slot shown here can still lose the
// race at booking time.
type AvailabilityService interface {
	// GetAvailability lists the open slots. now anchors the lead-time
	// filter and is supplied by the caller, keeping the computation
	// deterministic.
	GetAvailability(ctx context.Context, resourceID, date string, now time.Time) ([]model.Slot, error)
}

type availabilityService struct {
	resources    resourcesrepo.ResourceRepository
	reservations reservationsrepo.ReservationRepository
	calendar     calendarservice.CalendarService
	cfg          *config.Config
}

func NewAvailabilityService(
	resources resourcesrepo.ResourceRepository,
	reservations reservationsrepo.ReservationRepository,
	calendar calendarservice.CalendarService,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		resources:    resources,
		reservations: reservations,
		calendar:     calendar,
		cfg:          cfg,
	}
}

func (s *availabilityService) GetAvailability(ctx context.Context, resourceID, date string, now time.Time) ([]model.Slot, error) {
	if resourceID == "" {
		return nil, apperrors.InvalidInput("Resource ID cannot be empty")
	}
	if _, err := timegrid.ParseDate(date); err != nil {
		return nil, apperrors.InvalidInput("date must be a YYYY-MM-DD date")
	}

	res, err := s.findResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	slots := []model.Slot{}
	if !res.Active {
		return slots, nil
	}

	hours, err := s.calendar.EffectiveHoursFor(ctx, res, date)
	if err != nil {
		return nil, err
	}
	if hours.Closed {
		return slots, nil
	}

	open, err := timegrid.ParseClock(hours.Open)
	if err != nil {
		s.cfg.Log.Error("Stored hours are malformed", "resource_id", resourceID, "date", date, "open", hours.Open)
		return nil, apperrors.Internal(err)
	}
	closeAt, err := timegrid.ParseClock(hours.Close)
	if err != nil {
		s.cfg.Log.Error("Stored hours are malformed", "resource_id", resourceID, "date", date, "close", hours.Close)
		return nil, apperrors.Internal(err)
	}

	busy, err := s.busyWindows(ctx, resourceID, date)
	if err != nil {
		return nil, err
	}

	loc, err := res.Location()
	if err != nil {
		s.cfg.Log.Error("Stored time zone is invalid", "resource_id", resourceID, "time_zone", res.TimeZone, "error", err)
		return nil, apperrors.Internal(err)
	}

	slotMin := res.Duration.SlotMinutes
	cutoff := now.Add(time.Duration(res.LeadTime.MinLeadMinutes) * time.Minute)

	for _, start := range openSlots(open, closeAt, slotMin, res.Duration.Step(), busy) {
		instant, err := timegrid.InstantOn(date, start, loc)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		if instant.Before(cutoff) {
			continue
		}
		slots = append(slots, model.Slot{
			StartTime: timegrid.FormatClock(start),
			EndTime:   timegrid.FormatClock(start + slotMin),
		})
	}

	return slots, nil
}

// busyWindows loads the active reservations for the date as minute
// intervals.
func (s *availabilityService) busyWindows(ctx context.Context, resourceID, date string) ([]busyWindow, error) {
	active, err := s.reservations.Search(ctx, resourceID, date, model.ActiveStatuses())
	if err != nil {
		s.cfg.Log.Error("Failed to load active reservations", "resource_id", resourceID, "date", date, "error", err)
		return nil, apperrors.Internal(err)
	}

	busy := make([]busyWindow, 0, len(active))
	for _, rsv := range active {
		start, err := timegrid.ParseClock(rsv.StartTime)
		if err != nil {
			s.cfg.Log.Error("Stored reservation clock is malformed", "reservation_id", rsv.ID, "start_time", rsv.StartTime)
			return nil, apperrors.Internal(err)
		}
		end, err := timegrid.ParseClock(rsv.EndTime)
		if err != nil {
			s.cfg.Log.Error("Stored reservation clock is malformed", "reservation_id", rsv.ID, "end_time", rsv.EndTime)
			return nil, apperrors.Internal(err)
		}
		busy = append(busy, busyWindow{start: start, end: end})
	}
	return busy, nil
}

func (s *availabilityService) findResource(ctx context.Context, resourceID string) (*model.Resource, error) {
	res, err := s.resources.FindByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, resourceserrors.ErrNotFound) {
			return nil, apperrors.ResourceNotFound(resourceID)
		}
		if errors.Is(err, resourceserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid resource ID format")
		}
		s.cfg.Log.Error("Failed to fetch resource", "resource_id", resourceID, "error", err)
		return nil, apperrors.Internal(err)
	}
	return res, nil
}
