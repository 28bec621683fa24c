package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	calendarservice "reservd/internal/calendars/service"
	"reservd/internal/events"
	"reservd/internal/locks"
	reservationserrors "reservd/internal/reservations/errors"
	"reservd/internal/reservations/repository"
	"reservd/internal/reservations/validator"
	resourceserrors "reservd/internal/resources/errors"
	resourcesrepo "reservd/internal/resources/repository"
	"reservd/pkg/config"
	apperrors "reservd/pkg/errors"
	"reservd/pkg/model"
	"reservd/pkg/sanitizer"
	"reservd/pkg/timegrid"

	"github.com/sethvargo/go-retry"
)

// ReservationService is the booking coordinator. Writes serialize on a
// per-(resource, date) token, re-validate the slot under that token and
// commit the conflict check and the insert as one transaction; reads
// take no locks.
type ReservationService interface {
	// Book confirms the requested slot or fails with a taxonomy error:
	// SlotConflict and InvalidSlot are final for the request, Busy means
	// the same request may succeed on retry. now anchors the lead-time
	// check and is supplied by the caller.
	Book(ctx context.Context, req *model.BookingRequest, now time.Time) (*model.Reservation, error)

	// Cancel frees the slot. Cancelling an already cancelled or completed
	// reservation is a no-op success and emits nothing.
	Cancel(ctx context.Context, id string) (*model.Reservation, error)

	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	GetAll(ctx context.Context, businessID string, limit int, offset int64) ([]*model.Reservation, int64, error)
	Search(ctx context.Context, resourceID, date string, statuses []string) ([]*model.Reservation, error)
}

type reservationService struct {
	repo      repository.ReservationRepository
	resources resourcesrepo.ResourceRepository
	calendar  calendarservice.CalendarService
	locker    locks.Locker
	publisher events.Publisher
	validator *validator.ReservationValidator
	cfg       *config.Config
}

func NewReservationService(
	repo repository.ReservationRepository,
	resources resourcesrepo.ResourceRepository,
	calendar calendarservice.CalendarService,
	locker locks.Locker,
	publisher events.Publisher,
	validator *validator.ReservationValidator,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:      repo,
		resources: resources,
		calendar:  calendar,
		locker:    locker,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *reservationService) Book(ctx context.Context, req *model.BookingRequest, now time.Time) (*model.Reservation, error) {
	s.sanitize(req)
	if err := s.validator.ValidateBooking(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed",
			"resource_id", req.ResourceID,
			"date", req.Date,
			"error", err,
		)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	res, err := s.findResource(ctx, req.ResourceID)
	if err != nil {
		return nil, err
	}
	if !res.Active {
		return nil, apperrors.InvalidSlot("resource is not accepting reservations")
	}

	// The duration policy is fixed per resource; omitting the duration
	// means "use the policy", anything else must match it.
	duration := req.DurationMin
	if duration == 0 {
		duration = res.Duration.SlotMinutes
	} else if duration != res.Duration.SlotMinutes {
		return nil, apperrors.InvalidSlot(fmt.Sprintf("duration must be %d minutes", res.Duration.SlotMinutes))
	}

	startMin, err := timegrid.ParseClock(req.StartTime)
	if err != nil {
		return nil, apperrors.InvalidSlot("start time must be an HH:MM clock")
	}
	endMin := startMin + duration

	release, err := s.acquireSlotToken(ctx, res.ID, req.Date)
	if err != nil {
		return nil, err
	}
	defer release()

	// Re-resolved under the token: a closure or booking written a moment
	// ago is seen here, not the stale availability the client read.
	if err := s.checkSlot(ctx, res, req.Date, startMin, endMin, now); err != nil {
		return nil, err
	}

	rsv := &model.Reservation{
		BusinessID:  res.BusinessID,
		ResourceID:  res.ID,
		Date:        req.Date,
		StartTime:   timegrid.FormatClock(startMin),
		EndTime:     timegrid.FormatClock(endMin),
		DurationMin: duration,
		Status:      model.StatusConfirmed,
	}

	txErr := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		conflicts, err := s.repo.FindConflicts(txCtx, rsv.ResourceID, rsv.Date, rsv.StartTime, rsv.EndTime)
		if err != nil {
			return apperrors.Internal(err)
		}
		if len(conflicts) > 0 {
			return apperrors.SlotConflict(rsv.ResourceID, rsv.Date, rsv.StartTime)
		}
		if err := s.repo.Create(txCtx, rsv); err != nil {
			return apperrors.Internal(err)
		}
		return nil
	})
	if txErr != nil {
		if apperrors.IsCode(txErr, apperrors.CodeSlotConflict) {
			s.cfg.Log.Info("Booking lost the slot",
				"resource_id", rsv.ResourceID,
				"date", rsv.Date,
				"start_time", rsv.StartTime,
			)
		} else {
			s.cfg.Log.Error("Failed to commit booking",
				"resource_id", rsv.ResourceID,
				"date", rsv.Date,
				"start_time", rsv.StartTime,
				"error", txErr,
			)
		}
		return nil, txErr
	}
	release()

	s.publish(ctx, rsv, events.ActionBooked)

	s.cfg.Log.Info("Reservation confirmed",
		"id", rsv.ID,
		"resource_id", rsv.ResourceID,
		"date", rsv.Date,
		"start_time", rsv.StartTime,
		"end_time", rsv.EndTime,
	)
	return rsv, nil
}

func (s *reservationService) Cancel(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	rsv, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rsv.Active() {
		return rsv, nil
	}

	release, err := s.acquireSlotToken(ctx, rsv.ResourceID, rsv.Date)
	if err != nil {
		return nil, err
	}
	defer release()

	var freed bool
	txErr := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		current, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return apperrors.Internal(err)
		}
		if !current.Active() {
			// Someone else finished it first; nothing to free.
			rsv = current
			return nil
		}
		if err := s.repo.UpdateStatus(txCtx, id, model.StatusCancelled); err != nil {
			return apperrors.Internal(err)
		}
		current.Status = model.StatusCancelled
		rsv = current
		freed = true
		return nil
	})
	if txErr != nil {
		s.cfg.Log.Error("Failed to cancel reservation", "id", id, "error", txErr)
		return nil, txErr
	}
	release()

	if freed {
		s.publish(ctx, rsv, events.ActionFreed)
		s.cfg.Log.Info("Reservation cancelled",
			"id", id,
			"resource_id", rsv.ResourceID,
			"date", rsv.Date,
			"start_time", rsv.StartTime,
		)
	}
	return rsv, nil
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	rsv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("reservation", id)
		}
		if errors.Is(err, reservationserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid reservation ID format")
		}
		s.cfg.Log.Error("Failed to get reservation by ID", "id", id, "error", err)
		return nil, apperrors.Internal(err)
	}
	return rsv, nil
}

func (s *reservationService) GetAll(ctx context.Context, businessID string, limit int, offset int64) ([]*model.Reservation, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(ctx, businessID)
		if err != nil {
			s.cfg.Log.Error("Failed to count reservations", "business_id", businessID, "error", err)
			errCount = apperrors.Internal(err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		reservations, err = s.repo.FindAll(ctx, businessID, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list reservations",
				"business_id", businessID,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal(err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return reservations, count, nil
}

func (s *reservationService) Search(ctx context.Context, resourceID, date string, statuses []string) ([]*model.Reservation, error) {
	if resourceID == "" {
		return nil, apperrors.InvalidInput("Resource ID cannot be empty")
	}
	if _, err := timegrid.ParseDate(date); err != nil {
		return nil, apperrors.InvalidInput("date must be a YYYY-MM-DD date")
	}

	statuses = sanitizer.SanitizeSlice(statuses, sanitizer.TrimAndLower)
	if err := s.validator.ValidateStatuses(statuses); err != nil {
		return nil, apperrors.Validation("Invalid status filter", map[string]any{
			"error": err.Error(),
		})
	}

	reservations, err := s.repo.Search(ctx, resourceID, date, statuses)
	if err != nil {
		s.cfg.Log.Error("Failed to search reservations",
			"resource_id", resourceID,
			"date", date,
			"error", err,
		)
		return nil, apperrors.Internal(err)
	}
	return reservations, nil
}

// --- Helpers ---

func (s *reservationService) sanitize(req *model.BookingRequest) {
	req.ResourceID = sanitizer.TrimAndLower(req.ResourceID)
	req.Date = strings.TrimSpace(req.Date)
	req.StartTime = strings.TrimSpace(req.StartTime)
}

// acquireSlotToken serializes writers on one (resource, date). Contended
// attempts back off and retry; exhaustion surfaces as Busy, which the
// caller may retry as-is, unlike SlotConflict, which is final.
func (s *reservationService) acquireSlotToken(ctx context.Context, resourceID, date string) (locks.ReleaseFunc, error) {
	key := locks.Key(resourceID, date)

	var release locks.ReleaseFunc
	backoff := retry.WithMaxRetries(uint64(s.cfg.LockMaxRetries), retry.NewFibonacci(s.cfg.LockRetryBaseDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.LockAcquireTimeout)
		defer cancel()

		rel, err := s.locker.Acquire(attemptCtx, key)
		if err != nil {
			if errors.Is(err, locks.ErrNotAcquired) {
				return retry.RetryableError(err)
			}
			return err
		}
		release = rel
		return nil
	})
	if err != nil {
		if errors.Is(err, locks.ErrNotAcquired) {
			s.cfg.Log.Warn("Slot token contended", "key", key)
			return nil, apperrors.Busy("the slot is being booked by another request")
		}
		if ctx.Err() != nil {
			return nil, apperrors.Timeout("booking")
		}
		s.cfg.Log.Error("Failed to acquire slot token", "key", key, "error", err)
		return nil, apperrors.Internal(err)
	}
	return release, nil
}

// checkSlot re-validates the candidate against the hours, the grid and
// the lead time. Runs under the slot token.
func (s *reservationService) checkSlot(ctx context.Context, res *model.Resource, date string, startMin, endMin int, now time.Time) error {
	hours, err := s.calendar.EffectiveHoursFor(ctx, res, date)
	if err != nil {
		return err
	}
	if hours.Closed {
		return apperrors.InvalidSlot("resource is closed on this date")
	}

	open, err := timegrid.ParseClock(hours.Open)
	if err != nil {
		return apperrors.Internal(err)
	}
	closeAt, err := timegrid.ParseClock(hours.Close)
	if err != nil {
		return apperrors.Internal(err)
	}

	if startMin < open || endMin > closeAt {
		return apperrors.InvalidSlot(fmt.Sprintf("slot must lie within working hours %s-%s", hours.Open, hours.Close))
	}
	if (startMin-open)%res.Duration.Step() != 0 {
		return apperrors.InvalidSlot("start time is off the slot grid")
	}

	loc, err := res.Location()
	if err != nil {
		return apperrors.Internal(err)
	}
	instant, err := timegrid.InstantOn(date, startMin, loc)
	if err != nil {
		return apperrors.Internal(err)
	}
	lead := time.Duration(res.LeadTime.MinLeadMinutes) * time.Minute
	if instant.Before(now.Add(lead)) {
		return apperrors.InvalidSlot("slot start is too soon or already past")
	}
	return nil
}

func (s *reservationService) findResource(ctx context.Context, resourceID string) (*model.Resource, error) {
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

// publish emits the availability change after the commit. A publish
// failure is logged and swallowed: the booking outcome is already
// durable and must not be rolled back by a broker hiccup.
func (s *reservationService) publish(ctx context.Context, rsv *model.Reservation, action string) {
	event := events.NewAvailabilityChanged(rsv.BusinessID, rsv.ResourceID, rsv.Date, rsv.StartTime, rsv.EndTime, action)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Error("Failed to publish availability change",
			"event_id", event.EventID,
			"reservation_id", rsv.ID,
			"action", action,
			"error", err,
		)
	}
}
