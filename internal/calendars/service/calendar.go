package service

import (
	"context"
	"errors"

	calendarserrors "reservd/internal/calendars/errors"
	"reservd/internal/calendars/repository"
	"reservd/internal/calendars/validator"
	resourceserrors "reservd/internal/resources/errors"
	resourcesrepo "reservd/internal/resources/repository"
	"reservd/pkg/config"
	apperrors "reservd/pkg/errors"
	"reservd/pkg/model"
	"reservd/pkg/sanitizer"
	"reservd/pkg/timegrid"
)

// CalendarService resolves what hours a resource actually works on a
// given date and manages the per-date overrides feeding that answer.
type CalendarService interface {
	UpsertOverride(ctx context.Context, resourceID string, up *model.OverrideUpsert) (*model.CalendarOverride, error)
	ListOverrides(ctx context.Context, resourceID, from, to string) ([]*model.CalendarOverride, error)
	DeleteOverride(ctx context.Context, resourceID, date string) error

	// EffectiveHours fetches the resource and resolves its hours for the
	// date. Unknown resources are an error; a closed day is not.
	EffectiveHours(ctx context.Context, resourceID, date string) (model.EffectiveHours, error)

	// EffectiveHoursFor resolves hours for a resource the caller already
	// holds, saving the extra fetch inside the booking path.
	EffectiveHoursFor(ctx context.Context, res *model.Resource, date string) (model.EffectiveHours, error)
}

type calendarService struct {
	overrides repository.OverrideRepository
	resources resourcesrepo.ResourceRepository
	validator *validator.OverrideValidator
	cfg       *config.Config
}

func NewCalendarService(
	overrides repository.OverrideRepository,
	resources resourcesrepo.ResourceRepository,
	validator *validator.OverrideValidator,
	cfg *config.Config,
) CalendarService {
	return &calendarService{
		overrides: overrides,
		resources: resources,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *calendarService) UpsertOverride(ctx context.Context, resourceID string, up *model.OverrideUpsert) (*model.CalendarOverride, error) {
	if resourceID == "" {
		return nil, apperrors.InvalidInput("Resource ID cannot be empty")
	}

	up.Reason = sanitizer.TrimAndNormalize(up.Reason)
	if err := s.validator.Validate(up); err != nil {
		s.cfg.Log.Warn("Override validation failed",
			"resource_id", resourceID,
			"date", up.Date,
			"error", err,
		)
		return nil, apperrors.Validation("Override validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if _, err := s.findResource(ctx, resourceID); err != nil {
		return nil, err
	}

	ov := &model.CalendarOverride{
		ResourceID: resourceID,
		Date:       up.Date,
		Closed:     up.Closed,
		Open:       up.Open,
		Close:      up.Close,
		Reason:     up.Reason,
	}
	// A closure is absolute; hours sent alongside it are dropped so the
	// stored override is unambiguous.
	if ov.Closed {
		ov.Open = ""
		ov.Close = ""
	}

	if err := s.overrides.Upsert(ctx, ov); err != nil {
		s.cfg.Log.Error("Failed to upsert calendar override",
			"resource_id", resourceID,
			"date", up.Date,
			"error", err,
		)
		return nil, apperrors.Internal(err)
	}

	s.cfg.Log.Info("Calendar override saved",
		"resource_id", resourceID,
		"date", ov.Date,
		"closed", ov.Closed,
		"open", ov.Open,
		"close", ov.Close,
	)
	return ov, nil
}

func (s *calendarService) ListOverrides(ctx context.Context, resourceID, from, to string) ([]*model.CalendarOverride, error) {
	if resourceID == "" {
		return nil, apperrors.InvalidInput("Resource ID cannot be empty")
	}
	if from != "" {
		if _, err := timegrid.ParseDate(from); err != nil {
			return nil, apperrors.InvalidInput("from must be a YYYY-MM-DD date")
		}
	}
	if to != "" {
		if _, err := timegrid.ParseDate(to); err != nil {
			return nil, apperrors.InvalidInput("to must be a YYYY-MM-DD date")
		}
	}

	if _, err := s.findResource(ctx, resourceID); err != nil {
		return nil, err
	}

	overrides, err := s.overrides.FindAllForResource(ctx, resourceID, from, to)
	if err != nil {
		s.cfg.Log.Error("Failed to list calendar overrides", "resource_id", resourceID, "error", err)
		return nil, apperrors.Internal(err)
	}
	return overrides, nil
}

func (s *calendarService) DeleteOverride(ctx context.Context, resourceID, date string) error {
	if resourceID == "" {
		return apperrors.InvalidInput("Resource ID cannot be empty")
	}
	if _, err := timegrid.ParseDate(date); err != nil {
		return apperrors.InvalidInput("date must be a YYYY-MM-DD date")
	}

	if err := s.overrides.Delete(ctx, resourceID, date); err != nil {
		if errors.Is(err, calendarserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("calendar override", resourceID+" "+date)
		}
		s.cfg.Log.Error("Failed to delete calendar override",
			"resource_id", resourceID,
			"date", date,
			"error", err,
		)
		return apperrors.Internal(err)
	}

	s.cfg.Log.Info("Calendar override deleted", "resource_id", resourceID, "date", date)
	return nil
}

func (s *calendarService) EffectiveHours(ctx context.Context, resourceID, date string) (model.EffectiveHours, error) {
	if _, err := timegrid.ParseDate(date); err != nil {
		return model.EffectiveHours{}, apperrors.InvalidInput("date must be a YYYY-MM-DD date")
	}

	res, err := s.findResource(ctx, resourceID)
	if err != nil {
		return model.EffectiveHours{}, err
	}

	return s.EffectiveHoursFor(ctx, res, date)
}

func (s *calendarService) EffectiveHoursFor(ctx context.Context, res *model.Resource, date string) (model.EffectiveHours, error) {
	ov, err := s.overrides.FindByResourceAndDate(ctx, res.ID, date)
	if err != nil && !errors.Is(err, calendarserrors.ErrNotFound) {
		s.cfg.Log.Error("Failed to look up calendar override",
			"resource_id", res.ID,
			"date", date,
			"error", err,
		)
		return model.EffectiveHours{}, apperrors.Internal(err)
	}

	hours, err := resolve(res, ov, date)
	if err != nil {
		return model.EffectiveHours{}, apperrors.InvalidInput(err.Error())
	}
	return hours, nil
}

func (s *calendarService) findResource(ctx context.Context, resourceID string) (*model.Resource, error) {
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

// resolve merges one date's override with the resource's weekly default.
// The override, when present, replaces the weekly rule entirely; a
// closure is absolute and wins even over hours stored next to it. With
// no override and no weekly rule for the weekday the day is closed.
func resolve(res *model.Resource, ov *model.CalendarOverride, date string) (model.EffectiveHours, error) {
	if ov != nil {
		if ov.Closed {
			return model.ClosedHours(), nil
		}
		return model.OpenHours(ov.Open, ov.Close), nil
	}

	day, err := timegrid.Weekday(date)
	if err != nil {
		return model.EffectiveHours{}, err
	}

	rule, ok := res.RuleFor(model.WeekdayFromTime(day))
	if !ok {
		return model.ClosedHours(), nil
	}
	return model.OpenHours(rule.Open, rule.Close), nil
}
