package service

import (
	"context"
	"errors"
	"sync"

	resourceserrors "reservd/internal/resources/errors"
	"reservd/internal/resources/repository"
	"reservd/internal/resources/validator"
	"reservd/pkg/config"
	apperrors "reservd/pkg/errors"
	"reservd/pkg/model"
	"reservd/pkg/sanitizer"
)

type ResourceService interface {
	Create(ctx context.Context, res *model.Resource) error
	GetByID(ctx context.Context, id string) (*model.Resource, error)
	GetAll(ctx context.Context, businessID string, limit int, offset int64) ([]*model.Resource, int64, error)
	Update(ctx context.Context, id string, updates *model.ResourceUpdate) error
	Delete(ctx context.Context, id string) error
}

type resourceService struct {
	repo      repository.ResourceRepository
	validator *validator.ResourceValidator
	cfg       *config.Config
}

func NewResourceService(
	repo repository.ResourceRepository,
	validator *validator.ResourceValidator,
	cfg *config.Config,
) ResourceService {
	return &resourceService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *resourceService) Create(ctx context.Context, res *model.Resource) error {
	s.sanitize(res)
	s.applyDefaults(res)

	if err := s.validator.Validate(res); err != nil {
		s.cfg.Log.Warn("Resource validation failed",
			"name", res.Name,
			"business_id", res.BusinessID,
			"error", err,
		)
		return apperrors.Validation("Resource validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Create(ctx, res); err != nil {
		s.cfg.Log.Error("Failed to create resource",
			"name", res.Name,
			"business_id", res.BusinessID,
			"error", err,
		)
		return apperrors.Internal(err)
	}

	s.cfg.Log.Info("Resource created successfully",
		"id", res.ID,
		"name", res.Name,
		"business_id", res.BusinessID,
		"kind", res.Kind,
		"time_zone", res.TimeZone,
	)
	return nil
}

func (s *resourceService) GetByID(ctx context.Context, id string) (*model.Resource, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Resource ID cannot be empty")
	}

	res, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, resourceserrors.ErrNotFound) {
			return nil, apperrors.ResourceNotFound(id)
		}
		if errors.Is(err, resourceserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid resource ID format")
		}
		s.cfg.Log.Error("Failed to get resource by ID", "id", id, "error", err)
		return nil, apperrors.Internal(err)
	}

	return res, nil
}

func (s *resourceService) GetAll(ctx context.Context, businessID string, limit int, offset int64) ([]*model.Resource, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var resources []*model.Resource
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(ctx, businessID)
		if err != nil {
			s.cfg.Log.Error("Failed to count resources", "business_id", businessID, "error", err)
			errCount = apperrors.Internal(err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		resources, err = s.repo.FindAll(ctx, businessID, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list resources",
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

	return resources, count, nil
}

func (s *resourceService) Update(ctx context.Context, id string, updates *model.ResourceUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Resource ID cannot be empty")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	merged := s.mergeResourceUpdates(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Resource validation failed",
			"id", id,
			"name", merged.Name,
			"error", err,
		)
		return apperrors.Validation("Resource validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, resourceserrors.ErrNotFound) {
			return apperrors.ResourceNotFound(id)
		}
		s.cfg.Log.Error("Failed to update resource", "id", id, "error", err)
		return apperrors.Internal(err)
	}

	s.cfg.Log.Info("Resource updated successfully", "id", id, "name", merged.Name)
	return nil
}

func (s *resourceService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Resource ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, resourceserrors.ErrNotFound) {
			return apperrors.ResourceNotFound(id)
		}
		if errors.Is(err, resourceserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid resource ID format")
		}
		s.cfg.Log.Error("Failed to delete resource", "id", id, "error", err)
		return apperrors.Internal(err)
	}

	s.cfg.Log.Info("Resource deleted successfully", "id", id)
	return nil
}

func (s *resourceService) sanitize(res *model.Resource) {
	res.Name = sanitizer.NormalizeName(res.Name)
	res.BusinessID = sanitizer.TrimAndLower(res.BusinessID)
}

func (s *resourceService) applyDefaults(res *model.Resource) {
	if res.TimeZone == "" {
		res.TimeZone = s.cfg.DefaultTimeZone
	}
	if res.Duration.SlotMinutes == 0 {
		res.Duration.SlotMinutes = s.cfg.DefaultSlotMinutes
	}
	if res.LeadTime.MinLeadMinutes == 0 {
		res.LeadTime.MinLeadMinutes = s.cfg.DefaultLeadMinutes
	}
	// New resources take reservations immediately; deactivation is an
	// explicit update.
	res.Active = true
}

func (s *resourceService) mergeResourceUpdates(existing *model.Resource, updates *model.ResourceUpdate) *model.Resource {
	merged := *existing

	if updates.Name != nil {
		merged.Name = sanitizer.NormalizeName(*updates.Name)
	}
	if updates.Kind != nil {
		merged.Kind = *updates.Kind
	}
	if updates.TimeZone != nil {
		merged.TimeZone = *updates.TimeZone
	}
	if updates.WeeklyRules != nil {
		merged.WeeklyRules = *updates.WeeklyRules
	}
	if updates.Duration != nil {
		merged.Duration = *updates.Duration
	}
	if updates.LeadTime != nil {
		merged.LeadTime = *updates.LeadTime
	}
	if updates.Active != nil {
		merged.Active = *updates.Active
	}

	merged.ID = existing.ID
	merged.BusinessID = existing.BusinessID
	merged.CreatedAt = existing.CreatedAt

	return &merged
}
