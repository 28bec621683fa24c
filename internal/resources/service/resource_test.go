package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	resourceserrors "reservd/internal/resources/errors"
	"reservd/internal/resources/validator"
	"reservd/pkg/config"
	mongotx "reservd/pkg/db/mongo"
	apperrors "reservd/pkg/errors"
	"reservd/pkg/logger"
	"reservd/pkg/model"
)

type mockResourceRepository struct {
	createFunc   func(ctx context.Context, res *model.Resource) error
	findByIDFunc func(ctx context.Context, id string) (*model.Resource, error)
	findAllFunc  func(ctx context.Context, businessID string, limit int, offset int64) ([]*model.Resource, error)
	countFunc    func(ctx context.Context, businessID string) (int64, error)
	updateFunc   func(ctx context.Context, id string, res *model.Resource) error
	deleteFunc   func(ctx context.Context, id string) error
}

func (m *mockResourceRepository) Create(ctx context.Context, res *model.Resource) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, res)
	}
	return nil
}

func (m *mockResourceRepository) FindByID(ctx context.Context, id string) (*model.Resource, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, resourceserrors.ErrNotFound
}

func (m *mockResourceRepository) FindAll(ctx context.Context, businessID string, limit int, offset int64) ([]*model.Resource, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, businessID, limit, offset)
	}
	return []*model.Resource{}, nil
}

func (m *mockResourceRepository) Count(ctx context.Context, businessID string) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, businessID)
	}
	return 0, nil
}

func (m *mockResourceRepository) Update(ctx context.Context, id string, res *model.Resource) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, res)
	}
	return nil
}

func (m *mockResourceRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockResourceRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

func testConfig() *config.Config {
	return &config.Config{
		Log:                logger.New(logger.Config{Level: "error", Format: logger.Text, Service: "test"}),
		DefaultSlotMinutes: 60,
		DefaultLeadMinutes: 15,
		DefaultTimeZone:    "UTC",
		MongoQueryTimeout:  5 * time.Second,
	}
}

func newTestService(repo *mockResourceRepository, cfg *config.Config) ResourceService {
	return NewResourceService(repo, validator.NewResourceValidator(cfg.Log), cfg)
}

func TestCreate_AppliesDefaults(t *testing.T) {
	cfg := testConfig()

	var saved *model.Resource
	mockRepo := &mockResourceRepository{
		createFunc: func(ctx context.Context, res *model.Resource) error {
			saved = res
			return nil
		},
	}

	svc := newTestService(mockRepo, cfg)

	res := &model.Resource{
		BusinessID: "  Biz-1  ",
		Name:       "  Court   A ",
		Kind:       model.ResourceKindVenue,
		WeeklyRules: []model.WeeklyRule{
			{Day: model.Monday, Open: "09:00", Close: "17:00"},
		},
	}

	if err := svc.Create(context.Background(), res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved == nil {
		t.Fatal("expected repository Create to be called")
	}

	if saved.Name != "Court A" {
		t.Errorf("expected sanitized name %q, got %q", "Court A", saved.Name)
	}
	if saved.BusinessID != "biz-1" {
		t.Errorf("expected sanitized business ID %q, got %q", "biz-1", saved.BusinessID)
	}
	if saved.TimeZone != "UTC" {
		t.Errorf("expected default time zone UTC, got %q", saved.TimeZone)
	}
	if saved.Duration.SlotMinutes != 60 {
		t.Errorf("expected default slot minutes 60, got %d", saved.Duration.SlotMinutes)
	}
	if saved.LeadTime.MinLeadMinutes != 15 {
		t.Errorf("expected default lead minutes 15, got %d", saved.LeadTime.MinLeadMinutes)
	}
	if !saved.Active {
		t.Error("expected new resource to be active")
	}
}

func TestCreate_KeepsExplicitPolicies(t *testing.T) {
	cfg := testConfig()

	var saved *model.Resource
	mockRepo := &mockResourceRepository{
		createFunc: func(ctx context.Context, res *model.Resource) error {
			saved = res
			return nil
		},
	}

	svc := newTestService(mockRepo, cfg)

	res := &model.Resource{
		BusinessID: "biz-1",
		Name:       "Room 2",
		Kind:       model.ResourceKindVenue,
		TimeZone:   "Europe/Berlin",
		WeeklyRules: []model.WeeklyRule{
			{Day: model.Friday, Open: "08:00", Close: "14:00"},
		},
		Duration: model.DurationPolicy{SlotMinutes: 30, StepMinutes: 15},
		LeadTime: model.LeadTimePolicy{MinLeadMinutes: 120},
	}

	if err := svc.Create(context.Background(), res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if saved.TimeZone != "Europe/Berlin" {
		t.Errorf("explicit time zone overwritten: %q", saved.TimeZone)
	}
	if saved.Duration.SlotMinutes != 30 || saved.Duration.StepMinutes != 15 {
		t.Errorf("explicit duration policy overwritten: %+v", saved.Duration)
	}
	if saved.LeadTime.MinLeadMinutes != 120 {
		t.Errorf("explicit lead time overwritten: %d", saved.LeadTime.MinLeadMinutes)
	}
}

func TestCreate_ValidationFailure(t *testing.T) {
	cfg := testConfig()

	mockRepo := &mockResourceRepository{
		createFunc: func(ctx context.Context, res *model.Resource) error {
			t.Error("repository Create should not be called for invalid input")
			return nil
		},
	}

	svc := newTestService(mockRepo, cfg)

	res := &model.Resource{
		BusinessID: "biz-1",
		Kind:       model.ResourceKindVenue,
		WeeklyRules: []model.WeeklyRule{
			{Day: model.Monday, Open: "17:00", Close: "09:00"},
		},
	}

	err := svc.Create(context.Background(), res)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Errorf("expected code %s, got %v", apperrors.CodeValidation, err)
	}
}

func TestCreate_RepositoryFailure(t *testing.T) {
	cfg := testConfig()

	mockRepo := &mockResourceRepository{
		createFunc: func(ctx context.Context, res *model.Resource) error {
			return fmt.Errorf("connection reset")
		},
	}

	svc := newTestService(mockRepo, cfg)

	res := &model.Resource{
		BusinessID: "biz-1",
		Name:       "Court A",
		Kind:       model.ResourceKindVenue,
		WeeklyRules: []model.WeeklyRule{
			{Day: model.Monday, Open: "09:00", Close: "17:00"},
		},
	}

	err := svc.Create(context.Background(), res)
	if !apperrors.IsCode(err, apperrors.CodeInternal) {
		t.Errorf("expected code %s, got %v", apperrors.CodeInternal, err)
	}
}

func TestGetByID_ErrorMapping(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name     string
		id       string
		repoErr  error
		wantCode string
	}{
		{"empty id", "", nil, apperrors.CodeInvalidInput},
		{"not found", "66b1f0e4a1b2c3d4e5f60718", resourceserrors.ErrNotFound, apperrors.CodeResourceNotFound},
		{"malformed id", "nope", resourceserrors.ErrInvalidID, apperrors.CodeInvalidInput},
		{"storage failure", "66b1f0e4a1b2c3d4e5f60718", fmt.Errorf("socket closed"), apperrors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockResourceRepository{
				findByIDFunc: func(ctx context.Context, id string) (*model.Resource, error) {
					return nil, tt.repoErr
				},
			}
			svc := newTestService(mockRepo, cfg)

			_, err := svc.GetByID(context.Background(), tt.id)
			if err == nil {
				t.Fatal("expected error")
			}
			if !apperrors.IsCode(err, tt.wantCode) {
				t.Errorf("expected code %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestGetByID_Found(t *testing.T) {
	cfg := testConfig()

	want := &model.Resource{ID: "66b1f0e4a1b2c3d4e5f60718", Name: "Court A"}
	mockRepo := &mockResourceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Resource, error) {
			return want, nil
		},
	}

	svc := newTestService(mockRepo, cfg)

	got, err := svc.GetByID(context.Background(), want.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != want.ID || got.Name != want.Name {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestGetAll_ConcurrentCountAndFind(t *testing.T) {
	cfg := testConfig()

	mockRepo := &mockResourceRepository{
		countFunc: func(ctx context.Context, businessID string) (int64, error) {
			time.Sleep(10 * time.Millisecond)
			return 42, nil
		},
		findAllFunc: func(ctx context.Context, businessID string, limit int, offset int64) ([]*model.Resource, error) {
			time.Sleep(10 * time.Millisecond)
			return []*model.Resource{
				{ID: "1", Name: "Court A"},
				{ID: "2", Name: "Court B"},
			}, nil
		},
	}

	svc := newTestService(mockRepo, cfg)

	for i := 0; i < 10; i++ {
		resources, count, err := svc.GetAll(context.Background(), "biz-1", 10, 0)
		if err != nil {
			t.Fatalf("iteration %d: unexpected error: %v", i, err)
		}
		if count != 42 {
			t.Errorf("iteration %d: expected count 42, got %d", i, count)
		}
		if len(resources) != 2 {
			t.Errorf("iteration %d: expected 2 resources, got %d", i, len(resources))
		}
	}
}

func TestGetAll_PaginationNormalization(t *testing.T) {
	cfg := testConfig()

	mockRepo := &mockResourceRepository{
		findAllFunc: func(ctx context.Context, businessID string, limit int, offset int64) ([]*model.Resource, error) {
			if limit <= 0 || limit > config.MaxPaginationLimit {
				t.Errorf("limit not normalized: %d", limit)
			}
			if offset < 0 {
				t.Errorf("offset not normalized: %d", offset)
			}
			return []*model.Resource{}, nil
		},
	}

	svc := newTestService(mockRepo, cfg)

	tests := []struct {
		name   string
		limit  int
		offset int64
	}{
		{"zero limit", 0, 0},
		{"negative limit", -3, 0},
		{"excessive limit", 5000, 0},
		{"negative offset", 10, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := svc.GetAll(context.Background(), "", tt.limit, tt.offset); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestUpdate_MergesPartialFields(t *testing.T) {
	cfg := testConfig()

	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	existing := &model.Resource{
		ID:         "66b1f0e4a1b2c3d4e5f60718",
		BusinessID: "biz-1",
		Name:       "Court A",
		Kind:       model.ResourceKindVenue,
		TimeZone:   "UTC",
		WeeklyRules: []model.WeeklyRule{
			{Day: model.Monday, Open: "09:00", Close: "17:00"},
		},
		Duration:  model.DurationPolicy{SlotMinutes: 60},
		LeadTime:  model.LeadTimePolicy{MinLeadMinutes: 15},
		Active:    true,
		CreatedAt: created,
	}

	var updated *model.Resource
	mockRepo := &mockResourceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Resource, error) {
			return existing, nil
		},
		updateFunc: func(ctx context.Context, id string, res *model.Resource) error {
			updated = res
			return nil
		},
	}

	svc := newTestService(mockRepo, cfg)

	newName := "  Court   B "
	inactive := false
	err := svc.Update(context.Background(), existing.ID, &model.ResourceUpdate{
		Name:   &newName,
		Active: &inactive,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated == nil {
		t.Fatal("expected repository Update to be called")
	}

	if updated.Name != "Court B" {
		t.Errorf("expected merged name %q, got %q", "Court B", updated.Name)
	}
	if updated.Active {
		t.Error("expected Active=false after merge")
	}
	if updated.Kind != model.ResourceKindVenue {
		t.Errorf("untouched Kind changed: %s", updated.Kind)
	}
	if updated.ID != existing.ID {
		t.Errorf("ID must be preserved, got %q", updated.ID)
	}
	if updated.BusinessID != "biz-1" {
		t.Errorf("BusinessID must be preserved, got %q", updated.BusinessID)
	}
	if !updated.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt must be preserved, got %v", updated.CreatedAt)
	}
}

func TestUpdate_RejectsInvalidMerge(t *testing.T) {
	cfg := testConfig()

	existing := &model.Resource{
		ID:         "66b1f0e4a1b2c3d4e5f60718",
		BusinessID: "biz-1",
		Name:       "Court A",
		Kind:       model.ResourceKindVenue,
		TimeZone:   "UTC",
		WeeklyRules: []model.WeeklyRule{
			{Day: model.Monday, Open: "09:00", Close: "17:00"},
		},
		Duration: model.DurationPolicy{SlotMinutes: 60},
		Active:   true,
	}

	mockRepo := &mockResourceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Resource, error) {
			return existing, nil
		},
		updateFunc: func(ctx context.Context, id string, res *model.Resource) error {
			t.Error("repository Update should not be called for invalid merge")
			return nil
		},
	}

	svc := newTestService(mockRepo, cfg)

	badRules := []model.WeeklyRule{{Day: model.Monday, Open: "17:00", Close: "09:00"}}
	err := svc.Update(context.Background(), existing.ID, &model.ResourceUpdate{WeeklyRules: &badRules})
	if !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Errorf("expected code %s, got %v", apperrors.CodeValidation, err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	cfg := testConfig()

	mockRepo := &mockResourceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Resource, error) {
			return nil, resourceserrors.ErrNotFound
		},
	}

	svc := newTestService(mockRepo, cfg)

	name := "Court B"
	err := svc.Update(context.Background(), "66b1f0e4a1b2c3d4e5f60718", &model.ResourceUpdate{Name: &name})
	if !apperrors.IsCode(err, apperrors.CodeResourceNotFound) {
		t.Errorf("expected code %s, got %v", apperrors.CodeResourceNotFound, err)
	}
}

func TestDelete_ErrorMapping(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name     string
		id       string
		repoErr  error
		wantCode string
	}{
		{"empty id", "", nil, apperrors.CodeInvalidInput},
		{"not found", "66b1f0e4a1b2c3d4e5f60718", resourceserrors.ErrNotFound, apperrors.CodeResourceNotFound},
		{"malformed id", "nope", resourceserrors.ErrInvalidID, apperrors.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockResourceRepository{
				deleteFunc: func(ctx context.Context, id string) error {
					return tt.repoErr
				},
			}
			svc := newTestService(mockRepo, cfg)

			err := svc.Delete(context.Background(), tt.id)
			if err == nil {
				t.Fatal("expected error")
			}
			if !apperrors.IsCode(err, tt.wantCode) {
				t.Errorf("expected code %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestDelete_Success(t *testing.T) {
	cfg := testConfig()

	deleted := ""
	mockRepo := &mockResourceRepository{
		deleteFunc: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}

	svc := newTestService(mockRepo, cfg)

	if err := svc.Delete(context.Background(), "66b1f0e4a1b2c3d4e5f60718"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != "66b1f0e4a1b2c3d4e5f60718" {
		t.Errorf("expected delete of requested id, got %q", deleted)
	}
}
