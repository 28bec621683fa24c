package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	calendarserrors "reservd/internal/calendars/errors"
	"reservd/internal/calendars/validator"
	resourceserrors "reservd/internal/resources/errors"
	"reservd/pkg/config"
	mongotx "reservd/pkg/db/mongo"
	apperrors "reservd/pkg/errors"
	"reservd/pkg/logger"
	"reservd/pkg/model"
)

type mockOverrideRepository struct {
	upsertFunc                func(ctx context.Context, ov *model.CalendarOverride) error
	findByResourceAndDateFunc func(ctx context.Context, resourceID, date string) (*model.CalendarOverride, error)
	findAllForResourceFunc    func(ctx context.Context, resourceID, from, to string) ([]*model.CalendarOverride, error)
	deleteFunc                func(ctx context.Context, resourceID, date string) error
}

func (m *mockOverrideRepository) Upsert(ctx context.Context, ov *model.CalendarOverride) error {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, ov)
	}
	return nil
}

func (m *mockOverrideRepository) FindByResourceAndDate(ctx context.Context, resourceID, date string) (*model.CalendarOverride, error) {
	if m.findByResourceAndDateFunc != nil {
		return m.findByResourceAndDateFunc(ctx, resourceID, date)
	}
	return nil, calendarserrors.ErrNotFound
}

func (m *mockOverrideRepository) FindAllForResource(ctx context.Context, resourceID, from, to string) ([]*model.CalendarOverride, error) {
	if m.findAllForResourceFunc != nil {
		return m.findAllForResourceFunc(ctx, resourceID, from, to)
	}
	return []*model.CalendarOverride{}, nil
}

func (m *mockOverrideRepository) Delete(ctx context.Context, resourceID, date string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, resourceID, date)
	}
	return nil
}

func (m *mockOverrideRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

type mockResourceRepository struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Resource, error)
}

func (m *mockResourceRepository) Create(ctx context.Context, res *model.Resource) error {
	return nil
}

func (m *mockResourceRepository) FindByID(ctx context.Context, id string) (*model.Resource, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, resourceserrors.ErrNotFound
}

func (m *mockResourceRepository) FindAll(ctx context.Context, businessID string, limit int, offset int64) ([]*model.Resource, error) {
	return []*model.Resource{}, nil
}

func (m *mockResourceRepository) Count(ctx context.Context, businessID string) (int64, error) {
	return 0, nil
}

func (m *mockResourceRepository) Update(ctx context.Context, id string, res *model.Resource) error {
	return nil
}

func (m *mockResourceRepository) Delete(ctx context.Context, id string) error {
	return nil
}

func (m *mockResourceRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

func testConfig() *config.Config {
	return &config.Config{
		Log:               logger.New(logger.Config{Level: "error", Format: logger.Text, Service: "test"}),
		MongoQueryTimeout: 5 * time.Second,
	}
}

func weekdayResource() *model.Resource {
	return &model.Resource{
		ID:         "66b1f0e4a1b2c3d4e5f60718",
		BusinessID: "biz-1",
		Name:       "Court A",
		Kind:       model.ResourceKindVenue,
		TimeZone:   "UTC",
		WeeklyRules: []model.WeeklyRule{
			{Day: model.Monday, Open: "09:00", Close: "17:00"},
			{Day: model.Tuesday, Open: "10:00", Close: "14:00"},
		},
		Duration: model.DurationPolicy{SlotMinutes: 60},
		Active:   true,
	}
}

func newTestService(overrides *mockOverrideRepository, resources *mockResourceRepository, cfg *config.Config) CalendarService {
	return NewCalendarService(overrides, resources, validator.NewOverrideValidator(cfg.Log), cfg)
}

func TestEffectiveHoursFor_Resolution(t *testing.T) {
	cfg := testConfig()
	res := weekdayResource()

	tests := []struct {
		name     string
		date     string
		override *model.CalendarOverride
		want     model.EffectiveHours
	}{
		{
			"weekly rule applies without override",
			"2026-03-02", // Monday
			nil,
			model.OpenHours("09:00", "17:00"),
		},
		{
			"each weekday gets its own rule",
			"2026-03-03", // Tuesday
			nil,
			model.OpenHours("10:00", "14:00"),
		},
		{
			"no rule for the weekday means closed",
			"2026-03-07", // Saturday
			nil,
			model.ClosedHours(),
		},
		{
			"closure override beats weekly rule",
			"2026-03-02",
			&model.CalendarOverride{ResourceID: res.ID, Date: "2026-03-02", Closed: true},
			model.ClosedHours(),
		},
		{
			"closure wins even when stored next to hours",
			"2026-03-02",
			&model.CalendarOverride{ResourceID: res.ID, Date: "2026-03-02", Closed: true, Open: "10:00", Close: "12:00"},
			model.ClosedHours(),
		},
		{
			"custom hours replace the weekly rule",
			"2026-03-02",
			&model.CalendarOverride{ResourceID: res.ID, Date: "2026-03-02", Open: "12:00", Close: "20:00"},
			model.OpenHours("12:00", "20:00"),
		},
		{
			"custom hours open an otherwise closed weekday",
			"2026-03-07",
			&model.CalendarOverride{ResourceID: res.ID, Date: "2026-03-07", Open: "08:00", Close: "11:00"},
			model.OpenHours("08:00", "11:00"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			overrides := &mockOverrideRepository{
				findByResourceAndDateFunc: func(ctx context.Context, resourceID, date string) (*model.CalendarOverride, error) {
					if tt.override == nil {
						return nil, calendarserrors.ErrNotFound
					}
					return tt.override, nil
				},
			}
			svc := newTestService(overrides, &mockResourceRepository{}, cfg)

			got, err := svc.EffectiveHoursFor(context.Background(), res, tt.date)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestEffectiveHoursFor_StorageFailure(t *testing.T) {
	cfg := testConfig()

	overrides := &mockOverrideRepository{
		findByResourceAndDateFunc: func(ctx context.Context, resourceID, date string) (*model.CalendarOverride, error) {
			return nil, fmt.Errorf("socket closed")
		},
	}
	svc := newTestService(overrides, &mockResourceRepository{}, cfg)

	_, err := svc.EffectiveHoursFor(context.Background(), weekdayResource(), "2026-03-02")
	if !apperrors.IsCode(err, apperrors.CodeInternal) {
		t.Errorf("expected code %s, got %v", apperrors.CodeInternal, err)
	}
}

func TestEffectiveHours_UnknownResource(t *testing.T) {
	cfg := testConfig()

	resources := &mockResourceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Resource, error) {
			return nil, resourceserrors.ErrNotFound
		},
	}
	svc := newTestService(&mockOverrideRepository{}, resources, cfg)

	_, err := svc.EffectiveHours(context.Background(), "66b1f0e4a1b2c3d4e5f60718", "2026-03-02")
	if !apperrors.IsCode(err, apperrors.CodeResourceNotFound) {
		t.Errorf("expected code %s, got %v", apperrors.CodeResourceNotFound, err)
	}
}

func TestEffectiveHours_BadDate(t *testing.T) {
	cfg := testConfig()
	svc := newTestService(&mockOverrideRepository{}, &mockResourceRepository{}, cfg)

	_, err := svc.EffectiveHours(context.Background(), "66b1f0e4a1b2c3d4e5f60718", "03/02/2026")
	if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected code %s, got %v", apperrors.CodeInvalidInput, err)
	}
}

func TestUpsertOverride_StripsHoursOnClosure(t *testing.T) {
	cfg := testConfig()
	res := weekdayResource()

	var saved *model.CalendarOverride
	overrides := &mockOverrideRepository{
		upsertFunc: func(ctx context.Context, ov *model.CalendarOverride) error {
			saved = ov
			return nil
		},
	}
	resources := &mockResourceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Resource, error) {
			return res, nil
		},
	}
	svc := newTestService(overrides, resources, cfg)

	ov, err := svc.UpsertOverride(context.Background(), res.ID, &model.OverrideUpsert{
		Date:   "2026-07-04",
		Closed: true,
		Open:   "10:00",
		Close:  "12:00",
		Reason: "  holiday  ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved == nil {
		t.Fatal("expected repository Upsert to be called")
	}

	if !ov.Closed {
		t.Error("expected closed override")
	}
	if ov.Open != "" || ov.Close != "" {
		t.Errorf("closure must not store hours, got open=%q close=%q", ov.Open, ov.Close)
	}
	if ov.Reason != "holiday" {
		t.Errorf("expected trimmed reason, got %q", ov.Reason)
	}
}

func TestUpsertOverride_Rejections(t *testing.T) {
	cfg := testConfig()
	res := weekdayResource()

	resources := &mockResourceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Resource, error) {
			return res, nil
		},
	}

	tests := []struct {
		name     string
		up       model.OverrideUpsert
		wantCode string
	}{
		{
			"missing date",
			model.OverrideUpsert{Closed: true},
			apperrors.CodeValidation,
		},
		{
			"malformed date",
			model.OverrideUpsert{Date: "2026-2-30", Closed: true},
			apperrors.CodeValidation,
		},
		{
			"custom hours without close",
			model.OverrideUpsert{Date: "2026-07-04", Open: "10:00"},
			apperrors.CodeValidation,
		},
		{
			"custom hours open after close",
			model.OverrideUpsert{Date: "2026-07-04", Open: "18:00", Close: "09:00"},
			apperrors.CodeValidation,
		},
		{
			"unpadded clock",
			model.OverrideUpsert{Date: "2026-07-04", Open: "9:00", Close: "12:00"},
			apperrors.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			overrides := &mockOverrideRepository{
				upsertFunc: func(ctx context.Context, ov *model.CalendarOverride) error {
					t.Error("repository Upsert should not be called for invalid input")
					return nil
				},
			}
			svc := newTestService(overrides, resources, cfg)

			_, err := svc.UpsertOverride(context.Background(), res.ID, &tt.up)
			if !apperrors.IsCode(err, tt.wantCode) {
				t.Errorf("expected code %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestUpsertOverride_UnknownResource(t *testing.T) {
	cfg := testConfig()

	resources := &mockResourceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Resource, error) {
			return nil, resourceserrors.ErrNotFound
		},
	}
	svc := newTestService(&mockOverrideRepository{}, resources, cfg)

	_, err := svc.UpsertOverride(context.Background(), "66b1f0e4a1b2c3d4e5f60718", &model.OverrideUpsert{
		Date:   "2026-07-04",
		Closed: true,
	})
	if !apperrors.IsCode(err, apperrors.CodeResourceNotFound) {
		t.Errorf("expected code %s, got %v", apperrors.CodeResourceNotFound, err)
	}
}

func TestListOverrides_DateRangeValidation(t *testing.T) {
	cfg := testConfig()
	res := weekdayResource()

	resources := &mockResourceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Resource, error) {
			return res, nil
		},
	}
	svc := newTestService(&mockOverrideRepository{}, resources, cfg)

	_, err := svc.ListOverrides(context.Background(), res.ID, "not-a-date", "")
	if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected code %s, got %v", apperrors.CodeInvalidInput, err)
	}

	if _, err := svc.ListOverrides(context.Background(), res.ID, "2026-07-01", "2026-07-31"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDeleteOverride_NotFound(t *testing.T) {
	cfg := testConfig()

	overrides := &mockOverrideRepository{
		deleteFunc: func(ctx context.Context, resourceID, date string) error {
			return calendarserrors.ErrNotFound
		},
	}
	svc := newTestService(overrides, &mockResourceRepository{}, cfg)

	err := svc.DeleteOverride(context.Background(), "66b1f0e4a1b2c3d4e5f60718", "2026-07-04")
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected code %s, got %v", apperrors.CodeNotFound, err)
	}
}
