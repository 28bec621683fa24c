package service

import (
	"context"
	"testing"
	"time"

	reservationsrepo "reservd/internal/reservations/repository"
	resourceserrors "reservd/internal/resources/errors"
	"reservd/pkg/config"
	mongotx "reservd/pkg/db/mongo"
	apperrors "reservd/pkg/errors"
	"reservd/pkg/logger"
	"reservd/pkg/model"
)

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

type mockCalendarService struct {
	hoursFunc func(ctx context.Context, res *model.Resource, date string) (model.EffectiveHours, error)
}

func (m *mockCalendarService) UpsertOverride(ctx context.Context, resourceID string, up *model.OverrideUpsert) (*model.CalendarOverride, error) {
	return nil, nil
}

func (m *mockCalendarService) ListOverrides(ctx context.Context, resourceID, from, to string) ([]*model.CalendarOverride, error) {
	return nil, nil
}

func (m *mockCalendarService) DeleteOverride(ctx context.Context, resourceID, date string) error {
	return nil
}

func (m *mockCalendarService) EffectiveHours(ctx context.Context, resourceID, date string) (model.EffectiveHours, error) {
	return model.ClosedHours(), nil
}

func (m *mockCalendarService) EffectiveHoursFor(ctx context.Context, res *model.Resource, date string) (model.EffectiveHours, error) {
	if m.hoursFunc != nil {
		return m.hoursFunc(ctx, res, date)
	}
	return model.OpenHours("09:00", "12:00"), nil
}

const (
	testResourceID = "66b1f0e4a1b2c3d4e5f60718"
	testDate       = "2026-03-02" // Monday
)

func testResource() *model.Resource {
	return &model.Resource{
		ID:         testResourceID,
		BusinessID: "biz-1",
		Name:       "Court A",
		Kind:       model.ResourceKindVenue,
		TimeZone:   "UTC",
		WeeklyRules: []model.WeeklyRule{
			{Day: model.Monday, Open: "09:00", Close: "12:00"},
		},
		Duration: model.DurationPolicy{SlotMinutes: 60},
		Active:   true,
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{Level: "error", Format: logger.Text, Service: "test"}),
	}
}

type fixture struct {
	svc    AvailabilityService
	ledger reservationsrepo.ReservationRepository
}

func newFixture(res *model.Resource, hours model.EffectiveHours) fixture {
	ledger := reservationsrepo.NewMemoryLedger()
	resources := &mockResourceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Resource, error) {
			if id == res.ID {
				return res, nil
			}
			return nil, resourceserrors.ErrNotFound
		},
	}
	calendar := &mockCalendarService{
		hoursFunc: func(ctx context.Context, r *model.Resource, date string) (model.EffectiveHours, error) {
			return hours, nil
		},
	}
	return fixture{
		svc:    NewAvailabilityService(resources, ledger, calendar, testConfig()),
		ledger: ledger,
	}
}

func (f fixture) book(t *testing.T, start, end, status string) {
	t.Helper()
	err := f.ledger.Create(context.Background(), &model.Reservation{
		BusinessID:  "biz-1",
		ResourceID:  testResourceID,
		Date:        testDate,
		StartTime:   start,
		EndTime:     end,
		DurationMin: 60,
		Status:      status,
	})
	if err != nil {
		t.Fatalf("failed to seed reservation: %v", err)
	}
}

func starts(slots []model.Slot) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.StartTime
	}
	return out
}

func assertStarts(t *testing.T, slots []model.Slot, want ...string) {
	t.Helper()
	got := starts(slots)
	if len(got) != len(want) {
		t.Fatalf("expected starts %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected starts %v, got %v", want, got)
		}
	}
}

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 2, hour, min, 0, 0, time.UTC)
}

func TestGetAvailability_OpenDay(t *testing.T) {
	f := newFixture(testResource(), model.OpenHours("09:00", "12:00"))

	slots, err := f.svc.GetAvailability(context.Background(), testResourceID, testDate, at(8, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertStarts(t, slots, "09:00", "10:00", "11:00")
	if slots[0].EndTime != "10:00" || slots[2].EndTime != "12:00" {
		t.Errorf("unexpected end times: %+v", slots)
	}
}

func TestGetAvailability_BookedSlotExcluded(t *testing.T) {
	f := newFixture(testResource(), model.OpenHours("09:00", "12:00"))
	f.book(t, "10:00", "11:00", model.StatusConfirmed)

	slots, err := f.svc.GetAvailability(context.Background(), testResourceID, testDate, at(8, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertStarts(t, slots, "09:00", "11:00")
}

func TestGetAvailability_CancelledReservationDoesNotBlock(t *testing.T) {
	f := newFixture(testResource(), model.OpenHours("09:00", "12:00"))
	f.book(t, "10:00", "11:00", model.StatusCancelled)

	slots, err := f.svc.GetAvailability(context.Background(), testResourceID, testDate, at(8, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertStarts(t, slots, "09:00", "10:00", "11:00")
}

func TestGetAvailability_PartialOverlapBlocksBothNeighbors(t *testing.T) {
	f := newFixture(testResource(), model.OpenHours("09:00", "12:00"))
	f.book(t, "10:30", "11:30", model.StatusConfirmed)

	slots, err := f.svc.GetAvailability(context.Background(), testResourceID, testDate, at(8, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertStarts(t, slots, "09:00")
}

func TestGetAvailability_ClosedDayIsEmptyNotError(t *testing.T) {
	f := newFixture(testResource(), model.ClosedHours())

	slots, err := f.svc.GetAvailability(context.Background(), testResourceID, testDate, at(8, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected no slots on a closed day, got %v", starts(slots))
	}
	if slots == nil {
		t.Error("expected an empty slice, not nil")
	}
}

func TestGetAvailability_LeadTimeFilter(t *testing.T) {
	res := testResource()
	res.LeadTime.MinLeadMinutes = 45

	tests := []struct {
		name string
		now  time.Time
		want []string
	}{
		{"well before opening", at(7, 0), []string{"09:00", "10:00", "11:00"}},
		{"gap exactly the lead is allowed", at(8, 15), []string{"09:00", "10:00", "11:00"}},
		{"one minute short drops the first slot", at(8, 16), []string{"10:00", "11:00"}},
		{"mid-morning drops two", at(9, 16), []string{"11:00"}},
		{"too late for everything", at(11, 0), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(res, model.OpenHours("09:00", "12:00"))

			slots, err := f.svc.GetAvailability(context.Background(), testResourceID, testDate, tt.now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertStarts(t, slots, tt.want...)
		})
	}
}

func TestGetAvailability_ShrinksAsNowAdvances(t *testing.T) {
	res := testResource()
	res.LeadTime.MinLeadMinutes = 45
	f := newFixture(res, model.OpenHours("09:00", "12:00"))

	earlier, err := f.svc.GetAvailability(context.Background(), testResourceID, testDate, at(8, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	later, err := f.svc.GetAvailability(context.Background(), testResourceID, testDate, at(8, 30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	offered := make(map[string]bool)
	for _, s := range earlier {
		offered[s.StartTime] = true
	}
	for _, s := range later {
		if !offered[s.StartTime] {
			t.Errorf("slot %s appeared as now advanced", s.StartTime)
		}
	}
	if len(later) >= len(earlier) {
		t.Errorf("expected fewer slots at the later now, got %d then %d", len(earlier), len(later))
	}
}

func TestGetAvailability_StepSmallerThanSlot(t *testing.T) {
	res := testResource()
	res.Duration = model.DurationPolicy{SlotMinutes: 60, StepMinutes: 30}
	f := newFixture(res, model.OpenHours("09:00", "12:00"))

	slots, err := f.svc.GetAvailability(context.Background(), testResourceID, testDate, at(8, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertStarts(t, slots, "09:00", "09:30", "10:00", "10:30", "11:00")
}

func TestGetAvailability_LastSlotMustFitEntirely(t *testing.T) {
	f := newFixture(testResource(), model.OpenHours("09:00", "11:45"))

	slots, err := f.svc.GetAvailability(context.Background(), testResourceID, testDate, at(8, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// [11:00, 12:00) would cross the close; it is not offered.
	assertStarts(t, slots, "09:00", "10:00")
}

func TestGetAvailability_GridAnchoredAtOpen(t *testing.T) {
	res := testResource()
	res.Duration = model.DurationPolicy{SlotMinutes: 60, StepMinutes: 45}
	f := newFixture(res, model.OpenHours("09:10", "12:00"))

	slots, err := f.svc.GetAvailability(context.Background(), testResourceID, testDate, at(8, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Starts walk from open by step: 09:10, 09:55, 10:40; 11:25+60 would
	// cross the close.
	assertStarts(t, slots, "09:10", "09:55", "10:40")
}

func TestGetAvailability_LeadAnchorsToResourceZone(t *testing.T) {
	res := testResource()
	res.TimeZone = "America/New_York" // UTC-5 on 2026-03-02

	tests := []struct {
		name string
		now  time.Time
		want []string
	}{
		{"before local opening", time.Date(2026, 3, 2, 13, 30, 0, 0, time.UTC), []string{"09:00", "10:00", "11:00"}},
		{"local 09:00 already passed", time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC), []string{"10:00", "11:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(res, model.OpenHours("09:00", "12:00"))

			slots, err := f.svc.GetAvailability(context.Background(), testResourceID, testDate, tt.now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertStarts(t, slots, tt.want...)
		})
	}
}

func TestGetAvailability_InactiveResource(t *testing.T) {
	res := testResource()
	res.Active = false
	f := newFixture(res, model.OpenHours("09:00", "12:00"))

	slots, err := f.svc.GetAvailability(context.Background(), testResourceID, testDate, at(8, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected no slots for an inactive resource, got %v", starts(slots))
	}
}

func TestGetAvailability_UnknownResource(t *testing.T) {
	f := newFixture(testResource(), model.OpenHours("09:00", "12:00"))

	_, err := f.svc.GetAvailability(context.Background(), "66b1f0e4a1b2c3d4e5f60799", testDate, at(8, 0))
	if !apperrors.IsCode(err, apperrors.CodeResourceNotFound) {
		t.Errorf("expected code %s, got %v", apperrors.CodeResourceNotFound, err)
	}
}

func TestGetAvailability_BadInput(t *testing.T) {
	f := newFixture(testResource(), model.OpenHours("09:00", "12:00"))

	if _, err := f.svc.GetAvailability(context.Background(), "", testDate, at(8, 0)); !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected code %s for empty resource id, got %v", apperrors.CodeInvalidInput, err)
	}
	if _, err := f.svc.GetAvailability(context.Background(), testResourceID, "03/02/2026", at(8, 0)); !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected code %s for malformed date, got %v", apperrors.CodeInvalidInput, err)
	}
}
