package testutil

import (
	"time"

	"reservd/pkg/model"
)

// ResourceBuilder assembles a bookable resource for seeding through the
// API. Defaults: a venue in UTC, open weekdays 09:00-17:00, hour slots,
// no lead time.
type ResourceBuilder struct {
	res model.Resource
}

func NewResourceBuilder() *ResourceBuilder {
	return &ResourceBuilder{
		res: model.Resource{
			BusinessID: "biz-integration",
			Name:       "Court A",
			Kind:       model.ResourceKindVenue,
			TimeZone:   "UTC",
			WeeklyRules: []model.WeeklyRule{
				{Day: model.Monday, Open: "09:00", Close: "17:00"},
				{Day: model.Tuesday, Open: "09:00", Close: "17:00"},
				{Day: model.Wednesday, Open: "09:00", Close: "17:00"},
				{Day: model.Thursday, Open: "09:00", Close: "17:00"},
				{Day: model.Friday, Open: "09:00", Close: "17:00"},
			},
			Duration: model.DurationPolicy{SlotMinutes: 60},
			Active:   true,
		},
	}
}

func (b *ResourceBuilder) WithName(name string) *ResourceBuilder {
	b.res.Name = name
	return b
}

func (b *ResourceBuilder) WithBusinessID(id string) *ResourceBuilder {
	b.res.BusinessID = id
	return b
}

func (b *ResourceBuilder) WithTimeZone(tz string) *ResourceBuilder {
	b.res.TimeZone = tz
	return b
}

func (b *ResourceBuilder) WithWeeklyRules(rules ...model.WeeklyRule) *ResourceBuilder {
	b.res.WeeklyRules = rules
	return b
}

func (b *ResourceBuilder) WithDuration(slotMinutes, stepMinutes int) *ResourceBuilder {
	b.res.Duration = model.DurationPolicy{SlotMinutes: slotMinutes, StepMinutes: stepMinutes}
	return b
}

func (b *ResourceBuilder) WithLeadTime(minutes int) *ResourceBuilder {
	b.res.LeadTime = model.LeadTimePolicy{MinLeadMinutes: minutes}
	return b
}

func (b *ResourceBuilder) Inactive() *ResourceBuilder {
	b.res.Active = false
	return b
}

func (b *ResourceBuilder) Build() model.Resource {
	return b.res
}

// NextMonday returns a Monday at least two weeks out, clear of any lead
// time a test resource might carry.
func NextMonday() string {
	d := time.Now().UTC().AddDate(0, 0, 14)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return d.Format("2006-01-02")
}
