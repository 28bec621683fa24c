package model

// EffectiveHours is the resolved working window of a resource on one
// date after overrides are applied. A closed day is a valid result, not
// an error: it simply generates no slots.
type EffectiveHours struct {
	Closed bool   `json:"closed"`
	Open   string `json:"open,omitempty"`
	Close  string `json:"close,omitempty"`
}

func ClosedHours() EffectiveHours {
	return EffectiveHours{Closed: true}
}

func OpenHours(open, close string) EffectiveHours {
	return EffectiveHours{Open: open, Close: close}
}

// Slot is one bookable window offered by an availability query.
type Slot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

