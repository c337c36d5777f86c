package filter

import "time"

// Locations: точки строго после Since и внутри [Start, End] включительно.
// TakeLatest оставляет последние Limit точек, иначе первые Limit.
type Locations struct {
	EntityID   string
	Since      *time.Time
	Start      *time.Time
	End        *time.Time
	Limit      int
	TakeLatest bool
}

func (f Locations) Matches(recordedAt time.Time) bool {
	if f.Since != nil && !recordedAt.After(*f.Since) {
		return false
	}
	if f.Start != nil && recordedAt.Before(*f.Start) {
		return false
	}
	if f.End != nil && recordedAt.After(*f.End) {
		return false
	}
	return true
}

func (f Locations) HasRange() bool {
	return f.Start != nil || f.End != nil
}
