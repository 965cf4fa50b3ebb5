package planner

import (
	"sort"
	"time"

	"github.com/moptabi/moptabi-backend/internal/domain"
)

type FieldErrors map[string]string

// Errors groups the accumulated validation messages. Plan errors are keyed
// by day; spot errors by day and spot id.
type Errors struct {
	TripInfo FieldErrors                        `json:"tripInfoErrors"`
	Plans    map[DateKey]FieldErrors            `json:"planErrors"`
	Spots    map[DateKey]map[string]FieldErrors `json:"spotErrors"`
}

func newErrors() Errors {
	return Errors{
		TripInfo: FieldErrors{},
		Plans:    map[DateKey]FieldErrors{},
		Spots:    map[DateKey]map[string]FieldErrors{},
	}
}

func (e Errors) Empty() bool {
	return len(e.TripInfo) == 0 && len(e.Plans) == 0 && len(e.Spots) == 0
}

func (e Errors) setTripInfo(field, msg string) {
	if _, ok := e.TripInfo[field]; !ok {
		e.TripInfo[field] = msg
	}
}

func (e Errors) setPlan(date DateKey, field, msg string) {
	m, ok := e.Plans[date]
	if !ok {
		m = FieldErrors{}
		e.Plans[date] = m
	}
	if _, exists := m[field]; !exists {
		m[field] = msg
	}
}

func (e Errors) setSpot(date DateKey, spotID, field, msg string) {
	byID, ok := e.Spots[date]
	if !ok {
		byID = map[string]FieldErrors{}
		e.Spots[date] = byID
	}
	m, ok := byID[spotID]
	if !ok {
		m = FieldErrors{}
		byID[spotID] = m
	}
	if _, exists := m[field]; !exists {
		m[field] = msg
	}
}

// Builder is the in-memory itinerary under construction. It is not safe for
// concurrent use.
type Builder struct {
	tripInfo TripInfo
	plans    map[DateKey]*Day
	errs     Errors
}

func New() *Builder {
	return &Builder{
		plans: map[DateKey]*Day{},
		errs:  newErrors(),
	}
}

// FromState replays a serialised state into a fresh builder.
func FromState(s State) *Builder {
	b := New()
	b.SetTripInfo(s.TripInfo)
	for _, day := range s.Plans {
		b.ensureDay(day.Date)
		for _, spot := range day.Spots {
			b.SetSpots(day.Date, spot, false)
		}
	}
	return b
}

func (b *Builder) TripInfo() TripInfo {
	return b.tripInfo
}

func (b *Builder) SetTripInfo(info TripInfo) {
	info.Days = append([]DayInfo(nil), info.Days...)
	b.tripInfo = info
}

// SetRange sets the trip dates and makes sure exactly the days inside the
// range have a bucket. Buckets outside the new range are dropped.
func (b *Builder) SetRange(start, end time.Time) {
	b.tripInfo.StartDate = domain.NewDateKey(start)
	b.tripInfo.EndDate = domain.NewDateKey(end)

	keys := domain.DateRange(start, end)
	inRange := make(map[DateKey]struct{}, len(keys))
	for _, k := range keys {
		inRange[k] = struct{}{}
		b.ensureDay(k)
	}
	for k := range b.plans {
		if _, ok := inRange[k]; !ok {
			delete(b.plans, k)
		}
	}
}

func (b *Builder) Reset() {
	b.tripInfo = TripInfo{}
	b.plans = map[DateKey]*Day{}
	b.errs = newErrors()
}

func (b *Builder) ensureDay(date DateKey) *Day {
	day, ok := b.plans[date]
	if !ok {
		day = &Day{Date: date}
		b.plans[date] = day
	}
	return day
}

// SetSpots inserts spot into the day, replaces the spot with the same id, or
// removes it when isDeleted is set.
func (b *Builder) SetSpots(date DateKey, spot Spot, isDeleted bool) {
	if spot.Role == "" {
		spot.Role = RoleSpot
	}
	if isDeleted {
		day, ok := b.plans[date]
		if !ok {
			return
		}
		for i := range day.Spots {
			if day.Spots[i].ID == spot.ID {
				day.Spots = append(day.Spots[:i], day.Spots[i+1:]...)
				return
			}
		}
		return
	}

	day := b.ensureDay(date)
	for i := range day.Spots {
		if day.Spots[i].ID == spot.ID {
			day.Spots[i] = spot
			return
		}
	}
	day.Spots = append(day.Spots, spot)
}

// EditSpots patches the spot with the given id. It reports whether the spot
// was found.
func (b *Builder) EditSpots(date DateKey, id string, patch SpotPatch) bool {
	day, ok := b.plans[date]
	if !ok {
		return false
	}
	for i := range day.Spots {
		if day.Spots[i].ID == id {
			patch.apply(&day.Spots[i])
			return true
		}
	}
	return false
}

// GetSpotInfo returns copies of the day's spots with the given role. SPOT
// results are ordered by Order.
func (b *Builder) GetSpotInfo(date DateKey, role Role) []Spot {
	day, ok := b.plans[date]
	if !ok {
		return nil
	}
	var out []Spot
	for _, s := range day.Spots {
		if s.Role == role {
			out = append(out, s)
		}
	}
	if role == RoleSpot {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	}
	return out
}

// Days returns the buckets ordered by date.
func (b *Builder) Days() []Day {
	keys := b.dateKeys()
	out := make([]Day, 0, len(keys))
	for _, k := range keys {
		day := b.plans[k]
		out = append(out, Day{Date: k, Spots: append([]Spot(nil), day.Spots...)})
	}
	return out
}

func (b *Builder) State() State {
	return State{TripInfo: b.tripInfo, Plans: b.Days()}
}

func (b *Builder) Errors() Errors {
	return b.errs
}

func (b *Builder) dateKeys() []DateKey {
	keys := make([]DateKey, 0, len(b.plans))
	for k := range b.plans {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
