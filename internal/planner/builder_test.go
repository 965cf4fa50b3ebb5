package planner

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moptabi/moptabi-backend/internal/domain"
)

const day1 DateKey = "2025-05-01"

func strPtr(s string) *string { return &s }

func TestSetSpotsInsertReplaceDelete(t *testing.T) {
	b := New()

	b.SetSpots(day1, Spot{ID: "kiyomizu", Name: "清水寺"}, false)
	days := b.Days()
	require.Len(t, days, 1)
	require.Len(t, days[0].Spots, 1)
	assert.Equal(t, RoleSpot, days[0].Spots[0].Role)

	b.SetSpots(day1, Spot{ID: "kiyomizu", Name: "清水寺 本堂"}, false)
	days = b.Days()
	require.Len(t, days[0].Spots, 1)
	assert.Equal(t, "清水寺 本堂", days[0].Spots[0].Name)

	b.SetSpots(day1, Spot{ID: "kiyomizu"}, true)
	days = b.Days()
	require.Len(t, days, 1)
	assert.Empty(t, days[0].Spots)
}

func TestSetSpotsDeleteOnMissingDayIsNoop(t *testing.T) {
	b := New()
	b.SetSpots(day1, Spot{ID: "x"}, true)
	assert.Empty(t, b.Days())
}

func TestEditSpots(t *testing.T) {
	b := New()
	b.SetSpots(day1, Spot{ID: "a", StayStart: "09:00"}, false)

	ok := b.EditSpots(day1, "a", SpotPatch{StayEnd: strPtr("10:30"), Memo: strPtr("朝一番")})
	require.True(t, ok)

	spots := b.GetSpotInfo(day1, RoleSpot)
	require.Len(t, spots, 1)
	assert.Equal(t, "09:00", spots[0].StayStart)
	assert.Equal(t, "10:30", spots[0].StayEnd)
	assert.Equal(t, "朝一番", *spots[0].Memo)

	assert.False(t, b.EditSpots(day1, "missing", SpotPatch{}))
	assert.False(t, b.EditSpots("2025-05-02", "a", SpotPatch{}))
}

func TestGetSpotInfoFiltersAndOrders(t *testing.T) {
	b := New()
	b.SetSpots(day1, Spot{ID: "hotel", Role: RoleDeparture}, false)
	b.SetSpots(day1, Spot{ID: "c", Order: 3}, false)
	b.SetSpots(day1, Spot{ID: "a", Order: 1}, false)
	b.SetSpots(day1, Spot{ID: "b", Order: 2}, false)
	b.SetSpots(day1, Spot{ID: "station", Role: RoleDestination}, false)

	spots := b.GetSpotInfo(day1, RoleSpot)
	ids := make([]string, 0, len(spots))
	for _, s := range spots {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)

	dep := b.GetSpotInfo(day1, RoleDeparture)
	require.Len(t, dep, 1)
	assert.Equal(t, "hotel", dep[0].ID)
	assert.Nil(t, b.GetSpotInfo("2030-01-01", RoleSpot))
}

func TestSetRangeCreatesAndPrunesBuckets(t *testing.T) {
	b := New()
	b.SetSpots("2025-04-30", Spot{ID: "old"}, false)

	start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	b.SetRange(start, start.AddDate(0, 0, 2))

	days := b.Days()
	require.Len(t, days, 3)
	assert.Equal(t, DateKey("2025-05-01"), days[0].Date)
	assert.Equal(t, DateKey("2025-05-03"), days[2].Date)
	assert.Equal(t, DateKey("2025-05-01"), b.TripInfo().StartDate)
}

func TestCheckValidationAccumulates(t *testing.T) {
	b := New()
	b.SetTripInfo(TripInfo{Title: "", EndDate: day1})
	b.SetSpots(day1, Spot{ID: "hotel", Role: RoleDeparture}, false)

	require.True(t, b.CheckValidation())
	errs := b.Errors()
	assert.Equal(t, MsgTitleRequired, errs.TripInfo["title"])
	assert.Equal(t, MsgStartDateRequired, errs.TripInfo["startDate"])
	assert.Equal(t, MsgSpotsRequired, errs.Plans[day1]["spots"])
}

func TestCheckValidationValidState(t *testing.T) {
	b := New()
	b.SetTripInfo(TripInfo{Title: "京都", StartDate: day1, EndDate: day1})
	b.SetSpots(day1, Spot{ID: "a", StayStart: "09:00", StayEnd: "10:00"}, false)

	assert.False(t, b.CheckValidation())
	assert.True(t, b.Errors().Empty())
}

func TestCheckValidationRangeRules(t *testing.T) {
	b := New()
	b.SetTripInfo(TripInfo{Title: "t", StartDate: "2025-05-03", EndDate: "2025-05-01"})
	require.True(t, b.CheckValidation())
	assert.Equal(t, MsgEndBeforeStart, b.Errors().TripInfo["endDate"])

	b.SetTripInfo(TripInfo{Title: "t", StartDate: "2025-05-01", EndDate: "2025-05-08"})
	require.True(t, b.CheckValidation())
	assert.Equal(t, domain.PlanDaysMessage, b.Errors().TripInfo["endDate"])

	b.SetTripInfo(TripInfo{Title: "t", StartDate: "2025/05/01", EndDate: "2025-05-01"})
	require.True(t, b.CheckValidation())
	assert.Equal(t, MsgDateFormat, b.Errors().TripInfo["startDate"])
}

func TestCheckValidationEveryDayInRange(t *testing.T) {
	b := New()
	b.SetTripInfo(TripInfo{Title: "t", StartDate: "2025-05-01", EndDate: "2025-05-03"})
	b.SetSpots("2025-05-02", Spot{ID: "a"}, false)
	b.SetSpots("2025-05-09", Spot{ID: "b"}, false)

	require.True(t, b.CheckValidation())
	errs := b.Errors()
	assert.Contains(t, errs.Plans, DateKey("2025-05-01"))
	assert.NotContains(t, errs.Plans, DateKey("2025-05-02"))
	assert.Contains(t, errs.Plans, DateKey("2025-05-03"))
	assert.Equal(t, MsgOutOfRange, errs.Plans["2025-05-09"]["date"])
}

func TestCheckValidationSpotRules(t *testing.T) {
	b := New()
	b.SetTripInfo(TripInfo{
		Title: "t", StartDate: day1, EndDate: day1,
		Days: []DayInfo{{Date: day1, Memo: strPtr(strings.Repeat("あ", domain.MaxMemoLength+1))}},
	})
	for i := 0; i < domain.MaxSpotsPerDay+1; i++ {
		b.SetSpots(day1, Spot{ID: string(rune('a' + i)), Order: i}, false)
	}
	b.EditSpots(day1, "a", SpotPatch{Memo: strPtr(strings.Repeat("x", domain.MaxMemoLength+1))})
	b.EditSpots(day1, "b", SpotPatch{StayStart: strPtr("9:00")})
	b.EditSpots(day1, "c", SpotPatch{StayStart: strPtr("12:00"), StayEnd: strPtr("11:00")})

	require.True(t, b.CheckValidation())
	errs := b.Errors()
	assert.Equal(t, domain.SpotsPerDayMessage, errs.Plans[day1]["spots"])
	assert.Equal(t, domain.MemoLengthMessage, errs.Plans[day1]["memo"])
	assert.Equal(t, domain.MemoLengthMessage, errs.Spots[day1]["a"]["memo"])
	assert.Equal(t, MsgTimeFormat, errs.Spots[day1]["b"]["stayStart"])
	assert.Equal(t, MsgStayOrder, errs.Spots[day1]["c"]["stayEnd"])
}

func TestMemoLengthCountsCharacters(t *testing.T) {
	b := New()
	b.SetTripInfo(TripInfo{Title: "t", StartDate: day1, EndDate: day1})
	b.SetSpots(day1, Spot{ID: "a", Memo: strPtr(strings.Repeat("あ", domain.MaxMemoLength))}, false)

	assert.False(t, b.CheckValidation())
}

func TestFromStateRoundTrip(t *testing.T) {
	state := State{
		TripInfo: TripInfo{Title: "t", StartDate: day1, EndDate: day1},
		Plans: []Day{{Date: day1, Spots: []Spot{
			{ID: "a", Order: 2},
			{ID: "b", Order: 1},
			{ID: "a", Order: 3},
		}}},
	}
	b := FromState(state)
	got := b.State()
	require.Len(t, got.Plans, 1)
	assert.Len(t, got.Plans[0].Spots, 2)
	assert.Equal(t, 3, b.GetSpotInfo(day1, RoleSpot)[1].Order)
}

func TestReset(t *testing.T) {
	b := New()
	b.SetTripInfo(TripInfo{Title: "t"})
	b.SetSpots(day1, Spot{ID: "a"}, false)
	b.CheckValidation()

	b.Reset()
	assert.Empty(t, b.Days())
	assert.Equal(t, TripInfo{}, b.TripInfo())
	assert.True(t, b.Errors().Empty())
}

func TestCheckValidationRejectsUnknownRole(t *testing.T) {
	b := New()
	b.SetTripInfo(TripInfo{Title: "京都", StartDate: day1, EndDate: day1})
	b.SetSpots(day1, Spot{ID: "a"}, false)
	b.SetSpots(day1, Spot{ID: "b", Role: Role("spot")}, false)

	require.True(t, b.CheckValidation())
	errs := b.Errors()
	assert.Equal(t, MsgRoleInvalid, errs.Spots[day1]["b"]["role"])
	assert.NotContains(t, errs.Spots[day1], "a")
	assert.NotContains(t, errs.Plans, day1)
}

func TestCheckValidationBlankTitle(t *testing.T) {
	b := New()
	b.SetTripInfo(TripInfo{Title: "   ", StartDate: day1, EndDate: day1})
	b.SetSpots(day1, Spot{ID: "a"}, false)

	require.True(t, b.CheckValidation())
	assert.Equal(t, MsgTitleRequired, b.Errors().TripInfo["title"])
}
