package planner

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/moptabi/moptabi-backend/internal/domain"
)

const (
	MsgTitleRequired     = "タイトルを入力してください"
	MsgStartDateRequired = "開始日を選択してください"
	MsgEndDateRequired   = "終了日を選択してください"
	MsgDateFormat        = "日付の形式が正しくありません"
	MsgEndBeforeStart    = "終了日は開始日以降の日付を選択してください"
	MsgSpotsRequired     = "スポットを1件以上追加してください"
	MsgOutOfRange        = "旅行期間外の日付です"
	MsgTimeFormat        = "時刻はHH:mm形式で入力してください"
	MsgStayOrder         = "滞在終了時刻は開始時刻以降にしてください"
	MsgRoleInvalid       = "スポットの種別が正しくありません"
)

var hhmm = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// CheckValidation recomputes every error map from the current state and
// reports whether any violation was found. All violations are collected.
func (b *Builder) CheckValidation() bool {
	errs := newErrors()
	info := b.tripInfo

	if strings.TrimSpace(info.Title) == "" {
		errs.setTripInfo("title", MsgTitleRequired)
	}

	var rangeKeys []DateKey
	start, startErr := parseKey(info.StartDate)
	end, endErr := parseKey(info.EndDate)
	switch {
	case info.StartDate == "":
		errs.setTripInfo("startDate", MsgStartDateRequired)
	case startErr != nil:
		errs.setTripInfo("startDate", MsgDateFormat)
	}
	switch {
	case info.EndDate == "":
		errs.setTripInfo("endDate", MsgEndDateRequired)
	case endErr != nil:
		errs.setTripInfo("endDate", MsgDateFormat)
	}
	if info.StartDate != "" && info.EndDate != "" && startErr == nil && endErr == nil {
		switch {
		case end.Before(start):
			errs.setTripInfo("endDate", MsgEndBeforeStart)
		case int(end.Sub(start).Hours()/24)+1 > domain.MaxPlanDays:
			errs.setTripInfo("endDate", domain.PlanDaysMessage)
		default:
			rangeKeys = domain.DateRange(start, end)
		}
	}

	inRange := make(map[DateKey]struct{}, len(rangeKeys))
	dates := make([]DateKey, 0, len(rangeKeys)+len(b.plans))
	for _, k := range rangeKeys {
		inRange[k] = struct{}{}
		dates = append(dates, k)
	}
	for _, k := range b.dateKeys() {
		if _, ok := inRange[k]; ok {
			continue
		}
		if len(rangeKeys) > 0 {
			errs.setPlan(k, "date", MsgOutOfRange)
		}
		dates = append(dates, k)
	}

	for _, date := range dates {
		b.checkDay(errs, date)
	}
	for _, d := range info.Days {
		if d.Memo != nil && utf8.RuneCountInString(*d.Memo) > domain.MaxMemoLength {
			errs.setPlan(d.Date, "memo", domain.MemoLengthMessage)
		}
	}

	b.errs = errs
	return !errs.Empty()
}

func (b *Builder) checkDay(errs Errors, date DateKey) {
	var spots []Spot
	if day, ok := b.plans[date]; ok {
		spots = day.Spots
	}

	count := 0
	for _, s := range spots {
		if s.Role == RoleSpot {
			count++
		}
	}
	switch {
	case count == 0:
		errs.setPlan(date, "spots", MsgSpotsRequired)
	case count > domain.MaxSpotsPerDay:
		errs.setPlan(date, "spots", domain.SpotsPerDayMessage)
	}

	for _, s := range spots {
		if !s.Role.Valid() {
			errs.setSpot(date, s.ID, "role", MsgRoleInvalid)
		}
		for field, msg := range ValidateSpot(s) {
			errs.setSpot(date, s.ID, field, msg)
		}
	}
}

// ValidateSpot checks the memo length and stay times of one spot. Empty stay
// times are allowed.
func ValidateSpot(s Spot) FieldErrors {
	errs := FieldErrors{}
	if s.Memo != nil && utf8.RuneCountInString(*s.Memo) > domain.MaxMemoLength {
		errs["memo"] = domain.MemoLengthMessage
	}
	startOK := s.StayStart == "" || hhmm.MatchString(s.StayStart)
	endOK := s.StayEnd == "" || hhmm.MatchString(s.StayEnd)
	if !startOK {
		errs["stayStart"] = MsgTimeFormat
	}
	if !endOK {
		errs["stayEnd"] = MsgTimeFormat
	}
	// zero-padded HH:mm compares lexically
	if startOK && endOK && s.StayStart != "" && s.StayEnd != "" && s.StayStart > s.StayEnd {
		errs["stayEnd"] = MsgStayOrder
	}
	return errs
}

func parseKey(k DateKey) (time.Time, error) {
	if k == "" {
		return time.Time{}, nil
	}
	return k.Time()
}
