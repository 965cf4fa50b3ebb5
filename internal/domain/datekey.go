package domain

import "time"

const DateLayout = "2006-01-02"

// DateKey identifies a calendar day as YYYY-MM-DD.
type DateKey string

func NewDateKey(t time.Time) DateKey {
	return DateKey(t.Format(DateLayout))
}

func ParseDateKey(s string) (DateKey, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", err
	}
	return NewDateKey(t), nil
}

func (k DateKey) Time() (time.Time, error) {
	return time.Parse(DateLayout, string(k))
}

func (k DateKey) String() string {
	return string(k)
}

// DateRange returns the keys from start to end inclusive. It returns nil when
// end is before start.
func DateRange(start, end time.Time) []DateKey {
	start = truncateDay(start)
	end = truncateDay(end)
	if end.Before(start) {
		return nil
	}
	var keys []DateKey
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		keys = append(keys, NewDateKey(d))
	}
	return keys
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
