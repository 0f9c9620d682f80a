package habit

import "time"

// dayLayout is the canonical calendar-day form used for bucketing and the
// completions uniqueness key.
const dayLayout = "2006-01-02"

// DayOf truncates t to its calendar date in loc. This is the single
// date-bucketing function: "same day" always means equal DayOf results, never
// an incidental string comparison of full timestamps. A nil location means
// UTC.
func DayOf(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(dayLayout)
}

// previousDay returns the calendar day before the given "YYYY-MM-DD" day.
func previousDay(day string) string {
	t, err := time.Parse(dayLayout, day)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -1).Format(dayLayout)
}
