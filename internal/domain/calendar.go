package domain

import "time"

// DateLayout is the wire format for calendar days.
const DateLayout = "2006-01-02"

// CalendarConfig describes the project's working time.
type CalendarConfig struct {
	WorkingDays []time.Weekday
	Holidays    []time.Time
	HoursPerDay float64
	// DayStart is the offset from midnight at which the working window opens.
	DayStart time.Duration
}

// DefaultCalendar is Monday to Friday, 8 hours a day starting at 08:00.
func DefaultCalendar() CalendarConfig {
	return CalendarConfig{
		WorkingDays: []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		HoursPerDay: 8,
		DayStart:    8 * time.Hour,
	}
}

// DateOf truncates t to midnight in its own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
