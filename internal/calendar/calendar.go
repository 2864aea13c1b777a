// Package calendar implements working-time arithmetic over a project calendar.
//
// Every working day contributes one window [day+DayStart, day+DayStart+HoursPerDay].
// Durations are measured in the project unit (days or hours); a day is
// HoursPerDay working hours. Internally durations are handled at one-second
// resolution so that adding and measuring working time are exact inverses.
package calendar

import (
	"math"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
)

// maxSearchDays bounds the scan for the next or previous working day.
const maxSearchDays = 3660

type dateKey struct {
	y int
	m time.Month
	d int
}

func keyOf(t time.Time) dateKey {
	y, m, d := t.Date()
	return dateKey{y, m, d}
}

// Calendar answers working-time questions. It is immutable and safe for
// concurrent use.
type Calendar struct {
	unit        domain.DurationUnit
	workdays    [7]bool
	holidays    map[dateKey]struct{}
	hoursPerDay float64
	dayStart    time.Duration
	window      time.Duration
	blocked     func(time.Time) bool
}

// New validates cfg and builds a Calendar measuring durations in unit.
func New(cfg domain.CalendarConfig, unit domain.DurationUnit) (*Calendar, error) {
	calErr := func(format string, args ...any) error {
		return domain.Errorf(domain.ErrValidation, domain.Entity{Type: domain.EntityCalendar}, format, args...)
	}
	if unit != domain.UnitDays && unit != domain.UnitHours {
		return nil, calErr("unknown duration unit %q", unit)
	}
	if math.IsNaN(cfg.HoursPerDay) || cfg.HoursPerDay <= 0 || cfg.HoursPerDay > 24 {
		return nil, calErr("hours per day must be in (0, 24], got %.2f", cfg.HoursPerDay)
	}
	if cfg.DayStart < 0 {
		return nil, calErr("day start must not be negative")
	}
	window := time.Duration(math.Round(cfg.HoursPerDay*3600)) * time.Second
	if cfg.DayStart+window > 24*time.Hour {
		return nil, calErr("working window %s + %.2fh runs past midnight", cfg.DayStart, cfg.HoursPerDay)
	}

	c := &Calendar{
		unit:        unit,
		holidays:    make(map[dateKey]struct{}, len(cfg.Holidays)),
		hoursPerDay: cfg.HoursPerDay,
		dayStart:    cfg.DayStart,
		window:      window,
	}
	for _, wd := range cfg.WorkingDays {
		if wd < time.Sunday || wd > time.Saturday {
			return nil, calErr("invalid weekday %d", int(wd))
		}
		c.workdays[wd] = true
	}
	if len(cfg.WorkingDays) == 0 {
		return nil, calErr("at least one working weekday is required")
	}
	for _, h := range cfg.Holidays {
		c.holidays[keyOf(h)] = struct{}{}
	}
	return c, nil
}

// MustNew is New for fixed configurations known to be valid.
func MustNew(cfg domain.CalendarConfig, unit domain.DurationUnit) *Calendar {
	c, err := New(cfg, unit)
	if err != nil {
		panic(err)
	}
	return c
}

// ForResource derives a calendar on which the resource's exception days are
// also non-working. The receiver is unchanged.
func (c *Calendar) ForResource(exceptions []domain.ExceptionInterval) *Calendar {
	if len(exceptions) == 0 {
		return c
	}
	derived := *c
	parent := c.blocked
	exs := append([]domain.ExceptionInterval(nil), exceptions...)
	derived.blocked = func(day time.Time) bool {
		if parent != nil && parent(day) {
			return true
		}
		for _, ex := range exs {
			if ex.Contains(day) {
				return true
			}
		}
		return false
	}
	return &derived
}

func (c *Calendar) Unit() domain.DurationUnit { return c.unit }

func (c *Calendar) HoursPerDay() float64 { return c.hoursPerDay }

// IsWorking reports whether day is a working day.
func (c *Calendar) IsWorking(day time.Time) bool {
	if !c.workdays[day.Weekday()] {
		return false
	}
	if _, ok := c.holidays[keyOf(day)]; ok {
		return false
	}
	return c.blocked == nil || !c.blocked(day)
}

// ToDuration converts an amount in the calendar's unit to working clock time.
func (c *Calendar) ToDuration(units float64) time.Duration {
	hours := units
	if c.unit == domain.UnitDays {
		hours = units * c.hoursPerDay
	}
	return time.Duration(math.Round(hours*3600)) * time.Second
}

// FromDuration converts working clock time to the calendar's unit.
func (c *Calendar) FromDuration(d time.Duration) float64 {
	hours := d.Hours()
	if c.unit == domain.UnitDays {
		return hours / c.hoursPerDay
	}
	return hours
}

// Window returns the working window of the given day.
func (c *Calendar) Window(day time.Time) (start, end time.Time) {
	start = domain.DateOf(day).Add(c.dayStart)
	return start, start.Add(c.window)
}

func (c *Calendar) nextWorkingDay(day time.Time) time.Time {
	d := domain.DateOf(day)
	for i := 0; i < maxSearchDays; i++ {
		d = d.AddDate(0, 0, 1)
		if c.IsWorking(d) {
			return d
		}
	}
	return d
}

func (c *Calendar) prevWorkingDay(day time.Time) time.Time {
	d := domain.DateOf(day)
	for i := 0; i < maxSearchDays; i++ {
		d = d.AddDate(0, 0, -1)
		if c.IsWorking(d) {
			return d
		}
	}
	return d
}

// NextWorkingTime returns the earliest instant >= t at which work can begin.
func (c *Calendar) NextWorkingTime(t time.Time) time.Time {
	if c.IsWorking(t) {
		ws, we := c.Window(t)
		if t.Before(ws) {
			return ws
		}
		if t.Before(we) {
			return t
		}
	}
	ws, _ := c.Window(c.nextWorkingDay(t))
	return ws
}

// PrevWorkingTime returns the latest instant <= t at which work can end.
func (c *Calendar) PrevWorkingTime(t time.Time) time.Time {
	if c.IsWorking(t) {
		ws, we := c.Window(t)
		if t.After(we) {
			return we
		}
		if t.After(ws) {
			return t
		}
	}
	_, we := c.Window(c.prevWorkingDay(t))
	return we
}

// SnapForward is NextWorkingTime except that the close of a window is kept.
// Zero-duration tasks use it so a milestone sits at its predecessor's finish.
func (c *Calendar) SnapForward(t time.Time) time.Time {
	if c.IsWorking(t) {
		ws, we := c.Window(t)
		if t.Before(ws) {
			return ws
		}
		if !t.After(we) {
			return t
		}
	}
	ws, _ := c.Window(c.nextWorkingDay(t))
	return ws
}

// SnapBackward is PrevWorkingTime except that the opening of a window is kept.
func (c *Calendar) SnapBackward(t time.Time) time.Time {
	if c.IsWorking(t) {
		ws, we := c.Window(t)
		if t.After(we) {
			return we
		}
		if !t.Before(ws) {
			return t
		}
	}
	_, we := c.Window(c.prevWorkingDay(t))
	return we
}

// AddDuration returns the instant at which units of work starting at start
// complete. A start outside working time shifts forward to the next working
// instant. A zero amount returns the snapped start.
func (c *Calendar) AddDuration(start time.Time, units float64) time.Time {
	d := c.ToDuration(units)
	switch {
	case d == 0:
		return c.SnapForward(start)
	case d < 0:
		return c.SubtractDuration(start, -units)
	}
	t := c.NextWorkingTime(start)
	for {
		_, we := c.Window(t)
		avail := we.Sub(t)
		if d <= avail {
			return t.Add(d)
		}
		d -= avail
		t, _ = c.Window(c.nextWorkingDay(t))
	}
}

// SubtractDuration returns the latest instant from which units of work end at end.
func (c *Calendar) SubtractDuration(end time.Time, units float64) time.Time {
	d := c.ToDuration(units)
	switch {
	case d == 0:
		return c.SnapBackward(end)
	case d < 0:
		return c.AddDuration(end, -units)
	}
	t := c.PrevWorkingTime(end)
	// A window that closes at midnight ends on the following date.
	day := domain.DateOf(t)
	if ws, _ := c.Window(day); !c.IsWorking(day) || !t.After(ws) {
		day = c.prevWorkingDay(day)
	}
	for {
		ws, _ := c.Window(day)
		avail := t.Sub(ws)
		if d <= avail {
			return t.Add(-d)
		}
		d -= avail
		day = c.prevWorkingDay(day)
		_, t = c.Window(day)
	}
}

// Shift moves t by a signed amount of working time. Zero leaves t unchanged.
func (c *Calendar) Shift(t time.Time, units float64) time.Time {
	switch {
	case units > 0:
		return c.AddDuration(t, units)
	case units < 0:
		return c.SubtractDuration(t, -units)
	}
	return t
}

// WorkingTimeBetween measures working time from start to end in the
// calendar's unit. It is negative when end precedes start.
func (c *Calendar) WorkingTimeBetween(start, end time.Time) float64 {
	if start.Equal(end) {
		return 0
	}
	if end.Before(start) {
		return -c.WorkingTimeBetween(end, start)
	}
	return c.FromDuration(c.workingClock(start, end))
}

func (c *Calendar) workingClock(start, end time.Time) time.Duration {
	var total time.Duration
	for day := domain.DateOf(start); !day.After(end); day = day.AddDate(0, 0, 1) {
		if !c.IsWorking(day) {
			continue
		}
		ws, we := c.Window(day)
		lo, hi := ws, we
		if start.After(lo) {
			lo = start
		}
		if end.Before(hi) {
			hi = end
		}
		if hi.After(lo) {
			total += hi.Sub(lo)
		}
	}
	return total
}

// WorkingDays lists the working days whose window overlaps [start, end].
// A zero-length span yields no days.
func (c *Calendar) WorkingDays(start, end time.Time) []time.Time {
	if !end.After(start) {
		return nil
	}
	var days []time.Time
	for day := domain.DateOf(start); !day.After(end); day = day.AddDate(0, 0, 1) {
		if !c.IsWorking(day) {
			continue
		}
		ws, we := c.Window(day)
		if end.After(ws) && start.Before(we) {
			days = append(days, day)
		}
	}
	return days
}

// WorkingTimeOn measures the working time of [start, end] that falls on day.
func (c *Calendar) WorkingTimeOn(day, start, end time.Time) float64 {
	if !c.IsWorking(day) {
		return 0
	}
	ws, we := c.Window(day)
	if start.After(ws) {
		ws = start
	}
	if end.Before(we) {
		we = end
	}
	if !we.After(ws) {
		return 0
	}
	return c.FromDuration(we.Sub(ws))
}
