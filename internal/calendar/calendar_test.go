package calendar

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2025-03-03 is a Monday.
func at(day, hour, min int) time.Time {
	return time.Date(2025, 3, day, hour, min, 0, 0, time.UTC)
}

func weekdays(t *testing.T) *Calendar {
	t.Helper()
	c, err := New(domain.DefaultCalendar(), domain.UnitDays)
	require.NoError(t, err)
	return c
}

func TestIsWorking(t *testing.T) {
	cfg := domain.DefaultCalendar()
	cfg.Holidays = []time.Time{at(5, 0, 0)}
	c := MustNew(cfg, domain.UnitDays)

	assert.True(t, c.IsWorking(at(3, 0, 0)))
	assert.False(t, c.IsWorking(at(5, 12, 0)), "holiday")
	assert.False(t, c.IsWorking(at(8, 0, 0)), "saturday")
	assert.False(t, c.IsWorking(at(9, 0, 0)), "sunday")
}

func TestAddDuration_WorkWeek(t *testing.T) {
	c := weekdays(t)
	assert.Equal(t, at(7, 16, 0), c.AddDuration(at(3, 8, 0), 5))
	assert.Equal(t, at(3, 12, 0), c.AddDuration(at(3, 8, 0), 0.5))
	assert.Equal(t, at(10, 16, 0), c.AddDuration(at(7, 8, 0), 2), "crosses the weekend")
}

func TestAddDuration_StartOnWeekendShiftsForward(t *testing.T) {
	c := weekdays(t)
	assert.Equal(t, at(10, 16, 0), c.AddDuration(at(8, 10, 0), 1))
	assert.Equal(t, at(10, 8, 0), c.NextWorkingTime(at(8, 10, 0)))
	assert.Equal(t, at(10, 8, 0), c.NextWorkingTime(at(7, 16, 0)), "window close is not a start")
}

func TestAddDuration_Zero(t *testing.T) {
	c := weekdays(t)
	assert.Equal(t, at(7, 16, 0), c.AddDuration(at(7, 16, 0), 0), "milestone stays at the finish")
	assert.Equal(t, at(10, 8, 0), c.AddDuration(at(8, 9, 0), 0))
}

func TestAddDuration_SkipsHolidays(t *testing.T) {
	cfg := domain.DefaultCalendar()
	cfg.Holidays = []time.Time{at(5, 0, 0)}
	c := MustNew(cfg, domain.UnitDays)
	assert.Equal(t, at(10, 16, 0), c.AddDuration(at(3, 8, 0), 5))
}

func TestAddDuration_Hours(t *testing.T) {
	c := MustNew(domain.DefaultCalendar(), domain.UnitHours)
	assert.Equal(t, at(4, 10, 0), c.AddDuration(at(3, 8, 0), 10))
	assert.InDelta(t, 10.0, c.WorkingTimeBetween(at(3, 8, 0), at(4, 10, 0)), 1e-9)
}

func TestSubtractDuration(t *testing.T) {
	c := weekdays(t)
	assert.Equal(t, at(3, 8, 0), c.SubtractDuration(at(7, 16, 0), 5))
	assert.Equal(t, at(3, 8, 0), c.SubtractDuration(at(10, 8, 0), 5), "Monday open is Friday close")
	assert.Equal(t, at(7, 8, 0), c.Shift(at(7, 16, 0), -1))
	assert.Equal(t, at(7, 16, 0), c.Shift(at(7, 16, 0), 0))
}

func TestWorkingTimeBetween(t *testing.T) {
	c := weekdays(t)
	assert.InDelta(t, 5.0, c.WorkingTimeBetween(at(3, 8, 0), at(7, 16, 0)), 1e-9)
	assert.InDelta(t, -5.0, c.WorkingTimeBetween(at(7, 16, 0), at(3, 8, 0)), 1e-9)
	assert.InDelta(t, 0.0, c.WorkingTimeBetween(at(7, 16, 0), at(10, 8, 0)), 1e-9)
	assert.InDelta(t, 0.25, c.WorkingTimeBetween(at(3, 6, 0), at(3, 10, 0)), 1e-9)
}

func TestWorkingTimeBetween_InvertsAddDuration(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	cfg := domain.DefaultCalendar()
	cfg.Holidays = []time.Time{at(14, 0, 0), at(26, 0, 0)}
	c := MustNew(cfg, domain.UnitDays)

	for i := 0; i < 500; i++ {
		day := at(1+rng.Intn(28), 0, 0)
		// Working-aligned start: an instant inside a working window.
		start := c.NextWorkingTime(day.Add(time.Duration(rng.Intn(24*60)) * time.Minute))
		n := float64(rng.Intn(160)) / 4

		end := c.AddDuration(start, n)
		assert.InDelta(t, n, c.WorkingTimeBetween(start, end), 1e-9, "start=%s n=%.2f", start, n)
		if n > 0 {
			assert.Equal(t, start, c.SubtractDuration(end, n), "start=%s n=%.2f", start, n)
		}
	}
}

func TestForResource_ExceptionDaysAreNonWorking(t *testing.T) {
	c := weekdays(t)
	ex, err := domain.ParseException("2025-03-04 to 2025-03-05")
	require.NoError(t, err)
	rc := c.ForResource([]domain.ExceptionInterval{ex})

	assert.False(t, rc.IsWorking(at(4, 0, 0)))
	assert.True(t, c.IsWorking(at(4, 0, 0)), "global calendar unchanged")
	assert.InDelta(t, 3.0, rc.WorkingTimeBetween(at(3, 8, 0), at(7, 16, 0)), 1e-9)
	assert.Same(t, c, c.ForResource(nil))
}

func TestWorkingDays(t *testing.T) {
	c := weekdays(t)
	days := c.WorkingDays(at(6, 8, 0), at(11, 16, 0))
	require.Len(t, days, 4)
	assert.Equal(t, at(6, 0, 0), days[0])
	assert.Equal(t, at(11, 0, 0), days[3])
	assert.Empty(t, c.WorkingDays(at(7, 16, 0), at(7, 16, 0)))
	assert.Empty(t, c.WorkingDays(at(7, 16, 0), at(10, 8, 0)))
	assert.Empty(t, c.WorkingDays(at(5, 12, 0), at(5, 12, 0)), "milestone inside a window")
	assert.InDelta(t, 0.5, c.WorkingTimeOn(at(6, 0, 0), at(6, 12, 0), at(11, 16, 0)), 1e-9)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	_, err := New(domain.CalendarConfig{HoursPerDay: 8}, domain.UnitDays)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	cfg := domain.DefaultCalendar()
	cfg.HoursPerDay = 0
	_, err = New(cfg, domain.UnitDays)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = New(domain.DefaultCalendar(), domain.DurationUnit("weeks"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestNew_WindowMustCloseByMidnight(t *testing.T) {
	cfg := domain.DefaultCalendar()
	cfg.HoursPerDay = 20
	_, err := New(cfg, domain.UnitDays)
	assert.ErrorIs(t, err, domain.ErrValidation)

	cfg.HoursPerDay = math.NaN()
	_, err = New(cfg, domain.UnitDays)
	assert.ErrorIs(t, err, domain.ErrValidation)

	cfg.HoursPerDay = 16
	c := MustNew(cfg, domain.UnitDays)
	ws, we := c.Window(at(3, 12, 0))
	assert.Equal(t, at(3, 8, 0), ws)
	assert.Equal(t, at(4, 0, 0), we)
}

func TestNew_RoundTheClockDay(t *testing.T) {
	cfg := domain.DefaultCalendar()
	cfg.HoursPerDay = 24
	cfg.DayStart = 0
	c, err := New(cfg, domain.UnitDays)
	require.NoError(t, err)

	ws, we := c.Window(at(3, 12, 0))
	assert.Equal(t, at(3, 0, 0), ws)
	assert.Equal(t, at(4, 0, 0), we)

	// Friday 00:00 plus two days skips the weekend.
	end := c.AddDuration(at(7, 0, 0), 2)
	assert.Equal(t, at(11, 0, 0), end)
	assert.InDelta(t, 2.0, c.WorkingTimeBetween(at(7, 0, 0), end), 1e-9)
	assert.Equal(t, at(7, 0, 0), c.SubtractDuration(end, 2))
}
