package app

import (
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
)

type CreateProjectRequest struct {
	Name       string
	ShortID    string
	StartDate  time.Time
	TargetDate *time.Time
	Unit       domain.DurationUnit
	Currency   string
	Calendar   domain.CalendarConfig
}

// NewCreateProjectRequest fills in a day-based project on the default
// Monday to Friday calendar.
func NewCreateProjectRequest(name, shortID string, start time.Time) CreateProjectRequest {
	return CreateProjectRequest{
		Name:      name,
		ShortID:   shortID,
		StartDate: start,
		Unit:      domain.UnitDays,
		Calendar:  domain.DefaultCalendar(),
	}
}

// ProjectSettings is a partial update of a project; nil fields are unchanged.
// Changing any of them reschedules the network.
type ProjectSettings struct {
	Name        *string
	StartDate   *time.Time
	TargetDate  *time.Time
	ClearTarget bool
	Unit        *domain.DurationUnit
	Currency    *string
	WorkingDays *[]time.Weekday
	Holidays    *[]time.Time
	HoursPerDay *float64
	DayStart    *time.Duration
}
