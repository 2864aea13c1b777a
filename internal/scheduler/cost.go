package scheduler

import (
	"sort"
	"time"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/domain"
)

// dailyBreakdownSpan is the project span below which costs break down per
// day instead of per month.
const dailyBreakdownSpan = 30 * 24 * time.Hour

type CostInput struct {
	Calendar  *calendar.Calendar
	Tasks     []domain.Task
	Resources []domain.Resource
	// AsOf limits costs to work performed up to this instant; zero means the
	// full planned span.
	AsOf time.Time
}

type ResourceCost struct {
	ResourceID int
	Name       string
	// Work is allocation-weighted working time in project units.
	Work float64
	Cost float64
}

type TaskCost struct {
	TaskID int
	Work   float64
	Cost   float64
}

type CostReport struct {
	Resources []ResourceCost
	Tasks     []TaskCost
	Total     float64
}

type PeriodCost struct {
	Label string
	Start time.Time
	End   time.Time
	Cost  float64
}

// AssignmentWork is the working time a resource puts into [start, end] on its
// own calendar, before allocation weighting.
func AssignmentWork(cal *calendar.Calendar, r domain.Resource, start, end time.Time) float64 {
	if !end.After(start) {
		return 0
	}
	return cal.ForResource(r.Exceptions).WorkingTimeBetween(start, end)
}

// ComputeCosts rolls cost up per resource and per task:
// rate x allocation x effective working time on the resource's calendar.
func ComputeCosts(in CostInput) CostReport {
	resources := make(map[int]domain.Resource, len(in.Resources))
	perResource := make(map[int]*ResourceCost, len(in.Resources))
	for _, r := range in.Resources {
		resources[r.ID] = r
		perResource[r.ID] = &ResourceCost{ResourceID: r.ID, Name: r.Name}
	}

	var report CostReport
	for _, t := range in.Tasks {
		if t.IsSummary() {
			continue
		}
		tc := TaskCost{TaskID: t.ID}
		end := t.End
		if !in.AsOf.IsZero() && in.AsOf.Before(end) {
			end = in.AsOf
		}
		for _, a := range t.Assignments {
			r, ok := resources[a.ResourceID]
			if !ok {
				continue
			}
			work := AssignmentWork(in.Calendar, r, t.Start, end) * a.Allocation / 100
			cost := work * r.Rate
			rc := perResource[r.ID]
			rc.Work += work
			rc.Cost += cost
			tc.Work += work
			tc.Cost += cost
		}
		report.Tasks = append(report.Tasks, tc)
		report.Total += tc.Cost
	}
	for _, r := range in.Resources {
		report.Resources = append(report.Resources, *perResource[r.ID])
	}
	sort.Slice(report.Resources, func(i, j int) bool { return report.Resources[i].ResourceID < report.Resources[j].ResourceID })
	return report
}

// CostBreakdown spreads planned cost over periods: calendar days when the
// project spans under 30 days, calendar months otherwise. Periods are
// contiguous from the first task start to the last task finish.
func CostBreakdown(in CostInput) []PeriodCost {
	var first, last time.Time
	for _, t := range in.Tasks {
		if t.IsSummary() {
			continue
		}
		if first.IsZero() || t.Start.Before(first) {
			first = t.Start
		}
		if last.IsZero() || t.End.After(last) {
			last = t.End
		}
	}
	if first.IsZero() {
		return nil
	}
	daily := last.Sub(first) < dailyBreakdownSpan

	bucketOf := func(day time.Time) time.Time {
		if daily {
			return domain.DateOf(day)
		}
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	}
	next := func(b time.Time) time.Time {
		if daily {
			return b.AddDate(0, 0, 1)
		}
		return b.AddDate(0, 1, 0)
	}

	var periods []PeriodCost
	index := make(map[time.Time]int)
	for b := bucketOf(first); !b.After(last); b = next(b) {
		label := b.Format("2006-01")
		if daily {
			label = b.Format(domain.DateLayout)
		}
		index[b] = len(periods)
		periods = append(periods, PeriodCost{Label: label, Start: b, End: next(b)})
	}

	resources := make(map[int]domain.Resource, len(in.Resources))
	for _, r := range in.Resources {
		resources[r.ID] = r
	}
	for _, t := range in.Tasks {
		if t.IsSummary() {
			continue
		}
		for _, a := range t.Assignments {
			r, ok := resources[a.ResourceID]
			if !ok {
				continue
			}
			rcal := in.Calendar.ForResource(r.Exceptions)
			for _, day := range rcal.WorkingDays(t.Start, t.End) {
				cost := rcal.WorkingTimeOn(day, t.Start, t.End) * a.Allocation / 100 * r.Rate
				if i, ok := index[bucketOf(day)]; ok {
					periods[i].Cost += cost
				}
			}
		}
	}
	return periods
}
