package scheduler

import (
	"sort"
	"time"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/domain"
)

// AllocationInput carries the data the allocation profile is computed from.
// Tasks must carry scheduled dates.
type AllocationInput struct {
	Calendar  *calendar.Calendar
	Tasks     []domain.Task
	Resources []domain.Resource
}

type DayLoad struct {
	Date    time.Time
	Percent float64
	TaskIDs []int
}

// ResourceLoad is one resource's day-by-day allocation, ordered by date.
type ResourceLoad struct {
	ResourceID int
	Name       string
	Capacity   float64
	Days       []DayLoad
}

// Peak returns the highest daily allocation.
func (l ResourceLoad) Peak() float64 {
	var peak float64
	for _, d := range l.Days {
		if d.Percent > peak {
			peak = d.Percent
		}
	}
	return peak
}

type OverAllocation struct {
	ResourceID int
	Name       string
	Date       time.Time
	Percent    float64
	Capacity   float64
	TaskIDs    []int
}

// AllocationProfile spreads every assignment's percent over each working day
// of its task, skipping the resource's exception days.
func AllocationProfile(in AllocationInput) []ResourceLoad {
	byResource := make(map[int]map[time.Time]*DayLoad, len(in.Resources))
	for _, r := range in.Resources {
		byResource[r.ID] = make(map[time.Time]*DayLoad)
	}
	resources := make(map[int]domain.Resource, len(in.Resources))
	for _, r := range in.Resources {
		resources[r.ID] = r
	}

	for _, t := range in.Tasks {
		if t.IsSummary() || len(t.Assignments) == 0 {
			continue
		}
		days := in.Calendar.WorkingDays(t.Start, t.End)
		for _, a := range t.Assignments {
			r, ok := resources[a.ResourceID]
			if !ok {
				continue
			}
			loads := byResource[r.ID]
			for _, day := range days {
				if r.OnException(day) {
					continue
				}
				dl, ok := loads[day]
				if !ok {
					dl = &DayLoad{Date: day}
					loads[day] = dl
				}
				dl.Percent += a.Allocation
				dl.TaskIDs = append(dl.TaskIDs, t.ID)
			}
		}
	}

	out := make([]ResourceLoad, 0, len(in.Resources))
	for _, r := range in.Resources {
		load := ResourceLoad{ResourceID: r.ID, Name: r.Name, Capacity: r.EffectiveCapacity()}
		for _, dl := range byResource[r.ID] {
			sort.Ints(dl.TaskIDs)
			load.Days = append(load.Days, *dl)
		}
		sort.Slice(load.Days, func(i, j int) bool { return load.Days[i].Date.Before(load.Days[j].Date) })
		out = append(out, load)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ResourceID < out[j].ResourceID })
	return out
}

// OverAllocations flags every (resource, day) whose summed allocation
// exceeds the resource's capacity. The result is informational.
func OverAllocations(profile []ResourceLoad) []OverAllocation {
	var out []OverAllocation
	for _, load := range profile {
		for _, d := range load.Days {
			if d.Percent > load.Capacity+1e-9 {
				out = append(out, OverAllocation{
					ResourceID: load.ResourceID,
					Name:       load.Name,
					Date:       d.Date,
					Percent:    d.Percent,
					Capacity:   load.Capacity,
					TaskIDs:    d.TaskIDs,
				})
			}
		}
	}
	return out
}
