package baseline

import (
	"sort"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/graph"
)

// VarianceBand is the end-date variance, in project units, within which a
// task counts as on track.
const VarianceBand = 0.5

type Kind string

const (
	KindCompared Kind = "compared"
	KindNew      Kind = "new"
	KindDeleted  Kind = "deleted"
)

type TaskVariance struct {
	TaskID        int
	Name          string
	WBS           string
	Kind          Kind
	Summary       bool
	BaselineStart time.Time
	BaselineEnd   time.Time
	CurrentStart  time.Time
	CurrentEnd    time.Time
	// Variances are current minus baseline: dates and duration in working
	// time, completion in percentage points.
	StartVariance      float64
	EndVariance        float64
	DurationVariance   float64
	CompletionVariance float64
	Status             domain.VarianceStatus
}

type Summary struct {
	Ahead            int
	OnTrack          int
	Behind           int
	New              int
	Deleted          int
	AvgStartVariance float64
	AvgEndVariance   float64
}

type Comparison struct {
	BaselineID     string
	BaselineName   string
	CapturedAt     time.Time
	BaselineFinish time.Time
	CurrentFinish  time.Time
	FinishVariance float64
	Status         domain.VarianceStatus
	Tasks          []TaskVariance
	Summary        Summary
}

// Classify maps an end variance onto ahead / on_track / behind.
func Classify(endVariance float64) domain.VarianceStatus {
	switch {
	case endVariance > VarianceBand:
		return domain.VarianceBehind
	case endVariance < -VarianceBand:
		return domain.VarianceAhead
	default:
		return domain.VarianceOnTrack
	}
}

// Compare measures g against baseline b. Tasks are listed in current WBS
// order followed by deleted tasks by id. Summary counts cover leaf tasks.
func Compare(b domain.Baseline, g *graph.Graph) Comparison {
	cal := g.Calendar()
	wbs := g.WBSCodes()
	cmp := Comparison{BaselineID: b.ID, BaselineName: b.Name, CapturedAt: b.CreatedAt}

	var startSum, endSum float64
	compared := 0
	seen := make(map[int]bool, len(b.Snapshots))
	for _, t := range g.Tasks() {
		leaf := !t.IsSummary()
		if leaf && t.End.After(cmp.CurrentFinish) {
			cmp.CurrentFinish = t.End
		}
		tv := TaskVariance{
			TaskID:       t.ID,
			Name:         t.Name,
			WBS:          wbs[t.ID],
			Summary:      !leaf,
			CurrentStart: t.Start,
			CurrentEnd:   t.End,
		}
		snap, ok := b.Snapshots[t.ID]
		if !ok {
			tv.Kind = KindNew
			if leaf {
				cmp.Summary.New++
			}
			cmp.Tasks = append(cmp.Tasks, tv)
			continue
		}
		seen[t.ID] = true
		tv.Kind = KindCompared
		tv.BaselineStart, tv.BaselineEnd = snap.Start, snap.End
		tv.StartVariance = cal.WorkingTimeBetween(snap.Start, t.Start)
		tv.EndVariance = cal.WorkingTimeBetween(snap.End, t.End)
		tv.DurationVariance = t.Duration - snap.Duration
		tv.CompletionVariance = t.PercentComplete - snap.PercentComplete
		tv.Status = Classify(tv.EndVariance)
		if leaf {
			compared++
			startSum += tv.StartVariance
			endSum += tv.EndVariance
			switch tv.Status {
			case domain.VarianceAhead:
				cmp.Summary.Ahead++
			case domain.VarianceBehind:
				cmp.Summary.Behind++
			default:
				cmp.Summary.OnTrack++
			}
		}
		cmp.Tasks = append(cmp.Tasks, tv)
	}

	var deleted []TaskVariance
	for id, snap := range b.Snapshots {
		if !snap.Summary && snap.End.After(cmp.BaselineFinish) {
			cmp.BaselineFinish = snap.End
		}
		if seen[id] {
			continue
		}
		deleted = append(deleted, TaskVariance{
			TaskID:        id,
			Name:          snap.Name,
			WBS:           snap.WBS,
			Kind:          KindDeleted,
			Summary:       snap.Summary,
			BaselineStart: snap.Start,
			BaselineEnd:   snap.End,
		})
		if !snap.Summary {
			cmp.Summary.Deleted++
		}
	}
	sort.Slice(deleted, func(i, j int) bool { return deleted[i].TaskID < deleted[j].TaskID })
	cmp.Tasks = append(cmp.Tasks, deleted...)

	if compared > 0 {
		cmp.Summary.AvgStartVariance = startSum / float64(compared)
		cmp.Summary.AvgEndVariance = endSum / float64(compared)
	}
	if !cmp.BaselineFinish.IsZero() && !cmp.CurrentFinish.IsZero() {
		cmp.FinishVariance = cal.WorkingTimeBetween(cmp.BaselineFinish, cmp.CurrentFinish)
	}
	cmp.Status = Classify(cmp.FinishVariance)
	return cmp
}
