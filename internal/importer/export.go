package importer

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/graph"
)

// Export renders a project as a Document that Build reads back.
func Export(p domain.Project, g *graph.Graph, baselines []domain.Baseline) *Document {
	doc := &Document{
		Version: DocumentVersion,
		Project: ProjectDoc{
			Name:      p.Name,
			ShortID:   p.ShortID,
			StartDate: p.StartDate.Format(domain.DateLayout),
			Unit:      string(p.Unit),
			Currency:  p.Currency,
		},
		Calendar: exportCalendar(p.Calendar),
	}
	if p.TargetDate != nil {
		s := p.TargetDate.Format(domain.DateLayout)
		doc.Project.TargetDate = &s
	}

	for _, r := range g.Resources() {
		rd := ResourceDoc{ID: r.ID, Name: r.Name, Rate: r.Rate, Capacity: r.Capacity}
		for _, ex := range r.Exceptions {
			rd.Exceptions = append(rd.Exceptions, ex.String())
		}
		doc.Resources = append(doc.Resources, rd)
	}

	doc.Tasks = make([]TaskDoc, 0, g.Len())
	for _, t := range g.Tasks() {
		d := t.Duration
		td := TaskDoc{
			ID:              t.ID,
			Name:            t.Name,
			Notes:           t.Notes,
			ParentID:        t.ParentID,
			Start:           t.Start.Format(time.RFC3339),
			End:             t.End.Format(time.RFC3339),
			Duration:        &d,
			PercentComplete: t.PercentComplete,
			Milestone:       t.Milestone,
			Mode:            string(t.Mode),
			Style:           t.Style,
		}
		if t.Estimate != nil {
			td.Estimate = &EstimateDoc{
				Optimistic:  t.Estimate.Optimistic,
				Likely:      t.Estimate.Likely,
				Pessimistic: t.Estimate.Pessimistic,
			}
		}
		for _, dep := range t.Dependencies {
			td.Predecessors = append(td.Predecessors, dep.Notation())
		}
		for _, a := range t.Assignments {
			td.Assignments = append(td.Assignments, AssignmentDoc{ResourceID: a.ResourceID, Allocation: a.Allocation})
		}
		doc.Tasks = append(doc.Tasks, td)
	}

	for _, b := range baselines {
		bd := BaselineDoc{ID: b.ID, Name: b.Name, CreatedAt: b.CreatedAt}
		ids := make([]int, 0, len(b.Snapshots))
		for id := range b.Snapshots {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			s := b.Snapshots[id]
			bd.Snapshots = append(bd.Snapshots, SnapshotDoc{
				TaskID:          s.TaskID,
				Name:            s.Name,
				WBS:             s.WBS,
				Start:           s.Start,
				End:             s.End,
				Duration:        s.Duration,
				PercentComplete: s.PercentComplete,
				Summary:         s.Summary,
			})
		}
		doc.Baselines = append(doc.Baselines, bd)
	}
	return doc
}

func exportCalendar(cfg domain.CalendarConfig) *CalendarDoc {
	hours := cfg.HoursPerDay
	c := &CalendarDoc{
		HoursPerDay: &hours,
		DayStart:    fmt.Sprintf("%02d:%02d", int(cfg.DayStart.Hours()), int(cfg.DayStart.Minutes())%60),
	}
	for _, d := range cfg.WorkingDays {
		c.WorkingDays = append(c.WorkingDays, strings.ToLower(d.String()[:3]))
	}
	for _, h := range cfg.Holidays {
		c.Holidays = append(c.Holidays, h.Format(domain.DateLayout))
	}
	return c
}
