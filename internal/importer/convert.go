package importer

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/graph"
)

// Options control how a document is turned into a project.
type Options struct {
	// Strict rejects the whole import on the first batch of issues instead
	// of skipping the offending entries.
	Strict bool
	Limits Limits
}

// Result is an imported project. The graph's dates are as stored in the
// document; callers reschedule before use.
type Result struct {
	Project   domain.Project
	Graph     *graph.Graph
	Baselines []domain.Baseline
	Issues    []Issue
}

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

// Build converts doc into a project, its schedule graph and baselines.
// Limit violations and project-level problems always fail. Malformed tasks,
// resources, dependencies and assignments are skipped and reported as
// issues, unless opts.Strict is set.
func Build(doc *Document, opts Options) (*Result, error) {
	if err := CheckLimits(doc, opts.Limits); err != nil {
		return nil, err
	}

	var fatal []Issue
	fatal = append(fatal, validateStruct("project", &doc.Project)...)
	if doc.Calendar != nil {
		fatal = append(fatal, validateStruct("calendar", doc.Calendar)...)
	}
	if len(fatal) > 0 {
		return nil, &RejectedError{Issues: fatal}
	}

	project, err := convertProject(doc)
	if err != nil {
		return nil, err
	}
	cal, err := calendar.New(project.Calendar, project.Unit)
	if err != nil {
		return nil, err
	}

	b := &builder{
		doc:      doc,
		cal:      cal,
		cfg:      project.Calendar,
		g:        graph.New(cal, project.ProjectStart()),
		start:    project.ProjectStart(),
		inserted: make(map[int]int),
	}
	b.resources()
	b.tasks()
	b.dependencies()
	b.assignments()
	baselines := b.baselines(project.ID)

	if opts.Strict && len(b.issues) > 0 {
		return nil, &RejectedError{Issues: b.issues}
	}
	return &Result{Project: project, Graph: b.g, Baselines: baselines, Issues: b.issues}, nil
}

func convertProject(doc *Document) (domain.Project, error) {
	now := time.Now().UTC()
	reject := func(path, format string, args ...any) error {
		return &RejectedError{Issues: []Issue{{Path: path, Message: fmt.Sprintf(format, args...)}}}
	}

	p := doc.Project
	startDate, err := time.Parse(domain.DateLayout, p.StartDate)
	if err != nil {
		return domain.Project{}, reject("project.start_date", "invalid date %q", p.StartDate)
	}
	var targetDate *time.Time
	if p.TargetDate != nil {
		t, err := time.Parse(domain.DateLayout, *p.TargetDate)
		if err != nil {
			return domain.Project{}, reject("project.target_date", "invalid date %q", *p.TargetDate)
		}
		if t.Before(startDate) {
			return domain.Project{}, reject("project.target_date", "%s is before start_date %s", *p.TargetDate, p.StartDate)
		}
		targetDate = &t
	}
	unit, err := domain.ParseDurationUnit(domain.CoalesceStr(p.Unit, string(domain.UnitDays)))
	if err != nil {
		return domain.Project{}, reject("project.unit", "%v", err)
	}

	project := domain.Project{
		ID:         uuid.New().String(),
		ShortID:    strings.ToUpper(p.ShortID),
		Name:       p.Name,
		StartDate:  startDate,
		TargetDate: targetDate,
		Unit:       unit,
		Currency:   p.Currency,
		Calendar:   domain.DefaultCalendar(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if project.ShortID != "" {
		if err := project.ValidateShortID(); err != nil {
			return domain.Project{}, reject("project.short_id", "%v", err)
		}
	}
	if doc.Calendar != nil {
		cfg, err := convertCalendar(doc.Calendar)
		if err != nil {
			return domain.Project{}, err
		}
		project.Calendar = cfg
	}
	return project, nil
}

func convertCalendar(c *CalendarDoc) (domain.CalendarConfig, error) {
	cfg := domain.DefaultCalendar()
	if len(c.WorkingDays) > 0 {
		cfg.WorkingDays = nil
		for _, d := range c.WorkingDays {
			cfg.WorkingDays = append(cfg.WorkingDays, weekdays[d])
		}
	}
	for _, h := range c.Holidays {
		day, err := time.Parse(domain.DateLayout, h)
		if err != nil {
			return cfg, &RejectedError{Issues: []Issue{{Path: "calendar.holidays", Message: fmt.Sprintf("invalid date %q", h)}}}
		}
		cfg.Holidays = append(cfg.Holidays, day)
	}
	cfg.HoursPerDay = domain.Float64FromPtrWithDefault(cfg.HoursPerDay, c.HoursPerDay)
	if c.DayStart != "" {
		t, err := time.Parse("15:04", c.DayStart)
		if err != nil {
			return cfg, &RejectedError{Issues: []Issue{{Path: "calendar.day_start", Message: fmt.Sprintf("invalid time %q", c.DayStart)}}}
		}
		cfg.DayStart = time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
	}
	return cfg, nil
}

type builder struct {
	doc   *Document
	cal   *calendar.Calendar
	cfg   domain.CalendarConfig
	g     *graph.Graph
	start time.Time
	// inserted maps task id to its index in doc.Tasks.
	inserted map[int]int
	issues   []Issue
}

func (b *builder) issue(path string, format string, args ...any) {
	b.issues = append(b.issues, Issue{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (b *builder) resources() {
	for i, rd := range b.doc.Resources {
		prefix := fmt.Sprintf("resources[%d]", i)
		if issues := validateStruct(prefix, &rd); len(issues) > 0 {
			b.issues = append(b.issues, issues...)
			continue
		}
		r := domain.Resource{ID: rd.ID, Name: rd.Name, Rate: rd.Rate, Capacity: rd.Capacity}
		for j, s := range rd.Exceptions {
			ex, err := domain.ParseException(s)
			if err != nil {
				b.issue(fmt.Sprintf("%s.exceptions[%d]", prefix, j), "%v", err)
				continue
			}
			r.Exceptions = append(r.Exceptions, ex)
		}
		if err := b.g.InsertResource(r); err != nil {
			b.issue(prefix, "%v", err)
		}
	}
}

// tasks inserts tasks parents-first. A task whose parent never made it in
// is reported rather than promoted to the root.
func (b *builder) tasks() {
	seen := make(map[int]bool)
	var pending []int
	for i := range b.doc.Tasks {
		td := &b.doc.Tasks[i]
		prefix := fmt.Sprintf("tasks[%d]", i)
		if issues := validateStruct(prefix, td); len(issues) > 0 {
			b.issues = append(b.issues, issues...)
			continue
		}
		if seen[td.ID] {
			b.issue(prefix+".id", "duplicate task id %d", td.ID)
			continue
		}
		seen[td.ID] = true
		pending = append(pending, i)
	}

	for progress := true; progress && len(pending) > 0; {
		progress = false
		var rest []int
		for _, i := range pending {
			td := b.doc.Tasks[i]
			if td.ParentID != nil {
				if _, ok := b.inserted[*td.ParentID]; !ok {
					rest = append(rest, i)
					continue
				}
			}
			progress = true
			if err := b.insertTask(i, td); err != nil {
				b.issue(fmt.Sprintf("tasks[%d]", i), "%v", err)
				continue
			}
			b.inserted[td.ID] = i
		}
		pending = rest
	}
	for _, i := range pending {
		b.issue(fmt.Sprintf("tasks[%d].parent_id", i), "parent task %d not found", *b.doc.Tasks[i].ParentID)
	}
}

func (b *builder) insertTask(i int, td TaskDoc) error {
	t := domain.Task{
		ID:              td.ID,
		Name:            td.Name,
		Notes:           td.Notes,
		ParentID:        td.ParentID,
		Start:           b.start,
		PercentComplete: td.PercentComplete,
		Milestone:       td.Milestone,
		Mode:            domain.ScheduleMode(domain.CoalesceStr(td.Mode, string(domain.ScheduleAuto))),
		Style:           td.Style,
	}
	if td.Start != "" {
		start, err := b.parseInstant(td.Start, false)
		if err != nil {
			return err
		}
		t.Start = start
	}
	if td.Estimate != nil {
		t.Estimate = &domain.ThreePoint{
			Optimistic:  td.Estimate.Optimistic,
			Likely:      td.Estimate.Likely,
			Pessimistic: td.Estimate.Pessimistic,
		}
	}

	// Duration wins over End when both are present.
	switch {
	case td.Duration != nil:
		t.Duration = *td.Duration
	case td.End != "":
		end, err := b.parseInstant(td.End, true)
		if err != nil {
			return err
		}
		d := b.cal.WorkingTimeBetween(b.cal.SnapForward(t.Start), end)
		if d < 0 {
			return fmt.Errorf("end %s is before start", td.End)
		}
		t.Duration = d
	case !td.Milestone:
		t.Duration = 1
	}
	return b.g.InsertTask(t)
}

// parseInstant accepts RFC 3339 or a plain day. A plain day opens at the
// start of its working window, or closes at its end for end dates.
func (b *builder) parseInstant(s string, end bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	day, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected RFC 3339 or YYYY-MM-DD)", s)
	}
	at := day.Add(b.cfg.DayStart)
	if end {
		at = at.Add(time.Duration(b.cfg.HoursPerDay * float64(time.Hour)))
	}
	return at, nil
}

func (b *builder) dependencies() {
	for _, id := range b.insertedInOrder() {
		i := b.inserted[id]
		td := b.doc.Tasks[i]
		for j, s := range td.Predecessors {
			path := fmt.Sprintf("tasks[%d].predecessors[%d]", i, j)
			dep, err := domain.ParseDependency(s, td.ID)
			if err != nil {
				b.issue(path, "%v", err)
				continue
			}
			if err := b.g.AddDependency(dep); err != nil {
				b.issue(path, "%v", err)
			}
		}
	}
}

func (b *builder) assignments() {
	for _, id := range b.insertedInOrder() {
		i := b.inserted[id]
		for j, a := range b.doc.Tasks[i].Assignments {
			if err := b.g.Assign(id, a.ResourceID, a.Allocation); err != nil {
				b.issue(fmt.Sprintf("tasks[%d].assignments[%d]", i, j), "%v", err)
			}
		}
	}
}

// insertedInOrder lists inserted task ids in document order.
func (b *builder) insertedInOrder() []int {
	ids := make([]int, 0, len(b.inserted))
	for id := range b.inserted {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(x, y int) bool { return b.inserted[ids[x]] < b.inserted[ids[y]] })
	return ids
}

func (b *builder) baselines(projectID string) []domain.Baseline {
	var out []domain.Baseline
	names := make(map[string]bool)
	for i, bd := range b.doc.Baselines {
		prefix := fmt.Sprintf("baselines[%d]", i)
		if issues := validateStruct(prefix, &bd); len(issues) > 0 {
			b.issues = append(b.issues, issues...)
			continue
		}
		if len(out) >= domain.MaxBaselines {
			b.issue(prefix, "%v", domain.Errorf(domain.ErrCapacityExceeded, domain.Entity{Type: domain.EntityBaseline, ID: bd.ID},
				"a project holds at most %d baselines", domain.MaxBaselines))
			continue
		}
		key := strings.ToLower(bd.Name)
		if names[key] {
			b.issue(prefix+".name", "duplicate baseline name %q", bd.Name)
			continue
		}
		names[key] = true

		bl := domain.Baseline{
			ID:        bd.ID,
			ProjectID: projectID,
			Name:      bd.Name,
			CreatedAt: bd.CreatedAt,
			Snapshots: make(map[int]domain.TaskSnapshot, len(bd.Snapshots)),
		}
		for _, s := range bd.Snapshots {
			bl.Snapshots[s.TaskID] = domain.TaskSnapshot{
				TaskID:          s.TaskID,
				Name:            s.Name,
				WBS:             s.WBS,
				Start:           s.Start,
				End:             s.End,
				Duration:        s.Duration,
				PercentComplete: s.PercentComplete,
				Summary:         s.Summary,
			}
		}
		out = append(out, bl)
	}
	return out
}
