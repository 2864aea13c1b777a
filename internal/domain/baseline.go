package domain

import "time"

// MaxBaselines is the number of baselines a project may hold.
const MaxBaselines = 3

type Baseline struct {
	ID        string
	ProjectID string
	Name      string
	CreatedAt time.Time
	Snapshots map[int]TaskSnapshot
}

// TaskSnapshot is the frozen state of one task at capture time.
type TaskSnapshot struct {
	TaskID          int
	Name            string
	WBS             string
	Start           time.Time
	End             time.Time
	Duration        float64
	PercentComplete float64
	Summary         bool
}
