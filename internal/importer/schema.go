package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// DocumentVersion is written into exported documents.
const DocumentVersion = 1

// Document is the canonical JSON form of a project.
type Document struct {
	Version   int           `json:"version"`
	Project   ProjectDoc    `json:"project"`
	Calendar  *CalendarDoc  `json:"calendar,omitempty"`
	Tasks     []TaskDoc     `json:"tasks"`
	Resources []ResourceDoc `json:"resources,omitempty"`
	Baselines []BaselineDoc `json:"baselines,omitempty"`
}

type ProjectDoc struct {
	Name       string  `json:"name" validate:"required"`
	ShortID    string  `json:"short_id,omitempty"`
	StartDate  string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	TargetDate *string `json:"target_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Unit       string  `json:"unit,omitempty" validate:"omitempty,oneof=days hours"`
	Currency   string  `json:"currency,omitempty"`
}

// CalendarDoc uses lowercase three-letter weekday names and HH:MM day starts.
type CalendarDoc struct {
	WorkingDays []string `json:"working_days,omitempty" validate:"omitempty,dive,oneof=sun mon tue wed thu fri sat"`
	Holidays    []string `json:"holidays,omitempty" validate:"omitempty,dive,datetime=2006-01-02"`
	HoursPerDay *float64 `json:"hours_per_day,omitempty" validate:"omitempty,gt=0,lte=24"`
	DayStart    string   `json:"day_start,omitempty" validate:"omitempty,datetime=15:04"`
}

type EstimateDoc struct {
	Optimistic  float64 `json:"optimistic" validate:"gte=0"`
	Likely      float64 `json:"likely" validate:"gte=0"`
	Pessimistic float64 `json:"pessimistic" validate:"gte=0"`
}

type AssignmentDoc struct {
	ResourceID int     `json:"resource_id" validate:"gt=0"`
	Allocation float64 `json:"allocation" validate:"gt=0,lte=1000"`
}

// TaskDoc dates accept RFC 3339 instants or plain YYYY-MM-DD days.
type TaskDoc struct {
	ID              int               `json:"id" validate:"gt=0"`
	Name            string            `json:"name" validate:"required"`
	Notes           string            `json:"notes,omitempty"`
	ParentID        *int              `json:"parent_id,omitempty"`
	Start           string            `json:"start,omitempty"`
	End             string            `json:"end,omitempty"`
	Duration        *float64          `json:"duration,omitempty" validate:"omitempty,gte=0"`
	PercentComplete float64           `json:"percent_complete,omitempty" validate:"gte=0,lte=100"`
	Milestone       bool              `json:"milestone,omitempty"`
	Mode            string            `json:"mode,omitempty" validate:"omitempty,oneof=auto manual"`
	Estimate        *EstimateDoc      `json:"estimate,omitempty"`
	Predecessors    []string          `json:"predecessors,omitempty"`
	Assignments     []AssignmentDoc   `json:"assignments,omitempty" validate:"omitempty,dive"`
	Style           map[string]string `json:"style,omitempty"`
}

type ResourceDoc struct {
	ID         int      `json:"id" validate:"gt=0"`
	Name       string   `json:"name" validate:"required"`
	Rate       float64  `json:"rate" validate:"gte=0"`
	Capacity   float64  `json:"capacity,omitempty" validate:"gte=0"`
	Exceptions []string `json:"exceptions,omitempty"`
}

type BaselineDoc struct {
	ID        string        `json:"id" validate:"required"`
	Name      string        `json:"name" validate:"required"`
	CreatedAt time.Time     `json:"created_at"`
	Snapshots []SnapshotDoc `json:"snapshots"`
}

type SnapshotDoc struct {
	TaskID          int       `json:"task_id"`
	Name            string    `json:"name"`
	WBS             string    `json:"wbs"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	Duration        float64   `json:"duration"`
	PercentComplete float64   `json:"percent_complete"`
	Summary         bool      `json:"summary,omitempty"`
}

// LoadDocument reads and parses a project JSON file.
func LoadDocument(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadDocument(f)
}

// ReadDocument parses a project document from r.
func ReadDocument(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return &doc, nil
}

// WriteDocument encodes doc as indented JSON.
func WriteDocument(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// SaveDocument writes doc to path.
func SaveDocument(path string, doc *Document) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteDocument(f, doc); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
