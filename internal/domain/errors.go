package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Error kinds. Every rejected mutation wraps exactly one of these.
var (
	ErrCyclicDependency    = errors.New("cyclic dependency")
	ErrInvalidReference    = errors.New("invalid reference")
	ErrCapacityExceeded    = errors.New("capacity exceeded")
	ErrValidation          = errors.New("validation failure")
	ErrArithmeticUndefined = errors.New("arithmetic undefined")
)

type EntityType string

const (
	EntityTask       EntityType = "task"
	EntityDependency EntityType = "dependency"
	EntityResource   EntityType = "resource"
	EntityAssignment EntityType = "assignment"
	EntityBaseline   EntityType = "baseline"
	EntityProject    EntityType = "project"
	EntityCalendar   EntityType = "calendar"
)

// Entity identifies the record an error is attributable to.
type Entity struct {
	Type EntityType
	ID   string
}

func (e Entity) String() string {
	if e.ID == "" {
		return string(e.Type)
	}
	return fmt.Sprintf("%s %s", e.Type, e.ID)
}

// TaskRef builds an Entity for a task id.
func TaskRef(id int) Entity { return Entity{Type: EntityTask, ID: strconv.Itoa(id)} }

// ResourceRef builds an Entity for a resource id.
func ResourceRef(id int) Entity { return Entity{Type: EntityResource, ID: strconv.Itoa(id)} }

// EdgeRef builds an Entity for a dependency edge.
func EdgeRef(pred, succ int) Entity {
	return Entity{Type: EntityDependency, ID: fmt.Sprintf("%d->%d", pred, succ)}
}

// ScheduleError is a rejected operation attributable to a specific entity.
type ScheduleError struct {
	Kind   error
	Entity Entity
	Msg    string
	// Path holds the task ids of the offending cycle for cyclic-dependency errors.
	Path []int
}

func (e *ScheduleError) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Entity.Type != "" {
		b.WriteString(" (")
		b.WriteString(e.Entity.String())
		b.WriteString(")")
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if len(e.Path) > 0 {
		parts := make([]string, len(e.Path))
		for i, id := range e.Path {
			parts[i] = strconv.Itoa(id)
		}
		b.WriteString(" [")
		b.WriteString(strings.Join(parts, " -> "))
		b.WriteString("]")
	}
	return b.String()
}

func (e *ScheduleError) Unwrap() error { return e.Kind }

// Code returns a stable snake_case code for the error kind.
func (e *ScheduleError) Code() string {
	return strings.ReplaceAll(e.Kind.Error(), " ", "_")
}

// Errorf builds a ScheduleError of the given kind.
func Errorf(kind error, entity Entity, format string, args ...any) error {
	return &ScheduleError{Kind: kind, Entity: entity, Msg: fmt.Sprintf(format, args...)}
}

// CycleError reports that adding pred->succ would close the given path.
func CycleError(pred, succ int, path []int) error {
	return &ScheduleError{
		Kind:   ErrCyclicDependency,
		Entity: EdgeRef(pred, succ),
		Msg:    fmt.Sprintf("task %d already depends on task %d", pred, succ),
		Path:   path,
	}
}

// AsScheduleError unwraps err into a *ScheduleError when possible.
func AsScheduleError(err error) (*ScheduleError, bool) {
	var se *ScheduleError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
