package domain

import (
	"fmt"
	"strings"
	"time"
)

// DefaultCapacity is the allocation percent a resource can carry per day.
const DefaultCapacity = 100.0

type Resource struct {
	ID   int
	Name string
	// Rate is the billing rate per project duration unit.
	Rate       float64
	Capacity   float64
	Exceptions []ExceptionInterval
}

// Clone returns a deep copy of the resource.
func (r *Resource) Clone() Resource {
	c := *r
	c.Exceptions = append([]ExceptionInterval(nil), r.Exceptions...)
	return c
}

// EffectiveCapacity returns Capacity, or DefaultCapacity when unset.
func (r *Resource) EffectiveCapacity() float64 {
	if r.Capacity <= 0 {
		return DefaultCapacity
	}
	return r.Capacity
}

// OnException reports whether the resource is unavailable on the given day.
func (r *Resource) OnException(day time.Time) bool {
	for _, ex := range r.Exceptions {
		if ex.Contains(day) {
			return true
		}
	}
	return false
}

// ExceptionInterval is an inclusive range of calendar days. Start == End is a
// single day.
type ExceptionInterval struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether day falls within the interval, comparing dates only.
func (e ExceptionInterval) Contains(day time.Time) bool {
	d := DateOf(day)
	return !d.Before(DateOf(e.Start)) && !d.After(DateOf(e.End))
}

func (e ExceptionInterval) String() string {
	if DateOf(e.Start).Equal(DateOf(e.End)) {
		return e.Start.Format(DateLayout)
	}
	return e.Start.Format(DateLayout) + " to " + e.End.Format(DateLayout)
}

// ParseException parses "YYYY-MM-DD" or "YYYY-MM-DD to YYYY-MM-DD".
func ParseException(s string) (ExceptionInterval, error) {
	s = strings.TrimSpace(s)
	startStr, endStr, isRange := strings.Cut(s, " to ")
	start, err := time.Parse(DateLayout, strings.TrimSpace(startStr))
	if err != nil {
		return ExceptionInterval{}, fmt.Errorf("malformed exception date %q: %w", s, err)
	}
	if !isRange {
		return ExceptionInterval{Start: start, End: start}, nil
	}
	end, err := time.Parse(DateLayout, strings.TrimSpace(endStr))
	if err != nil {
		return ExceptionInterval{}, fmt.Errorf("malformed exception date %q: %w", s, err)
	}
	if end.Before(start) {
		return ExceptionInterval{}, fmt.Errorf("exception range %q ends before it starts", s)
	}
	return ExceptionInterval{Start: start, End: end}, nil
}
