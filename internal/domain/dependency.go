package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Dependency is a directed precedence edge from PredecessorID to SuccessorID.
// Lag is in project duration units; negative lag is a lead.
type Dependency struct {
	PredecessorID int
	SuccessorID   int
	Type          DependencyType
	Lag           float64
}

var dependencyPattern = regexp.MustCompile(`^(\d+)\s*([A-Za-z]{2})?\s*([+-]\s*\d+(?:\.\d+)?)?$`)

// ParseDependency parses predecessor notation such as "12FS+3", "7SS-1" or "5".
// The type defaults to FS and the lag to zero.
func ParseDependency(s string, successorID int) (Dependency, error) {
	m := dependencyPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Dependency{}, fmt.Errorf("malformed dependency %q (want e.g. 12FS+3)", s)
	}
	pred, err := strconv.Atoi(m[1])
	if err != nil {
		return Dependency{}, fmt.Errorf("malformed predecessor id in %q: %w", s, err)
	}
	dep := Dependency{PredecessorID: pred, SuccessorID: successorID, Type: FinishToStart}
	if m[2] != "" {
		typ, err := ParseDependencyType(m[2])
		if err != nil {
			return Dependency{}, fmt.Errorf("dependency %q: %w", s, err)
		}
		dep.Type = typ
	}
	if m[3] != "" {
		lag, err := strconv.ParseFloat(strings.ReplaceAll(m[3], " ", ""), 64)
		if err != nil {
			return Dependency{}, fmt.Errorf("malformed lag in %q: %w", s, err)
		}
		dep.Lag = lag
	}
	return dep, nil
}

// ParseDependencyList parses a comma- or semicolon-separated predecessor list.
// Each malformed entry is returned as its own error; valid ones are kept.
func ParseDependencyList(s string, successorID int) ([]Dependency, []error) {
	var deps []Dependency
	var errs []error
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' }) {
		if strings.TrimSpace(part) == "" {
			continue
		}
		dep, err := ParseDependency(part, successorID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		deps = append(deps, dep)
	}
	return deps, errs
}

// Notation renders the edge as it appears on the successor, e.g. "12FS+3".
func (d Dependency) Notation() string {
	s := strconv.Itoa(d.PredecessorID) + d.Type.Code()
	switch {
	case d.Lag > 0:
		s += "+" + strconv.FormatFloat(d.Lag, 'f', -1, 64)
	case d.Lag < 0:
		s += strconv.FormatFloat(d.Lag, 'f', -1, 64)
	}
	return s
}
