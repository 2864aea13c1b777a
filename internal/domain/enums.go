package domain

import (
	"fmt"
	"strings"
)

type RiskLevel string

const (
	RiskOnTrack  RiskLevel = "on_track"
	RiskAtRisk   RiskLevel = "at_risk"
	RiskCritical RiskLevel = "critical"
)

// DependencyType is the closed set of precedence relations between two tasks.
type DependencyType int

const (
	FinishToStart DependencyType = iota
	StartToStart
	FinishToFinish
	StartToFinish
)

// Code returns the two-letter notation code (FS, SS, FF, SF).
func (t DependencyType) Code() string {
	switch t {
	case FinishToStart:
		return "FS"
	case StartToStart:
		return "SS"
	case FinishToFinish:
		return "FF"
	case StartToFinish:
		return "SF"
	default:
		panic(fmt.Sprintf("domain: unknown dependency type %d", int(t)))
	}
}

func (t DependencyType) String() string { return t.Code() }

// Valid reports whether t is one of the four known dependency types.
func (t DependencyType) Valid() bool {
	return t >= FinishToStart && t <= StartToFinish
}

// ParseDependencyType parses a case-insensitive two-letter code.
func ParseDependencyType(code string) (DependencyType, error) {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "FS":
		return FinishToStart, nil
	case "SS":
		return StartToStart, nil
	case "FF":
		return FinishToFinish, nil
	case "SF":
		return StartToFinish, nil
	}
	return 0, fmt.Errorf("unknown dependency type %q (want FS, SS, FF or SF)", code)
}

type DurationUnit string

const (
	UnitDays  DurationUnit = "days"
	UnitHours DurationUnit = "hours"
)

// Suffix is the short unit label used in tables ("d" or "h").
func (u DurationUnit) Suffix() string {
	if u == UnitHours {
		return "h"
	}
	return "d"
}

// ParseDurationUnit accepts "days"/"d" and "hours"/"h".
func ParseDurationUnit(s string) (DurationUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "days", "day", "d", "":
		return UnitDays, nil
	case "hours", "hour", "h":
		return UnitHours, nil
	}
	return "", fmt.Errorf("unknown duration unit %q (want days or hours)", s)
}

type ScheduleMode string

const (
	ScheduleAuto   ScheduleMode = "auto"
	ScheduleManual ScheduleMode = "manual"
)

// ValidScheduleModes is the canonical set of accepted schedule mode strings.
var ValidScheduleModes = map[string]bool{
	"auto": true, "manual": true,
}

// VarianceStatus classifies a task or project against its baseline.
type VarianceStatus string

const (
	VarianceAhead   VarianceStatus = "ahead"
	VarianceOnTrack VarianceStatus = "on_track"
	VarianceBehind  VarianceStatus = "behind"
)

// TaskState is the progress state of a task relative to a reference date.
type TaskState string

const (
	TaskUpcoming   TaskState = "upcoming"
	TaskInProgress TaskState = "in_progress"
	TaskOverdue    TaskState = "overdue"
	TaskCompleted  TaskState = "completed"
)
