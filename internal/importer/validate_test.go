package importer

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/tempo/internal/domain"
)

func ptrStr(s string) *string     { return &s }
func ptrInt(i int) *int           { return &i }
func ptrFloat(f float64) *float64 { return &f }

func validMinimalDocument() *Document {
	return &Document{
		Project: ProjectDoc{ShortID: "WEB01", Name: "Website", StartDate: "2025-03-03"},
		Tasks: []TaskDoc{
			{ID: 1, Name: "Design", Duration: ptrFloat(5)},
		},
	}
}

func TestCheckLimits_TaskCount(t *testing.T) {
	doc := validMinimalDocument()
	doc.Tasks = append(doc.Tasks, TaskDoc{ID: 2, Name: "Build"}, TaskDoc{ID: 3, Name: "Ship"})

	err := CheckLimits(doc, Limits{MaxTasks: 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCapacityExceeded))
	assert.NoError(t, CheckLimits(doc, Limits{MaxTasks: 3}))
}

func TestCheckLimits_StringLength(t *testing.T) {
	doc := validMinimalDocument()
	doc.Tasks[0].Notes = strings.Repeat("n", 251)

	err := CheckLimits(doc, Limits{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCapacityExceeded))
	assert.Contains(t, err.Error(), "tasks[0].notes")

	doc.Tasks[0].Notes = strings.Repeat("n", 250)
	assert.NoError(t, CheckLimits(doc, Limits{}))
}

func TestValidateStruct_ReportsJSONPaths(t *testing.T) {
	td := TaskDoc{ID: 0, Name: "", PercentComplete: 140, Mode: "sometimes",
		Assignments: []AssignmentDoc{{ResourceID: 1, Allocation: 2000}}}

	issues := validateStruct("tasks[4]", &td)
	paths := make([]string, len(issues))
	for i, is := range issues {
		paths[i] = is.Path
	}
	assert.ElementsMatch(t, []string{
		"tasks[4].id",
		"tasks[4].name",
		"tasks[4].percent_complete",
		"tasks[4].mode",
		"tasks[4].assignments[0].allocation",
	}, paths)
}

func TestValidateStruct_Project(t *testing.T) {
	issues := validateStruct("project", &ProjectDoc{Name: "X", StartDate: "03/03/2025", Unit: "weeks", TargetDate: ptrStr("soon")})
	require.Len(t, issues, 3)
	for _, is := range issues {
		assert.True(t, strings.HasPrefix(is.Path, "project."), is.Path)
	}
}

func TestRejectedError(t *testing.T) {
	one := &RejectedError{Issues: []Issue{{Path: "tasks[0].name", Message: "is required"}}}
	assert.Equal(t, "import rejected: tasks[0].name: is required", one.Error())
	assert.True(t, errors.Is(one, domain.ErrValidation))

	many := &RejectedError{Issues: []Issue{{Path: "a", Message: "x"}, {Path: "b", Message: "y"}}}
	assert.Contains(t, many.Error(), "2 issues")
}
