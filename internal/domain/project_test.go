package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateShortID_Valid(t *testing.T) {
	cases := []string{"WEB01", "BUILD02", "ABC1234", "ABCDEF01", "XYZ99"}
	for _, id := range cases {
		p := &Project{ShortID: id}
		assert.NoError(t, p.ValidateShortID(), "should accept %q", id)
	}
}

func TestValidateShortID_Empty(t *testing.T) {
	p := &Project{ShortID: ""}
	err := p.ValidateShortID()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}

func TestValidateShortID_Lowercase(t *testing.T) {
	p := &Project{ShortID: "web01"}
	err := p.ValidateShortID()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uppercase")
}

func TestValidateShortID_TooShort(t *testing.T) {
	p := &Project{ShortID: "AB1"}
	err := p.ValidateShortID()
	require.Error(t, err)
}

func TestValidateShortID_NoDigits(t *testing.T) {
	p := &Project{ShortID: "BRIDGE"}
	err := p.ValidateShortID()
	require.Error(t, err)
}

func TestDisplayID_WithShortID(t *testing.T) {
	p := &Project{ID: "550e8400-e29b-41d4-a716-446655440000", ShortID: "WEB01"}
	assert.Equal(t, "WEB01", p.DisplayID())
}

func TestDisplayID_WithoutShortID(t *testing.T) {
	p := &Project{ID: "550e8400-e29b-41d4-a716-446655440000", ShortID: ""}
	assert.Equal(t, "550e8400", p.DisplayID())
}

func TestDisplayID_ShortUUID(t *testing.T) {
	p := &Project{ID: "abc", ShortID: ""}
	assert.Equal(t, "abc", p.DisplayID())
}

func TestProjectStart_OpensWorkingWindow(t *testing.T) {
	p := &Project{
		StartDate: time.Date(2025, 3, 3, 15, 30, 0, 0, time.UTC),
		Calendar:  DefaultCalendar(),
	}
	assert.Equal(t, time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC), p.ProjectStart())
}
