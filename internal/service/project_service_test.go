package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/tempo/internal/contract"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectService_Create(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	req := contract.NewCreateProjectRequest("Office Move", "off01", testutil.Monday.Add(13*time.Hour))
	p, err := s.projects.Create(ctx, req)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID, "UUID should be generated")
	assert.Equal(t, "OFF01", p.ShortID)
	assert.Equal(t, testutil.Monday, p.StartDate, "start is truncated to the day")

	fetched, err := s.projects.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Office Move", fetched.Name)
	assert.Equal(t, domain.UnitDays, fetched.Unit)

	plan, err := s.plans.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, plan.Tasks)
	assert.Equal(t, p.ProjectStart(), plan.Schedule.ProjectFinish, "an empty plan finishes at its start")
}

func TestProjectService_Create_Rejects(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	s.newProject(t, "Existing", "DUP01")

	target := testutil.Monday.AddDate(0, 0, -1)
	tests := []struct {
		name string
		req  contract.CreateProjectRequest
	}{
		{"empty name", contract.NewCreateProjectRequest("", "ABC01", testutil.Monday)},
		{"bad short id", contract.NewCreateProjectRequest("Bad", "AB1", testutil.Monday)},
		{"duplicate short id", contract.NewCreateProjectRequest("Again", "dup01", testutil.Monday)},
		{"target before start", func() contract.CreateProjectRequest {
			r := contract.NewCreateProjectRequest("Late", "LAT01", testutil.Monday)
			r.TargetDate = &target
			return r
		}()},
		{"unknown unit", func() contract.CreateProjectRequest {
			r := contract.NewCreateProjectRequest("Weeks", "WEE01", testutil.Monday)
			r.Unit = "weeks"
			return r
		}()},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.projects.Create(ctx, tc.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrValidation), "got %v", err)
		})
	}

	all, err := s.projects.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestProjectService_Resolve(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	p := s.newProject(t, "Resolve", "RES01")

	for _, ref := range []string{"RES01", "res01", p.ID, p.ID[:8]} {
		got, err := s.projects.Resolve(ctx, ref)
		require.NoError(t, err, ref)
		assert.Equal(t, p.ID, got.ID, ref)
	}

	_, err := s.projects.Resolve(ctx, "NOPE01")
	assert.Error(t, err)
	_, err = s.projects.Resolve(ctx, " ")
	assert.Error(t, err)
}

func TestProjectService_UpdateSettingsReschedules(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	p := s.newProject(t, "Settings", "SET01")
	a := s.addTask(t, p.ID, "A", 2)

	res, err := s.projects.UpdateSettings(ctx, p.ID, contract.ProjectSettings{
		StartDate: ptr(at(10, 0)),
	})
	require.NoError(t, err)
	assert.Equal(t, at(10, 8), taskOf(t, res, a).Start)
	assert.Equal(t, at(11, 16), taskOf(t, res, a).End)

	res, err = s.projects.UpdateSettings(ctx, p.ID, contract.ProjectSettings{
		Holidays: &[]time.Time{at(11, 0)},
	})
	require.NoError(t, err)
	assert.Equal(t, at(12, 16), taskOf(t, res, a).End, "the holiday is skipped")

	fetched, err := s.projects.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, at(10, 0), fetched.StartDate)
	require.Len(t, fetched.Calendar.Holidays, 1)
}

func TestProjectService_UpdateSettingsValidates(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	p := s.newProject(t, "Strict", "STR01")

	_, err := s.projects.UpdateSettings(ctx, p.ID, contract.ProjectSettings{TargetDate: ptr(at(1, 0))})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	fetched, err := s.projects.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, fetched.TargetDate)
}

func TestProjectService_Delete(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	p := s.newProject(t, "Doomed", "DOO01")
	s.addTask(t, p.ID, "A", 1)

	require.NoError(t, s.projects.Delete(ctx, p.ID))
	_, err := s.projects.GetByID(ctx, p.ID)
	assert.Error(t, err)
	assert.Error(t, s.projects.Delete(ctx, p.ID))
}
