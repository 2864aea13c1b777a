package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUseCaseObserver_RecordsSuccessAndFailure(t *testing.T) {
	obs := &recordingObserver{}
	s := setupServices(t, obs)
	ctx := context.Background()
	p := s.newProject(t, "Observed", "OBS01")

	_, err := s.plans.AddTask(ctx, p.ID, graph.TaskInput{Name: "A"})
	require.NoError(t, err)
	ev, ok := obs.last("add-task")
	require.True(t, ok)
	assert.True(t, ev.Success)
	assert.Equal(t, p.ID, ev.Fields["project_id"])
	assert.Equal(t, "add task 1", ev.Fields["action"])

	_, err = s.plans.AddDependency(ctx, p.ID, domain.Dependency{PredecessorID: 1, SuccessorID: 1, Type: domain.FinishToStart})
	require.Error(t, err)
	ev, ok = obs.last("add-dependency")
	require.True(t, ok)
	assert.False(t, ev.Success)
	assert.ErrorIs(t, ev.Err, err)
}

func TestLogUseCaseObserver_WritesEvent(t *testing.T) {
	var buf bytes.Buffer
	s := setupServices(t, NewLogUseCaseObserver(&buf))
	s.newProject(t, "Logged", "LOG01")

	assert.Contains(t, buf.String(), "use_case=create-project")
	assert.Contains(t, buf.String(), "short_id=LOG01")
}
