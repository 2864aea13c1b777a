package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseException(t *testing.T) {
	single, err := ParseException("2025-03-05")
	require.NoError(t, err)
	assert.True(t, single.Start.Equal(single.End))
	assert.Equal(t, "2025-03-05", single.String())

	rng, err := ParseException("2025-03-05 to 2025-03-07")
	require.NoError(t, err)
	assert.True(t, rng.Contains(time.Date(2025, 3, 6, 14, 0, 0, 0, time.UTC)))
	assert.False(t, rng.Contains(time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-03-05 to 2025-03-07", rng.String())

	_, err = ParseException("2025-03-07 to 2025-03-05")
	assert.Error(t, err)
	_, err = ParseException("next tuesday")
	assert.Error(t, err)
}

func TestResource_EffectiveCapacity(t *testing.T) {
	r := &Resource{}
	assert.Equal(t, DefaultCapacity, r.EffectiveCapacity())
	r.Capacity = 50
	assert.Equal(t, 50.0, r.EffectiveCapacity())
}

func TestThreePoint(t *testing.T) {
	e := ThreePoint{Optimistic: 2, Likely: 4, Pessimistic: 12}
	require.NoError(t, e.Validate())
	assert.InDelta(t, 5.0, e.Mean(), 1e-9)
	assert.False(t, e.Degenerate())
	assert.True(t, ThreePoint{3, 3, 3}.Degenerate())
	assert.Error(t, ThreePoint{Optimistic: 5, Likely: 4, Pessimistic: 6}.Validate())
}

func TestTaskClone_IsDeep(t *testing.T) {
	parent := 1
	orig := Task{ID: 2, ParentID: &parent, Dependencies: []Dependency{{PredecessorID: 3, SuccessorID: 2}}, Style: map[string]string{"bold": "true"}}
	c := orig.Clone()
	*c.ParentID = 9
	c.Dependencies[0].Lag = 4
	c.Style["bold"] = "false"
	assert.Equal(t, 1, *orig.ParentID)
	assert.Zero(t, orig.Dependencies[0].Lag)
	assert.Equal(t, "true", orig.Style["bold"])
}
